package handlers

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// validationDetail flattens a field->message map into a stable, readable
// detail string for the error body.
func validationDetail(errors map[string]string) string {
	fields := make([]string, 0, len(errors))
	for f := range errors {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+errors[f])
	}
	return strings.Join(parts, "; ")
}
