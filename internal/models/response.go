package models

// ErrorResponse is the body of every 4xx/5xx response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// MessageResponse is the body of simple success responses.
type MessageResponse struct {
	Message string `json:"message"`
}

func NewErrorResponse(detail string) ErrorResponse {
	return ErrorResponse{Detail: detail}
}

func NewMessageResponse(message string) MessageResponse {
	return MessageResponse{Message: message}
}
