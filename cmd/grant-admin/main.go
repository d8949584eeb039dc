// Command grant-admin flips the admin flag for an existing user. The flag is
// deliberately not reachable over HTTP; promotion happens out-of-band on the
// host that owns the database file.
//
//	grant-admin -db ./devicelink.db -user alice
//	grant-admin -db ./devicelink.db -user alice -revoke
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/devicelink/backend/internal/services"
	"github.com/devicelink/backend/internal/storage"
)

func main() {
	dbPath := flag.String("db", "./devicelink.db", "path to the database file")
	username := flag.String("user", "", "username to promote")
	revoke := flag.Bool("revoke", false, "revoke admin instead of granting")
	flag.Parse()

	if *username == "" {
		flag.Usage()
		os.Exit(2)
	}

	db, err := storage.Open(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	users := services.NewUserService(db)
	if err := users.SetAdmin(context.Background(), *username, !*revoke); err != nil {
		log.Fatalf("Failed to update %s: %v", *username, err)
	}

	verb := "granted to"
	if *revoke {
		verb = "revoked from"
	}
	fmt.Printf("Admin %s %s\n", verb, *username)
}
