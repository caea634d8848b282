// Package main creates an administrator account, or promotes an existing
// user to administrator and resets their password.
//
// Usage:
//
//	go run ./cmd/createadmin -username admin -password 'long secret' [-email admin@example.com]
//
// The password may also come from MYBOOKS_ADMIN_PASSWORD. All server flags
// (-data-path, -env-file, ...) are accepted so the same database is used.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/samber/do/v2"

	"github.com/mybooks/mybooks-server/internal/di"
	"github.com/mybooks/mybooks-server/internal/service"
)

const minPasswordLength = 8

func main() {
	username := flag.String("username", "", "Administrator username (required)")
	password := flag.String("password", "", "Administrator password (or MYBOOKS_ADMIN_PASSWORD)")
	email := flag.String("email", "", "Administrator email")

	// Registers the server flags and parses everything.
	injector := di.NewContainer()
	authService, err := do.Invoke[*service.AuthService](injector)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer injector.Shutdown()

	if *password == "" {
		*password = os.Getenv("MYBOOKS_ADMIN_PASSWORD")
	}
	if *username == "" {
		fmt.Fprintln(os.Stderr, "-username is required")
		flag.Usage()
		os.Exit(2)
	}
	if len(*password) < minPasswordLength {
		fmt.Fprintf(os.Stderr, "password must be at least %d characters\n", minPasswordLength)
		os.Exit(2)
	}

	user, created, err := authService.EnsureAdmin(context.Background(), *username, *password, *email)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed: %v\n", err)
		injector.Shutdown()
		os.Exit(1)
	}

	if created {
		fmt.Printf("Created administrator %s (%s)\n", user.Username, user.ID)
	} else {
		fmt.Printf("Promoted %s (%s) to administrator\n", user.Username, user.ID)
	}
}
