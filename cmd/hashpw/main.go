// Command hashpw generates the bcrypt hash the gateway expects in
// EBURON_ADMIN_PASSWORD_HASH. The password is read from the
// ADMIN_BOOTSTRAP_PASSWORD environment variable so it never lands in shell
// history.
package main

import (
	"fmt"
	"os"

	"alias_gateway/internal/auth"
)

func main() {
	password := os.Getenv("ADMIN_BOOTSTRAP_PASSWORD")
	if password == "" {
		fmt.Fprintln(os.Stderr, "ERROR: ADMIN_BOOTSTRAP_PASSWORD must be set")
		os.Exit(1)
	}
	if len(password) < 8 {
		fmt.Fprintln(os.Stderr, "ERROR: Password must be at least 8 characters long")
		os.Exit(1)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to hash password: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Set the following on the gateway:")
	fmt.Printf("EBURON_ADMIN_PASSWORD_HASH=%s\n", hash)
	fmt.Println("\nFor security, unset ADMIN_BOOTSTRAP_PASSWORD afterwards.")
}
