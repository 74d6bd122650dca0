package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
	"golang.org/x/crypto/bcrypt"
)

// Prints a password hash usable for a hand-inserted users row.
func main() {
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost")
	flag.Parse()

	if flag.NArg() < 1 {
		log.Fatal("Usage: go run scripts/generate_password.go [-cost N] <password>")
	}
	password := flag.Arg(0)

	passwords := auth.NewPasswordManager(&config.Config{
		Security: config.SecurityConfig{BcryptCost: *cost},
	})

	hash, err := passwords.HashPassword(password)
	if err != nil {
		log.Fatalf("Error generating hash: %v", err)
	}
	if err := passwords.VerifyPassword(password, hash); err != nil {
		log.Fatalf("Hash verification failed: %v", err)
	}

	fmt.Printf("Hash: %s\n", hash)
}
