// cmd/mailcheck/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/email"
	"github.com/your-org/storefront-backend/internal/pkg/logger"
)

// Sends a sample activation email through the configured transport.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run ./cmd/mailcheck <recipient>")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	appLogger := logger.New(cfg.Logging)

	mailer, err := email.NewEmailService(cfg, appLogger)
	if err != nil {
		appLogger.WithError(err).Fatal("failed to configure email delivery")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err = mailer.SendActivationEmail(ctx, email.ActivationEmailData{
		Username:       "mailcheck",
		Email:          os.Args[1],
		ActivationURL:  fmt.Sprintf("%sactivate?token=mailcheck", cfg.App.FrontendBaseURL),
		ExpiresIn:      cfg.Security.ActivationTokenTTL,
		StorefrontName: cfg.App.Name,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("send failed")
	}

	appLogger.WithField("to", os.Args[1]).Info("activation email sent")
}
