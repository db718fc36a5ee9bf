package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/kirinyoku/dakshina/docs"
	"github.com/kirinyoku/dakshina/internal/app"
	"github.com/kirinyoku/dakshina/internal/config"
	"github.com/kirinyoku/dakshina/internal/domain"
	httpgin "github.com/kirinyoku/dakshina/internal/transport/http/gin"
)

// @title Dakshina API
// @version 1.0
// @description Pandit booking engine: pricing, travel, lifecycle, cancellations and payouts.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	devToken := flag.String("dev-token", "", "print a bearer token for ROLE (CUSTOMER, PANDIT, ADMIN) and exit")
	devSubject := flag.String("dev-subject", "", "user id for -dev-token (random when empty)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.New()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if *devToken != "" {
		if err := printDevToken(cfg, *devToken, *devSubject); err != nil {
			logger.Error("failed to issue token", "error", err)
			os.Exit(1)
		}
		return
	}

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create application", "error", err)
		os.Exit(1)
	}

	if err := application.Run(context.Background()); err != nil {
		logger.Error("application finished with error", "error", err)
		os.Exit(1)
	}
}

func printDevToken(cfg *config.Config, role, subject string) error {
	actor := domain.Actor{ID: uuid.New(), Role: domain.Role(role)}
	if !actor.Role.Valid() {
		return fmt.Errorf("unknown role %q", role)
	}
	if subject != "" {
		id, err := uuid.Parse(subject)
		if err != nil {
			return err
		}
		actor.ID = id
	}

	tok, err := httpgin.IssueToken([]byte(cfg.Auth.JWTSecret), actor, 24*time.Hour)
	if err != nil {
		return err
	}
	fmt.Println(tok)
	return nil
}
