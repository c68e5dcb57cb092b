package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/tendant/simple-cms/pkg/simplecms"
	"github.com/tendant/simple-cms/pkg/simplecms/api"
	"github.com/tendant/simple-cms/pkg/simplecms/config"
)

// AdminConfig bootstraps the initial admin account on startup.
type AdminConfig struct {
	JWTSecret     string `env:"JWT_SECRET" env-default:"dev-secret-change-me"`
	AdminEmail    string `env:"ADMIN_EMAIL" env-default:""`
	AdminName     string `env:"ADMIN_NAME" env-default:"Admin"`
	AdminPassword string `env:"ADMIN_PASSWORD" env-default:""`
}

func main() {
	var adminCfg AdminConfig
	if err := cleanenv.ReadEnv(&adminCfg); err != nil {
		slog.Error("Failed to read configuration", "err", err)
		os.Exit(1)
	}

	serverConfig, err := config.Load(config.WithEnv(""))
	if err != nil {
		slog.Error("Failed to load server configuration", "err", err)
		os.Exit(1)
	}

	svc, err := serverConfig.BuildService()
	if err != nil {
		slog.Error("Failed to build service", "err", err)
		os.Exit(1)
	}

	if err := bootstrapAdmin(context.Background(), svc, adminCfg); err != nil {
		slog.Error("Failed to bootstrap admin account", "err", err)
		os.Exit(1)
	}

	secret := serverConfig.JWTSecret
	if secret == "" {
		secret = adminCfg.JWTSecret
	}
	tokenAuth := jwtauth.New("HS256", []byte(secret), nil)

	server := api.NewServer(svc, tokenAuth)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", serverConfig.Port),
		Handler: server.Router(),
	}

	go func() {
		slog.Info("Simple CMS server starting",
			"port", serverConfig.Port,
			"env", serverConfig.Environment,
			"database", serverConfig.DatabaseType,
			"media_store", serverConfig.MediaStore.Type)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "err", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "err", err)
		os.Exit(1)
	}

	slog.Info("Server exiting")
}

// bootstrapAdmin creates the initial admin account when ADMIN_EMAIL and
// ADMIN_PASSWORD are set and no account with that email exists yet.
func bootstrapAdmin(ctx context.Context, svc simplecms.Service, cfg AdminConfig) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		slog.Warn("ADMIN_EMAIL/ADMIN_PASSWORD not set; skipping admin bootstrap")
		return nil
	}

	_, err := svc.CreateAuthor(ctx, simplecms.CreateAuthorRequest{
		Email:    cfg.AdminEmail,
		Name:     cfg.AdminName,
		Password: cfg.AdminPassword,
	})
	if err != nil {
		if errors.Is(err, simplecms.ErrDuplicateID) {
			slog.Info("Admin account already exists", "email", cfg.AdminEmail)
			return nil
		}
		return err
	}

	slog.Info("Admin account created", "email", cfg.AdminEmail)
	return nil
}
