package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goversion "github.com/caarlos0/go-version"

	"github.com/leavesystem/leavectl/internal/stub"
	"github.com/leavesystem/leavectl/pkg/logger"
)

var (
	version = "0.1.0"
	commit  = ""
	date    = ""
	builtBy = ""
)

func main() {
	info := buildVersion(version, commit, date, builtBy)

	log := logger.New(logger.Config{
		Level:       os.Getenv("LOG_LEVEL"),
		ServiceName: "leavestubd",
		Version:     info.GitVersion,
		Pretty:      os.Getenv("LOG_PRETTY") != "",
	})

	port := getEnvInt("PORT", 8090)
	secret := getEnv("JWT_SECRET", "local-dev-secret")

	log.Info().
		Str("version", info.GitVersion).
		Int("port", port).
		Msg("Starting leave stub backend")

	store := stub.NewStore()
	server := stub.NewServer(store, secret, log)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      server.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	log.Info().Msg("Server stopped")
}

func buildVersion(version, commit, date, builtBy string) goversion.Info {
	return goversion.GetVersionInfo(
		goversion.WithAppDetails("leavestubd", "In-memory leave management backend for local development.", ""),
		func(i *goversion.Info) {
			if commit != "" {
				i.GitCommit = commit
			}
			if version != "" {
				i.GitVersion = version
			}
			if date != "" {
				i.BuildDate = date
			}
			if builtBy != "" {
				i.BuiltBy = builtBy
			}
		},
	)
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as int or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		_, err := fmt.Sscanf(value, "%d", &result)
		if err == nil {
			return result
		}
	}
	return defaultValue
}
