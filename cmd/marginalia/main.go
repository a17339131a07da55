package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/awillits/marginalia/internal/database"
	"github.com/awillits/marginalia/internal/email"
	"github.com/awillits/marginalia/internal/imagestore"
	"github.com/awillits/marginalia/internal/logging"
	"github.com/awillits/marginalia/internal/ocr"
	"github.com/awillits/marginalia/internal/server"
	"github.com/awillits/marginalia/internal/store"
)

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	// Missing .env is fine; containers pass real environment variables.
	godotenv.Load()

	logger := logging.Setup(
		env("MARGINALIA_LOG_LEVEL", "info"),
		env("MARGINALIA_LOG_FORMAT", "text"),
	)

	dataDir := env("MARGINALIA_DATA_DIR", "data")
	dbPath := env("MARGINALIA_DB_PATH", filepath.Join(dataDir, "marginalia.db"))

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		logger.Error("create data dir", "error", err)
		os.Exit(1)
	}

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	images, err := imagestore.New(filepath.Join(dataDir, "images"))
	if err != nil {
		logger.Error("open image store", "error", err)
		os.Exit(1)
	}

	// The stored recognition language wins over the environment default.
	settings := store.NewSettingsStore(db)
	language := env("MARGINALIA_OCR_LANG", "eng")
	if v, err := settings.Get("ocr_language"); err == nil && v != "" {
		language = v
	}
	engine := ocr.NewTesseract(language)

	mailer := email.NewClient(
		os.Getenv("MARGINALIA_POSTMARK_TOKEN"),
		os.Getenv("MARGINALIA_FROM_EMAIL"),
	)
	if !mailer.Configured() {
		logger.Warn("postmark not configured, sign-in codes will be logged instead")
	}

	srv := server.New(server.Config{
		DB:            db,
		DBPath:        dbPath,
		Images:        images,
		OCREngine:     engine,
		Mailer:        mailer,
		SecureCookies: env("MARGINALIA_SECURE_COOKIES", "true") == "true",
		Logger:        logger,
		OnOCRLanguage: engine.SetLanguage,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv.Backups.Start(ctx)
	defer srv.Backups.Stop()

	// Hourly maintenance: expired sessions and codes, stale limiter entries.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := srv.Sessions().DeleteExpired(); err != nil {
					logger.Error("delete expired sessions", "error", err)
				} else if n > 0 {
					logger.Debug("deleted expired sessions", "count", n)
				}
				if n, err := srv.LoginCodes().DeleteExpired(); err != nil {
					logger.Error("delete expired login codes", "error", err)
				} else if n > 0 {
					logger.Debug("deleted expired login codes", "count", n)
				}
				srv.Limiter().Cleanup()
			}
		}
	}()

	addr := ":" + env("MARGINALIA_PORT", "8080")
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", "error", err)
		}
	}
}
