package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	google "cat-tnr-registry/internal/adapters/geocoding/google"
	pg "cat-tnr-registry/internal/adapters/storage/postgres"
	"cat-tnr-registry/internal/platform/config"
	"cat-tnr-registry/internal/platform/logger"
	"cat-tnr-registry/internal/ports/geocoding"
	"cat-tnr-registry/internal/router"
)

// @title        Cat TNR Registry API
// @version      1.0
// @description  Registro de gatos de un programa TNR: altas, historial de estados y cuentas de staff.
// @BasePath     /
func main() {
	cfg := config.FromEnv()

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    "cat-tnr-registry",
	})

	var db *sql.DB
	if cfg.DBDSN != "" {
		opened, err := pg.Open(cfg.DBDSN)
		if err != nil {
			log.Error("postgres connect failed", map[string]any{"err": err.Error()})
			return
		}
		db = opened
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := pg.EnsureSchema(ctx, db); err != nil {
			cancel()
			log.Error("schema apply failed", map[string]any{"err": err.Error()})
			return
		}
		cancel()
	} else {
		log.Warn("no DB_DSN, using in-memory store (dev mode)", nil)
	}

	var geocoder geocoding.Geocoder
	if cfg.GoogleMapsAPIKey != "" {
		geocoder = google.NewClient(google.Config{
			APIKey:  cfg.GoogleMapsAPIKey,
			Timeout: cfg.GeocodeTimeout,
		})
	} else {
		log.Warn("no GOOGLE_MAPS_API_KEY, geocoding disabled", nil)
	}
	if cfg.JWTSecret == "" {
		log.Warn("no JWT_SECRET, auth in dev mode via X-Debug-* headers", nil)
	}

	r := router.NewRouter(router.Options{
		DB:             db,
		JWTSecret:      cfg.JWTSecret,
		JWTTTL:         cfg.JWTTTL,
		Geocoder:       geocoder,
		GeocodeTimeout: cfg.GeocodeTimeout,
		Logger:         log,
	})

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Info("starting server", map[string]any{"addr": cfg.Addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", map[string]any{"err": err.Error()})
	}
}
