package config

import (
	"os"
	"strconv"
	"time"
)

// Config agrupa toda la configuración del servicio, leída de env.
// main es el único dueño del ciclo de vida: nada de globals ambientales.
type Config struct {
	Addr string

	// Si DBDSN está vacío, el router usa repos in-memory (modo dev).
	DBDSN string

	// JWT para sesiones. Si JWTSecret está vacío => modo dev sin verifier
	// (auth por headers X-Debug-*, igual que el esqueleto original).
	JWTSecret string
	JWTTTL    time.Duration

	// Geocoding (Google). Sin API key => geocoding deshabilitado, nunca fatal.
	GoogleMapsAPIKey string
	GeocodeTimeout   time.Duration

	LogLevel  string
	LogFormat string
}

// FromEnv construye Config desde variables de entorno para que main quede corto.
func FromEnv() Config {
	cfg := Config{
		Addr:             ":8080",
		DBDSN:            os.Getenv("DB_DSN"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		JWTTTL:           8 * time.Hour,
		GoogleMapsAPIKey: os.Getenv("GOOGLE_MAPS_API_KEY"),
		GeocodeTimeout:   3 * time.Second,
		LogLevel:         os.Getenv("LOG_LEVEL"),
		LogFormat:        os.Getenv("LOG_FORMAT"),
	}

	if v := os.Getenv("PORT"); v != "" {
		cfg.Addr = ":" + v
	}
	if v := os.Getenv("ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("JWT_TTL_HOURS"); v != "" {
		if h, err := strconv.Atoi(v); err == nil && h > 0 {
			cfg.JWTTTL = time.Duration(h) * time.Hour
		}
	}
	if v := os.Getenv("GEOCODE_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			cfg.GeocodeTimeout = time.Duration(ms) * time.Millisecond
		}
	}

	return cfg
}
