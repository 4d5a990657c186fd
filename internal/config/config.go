package config

import (
	"log"
	"os"
)

type Config struct {
	HTTPPort      string
	DatabaseDSN   string
	SessionSecret string
	CORSOrigins   string
	StaticDir     string // carpeta con el frontend compilado
}

func Load() *Config {
	cfg := &Config{
		HTTPPort:      getEnv("HTTP_PORT", "8080"),
		DatabaseDSN:   getEnv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=heladeria port=5432 sslmode=disable"),
		SessionSecret: getEnv("SESSION_SECRET", ""),
		CORSOrigins:   getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		StaticDir:     getEnv("STATIC_DIR", "./web"),
	}

	// Controles de seguridad para producción
	if cfg.SessionSecret == "" {
		log.Fatal("[FATAL] La variable SESSION_SECRET no está definida. Es obligatoria: firma las cookies de sesión.")
	}
	if len(cfg.SessionSecret) < 32 {
		log.Fatal("[FATAL] SESSION_SECRET debe tener al menos 32 caracteres.")
	}
	if cfg.DatabaseDSN == "host=localhost user=postgres password=postgres dbname=heladeria port=5432 sslmode=disable" {
		log.Println("[WARN] DATABASE_DSN usa el valor por defecto; define tu propia conexión de Postgres en producción.")
	}
	if cfg.CORSOrigins == "http://localhost:5173" {
		log.Println("[WARN] CORS_ALLOWED_ORIGINS usa el valor por defecto; define tu propio dominio en producción.")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
