package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/joho/godotenv"
)

// ServerConfig holds the backend settings, read from the environment.
type ServerConfig struct {
	DatabaseURL string
	Port        string
	UploadDir   string
	PublicURL   string
	LogDir      string
}

func LoadServerConfig() (*ServerConfig, error) {
	_ = godotenv.Load()

	cfg := &ServerConfig{
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		Port:        envOr("PORT", "3000"),
		UploadDir:   envOr("UPLOAD_DIR", "uploads"),
		LogDir:      envOr("LOG_DIR", "logs"),
	}
	cfg.PublicURL = strings.TrimRight(envOr("PUBLIC_URL", "http://localhost:"+cfg.Port), "/")

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// EnsureDirs creates the upload and log directories.
func (c *ServerConfig) EnsureDirs() error {
	for _, dir := range []string{c.UploadDir, c.LogDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create folder %s: %v", dir, err)
		}
	}
	return nil
}

// GetCorsConfig returns CORS configuration for the API
func (c *ServerConfig) GetCorsConfig() cors.Config {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	corsConfig.ExposeHeaders = []string{"Content-Length", "Content-Type"}
	corsConfig.MaxAge = 12 * time.Hour
	return corsConfig
}
