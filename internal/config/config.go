package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Port      string
	UploadDir string
	Catalog   string
	Database  DatabaseConfig
	Upstream  UpstreamConfig
	Client    ClientConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	Quiet    bool
}

// UpstreamConfig points at the external extraction and matching APIs that
// populate line items and confidence scores. The algorithms live there,
// not here.
type UpstreamConfig struct {
	ExtractionURL string
	MatchingURL   string
	MatchLimit    int
}

// ClientConfig holds settings for the review engine / reviewctl side
type ClientConfig struct {
	BaseURL     string
	DownloadDir string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:      getEnv("PORT", "3200"),
		UploadDir: getEnv("UPLOAD_DIR", "uploads"),
		Catalog:   getEnv("CATALOG_PATH", "catalog/unique_fastener_catalog.csv"),
		Database: DatabaseConfig{
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			Username: getEnv("PG_USERNAME", "postgres"),
			Password: os.Getenv("PG_PASSWORD"),
			Database: getEnv("PG_DATABASE", "orderflow"),
			Quiet:    getEnv("DB_QUIET", "false") == "true",
		},
		Upstream: UpstreamConfig{
			ExtractionURL: getEnv("EXTRACTION_API_URL", "https://plankton-app-qajlk.ondigitalocean.app"),
			MatchingURL:   getEnv("MATCHING_API_URL", "https://endeavor-interview-api-gzwki.ondigitalocean.app"),
			MatchLimit:    5,
		},
		Client: ClientConfig{
			BaseURL:     getEnv("API_BASE_URL", "http://localhost:3200"),
			DownloadDir: getEnv("DOWNLOAD_DIR", "downloads"),
		},
	}, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
