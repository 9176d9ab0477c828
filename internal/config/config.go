// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir          string // Base directory for databases (always absolute)
	Port             int
	LogLevel         string
	DevMode          bool
	CustomerDataPath string // JSON file with raw customer records
	SyntheticCount   int    // Dev-mode synthetic customer count when no data file exists
	RetrainSchedule  string // Cron spec for periodic retraining
	InsightTargets   int    // How many of the riskiest customers get AI insights per run

	XAIAPIKey  string // x.ai API key for insight generation (optional)
	XAIBaseURL string
	XAIModel   string

	Backup *BackupConfig
}

// BackupConfig holds S3-compatible backup configuration. Backups are
// disabled unless a bucket is configured.
type BackupConfig struct {
	Enabled         bool
	Bucket          string
	Endpoint        string // Custom endpoint for S3-compatible stores; empty for AWS
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Data directory: resolve to absolute path and ensure it exists
	dataDir := getEnv("STRESSWATCH_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:          absDataDir,
		Port:             getEnvAsInt("PORT", 8000),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		DevMode:          getEnvAsBool("DEV_MODE", false),
		CustomerDataPath: getEnv("CUSTOMER_DATA_PATH", filepath.Join(absDataDir, "customers.json")),
		SyntheticCount:   getEnvAsInt("SYNTHETIC_CUSTOMERS", 500),
		RetrainSchedule:  getEnv("RETRAIN_SCHEDULE", "0 3 * * *"),
		InsightTargets:   getEnvAsInt("INSIGHT_TARGETS", 3),
		XAIAPIKey:        getEnv("XAI_API_KEY", ""),
		XAIBaseURL:       getEnv("XAI_BASE_URL", "https://api.x.ai/v1"),
		XAIModel:         getEnv("XAI_MODEL", "grok-4-latest"),
		Backup:           loadBackupConfig(),
	}

	return cfg, nil
}

func loadBackupConfig() *BackupConfig {
	bucket := getEnv("BACKUP_S3_BUCKET", "")
	return &BackupConfig{
		Enabled:         bucket != "",
		Bucket:          bucket,
		Endpoint:        getEnv("BACKUP_S3_ENDPOINT", ""),
		Region:          getEnv("BACKUP_S3_REGION", "auto"),
		AccessKeyID:     getEnv("BACKUP_S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("BACKUP_S3_SECRET_ACCESS_KEY", ""),
	}
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
