package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("STRESSWATCH_DATA_DIR", tmpDir)
	t.Setenv("PORT", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("DEV_MODE", "")
	t.Setenv("RETRAIN_SCHEDULE", "")
	t.Setenv("BACKUP_S3_BUCKET", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	absPath, err := filepath.Abs(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, absPath, cfg.DataDir)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.DevMode)
	assert.Equal(t, 500, cfg.SyntheticCount)
	assert.Equal(t, "0 3 * * *", cfg.RetrainSchedule)
	assert.Equal(t, 3, cfg.InsightTargets)
	assert.Equal(t, filepath.Join(absPath, "customers.json"), cfg.CustomerDataPath)
}

func TestLoad_EnvOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("STRESSWATCH_DATA_DIR", tmpDir)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("SYNTHETIC_CUSTOMERS", "50")
	t.Setenv("INSIGHT_TARGETS", "5")
	t.Setenv("CUSTOMER_DATA_PATH", "/tmp/records.json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, 50, cfg.SyntheticCount)
	assert.Equal(t, 5, cfg.InsightTargets)
	assert.Equal(t, "/tmp/records.json", cfg.CustomerDataPath)
}

func TestLoad_InvalidIntFallsBackToDefault(t *testing.T) {
	t.Setenv("STRESSWATCH_DATA_DIR", t.TempDir())
	t.Setenv("PORT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.Port)
}

func TestLoad_BackupDisabledWithoutBucket(t *testing.T) {
	t.Setenv("STRESSWATCH_DATA_DIR", t.TempDir())
	t.Setenv("BACKUP_S3_BUCKET", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg.Backup)
	assert.False(t, cfg.Backup.Enabled)
}

func TestLoad_BackupEnabledWithBucket(t *testing.T) {
	t.Setenv("STRESSWATCH_DATA_DIR", t.TempDir())
	t.Setenv("BACKUP_S3_BUCKET", "stresswatch-backups")
	t.Setenv("BACKUP_S3_ENDPOINT", "https://minio.local:9000")
	t.Setenv("BACKUP_S3_REGION", "eu-central-1")

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg.Backup)
	assert.True(t, cfg.Backup.Enabled)
	assert.Equal(t, "stresswatch-backups", cfg.Backup.Bucket)
	assert.Equal(t, "https://minio.local:9000", cfg.Backup.Endpoint)
	assert.Equal(t, "eu-central-1", cfg.Backup.Region)
}
