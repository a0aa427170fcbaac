package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	viper.Reset()

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Server.Address)
	require.Equal(t, "mongodb://localhost:27017", cfg.Database.URI)
	require.Equal(t, "liftlog", cfg.Database.Name)
	require.True(t, cfg.S3.UseSSL)
	require.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
}

func TestLoadConfigFromFile(t *testing.T) {
	viper.Reset()

	dir := t.TempDir()
	yaml := []byte(`
server:
  address: ":9090"
database:
  uri: "mongodb://db:27017"
  name: "liftlog_test"
jwt:
  secret: "test-secret"
  expiration: "30m"
s3:
  endpoint: "minio:9000"
  bucket_name: "media"
  use_ssl: false
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.Server.Address)
	require.Equal(t, "mongodb://db:27017", cfg.Database.URI)
	require.Equal(t, "liftlog_test", cfg.Database.Name)
	require.Equal(t, "test-secret", cfg.JWT.Secret)
	require.Equal(t, 30*time.Minute, cfg.JWT.Expiration)
	require.Equal(t, "minio:9000", cfg.S3.Endpoint)
	require.Equal(t, "media", cfg.S3.BucketName)
	require.False(t, cfg.S3.UseSSL)
}

func TestLoadConfigEnvOverridesDefaults(t *testing.T) {
	viper.Reset()
	t.Setenv("SERVER_ADDRESS", ":7070")
	t.Setenv("DATABASE_NAME", "liftlog_env")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, ":7070", cfg.Server.Address)
	require.Equal(t, "liftlog_env", cfg.Database.Name)
}
