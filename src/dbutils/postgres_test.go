package dbutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresConfig(t *testing.T) {
	t.Run("url", func(t *testing.T) {
		cfg := PostgresConfig{Host: "localhost", Port: "5433", User: "grodt", Password: "secret", DBName: "options"}
		assert.Equal(t, "host=localhost user=grodt password=secret dbname=options port=5433 sslmode=disable TimeZone=UTC", cfg.URL())
	})

	t.Run("from env", func(t *testing.T) {
		t.Setenv("POSTGRES_HOST", "db")
		t.Setenv("POSTGRES_PORT", "")
		t.Setenv("POSTGRES_USER", "user")
		t.Setenv("POSTGRES_PASSWORD", "pass")
		t.Setenv("POSTGRES_DB", "options")

		cfg, err := NewPostgresConfigFromEnv()
		require.NoError(t, err)
		assert.Equal(t, PostgresConfig{Host: "db", Port: "5432", User: "user", Password: "pass", DBName: "options"}, cfg)
	})

	t.Run("missing host", func(t *testing.T) {
		t.Setenv("POSTGRES_HOST", "")

		_, err := NewPostgresConfigFromEnv()
		assert.Error(t, err)
	})
}

func TestCloseNil(t *testing.T) {
	assert.NoError(t, Close(nil))
}
