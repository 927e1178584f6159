package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DB_DRIVER", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "groq", cfg.AIProvider)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.GroqModel)
	assert.Equal(t, 5*time.Second, cfg.ServiceCheckTimeout)
	assert.Equal(t, 10*time.Second, cfg.PerformanceCheckTimeout)
	assert.Equal(t, "@every 1m", cfg.AutoCheckSchedule)
	assert.Zero(t, cfg.AITimeout)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logwise.yaml")
	content := []byte(`
db_driver: sqlite
db_name: /tmp/logwise-test
groq_model: from-file
service_check_timeout: 2s
notify_rate_per_min: 7
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("GROQ_MODEL", "from-env")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "/tmp/logwise-test.db", cfg.DSN())
	assert.Equal(t, "from-env", cfg.GroqModel)
	assert.Equal(t, 2*time.Second, cfg.ServiceCheckTimeout)
	assert.Equal(t, 7, cfg.NotifyRatePerMin)
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := defaults()
	assert.EqualError(t, cfg.Validate(), "JWT_SECRET environment variable is required")

	cfg.JWTSecret = "secret"
	assert.EqualError(t, cfg.Validate(), "DB_PASSWORD environment variable is required")

	cfg.DBDriver = "sqlite"
	assert.NoError(t, cfg.Validate())

	cfg.AIProvider = "unknown"
	assert.Error(t, cfg.Validate())
}

func TestDSN(t *testing.T) {
	cfg := defaults()
	cfg.DBPassword = "pw"
	assert.Contains(t, cfg.DSN(), "host=localhost")
	assert.Contains(t, cfg.DSN(), "password=pw")

	cfg.DBDriver = "mysql"
	assert.Equal(t, "postgres:pw@tcp(localhost:5432)/logwise?charset=utf8mb4&parseTime=True&loc=UTC", cfg.DSN())

	cfg.DBDSN = "explicit"
	assert.Equal(t, "explicit", cfg.DSN())
}

func TestAdminEmailList(t *testing.T) {
	cfg := &Config{AdminEmails: " Ops@Example.com, ,root@example.com"}
	assert.Equal(t, []string{"ops@example.com", "root@example.com"}, cfg.AdminEmailList())
	assert.Nil(t, (&Config{}).AdminEmailList())
}
