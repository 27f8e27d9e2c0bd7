package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.AppHost)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "Asia/Jakarta", cfg.Timezone)
	assert.Equal(t, "complaint-events", cfg.KafkaTopic)
	assert.Equal(t, "complaint_service", cfg.DB.Database)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9000")
	t.Setenv("DB_HOST", "dbhost")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.HTTPPort)
	assert.Equal(t, "dbhost", cfg.DB.Host)
	assert.Equal(t, "k1:9092,k2:9092", cfg.KafkaBrokers)
}

func TestDSNAndDatabaseURL(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	cfg.DB.Host = "db"
	cfg.DB.Port = "5433"
	cfg.DB.User = "svc"
	cfg.DB.Password = "p@ss word"
	cfg.DB.Database = "complaints"
	cfg.DB.SSLMode = "disable"

	assert.Equal(t, "host=db port=5433 user=svc password=p@ss word dbname=complaints sslmode=disable", cfg.DSN())
	assert.Equal(t, "postgres://svc:p%40ss+word@db:5433/complaints?sslmode=disable", cfg.DatabaseURL())
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
}

func TestValidate_ProductionRequirements(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	cfg.AppEnv = "production"
	cfg.DB.Password = ""
	assert.Error(t, cfg.Validate())

	cfg.DB.Password = "secret"
	assert.Error(t, cfg.Validate(), "default JWT secret must be rejected in production")

	cfg.JWTSecret = "real-secret"
	assert.NoError(t, cfg.Validate())
}
