package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/barkeep/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, config.NotifyLog, cfg.Notify.Backend)
	assert.Equal(t, "Cashier", cfg.Ledger.SubmitterTag)
	assert.Equal(t, 300*time.Millisecond, cfg.Search.Debounce)
	assert.Equal(t, 20, cfg.Search.MaxRows)
	assert.Equal(t, "postgres://postgres:@localhost:5432/barkeep?sslmode=disable", cfg.ConnectionString())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("NOTIFY_BACKEND", "redis")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test,http://b.test")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, config.NotifyRedis, cfg.Notify.Backend)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("NOTIFY_BACKEND", "carrier-pigeon")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid notify backend")
}

func TestValidate(t *testing.T) {
	valid := func() *config.Config {
		cfg, err := config.Load()
		require.NoError(t, err)

		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{
			name:   "defaults",
			mutate: func(*config.Config) {},
		},
		{
			name:    "port out of range",
			mutate:  func(c *config.Config) { c.App.Port = 70000 },
			wantErr: "port must be between",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *config.Config) { c.Log.Level = "loud" },
			wantErr: "invalid log level",
		},
		{
			name:    "unknown log format",
			mutate:  func(c *config.Config) { c.Log.Format = "xml" },
			wantErr: "invalid log format",
		},
		{
			name:    "zero debounce",
			mutate:  func(c *config.Config) { c.Search.Debounce = 0 },
			wantErr: "search debounce",
		},
		{
			name:    "negative search row cap",
			mutate:  func(c *config.Config) { c.Search.MaxRows = -1 },
			wantErr: "search max rows",
		},
		{
			name:    "zero read timeout",
			mutate:  func(c *config.Config) { c.Server.ReadTimeout = 0 },
			wantErr: "server timeouts",
		},
		{
			name:    "blank submitter tag",
			mutate:  func(c *config.Config) { c.Ledger.SubmitterTag = "" },
			wantErr: "submitter tag",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
