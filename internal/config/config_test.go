package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		for _, key := range []string{"APP_PORT", "API_BASE_URL", "API_TOKEN", "API_USER_ID", "HTTP_TIMEOUT_SECONDS", "TASKPOCKET_CONFIG"} {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}

		require.NoError(t, LoadEnvConfig())
		assert.Equal(t, "8083", DefaultEnvConfig.APP_PORT)
		assert.Equal(t, "http://localhost:8000/api", DefaultEnvConfig.API_BASE_URL)
		assert.Equal(t, 10, DefaultEnvConfig.HTTP_TIMEOUT_SECONDS)
	})

	t.Run("EnvValuesWin", func(t *testing.T) {
		t.Setenv("APP_PORT", "9000")
		t.Setenv("API_USER_ID", "42")
		t.Setenv("TASKPOCKET_CONFIG", "")
		os.Unsetenv("TASKPOCKET_CONFIG")

		require.NoError(t, LoadEnvConfig())
		assert.Equal(t, "9000", DefaultEnvConfig.APP_PORT)
		assert.Equal(t, 42, DefaultEnvConfig.API_USER_ID)
	})

	t.Run("InvalidUserIDFails", func(t *testing.T) {
		t.Setenv("API_USER_ID", "not-a-number")
		assert.Error(t, LoadEnvConfig())
	})

	t.Run("YAMLOverridesEnv", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("app_port: \"7777\"\napi_token: \"yaml-token\"\n"), 0644))

		t.Setenv("APP_PORT", "9000")
		t.Setenv("API_USER_ID", "")
		os.Unsetenv("API_USER_ID")
		t.Setenv("TASKPOCKET_CONFIG", path)

		require.NoError(t, LoadEnvConfig())
		assert.Equal(t, "7777", DefaultEnvConfig.APP_PORT)
		assert.Equal(t, "yaml-token", DefaultEnvConfig.API_TOKEN)
	})

	t.Run("MissingYAMLFileFails", func(t *testing.T) {
		t.Setenv("TASKPOCKET_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, LoadEnvConfig())
	})
}
