package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App: AppConfig{
			Environment: "development",
		},
		Logger: LoggerConfig{
			Level: "info",
		},
		Storage: StorageConfig{
			DataPath: "/some/path",
		},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	err := validConfig().Validate()
	assert.NoError(t, err)
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_LogLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"debug", true},
		{"info", true},
		{"warn", true},
		{"error", true},
		{"WARN", true}, // case insensitive
		{"trace", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := validConfig()
			cfg.Logger.Level = tt.level

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_EmptyDataPath(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.DataPath = ""

	err := cfg.Validate()
	assert.Error(t, err)
}

func TestExpandPath_Default(t *testing.T) {
	got, err := expandPath("", "/default/path")
	require.NoError(t, err)
	assert.Equal(t, "/default/path", got)
}

func TestExpandPath_Home(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/Marginalia/data", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "Marginalia", "data"), got)
}

func TestExpandPath_Relative(t *testing.T) {
	got, err := expandPath("data", "")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
}

func TestSplitOrigins(t *testing.T) {
	assert.Equal(t, []string{"*"}, splitOrigins("*"))
	assert.Equal(t,
		[]string{"http://localhost:3000", "https://app.example.com"},
		splitOrigins(" http://localhost:3000 , https://app.example.com ,"),
	)
	assert.Empty(t, splitOrigins("  ,  "))
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("MARGINALIA_TEST_KEY", "from-env")

	assert.Equal(t, "from-flag", getConfigValue("from-flag", "MARGINALIA_TEST_KEY", "default"))
	assert.Equal(t, "from-env", getConfigValue("", "MARGINALIA_TEST_KEY", "default"))
	assert.Equal(t, "default", getConfigValue("", "MARGINALIA_UNSET_KEY", "default"))
}

func TestLoadEnvFile(t *testing.T) {
	tmpDir := t.TempDir()
	envPath := filepath.Join(tmpDir, ".env")

	content := "# comment\nMARGINALIA_ENVFILE_A=hello\nMARGINALIA_ENVFILE_B=\"quoted\"\n"
	require.NoError(t, os.WriteFile(envPath, []byte(content), 0o600))

	t.Setenv("MARGINALIA_ENVFILE_A", "")
	t.Setenv("MARGINALIA_ENVFILE_B", "")
	os.Unsetenv("MARGINALIA_ENVFILE_A")
	os.Unsetenv("MARGINALIA_ENVFILE_B")

	require.NoError(t, loadEnvFile(envPath))
	assert.Equal(t, "hello", os.Getenv("MARGINALIA_ENVFILE_A"))
	assert.Equal(t, "quoted", os.Getenv("MARGINALIA_ENVFILE_B"))
}

func TestLoadEnvFile_Missing(t *testing.T) {
	err := loadEnvFile(filepath.Join(t.TempDir(), "nope.env"))
	assert.Error(t, err)
}
