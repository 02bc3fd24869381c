package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `{
		"job_url": "https://example.com/posting",
		"use_browser": true,
		"verbose": true,
		"port": 9090
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/posting", cfg.JobURL)
	assert.True(t, cfg.UseBrowser)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, 9090, cfg.Port)
	assert.Empty(t, cfg.Job)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig("")
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "{not valid"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	jobFile := filepath.Join(t.TempDir(), "posting.txt")
	require.NoError(t, os.WriteFile(jobFile, []byte("text"), 0o644))

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"Empty config", Config{}, false},
		{"Job file exists", Config{Job: jobFile}, false},
		{"Job file missing", Config{Job: "/nonexistent/posting.txt"}, true},
		{"Job and URL exclusive", Config{Job: jobFile, JobURL: "https://example.com"}, true},
		{"Port in range", Config{Port: 8080}, false},
		{"Port negative", Config{Port: -1}, true},
		{"Port too large", Config{Port: 70000}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
