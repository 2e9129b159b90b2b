package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"port": 9901,
		"api_key": "k",
		"database": {"host": "127.0.0.1", "port": 5432, "user": "u", "password": "p", "db_name": "d"}
	}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9901, cfg.Port)
	require.Equal(t, "am", cfg.Jurisdiction)
	require.Equal(t, "info", cfg.LogConfig.Level)
	require.Equal(t, 8000, cfg.Chunker.MaxChunkChars)
	require.Equal(t, 3000, cfg.Chunker.WindowChars)
	require.Equal(t, 200, cfg.Chunker.WindowOverlap)
	require.Equal(t, 400, cfg.Chunker.TailMergeChars)
	require.Equal(t, 300, cfg.Jobs.LeaseSeconds)
	require.Equal(t, 5, cfg.Jobs.MaxAttempts)
	require.Equal(t, "*/2 * * * *", cfg.Jobs.ChunkCron)
	require.Equal(t, "gemini", cfg.Embedding.Provider)
	require.Equal(t, "gemini-embedding-001", cfg.Embedding.Model)
	require.Equal(t, 768, cfg.Embedding.Dim)
	require.Equal(t, "RETRIEVAL_DOCUMENT", cfg.Embedding.TaskType)
	require.Equal(t, "none", cfg.Archive.Type)
	require.Equal(t, 10, cfg.TableNotify.TimeoutSeconds)
}

func TestLoadKeepsExplicitValues(t *testing.T) {
	path := writeConfig(t, `{
		"port": 9901,
		"api_key": "k",
		"jurisdiction": "ru",
		"database": {"dsn": "postgres://u:p@h/d"},
		"chunker": {"max_chunk_chars": 4000},
		"jobs": {"max_attempts": 2}
	}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "ru", cfg.Jurisdiction)
	require.Equal(t, 4000, cfg.Chunker.MaxChunkChars)
	require.Equal(t, 2, cfg.Jobs.MaxAttempts)
	require.Equal(t, 3000, cfg.Chunker.WindowChars)
}

func TestLoadRejectsIncomplete(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing port", `{"api_key": "k", "database": {"host": "h"}}`},
		{"missing api key", `{"port": 9901, "database": {"host": "h"}}`},
		{"missing database", `{"port": 9901, "api_key": "k"}`},
		{"bad json", `{`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			require.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}
