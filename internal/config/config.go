package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port         int               `json:"port"`
	APIKey       string            `json:"api_key"`
	Jurisdiction string            `json:"jurisdiction"`
	SourceName   string            `json:"source_name"`
	LogConfig    logger.LogConfig  `json:"log_config"`
	Database     DatabaseConfig    `json:"database"`
	Chunker      ChunkerConfig     `json:"chunker"`
	Jobs         JobsConfig        `json:"jobs"`
	Embedding    EmbeddingConfig   `json:"embedding"`
	Archive      ArchiveConfig     `json:"archive"`
	TableNotify  TableNotifyConfig `json:"table_notify"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

// ChunkerConfig externalizes the chunking constants that were previously
// inlined at call sites. The defaults are the reference values.
type ChunkerConfig struct {
	MaxChunkChars    int `json:"max_chunk_chars"`
	WindowChars      int `json:"window_chars"`
	WindowOverlap    int `json:"window_overlap"`
	TailMergeChars   int `json:"tail_merge_chars"`
	MinPreambleChars int `json:"min_preamble_chars"`
	InsertBatchSize  int `json:"insert_batch_size"`
}

type JobsConfig struct {
	LeaseSeconds       int    `json:"lease_seconds"`
	MaxAttempts        int    `json:"max_attempts"`
	ClaimBatch         int    `json:"claim_batch"`
	DocConcurrency     int    `json:"doc_concurrency"`
	BackoffBaseSeconds int    `json:"backoff_base_seconds"`
	BackoffMaxSeconds  int    `json:"backoff_max_seconds"`
	ChunkCron          string `json:"chunk_cron"`
	EmbedCron          string `json:"embed_cron"`
	RecoverCron        string `json:"recover_cron"`
}

type EmbeddingConfig struct {
	Provider        string      `json:"provider"`
	Model           string      `json:"model"`
	Dim             int         `json:"dim"`
	TaskType        string      `json:"task_type"`
	CacheSize       int         `json:"cache_size"`
	CacheTTLSeconds int         `json:"cache_ttl_seconds"`
	SettingsTTLSecs int         `json:"settings_ttl_seconds"`
	Data            interface{} `json:"data"`
}

type ArchiveConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type TableNotifyConfig struct {
	URL            string `json:"url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api_key is required")
	}
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return nil, fmt.Errorf("database.dsn or database.host is required")
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.Jurisdiction == "" {
		cfg.Jurisdiction = "am"
	}
	applyChunkerDefaults(&cfg.Chunker)
	applyJobsDefaults(&cfg.Jobs)
	applyEmbeddingDefaults(&cfg.Embedding)
	if cfg.Archive.Type == "" {
		cfg.Archive.Type = "none"
	}
	if cfg.TableNotify.TimeoutSeconds == 0 {
		cfg.TableNotify.TimeoutSeconds = 10
	}
	return &cfg, nil
}

func applyChunkerDefaults(c *ChunkerConfig) {
	if c.MaxChunkChars == 0 {
		c.MaxChunkChars = 8000
	}
	if c.WindowChars == 0 {
		c.WindowChars = 3000
	}
	if c.WindowOverlap == 0 {
		c.WindowOverlap = 200
	}
	if c.TailMergeChars == 0 {
		c.TailMergeChars = 400
	}
	if c.MinPreambleChars == 0 {
		c.MinPreambleChars = 80
	}
	if c.InsertBatchSize == 0 {
		c.InsertBatchSize = 100
	}
}

func applyJobsDefaults(c *JobsConfig) {
	if c.LeaseSeconds == 0 {
		c.LeaseSeconds = 300
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 5
	}
	if c.ClaimBatch == 0 {
		c.ClaimBatch = 10
	}
	if c.DocConcurrency == 0 {
		c.DocConcurrency = 5
	}
	if c.BackoffBaseSeconds == 0 {
		c.BackoffBaseSeconds = 30
	}
	if c.BackoffMaxSeconds == 0 {
		c.BackoffMaxSeconds = 3600
	}
	if c.ChunkCron == "" {
		c.ChunkCron = "*/2 * * * *"
	}
	if c.EmbedCron == "" {
		c.EmbedCron = "*/5 * * * *"
	}
	if c.RecoverCron == "" {
		c.RecoverCron = "*/10 * * * *"
	}
}

func applyEmbeddingDefaults(c *EmbeddingConfig) {
	if c.Provider == "" {
		c.Provider = "gemini"
	}
	if c.Model == "" {
		c.Model = "gemini-embedding-001"
	}
	if c.Dim == 0 {
		c.Dim = 768
	}
	if c.TaskType == "" {
		c.TaskType = "RETRIEVAL_DOCUMENT"
	}
	if c.CacheSize == 0 {
		c.CacheSize = 4096
	}
	if c.CacheTTLSeconds == 0 {
		c.CacheTTLSeconds = 3600
	}
	if c.SettingsTTLSecs == 0 {
		c.SettingsTTLSecs = 300
	}
}
