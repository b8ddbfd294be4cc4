package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port              int              `json:"port"`
	CORSAllowlist     []string         `json:"cors_allowlist"`
	WriteLimitSeconds int              `json:"write_limit_seconds"`
	LogConfig         logger.LogConfig `json:"log_config"`
	Database          DatabaseConfig   `json:"database"`
	AI                AIConfig         `json:"ai"`
	Ingest            IngestConfig     `json:"ingest"`
	Scraper           ScraperConfig    `json:"scraper"`
	Archive           ArchiveConfig    `json:"archive"`
	Jobs              JobsConfig       `json:"jobs"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
}

type AIConfig struct {
	Provider        string      `json:"provider"`
	Model           string      `json:"model"`
	Dimension       int         `json:"dimension"`
	TimeoutSeconds  int         `json:"timeout_seconds"`
	CacheSize       int         `json:"cache_size"`
	CacheTTLMinutes int         `json:"cache_ttl_minutes"`
	Data            interface{} `json:"data"`
}

type IngestConfig struct {
	EmbedWorkers int `json:"embed_workers"`
}

type ScraperConfig struct {
	Dir           string `json:"dir"`
	Command       string `json:"command"`
	LocationsFile string `json:"locations_file"`
}

type ArchiveConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type JobsConfig struct {
	EmbedBackfillCron  string `json:"embed_backfill_cron"`
	EmbedBackfillLimit int    `json:"embed_backfill_limit"`
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
		cfg.Port = 8080
	}
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return nil, fmt.Errorf("database.dsn or database.host is required")
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = "openai"
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "text-embedding-3-small"
	}
	if cfg.AI.Dimension == 0 {
		cfg.AI.Dimension = 1536
	}
	if cfg.AI.TimeoutSeconds == 0 {
		cfg.AI.TimeoutSeconds = 15
	}
	if cfg.AI.CacheSize == 0 {
		cfg.AI.CacheSize = 2048
	}
	if cfg.AI.CacheTTLMinutes == 0 {
		cfg.AI.CacheTTLMinutes = 120
	}
	if cfg.Ingest.EmbedWorkers == 0 {
		cfg.Ingest.EmbedWorkers = 4
	}
	if cfg.Jobs.EmbedBackfillLimit == 0 {
		cfg.Jobs.EmbedBackfillLimit = 100
	}
	return &cfg, nil
}
