package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port          int              `json:"port"`
	CORSAllowlist []string         `json:"cors_allowlist"`
	KBRefreshSpec string           `json:"kb_refresh_spec"`
	LogConfig     logger.LogConfig `json:"log_config"`
	AI            AIConfig         `json:"ai"`
	Snapshot      SnapshotConfig   `json:"snapshot"`
	Images        ImagesConfig     `json:"images"`
}

type AIConfig struct {
	Provider           string      `json:"provider"`
	Model              string      `json:"model"`
	EmbedModel         string      `json:"embed_model"`
	Data               interface{} `json:"data"`
	EmbedCacheSize     int         `json:"embed_cache_size"`
	EmbedCacheTTLHours int         `json:"embed_cache_ttl_hours"`
}

type SnapshotConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type ImagesConfig struct {
	GoogleAPIKey         string `json:"google_api_key"`
	GoogleSearchEngineID string `json:"google_search_engine_id"`
	PexelsAPIKey         string `json:"pexels_api_key"`
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
	if cfg.AI.Provider == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "gemini-2.5-flash"
	}
	if cfg.AI.EmbedModel == "" {
		cfg.AI.EmbedModel = "embedding-001"
	}
	if cfg.AI.EmbedCacheSize == 0 {
		cfg.AI.EmbedCacheSize = 10000
	}
	if cfg.AI.EmbedCacheTTLHours == 0 {
		cfg.AI.EmbedCacheTTLHours = 2
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.Snapshot.Type == "" {
		cfg.Snapshot.Type = "local"
		cfg.Snapshot.Data = map[string]interface{}{"dir": "./simple_vector_storage"}
	}
	return &cfg, nil
}
