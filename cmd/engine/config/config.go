package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/scribeworks/transcript-engine/cmd/engine/align"
)

const (
	// defaults
	DBPathDefault            = "transcripts.db"
	RefreshChannelDefault    = "transcript-refresh"
	CompletionChannelDefault = "transcript-complete"
)

type EngineConfig struct {
	// DBPath is the location of the SQLite transcript database.
	DBPath string

	// RedisAddr is optional; when empty, notifications stay in-process and
	// no completion consumer is started.
	RedisAddr string

	// RefreshChannel carries refresh notifications for live clients.
	RefreshChannel string

	// CompletionChannel carries recognizer completion callbacks.
	CompletionChannel string

	// ParagraphLength is the number of recognizer sequences folded into one
	// paragraph during ingestion.
	ParagraphLength int
}

func (cfg EngineConfig) IsValid() error {
	if cfg == (EngineConfig{}) {
		return fmt.Errorf("config cannot be empty")
	}

	if cfg.DBPath == "" {
		return fmt.Errorf("DBPath cannot be empty")
	}

	if cfg.RefreshChannel == "" {
		return fmt.Errorf("RefreshChannel cannot be empty")
	}

	if cfg.CompletionChannel == "" {
		return fmt.Errorf("CompletionChannel cannot be empty")
	}

	if cfg.RefreshChannel == cfg.CompletionChannel {
		return fmt.Errorf("RefreshChannel and CompletionChannel cannot be the same")
	}

	if cfg.ParagraphLength < 1 {
		return fmt.Errorf("ParagraphLength should be a positive number")
	}

	return nil
}

func (cfg *EngineConfig) SetDefaults() {
	if cfg.DBPath == "" {
		cfg.DBPath = DBPathDefault
	}

	if cfg.RefreshChannel == "" {
		cfg.RefreshChannel = RefreshChannelDefault
	}

	if cfg.CompletionChannel == "" {
		cfg.CompletionChannel = CompletionChannelDefault
	}

	if cfg.ParagraphLength == 0 {
		cfg.ParagraphLength = align.DefaultParagraphLength
	}
}

func (cfg EngineConfig) ToEnv() []string {
	if cfg == (EngineConfig{}) {
		return nil
	}

	return []string{
		fmt.Sprintf("DB_PATH=%s", cfg.DBPath),
		fmt.Sprintf("REDIS_ADDR=%s", cfg.RedisAddr),
		fmt.Sprintf("REFRESH_CHANNEL=%s", cfg.RefreshChannel),
		fmt.Sprintf("COMPLETION_CHANNEL=%s", cfg.CompletionChannel),
		fmt.Sprintf("PARAGRAPH_LENGTH=%d", cfg.ParagraphLength),
	}
}

func (cfg EngineConfig) ToMap() map[string]any {
	if cfg == (EngineConfig{}) {
		return nil
	}

	return map[string]any{
		"db_path":            cfg.DBPath,
		"redis_addr":         cfg.RedisAddr,
		"refresh_channel":    cfg.RefreshChannel,
		"completion_channel": cfg.CompletionChannel,
		"paragraph_length":   cfg.ParagraphLength,
	}
}

func (cfg *EngineConfig) FromMap(m map[string]any) *EngineConfig {
	cfg.DBPath, _ = m["db_path"].(string)
	cfg.RedisAddr, _ = m["redis_addr"].(string)
	cfg.RefreshChannel, _ = m["refresh_channel"].(string)
	cfg.CompletionChannel, _ = m["completion_channel"].(string)

	// paragraph_length can either be int or float64 depending whether it's
	// been previously marshaled or not.
	switch m["paragraph_length"].(type) {
	case int:
		cfg.ParagraphLength = m["paragraph_length"].(int)
	case float64:
		cfg.ParagraphLength = int(m["paragraph_length"].(float64))
	}

	return cfg
}

func FromEnv() (EngineConfig, error) {
	var cfg EngineConfig
	cfg.DBPath = os.Getenv("DB_PATH")
	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RefreshChannel = os.Getenv("REFRESH_CHANNEL")
	cfg.CompletionChannel = os.Getenv("COMPLETION_CHANNEL")
	cfg.ParagraphLength, _ = strconv.Atoi(os.Getenv("PARAGRAPH_LENGTH"))

	return cfg, nil
}
