package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigIsValid(t *testing.T) {
	tcs := []struct {
		name          string
		cfg           EngineConfig
		expectedError string
	}{
		{
			name:          "empty config",
			cfg:           EngineConfig{},
			expectedError: "config cannot be empty",
		},
		{
			name: "missing DBPath",
			cfg: EngineConfig{
				RefreshChannel: RefreshChannelDefault,
			},
			expectedError: "DBPath cannot be empty",
		},
		{
			name: "missing RefreshChannel",
			cfg: EngineConfig{
				DBPath:            "transcripts.db",
				CompletionChannel: CompletionChannelDefault,
			},
			expectedError: "RefreshChannel cannot be empty",
		},
		{
			name: "missing CompletionChannel",
			cfg: EngineConfig{
				DBPath:         "transcripts.db",
				RefreshChannel: RefreshChannelDefault,
			},
			expectedError: "CompletionChannel cannot be empty",
		},
		{
			name: "same channels",
			cfg: EngineConfig{
				DBPath:            "transcripts.db",
				RefreshChannel:    "events",
				CompletionChannel: "events",
			},
			expectedError: "RefreshChannel and CompletionChannel cannot be the same",
		},
		{
			name: "invalid ParagraphLength",
			cfg: EngineConfig{
				DBPath:            "transcripts.db",
				RefreshChannel:    RefreshChannelDefault,
				CompletionChannel: CompletionChannelDefault,
			},
			expectedError: "ParagraphLength should be a positive number",
		},
		{
			name: "valid config",
			cfg: EngineConfig{
				DBPath:            "transcripts.db",
				RefreshChannel:    RefreshChannelDefault,
				CompletionChannel: CompletionChannelDefault,
				ParagraphLength:   5,
			},
		},
		{
			name: "valid config with redis",
			cfg: EngineConfig{
				DBPath:            "transcripts.db",
				RedisAddr:         "localhost:6379",
				RefreshChannel:    RefreshChannelDefault,
				CompletionChannel: CompletionChannelDefault,
				ParagraphLength:   5,
			},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.IsValid()
			if tc.expectedError == "" {
				require.NoError(t, err)
			} else {
				require.EqualError(t, err, tc.expectedError)
			}
		})
	}
}

func TestConfigSetDefaults(t *testing.T) {
	t.Run("empty input config", func(t *testing.T) {
		var cfg EngineConfig
		cfg.SetDefaults()
		require.Equal(t, EngineConfig{
			DBPath:            DBPathDefault,
			RefreshChannel:    RefreshChannelDefault,
			CompletionChannel: CompletionChannelDefault,
			ParagraphLength:   5,
		}, cfg)
	})

	t.Run("no overrides", func(t *testing.T) {
		cfg := EngineConfig{
			DBPath:          "/var/lib/engine/transcripts.db",
			ParagraphLength: 3,
		}
		cfg.SetDefaults()
		require.Equal(t, EngineConfig{
			DBPath:            "/var/lib/engine/transcripts.db",
			RefreshChannel:    RefreshChannelDefault,
			CompletionChannel: CompletionChannelDefault,
			ParagraphLength:   3,
		}, cfg)
	})
}

func TestConfigFromEnv(t *testing.T) {
	os.Setenv("DB_PATH", "/tmp/transcripts.db")
	os.Setenv("REDIS_ADDR", "localhost:6379")
	os.Setenv("REFRESH_CHANNEL", "refresh")
	os.Setenv("COMPLETION_CHANNEL", "complete")
	os.Setenv("PARAGRAPH_LENGTH", "7")
	defer func() {
		os.Unsetenv("DB_PATH")
		os.Unsetenv("REDIS_ADDR")
		os.Unsetenv("REFRESH_CHANNEL")
		os.Unsetenv("COMPLETION_CHANNEL")
		os.Unsetenv("PARAGRAPH_LENGTH")
	}()

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, EngineConfig{
		DBPath:            "/tmp/transcripts.db",
		RedisAddr:         "localhost:6379",
		RefreshChannel:    "refresh",
		CompletionChannel: "complete",
		ParagraphLength:   7,
	}, cfg)
}

func TestConfigMapRoundTrip(t *testing.T) {
	t.Run("empty config", func(t *testing.T) {
		var cfg EngineConfig
		require.Nil(t, cfg.ToMap())
		require.Nil(t, cfg.ToEnv())
	})

	t.Run("round trip", func(t *testing.T) {
		cfg := EngineConfig{
			DBPath:            "transcripts.db",
			RedisAddr:         "localhost:6379",
			RefreshChannel:    RefreshChannelDefault,
			CompletionChannel: CompletionChannelDefault,
			ParagraphLength:   5,
		}

		var cfg2 EngineConfig
		cfg2.FromMap(cfg.ToMap())
		require.Equal(t, cfg, cfg2)
	})

	t.Run("float paragraph_length", func(t *testing.T) {
		// Values that crossed a JSON boundary come back as float64.
		var cfg EngineConfig
		cfg.FromMap(map[string]any{
			"db_path":          "transcripts.db",
			"paragraph_length": float64(5),
		})
		require.Equal(t, 5, cfg.ParagraphLength)
	})
}
