// Package config loads server configuration from an optional YAML file
// with sensible defaults for every key.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig controls the listener and per-turn deadlines.
type ServerConfig struct {
	Host        string        `mapstructure:"host"`
	Port        int           `mapstructure:"port"`
	TurnTimeout time.Duration `mapstructure:"turn_timeout"`
}

// GameConfig controls session length and deal reproducibility.
type GameConfig struct {
	NumGames int   `mapstructure:"num_games"`
	Seed     int64 `mapstructure:"seed"`
}

// RulesConfig switches individual game rules. The first six are the
// standard set; the rest are optional variants, off by default.
type RulesConfig struct {
	Revolution       bool `mapstructure:"revolution"`
	EightCut         bool `mapstructure:"eight_cut"`
	Lock             bool `mapstructure:"lock"`
	CardExchange     bool `mapstructure:"card_exchange"`
	SpadeThreeReturn bool `mapstructure:"spade3_return"`
	Sennichite       bool `mapstructure:"sennichite"`
	ElevenBack       bool `mapstructure:"eleven_back"`
	FiveSkip         bool `mapstructure:"five_skip"`
	SixReverse       bool `mapstructure:"six_reverse"`
}

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"`
	ShowHands bool   `mapstructure:"show_hands"`
}

// JournalConfig controls the JSONL game journal.
type JournalConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Config is the root configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Game    GameConfig    `mapstructure:"game"`
	Rules   RulesConfig   `mapstructure:"rules"`
	Logging LoggingConfig `mapstructure:"logging"`
	Journal JournalConfig `mapstructure:"journal"`
}

// Load reads the YAML file at path, or returns pure defaults when path
// is empty.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 42485)
	v.SetDefault("server.turn_timeout", 60*time.Second)
	v.SetDefault("game.num_games", 100)
	v.SetDefault("game.seed", 0)
	v.SetDefault("rules.revolution", true)
	v.SetDefault("rules.eight_cut", true)
	v.SetDefault("rules.lock", true)
	v.SetDefault("rules.card_exchange", true)
	v.SetDefault("rules.spade3_return", true)
	v.SetDefault("rules.sennichite", true)
	v.SetDefault("rules.eleven_back", false)
	v.SetDefault("rules.five_skip", false)
	v.SetDefault("rules.six_reverse", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.show_hands", false)
	v.SetDefault("journal.enabled", false)
	v.SetDefault("journal.path", "logs")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}
