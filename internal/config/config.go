package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Env      string `yaml:"env" env:"APP_ENV" env-default:"local"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`

	DatabaseType string `yaml:"database_type" env:"DATABASE_TYPE" env-default:"sqlite"`
	DatabasePath string `yaml:"db_path" env:"DB_PATH" env-default:"./wordplay.db"`
	DatabaseURL  string `yaml:"database_url" env:"DATABASE_URL"`

	AudioDir     string `yaml:"audio_dir" env:"AUDIO_DIR" env-default:"./audio"`
	TTSEnabled   bool   `yaml:"tts_enabled" env:"TTS_ENABLED" env-default:"true"`
	TTSLanguage  string `yaml:"tts_language" env:"TTS_LANGUAGE" env-default:"en"`
	TTSPlayer    string `yaml:"tts_player" env:"TTS_PLAYER" env-default:"mpg123"`
	TTSEndpoint  string `yaml:"tts_endpoint" env:"TTS_ENDPOINT" env-default:"https://translate.google.com/translate_tts"`
	TTSRateLimit int    `yaml:"tts_rate_limit" env:"TTS_RATE_LIMIT" env-default:"30"`

	DefaultQuestionCount int   `yaml:"default_question_count" env:"DEFAULT_QUESTION_COUNT" env-default:"10"`
	QuestionCountOptions []int `yaml:"question_count_options" env:"QUESTION_COUNT_OPTIONS" env-default:"10,20" env-separator:","`
}

// Load reads configuration from an optional .env file, an optional YAML file
// and environment variables. Priority: ENV > YAML > defaults.
// The YAML file is CONFIG_PATH when set, otherwise ./config.yaml if present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	var cfg Config

	path := os.Getenv("CONFIG_PATH")
	explicitPath := path != ""
	if !explicitPath {
		path = "./config.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch strings.ToLower(c.DatabaseType) {
	case "sqlite", "sqlite3", "":
		if c.DatabasePath == "" {
			return errors.New("DB_PATH is required for sqlite")
		}
	case "postgres", "postgresql", "mysql":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for %s", c.DatabaseType)
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}

	if c.DefaultQuestionCount <= 0 {
		return fmt.Errorf("DEFAULT_QUESTION_COUNT must be positive, got %d", c.DefaultQuestionCount)
	}
	if c.TTSRateLimit < 0 {
		return fmt.Errorf("TTS_RATE_LIMIT must not be negative, got %d", c.TTSRateLimit)
	}
	for _, n := range c.QuestionCountOptions {
		if n <= 0 {
			return fmt.Errorf("QUESTION_COUNT_OPTIONS must be positive, got %d", n)
		}
	}

	return nil
}

// IsProduction reports whether the app runs in the production environment
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}
