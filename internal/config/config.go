package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Questions QuestionsConfig `mapstructure:"questions"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Quiz      QuizConfig      `mapstructure:"quiz"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
}

type QuestionsConfig struct {
	Path  string `mapstructure:"path" validate:"required"`
	Watch bool   `mapstructure:"watch"`
}

type DatabaseConfig struct {
	// URL selects a networked store. Empty means the embedded SQLite file.
	URL             string `mapstructure:"url" validate:"dburl"`
	SQLitePath      string `mapstructure:"sqlite_path" validate:"required"`
	SecretsFile     string `mapstructure:"secrets_file"`
	MaxOpenConns    int    `mapstructure:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime_seconds" validate:"gte=0"`
}

type QuizConfig struct {
	DefaultCount int `mapstructure:"default_count" validate:"gte=1"`
	MaxCount     int `mapstructure:"max_count" validate:"gte=1,gtefield=DefaultCount"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port" validate:"gte=1,lte=65535"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins" validate:"dive,url"`
}

type LogConfig struct {
	// File enables a rotated JSON log in addition to the console.
	File string `mapstructure:"file"`
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/quizdrill")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("questions.path", "questions.json")
	v.SetDefault("questions.watch", false)
	v.SetDefault("database.url", "")
	v.SetDefault("database.sqlite_path", "quiz.db")
	v.SetDefault("database.secrets_file", filepath.Join(".quizdrill", "secrets.toml"))
	v.SetDefault("quiz.default_count", 10)
	v.SetDefault("quiz.max_count", 100)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("log.file", "")

	// The environment wins over the config file for the connection string
	if err := v.BindEnv("database.url", "DB_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind DB_URL environment variable: %w", err)
	}
	if err := v.BindEnv("questions.path", "QUIZDRILL_QUESTIONS_PATH"); err != nil {
		return nil, fmt.Errorf("failed to bind QUIZDRILL_QUESTIONS_PATH environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if cfg.Database.URL == "" {
		url, err := readSecretDatabaseURL(cfg.Database.SecretsFile)
		if err != nil {
			return nil, err
		}
		cfg.Database.URL = url
	}

	if err := loader.validator.Struct(cfg); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}

// readSecretDatabaseURL reads DB_URL from a TOML secrets file.
// A missing file is not an error and yields an empty URL.
func readSecretDatabaseURL(secretsFile string) (string, error) {
	if secretsFile == "" {
		return "", nil
	}

	if _, err := os.Stat(secretsFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to stat secrets file %s: %w", secretsFile, err)
	}

	v := viper.New()
	v.SetConfigFile(secretsFile)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return "", fmt.Errorf("secrets file %s could not be read: %w", secretsFile, err)
	}
	return v.GetString("DB_URL"), nil
}
