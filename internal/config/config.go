// Package config loads grocer settings from an optional config file and
// GROCER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dukerupert/grocer/internal/auth"
	"github.com/spf13/viper"
)

type Config struct {
	DBPath            string        `mapstructure:"db_path"`
	LogLevel          string        `mapstructure:"log_level"`
	LogFormat         string        `mapstructure:"log_format"`
	SweepInterval     time.Duration `mapstructure:"sweep_interval"`
	Hasher            string        `mapstructure:"hasher"`
	MinPasswordLength int           `mapstructure:"min_password_length"`
	ListenAddr        string        `mapstructure:"listen_addr"`
	Backup            BackupConfig  `mapstructure:"backup"`
}

// BackupConfig points at an S3-compatible bucket. Backups are disabled
// unless bucket and both keys are set.
type BackupConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db_path", "grocer.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("sweep_interval", "60s")
	v.SetDefault("hasher", "plain")
	v.SetDefault("min_password_length", auth.DefaultMinPasswordLength)
	v.SetDefault("listen_addr", "127.0.0.1:8088")
	v.SetDefault("backup.endpoint", "")
	v.SetDefault("backup.bucket", "")
	v.SetDefault("backup.region", "us-east-1")
	v.SetDefault("backup.access_key", "")
	v.SetDefault("backup.secret_key", "")
	v.SetDefault("backup.prefix", "grocer")
}

// Load reads path when given, otherwise looks for config.{yaml,json,toml}
// in the user config directory and the working directory. A missing
// default file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("GROCER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "grocer"))
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("config: db_path is required")
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("config: sweep_interval must be positive, got %s", c.SweepInterval)
	}
	if c.MinPasswordLength < 1 {
		return fmt.Errorf("config: min_password_length must be at least 1, got %d", c.MinPasswordLength)
	}
	switch c.Hasher {
	case "plain", "bcrypt":
	default:
		return fmt.Errorf("config: unknown hasher %q", c.Hasher)
	}
	return nil
}

// BackupEnabled reports whether enough S3 settings are present to upload.
func (c *Config) BackupEnabled() bool {
	return c.Backup.Bucket != "" && c.Backup.AccessKey != "" && c.Backup.SecretKey != ""
}
