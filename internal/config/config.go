package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode          string        `mapstructure:"mode"`
	Port          int           `mapstructure:"port"`
	DataPath      string        `mapstructure:"data_path"`
	Secret        string        `mapstructure:"secret"`
	TokenTTL      time.Duration `mapstructure:"token_ttl"`
	LookupTimeout time.Duration `mapstructure:"lookup_timeout"`
	GCInterval    time.Duration `mapstructure:"gc_interval"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("data_path", "./data")
	v.SetDefault("secret", "dev-secret-change-me")
	v.SetDefault("token_ttl", "24h")
	v.SetDefault("lookup_timeout", "3s")
	v.SetDefault("gc_interval", "5m")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("config file not found (%s), using defaults\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
