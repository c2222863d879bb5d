package config

import (
	"fmt"
	"strings"

	"github.com/coinchrono/coinchrono/internal/etherscan"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration from file and environment variables.
// Priority order: env vars > config file > defaults. A missing config file
// is fine; everything can come from the environment.
func Load(configPath string) (*Config, error) {
	// Local development keeps credentials in a .env next to the binary.
	_ = godotenv.Load()

	v := viper.New()

	// 1. Defaults
	v.SetDefault("api_url", etherscan.DefaultBaseURL)
	v.SetDefault("log_level", "info")
	v.SetDefault("http_port", 8080)
	v.SetDefault("timezone", "UTC")

	// 2. Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix("COINCHRONO")
	v.AutomaticEnv()

	v.BindEnv("api_key", "ETHERSCAN_API_KEY")
	v.BindEnv("api_url", "ETHERSCAN_API_URL")
	v.BindEnv("addresses", "COINCHRONO_ADDRESSES")
	v.BindEnv("interval", "COINCHRONO_INTERVAL")
	v.BindEnv("log_level", "COINCHRONO_LOG_LEVEL")
	v.BindEnv("http_port", "COINCHRONO_HTTP_PORT")
	v.BindEnv("timezone", "COINCHRONO_TIMEZONE")
	v.BindEnv("run_immediately", "COINCHRONO_RUN_IMMEDIATELY")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// An explicitly named file must exist and parse.
			if configPath != "" {
				return nil, fmt.Errorf("failed to read config %s: %w", configPath, err)
			}
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Env vars carry address lists comma-separated.
	if raw := v.GetString("addresses"); raw != "" && strings.Contains(raw, ",") {
		parts := strings.Split(raw, ",")
		addrs := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				addrs = append(addrs, p)
			}
		}
		cfg.Addresses = addrs
	}

	validate := NewValidator()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
