package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load builds the configuration from defaults, an optional config.yaml
// (working directory or /etc/sharelink/), and SHARELINK_* environment
// variables, in increasing priority.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/sharelink/")

	v.SetEnvPrefix("SHARELINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Missing config file is fine; defaults and env cover everything.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", "0.0.0.0:8080")
	v.SetDefault("http.shutdown_timeout", "15s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.add_source", false)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", "sharelink")
	v.SetDefault("metrics.subsystem", "http")

	v.SetDefault("convert.max_body_bytes", 4*1024*1024)
	v.SetDefault("convert.cache_ttl", "5m")
}
