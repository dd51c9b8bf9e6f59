package config

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode           string `mapstructure:"mode"`
	Port           int    `mapstructure:"port"`
	LocalPort      int    `mapstructure:"local_port"`
	TLS            bool   `mapstructure:"tls"`
	SSLDir         string `mapstructure:"ssl_dir"`
	GraphPath      string `mapstructure:"graph_path"`
	SenderPath     string `mapstructure:"sender_path"`
	MaxSignalBytes int64  `mapstructure:"max_signal_bytes"`
	MaxImageBytes  int64  `mapstructure:"max_image_bytes"`
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
	v.SetDefault("port", 8083)
	v.SetDefault("local_port", 8084)
	v.SetDefault("tls", true)
	v.SetDefault("ssl_dir", ".ssl")
	v.SetDefault("graph_path", "")
	v.SetDefault("sender_path", "./sender")
	v.SetDefault("max_signal_bytes", 64*1024)
	v.SetDefault("max_image_bytes", 32*1024*1024)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
