package config

import (
	"errors"
	"log/slog"

	"github.com/spf13/viper"
)

type Config struct {
	App        App
	Bun        BunConfig
	Vault      Vault
	Session    Session
	LoggerMode LoggerMode
}

type App struct {
	Name        string
	Environment string
}

type BunConfig struct {
	DSN string
}

// Vault selects the OS credential store backend holding identity secret
// keys and per-space symmetric keys.
type Vault struct {
	ServiceName string
	Backend     string
}

type Session struct {
	// Secret verifies the HMAC-signed access tokens issued by the auth
	// backend. Verification only; this client never mints tokens.
	Secret string
}

type LoggerMode struct {
	Development bool
	Prod        bool
	Level       string
}

func LoadConfig(filename string) (*viper.Viper, error) {
	v := viper.New()

	v.SetConfigName(filename)
	v.SetConfigType("yaml")
	v.AddConfigPath("config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil, errors.New("config file not found")
		}
		return nil, err
	}
	return v, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {
	var c Config
	err := v.Unmarshal(&c)
	if err != nil {
		slog.Error("Unable to unmarshal config", "err", err)
		return nil, err
	}
	return &c, nil
}
