package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	smartglass "github.com/smartglass/go-sdk"
)

// glassctl config.toml key mapping to client settings.
type fileConfig struct {
	Address     string `toml:"address"`
	UserHash    string `toml:"user_hash"`
	UserToken   string `toml:"user_token"`
	DisplayName string `toml:"display_name"`
	Verbose     bool   `toml:"verbose"`
}

type ctlConfig struct {
	client      smartglass.Config
	displayName string
	verbose     bool
}

// loadConfig reads a TOML config. A missing path yields an empty config so
// environment fallbacks and flags still apply.
func loadConfig(path string) (ctlConfig, error) {
	var cfg ctlConfig
	if path == "" {
		return cfg, nil
	}

	var raw fileConfig
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return cfg, fmt.Errorf("load glassctl config: %w", err)
	}

	cfg.client = smartglass.Config{
		Address:   strings.TrimSpace(raw.Address),
		UserHash:  strings.TrimSpace(raw.UserHash),
		UserToken: strings.TrimSpace(raw.UserToken),
	}
	cfg.displayName = strings.TrimSpace(raw.DisplayName)
	cfg.verbose = raw.Verbose
	return cfg, nil
}
