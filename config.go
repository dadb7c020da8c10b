package smartglass

import (
	"fmt"
	"os"
)

// Config holds the configuration for a console client.
type Config struct {
	// Address is the console's IP or host, optionally with a port.
	// Fallback: SMARTGLASS_ADDRESS environment variable.
	Address string

	// UserHash is the authenticated user hash. Leave empty together with
	// UserToken for an anonymous connection.
	// Fallback: SMARTGLASS_USERHASH environment variable.
	UserHash string

	// UserToken is the authentication token paired with UserHash.
	// Fallback: SMARTGLASS_TOKEN environment variable.
	UserToken string
}

// resolveConfig fills empty fields from environment variables and validates
// required fields.
func resolveConfig(cfg Config) (Config, error) {
	if cfg.Address == "" {
		cfg.Address = os.Getenv("SMARTGLASS_ADDRESS")
	}
	if cfg.UserHash == "" {
		cfg.UserHash = os.Getenv("SMARTGLASS_USERHASH")
	}
	if cfg.UserToken == "" {
		cfg.UserToken = os.Getenv("SMARTGLASS_TOKEN")
	}

	if cfg.Address == "" {
		return cfg, fmt.Errorf("Address is required (set in Config or SMARTGLASS_ADDRESS env)")
	}
	if (cfg.UserHash == "") != (cfg.UserToken == "") {
		return cfg, fmt.Errorf("UserHash and UserToken must be provided together")
	}

	return cfg, nil
}
