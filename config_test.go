package smartglass

import (
	"os"
	"testing"
)

func TestResolveConfig_ExplicitValues(t *testing.T) {
	cfg := Config{
		Address:   "10.0.0.5",
		UserHash:  "abc123",
		UserToken: "token456",
	}
	resolved, err := resolveConfig(cfg)
	if err != nil {
		t.Fatalf("resolveConfig() error: %v", err)
	}
	if resolved.Address != "10.0.0.5" {
		t.Errorf("Address = %q, want explicit value", resolved.Address)
	}
	if resolved.UserHash != "abc123" || resolved.UserToken != "token456" {
		t.Errorf("credentials = %q/%q, want explicit values", resolved.UserHash, resolved.UserToken)
	}
}

func TestResolveConfig_EnvFallback(t *testing.T) {
	os.Setenv("SMARTGLASS_ADDRESS", "10.0.0.9")
	os.Setenv("SMARTGLASS_USERHASH", "env-hash")
	os.Setenv("SMARTGLASS_TOKEN", "env-token")
	defer func() {
		os.Unsetenv("SMARTGLASS_ADDRESS")
		os.Unsetenv("SMARTGLASS_USERHASH")
		os.Unsetenv("SMARTGLASS_TOKEN")
	}()

	resolved, err := resolveConfig(Config{})
	if err != nil {
		t.Fatalf("resolveConfig() error: %v", err)
	}
	if resolved.Address != "10.0.0.9" {
		t.Errorf("Address = %q, want env value", resolved.Address)
	}
	if resolved.UserHash != "env-hash" || resolved.UserToken != "env-token" {
		t.Errorf("credentials = %q/%q, want env values", resolved.UserHash, resolved.UserToken)
	}
}

func TestResolveConfig_ExplicitOverridesEnv(t *testing.T) {
	os.Setenv("SMARTGLASS_ADDRESS", "10.0.0.9")
	defer os.Unsetenv("SMARTGLASS_ADDRESS")

	resolved, err := resolveConfig(Config{Address: "10.0.0.5"})
	if err != nil {
		t.Fatalf("resolveConfig() error: %v", err)
	}
	if resolved.Address != "10.0.0.5" {
		t.Errorf("Address = %q, want explicit value to win", resolved.Address)
	}
}

func TestResolveConfig_MissingAddress(t *testing.T) {
	if _, err := resolveConfig(Config{}); err == nil {
		t.Fatal("resolveConfig() should error when Address is missing")
	}
}

func TestResolveConfig_HalfCredentials(t *testing.T) {
	_, err := resolveConfig(Config{Address: "10.0.0.5", UserHash: "abc"})
	if err == nil {
		t.Fatal("resolveConfig() should reject a hash without a token")
	}
	_, err = resolveConfig(Config{Address: "10.0.0.5", UserToken: "xyz"})
	if err == nil {
		t.Fatal("resolveConfig() should reject a token without a hash")
	}
}

func TestResolveConfig_AnonymousAllowed(t *testing.T) {
	if _, err := resolveConfig(Config{Address: "10.0.0.5"}); err != nil {
		t.Fatalf("anonymous config should resolve: %v", err)
	}
}
