package internal

import (
	"strings"
	"testing"
)

func TestNewDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.App.HTTP.Address() != ":8080" {
		t.Errorf("address = %q", cfg.App.HTTP.Address())
	}
}

func TestHTTPConfig_BadPort(t *testing.T) {
	for _, port := range []int{0, -1, 70000} {
		c := HTTPConfig{Port: port}
		if err := c.Validate(); err == nil {
			t.Errorf("port %d should fail validation", port)
		}
	}
}

func TestLibraryConfig_RequiresPath(t *testing.T) {
	c := LibraryConfig{}
	if err := c.Validate(); err == nil {
		t.Fatal("empty library path should fail")
	}
}

func TestExportsConfig_Bounds(t *testing.T) {
	c := ExportsConfig{Path: "./exports", MaxItems: 100, CleanupHours: 25}
	if err := c.Validate(); err == nil {
		t.Error("cleanup_hours over 24 should fail")
	}
	c = ExportsConfig{Path: "./exports", MaxItems: 0, CleanupHours: 1}
	if err := c.Validate(); err == nil {
		t.Error("zero max_items should fail")
	}
	c = ExportsConfig{Path: "./exports", MaxItems: 100, CleanupHours: 2}
	if err := c.Validate(); err != nil {
		t.Errorf("valid exports config rejected: %v", err)
	}
}

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}
