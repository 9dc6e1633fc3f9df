package config

import (
	"testing"
	"time"
)

func TestLoad_MissingJWTSecretFails(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when JWT_SECRET is not set")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.MongoURI != "mongodb://localhost:27017" {
		t.Errorf("MongoURI = %q", cfg.MongoURI)
	}
	if cfg.MongoDB != "classbook" {
		t.Errorf("MongoDB = %q", cfg.MongoDB)
	}
	if cfg.JWTAlgorithm != "HS256" {
		t.Errorf("JWTAlgorithm = %q", cfg.JWTAlgorithm)
	}
	if cfg.AccessTokenTTL != 120*time.Minute {
		t.Errorf("AccessTokenTTL = %v, want 120m", cfg.AccessTokenTTL)
	}
	if cfg.BcryptCost != 10 {
		t.Errorf("BcryptCost = %d, want 10", cfg.BcryptCost)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q", cfg.ServerPort)
	}
	if cfg.RateLimitGeneral != 120 {
		t.Errorf("RateLimitGeneral = %d, want 120", cfg.RateLimitGeneral)
	}
	if cfg.RateLimitLogin != 10 {
		t.Errorf("RateLimitLogin = %d, want 10", cfg.RateLimitLogin)
	}
}

func TestLoad_DefaultExemptPaths(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	for _, path := range []string{"/auth/login", "/auth/register", "/health", "/metrics"} {
		if _, ok := cfg.AuthExemptPaths[path]; !ok {
			t.Errorf("exempt paths should contain %q", path)
		}
	}
	if _, ok := cfg.AuthExemptPaths["/auth/me"]; ok {
		t.Error("/auth/me should not be exempt")
	}
}

func TestLoad_OverridesFromEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("MONGO_DB", "classbook_test")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "30")
	t.Setenv("AUTH_EXEMPT_PATHS", "/public, /status")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.MongoDB != "classbook_test" {
		t.Errorf("MongoDB = %q", cfg.MongoDB)
	}
	if cfg.AccessTokenTTL != 30*time.Minute {
		t.Errorf("AccessTokenTTL = %v, want 30m", cfg.AccessTokenTTL)
	}

	if _, ok := cfg.AuthExemptPaths["/public"]; !ok {
		t.Error("exempt paths should contain /public")
	}
	// 空白はトリムされる
	if _, ok := cfg.AuthExemptPaths["/status"]; !ok {
		t.Error("exempt paths should contain /status")
	}
	if _, ok := cfg.AuthExemptPaths["/auth/login"]; ok {
		t.Error("default exempt paths should be replaced by override")
	}
}

func TestLoad_InvalidIntFallsBackToDefault(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("BCRYPT_COST", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.BcryptCost != 10 {
		t.Errorf("BcryptCost = %d, want default 10", cfg.BcryptCost)
	}
}
