package config

import (
	"testing"
	"time"
)

func TestLoad_RequiresSecrets(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "")
	t.Setenv("REFRESH_TOKEN_SECRET", "")
	t.Setenv("MYSQL_DSN", "user:pass@tcp(localhost:3306)/hireiq")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing ACCESS_TOKEN_SECRET")
	}

	t.Setenv("ACCESS_TOKEN_SECRET", "access-secret")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing REFRESH_TOKEN_SECRET")
	}
}

func TestLoad_RejectsSharedSecret(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "same-secret")
	t.Setenv("REFRESH_TOKEN_SECRET", "same-secret")
	t.Setenv("MYSQL_DSN", "user:pass@tcp(localhost:3306)/hireiq")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when both secrets are equal")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "access-secret")
	t.Setenv("REFRESH_TOKEN_SECRET", "refresh-secret")
	t.Setenv("MYSQL_DSN", "user:pass@tcp(localhost:3306)/hireiq")
	t.Setenv("APP_ENV", "")
	t.Setenv("ACCESS_TOKEN_TTL", "")
	t.Setenv("REFRESH_TOKEN_TTL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Env != EnvDevelopment {
		t.Fatalf("expected development env, got %q", cfg.Env)
	}
	if cfg.IsProduction() {
		t.Fatalf("development config must not report production")
	}
	if cfg.AccessTokenTTL != 15*time.Minute {
		t.Fatalf("expected 15m access TTL, got %v", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 7*24*time.Hour {
		t.Fatalf("expected 7d refresh TTL, got %v", cfg.RefreshTokenTTL)
	}
	if cfg.AccessCookieMaxAge != 24*time.Hour {
		t.Fatalf("expected 1d access cookie max-age, got %v", cfg.AccessCookieMaxAge)
	}
	if cfg.RefreshCookieMaxAge != 7*24*time.Hour {
		t.Fatalf("expected 7d refresh cookie max-age, got %v", cfg.RefreshCookieMaxAge)
	}
}

func TestLoad_PasswordPolicyDefaults(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "access-secret")
	t.Setenv("REFRESH_TOKEN_SECRET", "refresh-secret")
	t.Setenv("MYSQL_DSN", "user:pass@tcp(localhost:3306)/hireiq")
	t.Setenv("PASSWORD_MIN_LENGTH", "")
	t.Setenv("PASSWORD_REQUIRE_UPPERCASE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	policy := cfg.PasswordPolicy
	if policy.MinLength != 8 {
		t.Fatalf("expected min length 8, got %d", policy.MinLength)
	}
	if !policy.RequireUppercase || !policy.RequireLowercase || !policy.RequireNumber {
		t.Fatalf("expected uppercase, lowercase and number required by default: %+v", policy)
	}
	if policy.RequireSpecial {
		t.Fatalf("special characters must not be required by default")
	}
}

func TestPasswordPolicy_Validate(t *testing.T) {
	policy := PasswordPolicy{
		MinLength:        8,
		RequireUppercase: true,
		RequireLowercase: true,
		RequireNumber:    true,
	}

	cases := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"accepts compliant", "Sup3rvisor", false},
		{"rejects short", "Ab1", true},
		{"rejects missing uppercase", "lowercase1", true},
		{"rejects missing number", "NoDigitsHere", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := policy.Validate(tc.password)
			if tc.wantErr && err == nil {
				t.Fatalf("expected %q to be rejected", tc.password)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("expected %q to pass, got %v", tc.password, err)
			}
		})
	}

	if err := (PasswordPolicy{MinLength: 8, RequireSpecial: true}).Validate("password"); err == nil {
		t.Fatalf("expected special character requirement to reject")
	}
}

func TestGetDurationEnv(t *testing.T) {
	t.Setenv("TEST_DURATION", "30m")
	if got := getDurationEnv("TEST_DURATION", 5*time.Minute); got != 30*time.Minute {
		t.Fatalf("expected 30m, got %v", got)
	}

	// Bare integers are treated as minutes.
	t.Setenv("TEST_DURATION", "30")
	if got := getDurationEnv("TEST_DURATION", 5*time.Minute); got != 30*time.Minute {
		t.Fatalf("expected 30m, got %v", got)
	}

	t.Setenv("TEST_DURATION", "invalid")
	if got := getDurationEnv("TEST_DURATION", 5*time.Minute); got != 5*time.Minute {
		t.Fatalf("expected default duration, got %v", got)
	}
}
