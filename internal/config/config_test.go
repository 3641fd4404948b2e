package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/boddenberg/retail-ledger-go/internal/config"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_DefaultsWithEnv(t *testing.T) {
	t.Setenv("BANK_FINGERPRINT", "bank-secret")

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8080 || cfg.BankName != "Retail Bank" || cfg.IdempotencyTTL != 10*time.Minute {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.BankFingerprint != "bank-secret" {
		t.Errorf("BankFingerprint = %q", cfg.BankFingerprint)
	}
}

func TestLoad_RequiresBankFingerprint(t *testing.T) {
	t.Setenv("BANK_FINGERPRINT", "")

	if _, err := config.Load(""); err == nil {
		t.Fatal("expected error without bank fingerprint")
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeFile(t, "ledger.toml", `
port = 9090
bank_name = "File Bank"
bank_fingerprint = "file-secret"
idempotency_ttl = "30s"
max_retries = 7
`)
	t.Setenv("BANK_NAME", "Env Bank")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9090 || cfg.MaxRetries != 7 || cfg.IdempotencyTTL != 30*time.Second {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.BankName != "Env Bank" {
		t.Errorf("env should override file, got %q", cfg.BankName)
	}
	if cfg.BankFingerprint != "file-secret" {
		t.Errorf("BankFingerprint = %q", cfg.BankFingerprint)
	}
}

func TestLoad_BadDurationInFile(t *testing.T) {
	path := writeFile(t, "ledger.toml", `
bank_fingerprint = "x"
http_timeout = "soon"
`)
	if _, err := config.Load(path); err == nil {
		t.Fatal("expected duration parse error")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := writeFile(t, ".env", "LEDGER_TEST_DOTENV=from-file\nBANK_NAME=dotenv-bank\n")
	t.Setenv("BANK_NAME", "already-set")
	t.Cleanup(func() { os.Unsetenv("LEDGER_TEST_DOTENV") })

	if err := config.LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("LEDGER_TEST_DOTENV"); got != "from-file" {
		t.Errorf("LEDGER_TEST_DOTENV = %q", got)
	}
	if got := os.Getenv("BANK_NAME"); got != "already-set" {
		t.Errorf("existing env must win, got %q", got)
	}
}

func TestLoadDotEnv_MissingFileIsFine(t *testing.T) {
	if err := config.LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}
