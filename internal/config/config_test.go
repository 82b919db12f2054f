package config

import (
	"strings"
	"testing"
	"time"
)

// setRequired sets the env vars without which Load fails.
func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIATEST")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	t.Setenv("AWS_REGION", "us-east-1")
	t.Setenv("BUCKET_NAME", "controle-de-processos")
	t.Setenv("PARQUET_KEY", "Controle_de_Processos.parquet")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Upload.MaxFileSize != 104857600 {
		t.Errorf("Upload.MaxFileSize = %d, want %d", cfg.Upload.MaxFileSize, 104857600)
	}
	if cfg.Edit.DeleteConfirmCode != "125" {
		t.Errorf("Edit.DeleteConfirmCode = %q, want %q", cfg.Edit.DeleteConfirmCode, "125")
	}
	if cfg.Storage.BackupPrefix != "backups/" {
		t.Errorf("Storage.BackupPrefix = %q, want %q", cfg.Storage.BackupPrefix, "backups/")
	}
	if cfg.Session.TTL != time.Hour {
		t.Errorf("Session.TTL = %v, want %v", cfg.Session.TTL, time.Hour)
	}
	if cfg.Rate.RequestsPerMinute != 100 {
		t.Errorf("Rate.RequestsPerMinute = %d, want %d", cfg.Rate.RequestsPerMinute, 100)
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DELETE_CONFIRM_CODE", "4242")
	t.Setenv("SESSION_TTL", "15m")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Edit.DeleteConfirmCode != "4242" {
		t.Errorf("Edit.DeleteConfirmCode = %q, want %q", cfg.Edit.DeleteConfirmCode, "4242")
	}
	if cfg.Session.TTL != 15*time.Minute {
		t.Errorf("Session.TTL = %v, want %v", cfg.Session.TTL, 15*time.Minute)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("BUCKET_NAME", "")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() succeeded without BUCKET_NAME")
	}
	if !strings.Contains(err.Error(), "BUCKET_NAME") {
		t.Errorf("error %q does not mention BUCKET_NAME", err)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_PORT", "70000")
	t.Setenv("BACKUP_PREFIX", "backups") // missing trailing slash

	_, err := Load()
	if err == nil {
		t.Fatal("Load() succeeded with invalid settings")
	}
	for _, want := range []string{"SERVER_PORT", "BACKUP_PREFIX"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	setRequired(t)
	t.Setenv("SESSION_TTL", "not-a-duration")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() succeeded with invalid SESSION_TTL")
	}
}

func TestLocalPath_DerivedFromKey(t *testing.T) {
	cfg := &Config{}
	cfg.Storage.Key = "data/Controle_de_Processos.parquet"

	got := cfg.LocalPath()
	want := "Controle_de_Processos_edited.parquet"
	if got != want {
		t.Errorf("LocalPath() = %q, want %q", got, want)
	}

	cfg.Edit.DefaultLocalPath = "out.parquet"
	if got := cfg.LocalPath(); got != "out.parquet" {
		t.Errorf("LocalPath() = %q, want %q", got, "out.parquet")
	}
}

func TestConfigString_MasksCredentials(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	s := cfg.String()
	if strings.Contains(s, "AKIATEST") || strings.Contains(s, "secret") {
		t.Errorf("String() leaks credentials: %s", s)
	}
	if !strings.Contains(s, "[MASKED]") {
		t.Errorf("String() missing mask: %s", s)
	}
}
