package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := Load("does-not-exist.yaml")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8000 || cfg.Database.Driver != "memory" || cfg.AI.Provider != "groq" {
		t.Errorf("defaults = %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "config.yaml")
	yml := `
server:
  port: 9000
  maxUploadBytes: 1048576
database:
  driver: postgres
  host: db
  port: 5432
  user: med
  password: from-file
  name: cases
ai:
  provider: openai
  model: gpt-4o-mini
  timeout: 30s
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DATABASE_PASSWORD", "from-env")
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("AI_API_KEY", "generic")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9000 || cfg.Server.MaxUploadBytes != 1<<20 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.AI.Timeout != 30*time.Second {
		t.Errorf("AI.Timeout = %v", cfg.AI.Timeout)
	}
	if cfg.Database.Password != "from-env" {
		t.Errorf("Database.Password = %q, env must win", cfg.Database.Password)
	}
	if cfg.AI.APIKey != "sk-openai" {
		t.Errorf("AI.APIKey = %q, provider key must win", cfg.AI.APIKey)
	}
	if got := cfg.ProcessingMethod("gpt-4o-mini"); got != "openai:gpt-4o-mini" {
		t.Errorf("ProcessingMethod() = %q", got)
	}
	dsn := cfg.PostgresDSN()
	if !strings.HasPrefix(dsn, "postgres://med:from-env@db:5432/cases?sslmode=disable") {
		t.Errorf("PostgresDSN() = %q", dsn)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	_ = os.WriteFile(path, []byte("server: [unclosed"), 0o600)
	if _, err := Load(path); err == nil {
		t.Fatal("Load() error = nil, want parse error")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Database.Driver = "oracle"
	cfg.AI.Provider = "llamafile"
	cfg.Minio.Enabled = true
	cfg.Minio.Endpoint = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() error = nil")
	}
	for _, want := range []string{"database.driver", "ai.provider", "minio.endpoint"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() = %v, missing %s", err, want)
		}
	}
}

func TestValidate_WriteTimeoutCoversRetry(t *testing.T) {
	tests := []struct {
		name    string
		write   time.Duration
		ai      time.Duration
		wantErr bool
	}{
		{"defaults", 300 * time.Second, 120 * time.Second, false},
		{"shorter than retry path", 180 * time.Second, 120 * time.Second, true},
		{"exactly two attempts, no margin", 240 * time.Second, 120 * time.Second, true},
		{"short ai timeout", 60 * time.Second, 15 * time.Second, false},
		{"no write deadline", 0, 120 * time.Second, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Server.WriteTimeout = tt.write
			cfg.AI.Timeout = tt.ai
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), "server.writeTimeout") {
				t.Errorf("Validate() = %v", err)
			}
		})
	}
	if got := Default().MinWriteTimeout(); got > Default().Server.WriteTimeout {
		t.Errorf("default write timeout %s below minimum %s", Default().Server.WriteTimeout, got)
	}
}

func TestMySQLDSN(t *testing.T) {
	cfg := Default()
	cfg.Database.User, cfg.Database.Password = "u", "p"
	cfg.Database.Host, cfg.Database.Port, cfg.Database.Name = "h", 3306, "n"
	want := "u:p@tcp(h:3306)/n?parseTime=true&charset=utf8mb4&loc=UTC"
	if got := cfg.MySQLDSN(); got != want {
		t.Errorf("MySQLDSN() = %q, want %q", got, want)
	}
}

// chdir changes the working directory for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
