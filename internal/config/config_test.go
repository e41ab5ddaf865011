package config

import (
	"strings"
	"testing"
	"time"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(envMap(map[string]string{
		"DB_URL": "memory://testdata/nodes.yaml",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Addr() != ":8080" {
		t.Errorf("expected :8080, got %s", cfg.Addr())
	}
	if cfg.N8N.Enabled() {
		t.Error("n8n must be disabled without N8N_BASE_URL")
	}
	if cfg.N8N.APIKeyHeader != DefaultAPIKeyHeader || cfg.N8N.Timeout != DefaultN8NTimeout {
		t.Errorf("unexpected n8n defaults: %+v", cfg.N8N)
	}
	if cfg.RequestTimeout != DefaultRequestTimeout || cfg.ShutdownTimeout != DefaultShutdownTimeout {
		t.Errorf("unexpected timeouts: %v %v", cfg.RequestTimeout, cfg.ShutdownTimeout)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Errorf("expected wildcard CORS, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(envMap(map[string]string{
		"API_PORT":             "9000",
		"MONGODB_URI":          "mongodb://localhost:27017/catalog",
		"N8N_BASE_URL":         "https://n8n.example.com/api/v1/",
		"N8N_API_KEY":          "secret",
		"N8N_TIMEOUT":          "5s",
		"CORS_ALLOWED_ORIGINS": "http://a.test, http://b.test",
		"REQUEST_TIMEOUT":      "2s",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("expected API_PORT fallback, got %s", cfg.Port)
	}
	if cfg.DBURL != "mongodb://localhost:27017/catalog" {
		t.Errorf("expected MONGODB_URI fallback, got %s", cfg.DBURL)
	}
	if cfg.N8N.BaseURL != "https://n8n.example.com/api/v1" {
		t.Errorf("trailing slash must be trimmed, got %s", cfg.N8N.BaseURL)
	}
	if !cfg.N8N.Enabled() || cfg.N8N.Timeout != 5*time.Second {
		t.Errorf("unexpected n8n config: %+v", cfg.N8N)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "http://b.test" {
		t.Errorf("unexpected origins: %v", cfg.CORSAllowedOrigins)
	}
	if cfg.RequestTimeout != 2*time.Second {
		t.Errorf("expected 2s, got %v", cfg.RequestTimeout)
	}
}

func TestLoadFrom_PortPrecedence(t *testing.T) {
	cfg, err := LoadFrom(envMap(map[string]string{
		"PORT":     "3000",
		"API_PORT": "9000",
		"DB_URL":   "memory://nodes.yaml",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "3000" {
		t.Errorf("PORT must win over API_PORT, got %s", cfg.Port)
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "missing db url",
			env:  map[string]string{},
			want: "DBURL is required",
		},
		{
			name: "malformed n8n url",
			env:  map[string]string{"DB_URL": "memory://x", "N8N_BASE_URL": "not a url", "N8N_API_KEY": "k"},
			want: "N8N.BaseURL must be a valid URL",
		},
		{
			name: "n8n without key",
			env:  map[string]string{"DB_URL": "memory://x", "N8N_BASE_URL": "https://n8n.example.com/api/v1"},
			want: "N8N.APIKey is required",
		},
		{
			name: "bad port",
			env:  map[string]string{"DB_URL": "memory://x", "PORT": "http"},
			want: "Port must be numeric",
		},
		{
			name: "bad duration",
			env:  map[string]string{"DB_URL": "memory://x", "REQUEST_TIMEOUT": "soon"},
			want: "REQUEST_TIMEOUT",
		},
		{
			name: "non-positive duration",
			env:  map[string]string{"DB_URL": "memory://x", "SHUTDOWN_TIMEOUT": "0s"},
			want: "ShutdownTimeout must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(envMap(tt.env))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected %q in %q", tt.want, err.Error())
			}
		})
	}
}
