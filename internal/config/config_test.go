package config

import (
	"slices"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"STORE_BACKEND", "STORE_DIR", "EXPORT_WORKERS", "ALLOWED_ORIGINS", "AUTH_USER", "AUTH_PASS", "REDIS_DB"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.StoreBackend != "file" || cfg.StoreDir != "./data" || cfg.ExportWorkers != 4 {
		t.Errorf("cfg = %+v", cfg)
	}
	if !slices.Equal(cfg.AllowedOrigins, []string{"*"}) {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if cfg.AuthEnabled() {
		t.Error("AuthEnabled() = true without credentials")
	}
	opts := cfg.StoreOptions()
	if opts.Backend != "file" || opts.Redis.Prefix != "invoicer:" {
		t.Errorf("StoreOptions() = %+v", opts)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"unknown backend", map[string]string{"STORE_BACKEND": "sqlite"}, "STORE_BACKEND"},
		{"zero workers", map[string]string{"EXPORT_WORKERS": "0"}, "EXPORT_WORKERS"},
		{"half of basic auth", map[string]string{"AUTH_USER": "admin"}, "AUTH_USER"},
		{"redis", map[string]string{"STORE_BACKEND": "redis", "REDIS_DB": "2"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"STORE_BACKEND", "EXPORT_WORKERS", "AUTH_USER", "AUTH_PASS", "REDIS_DB"} {
				t.Setenv(key, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Load() error = %v", err)
				}
				if cfg.RedisDB != 2 {
					t.Errorf("RedisDB = %d, want 2", cfg.RedisDB)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" http://a.test , ,http://b.test")
	if !slices.Equal(got, []string{"http://a.test", "http://b.test"}) {
		t.Errorf("splitList() = %v", got)
	}
}
