package config

import (
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("port = %s, want 8080", cfg.Server.Port)
	}
	if cfg.Profiling.SampleCap != 50000 {
		t.Errorf("sample cap = %d, want 50000", cfg.Profiling.SampleCap)
	}
	if cfg.Coercion.ParseThreshold != 0.9 {
		t.Errorf("parse threshold = %v, want 0.9", cfg.Coercion.ParseThreshold)
	}
	if cfg.Jobs.MaxConcurrent != 2 {
		t.Errorf("max concurrent = %d, want 2", cfg.Jobs.MaxConcurrent)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SAMPLE_CAP", "1000")
	t.Setenv("TEMPORAL_PARSE_THRESHOLD", "0.8")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("port = %s", cfg.Server.Port)
	}
	if cfg.Profiling.SampleCap != 1000 {
		t.Errorf("sample cap = %d", cfg.Profiling.SampleCap)
	}
	if cfg.Coercion.ParseThreshold != 0.8 {
		t.Errorf("parse threshold = %v", cfg.Coercion.ParseThreshold)
	}
}

func TestLoad_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"zero sample cap", "SAMPLE_CAP", "0"},
		{"negative corr top k", "CORR_TOP_K", "-1"},
		{"threshold at one", "TEMPORAL_PARSE_THRESHOLD", "1.0"},
		{"zero concurrency", "MAX_CONCURRENT_JOBS", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
