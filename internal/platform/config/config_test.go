package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"VERISCREEN_ADDR", "KAFKA_AUDIT_TOPIC", "VERISCREEN_CACHE_TTL", "VERISCREEN_MAX_CANDIDATES"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()

	if cfg.Server.Addr != ":8080" {
		t.Fatalf("expected default addr :8080, got %q", cfg.Server.Addr)
	}
	if cfg.Kafka.AuditTopic != "veriscreen.audit" {
		t.Fatalf("expected default audit topic, got %q", cfg.Kafka.AuditTopic)
	}
	if cfg.Screening.CacheTTL != 5*time.Minute {
		t.Fatalf("expected default cache ttl 5m, got %s", cfg.Screening.CacheTTL)
	}
	if cfg.Screening.MaxCandidates != 100 {
		t.Fatalf("expected default max candidates 100, got %d", cfg.Screening.MaxCandidates)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("VERISCREEN_ADDR", ":9999")
	t.Setenv("KAFKA_BROKERS", " broker-1:9092 ,broker-2:9092, broker-1:9092 ,")
	t.Setenv("VERISCREEN_CACHE_TTL", "90s")
	t.Setenv("VERISCREEN_MAX_CANDIDATES", "25")

	cfg := FromEnv()

	if cfg.Server.Addr != ":9999" {
		t.Fatalf("expected addr override, got %q", cfg.Server.Addr)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[0] != "broker-1:9092" || cfg.Kafka.Brokers[1] != "broker-2:9092" {
		t.Fatalf("expected deduped trimmed brokers, got %v", cfg.Kafka.Brokers)
	}
	if cfg.Screening.CacheTTL != 90*time.Second {
		t.Fatalf("expected cache ttl 90s, got %s", cfg.Screening.CacheTTL)
	}
	if cfg.Screening.MaxCandidates != 25 {
		t.Fatalf("expected max candidates 25, got %d", cfg.Screening.MaxCandidates)
	}
}

func TestFromEnvRejectsMalformedNumbers(t *testing.T) {
	t.Setenv("VERISCREEN_MAX_CANDIDATES", "not-a-number")
	t.Setenv("VERISCREEN_CACHE_TTL", "-10s")

	cfg := FromEnv()

	if cfg.Screening.MaxCandidates != 100 {
		t.Fatalf("expected fallback max candidates, got %d", cfg.Screening.MaxCandidates)
	}
	if cfg.Screening.CacheTTL != 5*time.Minute {
		t.Fatalf("expected fallback cache ttl, got %s", cfg.Screening.CacheTTL)
	}
}
