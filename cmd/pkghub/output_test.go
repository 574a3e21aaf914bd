package main

import (
	"strings"
	"testing"
	"time"

	"pkghub/internal/models"
)

func TestFormatArtifactLine(t *testing.T) {
	line := formatArtifactLine(models.ArtifactSummary{
		ID:        "af-abc123",
		Name:      "tool.bin",
		SizeBytes: 2048,
		SHA256:    "0123456789abcdef0123456789abcdef",
	})
	for _, want := range []string{"af-abc123", "tool.bin", "2.0 kB", "sha256:0123456789ab"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
	if strings.Contains(line, "0123456789abcdef0123") {
		t.Fatalf("expected shortened digest in %q", line)
	}
}

func TestFormatRoleLine(t *testing.T) {
	got := formatRoleLine(models.Role{ID: "ro-abc123", Name: "admin", Description: "all access", IsActive: true})
	if got != "ro-abc123  admin - all access" {
		t.Fatalf("unexpected line %q", got)
	}
	got = formatRoleLine(models.Role{ID: "ro-abc123", Name: "old"})
	if !strings.HasSuffix(got, "[inactive]") {
		t.Fatalf("expected inactive marker in %q", got)
	}
}

func TestFormatTimeIsUTC(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("CEST", 2*60*60))
	if got := formatTime(ts); got != "2024-05-01T10:00:00Z" {
		t.Fatalf("unexpected time %q", got)
	}
}
