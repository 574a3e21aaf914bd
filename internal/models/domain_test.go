package models

import "testing"

func TestNormalizeName(t *testing.T) {
	got, err := NormalizeName("name", "  release-1  ")
	if err != nil {
		t.Fatalf("normalize name: %v", err)
	}
	if got != "release-1" {
		t.Fatalf("expected trimmed name, got %q", got)
	}

	if _, err := NormalizeName("name", "   "); err == nil {
		t.Fatal("expected empty name error")
	}
}

func TestNormalizeEmail(t *testing.T) {
	got, err := NormalizeEmail(" John.Doe@Example.COM ")
	if err != nil {
		t.Fatalf("normalize email: %v", err)
	}
	if got != "john.doe@example.com" {
		t.Fatalf("expected lowercase email, got %q", got)
	}

	for _, raw := range []string{"", "not-an-email", "John <john@example.com>"} {
		if _, err := NormalizeEmail(raw); err == nil {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
}

func TestArchiveFilename(t *testing.T) {
	if got := ArchiveFilename("bundle"); got != "bundle.zip" {
		t.Fatalf("expected bundle.zip, got %q", got)
	}
	if got := ArchiveFilename(" "); got != "package.zip" {
		t.Fatalf("expected fallback package.zip, got %q", got)
	}
}
