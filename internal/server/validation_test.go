package server

import (
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		id     string
		prefix string
		want   bool
	}{
		{"us-ab12cd", "us", true},
		{"pk-000000", "pk", true},
		{"af-zzzzzz", "", true},
		{"", "", false},
		{"us", "us", false},
		{"us-", "us", false},
		{"us-abc12", "us", false},   // too short
		{"us-abc1234", "us", false}, // too long
		{"US-ab12cd", "us", false},  // uppercase prefix
		{"us-AB12CD", "us", false},  // uppercase suffix
		{"us_ab12cd", "us", false},  // wrong separator
		{"pk-ab12cd", "us", false},  // wrong entity
	}

	for _, tt := range tests {
		t.Run(tt.id+"/"+tt.prefix, func(t *testing.T) {
			got := validateID(tt.id, tt.prefix)
			if got != tt.want {
				t.Fatalf("validateID(%q, %q) = %v, want %v", tt.id, tt.prefix, got, tt.want)
			}
		})
	}
}

func TestRequireBodyID(t *testing.T) {
	if _, err := requireBodyID("user_id", "  ", "us"); errorNumericCode(http.StatusBadRequest, err) != ErrCodeMissingRequired {
		t.Fatalf("expected missing required, got %v", err)
	}
	if _, err := requireBodyID("user_id", "ro-abcdef", "us"); errorNumericCode(http.StatusBadRequest, err) != ErrCodeInvalidID {
		t.Fatalf("expected invalid id, got %v", err)
	}
	id, err := requireBodyID("user_id", " us-abcdef ", "us")
	if err != nil || id != "us-abcdef" {
		t.Fatalf("expected trimmed id, got %q (%v)", id, err)
	}
}

func TestNormalizeName(t *testing.T) {
	got, err := normalizeName("name", "  toolkit ")
	if err != nil || got != "toolkit" {
		t.Fatalf("expected trimmed name, got %q (%v)", got, err)
	}
	if _, err := normalizeName("name", " "); errorNumericCode(http.StatusBadRequest, err) != ErrCodeMissingRequired {
		t.Fatalf("expected missing required, got %v", err)
	}
	if _, err := normalizeName("name", strings.Repeat("n", 256)); errorNumericCode(http.StatusBadRequest, err) != ErrCodeFieldTooLong {
		t.Fatalf("expected field too long, got %v", err)
	}
}

func TestNormalizeOptionalText(t *testing.T) {
	if got, err := normalizeOptionalText("bio", "", 10); err != nil || got != "" {
		t.Fatalf("expected empty ok, got %q (%v)", got, err)
	}
	_, err := normalizeOptionalText("bio", "01234567890", 10)
	var apiErr apiError
	if !errors.As(err, &apiErr) || apiErr.status != http.StatusBadRequest {
		t.Fatalf("expected bad request, got %v", err)
	}
}
