package store

import (
	"errors"
	"strings"
	"testing"
)

func TestGenerateID(t *testing.T) {
	t.Run("valid prefix", func(t *testing.T) {
		id, err := GenerateID(PrefixArtifact, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(id) != 9 { // "af-" + 6 chars
			t.Fatalf("expected length 9, got %d: %s", len(id), id)
		}
		if !strings.HasPrefix(id, "af-") {
			t.Fatalf("expected prefix af-, got %s", id)
		}
	})

	t.Run("empty prefix", func(t *testing.T) {
		_, err := GenerateID("", nil)
		if err == nil {
			t.Fatal("expected error for empty prefix")
		}
	})

	t.Run("retries on collision", func(t *testing.T) {
		calls := 0
		exists := func(id string) (bool, error) {
			calls++
			return calls < 3, nil
		}
		id, err := GenerateID(PrefixPackage, exists)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id == "" {
			t.Fatal("expected non-empty id")
		}
		if calls != 3 {
			t.Fatalf("expected 3 existence checks, got %d", calls)
		}
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		calls := 0
		_, err := GenerateID(PrefixUser, func(string) (bool, error) {
			calls++
			return true, nil
		})
		if !errors.Is(err, errIDSpaceExhausted) {
			t.Fatalf("expected exhaustion error, got %v", err)
		}
		if calls != idMaxAttempts {
			t.Fatalf("expected %d attempts, got %d", idMaxAttempts, calls)
		}
	})

	t.Run("suffix is padded base36", func(t *testing.T) {
		for i := 0; i < 200; i++ {
			suffix, err := randomSuffix()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(suffix) != idSuffixLength {
				t.Fatalf("expected %d chars, got %q", idSuffixLength, suffix)
			}
			if strings.Trim(suffix, "0123456789abcdefghijklmnopqrstuvwxyz") != "" {
				t.Fatalf("unexpected characters in %q", suffix)
			}
		}
	})

	t.Run("propagates exists error", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := GenerateID(PrefixUser, func(string) (bool, error) { return false, boom })
		if !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
	})
}
