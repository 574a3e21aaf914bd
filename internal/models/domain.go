package models

import (
	"fmt"
	"net/mail"
	"strings"
)

const (
	MaxNameLength        = 255
	MaxEmailLength       = 254
	MaxPostContentLength = 10000
)

// NormalizeName trims a display name and validates its length.
func NormalizeName(field, raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", fmt.Errorf("%s is required", field)
	}
	if len(value) > MaxNameLength {
		return "", fmt.Errorf("%s must be at most %d characters", field, MaxNameLength)
	}
	return value, nil
}

// NormalizeEmail returns the canonical lowercase address.
func NormalizeEmail(raw string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return "", fmt.Errorf("email is required")
	}
	if len(value) > MaxEmailLength {
		return "", fmt.Errorf("email too long")
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return "", fmt.Errorf("invalid email: %s", value)
	}
	return value, nil
}

// ArchiveFilename returns the download name of a package archive.
func ArchiveFilename(packageName string) string {
	name := strings.TrimSpace(packageName)
	if name == "" {
		name = "package"
	}
	return name + ".zip"
}
