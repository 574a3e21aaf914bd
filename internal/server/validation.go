package server

import (
	"fmt"
	"regexp"
	"strings"

	"pkghub/internal/auth"
	"pkghub/internal/models"
)

var idRegex = regexp.MustCompile(`^[a-z]{2}-[0-9a-z]{6}$`)

// validateID checks the id shape and, when prefix is set, its entity prefix.
func validateID(id, prefix string) bool {
	if !idRegex.MatchString(id) {
		return false
	}
	return prefix == "" || strings.HasPrefix(id, prefix+"-")
}

func requireBodyID(field, id, prefix string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", badRequestCode(fmt.Errorf("%s is required", field), ErrCodeMissingRequired)
	}
	if !validateID(id, prefix) {
		return "", badRequestCode(fmt.Errorf("invalid %s", field), ErrCodeInvalidID)
	}
	return id, nil
}

func normalizeName(field, raw string) (string, error) {
	value, err := models.NormalizeName(field, raw)
	if err != nil {
		if strings.TrimSpace(raw) == "" {
			return "", badRequestCode(err, ErrCodeMissingRequired)
		}
		return "", badRequestCode(err, ErrCodeFieldTooLong)
	}
	return value, nil
}

func normalizeEmail(raw string) (string, error) {
	value, err := models.NormalizeEmail(raw)
	if err != nil {
		return "", badRequestCode(err, ErrCodeInvalidEmail)
	}
	return value, nil
}

func validatePassword(raw string) error {
	if err := auth.ValidatePassword(raw); err != nil {
		return badRequestCode(err, ErrCodeInvalidPassword)
	}
	return nil
}

func normalizeOptionalText(field, raw string, limit int) (string, error) {
	value := strings.TrimSpace(raw)
	if len(value) > limit {
		return "", badRequestCode(fmt.Errorf("%s must be at most %d characters", field, limit), ErrCodeFieldTooLong)
	}
	return value, nil
}
