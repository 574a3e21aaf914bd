package store

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Entity ids are "<prefix>-<suffix>" with a lowercase base36 suffix.
const (
	PrefixUser     = "us"
	PrefixRole     = "ro"
	PrefixUserRole = "ur"
	PrefixPost     = "po"
	PrefixProfile  = "pf"
	PrefixPackage  = "pk"
	PrefixArtifact = "af"
)

const (
	idSuffixLength = 6
	idSuffixSpace  = 36 * 36 * 36 * 36 * 36 * 36
	idMaxAttempts  = 20
)

var errIDSpaceExhausted = errors.New("no free id after retries")

// GenerateID draws ids for prefix until exists reports one as unused.
// A nil exists accepts the first draw.
func GenerateID(prefix string, exists func(string) (bool, error)) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("id prefix is required")
	}

	for attempt := 0; attempt < idMaxAttempts; attempt++ {
		suffix, err := randomSuffix()
		if err != nil {
			return "", fmt.Errorf("generate %s id: %w", prefix, err)
		}
		id := prefix + "-" + suffix
		if exists == nil {
			return id, nil
		}
		taken, err := exists(id)
		if err != nil {
			return "", err
		}
		if !taken {
			return id, nil
		}
	}
	return "", fmt.Errorf("generate %s id: %w", prefix, errIDSpaceExhausted)
}

// randomSuffix returns idSuffixLength base36 digits, zero padded.
func randomSuffix() (string, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	n := binary.BigEndian.Uint64(buf[:]) % idSuffixSpace
	digits := strconv.FormatUint(n, 36)
	return strings.Repeat("0", idSuffixLength-len(digits)) + digits, nil
}
