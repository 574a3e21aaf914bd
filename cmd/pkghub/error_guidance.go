package main

import (
	"context"
	"errors"
	"net"
	"net/http"

	"pkghub/internal/api"
	"pkghub/internal/server"
)

const (
	hintNoServer     = "hint: ensure a pkghub server is running at PKGHUB_API_URL."
	hintStartServer  = "hint: start local server manually with: pkghub srv"
	hintWrongServer  = "hint: verify PKGHUB_API_URL points to a pkghub server."
	hintServerLogs   = "hint: server returned an internal error; check server logs for details."
	hintArchiveBusy  = "hint: too many archives are being built; retry shortly."
	hintUploadLimit  = "hint: raise uploads.max_upload_bytes with: pkghub config set uploads.max_upload_bytes <bytes>"
	hintSlowRequest  = "hint: request timed out; check server health or increase PKGHUB_HTTP_TIMEOUT."
	hintListPackages = "hint: list packages with: pkghub package list"
)

// errorCodeHints maps server error codes to follow-up advice.
var errorCodeHints = map[int]string{
	server.ErrCodeRequestTooLarge:   hintUploadLimit,
	server.ErrCodeResourceExhausted: hintArchiveBusy,
	server.ErrCodePackageNotFound:   hintListPackages,
}

// formatCLIError renders err followed by any hints that apply to it.
func formatCLIError(err error) []string {
	if err == nil {
		return nil
	}
	lines := []string{err.Error()}

	var apiErr *api.APIError
	switch {
	case errors.As(err, &apiErr):
		lines = append(lines, apiErrorHints(apiErr)...)
	case errors.Is(err, context.DeadlineExceeded):
		lines = append(lines, hintSlowRequest)
	default:
		var netErr net.Error
		if errors.As(err, &netErr) {
			lines = append(lines, hintNoServer, hintStartServer)
		}
	}
	return uniqueLines(lines)
}

func apiErrorHints(apiErr *api.APIError) []string {
	var hints []string
	if apiErr.Code == "" {
		// Not a pkghub error body.
		hints = append(hints, hintWrongServer)
	}
	if hint, ok := errorCodeHints[apiErr.ErrorCode]; ok {
		hints = append(hints, hint)
	}
	if apiErr.Status >= http.StatusInternalServerError {
		hints = append(hints, hintServerLogs)
	}
	return hints
}

func uniqueLines(lines []string) []string {
	seen := make(map[string]bool, len(lines))
	out := lines[:0:0]
	for _, line := range lines {
		if line == "" || seen[line] {
			continue
		}
		seen[line] = true
		out = append(out, line)
	}
	return out
}
