package main

import (
	"net"
	"testing"

	"pkghub/internal/api"
	"pkghub/internal/server"
)

func TestFormatCLIError_NetworkGuidance(t *testing.T) {
	err := &net.DNSError{Err: "dial tcp: connection refused", Name: "127.0.0.1", IsTemporary: true}
	lines := formatCLIError(err)
	if !containsLine(lines, "hint: ensure a pkghub server is running at PKGHUB_API_URL.") {
		t.Fatalf("expected connectivity guidance, got %v", lines)
	}
	if !containsLine(lines, "hint: start local server manually with: pkghub srv") {
		t.Fatalf("expected manual-start guidance, got %v", lines)
	}
}

func TestFormatCLIError_APIUnknownServiceGuidance(t *testing.T) {
	err := &api.APIError{Status: 404, Message: "api error: 404 Not Found"}
	lines := formatCLIError(err)
	if !containsLine(lines, "hint: verify PKGHUB_API_URL points to a pkghub server.") {
		t.Fatalf("expected api-url guidance, got %v", lines)
	}
}

func TestFormatCLIError_UploadTooLargeGuidance(t *testing.T) {
	err := &api.APIError{Status: 400, Code: "invalid_argument", ErrorCode: server.ErrCodeRequestTooLarge, Message: "request body too large"}
	lines := formatCLIError(err)
	if !containsLine(lines, "hint: raise uploads.max_upload_bytes with: pkghub config set uploads.max_upload_bytes <bytes>") {
		t.Fatalf("expected upload-limit guidance, got %v", lines)
	}
}

func TestFormatCLIError_APIInternalGuidance(t *testing.T) {
	err := &api.APIError{Status: 500, Code: "internal", Message: "internal error"}
	lines := formatCLIError(err)
	if !containsLine(lines, "hint: server returned an internal error; check server logs for details.") {
		t.Fatalf("expected internal-error guidance, got %v", lines)
	}
}

func TestUniqueLinesDropsDuplicates(t *testing.T) {
	got := uniqueLines([]string{"a", "", "b", "a"})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected lines: %v", got)
	}
}

func containsLine(lines []string, expected string) bool {
	for _, line := range lines {
		if line == expected {
			return true
		}
	}
	return false
}

func TestFormatCLIError_ArchiveBusyAndMissingPackage(t *testing.T) {
	busy := &api.APIError{Status: 429, Code: "resource_exhausted", ErrorCode: server.ErrCodeResourceExhausted, Message: "too many archive requests"}
	if lines := formatCLIError(busy); !containsLine(lines, hintArchiveBusy) {
		t.Fatalf("expected busy guidance, got %v", lines)
	}

	missing := &api.APIError{Status: 404, Code: "not_found", ErrorCode: server.ErrCodePackageNotFound, Message: "package not found"}
	lines := formatCLIError(missing)
	if !containsLine(lines, hintListPackages) {
		t.Fatalf("expected package-list guidance, got %v", lines)
	}
	if containsLine(lines, hintWrongServer) {
		t.Fatalf("pkghub errors must not suggest a wrong server, got %v", lines)
	}
}
