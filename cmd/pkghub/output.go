package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"pkghub/internal/api"
	"pkghub/internal/format"
	"pkghub/internal/models"
)

var outputFormatter format.Formatter = format.JSONFormatter{}

func writeJSON(payload any) error {
	return outputFormatter.Write(os.Stdout, payload)
}

func writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(os.Stdout, format, args...)
	return err
}

func writeLines(lines []string) error {
	return writePlain("%s\n", strings.Join(lines, "\n"))
}

func formatUserLine(user models.User) string {
	state := "active"
	if !user.IsActive {
		state = "inactive"
	}
	return fmt.Sprintf("%s  %s %s <%s> [%s]", user.ID, user.Firstname, user.Lastname, user.Email, state)
}

func writeUserDetail(user models.User) error {
	lines := []string{
		fmt.Sprintf("id: %s", user.ID),
		fmt.Sprintf("name: %s %s", user.Firstname, user.Lastname),
		fmt.Sprintf("email: %s", user.Email),
		fmt.Sprintf("active: %t", user.IsActive),
	}
	if user.AvatarMediaType != "" {
		lines = append(lines, fmt.Sprintf("avatar: %s", user.AvatarMediaType))
	}
	lines = append(lines,
		fmt.Sprintf("created_at: %s", formatTime(user.CreatedAt)),
		fmt.Sprintf("updated_at: %s", formatTime(user.UpdatedAt)),
	)
	return writeLines(lines)
}

func formatRoleLine(role models.Role) string {
	line := fmt.Sprintf("%s  %s", role.ID, role.Name)
	if role.Description != "" {
		line += " - " + role.Description
	}
	if !role.IsActive {
		line += " [inactive]"
	}
	return line
}

func formatPackageLine(pkg models.Package) string {
	return fmt.Sprintf("%s  %s (owner %s, %s)", pkg.ID, pkg.Name, pkg.CreatedBy, humanize.Time(pkg.CreatedAt))
}

func writePackageDetail(pkg api.PackageResponse) error {
	var total int64
	for _, a := range pkg.Artifacts {
		total += a.SizeBytes
	}
	lines := []string{
		fmt.Sprintf("id: %s", pkg.ID),
		fmt.Sprintf("name: %s", pkg.Name),
		fmt.Sprintf("created_by: %s", pkg.CreatedBy),
		fmt.Sprintf("created_at: %s", formatTime(pkg.CreatedAt)),
		fmt.Sprintf("artifacts: %d (%s)", len(pkg.Artifacts), humanize.Bytes(uint64(total))),
	}
	for _, a := range pkg.Artifacts {
		lines = append(lines, "  "+formatArtifactLine(a))
	}
	return writeLines(lines)
}

func formatArtifactLine(a models.ArtifactSummary) string {
	return fmt.Sprintf("%s  %-24s %10s  sha256:%s", a.ID, a.Name, humanize.Bytes(uint64(a.SizeBytes)), shortDigest(a.SHA256))
}

func shortDigest(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	return digest
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
