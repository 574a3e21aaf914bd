package models

import "time"

// Package is a named container that owns zero or more artifacts.
type Package struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ArtifactSummary is the payload-free projection of an artifact. Listing and
// metadata call sites only ever see this shape.
type ArtifactSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	PackageID string    `json:"package_id"`
	CreatedBy string    `json:"created_by"`
	SizeBytes int64     `json:"size_bytes"`
	SHA256    string    `json:"sha256"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Artifact is a summary plus its stored payload bytes.
type Artifact struct {
	ArtifactSummary
	Payload []byte `json:"-"`
}
