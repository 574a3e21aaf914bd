package api

import "pkghub/internal/models"

// ErrorResponse is a generic JSON error wrapper.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// InfoResponse is the response from GET /v1/info.
type InfoResponse struct {
	Version       string         `json:"version"`
	SchemaVersion int            `json:"schema_version"`
	Counts        map[string]int `json:"counts"`
}

// UserCreateRequest is the body of POST /v1/users.
type UserCreateRequest struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// UserUpdateRequest is the body of PATCH /v1/users/{id}.
type UserUpdateRequest struct {
	Firstname *string `json:"firstname,omitempty"`
	Lastname  *string `json:"lastname,omitempty"`
	Email     *string `json:"email,omitempty"`
	Password  *string `json:"password,omitempty"`
}

// RoleCreateRequest is the body of POST /v1/roles.
type RoleCreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// RoleUpdateRequest is the body of PATCH /v1/roles/{id}.
type RoleUpdateRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// RoleAssignRequest is the body of POST /v1/roles/{id}/assign.
type RoleAssignRequest struct {
	UserID string `json:"user_id"`
}

// PostCreateRequest is the body of POST /v1/posts.
type PostCreateRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	UserID  string `json:"user_id"`
}

// PostUpdateRequest is the body of PATCH /v1/posts/{id}.
type PostUpdateRequest struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

// ProfileCreateRequest is the body of POST /v1/profiles.
type ProfileCreateRequest struct {
	Bio     string `json:"bio,omitempty"`
	Address string `json:"address,omitempty"`
	UserID  string `json:"user_id"`
}

// ProfileUpdateRequest is the body of PATCH /v1/profiles/{id}.
type ProfileUpdateRequest struct {
	Bio      *string `json:"bio,omitempty"`
	Address  *string `json:"address,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// PackageCreateRequest is the body of POST /v1/packages.
type PackageCreateRequest struct {
	Name      string `json:"name"`
	CreatedBy string `json:"created_by"`
}

// PackageResponse is a package with the summaries of its artifacts.
type PackageResponse struct {
	models.Package
	Artifacts []models.ArtifactSummary `json:"artifacts"`
}

// ArtifactUploadRequest carries the form fields of a multipart artifact upload.
type ArtifactUploadRequest struct {
	Name      string
	Filename  string
	CreatedBy string
}

// DeleteResponse acknowledges a delete.
type DeleteResponse struct {
	ID string `json:"id"`
}
