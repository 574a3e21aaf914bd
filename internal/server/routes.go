package server

import (
	"net/http"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Health check and info.
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /v1/info", s.handleInfo)

	// Users.
	mux.HandleFunc("POST /v1/users", s.handleCreateUser)
	mux.HandleFunc("GET /v1/users", s.handleListUsers)
	mux.HandleFunc("GET /v1/users/{id}", s.handleGetUser)
	mux.HandleFunc("PATCH /v1/users/{id}", s.handleUpdateUser)
	mux.HandleFunc("DELETE /v1/users/{id}", s.handleDeleteUser)
	mux.HandleFunc("PUT /v1/users/{id}/avatar", s.handlePutAvatar)
	mux.HandleFunc("GET /v1/users/{id}/avatar", s.handleGetAvatar)
	mux.HandleFunc("GET /v1/users/{id}/roles", s.handleListUserRoles)
	mux.HandleFunc("GET /v1/users/{id}/profile", s.handleGetUserProfile)

	// Roles.
	mux.HandleFunc("POST /v1/roles", s.handleCreateRole)
	mux.HandleFunc("GET /v1/roles", s.handleListRoles)
	mux.HandleFunc("GET /v1/roles/{id}", s.handleGetRole)
	mux.HandleFunc("PATCH /v1/roles/{id}", s.handleUpdateRole)
	mux.HandleFunc("DELETE /v1/roles/{id}", s.handleDeleteRole)
	mux.HandleFunc("POST /v1/roles/{id}/assign", s.handleAssignRole)

	// Posts.
	mux.HandleFunc("POST /v1/posts", s.handleCreatePost)
	mux.HandleFunc("GET /v1/posts", s.handleListPosts)
	mux.HandleFunc("GET /v1/posts/{id}", s.handleGetPost)
	mux.HandleFunc("PATCH /v1/posts/{id}", s.handleUpdatePost)
	mux.HandleFunc("DELETE /v1/posts/{id}", s.handleDeletePost)

	// Profiles.
	mux.HandleFunc("POST /v1/profiles", s.handleCreateProfile)
	mux.HandleFunc("GET /v1/profiles/{id}", s.handleGetProfile)
	mux.HandleFunc("PATCH /v1/profiles/{id}", s.handleUpdateProfile)

	// Packages.
	mux.HandleFunc("POST /v1/packages", s.handleCreatePackage)
	mux.HandleFunc("GET /v1/packages", s.handleListPackages)
	mux.HandleFunc("GET /v1/packages/{id}", s.handleGetPackage)

	// Artifacts and archives.
	mux.HandleFunc("GET /v1/packages/{id}/artifacts", s.handleListArtifacts)
	mux.HandleFunc("POST /v1/packages/{id}/artifacts", s.handleUploadArtifact)
	mux.HandleFunc("GET /v1/packages/{id}/artifacts/{artifact_id}", s.handleGetArtifactContent)
	mux.HandleFunc("GET /v1/packages/{id}/archive", s.handleGetArchive)

	return s.withRequestID(s.withRequestLogging(mux))
}
