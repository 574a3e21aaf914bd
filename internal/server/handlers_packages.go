package server

import (
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"pkghub/internal/api"
	"pkghub/internal/models"
	"pkghub/internal/store"
)

func (s *Server) handleCreatePackage(w http.ResponseWriter, r *http.Request) {
	var req api.PackageCreateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}
	name, err := normalizeName("name", req.Name)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	createdBy, err := requireBodyID("created_by", req.CreatedBy, store.PrefixUser)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if _, ok := s.loadUser(w, r, createdBy); !ok {
		return
	}

	pkg := models.Package{Name: name, CreatedBy: createdBy}
	if err := s.store.CreatePackage(r.Context(), &pkg); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, pkg)
}

func (s *Server) handleListPackages(w http.ResponseWriter, r *http.Request) {
	createdBy := strings.TrimSpace(r.URL.Query().Get("created_by"))
	if createdBy != "" && !validateID(createdBy, store.PrefixUser) {
		s.writeServiceError(w, r, badRequestCode(fmt.Errorf("invalid created_by"), ErrCodeInvalidQuery))
		return
	}
	packages, err := s.store.ListPackages(r.Context(), createdBy)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, packages)
}

func (s *Server) handleGetPackage(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r, store.PrefixPackage)
	if !ok {
		return
	}
	pkg, ok := s.loadPackage(w, r, id)
	if !ok {
		return
	}
	summaries, err := s.artifacts.ListSummaries(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, artifactError(err, ErrCodePackageNotFound))
		return
	}
	s.writeJSON(w, http.StatusOK, api.PackageResponse{Package: *pkg, Artifacts: summaries})
}

func (s *Server) handleListArtifacts(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r, store.PrefixPackage)
	if !ok {
		return
	}
	summaries, err := s.artifacts.ListSummaries(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, artifactError(err, ErrCodePackageNotFound))
		return
	}
	s.writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleUploadArtifact(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r, store.PrefixPackage)
	if !ok {
		return
	}
	content, filename, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	createdBy, err := requireBodyID("created_by", r.FormValue("created_by"), store.PrefixUser)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	name := firstNonEmpty(r.FormValue("name"), filename)
	if len(name) > models.MaxNameLength {
		s.writeServiceError(w, r, badRequestCode(fmt.Errorf("name must be at most %d characters", models.MaxNameLength), ErrCodeFieldTooLong))
		return
	}

	created, err := s.artifacts.Put(r.Context(), id, name, createdBy, content)
	if err != nil {
		s.writeServiceError(w, r, artifactError(err, ErrCodePackageNotFound))
		return
	}
	s.log().Info("artifact stored",
		"artifact_id", created.ID,
		"package_id", id,
		"size", humanize.Bytes(uint64(created.SizeBytes)),
		"request_id", requestIDFrom(r.Context()),
	)
	s.writeJSON(w, http.StatusCreated, created.ArtifactSummary)
}

func (s *Server) handleGetArtifactContent(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r, store.PrefixPackage)
	if !ok {
		return
	}
	artifactID, err := requirePathID(r, "artifact_id", store.PrefixArtifact)
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}

	found, err := s.artifacts.GetWithPayload(r.Context(), artifactID)
	if err != nil {
		s.writeServiceError(w, r, artifactError(err, ErrCodeArtifactNotFound))
		return
	}
	if found.PackageID != id {
		s.writeServiceError(w, r, notFoundCode(fmt.Errorf("artifact not found"), ErrCodeArtifactNotFound))
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", attachmentDisposition(found.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(found.Payload)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(found.Payload); err != nil {
		s.log().Warn("write artifact content", "artifact_id", artifactID, "error", err)
	}
}

func (s *Server) handleGetArchive(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r, store.PrefixPackage)
	if !ok {
		return
	}
	if !s.acquireLimiter(s.archiveLimiter, w, r, "archive") {
		return
	}
	defer s.releaseLimiter(s.archiveLimiter)

	pkg, ok := s.loadPackage(w, r, id)
	if !ok {
		return
	}
	artifacts, err := s.artifacts.ListWithPayloads(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, artifactError(err, ErrCodePackageNotFound))
		return
	}

	s.streamArchive(w, r, pkg, artifacts)
}

// streamArchive writes the package archive to w. Errors before the first
// byte are reported as JSON; after it the connection is aborted.
func (s *Server) streamArchive(w http.ResponseWriter, r *http.Request, pkg *models.Package, artifacts []models.Artifact) {
	sink := &archiveSink{
		w:        w,
		filename: models.ArchiveFilename(pkg.Name),
	}
	if err := s.archiver.Build(r.Context(), pkg.Name, artifacts, sink); err != nil {
		if !sink.started {
			s.writeServiceError(w, r, archiveError(err))
			return
		}
		s.log().Error("archive aborted",
			"package_id", pkg.ID,
			"written", humanize.Bytes(uint64(sink.written)),
			"error", err,
			"request_id", requestIDFrom(r.Context()),
		)
		panic(http.ErrAbortHandler)
	}
	if !sink.started {
		sink.start()
	}
	s.log().Debug("archive sent",
		"package_id", pkg.ID,
		"artifacts", len(artifacts),
		"size", humanize.Bytes(uint64(sink.written)),
	)
}

func (s *Server) loadPackage(w http.ResponseWriter, r *http.Request, id string) (*models.Package, bool) {
	pkg, err := s.store.GetPackage(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return nil, false
	}
	if pkg == nil {
		s.writeServiceError(w, r, notFoundCode(fmt.Errorf("package not found"), ErrCodePackageNotFound))
		return nil, false
	}
	return pkg, true
}

// archiveSink defers the archive response headers until the first byte so
// failures before that point can still be reported as JSON errors.
type archiveSink struct {
	w        http.ResponseWriter
	filename string
	started  bool
	written  int64
}

func (a *archiveSink) start() {
	a.started = true
	a.w.Header().Set("Content-Type", "application/zip")
	a.w.Header().Set("Content-Disposition", attachmentDisposition(a.filename))
	a.w.WriteHeader(http.StatusOK)
}

func (a *archiveSink) Write(p []byte) (int, error) {
	if !a.started {
		a.start()
	}
	n, err := a.w.Write(p)
	a.written += int64(n)
	return n, err
}

func archiveError(err error) error {
	mapped := artifactError(err, ErrCodeArtifactNotFound)
	if httpStatusFromError(mapped) == http.StatusInternalServerError {
		return makeAPIError(http.StatusInternalServerError, "internal", ErrCodeArchiveFailed, err)
	}
	return mapped
}

func attachmentDisposition(filename string) string {
	if value := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); value != "" {
		return value
	}
	return "attachment"
}
