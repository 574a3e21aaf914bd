package server

import (
	"bufio"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"pkghub/internal/api"
	"pkghub/internal/models"
	"pkghub/internal/store"
)

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req api.UserCreateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	user, err := s.buildUser(req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if err := s.store.CreateUser(r.Context(), &user); err != nil {
		if isUniqueConstraint(err, "users.email") {
			s.writeServiceError(w, r, conflictCode(fmt.Errorf("email already registered"), ErrCodeEmailExists))
			return
		}
		s.writeStoreError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, user)
}

func (s *Server) buildUser(req api.UserCreateRequest) (models.User, error) {
	firstname, err := normalizeName("firstname", req.Firstname)
	if err != nil {
		return models.User{}, err
	}
	lastname, err := normalizeName("lastname", req.Lastname)
	if err != nil {
		return models.User{}, err
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return models.User{}, err
	}
	if err := validatePassword(req.Password); err != nil {
		return models.User{}, err
	}
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return models.User{}, internalError(err)
	}
	return models.User{
		Firstname:    firstname,
		Lastname:     lastname,
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
	}, nil
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	all, err := queryBool(r, "all")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	users, err := s.store.ListUsers(r.Context(), all)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r, store.PrefixUser)
	if !ok {
		return
	}
	user, ok := s.loadUser(w, r, id)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r, store.PrefixUser)
	if !ok {
		return
	}
	var req api.UserUpdateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	update := store.UserUpdate{UpdatedAt: time.Now().UTC()}
	if req.Firstname != nil {
		value, err := normalizeName("firstname", *req.Firstname)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		update.Firstname = &value
	}
	if req.Lastname != nil {
		value, err := normalizeName("lastname", *req.Lastname)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		update.Lastname = &value
	}
	if req.Email != nil {
		value, err := normalizeEmail(*req.Email)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		update.Email = &value
	}
	if req.Password != nil {
		if err := validatePassword(*req.Password); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			s.writeServiceError(w, r, internalError(err))
			return
		}
		update.PasswordHash = &hash
	}

	found, err := s.store.UpdateUser(r.Context(), id, update)
	if err != nil {
		if isUniqueConstraint(err, "users.email") {
			s.writeServiceError(w, r, conflictCode(fmt.Errorf("email already registered"), ErrCodeEmailExists))
			return
		}
		s.writeStoreError(w, r, err)
		return
	}
	if !found {
		s.writeServiceError(w, r, notFoundCode(fmt.Errorf("user not found"), ErrCodeUserNotFound))
		return
	}

	user, ok := s.loadUser(w, r, id)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r, store.PrefixUser)
	if !ok {
		return
	}
	found, err := s.store.DeactivateUser(r.Context(), id, time.Now().UTC())
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	if !found {
		s.writeServiceError(w, r, notFoundCode(fmt.Errorf("user not found"), ErrCodeUserNotFound))
		return
	}
	s.writeJSON(w, http.StatusOK, api.DeleteResponse{ID: id})
}

func (s *Server) handlePutAvatar(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r, store.PrefixUser)
	if !ok {
		return
	}
	if _, ok := s.loadUser(w, r, id); !ok {
		return
	}

	content, filename, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	mediaType := avatarMediaType(r.FormValue("media_type"), filename, content)

	found, err := s.store.SetUserAvatar(r.Context(), models.Avatar{UserID: id, MediaType: mediaType, Data: content}, time.Now().UTC())
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	if !found {
		s.writeServiceError(w, r, notFoundCode(fmt.Errorf("user not found"), ErrCodeUserNotFound))
		return
	}

	user, ok := s.loadUser(w, r, id)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleGetAvatar(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r, store.PrefixUser)
	if !ok {
		return
	}
	avatar, err := s.store.GetUserAvatar(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	if avatar == nil {
		s.writeServiceError(w, r, notFoundCode(fmt.Errorf("avatar not found"), ErrCodeAvatarNotFound))
		return
	}

	mediaType := avatar.MediaType
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", mediaType)
	w.Header().Set("Content-Length", strconv.Itoa(len(avatar.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(avatar.Data); err != nil {
		s.log().Warn("write avatar", "user_id", id, "error", err)
	}
}

func (s *Server) handleListUserRoles(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r, store.PrefixUser)
	if !ok {
		return
	}
	if _, ok := s.loadUser(w, r, id); !ok {
		return
	}
	roles, err := s.store.ListUserRoles(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, roles)
}

func (s *Server) handleGetUserProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r, store.PrefixUser)
	if !ok {
		return
	}
	if _, ok := s.loadUser(w, r, id); !ok {
		return
	}
	profile, err := s.store.GetProfileByUser(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	if profile == nil {
		s.writeServiceError(w, r, notFoundCode(fmt.Errorf("profile not found"), ErrCodeProfileNotFound))
		return
	}
	s.writeJSON(w, http.StatusOK, profile)
}

func (s *Server) loadUser(w http.ResponseWriter, r *http.Request, id string) (*models.User, bool) {
	user, err := s.store.GetUser(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return nil, false
	}
	if user == nil {
		s.writeServiceError(w, r, notFoundCode(fmt.Errorf("user not found"), ErrCodeUserNotFound))
		return nil, false
	}
	return user, true
}

// readUpload parses a bounded multipart body and returns the bytes of its
// "content" file.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.uploads.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.uploads.MultipartMaxMemory); err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, classifyMultipartError(err))
		return nil, "", false
	}

	file, header, err := r.FormFile("content")
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(fmt.Errorf("content is required"), ErrCodeMissingRequired))
		return nil, "", false
	}
	defer file.Close()

	content, err := io.ReadAll(bufio.NewReader(file))
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, classifyMultipartError(err))
		return nil, "", false
	}
	if len(content) == 0 {
		s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(fmt.Errorf("content is empty"), ErrCodeEmptyPayload))
		return nil, "", false
	}
	return content, header.Filename, true
}

func avatarMediaType(declared, filename string, content []byte) string {
	if declared = strings.TrimSpace(declared); declared != "" {
		if parsed, _, err := mime.ParseMediaType(declared); err == nil {
			return parsed
		}
	}
	sniffed := http.DetectContentType(content)
	if sniffed != "application/octet-stream" {
		return sniffed
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); byExt != "" {
		return byExt
	}
	return sniffed
}

func classifyMultipartError(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(strings.ToLower(err.Error()), "request body too large") {
		return badRequestCode(fmt.Errorf("request body too large"), ErrCodeRequestTooLarge)
	}
	return badRequestCode(err, ErrCodeInvalidArgument)
}
