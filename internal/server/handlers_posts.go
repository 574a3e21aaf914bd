package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"pkghub/internal/api"
	"pkghub/internal/models"
	"pkghub/internal/store"
)

const maxProfileFieldLength = 1000

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req api.PostCreateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}
	title, err := normalizeName("title", req.Title)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	content, err := normalizeOptionalText("content", req.Content, models.MaxPostContentLength)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	userID, err := requireBodyID("user_id", req.UserID, store.PrefixUser)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if _, ok := s.loadUser(w, r, userID); !ok {
		return
	}

	post := models.Post{Title: title, Content: content, UserID: userID}
	if err := s.store.CreatePost(r.Context(), &post); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, post)
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID != "" && !validateID(userID, store.PrefixUser) {
		s.writeServiceError(w, r, badRequestCode(fmt.Errorf("invalid user_id"), ErrCodeInvalidQuery))
		return
	}
	posts, err := s.store.ListPosts(r.Context(), userID)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, posts)
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r, store.PrefixPost)
	if !ok {
		return
	}
	post, ok := s.loadPost(w, r, id)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, post)
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r, store.PrefixPost)
	if !ok {
		return
	}
	var req api.PostUpdateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	update := store.PostUpdate{UpdatedAt: time.Now().UTC()}
	if req.Title != nil {
		value, err := normalizeName("title", *req.Title)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		update.Title = &value
	}
	if req.Content != nil {
		value, err := normalizeOptionalText("content", *req.Content, models.MaxPostContentLength)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		update.Content = &value
	}

	found, err := s.store.UpdatePost(r.Context(), id, update)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	if !found {
		s.writeServiceError(w, r, notFoundCode(fmt.Errorf("post not found"), ErrCodePostNotFound))
		return
	}
	post, ok := s.loadPost(w, r, id)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, post)
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r, store.PrefixPost)
	if !ok {
		return
	}
	found, err := s.store.DeletePost(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	if !found {
		s.writeServiceError(w, r, notFoundCode(fmt.Errorf("post not found"), ErrCodePostNotFound))
		return
	}
	s.writeJSON(w, http.StatusOK, api.DeleteResponse{ID: id})
}

func (s *Server) loadPost(w http.ResponseWriter, r *http.Request, id string) (*models.Post, bool) {
	post, err := s.store.GetPost(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return nil, false
	}
	if post == nil {
		s.writeServiceError(w, r, notFoundCode(fmt.Errorf("post not found"), ErrCodePostNotFound))
		return nil, false
	}
	return post, true
}

func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var req api.ProfileCreateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}
	bio, err := normalizeOptionalText("bio", req.Bio, maxProfileFieldLength)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	address, err := normalizeOptionalText("address", req.Address, maxProfileFieldLength)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	userID, err := requireBodyID("user_id", req.UserID, store.PrefixUser)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	user, ok := s.loadUser(w, r, userID)
	if !ok {
		return
	}
	if !user.IsActive {
		s.writeServiceError(w, r, conflictCode(fmt.Errorf("user is inactive"), ErrCodeUserInactive))
		return
	}

	profile := models.Profile{Bio: bio, Address: address, IsActive: true, UserID: userID}
	if err := s.store.CreateProfile(r.Context(), &profile); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, profile)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r, store.PrefixProfile)
	if !ok {
		return
	}
	profile, ok := s.loadProfile(w, r, id)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r, store.PrefixProfile)
	if !ok {
		return
	}
	var req api.ProfileUpdateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	update := store.ProfileUpdate{IsActive: req.IsActive, UpdatedAt: time.Now().UTC()}
	if req.Bio != nil {
		value, err := normalizeOptionalText("bio", *req.Bio, maxProfileFieldLength)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		update.Bio = &value
	}
	if req.Address != nil {
		value, err := normalizeOptionalText("address", *req.Address, maxProfileFieldLength)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		update.Address = &value
	}

	found, err := s.store.UpdateProfile(r.Context(), id, update)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	if !found {
		s.writeServiceError(w, r, notFoundCode(fmt.Errorf("profile not found"), ErrCodeProfileNotFound))
		return
	}
	profile, ok := s.loadProfile(w, r, id)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, profile)
}

func (s *Server) loadProfile(w http.ResponseWriter, r *http.Request, id string) (*models.Profile, bool) {
	profile, err := s.store.GetProfile(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return nil, false
	}
	if profile == nil {
		s.writeServiceError(w, r, notFoundCode(fmt.Errorf("profile not found"), ErrCodeProfileNotFound))
		return nil, false
	}
	return profile, true
}
