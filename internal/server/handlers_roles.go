package server

import (
	"fmt"
	"net/http"
	"time"

	"pkghub/internal/api"
	"pkghub/internal/models"
	"pkghub/internal/store"
)

const maxRoleDescriptionLength = 1000

func (s *Server) handleCreateRole(w http.ResponseWriter, r *http.Request) {
	var req api.RoleCreateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}
	name, err := normalizeName("name", req.Name)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	description, err := normalizeOptionalText("description", req.Description, maxRoleDescriptionLength)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	role := models.Role{Name: name, Description: description, IsActive: true}
	if err := s.store.CreateRole(r.Context(), &role); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, role)
}

func (s *Server) handleListRoles(w http.ResponseWriter, r *http.Request) {
	all, err := queryBool(r, "all")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	roles, err := s.store.ListRoles(r.Context(), all)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, roles)
}

func (s *Server) handleGetRole(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r, store.PrefixRole)
	if !ok {
		return
	}
	role, ok := s.loadRole(w, r, id)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, role)
}

func (s *Server) handleUpdateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r, store.PrefixRole)
	if !ok {
		return
	}
	var req api.RoleUpdateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	update := store.RoleUpdate{UpdatedAt: time.Now().UTC()}
	if req.Name != nil {
		value, err := normalizeName("name", *req.Name)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		update.Name = &value
	}
	if req.Description != nil {
		value, err := normalizeOptionalText("description", *req.Description, maxRoleDescriptionLength)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		update.Description = &value
	}

	found, err := s.store.UpdateRole(r.Context(), id, update)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	if !found {
		s.writeServiceError(w, r, notFoundCode(fmt.Errorf("role not found"), ErrCodeRoleNotFound))
		return
	}
	role, ok := s.loadRole(w, r, id)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, role)
}

func (s *Server) handleDeleteRole(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r, store.PrefixRole)
	if !ok {
		return
	}
	found, err := s.store.DeactivateRole(r.Context(), id, time.Now().UTC())
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	if !found {
		s.writeServiceError(w, r, notFoundCode(fmt.Errorf("role not found"), ErrCodeRoleNotFound))
		return
	}
	s.writeJSON(w, http.StatusOK, api.DeleteResponse{ID: id})
}

func (s *Server) handleAssignRole(w http.ResponseWriter, r *http.Request) {
	roleID, ok := s.pathIDOrBadRequest(w, r, store.PrefixRole)
	if !ok {
		return
	}
	var req api.RoleAssignRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}
	userID, err := requireBodyID("user_id", req.UserID, store.PrefixUser)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	role, ok := s.loadRole(w, r, roleID)
	if !ok {
		return
	}
	if !role.IsActive {
		s.writeServiceError(w, r, conflictCode(fmt.Errorf("role is inactive"), ErrCodeRoleInactive))
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

	assignment, err := s.store.AssignRole(r.Context(), userID, roleID, time.Now().UTC())
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, assignment)
}

func (s *Server) loadRole(w http.ResponseWriter, r *http.Request, id string) (*models.Role, bool) {
	role, err := s.store.GetRole(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return nil, false
	}
	if role == nil {
		s.writeServiceError(w, r, notFoundCode(fmt.Errorf("role not found"), ErrCodeRoleNotFound))
		return nil, false
	}
	return role, true
}
