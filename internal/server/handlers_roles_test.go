package server

import (
	"net/http"
	"testing"

	"pkghub/internal/api"
	"pkghub/internal/models"
)

func TestRoleAssignmentLifecycle(t *testing.T) {
	srv := newTestServer(t)
	user := seedUser(t, srv, "roles@example.com")

	w := doJSON(t, srv, http.MethodPost, "/v1/roles", api.RoleCreateRequest{Name: "maintainer", Description: "publishes packages"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	var role models.Role
	decodeBody(t, w, &role)

	w = doJSON(t, srv, http.MethodPost, "/v1/roles/"+role.ID+"/assign", api.RoleAssignRequest{UserID: user.ID})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	var assignment models.UserRole
	decodeBody(t, w, &assignment)
	if assignment.UserID != user.ID || assignment.RoleID != role.ID || !assignment.IsActive {
		t.Fatalf("unexpected assignment: %#v", assignment)
	}

	w = doJSON(t, srv, http.MethodGet, "/v1/users/"+user.ID+"/roles", nil)
	var roles []models.Role
	decodeBody(t, w, &roles)
	if len(roles) != 1 || roles[0].ID != role.ID {
		t.Fatalf("expected assigned role, got %#v", roles)
	}

	w = doJSON(t, srv, http.MethodDelete, "/v1/roles/"+role.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}

	w = doJSON(t, srv, http.MethodGet, "/v1/users/"+user.ID+"/roles", nil)
	roles = nil
	decodeBody(t, w, &roles)
	if len(roles) != 0 {
		t.Fatalf("expected no active roles after delete, got %d", len(roles))
	}

	w = doJSON(t, srv, http.MethodPost, "/v1/roles/"+role.ID+"/assign", api.RoleAssignRequest{UserID: user.ID})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for inactive role, got %d (%s)", w.Code, w.Body.String())
	}
	if errResp := decodeError(t, w); errResp.ErrorCode != ErrCodeRoleInactive {
		t.Fatalf("expected error_code %d, got %d", ErrCodeRoleInactive, errResp.ErrorCode)
	}
}

func TestAssignRoleToInactiveUser(t *testing.T) {
	srv := newTestServer(t)
	user := seedUser(t, srv, "gone@example.com")

	w := doJSON(t, srv, http.MethodPost, "/v1/roles", api.RoleCreateRequest{Name: "viewer"})
	var role models.Role
	decodeBody(t, w, &role)

	if w := doJSON(t, srv, http.MethodDelete, "/v1/users/"+user.ID, nil); w.Code != http.StatusOK {
		t.Fatalf("delete user: expected 200, got %d", w.Code)
	}

	w = doJSON(t, srv, http.MethodPost, "/v1/roles/"+role.ID+"/assign", api.RoleAssignRequest{UserID: user.ID})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d (%s)", w.Code, w.Body.String())
	}
	if errResp := decodeError(t, w); errResp.ErrorCode != ErrCodeUserInactive {
		t.Fatalf("expected error_code %d, got %d", ErrCodeUserInactive, errResp.ErrorCode)
	}

	w = doJSON(t, srv, http.MethodPost, "/v1/roles/"+role.ID+"/assign", api.RoleAssignRequest{UserID: "us-zzzzzz"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown user, got %d", w.Code)
	}
}

func TestUpdateRole(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/v1/roles", api.RoleCreateRequest{Name: "editor"})
	var role models.Role
	decodeBody(t, w, &role)

	description := "edits posts"
	w = doJSON(t, srv, http.MethodPatch, "/v1/roles/"+role.ID, api.RoleUpdateRequest{Description: &description})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	var updated models.Role
	decodeBody(t, w, &updated)
	if updated.Name != "editor" || updated.Description != description {
		t.Fatalf("unexpected role: %#v", updated)
	}

	w = doJSON(t, srv, http.MethodPatch, "/v1/roles/ro-zzzzzz", api.RoleUpdateRequest{Description: &description})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	w = doJSON(t, srv, http.MethodGet, "/v1/roles", nil)
	var roles []models.Role
	decodeBody(t, w, &roles)
	if len(roles) != 1 {
		t.Fatalf("expected 1 role, got %d", len(roles))
	}
}
