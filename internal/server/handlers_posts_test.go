package server

import (
	"net/http"
	"strings"
	"testing"

	"pkghub/internal/api"
	"pkghub/internal/models"
)

func TestPostCRUDHandlers(t *testing.T) {
	srv := newTestServer(t)
	author := seedUser(t, srv, "author@example.com")
	other := seedUser(t, srv, "other@example.com")

	w := doJSON(t, srv, http.MethodPost, "/v1/posts", api.PostCreateRequest{Title: " First ", Content: "hello", UserID: author.ID})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	var post models.Post
	decodeBody(t, w, &post)
	if post.Title != "First" || post.UserID != author.ID {
		t.Fatalf("unexpected post: %#v", post)
	}

	if w := doJSON(t, srv, http.MethodPost, "/v1/posts", api.PostCreateRequest{Title: "Second", UserID: other.ID}); w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", w.Code, w.Body.String())
	}

	w = doJSON(t, srv, http.MethodGet, "/v1/posts?user_id="+author.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	var posts []models.Post
	decodeBody(t, w, &posts)
	if len(posts) != 1 || posts[0].ID != post.ID {
		t.Fatalf("expected only the author's post, got %#v", posts)
	}

	content := "updated body"
	w = doJSON(t, srv, http.MethodPatch, "/v1/posts/"+post.ID, api.PostUpdateRequest{Content: &content})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	var updated models.Post
	decodeBody(t, w, &updated)
	if updated.Content != content || updated.Title != "First" {
		t.Fatalf("unexpected updated post: %#v", updated)
	}

	w = doJSON(t, srv, http.MethodDelete, "/v1/posts/"+post.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	w = doJSON(t, srv, http.MethodGet, "/v1/posts/"+post.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", w.Code)
	}
	if errResp := decodeError(t, w); errResp.ErrorCode != ErrCodePostNotFound {
		t.Fatalf("expected error_code %d, got %d", ErrCodePostNotFound, errResp.ErrorCode)
	}
}

func TestCreatePostValidation(t *testing.T) {
	srv := newTestServer(t)
	author := seedUser(t, srv, "limits@example.com")

	w := doJSON(t, srv, http.MethodPost, "/v1/posts", api.PostCreateRequest{
		Title:   "long",
		Content: strings.Repeat("x", models.MaxPostContentLength+1),
		UserID:  author.ID,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%s)", w.Code, w.Body.String())
	}
	if errResp := decodeError(t, w); errResp.ErrorCode != ErrCodeFieldTooLong {
		t.Fatalf("expected error_code %d, got %d", ErrCodeFieldTooLong, errResp.ErrorCode)
	}

	w = doJSON(t, srv, http.MethodPost, "/v1/posts", api.PostCreateRequest{Title: "orphan", UserID: "us-zzzzzz"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d (%s)", w.Code, w.Body.String())
	}

	w = doJSON(t, srv, http.MethodGet, "/v1/posts?user_id=bogus", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if errResp := decodeError(t, w); errResp.ErrorCode != ErrCodeInvalidQuery {
		t.Fatalf("expected error_code %d, got %d", ErrCodeInvalidQuery, errResp.ErrorCode)
	}
}

func TestProfileHandlers(t *testing.T) {
	srv := newTestServer(t)
	user := seedUser(t, srv, "pf@example.com")

	w := doJSON(t, srv, http.MethodPost, "/v1/profiles", api.ProfileCreateRequest{Bio: "hi", Address: "London", UserID: user.ID})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	var profile models.Profile
	decodeBody(t, w, &profile)
	if !profile.IsActive {
		t.Fatal("expected active profile")
	}

	inactive := false
	w = doJSON(t, srv, http.MethodPatch, "/v1/profiles/"+profile.ID, api.ProfileUpdateRequest{IsActive: &inactive})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	var updated models.Profile
	decodeBody(t, w, &updated)
	if updated.IsActive || updated.Address != "London" {
		t.Fatalf("unexpected profile: %#v", updated)
	}

	w = doJSON(t, srv, http.MethodGet, "/v1/profiles/pf-zzzzzz", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if errResp := decodeError(t, w); errResp.ErrorCode != ErrCodeProfileNotFound {
		t.Fatalf("expected error_code %d, got %d", ErrCodeProfileNotFound, errResp.ErrorCode)
	}
}

func TestDeleteUserDeactivatesProfile(t *testing.T) {
	srv := newTestServer(t)
	user := seedUser(t, srv, "cascade@example.com")

	w := doJSON(t, srv, http.MethodPost, "/v1/profiles", api.ProfileCreateRequest{Bio: "bio", UserID: user.ID})
	var profile models.Profile
	decodeBody(t, w, &profile)

	if w := doJSON(t, srv, http.MethodDelete, "/v1/users/"+user.ID, nil); w.Code != http.StatusOK {
		t.Fatalf("delete user: expected 200, got %d", w.Code)
	}

	w = doJSON(t, srv, http.MethodGet, "/v1/profiles/"+profile.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	var after models.Profile
	decodeBody(t, w, &after)
	if after.IsActive {
		t.Fatal("expected profile to be deactivated with its user")
	}

	w = doJSON(t, srv, http.MethodPost, "/v1/profiles", api.ProfileCreateRequest{UserID: user.ID})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for inactive user, got %d (%s)", w.Code, w.Body.String())
	}
}
