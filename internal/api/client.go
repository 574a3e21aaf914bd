package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"pkghub/internal/models"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	httpTimeoutEnvKey  = "PKGHUB_HTTP_TIMEOUT"
)

// Client is a simple HTTP client for the pkghub API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a new API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: httpTimeoutFromEnv()},
	}
}

// Ping checks whether the API server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil)
}

func (c *Client) GetInfo(ctx context.Context) (InfoResponse, error) {
	var resp InfoResponse
	err := c.do(ctx, http.MethodGet, "/v1/info", nil, nil, &resp)
	return resp, err
}

func (c *Client) CreateUser(ctx context.Context, req UserCreateRequest) (models.User, error) {
	var resp models.User
	err := c.do(ctx, http.MethodPost, "/v1/users", nil, req, &resp)
	return resp, err
}

func (c *Client) ListUsers(ctx context.Context, includeInactive bool) ([]models.User, error) {
	var resp []models.User
	query := url.Values{}
	if includeInactive {
		query.Set("all", "true")
	}
	err := c.do(ctx, http.MethodGet, "/v1/users", query, nil, &resp)
	return resp, err
}

func (c *Client) GetUser(ctx context.Context, id string) (models.User, error) {
	var resp models.User
	err := c.do(ctx, http.MethodGet, "/v1/users/"+url.PathEscape(id), nil, nil, &resp)
	return resp, err
}

func (c *Client) UpdateUser(ctx context.Context, id string, req UserUpdateRequest) (models.User, error) {
	var resp models.User
	err := c.do(ctx, http.MethodPatch, "/v1/users/"+url.PathEscape(id), nil, req, &resp)
	return resp, err
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/users/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) ListUserRoles(ctx context.Context, id string) ([]models.Role, error) {
	var resp []models.Role
	err := c.do(ctx, http.MethodGet, "/v1/users/"+url.PathEscape(id)+"/roles", nil, nil, &resp)
	return resp, err
}

func (c *Client) GetUserProfile(ctx context.Context, id string) (models.Profile, error) {
	var resp models.Profile
	err := c.do(ctx, http.MethodGet, "/v1/users/"+url.PathEscape(id)+"/profile", nil, nil, &resp)
	return resp, err
}

// UploadAvatar replaces the avatar of a user.
func (c *Client) UploadAvatar(ctx context.Context, id, filename string, content io.Reader) (models.User, error) {
	var resp models.User
	err := c.upload(ctx, http.MethodPut, "/v1/users/"+url.PathEscape(id)+"/avatar", nil, filename, content, &resp)
	return resp, err
}

// DownloadAvatar copies the avatar of a user to w and returns its media type.
func (c *Client) DownloadAvatar(ctx context.Context, id string, w io.Writer) (string, error) {
	header, _, err := c.download(ctx, "/v1/users/"+url.PathEscape(id)+"/avatar", w)
	if err != nil {
		return "", err
	}
	return header.Get("Content-Type"), nil
}

func (c *Client) CreateRole(ctx context.Context, req RoleCreateRequest) (models.Role, error) {
	var resp models.Role
	err := c.do(ctx, http.MethodPost, "/v1/roles", nil, req, &resp)
	return resp, err
}

func (c *Client) ListRoles(ctx context.Context) ([]models.Role, error) {
	var resp []models.Role
	err := c.do(ctx, http.MethodGet, "/v1/roles", nil, nil, &resp)
	return resp, err
}

func (c *Client) GetRole(ctx context.Context, id string) (models.Role, error) {
	var resp models.Role
	err := c.do(ctx, http.MethodGet, "/v1/roles/"+url.PathEscape(id), nil, nil, &resp)
	return resp, err
}

func (c *Client) UpdateRole(ctx context.Context, id string, req RoleUpdateRequest) (models.Role, error) {
	var resp models.Role
	err := c.do(ctx, http.MethodPatch, "/v1/roles/"+url.PathEscape(id), nil, req, &resp)
	return resp, err
}

func (c *Client) DeleteRole(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/roles/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) AssignRole(ctx context.Context, roleID, userID string) (models.UserRole, error) {
	var resp models.UserRole
	err := c.do(ctx, http.MethodPost, "/v1/roles/"+url.PathEscape(roleID)+"/assign", nil, RoleAssignRequest{UserID: userID}, &resp)
	return resp, err
}

func (c *Client) CreatePost(ctx context.Context, req PostCreateRequest) (models.Post, error) {
	var resp models.Post
	err := c.do(ctx, http.MethodPost, "/v1/posts", nil, req, &resp)
	return resp, err
}

func (c *Client) ListPosts(ctx context.Context, userID string) ([]models.Post, error) {
	var resp []models.Post
	query := url.Values{}
	if userID != "" {
		query.Set("user_id", userID)
	}
	err := c.do(ctx, http.MethodGet, "/v1/posts", query, nil, &resp)
	return resp, err
}

func (c *Client) GetPost(ctx context.Context, id string) (models.Post, error) {
	var resp models.Post
	err := c.do(ctx, http.MethodGet, "/v1/posts/"+url.PathEscape(id), nil, nil, &resp)
	return resp, err
}

func (c *Client) UpdatePost(ctx context.Context, id string, req PostUpdateRequest) (models.Post, error) {
	var resp models.Post
	err := c.do(ctx, http.MethodPatch, "/v1/posts/"+url.PathEscape(id), nil, req, &resp)
	return resp, err
}

func (c *Client) DeletePost(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/posts/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) CreateProfile(ctx context.Context, req ProfileCreateRequest) (models.Profile, error) {
	var resp models.Profile
	err := c.do(ctx, http.MethodPost, "/v1/profiles", nil, req, &resp)
	return resp, err
}

func (c *Client) GetProfile(ctx context.Context, id string) (models.Profile, error) {
	var resp models.Profile
	err := c.do(ctx, http.MethodGet, "/v1/profiles/"+url.PathEscape(id), nil, nil, &resp)
	return resp, err
}

func (c *Client) UpdateProfile(ctx context.Context, id string, req ProfileUpdateRequest) (models.Profile, error) {
	var resp models.Profile
	err := c.do(ctx, http.MethodPatch, "/v1/profiles/"+url.PathEscape(id), nil, req, &resp)
	return resp, err
}

func (c *Client) CreatePackage(ctx context.Context, req PackageCreateRequest) (models.Package, error) {
	var resp models.Package
	err := c.do(ctx, http.MethodPost, "/v1/packages", nil, req, &resp)
	return resp, err
}

func (c *Client) ListPackages(ctx context.Context, createdBy string) ([]models.Package, error) {
	var resp []models.Package
	query := url.Values{}
	if createdBy != "" {
		query.Set("created_by", createdBy)
	}
	err := c.do(ctx, http.MethodGet, "/v1/packages", query, nil, &resp)
	return resp, err
}

func (c *Client) GetPackage(ctx context.Context, id string) (PackageResponse, error) {
	var resp PackageResponse
	err := c.do(ctx, http.MethodGet, "/v1/packages/"+url.PathEscape(id), nil, nil, &resp)
	return resp, err
}

func (c *Client) ListArtifacts(ctx context.Context, packageID string) ([]models.ArtifactSummary, error) {
	var resp []models.ArtifactSummary
	err := c.do(ctx, http.MethodGet, "/v1/packages/"+url.PathEscape(packageID)+"/artifacts", nil, nil, &resp)
	return resp, err
}

// UploadArtifact streams content as a new artifact of packageID.
func (c *Client) UploadArtifact(ctx context.Context, packageID string, req ArtifactUploadRequest, content io.Reader) (models.ArtifactSummary, error) {
	var resp models.ArtifactSummary
	fields := url.Values{}
	if req.Name != "" {
		fields.Set("name", req.Name)
	}
	fields.Set("created_by", req.CreatedBy)
	err := c.upload(ctx, http.MethodPost, "/v1/packages/"+url.PathEscape(packageID)+"/artifacts", fields, req.Filename, content, &resp)
	return resp, err
}

// DownloadArtifact copies the payload of one artifact to w.
func (c *Client) DownloadArtifact(ctx context.Context, packageID, artifactID string, w io.Writer) (int64, error) {
	_, n, err := c.download(ctx, "/v1/packages/"+url.PathEscape(packageID)+"/artifacts/"+url.PathEscape(artifactID), w)
	return n, err
}

// DownloadArchive copies the zip archive of a package to w.
func (c *Client) DownloadArchive(ctx context.Context, packageID string, w io.Writer) (int64, error) {
	_, n, err := c.download(ctx, "/v1/packages/"+url.PathEscape(packageID)+"/archive", w)
	return n, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// upload sends fields and content as a multipart form. The body is streamed
// through a pipe so large files are never buffered whole.
func (c *Client) upload(ctx context.Context, method, path string, fields url.Values, filename string, content io.Reader, out any) error {
	if filename == "" {
		filename = "upload.bin"
	}
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		for key, values := range fields {
			for _, value := range values {
				if err := mw.WriteField(key, value); err != nil {
					pw.CloseWithError(err)
					return
				}
			}
		}
		part, err := mw.CreateFormFile("content", filename)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, content); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, pr)
	if err != nil {
		pr.Close()
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) download(ctx context.Context, path string, w io.Writer) (http.Header, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, 0, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, 0, decodeError(resp)
	}
	n, err := io.Copy(w, resp.Body)
	return resp.Header, n, err
}

func httpTimeoutFromEnv() time.Duration {
	value := strings.TrimSpace(os.Getenv(httpTimeoutEnvKey))
	if value == "" {
		return defaultHTTPTimeout
	}

	if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
		return duration
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	return defaultHTTPTimeout
}
