package store

import (
	"context"
	"time"

	"pkghub/internal/models"
)

// ArtifactStore abstracts package and artifact storage.
type ArtifactStore interface {
	PackageExists(ctx context.Context, id string) (bool, error)
	CreateArtifact(ctx context.Context, artifact *models.Artifact) error
	GetArtifactSummary(ctx context.Context, id string) (*models.ArtifactSummary, error)
	GetArtifact(ctx context.Context, id string) (*models.Artifact, error)
	ListArtifactSummaries(ctx context.Context, packageID string) ([]models.ArtifactSummary, error)
	ListArtifacts(ctx context.Context, packageID string) ([]models.Artifact, error)
}

// PackageStore abstracts package metadata storage.
type PackageStore interface {
	CreatePackage(ctx context.Context, pkg *models.Package) error
	GetPackage(ctx context.Context, id string) (*models.Package, error)
	ListPackages(ctx context.Context, createdBy string) ([]models.Package, error)
}

// UserStore abstracts user, role and assignment storage.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UserExists(ctx context.Context, id string) (bool, error)
	ListUsers(ctx context.Context, includeInactive bool) ([]models.User, error)
	UpdateUser(ctx context.Context, id string, update UserUpdate) (bool, error)
	DeactivateUser(ctx context.Context, id string, at time.Time) (bool, error)
	SetUserAvatar(ctx context.Context, avatar models.Avatar, at time.Time) (bool, error)
	GetUserAvatar(ctx context.Context, userID string) (*models.Avatar, error)

	CreateRole(ctx context.Context, role *models.Role) error
	GetRole(ctx context.Context, id string) (*models.Role, error)
	ListRoles(ctx context.Context, includeInactive bool) ([]models.Role, error)
	UpdateRole(ctx context.Context, id string, update RoleUpdate) (bool, error)
	DeactivateRole(ctx context.Context, id string, at time.Time) (bool, error)
	AssignRole(ctx context.Context, userID, roleID string, at time.Time) (*models.UserRole, error)
	ListUserRoles(ctx context.Context, userID string) ([]models.Role, error)
}

// ContentStore abstracts post and profile storage.
type ContentStore interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, id string) (*models.Post, error)
	ListPosts(ctx context.Context, userID string) ([]models.Post, error)
	UpdatePost(ctx context.Context, id string, update PostUpdate) (bool, error)
	DeletePost(ctx context.Context, id string) (bool, error)
	CreateProfile(ctx context.Context, profile *models.Profile) error
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	GetProfileByUser(ctx context.Context, userID string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (bool, error)
}

var (
	_ ArtifactStore = (*Store)(nil)
	_ PackageStore  = (*Store)(nil)
	_ UserStore     = (*Store)(nil)
	_ ContentStore  = (*Store)(nil)
)
