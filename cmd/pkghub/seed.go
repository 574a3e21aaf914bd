package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"pkghub/internal/api"
	"pkghub/internal/config"
	"pkghub/internal/models"
)

// seedManifest describes fixture data loaded by `pkghub seed`. Users are
// referenced by email and roles by name; artifact paths are relative to the
// manifest file.
type seedManifest struct {
	Roles    []seedRole    `yaml:"roles"`
	Users    []seedUser    `yaml:"users"`
	Packages []seedPackage `yaml:"packages"`
}

type seedRole struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type seedUser struct {
	Firstname string   `yaml:"firstname"`
	Lastname  string   `yaml:"lastname"`
	Email     string   `yaml:"email"`
	Password  string   `yaml:"password"`
	Bio       string   `yaml:"bio"`
	Address   string   `yaml:"address"`
	Roles     []string `yaml:"roles"`
}

type seedPackage struct {
	Name      string         `yaml:"name"`
	Owner     string         `yaml:"owner"`
	Artifacts []seedArtifact `yaml:"artifacts"`
}

type seedArtifact struct {
	Path string `yaml:"path"`
	Name string `yaml:"name"`
}

// seedResult counts the records created by a seed run.
type seedResult struct {
	Roles     int `json:"roles"`
	Users     int `json:"users"`
	Profiles  int `json:"profiles"`
	Packages  int `json:"packages"`
	Artifacts int `json:"artifacts"`
}

func newSeedCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <manifest.yaml>",
		Short: "Create roles, users, packages and artifacts from a YAML manifest",
		Args:  requireExactlyArgs(1, "manifest path is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			manifest, err := parseSeedManifest(f)
			_ = f.Close()
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			baseDir := filepath.Dir(args[0])
			return withClient(cfg, func(client *api.Client) error {
				result, err := applySeed(cmd.Context(), client, manifest, baseDir)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(result)
				}
				return writePlain("seeded %d roles, %d users, %d profiles, %d packages, %d artifacts\n",
					result.Roles, result.Users, result.Profiles, result.Packages, result.Artifacts)
			})
		},
	}
}

func parseSeedManifest(r io.Reader) (seedManifest, error) {
	var manifest seedManifest
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&manifest); err != nil && err != io.EOF {
		return seedManifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	if err := manifest.validate(); err != nil {
		return seedManifest{}, err
	}
	return manifest, nil
}

func (m seedManifest) validate() error {
	roles := make(map[string]bool, len(m.Roles))
	for i, role := range m.Roles {
		name := strings.TrimSpace(role.Name)
		if name == "" {
			return fmt.Errorf("roles[%d]: name is required", i)
		}
		if roles[name] {
			return fmt.Errorf("roles[%d]: duplicate role %q", i, name)
		}
		roles[name] = true
	}

	users := make(map[string]bool, len(m.Users))
	for i, user := range m.Users {
		email, err := models.NormalizeEmail(user.Email)
		if err != nil {
			return fmt.Errorf("users[%d]: %w", i, err)
		}
		if users[email] {
			return fmt.Errorf("users[%d]: duplicate email %q", i, email)
		}
		users[email] = true
		for _, role := range user.Roles {
			if !roles[strings.TrimSpace(role)] {
				return fmt.Errorf("users[%d]: unknown role %q", i, role)
			}
		}
	}

	for i, pkg := range m.Packages {
		if strings.TrimSpace(pkg.Name) == "" {
			return fmt.Errorf("packages[%d]: name is required", i)
		}
		owner, err := models.NormalizeEmail(pkg.Owner)
		if err != nil || !users[owner] {
			return fmt.Errorf("packages[%d]: owner %q is not a seeded user", i, pkg.Owner)
		}
		for j, a := range pkg.Artifacts {
			if strings.TrimSpace(a.Path) == "" {
				return fmt.Errorf("packages[%d].artifacts[%d]: path is required", i, j)
			}
		}
	}
	return nil
}

// applySeed creates manifest records in dependency order. It stops at the
// first failure; records created before it are kept.
func applySeed(ctx context.Context, client *api.Client, m seedManifest, baseDir string) (seedResult, error) {
	var result seedResult

	roleIDs := make(map[string]string, len(m.Roles))
	for _, role := range m.Roles {
		created, err := client.CreateRole(ctx, api.RoleCreateRequest{Name: role.Name, Description: role.Description})
		if err != nil {
			return result, fmt.Errorf("create role %q: %w", role.Name, err)
		}
		roleIDs[strings.TrimSpace(role.Name)] = created.ID
		result.Roles++
	}

	userIDs := make(map[string]string, len(m.Users))
	for _, user := range m.Users {
		created, err := client.CreateUser(ctx, api.UserCreateRequest{
			Firstname: user.Firstname,
			Lastname:  user.Lastname,
			Email:     user.Email,
			Password:  user.Password,
		})
		if err != nil {
			return result, fmt.Errorf("create user %q: %w", user.Email, err)
		}
		userIDs[created.Email] = created.ID
		result.Users++

		for _, role := range user.Roles {
			if _, err := client.AssignRole(ctx, roleIDs[strings.TrimSpace(role)], created.ID); err != nil {
				return result, fmt.Errorf("assign role %q to %q: %w", role, user.Email, err)
			}
		}
		if user.Bio != "" || user.Address != "" {
			if _, err := client.CreateProfile(ctx, api.ProfileCreateRequest{Bio: user.Bio, Address: user.Address, UserID: created.ID}); err != nil {
				return result, fmt.Errorf("create profile for %q: %w", user.Email, err)
			}
			result.Profiles++
		}
	}

	for _, pkg := range m.Packages {
		owner, _ := models.NormalizeEmail(pkg.Owner)
		ownerID := userIDs[owner]
		created, err := client.CreatePackage(ctx, api.PackageCreateRequest{Name: pkg.Name, CreatedBy: ownerID})
		if err != nil {
			return result, fmt.Errorf("create package %q: %w", pkg.Name, err)
		}
		result.Packages++

		for _, a := range pkg.Artifacts {
			if err := uploadSeedArtifact(ctx, client, created.ID, ownerID, a, baseDir); err != nil {
				return result, fmt.Errorf("package %q: %w", pkg.Name, err)
			}
			result.Artifacts++
		}
	}
	return result, nil
}

func uploadSeedArtifact(ctx context.Context, client *api.Client, packageID, ownerID string, a seedArtifact, baseDir string) error {
	path := a.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = client.UploadArtifact(ctx, packageID, api.ArtifactUploadRequest{
		Name:      a.Name,
		Filename:  filepath.Base(path),
		CreatedBy: ownerID,
	}, f)
	if err != nil {
		return fmt.Errorf("upload %s: %w", a.Path, err)
	}
	return nil
}
