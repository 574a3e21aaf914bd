package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"pkghub/internal/api"
	"pkghub/internal/config"
)

func newUserCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(
		newUserCreateCmd(cfg, jsonOutput),
		newUserListCmd(cfg, jsonOutput),
		newUserShowCmd(cfg, jsonOutput),
		newUserDeleteCmd(cfg, jsonOutput),
		newUserAvatarCmd(cfg, jsonOutput),
	)
	return cmd
}

func newUserCreateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var req api.UserCreateRequest
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if passwordStdin {
				password, err := readPasswordLine(cmd)
				if err != nil {
					return err
				}
				req.Password = password
			}
			return withClient(cfg, func(client *api.Client) error {
				user, err := client.CreateUser(cmd.Context(), req)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(user)
				}
				return writePlain("%s\n", formatUserLine(user))
			})
		},
	}

	cmd.Flags().StringVar(&req.Firstname, "firstname", "", "first name")
	cmd.Flags().StringVar(&req.Lastname, "lastname", "", "last name")
	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().StringVar(&req.Password, "password", "", "password (prefer --password-stdin)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	_ = cmd.MarkFlagRequired("firstname")
	_ = cmd.MarkFlagRequired("lastname")
	_ = cmd.MarkFlagRequired("email")
	cmd.MarkFlagsMutuallyExclusive("password", "password-stdin")
	return cmd
}

func readPasswordLine(cmd *cobra.Command) (string, error) {
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newUserListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				users, err := client.ListUsers(cmd.Context(), all)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(users)
				}
				for _, user := range users {
					if err := writePlain("%s\n", formatUserLine(user)); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include inactive users")
	return cmd
}

func newUserShowCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a user with roles and profile",
		Args:  requireID,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				ctx := cmd.Context()
				user, err := client.GetUser(ctx, args[0])
				if err != nil {
					return err
				}
				roles, err := client.ListUserRoles(ctx, user.ID)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(map[string]any{"user": user, "roles": roles})
				}

				if err := writeUserDetail(user); err != nil {
					return err
				}
				for _, role := range roles {
					_ = writePlain("role: %s\n", formatRoleLine(role))
				}
				profile, err := client.GetUserProfile(ctx, user.ID)
				switch {
				case err == nil:
					_ = writePlain("bio: %s\n", profile.Bio)
					_ = writePlain("address: %s\n", profile.Address)
				case !api.IsNotFound(err):
					return err
				}
				return nil
			})
		},
	}
}

func newUserDeleteCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Deactivate a user with its profiles and role assignments",
		Args:  requireID,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				if err := client.DeleteUser(cmd.Context(), args[0]); err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(api.DeleteResponse{ID: args[0]})
				}
				return writePlain("deactivated %s\n", args[0])
			})
		},
	}
}

func newUserAvatarCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "avatar <id> [file]",
		Short: "Upload an avatar from file, or download it with --output",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if len(args) == 1 && output == "" {
				return fmt.Errorf("either a file to upload or --output is required")
			}
			return withClient(cfg, func(client *api.Client) error {
				if len(args) == 2 {
					f, err := os.Open(args[1])
					if err != nil {
						return err
					}
					defer f.Close()
					user, err := client.UploadAvatar(cmd.Context(), id, filepath.Base(args[1]), f)
					if err != nil {
						return err
					}
					if *jsonOutput {
						return writeJSON(user)
					}
					return writePlain("avatar set for %s (%s)\n", user.ID, user.AvatarMediaType)
				}

				var mediaType string
				written, err := downloadToFile(output, func(w io.Writer) error {
					var err error
					mediaType, err = client.DownloadAvatar(cmd.Context(), id, w)
					return err
				})
				if err != nil {
					return err
				}
				return writePlain("wrote %s to %s (%s)\n", humanize.Bytes(uint64(written)), output, mediaType)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "download the avatar to this file")
	return cmd
}

// downloadToFile runs fetch against a new file at path and removes the file
// when fetch fails. The returned size is taken from the file.
func downloadToFile(path string, fetch func(io.Writer) error) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	if err := fetch(f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return 0, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return 0, err
	}
	return info.Size(), f.Close()
}
