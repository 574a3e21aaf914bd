package main

import (
	"github.com/spf13/cobra"

	"pkghub/internal/api"
	"pkghub/internal/config"
)

func newRoleCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "role",
		Short: "Manage roles and role assignments",
	}
	cmd.AddCommand(
		newRoleCreateCmd(cfg, jsonOutput),
		newRoleListCmd(cfg, jsonOutput),
		newRoleAssignCmd(cfg, jsonOutput),
	)
	return cmd
}

func newRoleCreateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a role",
		Args:  requireExactlyArgs(1, "name is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				role, err := client.CreateRole(cmd.Context(), api.RoleCreateRequest{Name: args[0], Description: description})
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(role)
				}
				return writePlain("%s\n", formatRoleLine(role))
			})
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "role description")
	return cmd
}

func newRoleListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active roles",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				roles, err := client.ListRoles(cmd.Context())
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(roles)
				}
				for _, role := range roles {
					if err := writePlain("%s\n", formatRoleLine(role)); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newRoleAssignCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "assign <role-id> <user-id>",
		Short: "Assign a role to a user",
		Args:  requireExactlyArgs(2, "role id and user id are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				assignment, err := client.AssignRole(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(assignment)
				}
				return writePlain("assigned %s to %s (%s)\n", assignment.RoleID, assignment.UserID, assignment.ID)
			})
		},
	}
}
