package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/dalemusser/ccbportal/internal/app/system/authutil"
	"github.com/dalemusser/ccbportal/internal/app/system/inputval"
	"github.com/dalemusser/ccbportal/internal/domain/models"
	"github.com/spf13/cobra"
)

type addUserOpts struct {
	username  string
	email     string
	firstName string
	lastName  string
	superuser bool
}

func newAddUserCmd(cli *commandLine) *cobra.Command {
	var o addUserOpts
	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Create a staff user, or update an existing one",
		Long: `Create a staff user who can sign in to the admin console. If the
username already exists its profile, flags and password are updated.
The password is prompted for and not echoed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(o.username) == "" {
				_ = cmd.Usage()
				return errHelp
			}
			pwd, err := promptPassword(cmd.OutOrStdout(), true)
			if err != nil {
				return err
			}
			created, err := cli.addUser(cmd.Context(), o, pwd)
			if err != nil {
				return err
			}
			verb := "Updated"
			if created {
				verb = "Created"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s staff user %q\n", verb, strings.TrimSpace(o.username))
			return nil
		},
	}
	cmd.Flags().StringVar(&o.username, "username", "", "login name (required)")
	cmd.Flags().StringVar(&o.email, "email", "", "email address")
	cmd.Flags().StringVar(&o.firstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&o.lastName, "last-name", "", "last name")
	cmd.Flags().BoolVar(&o.superuser, "superuser", false, "grant superuser")
	return cmd
}

// addUser creates or updates an active staff user and reports whether it
// was created.
func (cli *commandLine) addUser(ctx context.Context, o addUserOpts, pwd string) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(o.email))
	if email != "" && !inputval.IsValidEmail(email) {
		return false, fmt.Errorf("invalid email address %q", o.email)
	}
	if err := authutil.ValidatePassword(pwd); err != nil {
		return false, fmt.Errorf("%w. %s", err, authutil.PasswordRules())
	}
	hash, err := authutil.HashPassword(pwd)
	if err != nil {
		return false, err
	}
	_, created, err := cli.users.Upsert(ctx, models.AdminUser{
		Username:     strings.TrimSpace(o.username),
		Email:        email,
		FirstName:    strings.TrimSpace(o.firstName),
		LastName:     strings.TrimSpace(o.lastName),
		PasswordHash: hash,
		IsActive:     true,
		IsStaff:      true,
		IsSuperuser:  o.superuser,
	})
	return created, err
}
