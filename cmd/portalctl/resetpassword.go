package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/dalemusser/ccbportal/internal/app/system/authutil"
	"github.com/spf13/cobra"
)

func newResetPasswordCmd(cli *commandLine) *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "resetpassword",
		Short: "Set a new password for a staff user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(username) == "" {
				_ = cmd.Usage()
				return errHelp
			}
			pwd, err := promptPassword(cmd.OutOrStdout(), false)
			if err != nil {
				return err
			}
			if err := cli.resetPassword(cmd.Context(), username, pwd); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Password updated for %q\n", strings.TrimSpace(username))
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "login name (required)")
	return cmd
}

func (cli *commandLine) resetPassword(ctx context.Context, username, pwd string) error {
	if err := authutil.ValidatePassword(pwd); err != nil {
		return fmt.Errorf("%w. %s", err, authutil.PasswordRules())
	}
	hash, err := authutil.HashPassword(pwd)
	if err != nil {
		return err
	}
	return cli.users.SetPassword(ctx, username, hash)
}
