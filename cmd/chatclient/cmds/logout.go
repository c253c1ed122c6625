package cmds

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-go-golems/chatclient/pkg/auth"
)

func newLogoutCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := r.open(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			if err := auth.Logout(cmd.Context(), app.Client, app.Session); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return err
		},
	}
}
