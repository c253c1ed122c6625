package cmds

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTokenCommand(r *runner) *cobra.Command {
	var show bool
	var set string
	var clearToken bool

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Inspect or edit the stored session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := r.open(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			switch {
			case clearToken:
				if err := app.Session.ClearToken(ctx); err != nil {
					return err
				}
			case set != "":
				if err := app.Session.SetToken(ctx, set); err != nil {
					return err
				}
			}

			tok, ok := app.Session.Token(ctx)
			if !ok {
				_, err = fmt.Fprintln(out, "not logged in")
				return err
			}
			if show {
				_, err = fmt.Fprintln(out, tok)
				return err
			}
			_, err = fmt.Fprintf(out, "logged in (%s backend, key %s)\n", app.Settings.SessionBackend, app.Settings.SessionKey)
			return err
		},
	}
	cmd.Flags().BoolVar(&show, "show", false, "print the raw token")
	cmd.Flags().StringVar(&set, "set", "", "store this token verbatim")
	cmd.Flags().BoolVar(&clearToken, "clear", false, "forget the token without contacting the server")
	return cmd
}
