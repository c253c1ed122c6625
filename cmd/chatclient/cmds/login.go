package cmds

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/go-go-golems/chatclient/pkg/auth"
	"github.com/go-go-golems/chatclient/pkg/nav"
)

func newLoginCommand(r *runner) *cobra.Command {
	var password string
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "login [username]",
		Short: "Log in and store the session token",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			out := cmd.ErrOrStderr()

			username := ""
			if len(args) == 1 {
				username = args[0]
			} else {
				u, err := prompt(in, out, "username: ")
				if err != nil {
					return err
				}
				username = u
			}

			switch {
			case password != "":
			case passwordStdin:
				p, err := readLine(in)
				if err != nil {
					return errors.Wrap(err, "read password from stdin")
				}
				password = p
			default:
				p, err := promptPassword(cmd.InOrStdin(), in, out)
				if err != nil {
					return err
				}
				password = p
			}

			app, err := r.open(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			ctx := cmd.Context()
			if _, err := auth.Login(ctx, app.Client, app.Session, username, password); err != nil {
				return err
			}
			if err := app.Policy.Navigate(ctx, nav.ChatPath); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s\n", strings.TrimSpace(username))
			return err
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password (prompted without echo when omitted)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from the first line of stdin")
	return cmd
}

func prompt(in *bufio.Reader, out io.Writer, label string) (string, error) {
	_, _ = fmt.Fprint(out, label)
	line, err := readLine(in)
	if err != nil {
		return "", errors.Wrap(err, "read input")
	}
	return line, nil
}

// promptPassword reads without echo when stdin is a terminal and falls back to
// a plain line otherwise.
func promptPassword(raw io.Reader, in *bufio.Reader, out io.Writer) (string, error) {
	f, ok := raw.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return prompt(in, out, "password: ")
	}
	_, _ = fmt.Fprint(out, "password: ")
	b, err := term.ReadPassword(int(f.Fd()))
	_, _ = fmt.Fprintln(out)
	if err != nil {
		return "", errors.Wrap(err, "read password")
	}
	return string(b), nil
}

func readLine(in *bufio.Reader) (string, error) {
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
