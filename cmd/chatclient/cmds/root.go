package cmds

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type runner struct {
	settings Settings
}

func (r *runner) open(cmd *cobra.Command) (*App, error) {
	return NewApp(r.settings, cmd.ErrOrStderr())
}

func NewRootCommand() *cobra.Command {
	v := viper.New()
	r := &runner{}

	root := &cobra.Command{
		Use:   "chatclient",
		Short: "chatclient talks to a chat API with a persistent session",
		Long: `chatclient is the client-side network and session layer of the chat
application, usable from the terminal.

Every call goes to <base-url><base-path>/<path> with the stored token attached.
A 401 clears the token and sends you back to the login route.

Configuration is read from flags, CHATCLIENT_* environment variables and
$HOME/.config/chatclient/config.yaml.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initViper(v, cmd.Root()); err != nil {
				return err
			}
			s, err := loadSettings(v)
			if err != nil {
				return err
			}
			r.settings = s
			return initLogger(s.LogLevel, s.LogFormat, cmd.ErrOrStderr())
		},
	}
	addPersistentFlags(root)

	root.AddCommand(
		newLoginCommand(r),
		newLogoutCommand(r),
		newTokenCommand(r),
		newCallCommand(r),
		newRenderCommand(),
		newRouteCommand(r),
		newWatchCommand(r),
	)
	return root
}
