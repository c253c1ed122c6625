package cmds

import (
	"fmt"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/go-go-golems/chatclient/pkg/nav"
)

func newRouteCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "route [PATH]",
		Short: "Resolve a path against the route table, or list the table",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			routes, err := loadRoutes(r.settings.RoutesFile)
			if err != nil {
				return err
			}
			policy, err := nav.New(routes, nil)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			defer func() { _ = tw.Flush() }()

			if len(args) == 0 {
				_, _ = fmt.Fprintln(tw, "PATH\tNAME\tCOMPONENT\tCHROME\tENTRY")
				for _, rt := range policy.Routes() {
					_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%t\n", rt.Path, rt.Name, rt.Component, rt.ShowChrome, rt.Path == policy.EntryPath())
				}
				return nil
			}

			rt, ok := policy.RouteFor(args[0])
			if !ok {
				return errors.Wrapf(nav.ErrUnknownRoute, "%s", args[0])
			}
			_, err = fmt.Fprintf(tw, "component\t%s\nshow_chrome\t%t\n", rt.Component, rt.ShowChrome)
			return err
		},
	}
}
