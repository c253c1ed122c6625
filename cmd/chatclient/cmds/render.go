package cmds

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/go-go-golems/chatclient/pkg/markdown"
)

func newRenderCommand() *cobra.Command {
	var ansi bool
	var style string
	var css string

	cmd := &cobra.Command{
		Use:   "render [FILE|-]",
		Short: "Render markdown the way chat messages are rendered",
		Long: `Render markdown to sanitized HTML with highlighted code blocks.

--ansi previews the text in the terminal instead. --css prints the stylesheet
for the highlight classes of a chroma style and exits.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if css != "" {
				return markdown.WriteStylesheet(out, css)
			}

			var src io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return errors.Wrap(err, "open input")
				}
				defer func() { _ = f.Close() }()
				src = f
			}
			b, err := io.ReadAll(src)
			if err != nil {
				return errors.Wrap(err, "read input")
			}

			if ansi {
				styled, err := glamour.Render(string(b), style)
				if err != nil {
					return errors.Wrap(err, "render markdown")
				}
				_, err = fmt.Fprint(out, styled)
				return err
			}
			_, err = fmt.Fprintln(out, markdown.Render(string(b)))
			return err
		},
	}
	cmd.Flags().BoolVar(&ansi, "ansi", false, "render for the terminal instead of HTML")
	cmd.Flags().StringVar(&style, "style", "dark", "glamour style for --ansi")
	cmd.Flags().StringVar(&css, "css", "", "print the CSS for this chroma style (e.g. github, monokai)")
	return cmd
}
