package cmds

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/go-go-golems/chatclient/pkg/markdown"
)

func newCallCommand(r *runner) *cobra.Command {
	var headers []string
	var render string

	cmd := &cobra.Command{
		Use:   "call METHOD PATH [BODY|-]",
		Short: "Send one API call and print the unwrapped payload",
		Long: `Send one API call through the client layer.

The payload printed is the envelope's data when the server wraps its answer, or
the body itself otherwise. Failures print a single notification on stderr.

With --render, a string payload is treated as markdown and printed as
sanitized HTML (html) or styled for the terminal (ansi).`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			method := strings.ToUpper(args[0])
			path := args[1]

			var body any
			if len(args) == 3 {
				raw := []byte(args[2])
				if args[2] == "-" {
					b, err := io.ReadAll(cmd.InOrStdin())
					if err != nil {
						return errors.Wrap(err, "read body from stdin")
					}
					raw = b
				}
				if !json.Valid(raw) {
					return errors.New("body is not valid JSON")
				}
				body = json.RawMessage(raw)
			}

			h, err := parseHeaders(headers)
			if err != nil {
				return err
			}

			app, err := r.open(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			ctx := cmd.Context()
			app.EnterChat(ctx)
			data, err := app.Client.Call(ctx, method, path, body, h)
			if err != nil {
				return err
			}
			return printPayload(cmd.OutOrStdout(), data, render)
		},
	}
	cmd.Flags().StringArrayVarP(&headers, "header", "H", nil, "extra header as 'Name: value' (repeatable)")
	cmd.Flags().StringVar(&render, "render", "", "render a string payload as markdown: html or ansi")
	return cmd
}

func parseHeaders(values []string) (http.Header, error) {
	h := http.Header{}
	for _, v := range values {
		name, value, ok := strings.Cut(v, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, errors.Errorf("invalid header %q, expected 'Name: value'", v)
		}
		h.Add(strings.TrimSpace(name), strings.TrimSpace(value))
	}
	return h, nil
}

func printPayload(w io.Writer, data json.RawMessage, render string) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}

	var text string
	isString := json.Unmarshal(trimmed, &text) == nil
	if !json.Valid(trimmed) {
		text, isString = string(data), true
	}

	switch {
	case render == "":
	case !isString:
		return errors.New("--render needs a string payload")
	case render == "html":
		_, err := fmt.Fprintln(w, markdown.Render(text))
		return err
	case render == "ansi":
		styled, err := glamour.Render(text, "dark")
		if err != nil {
			return errors.Wrap(err, "render markdown")
		}
		_, err = fmt.Fprint(w, styled)
		return err
	default:
		return errors.Errorf("unknown render mode %q", render)
	}

	if isString {
		_, err := fmt.Fprintln(w, text)
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, trimmed, "", "  "); err != nil {
		return errors.Wrap(err, "format payload")
	}
	buf.WriteByte('\n')
	_, err := w.Write(buf.Bytes())
	return err
}
