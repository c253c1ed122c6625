package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

// TerminalNotifier prints one line per notification, styled when the writer is
// a terminal.
type TerminalNotifier struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
}

var _ Notifier = &TerminalNotifier{}

func NewTerminalNotifier(w io.Writer) *TerminalNotifier {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &TerminalNotifier{w: w, color: color}
}

func (t *TerminalNotifier) Notify(_ context.Context, n Notification) {
	line := FormatLine(n)
	if t.color {
		switch n.Level {
		case LevelError:
			line = errorStyle.Render(line)
		case LevelWarn:
			line = warnStyle.Render(line)
		default:
			line = infoStyle.Render(line)
		}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = fmt.Fprintln(t.w, line)
}

// FormatLine flattens a notification to a single plain-text line.
func FormatLine(n Notification) string {
	level := n.Level
	if level == "" {
		level = LevelInfo
	}
	msg := strings.Join(strings.Fields(n.Message), " ")
	return fmt.Sprintf("[%s] %s", level, msg)
}
