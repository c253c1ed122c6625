package nav

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Route maps a path to the page component the UI mounts there.
type Route struct {
	Path       string `yaml:"path"`
	Name       string `yaml:"name"`
	Component  string `yaml:"component"`
	ShowChrome bool   `yaml:"show_chrome"`
	// Entry marks the route unauthenticated users are sent to.
	Entry bool `yaml:"entry,omitempty"`
}

const (
	EntryPath = "/"
	ChatPath  = "/chat"
)

// DefaultRoutes is the chat application's table: login at the root without
// chrome, the chat page with chrome.
func DefaultRoutes() []Route {
	return []Route{
		{Path: EntryPath, Name: "login", Component: "LoginPage", ShowChrome: false, Entry: true},
		{Path: ChatPath, Name: "chat", Component: "ChatPage", ShowChrome: true},
	}
}

type routeFile struct {
	Routes []Route `yaml:"routes"`
}

// LoadRoutes reads a YAML route table of the form `routes: [{path, name, component, show_chrome, entry}]`.
func LoadRoutes(r io.Reader) ([]Route, error) {
	var f routeFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("nav: empty route file")
		}
		return nil, errors.Wrap(err, "nav: decode routes")
	}
	if len(f.Routes) == 0 {
		return nil, errors.New("nav: route file declares no routes")
	}
	return f.Routes, nil
}

// NormalizePath trims whitespace, query and fragment, guarantees a leading
// slash and drops a trailing one.
func NormalizePath(p string) string {
	p = strings.TrimSpace(p)
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
		if p == "" {
			p = "/"
		}
	}
	return p
}
