// Package router maps deep-link paths onto application state.
//
// Synchronisation is one-directional: a path becomes an APP_CLICK action, and
// nothing here ever reads state back to derive a path.
package router

import (
	"sort"
	"strings"

	"github.com/Gaurav-Gosain/deskfolio/internal/registry"
	"github.com/Gaurav-Gosain/deskfolio/internal/store"
)

// NotFoundPath is always reported as not found, even though it is a valid path shape.
const NotFoundPath = "/404.html"

// Route is the application view a path opens.
type Route struct {
	Path  string
	App   registry.AppID
	Index int
}

// Match classifies a path.
type Match int

const (
	MatchNotFound Match = iota
	MatchRoot
	MatchApp
)

func (m Match) String() string {
	switch m {
	case MatchRoot:
		return "root"
	case MatchApp:
		return "app"
	default:
		return "not_found"
	}
}

var routeMap = map[string]Route{
	"/about":      {App: registry.AboutMe, Index: 0},
	"/experience": {App: registry.AboutMe, Index: 1},
	"/education":  {App: registry.AboutMe, Index: 2},
	"/projects":   {App: registry.AboutMe, Index: 3},
	"/skills":     {App: registry.AboutMe, Index: 4},
	"/resume":     {App: registry.AboutMe, Index: 5},
	"/contact":    {App: registry.AboutMe, Index: 6},
	"/services":   {App: registry.AboutMe, Index: 7},
	"/chrome":     {App: registry.Chrome, Index: 0},
	"/vscode":     {App: registry.VSCode, Index: 0},
	"/spotify":    {App: registry.JioSaavn, Index: 0},
	"/mail":       {App: registry.Mail, Index: 0},
}

// Normalize adds a missing leading slash and drops trailing slashes,
// query strings and fragments.
func Normalize(path string) string {
	path = strings.TrimSpace(path)
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimRight(path, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

// Lookup resolves path against the route table.
func Lookup(path string) (Route, Match) {
	path = Normalize(path)
	switch path {
	case "/":
		return Route{Path: "/"}, MatchRoot
	case NotFoundPath:
		return Route{Path: path}, MatchNotFound
	}

	r, ok := routeMap[path]
	if !ok {
		return Route{Path: path}, MatchNotFound
	}
	r.Path = path
	return r, MatchApp
}

// Paths returns every mapped route sorted by path. The root is not included.
func Paths() []Route {
	out := make([]Route, 0, len(routeMap))
	for p, r := range routeMap {
		r.Path = p
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// PathFor returns the canonical path opening app at index.
func PathFor(app registry.AppID, index int) (string, bool) {
	for _, r := range Paths() {
		if r.App == app && r.Index == index {
			return r.Path, true
		}
	}
	return "", false
}

// Dispatcher accepts store actions.
type Dispatcher interface {
	Dispatch(store.Action) store.State
}

// Synchronizer turns navigations into store actions.
type Synchronizer struct {
	dispatcher Dispatcher
	observe    func(path string, m Match)
	current    string
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithObserver registers fn to be told about every navigation.
func WithObserver(fn func(path string, m Match)) Option {
	return func(s *Synchronizer) { s.observe = fn }
}

// NewSynchronizer returns a Synchronizer dispatching into d.
func NewSynchronizer(d Dispatcher, opts ...Option) *Synchronizer {
	s := &Synchronizer{dispatcher: d, current: "/"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Navigate records path as the current location and, for a mapped path,
// dispatches exactly one APP_CLICK for its application and view.
func (s *Synchronizer) Navigate(path string) Match {
	r, m := Lookup(path)
	s.current = r.Path
	if m == MatchApp {
		s.dispatcher.Dispatch(store.AppClickAt(r.App, r.Index))
	}
	if s.observe != nil {
		s.observe(r.Path, m)
	}
	return m
}

// Current returns the last navigated path.
func (s *Synchronizer) Current() string {
	return s.current
}
