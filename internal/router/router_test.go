package router

import (
	"testing"

	"github.com/Gaurav-Gosain/deskfolio/internal/registry"
	"github.com/Gaurav-Gosain/deskfolio/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	actions []store.Action
}

func (r *recorder) Dispatch(a store.Action) store.State {
	r.actions = append(r.actions, a)
	return store.State{}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		path  string
		match Match
		app   registry.AppID
		index int
	}{
		{"/", MatchRoot, "", 0},
		{"", MatchRoot, "", 0},
		{"/about", MatchApp, registry.AboutMe, 0},
		{"/experience", MatchApp, registry.AboutMe, 1},
		{"/education", MatchApp, registry.AboutMe, 2},
		{"/projects", MatchApp, registry.AboutMe, 3},
		{"/skills", MatchApp, registry.AboutMe, 4},
		{"/resume", MatchApp, registry.AboutMe, 5},
		{"resume", MatchApp, registry.AboutMe, 5},
		{"/resume/", MatchApp, registry.AboutMe, 5},
		{"/resume?ref=cv", MatchApp, registry.AboutMe, 5},
		{"/contact", MatchApp, registry.AboutMe, 6},
		{"/services", MatchApp, registry.AboutMe, 7},
		{"/chrome", MatchApp, registry.Chrome, 0},
		{"/vscode", MatchApp, registry.VSCode, 0},
		{"/spotify", MatchApp, registry.JioSaavn, 0},
		{"/mail", MatchApp, registry.Mail, 0},
		{"/nonexistent", MatchNotFound, "", 0},
		{"/404.html", MatchNotFound, "", 0},
		{"/RESUME", MatchNotFound, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			r, m := Lookup(tt.path)
			assert.Equal(t, tt.match, m)
			assert.Equal(t, tt.app, r.App)
			assert.Equal(t, tt.index, r.Index)
		})
	}
}

func TestNavigateMappedDispatchesOnce(t *testing.T) {
	rec := &recorder{}
	s := NewSynchronizer(rec)

	assert.Equal(t, MatchApp, s.Navigate("/resume"))
	require.Len(t, rec.actions, 1)

	a := rec.actions[0]
	assert.Equal(t, store.ActionAppClick, a.Kind)
	assert.Equal(t, registry.AboutMe, a.AppID)
	require.NotNil(t, a.Index)
	assert.Equal(t, 5, *a.Index)
	assert.Equal(t, "/resume", s.Current())
}

func TestNavigateRootAndUnknownDispatchNothing(t *testing.T) {
	rec := &recorder{}
	var seen []Match
	s := NewSynchronizer(rec, WithObserver(func(_ string, m Match) { seen = append(seen, m) }))

	assert.Equal(t, MatchRoot, s.Navigate("/"))
	assert.Equal(t, MatchNotFound, s.Navigate("/nonexistent"))
	assert.Equal(t, MatchNotFound, s.Navigate("/404.html"))

	assert.Empty(t, rec.actions)
	assert.Equal(t, []Match{MatchRoot, MatchNotFound, MatchNotFound}, seen)
}

func TestNavigateIntoStoreOpensView(t *testing.T) {
	st := store.New(store.Reduce(store.State{}, store.Init(registry.Configs())))
	s := NewSynchronizer(st)

	s.Navigate("/projects")
	r, ok := st.State().App(registry.AboutMe)
	require.True(t, ok)
	assert.True(t, r.IsOpened)
	assert.Equal(t, 3, r.ActiveIndex())

	s.Navigate("/skills")
	r, _ = st.State().App(registry.AboutMe)
	assert.True(t, r.IsOpened)
	assert.Equal(t, 4, r.ActiveIndex())
}

func TestPathsSortedAndConsistent(t *testing.T) {
	paths := Paths()
	require.Len(t, paths, 12)
	for i := 1; i < len(paths); i++ {
		assert.Less(t, paths[i-1].Path, paths[i].Path)
	}
	for _, r := range paths {
		cfg, err := registry.Lookup(r.App)
		require.NoError(t, err)
		assert.Less(t, r.Index, len(cfg.SubComponents), r.Path)
	}

	p, ok := PathFor(registry.AboutMe, 5)
	assert.True(t, ok)
	assert.Equal(t, "/resume", p)
}
