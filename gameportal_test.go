package gameportal

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-gameportal/pkg/portal"
	"github.com/goliatone/go-gameportal/pkg/session"
)

func TestLoadConfigLayersFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yml")
	err := os.WriteFile(path, []byte("site:\n  name: Ember Online\nstats:\n  interval: 30s\n"), 0o600)
	require.NoError(t, err)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "Ember Online", cfg.Site.Name)
	require.Equal(t, "30s", cfg.Stats.Interval.Std().String())
	require.NotEmpty(t, cfg.Session.Path, "defaults should survive the file layer")
}

func TestRenderHTMLIndexPage(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	html, err := RenderHTML(context.Background(), cfg, PageIndex,
		portal.WithSessionStore(session.NewMemoryStore()),
	)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(html), cfg.Site.Name),
		"index page should carry the site name")
}

func TestRenderHTMLLoginPage(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	html, err := RenderHTML(context.Background(), cfg, PageLogin,
		portal.WithSessionStore(session.NewMemoryStore()),
	)
	require.NoError(t, err)
	require.Contains(t, string(html), `<form id="login-form"`)
	require.Contains(t, string(html), `type="password"`)
}
