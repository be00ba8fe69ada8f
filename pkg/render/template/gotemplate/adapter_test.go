package gotemplate

import (
	"strings"
	"testing"
	"testing/fstest"
)

func newTestEngine(t *testing.T, files fstest.MapFS) *Engine {
	t.Helper()
	engine, err := New(WithFS(files))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestRenderTemplateAppendsExtension(t *testing.T) {
	files := fstest.MapFS{
		"pages/index.html": &fstest.MapFile{Data: []byte("Welcome {{ name }}")},
	}
	engine := newTestEngine(t, files)

	out, err := engine.RenderTemplate("pages/index", map[string]any{"name": "player"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "Welcome player" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestRenderDetectsInlineContent(t *testing.T) {
	engine := newTestEngine(t, fstest.MapFS{"unused.html": &fstest.MapFile{Data: []byte("x")}})

	out, err := engine.Render("{{ count }} players online", map[string]any{"count": 42})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "42 players online" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestGlobalContextAvailableToTemplates(t *testing.T) {
	engine := newTestEngine(t, fstest.MapFS{"unused.html": &fstest.MapFile{Data: []byte("x")}})
	if err := engine.GlobalContext(map[string]any{"site": "Aurora Online"}); err != nil {
		t.Fatalf("global context: %v", err)
	}

	out, err := engine.RenderString("{{ site }}", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "Aurora Online" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestCSSVarFilter(t *testing.T) {
	engine := newTestEngine(t, fstest.MapFS{"unused.html": &fstest.MapFile{Data: []byte("x")}})

	out, err := engine.RenderString(`{{ "brand"|cssvar }}`, nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "var(--brand)" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestNewRequiresTemplateSource(t *testing.T) {
	if _, err := New(); err == nil || !strings.Contains(err.Error(), "base dir or fs.FS") {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
