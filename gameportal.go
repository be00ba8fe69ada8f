package gameportal

import (
	"context"

	"github.com/goliatone/go-gameportal/pkg/config"
	"github.com/goliatone/go-gameportal/pkg/portal"
	"github.com/goliatone/go-gameportal/pkg/render"
	"github.com/goliatone/go-gameportal/pkg/session"
)

// Config is the site configuration loaded from YAML and the environment.
type Config = config.Config

// Portal coordinates identity, sessions, stats, downloads, and rendering.
type Portal = portal.Portal

// Session is the signed-in account state persisted between runs.
type Session = session.Session

// RenderRequest describes one page render.
type RenderRequest = portal.RenderRequest

// ValidationError reports client-side form failures keyed by field name.
type ValidationError = portal.ValidationError

// Page names accepted by RenderPage.
const (
	PageIndex     = render.PageIndex
	PageLogin     = render.PageLogin
	PageRegister  = render.PageRegister
	PageDashboard = render.PageDashboard
	PageDownload  = render.PageDownload
)

// LoadConfig reads the YAML configuration at path, applies environment
// overrides, and validates the result. An empty path loads defaults plus the
// environment.
func LoadConfig(path string) (Config, error) {
	return config.Load(path)
}

// New constructs a Portal from the site configuration.
func New(cfg Config, options ...portal.Option) *Portal {
	return portal.New(cfg, options...)
}

// RenderHTML is the simplest entry point: it builds a portal from cfg and
// renders one page with the default renderer.
func RenderHTML(ctx context.Context, cfg Config, page render.PageName, options ...portal.Option) ([]byte, error) {
	p := New(cfg, options...)
	defer p.Close()
	return p.RenderPage(ctx, RenderRequest{Page: page})
}
