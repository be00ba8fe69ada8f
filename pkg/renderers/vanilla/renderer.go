package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-gameportal/pkg/render"
	rendertemplate "github.com/goliatone/go-gameportal/pkg/render/template"
	gotemplate "github.com/goliatone/go-gameportal/pkg/render/template/gotemplate"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	siteName         string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithSiteName overrides the display name used in the navigation bar.
func WithSiteName(name string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			cfg.siteName = trimmed
		}
	}
}

// Renderer produces full HTML pages with declarative form markup.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
	siteName  string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS: TemplatesFS(),
		siteName:   "Game Portal",
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(gotemplate.WithFS(cfg.templateFS))
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{templates: renderer, siteName: cfg.siteName}, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render produces a full page document for the named page.
func (r *Renderer) Render(_ context.Context, page render.Page, opts render.Options) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}

	body, err := buildBody(page, opts)
	if err != nil {
		return nil, err
	}

	data := map[string]any{
		"page":  string(page.Name),
		"title": pageTitle(page, r.siteName),
		"site":  r.siteName,
		"body":  body,
	}
	if opts.Session != nil {
		display := opts.Session.DisplayName
		if display == "" {
			display = opts.Session.Email
		}
		data["session"] = map[string]any{
			"email":        opts.Session.Email,
			"display_name": display,
		}
	}
	if opts.PlayersOnline != nil {
		data["players"] = strconv.Itoa(*opts.PlayersOnline) + " players online"
	}
	if len(opts.Notices) > 0 {
		notices := make([]any, 0, len(opts.Notices))
		for _, notice := range opts.Notices {
			if cleaned := sanitizeNoticeMarkup(notice); cleaned != "" {
				notices = append(notices, cleaned)
			}
		}
		if len(notices) > 0 {
			data["notices"] = notices
		}
	}
	if theme := opts.Theme; theme != nil {
		if vars := inlineCSSVars(theme.CSSVars); vars != "" {
			data["css_vars"] = vars
		}
		if theme.AssetURL != nil {
			if href := theme.AssetURL("stylesheet"); href != "" {
				data["stylesheet"] = href
			}
		}
	}

	result, err := r.templates.RenderTemplate("templates/page", data)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}

func pageTitle(page render.Page, site string) string {
	if strings.TrimSpace(page.Title) != "" {
		return page.Title + " - " + site
	}
	return site
}

func inlineCSSVars(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	parts := make([]string, 0, len(vars))
	for name, value := range vars {
		parts = append(parts, name+": "+value+";")
	}
	// Stable output keeps rendered documents diffable.
	sort.Strings(parts)
	return strings.Join(parts, " ")
}
