// Package portal coordinates the full site: configuration, identity,
// session persistence, live stats, client downloads, and page rendering.
package portal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-gameportal/internal/download"
	"github.com/goliatone/go-gameportal/internal/identity"
	internalloader "github.com/goliatone/go-gameportal/internal/openapi/loader"
	internalparser "github.com/goliatone/go-gameportal/internal/openapi/parser"
	"github.com/goliatone/go-gameportal/internal/stats"
	"github.com/goliatone/go-gameportal/pkg/config"
	"github.com/goliatone/go-gameportal/pkg/fetch"
	"github.com/goliatone/go-gameportal/pkg/forms"
	"github.com/goliatone/go-gameportal/pkg/notify"
	pkgopenapi "github.com/goliatone/go-gameportal/pkg/openapi"
	"github.com/goliatone/go-gameportal/pkg/render"
	"github.com/goliatone/go-gameportal/pkg/renderers/tui"
	"github.com/goliatone/go-gameportal/pkg/renderers/vanilla"
	"github.com/goliatone/go-gameportal/pkg/session"
	"github.com/goliatone/go-gameportal/pkg/validate"
)

const defaultRendererName = "vanilla"

// ValidationError reports client-side form failures keyed by field name. It
// is returned before any network call is made.
type ValidationError struct {
	Errors map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "portal: validation failed"
	}
	names := make([]string, 0, len(e.Errors))
	for name := range e.Errors {
		names = append(names, name)
	}
	sort.Strings(names)
	return "portal: validation failed: " + strings.Join(names, ", ")
}

// Option customises the portal configuration.
type Option func(*Portal)

// WithFetcher injects the shared network client.
func WithFetcher(client *fetch.Client) Option {
	return func(p *Portal) {
		if client != nil {
			p.fetcher = client
		}
	}
}

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Portal) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithNotifier receives user-facing messages (network failures, sign-in
// confirmations).
func WithNotifier(n notify.Notifier) Option {
	return func(p *Portal) {
		if n != nil {
			p.notifier = n
		}
	}
}

// WithSessionStore injects a session store, replacing the bbolt default.
func WithSessionStore(store session.Store) Option {
	return func(p *Portal) {
		if store != nil {
			p.store = store
		}
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(p *Portal) {
		if registry != nil {
			p.registry = registry
		}
	}
}

// WithDefaultRenderer overrides the renderer used when a render call omits an
// explicit name.
func WithDefaultRenderer(name string) Option {
	return func(p *Portal) {
		if name != "" {
			p.defaultRenderer = name
		}
	}
}

// WithIdentity injects the account backend client.
func WithIdentity(client *identity.Client) Option {
	return func(p *Portal) {
		if client != nil {
			p.identity = client
		}
	}
}

// WithStatsPoller injects the players-online poller.
func WithStatsPoller(poller *stats.Poller) Option {
	return func(p *Portal) {
		if poller != nil {
			p.stats = poller
		}
	}
}

// WithDownloads injects the client download manager.
func WithDownloads(manager *download.Manager) Option {
	return func(p *Portal) {
		if manager != nil {
			p.downloads = manager
		}
	}
}

// WithContractLoader injects a custom contract document loader.
func WithContractLoader(loader pkgopenapi.Loader) Option {
	return func(p *Portal) {
		if loader != nil {
			p.loader = loader
		}
	}
}

// WithContractParser injects a custom contract document parser.
func WithContractParser(parser pkgopenapi.Parser) Option {
	return func(p *Portal) {
		if parser != nil {
			p.parser = parser
		}
	}
}

// Portal wires the portal's services together. Missing dependencies are
// initialised with built-in implementations so callers can start with a
// single constructor call.
type Portal struct {
	cfg config.Config

	fetcher         *fetch.Client
	logger          *slog.Logger
	notifier        notify.Notifier
	store           session.Store
	registry        *render.Registry
	defaultRenderer string
	identity        *identity.Client
	stats           *stats.Poller
	downloads       *download.Manager
	loader          pkgopenapi.Loader
	parser          pkgopenapi.Parser

	themeConfig  *theme.RendererConfig
	errorDisplay *render.ErrorDisplay

	contractForms map[string]forms.Form

	initialiseErr   error
	defaultsApplied bool
}

// New constructs a Portal from the site configuration, applying any provided
// options.
func New(cfg config.Config, options ...Option) *Portal {
	p := &Portal{
		cfg:             cfg,
		defaultRenderer: defaultRendererName,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(p)
	}
	p.applyDefaults()
	return p
}

func (p *Portal) applyDefaults() {
	if p.defaultsApplied {
		return
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.notifier == nil {
		p.notifier = notify.NewLogNotifier(p.logger)
	}
	if p.fetcher == nil {
		p.fetcher = fetch.New(
			fetch.WithPolicy(p.cfg.FetchPolicy()),
			fetch.WithLogger(p.logger),
			fetch.WithNotifier(p.notifier),
		)
	}
	if p.store == nil {
		store, err := session.OpenBolt(p.cfg.Session.Path)
		if err != nil {
			p.logger.Warn("session store unavailable, sessions will not persist", "error", err)
			p.store = session.NewMemoryStore()
		} else {
			p.store = store
		}
	}
	if p.identity == nil {
		p.identity = identity.New(p.cfg.Identity.BaseURL, p.cfg.Identity.APIKey,
			identity.WithFetcher(p.fetcher),
			identity.WithLogger(p.logger),
		)
	}
	if p.stats == nil && p.cfg.Stats.URL != "" {
		p.stats = stats.New(p.cfg.Stats.URL,
			stats.WithFetcher(p.fetcher),
			stats.WithInterval(p.cfg.Stats.Interval.Std()),
			stats.WithLogger(p.logger),
		)
	}
	if p.downloads == nil && p.cfg.Downloads.ManifestURL != "" {
		p.downloads = download.New(p.cfg.Downloads.ManifestURL,
			download.WithFetcher(p.fetcher),
			download.WithLogger(p.logger),
		)
	}
	if p.loader == nil {
		p.loader = internalloader.New(pkgopenapi.NewLoaderOptions(
			pkgopenapi.WithFetcher(p.fetcher),
		))
	}
	if p.parser == nil {
		p.parser = internalparser.New(pkgopenapi.NewParserOptions())
	}
	if p.registry == nil {
		p.registry = render.NewRegistry()
		renderer, err := vanilla.New(vanilla.WithSiteName(p.cfg.Site.Name))
		if err != nil {
			p.initialiseErr = fmt.Errorf("portal: default renderer: %w", err)
		} else {
			p.registry.MustRegister(renderer)
		}
		p.registry.MustRegister(tui.New())
	}
	if p.themeConfig == nil {
		p.themeConfig = p.loadTheme()
	}
	if p.errorDisplay == nil {
		p.errorDisplay = render.NewErrorDisplay()
	}

	p.defaultsApplied = true
}

// loadTheme reads the configured theme manifest. A missing or broken manifest
// is logged and the portal falls back to unthemed rendering.
func (p *Portal) loadTheme() *theme.RendererConfig {
	if p.cfg.Theme.Manifest == "" {
		return nil
	}
	raw, err := os.ReadFile(p.cfg.Theme.Manifest)
	if err != nil {
		p.logger.Warn("theme manifest unreadable", "path", p.cfg.Theme.Manifest, "error", err)
		return nil
	}
	manifest := &theme.Manifest{}
	if err := json.Unmarshal(raw, manifest); err != nil {
		p.logger.Warn("theme manifest invalid", "path", p.cfg.Theme.Manifest, "error", err)
		return nil
	}

	name := p.cfg.Theme.Name
	if name == "" {
		name = manifest.Name
	}
	return render.ThemeConfig(&theme.Selection{
		Theme:    name,
		Variant:  p.cfg.Theme.Variant,
		Manifest: manifest,
	}, nil)
}

// Close releases held resources, including the session store.
func (p *Portal) Close() error {
	if closer, ok := p.store.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// StartStats launches the players-online poller in the background. It is a
// no-op when no stats endpoint is configured.
func (p *Portal) StartStats(ctx context.Context) {
	if p.stats == nil {
		return
	}
	go p.stats.Run(ctx)
}

// PlayersOnline returns the last polled counter, or nil before the first
// successful poll.
func (p *Portal) PlayersOnline() *int {
	if p.stats == nil {
		return nil
	}
	online, ok := p.stats.Current()
	if !ok {
		return nil
	}
	return &online
}

// RefreshStats forces a players-online poll outside the regular interval.
func (p *Portal) RefreshStats(ctx context.Context) {
	if p.stats != nil {
		p.stats.Poll(ctx)
	}
}

// WatchStats runs the poller in the foreground, forwarding every counter
// update to fn, until ctx is cancelled.
func (p *Portal) WatchStats(ctx context.Context, fn func(online int)) error {
	if p.stats == nil {
		return errors.New("portal: stats are not configured")
	}
	if fn != nil {
		p.stats.Subscribe(fn)
	}
	p.stats.Run(ctx)
	return ctx.Err()
}

// Profile returns the signed-in account's profile document.
func (p *Portal) Profile(ctx context.Context) (identity.Profile, error) {
	if err := p.ready(ctx); err != nil {
		return identity.Profile{}, err
	}
	current, err := p.CurrentSession(ctx)
	if err != nil {
		return identity.Profile{}, err
	}
	if current == nil {
		return identity.Profile{}, identity.ErrNoSession
	}
	return p.identity.Profile(ctx, current)
}

// Form returns the form served for the named page: the contract-derived form
// when a contract document is configured, the built-in fallback otherwise.
func (p *Portal) Form(ctx context.Context, name render.PageName) (forms.Form, error) {
	if built, err := p.contractForm(ctx, name); err == nil {
		return built, nil
	} else if !errors.Is(err, errNoContract) {
		return forms.Form{}, err
	}

	switch name {
	case render.PageLogin:
		return forms.Login(), nil
	case render.PageRegister:
		return forms.Registration(), nil
	default:
		return forms.Form{}, fmt.Errorf("portal: page %q has no form", name)
	}
}

var errNoContract = errors.New("portal: no contract configured")

// Operation IDs the contract document is expected to use for the portal's
// form pages.
const (
	loginOperationID    = "loginAccount"
	registerOperationID = "registerAccount"
)

func (p *Portal) contractForm(ctx context.Context, name render.PageName) (forms.Form, error) {
	if p.cfg.Site.Contract == "" {
		return forms.Form{}, errNoContract
	}

	if p.contractForms == nil {
		if err := p.loadContractForms(ctx); err != nil {
			return forms.Form{}, err
		}
	}

	var opID string
	switch name {
	case render.PageLogin:
		opID = loginOperationID
	case render.PageRegister:
		opID = registerOperationID
	default:
		return forms.Form{}, errNoContract
	}

	form, ok := p.contractForms[opID]
	if !ok {
		return forms.Form{}, errNoContract
	}
	return form.Clone(), nil
}

func (p *Portal) loadContractForms(ctx context.Context) error {
	src := contractSource(p.cfg.Site.Contract)
	doc, err := p.loader.Load(ctx, src)
	if err != nil {
		return fmt.Errorf("portal: load contract: %w", err)
	}
	operations, err := p.parser.Operations(ctx, doc)
	if err != nil {
		return fmt.Errorf("portal: parse contract: %w", err)
	}

	built := make(map[string]forms.Form, len(operations))
	for id, op := range operations {
		form, err := forms.FromOperation(op)
		if err != nil {
			// Operations without form bodies (stats, downloads) are expected.
			continue
		}
		built[id] = form
	}
	p.contractForms = built
	return nil
}

func contractSource(location string) pkgopenapi.Source {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return pkgopenapi.SourceFromURL(location)
	}
	return pkgopenapi.SourceFromFile(location)
}

// RenderRequest describes one page render.
type RenderRequest struct {
	// Page selects the view.
	Page render.PageName

	// Renderer names the renderer to use; empty falls back to the default.
	Renderer string

	// Values pre-fills form controls keyed by field name.
	Values map[string]string

	// Errors surfaces validation feedback keyed by field name.
	Errors map[string]string

	// Notices are transient banners shown on the page.
	Notices []string
}

// RenderPage renders the named page, attaching the current session, the
// players-online counter, and the resolved theme.
func (p *Portal) RenderPage(ctx context.Context, req RenderRequest) ([]byte, error) {
	if err := p.ready(ctx); err != nil {
		return nil, err
	}

	page := render.Page{Name: req.Page, Title: pageTitle(req.Page)}
	switch req.Page {
	case render.PageLogin, render.PageRegister:
		form, err := p.Form(ctx, req.Page)
		if err != nil {
			return nil, err
		}
		page.Form = &form
	}

	renderer, err := p.rendererFor(req.Renderer)
	if err != nil {
		return nil, err
	}

	// The error display carries annotations between the action that failed
	// and the page that shows them. Explicit request errors replace whatever
	// was on display.
	if req.Errors != nil {
		p.errorDisplay.Display(req.Errors)
	}

	opts := render.Options{
		Values:        req.Values,
		Errors:        p.errorDisplay.Errors(),
		Notices:       req.Notices,
		PlayersOnline: p.PlayersOnline(),
		Theme:         p.themeConfig,
	}
	if s, err := p.CurrentSession(ctx); err == nil && s != nil {
		opts.Session = &render.SessionView{Email: s.Email, DisplayName: s.DisplayName}
	}

	output, err := renderer.Render(ctx, page, opts)
	if err != nil {
		return nil, fmt.Errorf("portal: render %s: %w", req.Page, err)
	}
	return output, nil
}

func pageTitle(name render.PageName) string {
	switch name {
	case render.PageIndex:
		return ""
	case render.PageLogin:
		return "Sign in"
	case render.PageRegister:
		return "Create account"
	case render.PageDashboard:
		return "Dashboard"
	case render.PageDownload:
		return "Download"
	default:
		return string(name)
	}
}

func (p *Portal) rendererFor(name string) (render.Renderer, error) {
	if p.registry == nil {
		return nil, errors.New("portal: renderer registry is nil")
	}
	target := name
	if target == "" {
		target = p.defaultRenderer
	}
	renderer, err := p.registry.Get(target)
	if err != nil {
		return nil, fmt.Errorf("portal: renderer %q: %w", target, err)
	}
	return renderer, nil
}

// rejected puts the failing fields on display and returns the matching
// *ValidationError.
func (p *Portal) rejected(errs map[string]string) error {
	p.errorDisplay.Display(errs)
	return &ValidationError{Errors: errs}
}

// ErrorDisplay exposes the annotation state the next page render will show.
func (p *Portal) ErrorDisplay() *render.ErrorDisplay {
	return p.errorDisplay
}

func (p *Portal) ready(ctx context.Context) error {
	if ctx == nil {
		return errors.New("portal: context is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.initialiseErr
}

// Register validates the submitted values against the registration form and
// creates the account. Validation failures return a *ValidationError without
// touching the network.
func (p *Portal) Register(ctx context.Context, values map[string]string) (*session.Session, error) {
	if err := p.ready(ctx); err != nil {
		return nil, err
	}

	form, err := p.Form(ctx, render.PageRegister)
	if err != nil {
		return nil, err
	}
	form.SetValues(values)

	if result := validate.Validate(form); !result.Valid {
		return nil, p.rejected(result.Errors)
	}
	if confirm := form.Field("confirm_password"); confirm != nil && confirm.Value != values["password"] {
		return nil, p.rejected(map[string]string{
			"confirm_password": "Passwords do not match",
		})
	}
	p.errorDisplay.Clear()

	s, err := p.identity.SignUp(ctx, values["email"], values["password"], values["username"])
	if err != nil {
		return nil, err
	}
	if err := p.store.Save(ctx, s); err != nil {
		p.logger.WarnContext(ctx, "session not persisted", "error", err)
	}

	// The auth endpoints only hold credentials; portal data lives in the
	// profile document. Losing it is recoverable, so a failed write does not
	// fail the registration.
	profile := identity.Profile{
		Username:  values["username"],
		Email:     s.Email,
		CreatedAt: time.Now().UTC(),
	}
	if err := p.identity.SaveProfile(ctx, s, profile); err != nil {
		p.logger.WarnContext(ctx, "profile not saved", "error", err)
	}

	p.notifier.Notify(ctx, notify.LevelSuccess, "Account created. Welcome aboard!")
	return s, nil
}

// Login validates the submitted values against the login form and
// authenticates the account.
func (p *Portal) Login(ctx context.Context, values map[string]string) (*session.Session, error) {
	if err := p.ready(ctx); err != nil {
		return nil, err
	}

	form, err := p.Form(ctx, render.PageLogin)
	if err != nil {
		return nil, err
	}
	form.SetValues(values)

	if result := validate.Validate(form); !result.Valid {
		return nil, p.rejected(result.Errors)
	}
	p.errorDisplay.Clear()

	s, err := p.identity.SignIn(ctx, values["email"], values["password"])
	if err != nil {
		return nil, err
	}
	if err := p.store.Save(ctx, s); err != nil {
		p.logger.WarnContext(ctx, "session not persisted", "error", err)
	}
	p.notifier.Notify(ctx, notify.LevelSuccess, "Signed in.")
	return s, nil
}

// Logout signs the current session out and clears the stored state.
func (p *Portal) Logout(ctx context.Context) error {
	if err := p.ready(ctx); err != nil {
		return err
	}

	current, err := p.store.Load(ctx)
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		return err
	}
	p.identity.SignOut(ctx, current)
	p.errorDisplay.Clear()
	return p.store.Clear(ctx)
}

// CurrentSession returns the stored session, refreshing it first when its
// token has expired. It returns (nil, nil) when nobody is signed in.
func (p *Portal) CurrentSession(ctx context.Context) (*session.Session, error) {
	if err := p.ready(ctx); err != nil {
		return nil, err
	}

	current, err := p.store.Load(ctx)
	if errors.Is(err, session.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if !current.Expired(time.Now()) {
		return current, nil
	}

	refreshed, err := p.identity.Refresh(ctx, current)
	if err != nil {
		p.logger.WarnContext(ctx, "session refresh failed, signing out", "error", err)
		_ = p.store.Clear(ctx)
		return nil, nil
	}
	if err := p.store.Save(ctx, refreshed); err != nil {
		p.logger.WarnContext(ctx, "refreshed session not persisted", "error", err)
	}
	return refreshed, nil
}

// InstallID returns the stable per-install identifier.
func (p *Portal) InstallID(ctx context.Context) (string, error) {
	if err := p.ready(ctx); err != nil {
		return "", err
	}
	return p.store.InstallID(ctx)
}

// DownloadClient fetches the client build for this platform into dir (the
// configured downloads directory when dir is empty) and returns the file
// path.
func (p *Portal) DownloadClient(ctx context.Context, dir string) (string, error) {
	if err := p.ready(ctx); err != nil {
		return "", err
	}
	if p.downloads == nil {
		return "", errors.New("portal: downloads are not configured")
	}
	if dir == "" {
		dir = p.cfg.Downloads.Dir
	}
	path, err := p.downloads.Fetch(ctx, dir)
	if err != nil {
		return "", err
	}
	p.notifier.Notify(ctx, notify.LevelSuccess, "Client downloaded to "+path)
	return path, nil
}
