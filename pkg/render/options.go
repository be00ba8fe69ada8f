package render

import (
	theme "github.com/goliatone/go-theme"
)

// SessionView is the renderer-visible slice of the signed-in session. A nil
// SessionView renders the logged-out chrome.
type SessionView struct {
	Email       string
	DisplayName string
}

// Options carries per-render state that customises output without touching
// the page definition.
type Options struct {
	// Values pre-populates rendered controls keyed by field name, for
	// example to re-fill a form after a failed submission.
	Values map[string]string

	// Errors surfaces validation feedback keyed by field name. Renderers
	// mark each listed field invalid and emit the message immediately after
	// its control.
	Errors map[string]string

	// Session selects the logged-in navigation chrome when non-nil.
	Session *SessionView

	// PlayersOnline feeds the online counter badge; nil means the counter
	// has not been fetched yet and renders as pending.
	PlayersOnline *int

	// Notices are transient banners shown at the top of the page.
	Notices []string

	// Theme supplies resolved theme tokens, partials, and asset URLs.
	Theme *theme.RendererConfig
}
