// Package render defines the contracts shared by the portal's page
// renderers: the renderer interface and registry, per-render options, and the
// field error display state.
package render

import (
	"context"

	"github.com/goliatone/go-gameportal/pkg/forms"
)

// PageName identifies one of the portal's views.
type PageName string

const (
	PageIndex     PageName = "index"
	PageLogin     PageName = "login"
	PageRegister  PageName = "register"
	PageDashboard PageName = "dashboard"
	PageDownload  PageName = "download"
)

// Page is the view model renderers consume for a single screen. Form is nil
// for screens without one.
type Page struct {
	Name  PageName
	Title string
	Form  *forms.Form
}

// Renderer converts a page view into a byte representation (HTML, terminal
// output, ...).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, page Page, options Options) ([]byte, error)
}
