package vanilla

import (
	"fmt"
	"html"
	"strings"

	"github.com/goliatone/go-gameportal/pkg/render"
)

// buildBody produces the main content markup for each page. Form pages embed
// the declarative form markup; the rest are static chrome around portal
// actions.
func buildBody(page render.Page, opts render.Options) (string, error) {
	switch page.Name {
	case render.PageIndex:
		return indexBody(opts), nil
	case render.PageLogin, render.PageRegister:
		if page.Form == nil {
			return "", fmt.Errorf("vanilla renderer: page %q requires a form", page.Name)
		}
		return formBody(page, opts), nil
	case render.PageDashboard:
		return dashboardBody(opts), nil
	case render.PageDownload:
		return downloadBody(), nil
	default:
		return "", fmt.Errorf("vanilla renderer: unknown page %q", page.Name)
	}
}

func indexBody(opts render.Options) string {
	var b strings.Builder
	b.WriteString("<section class=\"gp-hero\">\n")
	b.WriteString("    <h1>Play now</h1>\n")
	b.WriteString("    <p>Download the client and jump into the world.</p>\n")
	b.WriteString(`    <a class="gp-button gp-button-primary" href="/download">Download client</a>` + "\n")
	if opts.Session == nil {
		b.WriteString(`    <a class="gp-button" href="/register">Create account</a>` + "\n")
	}
	b.WriteString("</section>\n")
	return b.String()
}

func formBody(page render.Page, opts render.Options) string {
	var b strings.Builder
	heading := page.Title
	if heading == "" {
		heading = string(page.Name)
	}
	b.WriteString("<section class=\"gp-form-panel\">\n")
	b.WriteString("    <h1>")
	b.WriteString(html.EscapeString(heading))
	b.WriteString("</h1>\n")
	b.WriteString(buildFormMarkup(page.Form, opts))
	b.WriteString("</section>\n")
	return b.String()
}

func dashboardBody(opts render.Options) string {
	var b strings.Builder
	b.WriteString("<section class=\"gp-dashboard\">\n")
	if opts.Session != nil {
		name := opts.Session.DisplayName
		if name == "" {
			name = opts.Session.Email
		}
		b.WriteString("    <h1>Welcome back, ")
		b.WriteString(html.EscapeString(name))
		b.WriteString("</h1>\n")
	} else {
		b.WriteString("    <h1>Welcome back</h1>\n")
	}
	b.WriteString(`    <a class="gp-button gp-button-primary" href="/download">Download client</a>` + "\n")
	b.WriteString("</section>\n")
	return b.String()
}

func downloadBody() string {
	var b strings.Builder
	b.WriteString("<section class=\"gp-download\">\n")
	b.WriteString("    <h1>Download the client</h1>\n")
	b.WriteString("    <p>The installer for your platform is picked automatically.</p>\n")
	b.WriteString(`    <a class="gp-button gp-button-primary" href="/download/client" data-action="download">Download</a>` + "\n")
	b.WriteString("</section>\n")
	return b.String()
}
