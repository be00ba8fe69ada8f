package vanilla_test

import (
	"context"
	"strings"
	"testing"

	"github.com/goliatone/go-gameportal/pkg/forms"
	"github.com/goliatone/go-gameportal/pkg/render"
	"github.com/goliatone/go-gameportal/pkg/renderers/vanilla"
)

func renderPage(t *testing.T, page render.Page, opts render.Options) string {
	t.Helper()
	subject, err := vanilla.New(vanilla.WithSiteName("Aurora Online"))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := subject.Render(context.Background(), page, opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(out)
}

func TestRenderRegisterEmitsDeclarativeAttributes(t *testing.T) {
	t.Parallel()

	form := forms.Registration()
	out := renderPage(t, render.Page{Name: render.PageRegister, Title: "Create account", Form: &form}, render.Options{})

	for _, want := range []string{
		`<form id="register-form"`,
		`name="username"`,
		`minlength="3"`,
		`maxlength="20"`,
		`pattern="^[a-zA-Z0-9_]+$"`,
		`title="Username can only contain letters, numbers and underscores"`,
		`type="email"`,
		`type="password"`,
		` required`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRenderMarksInvalidFields(t *testing.T) {
	t.Parallel()

	form := forms.Login()
	out := renderPage(t, render.Page{Name: render.PageLogin, Title: "Sign in", Form: &form}, render.Options{
		Errors: map[string]string{"email": "Please enter a valid email address"},
		Values: map[string]string{"email": "not-an-email"},
	})

	if !strings.Contains(out, `class="is-invalid"`) {
		t.Error("invalid field should carry the is-invalid class")
	}
	if !strings.Contains(out, `<small class="error-message">Please enter a valid email address</small>`) {
		t.Error("error message element missing")
	}
	if !strings.Contains(out, `value="not-an-email"`) {
		t.Error("submitted value should be re-filled")
	}
}

func TestRenderNeverRefillsPasswords(t *testing.T) {
	t.Parallel()

	form := forms.Login()
	out := renderPage(t, render.Page{Name: render.PageLogin, Form: &form}, render.Options{
		Values: map[string]string{"password": "hunter22"},
	})

	if strings.Contains(out, "hunter22") {
		t.Error("password values must not appear in rendered output")
	}
}

func TestRenderSessionChrome(t *testing.T) {
	t.Parallel()

	anonymous := renderPage(t, render.Page{Name: render.PageIndex}, render.Options{})
	if !strings.Contains(anonymous, "Sign in") || strings.Contains(anonymous, "Sign out") {
		t.Error("logged-out chrome should offer sign in only")
	}
	if strings.Contains(anonymous, `href="/dashboard"`) {
		t.Error("logged-out chrome should not link the dashboard")
	}

	signedIn := renderPage(t, render.Page{Name: render.PageIndex}, render.Options{
		Session: &render.SessionView{Email: "player@example.com"},
	})
	if !strings.Contains(signedIn, "Sign out") {
		t.Error("logged-in chrome should offer sign out")
	}
	if !strings.Contains(signedIn, `href="/dashboard"`) {
		t.Error("logged-in chrome should link the dashboard")
	}
	if !strings.Contains(signedIn, "player@example.com") {
		t.Error("session chrome should fall back to the account email")
	}
}

func TestRenderPlayersBadge(t *testing.T) {
	t.Parallel()

	players := 1337
	out := renderPage(t, render.Page{Name: render.PageIndex}, render.Options{PlayersOnline: &players})
	if !strings.Contains(out, "1337 players online") {
		t.Error("players badge missing")
	}

	pending := renderPage(t, render.Page{Name: render.PageIndex}, render.Options{})
	if strings.Contains(pending, "players online") {
		t.Error("players badge should be hidden until the counter is fetched")
	}
}

func TestRenderSanitizesNotices(t *testing.T) {
	t.Parallel()

	out := renderPage(t, render.Page{Name: render.PageIndex}, render.Options{
		Notices: []string{`Server maintenance <strong>tonight</strong> <script>alert(1)</script>`},
	})

	if !strings.Contains(out, "<strong>tonight</strong>") {
		t.Error("inline formatting should survive sanitisation")
	}
	if strings.Contains(out, "<script>") {
		t.Error("script tags must be stripped from notices")
	}
}

func TestRenderUnknownPage(t *testing.T) {
	t.Parallel()

	subject, err := vanilla.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if _, err := subject.Render(context.Background(), render.Page{Name: "settings"}, render.Options{}); err == nil {
		t.Fatal("expected error for unknown page")
	}
}

func TestRenderFormPageRequiresForm(t *testing.T) {
	t.Parallel()

	subject, err := vanilla.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if _, err := subject.Render(context.Background(), render.Page{Name: render.PageLogin}, render.Options{}); err == nil {
		t.Fatal("expected error for form page without form")
	}
}
