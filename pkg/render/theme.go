package render

import (
	"strings"

	theme "github.com/goliatone/go-theme"
)

// defaultThemePartials seeds partial names every renderer understands, so a
// sparse manifest still resolves the common chrome.
func defaultThemePartials() map[string]string {
	return map[string]string{
		"page.shell":  "templates/page.html",
		"forms.input": "templates/input.html",
		"nav.bar":     "templates/nav.html",
	}
}

// ThemeConfig flattens a go-theme selection into the renderer-facing config:
// base manifest values merged with the selected variant, CSS variables
// derived from tokens, and an asset resolver rooted at the manifest's asset
// prefix. A nil selection yields a nil config.
func ThemeConfig(selection *theme.Selection, fallbacks map[string]string) *theme.RendererConfig {
	if selection == nil {
		return nil
	}

	cfg := &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: map[string]string{},
		Tokens:   map[string]string{},
		CSSVars:  map[string]string{},
	}

	for name, path := range defaultThemePartials() {
		cfg.Partials[name] = path
	}
	for name, path := range fallbacks {
		if strings.TrimSpace(path) != "" {
			cfg.Partials[name] = path
		}
	}

	manifest := selection.Manifest
	if manifest == nil {
		cfg.AssetURL = func(string) string { return "" }
		return cfg
	}

	for key, value := range manifest.Tokens {
		cfg.Tokens[key] = value
	}
	for name, path := range manifest.Templates {
		cfg.Partials[name] = path
	}

	assetFiles := map[string]string{}
	for name, file := range manifest.Assets.Files {
		assetFiles[name] = file
	}

	if variant, ok := manifest.Variants[selection.Variant]; ok {
		for key, value := range variant.Tokens {
			cfg.Tokens[key] = value
		}
		for name, path := range variant.Templates {
			cfg.Partials[name] = path
		}
		for name, file := range variant.Assets.Files {
			assetFiles[name] = file
		}
	}

	for key, value := range cfg.Tokens {
		cfg.CSSVars["--"+key] = value
	}

	prefix := strings.TrimRight(manifest.Assets.Prefix, "/")
	cfg.AssetURL = func(name string) string {
		file, ok := assetFiles[name]
		if !ok || file == "" {
			return ""
		}
		if prefix == "" {
			return file
		}
		return prefix + "/" + strings.TrimLeft(file, "/")
	}

	return cfg
}
