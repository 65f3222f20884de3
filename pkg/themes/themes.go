// Package themes provides the built-in go-theme manifest of the site and a
// selector that turns a theme/variant pair into the renderer configuration
// the vanilla renderer consumes.
package themes

import (
	"errors"
	"fmt"
	"maps"
	"sort"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
)

// BuiltinName is the theme shipped with the site.
const BuiltinName = "formsite"

// Asset keys resolved through RendererConfig.AssetURL.
const (
	AssetVanillaStylesheet = "vanilla.stylesheet"
	AssetSiteStylesheet    = "site.stylesheet"
)

// Partial keys a theme may override, one per vanilla component.
const (
	PartialInput    = "forms.input"
	PartialCheckbox = "forms.checkbox"
	PartialRadio    = "forms.radio"
	PartialSelect   = "forms.select"
	PartialHidden   = "forms.hidden"
)

var (
	// ErrUnknownTheme is returned when no manifest carries the requested name.
	ErrUnknownTheme = errors.New("themes: unknown theme")
	// ErrUnknownVariant is returned when the manifest has no such variant.
	ErrUnknownVariant = errors.New("themes: unknown variant")
)

// Builtin returns the site's theme. Assets resolve below assetPrefix, which
// is the public static URL. Variants: "dark" swaps the colour tokens and
// "stacked" lists radio options vertically.
func Builtin(assetPrefix string) *theme.Manifest {
	return &theme.Manifest{
		Name:    BuiltinName,
		Version: "1.0.0",
		Tokens: map[string]string{
			"formsite-accent": "#1d4ed8",
			"formsite-error":  "#b91c1c",
			"formsite-muted":  "#4b5563",
		},
		Assets: theme.Assets{
			Prefix: assetPrefix,
			Files: map[string]string{
				AssetVanillaStylesheet: "formsite-vanilla.css",
				AssetSiteStylesheet:    "site.css",
			},
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{
					"formsite-accent": "#93c5fd",
					"formsite-error":  "#fca5a5",
					"formsite-muted":  "#d1d5db",
				},
			},
			"stacked": {
				Templates: map[string]string{
					PartialRadio: "templates/components/radio_stacked.tmpl",
				},
			},
		},
	}
}

// Selector picks manifests by name. It satisfies theme.ThemeSelector and is
// safe for concurrent use.
type Selector struct {
	mu        sync.RWMutex
	manifests map[string]*theme.Manifest
}

var _ theme.ThemeSelector = (*Selector)(nil)

// NewSelector registers manifests; later manifests replace earlier ones of
// the same name.
func NewSelector(manifests ...*theme.Manifest) *Selector {
	s := &Selector{manifests: make(map[string]*theme.Manifest, len(manifests))}
	for _, manifest := range manifests {
		s.Register(manifest)
	}
	return s
}

// Register adds manifest. Nil or unnamed manifests are ignored.
func (s *Selector) Register(manifest *theme.Manifest) {
	if manifest == nil || strings.TrimSpace(manifest.Name) == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manifests[strings.TrimSpace(manifest.Name)] = manifest
}

// Names lists the registered themes in sorted order.
func (s *Selector) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.manifests))
	for name := range s.manifests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select resolves name and variant. An empty name picks the built-in theme;
// an empty variant keeps the base manifest.
func (s *Selector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = BuiltinName
	}
	variant = strings.TrimSpace(variant)

	s.mu.RLock()
	manifest, ok := s.manifests[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
	if variant != "" {
		if _, ok := manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("%w: %q has no variant %q", ErrUnknownVariant, name, variant)
		}
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

// RendererConfig flattens a selection: variant tokens, templates and asset
// files override the base manifest, and every token is exposed as a CSS
// custom property "--<token>".
func RendererConfig(selection *theme.Selection) *theme.RendererConfig {
	if selection == nil || selection.Manifest == nil {
		return nil
	}
	manifest := selection.Manifest

	tokens := maps.Clone(manifest.Tokens)
	partials := maps.Clone(manifest.Templates)
	files := maps.Clone(manifest.Assets.Files)
	prefix := manifest.Assets.Prefix

	if variant, ok := manifest.Variants[selection.Variant]; ok {
		tokens = merge(tokens, variant.Tokens)
		partials = merge(partials, variant.Templates)
		files = merge(files, variant.Assets.Files)
		if strings.TrimSpace(variant.Assets.Prefix) != "" {
			prefix = variant.Assets.Prefix
		}
	}

	var cssVars map[string]string
	if len(tokens) > 0 {
		cssVars = make(map[string]string, len(tokens))
		for key, value := range tokens {
			cssVars["--"+key] = value
		}
	}

	return &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  cssVars,
		AssetURL: assetResolver(prefix, files),
	}
}

// AssetURL resolves key through cfg, returning "" when cfg has no resolver.
func AssetURL(cfg *theme.RendererConfig, key string) string {
	if cfg == nil || cfg.AssetURL == nil {
		return ""
	}
	return cfg.AssetURL(key)
}

// CSSVarsStyle renders cfg's custom properties as an inline style value in
// sorted order.
func CSSVarsStyle(cfg *theme.RendererConfig) string {
	if cfg == nil || len(cfg.CSSVars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(cfg.CSSVars))
	for key := range cfg.CSSVars {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+cfg.CSSVars[key])
	}
	return strings.Join(parts, "; ")
}

func assetResolver(prefix string, files map[string]string) func(string) string {
	prefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
	return func(key string) string {
		file, ok := files[key]
		if !ok || strings.TrimSpace(file) == "" {
			return ""
		}
		if strings.Contains(file, "://") || strings.HasPrefix(file, "/") {
			return file
		}
		return prefix + "/" + strings.TrimLeft(file, "/")
	}
}

func merge(base, over map[string]string) map[string]string {
	if len(over) == 0 {
		return base
	}
	if base == nil {
		base = make(map[string]string, len(over))
	}
	maps.Copy(base, over)
	return base
}
