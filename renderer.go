package hello

import (
	"bytes"
	"context"
	"io/fs"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

// Option configures a PageRenderer before construction.
type Option func(*rendererConfig)

type rendererConfig struct {
	title     string
	lang      string
	templates fs.FS
	cacheSize int
}

// WithTitle sets the document title. Blank titles are ignored.
func WithTitle(title string) Option {
	return func(cfg *rendererConfig) {
		if trimmed := strings.TrimSpace(title); trimmed != "" {
			cfg.title = trimmed
		}
	}
}

// WithLang sets the document language. Blank values are ignored.
func WithLang(lang string) Option {
	return func(cfg *rendererConfig) {
		if trimmed := strings.TrimSpace(lang); trimmed != "" {
			cfg.lang = trimmed
		}
	}
}

// WithTemplates replaces the embedded templates with files. The fs.FS must
// contain every template the greeting components name.
func WithTemplates(files fs.FS) Option {
	return func(cfg *rendererConfig) {
		if files != nil {
			cfg.templates = files
		}
	}
}

// WithCacheSize sets how many parsed templates and resources the renderer
// keeps. Values below one keep DefaultCacheSize.
func WithCacheSize(size int) Option {
	return func(cfg *rendererConfig) {
		if size > 0 {
			cfg.cacheSize = size
		}
	}
}

// PageRenderer renders the greeting page. It holds no per-render state, so a
// single PageRenderer can be shared by any number of goroutines.
type PageRenderer struct {
	site GreetingSite
}

// NewPageRenderer returns a PageRenderer configured by options.
func NewPageRenderer(options ...Option) *PageRenderer {
	cfg := &rendererConfig{
		title:     DefaultTitle,
		lang:      DefaultLang,
		cacheSize: DefaultCacheSize,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}
	if cfg.templates == nil {
		cfg.templates = Templates()
	}
	return &PageRenderer{
		site: GreetingSite{
			CachedSite: NewCachedSiteWithSize(cfg.templates, cfg.cacheSize),
			Title:      cfg.title,
			Lang:       cfg.lang,
		},
	}
}

// Site returns the Site the renderer renders on.
func (r *PageRenderer) Site() GreetingSite {
	return r.site
}

// Render returns the greeting page for cfg. The page always contains the text
// "NAME=" followed by cfg.Name; an empty name is rendered as is. Rendering
// the same cfg twice gives byte-identical documents.
//
// If the templates can't be rendered, which only happens with templates
// supplied through WithTemplates, the error is logged and the site's server
// error page is returned instead.
func (r *PageRenderer) Render(ctx context.Context, cfg DisplayConfig) MarkupDocument {
	ctx, span := tracer.Start(ctx, "hello.PageRenderer.Render", trace.WithAttributes(
		attrNameSet.Bool(cfg.Name != ""),
	))
	defer span.End()

	var buf bytes.Buffer
	Render(ctx, &buf, r.site, NewGreetingPage(cfg))
	return MarkupDocument{body: buf.Bytes()}
}

// RenderEnv loads the DisplayConfig from env and renders it.
func (r *PageRenderer) RenderEnv(ctx context.Context, env EnvReader) MarkupDocument {
	return r.Render(ctx, LoadDisplayConfig(env))
}
