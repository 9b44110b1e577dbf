package hello

import (
	"context"
	"embed"
	"html/template"
	"io/fs"
	"strings"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

// Templates returns the fs.FS holding the greeting page's templates.
func Templates() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		// fs.Sub only fails on an invalid directory name
		panic(err)
	}
	return sub
}

const (
	// DefaultTitle is the document title used when none is configured.
	DefaultTitle = "hello world"

	// DefaultLang is the document language used when none is configured.
	DefaultLang = "en"

	// DefaultStatusLabel is the text next to the pulsing status dot.
	DefaultStatusLabel = "SYSTEM ONLINE"

	greetingHeadline = "hello world"
)

var _ ServerErrorPager = GreetingSite{}

// GreetingSite is the Site the greeting page is rendered on.
type GreetingSite struct {
	*CachedSite

	// Title is the document <title>.
	Title string

	// Lang is the lang attribute of the document.
	Lang string
}

// ServerErrorPage returns the page rendered when the greeting page can't be.
func (GreetingSite) ServerErrorPage(_ context.Context) Page {
	return ErrorPage{}
}

// Layout is the document shell every page on the site fills in.
type Layout struct{}

func (l Layout) Templates(_ context.Context) []string {
	return []string{l.BaseTemplate()}
}

// BaseTemplate is the template that gets executed for pages using Layout.
func (Layout) BaseTemplate() string {
	return "base.html.tmpl"
}

// EmbedCSS returns the reset and document styles, which every other
// stylesheet on the page builds on.
func (Layout) EmbedCSS(_ context.Context) []CSSInline {
	return []CSSInline{{
		TemplatePath:                "base.css.tmpl",
		CSSLinkRelationCalculator:   renderBefore[CSSLink],
		CSSInlineRelationCalculator: renderBefore[CSSInline],
	}}
}

func renderBefore[Resource any](_ context.Context, _ Resource) ResourceRelationship {
	return ResourceRelationshipBefore
}

// Backdrop draws the blurred, animated orbs behind the greeting card.
type Backdrop struct{}

func (Backdrop) Templates(_ context.Context) []string {
	return []string{"backdrop.html.tmpl"}
}

func (Backdrop) EmbedCSS(_ context.Context) []CSSInline {
	return []CSSInline{{TemplatePath: "backdrop.css.tmpl"}}
}

// Orbs lists the color of every orb, in paint order.
func (Backdrop) Orbs() []string {
	return []string{"blue", "cyan", "indigo"}
}

// NameBadge is the pill showing the configured name.
type NameBadge struct {
	Name string
}

func (NameBadge) Templates(_ context.Context) []string {
	return []string{"badge.html.tmpl"}
}

func (NameBadge) EmbedCSS(_ context.Context) []CSSInline {
	return []CSSInline{{TemplatePath: "badge.css.tmpl"}}
}

// Text is the badge's content: "NAME=" followed by the name, which may be
// empty.
func (b NameBadge) Text() string {
	return "NAME=" + b.Name
}

// Markup is Text escaped for an HTML text node. Carriage returns become
// character references, because HTML parsers read a literal CR as LF.
func (b NameBadge) Markup() template.HTML {
	escaped := template.HTMLEscapeString(b.Text())
	return template.HTML(strings.ReplaceAll(escaped, "\r", "&#13;")) // #nosec G203
}

// StatusIndicator is the pulsing dot and label under the greeting.
type StatusIndicator struct {
	Label string
}

func (StatusIndicator) Templates(_ context.Context) []string {
	return []string{"status.html.tmpl"}
}

func (StatusIndicator) EmbedCSS(_ context.Context) []CSSInline {
	return []CSSInline{{TemplatePath: "status.css.tmpl"}}
}

var _ Page = GreetingPage{}
var _ ComponentUser = GreetingPage{}

// GreetingPage is the "hello world" page.
type GreetingPage struct {
	Layout   Layout
	Backdrop Backdrop
	Badge    NameBadge
	Status   StatusIndicator
}

// NewGreetingPage returns the GreetingPage for cfg.
func NewGreetingPage(cfg DisplayConfig) GreetingPage {
	return GreetingPage{
		Badge:  NameBadge{Name: cfg.Name},
		Status: StatusIndicator{Label: DefaultStatusLabel},
	}
}

func (GreetingPage) Templates(_ context.Context) []string {
	return []string{"greeting.html.tmpl"}
}

func (p GreetingPage) UseComponents(_ context.Context) []Component {
	return []Component{
		p.Layout,
		p.Backdrop,
		p.Badge,
		p.Status,
	}
}

// Key is the same for every GreetingPage: the templates never depend on the
// name, only the data does.
func (GreetingPage) Key(_ context.Context) string {
	return "greeting"
}

func (p GreetingPage) ExecutedTemplate(_ context.Context) string {
	return p.Layout.BaseTemplate()
}

func (GreetingPage) EmbedCSS(_ context.Context) []CSSInline {
	return []CSSInline{{TemplatePath: "greeting.css.tmpl"}}
}

// Headline is the big gradient text on the card.
func (GreetingPage) Headline() string {
	return greetingHeadline
}

// ErrorPage is a bare page telling the viewer something went wrong.
type ErrorPage struct{}

func (ErrorPage) Templates(_ context.Context) []string {
	return []string{"error.html.tmpl"}
}

func (ErrorPage) Key(_ context.Context) string {
	return "error"
}

func (ErrorPage) ExecutedTemplate(_ context.Context) string {
	return "error.html.tmpl"
}
