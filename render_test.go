package hello_test

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"log/slog"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"impractical.co/hello"
)

type resourceSite struct {
	*hello.CachedSite
}

type resourcePage struct {
	Color  string
	Widget resourceWidget
}

func (resourcePage) Templates(_ context.Context) []string {
	return []string{"page.tmpl"}
}

func (p resourcePage) UseComponents(_ context.Context) []hello.Component {
	return []hello.Component{p.Widget}
}

func (resourcePage) Key(_ context.Context) string {
	return "page.tmpl"
}

func (resourcePage) ExecutedTemplate(_ context.Context) string {
	return "base.tmpl"
}

func (resourcePage) LinkCSS(_ context.Context) []hello.CSSLink {
	return []hello.CSSLink{
		{Href: "https://example.com/a.css"},
		{Href: "https://example.com/b.css"},
	}
}

func (resourcePage) EmbedCSS(_ context.Context) []hello.CSSInline {
	return []hello.CSSInline{{TemplatePath: "one.css.tmpl"}}
}

func (resourcePage) LinkJS(_ context.Context) []hello.JSLink {
	return []hello.JSLink{
		{Src: "https://example.com/head.js"},
		{Src: "https://example.com/foot.js", PlaceInFooter: true},
	}
}

func (resourcePage) EmbedJS(_ context.Context) []hello.JSInline {
	return []hello.JSInline{
		{TemplatePath: "inline.js.tmpl"},
		{TemplatePath: "late.js.tmpl", PlaceInFooter: true},
	}
}

type resourceWidget struct{}

func (resourceWidget) Templates(_ context.Context) []string {
	return []string{"base.tmpl"}
}

func (resourceWidget) LinkCSS(_ context.Context) []hello.CSSLink {
	return []hello.CSSLink{
		{Href: "https://example.com/b.css"},
		{Href: "https://example.com/c.css"},
	}
}

func (resourceWidget) EmbedCSS(_ context.Context) []hello.CSSInline {
	return []hello.CSSInline{
		// renders the same CSS as one.css.tmpl, so it's skipped
		{TemplatePath: "dup.css.tmpl"},
		{TemplatePath: "two.css.tmpl"},
	}
}

func (resourceWidget) LinkJS(_ context.Context) []hello.JSLink {
	return []hello.JSLink{{Src: "https://example.com/head.js"}}
}

func TestRenderResources(t *testing.T) {
	t.Parallel()

	templates := fstest.MapFS{
		"base.tmpl":      {Data: []byte(`{{ .CSS }}|{{ .HeaderJS }}|{{ block "body" . }}{{ end }}|{{ .FooterJS }}`)},
		"page.tmpl":      {Data: []byte(`{{ define "body" }}body{{ end }}`)},
		"one.css.tmpl":   {Data: []byte(`p { color: {{ .Page.Color }}; }`)},
		"dup.css.tmpl":   {Data: []byte(`p { color: red; }`)},
		"two.css.tmpl":   {Data: []byte(`a { color: blue; }`)},
		"inline.js.tmpl": {Data: []byte(`console.log({{ .Page.Color }});`)},
		"late.js.tmpl":   {Data: []byte(`done();`)},
	}
	site := resourceSite{CachedSite: hello.NewCachedSite(templates)}

	var out bytes.Buffer
	err := hello.Execute(context.Background(), &out, site, resourcePage{Color: "red"})
	if err != nil {
		t.Fatalf("Unexpected error rendering: %s", err)
	}

	want := `<link rel="stylesheet" href="https://example.com/a.css">
<link rel="stylesheet" href="https://example.com/b.css">
<link rel="stylesheet" href="https://example.com/c.css">
<style>
p { color: red; }
</style>
<style>
a { color: blue; }
</style>
|<script src="https://example.com/head.js"></script>
<script>
console.log("red");
</script>
|body|<script src="https://example.com/foot.js"></script>
<script>
done();
</script>
`
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Errorf("Unexpected output (-want +got):\n%s", diff)
	}

	// resource sources are served from the cache afterwards
	if cached := site.GetCachedResource(context.Background(), "two.css.tmpl"); cached == nil {
		t.Errorf("Expected two.css.tmpl to be cached")
	}
}

type funcMapSite struct {
	*hello.CachedSite
}

func (funcMapSite) FuncMap(_ context.Context) template.FuncMap {
	return template.FuncMap{
		"shout": strings.ToUpper,
		"greet": func() string { return "site" },
	}
}

type funcMapPage struct{}

func (funcMapPage) Templates(_ context.Context) []string {
	return []string{"page.tmpl"}
}

func (funcMapPage) Key(_ context.Context) string {
	return "page.tmpl"
}

func (funcMapPage) ExecutedTemplate(_ context.Context) string {
	return "page.tmpl"
}

func (funcMapPage) FuncMap(_ context.Context) template.FuncMap {
	return template.FuncMap{
		"greet": func() string { return "page" },
	}
}

func TestRenderFuncMapPageOverridesSite(t *testing.T) {
	t.Parallel()

	templates := fstest.MapFS{
		"page.tmpl": {Data: []byte(`{{ shout "hi" }} {{ greet }}`)},
	}
	var out bytes.Buffer
	hello.Render(context.Background(), &out, funcMapSite{CachedSite: hello.NewCachedSite(templates)}, funcMapPage{})
	if got, want := out.String(), "HI page"; got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

type pathsPage struct {
	paths []string
}

func (p pathsPage) Templates(_ context.Context) []string {
	return p.paths
}

func (p pathsPage) Key(_ context.Context) string {
	return strings.Join(p.paths, ",")
}

func (pathsPage) ExecutedTemplate(_ context.Context) string {
	return "page.tmpl"
}

func TestExecuteErrors(t *testing.T) {
	t.Parallel()

	templates := fstest.MapFS{
		"page.tmpl":   {Data: []byte(`partial{{ .Missing }}`)},
		"broken.tmpl": {Data: []byte(`{{ if }}`)},
	}
	site := hello.NewCachedSite(templates)

	cases := map[string]struct {
		page   pathsPage
		target error
	}{
		"no-templates":    {page: pathsPage{}, target: hello.ErrNoTemplatePath},
		"no-matches":      {page: pathsPage{paths: []string{"*.html"}}, target: hello.ErrTemplatePatternMatchesNoFiles},
		"parse-error":     {page: pathsPage{paths: []string{"broken.tmpl"}}},
		"execution-error": {page: pathsPage{paths: []string{"page.tmpl"}}},
	}
	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			err := hello.Execute(context.Background(), &out, site, tc.page)
			if err == nil {
				t.Fatalf("Expected an error, got output %q", out.String())
			}
			if tc.target != nil && !errors.Is(err, tc.target) {
				t.Errorf("Expected error to wrap %v, got %v", tc.target, err)
			}
			if out.Len() > 0 {
				t.Errorf("Expected nothing to be written, got %q", out.String())
			}
		})
	}
}

type closingBuffer struct {
	bytes.Buffer
	closed int
}

func (c *closingBuffer) Close() error {
	c.closed++
	return nil
}

func TestRenderWritesServerErrorWithoutErrorPage(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	ctx := hello.LoggingContext(context.Background(), slog.New(slog.NewTextHandler(&logs, nil)))
	site := hello.NewCachedSite(fstest.MapFS{})

	out := &closingBuffer{}
	hello.Render(ctx, out, site, pathsPage{paths: []string{"page.tmpl"}})
	if got, want := out.String(), "Server error."; got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
	if out.closed != 1 {
		t.Errorf("Expected writer to be closed once, was closed %d times", out.closed)
	}
	if !strings.Contains(logs.String(), "error rendering page") {
		t.Errorf("Expected the failure to be logged, got %q", logs.String())
	}
}

func TestRenderWithoutLoggerDoesNotPanic(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	hello.Render(context.Background(), &out, hello.NewCachedSite(fstest.MapFS{}), pathsPage{})
	if got, want := out.String(), "Server error."; got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

type orderedPage struct {
	links   []hello.CSSLink
	css     []hello.CSSInline
	jsLinks []hello.JSLink
	js      []hello.JSInline
}

func (orderedPage) Templates(_ context.Context) []string {
	return []string{"base.tmpl"}
}

func (orderedPage) Key(_ context.Context) string {
	return "base.tmpl"
}

func (orderedPage) ExecutedTemplate(_ context.Context) string {
	return "base.tmpl"
}

func (p orderedPage) LinkCSS(_ context.Context) []hello.CSSLink {
	return p.links
}

func (p orderedPage) EmbedCSS(_ context.Context) []hello.CSSInline {
	return p.css
}

func (p orderedPage) LinkJS(_ context.Context) []hello.JSLink {
	return p.jsLinks
}

func (p orderedPage) EmbedJS(_ context.Context) []hello.JSInline {
	return p.js
}

func orderedTemplates() fstest.MapFS {
	return fstest.MapFS{
		"base.tmpl":  {Data: []byte(`{{ .CSS }}|{{ .HeaderJS }}|{{ .FooterJS }}`)},
		"a.css.tmpl": {Data: []byte(`a{}`)},
		"b.css.tmpl": {Data: []byte(`b{}`)},
		"c.css.tmpl": {Data: []byte(`c{}`)},
		"a.js.tmpl":  {Data: []byte(`a();`)},
		"b.js.tmpl":  {Data: []byte(`b();`)},
	}
}

func cssBefore(path string) func(context.Context, hello.CSSInline) hello.ResourceRelationship {
	return func(_ context.Context, other hello.CSSInline) hello.ResourceRelationship {
		if other.TemplatePath == path {
			return hello.ResourceRelationshipBefore
		}
		return hello.ResourceRelationshipNeutral
	}
}

func TestRenderResourceOrdering(t *testing.T) {
	t.Parallel()

	style := func(css string) string { return "<style>\n" + css + "\n</style>\n" }
	script := func(js string) string { return "<script>\n" + js + "\n</script>\n" }
	link := func(href string) string { return `<link rel="stylesheet" href="` + href + `">` + "\n" }
	scriptSrc := func(src string) string { return `<script src="` + src + `"></script>` + "\n" }

	cases := map[string]struct {
		page orderedPage
		want string
	}{
		"declaration-order": {
			page: orderedPage{css: []hello.CSSInline{
				{TemplatePath: "a.css.tmpl"},
				{TemplatePath: "b.css.tmpl"},
				{TemplatePath: "c.css.tmpl"},
			}},
			want: style("a{}") + style("b{}") + style("c{}") + "||",
		},
		"inline-before-earlier-inline": {
			page: orderedPage{css: []hello.CSSInline{
				{TemplatePath: "a.css.tmpl"},
				{TemplatePath: "b.css.tmpl"},
				{TemplatePath: "c.css.tmpl", CSSInlineRelationCalculator: cssBefore("a.css.tmpl")},
			}},
			want: style("c{}") + style("a{}") + style("b{}") + "||",
		},
		"inline-after-later-inline": {
			page: orderedPage{css: []hello.CSSInline{
				{TemplatePath: "a.css.tmpl", CSSInlineRelationCalculator: func(_ context.Context, other hello.CSSInline) hello.ResourceRelationship {
					if other.TemplatePath == "c.css.tmpl" {
						return hello.ResourceRelationshipAfter
					}
					return hello.ResourceRelationshipNeutral
				}},
				{TemplatePath: "b.css.tmpl"},
				{TemplatePath: "c.css.tmpl"},
			}},
			want: style("b{}") + style("c{}") + style("a{}") + "||",
		},
		"inline-before-links": {
			page: orderedPage{
				links: []hello.CSSLink{{Href: "https://example.com/x.css"}},
				css: []hello.CSSInline{{
					TemplatePath: "a.css.tmpl",
					CSSLinkRelationCalculator: func(_ context.Context, _ hello.CSSLink) hello.ResourceRelationship {
						return hello.ResourceRelationshipBefore
					},
				}},
			},
			want: style("a{}") + link("https://example.com/x.css") + "||",
		},
		"footer-script-before-footer-link": {
			page: orderedPage{
				jsLinks: []hello.JSLink{{Src: "https://example.com/x.js", PlaceInFooter: true}},
				js: []hello.JSInline{
					{TemplatePath: "b.js.tmpl"},
					{
						TemplatePath:  "a.js.tmpl",
						PlaceInFooter: true,
						JSLinkRelationCalculator: func(_ context.Context, _ hello.JSLink) hello.ResourceRelationship {
							return hello.ResourceRelationshipBefore
						},
					},
				},
			},
			want: "|" + script("b();") + "|" + script("a();") + scriptSrc("https://example.com/x.js"),
		},
	}
	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			site := hello.NewCachedSite(orderedTemplates())
			if err := hello.Execute(context.Background(), &out, site, tc.page); err != nil {
				t.Fatalf("Unexpected error rendering: %s", err)
			}
			if diff := cmp.Diff(tc.want, out.String()); diff != "" {
				t.Errorf("Unexpected output (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRenderResourceCycle(t *testing.T) {
	t.Parallel()

	page := orderedPage{css: []hello.CSSInline{
		{TemplatePath: "a.css.tmpl", CSSInlineRelationCalculator: cssBefore("b.css.tmpl")},
		{TemplatePath: "b.css.tmpl", CSSInlineRelationCalculator: cssBefore("c.css.tmpl")},
		{TemplatePath: "c.css.tmpl", CSSInlineRelationCalculator: cssBefore("a.css.tmpl")},
	}}

	var out bytes.Buffer
	err := hello.Execute(context.Background(), &out, hello.NewCachedSite(orderedTemplates()), page)
	if !errors.Is(err, hello.ErrResourceCycle) {
		t.Fatalf("Expected %v, got %v", hello.ErrResourceCycle, err)
	}
	if out.Len() > 0 {
		t.Errorf("Expected nothing to be written, got %q", out.String())
	}
}
