package hello

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io/fs"

	"github.com/cespare/xxhash/v2"
)

// CSSInline is a block of CSS that should be embedded directly into the
// rendered HTML inside a <style> element.
type CSSInline struct {
	// TemplatePath is the path, within the Site's fs.FS, of an
	// html/template that produces the CSS, without <style> tags. It is
	// executed with the same data as the page, so it can use .Page and
	// .Site.
	TemplatePath string

	// CSSLinkRelationCalculator and CSSInlineRelationCalculator place
	// this block relative to the page's other CSS. Setting either one
	// turns off implicit ordering.
	CSSLinkRelationCalculator   func(context.Context, CSSLink) ResourceRelationship
	CSSInlineRelationCalculator func(context.Context, CSSInline) ResourceRelationship

	// DisableImplicitOrdering lets the block render anywhere relative to
	// the CSS declared before it by the same component.
	DisableImplicitOrdering bool
}

// CSSLink is a stylesheet that should be loaded through a <link> element.
type CSSLink struct {
	Href string

	CSSLinkRelationCalculator   func(context.Context, CSSLink) ResourceRelationship
	CSSInlineRelationCalculator func(context.Context, CSSInline) ResourceRelationship
	DisableImplicitOrdering     bool
}

// JSInline is a block of JavaScript that should be embedded directly into
// the rendered HTML inside a <script> element.
type JSInline struct {
	// TemplatePath is the path, within the Site's fs.FS, of an
	// html/template that produces the JavaScript, without <script> tags.
	TemplatePath string

	// PlaceInFooter renders the script in .FooterJS instead of .HeaderJS.
	PlaceInFooter bool

	// JSLinkRelationCalculator and JSInlineRelationCalculator are only
	// asked about scripts in the same part of the document.
	JSLinkRelationCalculator   func(context.Context, JSLink) ResourceRelationship
	JSInlineRelationCalculator func(context.Context, JSInline) ResourceRelationship
	DisableImplicitOrdering    bool
}

// JSLink is a script that should be loaded from a URL using a <script>
// element with a src attribute.
type JSLink struct {
	Src string

	// PlaceInFooter renders the script in .FooterJS instead of .HeaderJS.
	PlaceInFooter bool

	JSLinkRelationCalculator   func(context.Context, JSLink) ResourceRelationship
	JSInlineRelationCalculator func(context.Context, JSInline) ResourceRelationship
	DisableImplicitOrdering    bool
}

// CSSEmbedder is an interface that Components can fulfill to include some CSS
// that should be embedded directly into the rendered HTML. The contents will
// be made available to the template as part of .CSS.
type CSSEmbedder interface {
	EmbedCSS(context.Context) []CSSInline
}

// CSSLinker is an interface that Components can fulfill to include some CSS
// that should be loaded through a <link> element in the template. The links
// will be made available to the template as part of .CSS.
type CSSLinker interface {
	LinkCSS(context.Context) []CSSLink
}

// JSEmbedder is an interface that Components can fulfill to include some
// JavaScript that should be embedded directly into the rendered HTML. The
// contents will be made available to the template as part of .HeaderJS or
// .FooterJS.
type JSEmbedder interface {
	EmbedJS(context.Context) []JSInline
}

// JSLinker is an interface that Components can fulfill to include some
// JavaScript that should be loaded separately from the HTML document. The
// links will be made available to the template as part of .HeaderJS or
// .FooterJS.
type JSLinker interface {
	LinkJS(context.Context) []JSLink
}

var (
	cssLinkTemplate = template.Must(template.New("css-link").Parse(`<link rel="stylesheet" href="{{ .Href }}">` + "\n"))
	jsLinkTemplate  = template.Must(template.New("js-link").Parse(`<script src="{{ .Src }}"></script>` + "\n"))
)

// resourceSet is the rendered CSS and JavaScript for a page.
type resourceSet struct {
	css      template.HTML
	headerJS template.HTML
	footerJS template.HTML
}

// renderResources renders the resources of components in an order that
// satisfies their relationships. Inline blocks whose output is identical to
// one already rendered are skipped, even if they come from different
// templates.
func renderResources(ctx context.Context, site Site, components []Component, funcs template.FuncMap, data any) (resourceSet, error) {
	graphs := buildResourceGraphs(ctx, components)
	seenBlocks := map[uint64]struct{}{}

	render := func(part string, graph *resourceGraph) (template.HTML, error) {
		ordered, err := graph.walk()
		if err != nil {
			return "", fmt.Errorf("error ordering %s: %w", part, err)
		}
		var buf bytes.Buffer
		for _, res := range ordered {
			switch res := res.(type) {
			case CSSLink:
				if err := cssLinkTemplate.Execute(&buf, res); err != nil {
					return "", fmt.Errorf("error rendering link to %q: %w", res.Href, err)
				}
			case JSLink:
				if err := jsLinkTemplate.Execute(&buf, res); err != nil {
					return "", fmt.Errorf("error rendering script %q: %w", res.Src, err)
				}
			case CSSInline:
				err = renderInline(ctx, &buf, site, "style", res.TemplatePath, funcs, data, seenBlocks)
			case JSInline:
				err = renderInline(ctx, &buf, site, "script", res.TemplatePath, funcs, data, seenBlocks)
			}
			if err != nil {
				return "", err
			}
		}
		// the output of html/template is already escaped
		return template.HTML(buf.String()), nil // #nosec G203
	}

	css, err := render("CSS", graphs.css)
	if err != nil {
		return resourceSet{}, err
	}
	headerJS, err := render("header JavaScript", graphs.headJS)
	if err != nil {
		return resourceSet{}, err
	}
	footerJS, err := render("footer JavaScript", graphs.footJS)
	if err != nil {
		return resourceSet{}, err
	}
	return resourceSet{
		css:      css,
		headerJS: headerJS,
		footerJS: footerJS,
	}, nil
}

// renderInline executes the template at path wrapped in a tag element, so
// html/template escapes its actions for the CSS or JavaScript context, and
// appends the output to out unless an identical block was already written.
func renderInline(ctx context.Context, out *bytes.Buffer, site Site, tag, path string, funcs template.FuncMap, data any, seen map[uint64]struct{}) error {
	src, err := resourceSource(ctx, site, path)
	if err != nil {
		return err
	}
	tmpl, err := template.New(path).Funcs(funcs).Parse("<" + tag + ">\n" + src + "\n</" + tag + ">\n")
	if err != nil {
		return fmt.Errorf("error parsing %q: %w", path, err)
	}
	var block bytes.Buffer
	if err := tmpl.Execute(&block, data); err != nil {
		return fmt.Errorf("error executing %q: %w", path, err)
	}
	sum := xxhash.Sum64(block.Bytes())
	if _, ok := seen[sum]; ok {
		return nil
	}
	seen[sum] = struct{}{}
	_, _ = out.Write(block.Bytes())
	return nil
}

func resourceSource(ctx context.Context, site Site, path string) (string, error) {
	cache, cacheable := site.(ResourceCacher)
	if cacheable {
		if cached := cache.GetCachedResource(ctx, path); cached != nil {
			return *cached, nil
		}
	}
	contents, err := fs.ReadFile(site.TemplateDir(ctx), path)
	if err != nil {
		return "", fmt.Errorf("error reading %q: %w", path, err)
	}
	src := string(contents)
	if cacheable {
		cache.SetCachedResource(ctx, path, src)
	}
	return src, nil
}
