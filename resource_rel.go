package hello

import "context"

// ResourceRelationship says where a resource has to be rendered compared to
// another resource of the same kind. Relationships only hold between CSS and
// CSS, or between JavaScript that ends up in the same part of the document.
type ResourceRelationship string

const (
	// ResourceRelationshipAfter renders the resource after the one it's
	// compared to.
	ResourceRelationshipAfter ResourceRelationship = "after"

	// ResourceRelationshipBefore renders the resource before the one it's
	// compared to.
	ResourceRelationshipBefore ResourceRelationship = "before"

	// ResourceRelationshipNeutral places no constraint on the two
	// resources. Leaving the calculator nil is cheaper when a resource
	// never has an opinion; Neutral is for calculators that only care
	// about some resources.
	ResourceRelationshipNeutral ResourceRelationship = "neutral"
)

// resource is a CSSLink, CSSInline, JSLink, or JSInline.
type resource interface {
	// resourceKey identifies the resource for deduplication.
	resourceKey() string

	// linked is true for resources loaded by URL.
	linked() bool

	// implicitlyOrdered is true when the resource should keep its
	// position relative to the previous resource of its type declared by
	// the same component.
	implicitlyOrdered() bool

	relationTo(ctx context.Context, other resource) ResourceRelationship
}

func (c CSSLink) resourceKey() string { return "css-link:" + c.Href }
func (CSSLink) linked() bool          { return true }

func (c CSSLink) implicitlyOrdered() bool {
	return !c.DisableImplicitOrdering && c.CSSLinkRelationCalculator == nil && c.CSSInlineRelationCalculator == nil
}

func (c CSSLink) relationTo(ctx context.Context, other resource) ResourceRelationship {
	return cssRelation(ctx, other, c.CSSLinkRelationCalculator, c.CSSInlineRelationCalculator)
}

func (c CSSInline) resourceKey() string { return "css-inline:" + c.TemplatePath }
func (CSSInline) linked() bool          { return false }

func (c CSSInline) implicitlyOrdered() bool {
	return !c.DisableImplicitOrdering && c.CSSLinkRelationCalculator == nil && c.CSSInlineRelationCalculator == nil
}

func (c CSSInline) relationTo(ctx context.Context, other resource) ResourceRelationship {
	return cssRelation(ctx, other, c.CSSLinkRelationCalculator, c.CSSInlineRelationCalculator)
}

func (j JSLink) resourceKey() string { return "js-link:" + j.Src }
func (JSLink) linked() bool          { return true }

func (j JSLink) implicitlyOrdered() bool {
	return !j.DisableImplicitOrdering && j.JSLinkRelationCalculator == nil && j.JSInlineRelationCalculator == nil
}

func (j JSLink) relationTo(ctx context.Context, other resource) ResourceRelationship {
	return jsRelation(ctx, other, j.JSLinkRelationCalculator, j.JSInlineRelationCalculator)
}

func (j JSInline) resourceKey() string { return "js-inline:" + j.TemplatePath }
func (JSInline) linked() bool          { return false }

func (j JSInline) implicitlyOrdered() bool {
	return !j.DisableImplicitOrdering && j.JSLinkRelationCalculator == nil && j.JSInlineRelationCalculator == nil
}

func (j JSInline) relationTo(ctx context.Context, other resource) ResourceRelationship {
	return jsRelation(ctx, other, j.JSLinkRelationCalculator, j.JSInlineRelationCalculator)
}

func cssRelation(ctx context.Context, other resource, links func(context.Context, CSSLink) ResourceRelationship, inlines func(context.Context, CSSInline) ResourceRelationship) ResourceRelationship {
	switch other := other.(type) {
	case CSSLink:
		if links != nil {
			return links(ctx, other)
		}
	case CSSInline:
		if inlines != nil {
			return inlines(ctx, other)
		}
	}
	return ResourceRelationshipNeutral
}

func jsRelation(ctx context.Context, other resource, links func(context.Context, JSLink) ResourceRelationship, inlines func(context.Context, JSInline) ResourceRelationship) ResourceRelationship {
	switch other := other.(type) {
	case JSLink:
		if links != nil {
			return links(ctx, other)
		}
	case JSInline:
		if inlines != nil {
			return inlines(ctx, other)
		}
	}
	return ResourceRelationshipNeutral
}
