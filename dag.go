package hello

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrResourceCycle is returned when the relationships between a page's
// resources can't all be satisfied, because two resources each have to come
// before the other, directly or through other resources. It always means a
// RelationCalculator on one of the resources is wrong.
var ErrResourceCycle = errors.New("resource cycle detected")

// resourceGraph is a directed acyclic graph of resources, used to render CSS
// and JavaScript in an order that satisfies their relationships.
type resourceGraph struct {
	nodes []resource

	// positions maps a resourceKey to its index in nodes.
	positions map[string]int

	// after holds, for each node, the nodes it has to be rendered after.
	after map[int]map[int]struct{}

	// before is the inverse of after: for each node, the nodes that have
	// to wait for it.
	before map[int]map[int]struct{}
}

func newResourceGraph() *resourceGraph {
	return &resourceGraph{
		positions: map[string]int{},
		after:     map[int]map[int]struct{}{},
		before:    map[int]map[int]struct{}{},
	}
}

// resourceGraphs holds one graph per part of the document resources are
// rendered into.
type resourceGraphs struct {
	css    *resourceGraph
	headJS *resourceGraph
	footJS *resourceGraph
}

// buildResourceGraphs collects the resources of components, skipping
// duplicates, and computes their ordering constraints.
//
// Each resource implicitly follows the previous resource of the same type
// declared by the same component, unless it sets a RelationCalculator or
// DisableImplicitOrdering.
func buildResourceGraphs(ctx context.Context, components []Component) resourceGraphs {
	graphs := resourceGraphs{
		css:    newResourceGraph(),
		headJS: newResourceGraph(),
		footJS: newResourceGraph(),
	}
	for _, comp := range components {
		if linker, ok := comp.(CSSLinker); ok {
			last := -1
			for _, link := range linker.LinkCSS(ctx) {
				graphs.css.add(link, &last)
			}
		}
		if embedder, ok := comp.(CSSEmbedder); ok {
			last := -1
			for _, block := range embedder.EmbedCSS(ctx) {
				graphs.css.add(block, &last)
			}
		}
		if linker, ok := comp.(JSLinker); ok {
			lastHead, lastFoot := -1, -1
			for _, link := range linker.LinkJS(ctx) {
				if link.PlaceInFooter {
					graphs.footJS.add(link, &lastFoot)
				} else {
					graphs.headJS.add(link, &lastHead)
				}
			}
		}
		if embedder, ok := comp.(JSEmbedder); ok {
			lastHead, lastFoot := -1, -1
			for _, block := range embedder.EmbedJS(ctx) {
				if block.PlaceInFooter {
					graphs.footJS.add(block, &lastFoot)
				} else {
					graphs.headJS.add(block, &lastHead)
				}
			}
		}
	}
	graphs.css.relate(ctx)
	graphs.headJS.relate(ctx)
	graphs.footJS.relate(ctx)
	return graphs
}

// add appends node unless an equal resource is already in the graph. last is
// the position of the previous implicitly ordered resource in the same
// declaration list, or -1.
func (g *resourceGraph) add(node resource, last *int) {
	key := node.resourceKey()
	if _, ok := g.positions[key]; ok {
		return
	}
	pos := len(g.nodes)
	g.nodes = append(g.nodes, node)
	g.positions[key] = pos
	if !node.implicitlyOrdered() {
		return
	}
	if *last >= 0 {
		g.order(*last, pos)
	}
	*last = pos
}

// order records that first has to be rendered before second.
func (g *resourceGraph) order(first, second int) {
	if first == second {
		return
	}
	if g.after[second] == nil {
		g.after[second] = map[int]struct{}{}
	}
	if g.before[first] == nil {
		g.before[first] = map[int]struct{}{}
	}
	g.after[second][first] = struct{}{}
	g.before[first][second] = struct{}{}
}

// relate asks every resource how it relates to every other resource.
func (g *resourceGraph) relate(ctx context.Context) {
	for pos, node := range g.nodes {
		for other, comparison := range g.nodes {
			if pos == other {
				continue
			}
			switch node.relationTo(ctx, comparison) {
			case ResourceRelationshipBefore:
				g.order(pos, other)
			case ResourceRelationshipAfter:
				g.order(other, pos)
			case ResourceRelationshipNeutral:
				// no constraint
			}
		}
	}
}

// compare breaks ties between resources that are free to be rendered: links
// come before inline blocks, then declaration order wins.
func (g *resourceGraph) compare(a, b int) int {
	if linkA, linkB := g.nodes[a].linked(), g.nodes[b].linked(); linkA != linkB {
		if linkA {
			return -1
		}
		return 1
	}
	return cmp.Compare(a, b)
}

// walk returns the resources in an order that satisfies every constraint. If
// there is no such order, it returns ErrResourceCycle along with the
// resources that could be placed.
func (g *resourceGraph) walk() ([]resource, error) {
	waiting := make([]int, len(g.nodes))
	var ready []int
	for pos := range g.nodes {
		waiting[pos] = len(g.after[pos])
		if waiting[pos] == 0 {
			ready = append(ready, pos)
		}
	}
	results := make([]resource, 0, len(g.nodes))
	for len(ready) > 0 {
		slices.SortFunc(ready, g.compare)
		pos := ready[0]
		ready = ready[1:]
		results = append(results, g.nodes[pos])
		for next := range g.before[pos] {
			waiting[next]--
			if waiting[next] == 0 {
				ready = append(ready, next)
			}
		}
	}
	if len(results) == len(g.nodes) {
		return results, nil
	}
	var stuck []string
	for pos, count := range waiting {
		if count > 0 {
			stuck = append(stuck, g.nodes[pos].resourceKey())
		}
	}
	return results, fmt.Errorf("%w: resources=[%s]", ErrResourceCycle, strings.Join(stuck, ", "))
}
