package hello

import (
	"context"
	"html/template"
	"io/fs"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of entries a CachedSite keeps in each of
// its caches when no size is given.
const DefaultCacheSize = 64

// Site is an interface for the singleton that will be used to render HTML.
// Consumers should use it to store any configuration or cross-request state
// they need, and use it to render Pages.
//
// A Site needs to be able to surface the templates it relies on as an fs.FS.
type Site interface {
	// TemplateDir returns an fs.FS containing all the templates needed to
	// render every Page on the Site.
	//
	// The path to templates within the fs.FS should match the output of
	// Templates for Components.
	TemplateDir(ctx context.Context) fs.FS
}

// TemplateCacher is an optional interface for Sites. Those fulfilling it can
// cache their template parsing using the output of Key from each Page to save
// on the overhead of parsing the template each time. The templates being
// parsed for a given key should be the same every time, as should the
// template getting executed, but the data may still be different, so the
// output HTML cannot be safely presumed to be cacheable.
type TemplateCacher interface {
	// GetCachedTemplate returns the *template.Template specified by the
	// passed key. It should return nil if the template hasn't been cached
	// yet.
	GetCachedTemplate(ctx context.Context, key string) *template.Template

	// SetCachedTemplate stores the passed *template.Template under the
	// passed key, for later retrieval with GetCachedTemplate.
	//
	// Any errors encountered should be logged, but as this is a
	// best-effort operation, will not be surfaced outside the function.
	SetCachedTemplate(ctx context.Context, key string, tmpl *template.Template)
}

// ResourceCacher is an optional interface for Sites. Those fulfilling it can
// cache the template source their inline resources use, to save on reading
// it from the fs.FS each time.
type ResourceCacher interface {
	// GetCachedResource returns the *string specified by the passed key.
	// It should return nil if the resource hasn't been cached yet.
	GetCachedResource(ctx context.Context, key string) *string

	// SetCachedResource stores the passed string under the passed key, for
	// later retrieval with GetCachedResource.
	SetCachedResource(ctx context.Context, key, resource string)
}

// ServerErrorPager defines an interface that Sites can optionally implement.
// If a Site implements ServerErrorPager and Render encounters an error,
// the output of ServerErrorPage will be rendered.
type ServerErrorPager interface {
	ServerErrorPage(ctx context.Context) Page
}

var _ Site = &CachedSite{}
var _ TemplateCacher = &CachedSite{}
var _ ResourceCacher = &CachedSite{}

// CachedSite is an implementation of the Site interface that can be embedded
// in other Site implementations. It fulfills the Site, TemplateCacher, and
// ResourceCacher interfaces, caching templates and resources in bounded
// in-memory LRU caches and exposing the template fs.FS passed to it in
// NewCachedSite. A CachedSite must be instantiated through NewCachedSite or
// NewCachedSiteWithSize, its empty value is not usable.
type CachedSite struct {
	templateCache *lru.Cache[string, *template.Template]
	resourceCache *lru.Cache[string, string]

	// templateDir is where Render will look for the templates required by
	// Components.
	templateDir fs.FS
}

// NewCachedSite returns a CachedSite instance that is ready to be used,
// holding up to DefaultCacheSize templates and resources.
func NewCachedSite(templates fs.FS) *CachedSite {
	return NewCachedSiteWithSize(templates, DefaultCacheSize)
}

// NewCachedSiteWithSize returns a CachedSite whose caches each hold up to
// size entries. A size below one is replaced with DefaultCacheSize.
func NewCachedSiteWithSize(templates fs.FS, size int) *CachedSite {
	if size < 1 {
		size = DefaultCacheSize
	}
	// lru.New only fails for non-positive sizes
	templateCache, _ := lru.New[string, *template.Template](size)
	resourceCache, _ := lru.New[string, string](size)
	return &CachedSite{
		templateCache: templateCache,
		resourceCache: resourceCache,
		templateDir:   templates,
	}
}

// GetCachedTemplate returns the cached template associated with the passed
// key, if one exists. If no template is cached for that key, it returns nil.
//
// It can safely be used by multiple goroutines.
func (s *CachedSite) GetCachedTemplate(_ context.Context, key string) *template.Template {
	res, ok := s.templateCache.Get(key)
	if !ok {
		return nil
	}
	return res
}

// SetCachedTemplate caches a template for the given key, evicting the least
// recently used template if the cache is full.
//
// It can safely be used by multiple goroutines.
func (s *CachedSite) SetCachedTemplate(_ context.Context, key string, tmpl *template.Template) {
	s.templateCache.Add(key, tmpl)
}

// GetCachedResource returns the cached resource associated with the passed
// key, if one exists. If no resource is cached for that key, it returns nil.
//
// It can safely be used by multiple goroutines.
func (s *CachedSite) GetCachedResource(_ context.Context, key string) *string {
	res, ok := s.resourceCache.Get(key)
	if !ok {
		return nil
	}
	return &res
}

// SetCachedResource caches a resource for the given key.
//
// It can safely be used by multiple goroutines.
func (s *CachedSite) SetCachedResource(_ context.Context, key, resource string) {
	s.resourceCache.Add(key, resource)
}

// TemplateDir returns an fs.FS containing all the templates needed to render a
// Site's Components. In this case, we just pass back what the consumer passed
// in.
func (s *CachedSite) TemplateDir(_ context.Context) fs.FS {
	return s.templateDir
}
