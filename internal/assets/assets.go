// Package assets indexes the textures and shaders available under the
// game's base and user roots and serves their previews and dimensions.
package assets

import (
	"fmt"
	"image"
	"sort"

	"go.uber.org/zap"

	"github.com/Faultbox/chameleon/internal/progress"
	"github.com/Faultbox/chameleon/pkg/texture"
)

// Options configures a Store.
type Options struct {
	Logger      *zap.Logger
	Decode      texture.DecodeFunc
	PreviewSize int // edge of the square previews are fitted into
	JPEGQuality int // quality of previews written to the cache
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Decode == nil {
		o.Decode = texture.Decode
	}
	if o.PreviewSize <= 0 {
		o.PreviewSize = texture.DefaultPreviewSize
	}
	if o.JPEGQuality <= 0 || o.JPEGQuality > 100 {
		o.JPEGQuality = 95
	}
	return o
}

// Store maps shader names to descriptors. The mapping is rebuilt on load
// and replaced only once a scan has completed.
type Store struct {
	opts Options
	log  *zap.Logger

	base    string
	user    string
	loaded  bool
	sources []string
	entries map[string]Descriptor

	rendered *imageCache
}

// New creates an empty store.
func New(opts Options) *Store {
	opts = opts.withDefaults()
	return &Store{
		opts:     opts,
		log:      opts.Logger,
		entries:  make(map[string]Descriptor),
		rendered: newImageCache(),
	}
}

// Load scans baseRoot and userRoot. It does nothing and returns false when
// the roots are unchanged since the last load and force is not set.
func (s *Store) Load(baseRoot, userRoot string, force bool, sink progress.Sink) bool {
	if s.loaded && !force && baseRoot == s.base && userRoot == s.user {
		s.log.Debug("roots unchanged, skipping scan",
			zap.String("base", baseRoot), zap.String("user", userRoot))
		return false
	}
	s.base, s.user, s.loaded = baseRoot, userRoot, true

	sink = progress.OrNop(sink)
	sources := s.enumerateSources(baseRoot, userRoot)
	sink.Start(len(sources))

	sc := newScan(s.opts)
	for _, src := range sources {
		sc.source(src)
		sink.Tick()
	}
	sink.Done()

	s.sources = sources
	s.entries = sc.entries
	s.rendered.Clear()

	s.log.Info("asset scan complete",
		zap.Int("sources", len(sources)),
		zap.Int("textures", sc.textures),
		zap.Int("shaders", sc.shaders),
		zap.Int("names", len(s.entries)))
	return true
}

// Reload rescans the roots of the last load.
func (s *Store) Reload(sink progress.Sink) {
	s.Load(s.base, s.user, true, sink)
}

// Roots returns the roots of the last load.
func (s *Store) Roots() (base, user string) {
	return s.base, s.user
}

// Sources returns the scanned sources in scan order.
func (s *Store) Sources() []string {
	out := make([]string, len(s.sources))
	copy(out, s.sources)
	return out
}

// Len returns the number of known names.
func (s *Store) Len() int {
	return len(s.entries)
}

// Lookup returns the descriptor for name.
func (s *Store) Lookup(name string) (Descriptor, bool) {
	d, ok := s.entries[name]
	return d, ok
}

// Source returns the file a loose texture was read from, or "" for
// shaders and unknown names.
func (s *Store) Source(name string) string {
	if t, ok := s.entries[name].(*LooseTexture); ok {
		return t.Source
	}
	return ""
}

// Sets returns the distinct first path segments of all names, sorted.
func (s *Store) Sets() []string {
	seen := make(map[string]bool)
	for name := range s.entries {
		seen[SetOf(name)] = true
	}
	sets := make([]string, 0, len(seen))
	for set := range seen {
		sets = append(sets, set)
	}
	sort.Strings(sets)
	return sets
}

// MembersOf returns the sorted names whose first path segment is set.
func (s *Store) MembersOf(set string) []string {
	var names []string
	for name := range s.entries {
		if SetOf(name) == set {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// resolve follows a name to the loose texture that provides its image.
// Shaders are followed exactly one hop and only to a loose texture.
func (s *Store) resolve(name string) (*LooseTexture, bool) {
	switch d := s.entries[name].(type) {
	case *LooseTexture:
		return d, true
	case *DeclaredShader:
		t, ok := s.entries[d.PreviewSource].(*LooseTexture)
		return t, ok
	default:
		return nil, false
	}
}

// Size returns the pixel dimensions name resolves to, 0x0 if unknown.
func (s *Store) Size(name string) (width, height int) {
	if t, ok := s.resolve(name); ok {
		return t.Width, t.Height
	}
	return 0, 0
}

// SizeKnown reports whether both dimensions of name are known.
func (s *Store) SizeKnown(name string) bool {
	w, h := s.Size(name)
	return w > 0 && h > 0
}

// Resolution formats the dimensions of name as "W x H".
func (s *Store) Resolution(name string) string {
	w, h := s.Size(name)
	return fmt.Sprintf("%d x %d", w, h)
}

// EffectiveScale returns the preview scale of the texture name resolves
// to, or 1.
func (s *Store) EffectiveScale(name string) float64 {
	if t, ok := s.resolve(name); ok && t.PreviewScale > 0 {
		return t.PreviewScale
	}
	return 1
}

// ResolvePreview returns the preview image of name with its real
// dimensions. Unknown names and shaders without a usable preview source
// give the NOT FOUND placeholder, undecodable textures the UNSUPPORTED one;
// both report 0x0.
func (s *Store) ResolvePreview(name string) (image.Image, int, int) {
	t, ok := s.resolve(name)
	if !ok {
		return s.Placeholder(texture.NotFound), 0, 0
	}
	if t.Unsupported() || t.Preview == nil {
		return s.Placeholder(texture.Unsupported), 0, 0
	}
	return t.Preview, t.Width, t.Height
}

// PreviewTransformed renders the preview of newName as it would appear in
// place of oldName with rule scales (h, v) and rotation rot. The scales are
// corrected for the different preview scales of both textures. When oldName
// is unknown the plain preview is returned.
func (s *Store) PreviewTransformed(newName, oldName string, h, v, rot float64) image.Image {
	img, w, hgt := s.ResolvePreview(newName)
	if w == 0 && hgt == 0 {
		return img
	}
	if _, ok := s.entries[oldName]; !ok {
		return img
	}

	key := fmt.Sprintf("%s|%s|%g|%g|%g", newName, oldName, h, v, rot)
	if cached, ok := s.rendered.Get(key); ok {
		return cached
	}

	scale := s.EffectiveScale(newName) / s.EffectiveScale(oldName)
	out := texture.Transformed(img, h/scale, v/scale, rot)
	s.rendered.Set(key, out)
	return out
}

// Placeholder renders a placeholder preview at the configured size.
func (s *Store) Placeholder(p texture.Placeholder) image.Image {
	key := "placeholder|" + p.String()
	if img, ok := s.rendered.Get(key); ok {
		return img
	}
	img := p.Image(s.opts.PreviewSize)
	s.rendered.Set(key, img)
	return img
}

// RenderStats returns hit and miss counts of the rendered preview cache.
func (s *Store) RenderStats() (hits, misses int) {
	return s.rendered.Stats()
}

// imageCache keeps rendered previews until the next scan.
type imageCache struct {
	data map[string]image.Image

	// Stats
	hits   int
	misses int
}

func newImageCache() *imageCache {
	return &imageCache{data: make(map[string]image.Image)}
}

func (c *imageCache) Get(key string) (image.Image, bool) {
	img, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return img, ok
}

func (c *imageCache) Set(key string, img image.Image) {
	c.data[key] = img
}

func (c *imageCache) Clear() {
	c.data = make(map[string]image.Image)
	c.hits = 0
	c.misses = 0
}

func (c *imageCache) Stats() (hits, misses int) {
	return c.hits, c.misses
}
