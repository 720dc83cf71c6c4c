package assets

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/chameleon/pkg/pak"
	"github.com/Faultbox/chameleon/pkg/texture"
)

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, data, 0644))
}

const commonShader = `// common shaders
textures/base/glow
{
	diffusemap textures/base/wall.tga
	{
		map textures/extra/floor.png
	}
	qer_editorimage textures/extra/floor.tga
}

textures/base/chain
{
	qer_editorimage textures/base/glow
}

textures/base/nodraw
{
	surfaceparm nodraw
}
`

// fixture lays out a base root with one mod holding loose files, a
// package archive and a corrupt archive, and a user root overriding one
// texture.
type fixture struct {
	base, user string
	modDir     string
	archive    string
	broken     string
	userMod    string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		base: filepath.Join(dir, "base"),
		user: filepath.Join(dir, "user"),
	}
	f.modDir = filepath.Join(f.base, "main")
	f.archive = filepath.Join(f.modDir, "res-extra.pk3")
	f.broken = filepath.Join(f.modDir, "zz-broken.dpk")
	f.userMod = filepath.Join(f.user, "main")

	writeFile(t, filepath.Join(f.modDir, "scripts", "common.shader"), []byte(commonShader))
	writeFile(t, filepath.Join(f.modDir, "scripts", "bad.shader"),
		[]byte("textures/base/bad\n{\n\tqer_editorimage textures/base/wall\n}\n// caf\xc3\xa9\n"))
	writeFile(t, filepath.Join(f.modDir, "scripts", "notes.txt"),
		[]byte("textures/base/ignored\n{\n\tqer_editorimage textures/base/wall\n}\n"))
	writeFile(t, filepath.Join(f.modDir, "textures", "base", "wall.png"), pngBytes(t, 64, 32))
	writeFile(t, filepath.Join(f.modDir, "textures", "base", "trim", "edge.png"), pngBytes(t, 16, 64))

	require.NoError(t, pak.Write(f.archive, map[string][]byte{
		"textures/extra/floor.png":  pngBytes(t, 256, 128),
		"textures/extra/broken.png": []byte("not a png at all"),
		"textures/extra/comp.crn":   []byte("crunched"),
		"textures/extra/readme.bmp": []byte("BM"),
		"scripts/extra.shader":      []byte("textures/extra/metal\n{\n\tmap textures/extra/floor.tga\n}\n"),
	}))
	writeFile(t, f.broken, []byte("definitely not a zip"))

	writeFile(t, filepath.Join(f.userMod, "textures", "base", "wall.png"), pngBytes(t, 128, 128))
	return f
}

type countingSink struct {
	total, ticks, done int
}

func (c *countingSink) Start(total int) { c.total = total }
func (c *countingSink) Tick()           { c.ticks++ }
func (c *countingSink) Done()           { c.done++ }

func TestLoadEnumeratesSources(t *testing.T) {
	f := newFixture(t)
	s := New(Options{})

	sink := &countingSink{}
	require.True(t, s.Load(f.base, f.user+string(filepath.Separator), false, sink))

	assert.Equal(t, []string{f.modDir, f.archive, f.broken, f.userMod}, s.Sources())
	assert.Equal(t, 4, sink.total)
	assert.Equal(t, 4, sink.ticks)
	assert.Equal(t, 1, sink.done)
}

func TestLoadDescriptors(t *testing.T) {
	f := newFixture(t)
	s := New(Options{})
	s.Load(f.base, f.user, false, nil)

	assert.Equal(t, []string{"base", "extra"}, s.Sets())
	assert.Equal(t, []string{"base/chain", "base/glow", "base/trim/edge", "base/wall"}, s.MembersOf("base"))
	assert.Equal(t, []string{"extra/broken", "extra/comp", "extra/floor", "extra/metal"}, s.MembersOf("extra"))
	assert.Equal(t, 8, s.Len())

	d, ok := s.Lookup("base/glow")
	require.True(t, ok)
	glow, ok := d.(*DeclaredShader)
	require.True(t, ok)
	assert.Equal(t, "extra/floor", glow.PreviewSource)
	assert.Equal(t, filepath.Join(f.modDir, "scripts", "common.shader"), glow.Source)
	assert.Contains(t, glow.Script, "qer_editorimage textures/extra/floor.tga")

	// The user root overrides the base root.
	assert.Equal(t, filepath.Join(f.userMod, "textures", "base", "wall.png"), s.Source("base/wall"))
	w, h := s.Size("base/wall")
	assert.Equal(t, 128, w)
	assert.Equal(t, 128, h)

	assert.Equal(t, pak.Composite(f.archive, "textures/extra/floor.png"), s.Source("extra/floor"))
	assert.Equal(t, "", s.Source("base/glow"))
	assert.Equal(t, "", s.Source("missing/name"))

	_, ok = s.Lookup("base/nodraw")
	assert.False(t, ok, "records without a preview directive are dropped")
	_, ok = s.Lookup("base/ignored")
	assert.False(t, ok, "only .shader files are scripts")
}

func TestUnsupportedAndCorruptTextures(t *testing.T) {
	f := newFixture(t)
	s := New(Options{})
	s.Load(f.base, f.user, false, nil)

	_, ok := s.Lookup("extra/readme")
	assert.False(t, ok)

	for _, name := range []string{"extra/broken", "extra/comp"} {
		d, ok := s.Lookup(name)
		require.True(t, ok, name)
		tex := d.(*LooseTexture)
		assert.True(t, tex.Unsupported())
		assert.Nil(t, tex.Preview)

		img, w, h := s.ResolvePreview(name)
		assert.Zero(t, w)
		assert.Zero(t, h)
		assert.Equal(t, texture.DefaultPreviewSize, img.Bounds().Dx())
		assert.False(t, s.SizeKnown(name))
	}
}

func TestResolveFollowsOneHop(t *testing.T) {
	f := newFixture(t)
	s := New(Options{})
	s.Load(f.base, f.user, false, nil)

	img, w, h := s.ResolvePreview("base/glow")
	assert.Equal(t, 256, w)
	assert.Equal(t, 128, h)
	assert.Equal(t, image.Rect(0, 0, 128, 64), img.Bounds())
	assert.Equal(t, "256 x 128", s.Resolution("base/glow"))

	// base/chain previews as a shader, which is never followed further.
	_, w, h = s.ResolvePreview("base/chain")
	assert.Zero(t, w)
	assert.Zero(t, h)
	assert.Equal(t, "0 x 0", s.Resolution("base/chain"))

	_, w, h = s.ResolvePreview("no/such")
	assert.Zero(t, w+h)
}

func TestEffectiveScaleAndTransformedPreview(t *testing.T) {
	f := newFixture(t)
	s := New(Options{})
	s.Load(f.base, f.user, false, nil)

	assert.Equal(t, 0.5, s.EffectiveScale("extra/metal"))
	assert.Equal(t, 1.0, s.EffectiveScale("base/wall"))
	assert.Equal(t, 1.0, s.EffectiveScale("base/chain"))
	assert.Equal(t, 1.0, s.EffectiveScale("missing"))

	// floor previews at half scale, wall at full: scales are doubled.
	img := s.PreviewTransformed("extra/floor", "base/wall", 1, 1, 0)
	assert.Equal(t, 256, img.Bounds().Dx())
	assert.Equal(t, 128, img.Bounds().Dy())

	again := s.PreviewTransformed("extra/floor", "base/wall", 1, 1, 0)
	assert.Same(t, img, again)
	hits, _ := s.RenderStats()
	assert.Equal(t, 1, hits)

	plain, _, _ := s.ResolvePreview("extra/floor")
	assert.Same(t, plain, s.PreviewTransformed("extra/floor", "unknown/old", 2, 2, 0))

	replace := s.Placeholder(texture.Replace)
	assert.Equal(t, texture.DefaultPreviewSize, replace.Bounds().Dx())
}

func TestLoadIsNoOpForSameRoots(t *testing.T) {
	f := newFixture(t)
	s := New(Options{})
	require.True(t, s.Load(f.base, f.user, false, nil))

	sink := &countingSink{}
	assert.False(t, s.Load(f.base, f.user, false, sink))
	assert.Zero(t, sink.total+sink.ticks+sink.done)

	writeFile(t, filepath.Join(f.userMod, "textures", "fresh", "new.png"), pngBytes(t, 8, 8))
	_, ok := s.Lookup("fresh/new")
	assert.False(t, ok)

	s.Reload(sink)
	assert.Equal(t, 1, sink.done)
	_, ok = s.Lookup("fresh/new")
	assert.True(t, ok)

	base, user := s.Roots()
	assert.Equal(t, f.base, base)
	assert.Equal(t, f.user, user)
}

func TestMissingRootsAreSkipped(t *testing.T) {
	s := New(Options{})
	assert.True(t, s.Load(filepath.Join(t.TempDir(), "nope"), "", false, nil))
	assert.Empty(t, s.Sources())
	assert.Zero(t, s.Len())
}

func TestScanLogsSkippedFiles(t *testing.T) {
	f := newFixture(t)
	core, logs := observer.New(zapcore.DebugLevel)
	s := New(Options{Logger: zap.New(core)})
	s.Load(f.base, f.user, false, nil)

	_, ok := s.Lookup("base/bad")
	assert.False(t, ok)
	assert.Equal(t, 1, logs.FilterMessage("skipping shader script").Len())

	archives := logs.FilterMessage("skipping archive").All()
	require.Len(t, archives, 1)
	assert.Equal(t, f.broken, archives[0].ContextMap()["path"])

	assert.Equal(t, 1, logs.FilterMessage("overriding descriptor").Len())
}

func TestScanSkipsScriptWithOverlongLine(t *testing.T) {
	base := filepath.Join(t.TempDir(), "base")
	mod := filepath.Join(base, "main")
	writeFile(t, filepath.Join(mod, "scripts", "long.shader"), []byte(
		"textures/base/long\n{\n\tqer_editorimage textures/base/wall\n}\n// "+
			strings.Repeat("x", 2<<20)+"\n"))
	writeFile(t, filepath.Join(mod, "textures", "base", "wall.png"), pngBytes(t, 8, 8))

	core, logs := observer.New(zapcore.DebugLevel)
	s := New(Options{Logger: zap.New(core)})
	s.Load(base, "", false, nil)

	_, ok := s.Lookup("base/long")
	assert.False(t, ok)
	_, ok = s.Lookup("base/wall")
	assert.True(t, ok)

	skipped := logs.FilterMessage("skipping shader script").All()
	require.Len(t, skipped, 1)
	msg, ok := skipped[0].ContextMap()["error"].(string)
	require.True(t, ok)
	assert.Contains(t, msg, "token too long")
}

func TestCustomDecoder(t *testing.T) {
	f := newFixture(t)
	calls := 0
	s := New(Options{
		PreviewSize: 32,
		Decode: func(ext string, data []byte) (image.Image, error) {
			calls++
			return image.NewRGBA(image.Rect(0, 0, 64, 64)), nil
		},
	})
	s.Load(f.base, f.user, false, nil)

	assert.Equal(t, 6, calls)
	img, w, _ := s.ResolvePreview("extra/comp")
	assert.Equal(t, 64, w)
	assert.Equal(t, 32, img.Bounds().Dx())
	assert.Equal(t, 0.5, s.EffectiveScale("extra/comp"))
}

func TestCacheRoundTrip(t *testing.T) {
	f := newFixture(t)
	s := New(Options{})
	s.Load(f.base, f.user, false, nil)

	path := filepath.Join(t.TempDir(), "cache", "assets.bin")
	require.NoError(t, s.SaveCache(path))

	restored := New(Options{})
	require.NoError(t, restored.LoadCache(path))

	assert.Equal(t, s.Sources(), restored.Sources())
	base, user := restored.Roots()
	assert.Equal(t, f.base, base)
	assert.Equal(t, f.user, user)
	assert.Equal(t, s.Len(), restored.Len())
	assert.Equal(t, s.MembersOf("extra"), restored.MembersOf("extra"))

	img, w, h := restored.ResolvePreview("base/glow")
	assert.Equal(t, 256, w)
	assert.Equal(t, 128, h)
	assert.Equal(t, image.Rect(0, 0, 128, 64), img.Bounds())
	assert.Equal(t, 0.5, restored.EffectiveScale("base/glow"))

	d, ok := restored.Lookup("extra/broken")
	require.True(t, ok)
	assert.Nil(t, d.(*LooseTexture).Preview)

	// Same roots after a cache load: nothing to rescan.
	assert.False(t, restored.Load(f.base, f.user, false, nil))
}

func TestCacheErrors(t *testing.T) {
	dir := t.TempDir()
	s := New(Options{})

	err := s.LoadCache(filepath.Join(dir, "missing.bin"))
	assert.True(t, errors.Is(err, ErrNoCache))

	corrupt := filepath.Join(dir, "corrupt.bin")
	writeFile(t, corrupt, []byte("garbage"))
	err = s.LoadCache(corrupt)
	assert.True(t, errors.Is(err, ErrCorruptCache))

	var buf bytes.Buffer
	require.NoError(t, New(Options{}).Serialize(&buf))
	truncated := buf.Bytes()[:buf.Len()/2]
	err = s.Deserialize(bytes.NewReader(truncated))
	assert.True(t, errors.Is(err, ErrCorruptCache))
	assert.Zero(t, s.Len())
}
