package assets

import (
	"bufio"
	"encoding/gob"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/Faultbox/chameleon/internal/errs"
	"github.com/Faultbox/chameleon/pkg/texture"
)

// Cache errors. Callers treat both as a cold start.
var (
	ErrNoCache      = errors.New("no asset cache")
	ErrCorruptCache = errors.New("corrupt asset cache")
)

// cacheVersion is bumped whenever the cached layout changes.
const cacheVersion = 1

type cacheFile struct {
	Version  int
	Base     string
	User     string
	Sources  []string
	Textures []cachedTexture
	Shaders  []cachedShader
}

type cachedTexture struct {
	Name         string
	Source       string
	Preview      []byte // JPEG, empty when undecodable
	Width        int
	Height       int
	PreviewScale float64
}

type cachedShader struct {
	Name          string
	Source        string
	PreviewSource string
	Script        string
}

// Serialize writes the roots, sources and descriptors to w.
func (s *Store) Serialize(w io.Writer) error {
	file := cacheFile{
		Version: cacheVersion,
		Base:    s.base,
		User:    s.user,
		Sources: s.sources,
	}

	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		switch d := s.entries[name].(type) {
		case *LooseTexture:
			ct := cachedTexture{
				Name:         d.Name,
				Source:       d.Source,
				Width:        d.Width,
				Height:       d.Height,
				PreviewScale: d.PreviewScale,
			}
			if d.Preview != nil {
				data, err := texture.EncodeJPEG(d.Preview, s.opts.JPEGQuality)
				if err != nil {
					return errors.Wrapf(err, "encoding preview of %s", name)
				}
				ct.Preview = data
			}
			file.Textures = append(file.Textures, ct)
		case *DeclaredShader:
			file.Shaders = append(file.Shaders, cachedShader{
				Name:          d.Name,
				Source:        d.Source,
				PreviewSource: d.PreviewSource,
				Script:        d.Script,
			})
		}
	}

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return errors.Wrap(err, "creating zstd writer")
	}
	if err := gob.NewEncoder(zw).Encode(&file); err != nil {
		zw.Close()
		return errs.IO(err, "encoding asset cache")
	}
	if err := zw.Close(); err != nil {
		return errs.IO(err, "flushing asset cache")
	}
	return nil
}

// Deserialize replaces the store's state with a cache read from r. On
// failure the state is left unchanged and the error is marked
// ErrCorruptCache.
func (s *Store) Deserialize(r io.Reader) error {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "creating zstd reader"), ErrCorruptCache)
	}
	defer zr.Close()

	var file cacheFile
	if err := gob.NewDecoder(zr).Decode(&file); err != nil {
		return errors.Mark(errors.Wrap(err, "decoding asset cache"), ErrCorruptCache)
	}
	if file.Version != cacheVersion {
		return errors.Wrapf(ErrCorruptCache, "cache version %d, want %d", file.Version, cacheVersion)
	}

	entries := make(map[string]Descriptor, len(file.Textures)+len(file.Shaders))
	for _, ct := range file.Textures {
		t := &LooseTexture{
			Name:         ct.Name,
			Source:       ct.Source,
			Width:        ct.Width,
			Height:       ct.Height,
			PreviewScale: ct.PreviewScale,
		}
		if len(ct.Preview) > 0 {
			img, err := texture.DecodeJPEG(ct.Preview)
			if err != nil {
				return errors.Mark(errors.Wrapf(err, "preview of %s", ct.Name), ErrCorruptCache)
			}
			t.Preview = img
		}
		entries[t.Name] = t
	}
	for _, cs := range file.Shaders {
		entries[cs.Name] = &DeclaredShader{
			Name:          cs.Name,
			Source:        cs.Source,
			PreviewSource: cs.PreviewSource,
			Script:        cs.Script,
		}
	}

	s.base, s.user, s.loaded = file.Base, file.User, true
	s.sources = file.Sources
	s.entries = entries
	s.rendered.Clear()
	return nil
}

// SaveCache writes the cache file at path, creating its directory.
func (s *Store) SaveCache(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errs.IO(err, "creating cache directory")
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".cache-*")
	if err != nil {
		return errs.IO(err, "creating cache file")
	}
	defer os.Remove(tmp.Name())

	bw := bufio.NewWriter(tmp)
	if err := s.Serialize(bw); err != nil {
		tmp.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		return errs.IO(err, "writing cache file")
	}
	if err := tmp.Close(); err != nil {
		return errs.IO(err, "closing cache file")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errs.IO(err, "replacing cache file %s", path)
	}

	s.log.Info("saved asset cache", zap.String("path", path), zap.Int("names", len(s.entries)))
	return nil
}

// LoadCache reads the cache file at path. A missing file gives ErrNoCache.
func (s *Store) LoadCache(path string) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return errors.Wrapf(ErrNoCache, "%s", path)
	}
	if err != nil {
		return errs.IO(err, "opening cache file %s", path)
	}
	defer f.Close()

	if err := s.Deserialize(bufio.NewReader(f)); err != nil {
		return errors.Wrapf(err, "%s", path)
	}
	s.log.Info("loaded asset cache", zap.String("path", path), zap.Int("names", len(s.entries)))
	return nil
}
