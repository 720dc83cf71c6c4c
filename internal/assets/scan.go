package assets

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/chameleon/internal/errs"
	"github.com/Faultbox/chameleon/pkg/formats"
	"github.com/Faultbox/chameleon/pkg/pak"
	"github.com/Faultbox/chameleon/pkg/texture"
)

// Layout of a mod directory or package.
const (
	scriptsDir   = "scripts/"
	shaderSuffix = ".shader"
)

// enumerateSources lists, for each existing root, every mod directory in
// name order followed by the package archives and directories inside it.
func (s *Store) enumerateSources(roots ...string) []string {
	var sources []string
	for _, root := range roots {
		if root == "" {
			continue
		}
		root = filepath.Clean(expandHome(root))
		mods, err := os.ReadDir(root)
		if err != nil {
			s.log.Debug("skipping root", zap.String("root", root), zap.Error(err))
			continue
		}

		for _, mod := range mods {
			if !isDir(root, mod) {
				continue
			}
			modPath := filepath.Join(root, mod.Name())
			sources = append(sources, modPath)

			entries, err := os.ReadDir(modPath)
			if err != nil {
				s.log.Warn("cannot list mod directory", zap.String("path", modPath), zap.Error(err))
				continue
			}
			for _, e := range entries {
				if pak.IsSource(e.Name()) {
					sources = append(sources, filepath.Join(modPath, e.Name()))
				}
			}
		}
	}
	return sources
}

// isDir follows symlinks when checking for a directory.
func isDir(parent string, e fs.DirEntry) bool {
	if e.IsDir() {
		return true
	}
	if e.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(parent, e.Name()))
	return err == nil && info.IsDir()
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// scan accumulates descriptors from sources. Later additions replace
// earlier ones with the same name.
type scan struct {
	opts     Options
	log      *zap.Logger
	entries  map[string]Descriptor
	textures int
	shaders  int
}

func newScan(opts Options) *scan {
	return &scan{
		opts:    opts,
		log:     opts.Logger,
		entries: make(map[string]Descriptor),
	}
}

func (sc *scan) source(p string) {
	info, err := os.Stat(p)
	switch {
	case err != nil:
		sc.log.Warn("skipping source", zap.String("path", p), zap.Error(errs.IO(err, "stat")))
	case info.IsDir():
		sc.directory(p)
	default:
		if err := sc.archive(p); err != nil {
			sc.log.Warn("skipping archive", zap.String("path", p), zap.Error(err))
		}
	}
}

// directory scans scripts/*.shader and textures/** of a mod or package
// directory.
func (sc *scan) directory(root string) {
	scripts := filepath.Join(root, "scripts")
	if entries, err := os.ReadDir(scripts); err == nil {
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), shaderSuffix) {
				continue
			}
			p := filepath.Join(scripts, e.Name())
			data, err := os.ReadFile(p)
			if err != nil {
				sc.log.Warn("cannot read shader script", zap.String("path", p), zap.Error(err))
				continue
			}
			sc.script(p, data)
		}
	}

	textures := filepath.Join(root, "textures")
	err := filepath.WalkDir(textures, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipDir
			}
			sc.log.Warn("cannot walk textures", zap.String("path", p), zap.Error(err))
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := pak.Ext(p)
		if !texture.IsTexture(ext) {
			return nil
		}
		rel, err := filepath.Rel(textures, p)
		if err != nil {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			sc.log.Warn("cannot read texture", zap.String("path", p), zap.Error(err))
			return nil
		}
		sc.texture(textureName(filepath.ToSlash(rel)), p, ext, data)
		return nil
	})
	if err != nil {
		sc.log.Warn("texture walk failed", zap.String("path", textures), zap.Error(err))
	}
}

// archive scans the textures and shader scripts of a package archive.
func (sc *scan) archive(p string) error {
	a, err := pak.Open(p)
	if err != nil {
		return errs.Format(err, "opening package")
	}
	defer a.Close()

	return a.Walk(func(member string, read func() ([]byte, error)) error {
		switch {
		case strings.HasPrefix(member, formats.TexturePrefix):
			ext := pak.Ext(member)
			if !texture.IsTexture(ext) {
				return nil
			}
			data, err := read()
			if err != nil {
				sc.log.Warn("cannot read archive member",
					zap.String("archive", p), zap.String("member", member), zap.Error(err))
				return nil
			}
			name := textureName(strings.TrimPrefix(member, formats.TexturePrefix))
			sc.texture(name, pak.Composite(p, member), ext, data)

		case strings.HasPrefix(member, scriptsDir) && strings.HasSuffix(member, shaderSuffix):
			data, err := read()
			if err != nil {
				sc.log.Warn("cannot read archive member",
					zap.String("archive", p), zap.String("member", member), zap.Error(err))
				return nil
			}
			sc.script(pak.Composite(p, member), data)
		}
		return nil
	})
}

// textureName drops the extension of a path relative to textures/.
func textureName(rel string) string {
	return strings.TrimSuffix(rel, path.Ext(rel))
}

func (sc *scan) script(source string, data []byte) {
	content, err := formats.DecodeASCII(data)
	if err != nil {
		sc.log.Warn("skipping shader script",
			zap.String("path", source), zap.Error(errs.Format(err, "decoding")))
		return
	}
	decls, err := formats.ParseShaderScript(content)
	if err != nil {
		sc.log.Warn("skipping shader script",
			zap.String("path", source), zap.Error(errs.Format(err, "parsing")))
		return
	}
	for _, decl := range decls {
		sc.add(&DeclaredShader{
			Name:          decl.Name,
			Source:        source,
			PreviewSource: decl.PreviewSource,
			Script:        decl.Text,
		})
		sc.shaders++
	}
}

func (sc *scan) texture(name, source, ext string, data []byte) {
	t := &LooseTexture{Name: name, Source: source, PreviewScale: 1}

	img, err := sc.opts.Decode(ext, data)
	if err != nil {
		sc.log.Debug("texture not decodable",
			zap.String("path", source), zap.Error(errs.Decode(err, "decoding")))
	} else {
		b := img.Bounds()
		t.Width, t.Height = b.Dx(), b.Dy()
		preview := texture.Thumbnail(img, sc.opts.PreviewSize)
		t.Preview = preview
		if pw := preview.Bounds().Dx(); pw > 0 && t.Width > 0 {
			t.PreviewScale = float64(pw) / float64(t.Width)
		}
	}

	sc.add(t)
	sc.textures++
}

func (sc *scan) add(d Descriptor) {
	name := d.descriptorName()
	if prev, ok := sc.entries[name]; ok {
		sc.log.Debug("overriding descriptor",
			zap.String("name", name),
			zap.String("previous", prev.sourcePath()),
			zap.String("source", d.sourcePath()))
	}
	sc.entries[name] = d
}
