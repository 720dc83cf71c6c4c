package formats

import (
	"bufio"
	"strings"

	"github.com/cockroachdb/errors"
)

// TexturePrefix opens a shader record and namespaces texture paths.
const TexturePrefix = "textures/"

// ErrNotASCII is returned for shader scripts containing non-ASCII bytes.
var ErrNotASCII = errors.New("shader script is not ASCII")

// ShaderDecl is one shader declared in a shader script.
type ShaderDecl struct {
	Name          string // without the textures/ prefix
	PreviewSource string // texture the shader previews as, same namespace as Name
	Text          string // raw record text, comments stripped
}

// previewKind ranks the directives a preview source can come from.
type previewKind int

const (
	kindMap previewKind = iota
	kindDiffuseMap
	kindEditorImage
	numKinds
)

// DecodeASCII validates that data is pure ASCII and returns it as a string.
func DecodeASCII(data []byte) (string, error) {
	for i, b := range data {
		if b >= 0x80 {
			return "", errors.Wrapf(ErrNotASCII, "byte 0x%02x at offset %d", b, i)
		}
	}
	return string(data), nil
}

// ParseShaderScript splits a .shader file into records and returns the
// shaders that declare a usable preview image. A record starts at every
// line beginning with "textures/" and runs to the next such line. A line
// longer than 1 MiB fails the whole script.
func ParseShaderScript(content string) ([]ShaderDecl, error) {
	var (
		decls  []ShaderDecl
		record []string
	)
	flush := func() {
		if record != nil {
			if decl, ok := parseShaderRecord(record); ok {
				decls = append(decls, decl)
			}
		}
	}

	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)
		if (line != "" && trimmed == "") || strings.HasPrefix(trimmed, "//") {
			continue
		}
		if i := strings.Index(line, "//"); i >= 0 {
			line = line[:i]
		}

		if strings.HasPrefix(line, TexturePrefix) {
			flush()
			record = []string{line}
		} else if record != nil {
			record = append(record, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scanning shader script")
	}
	flush()

	return decls, nil
}

// parseShaderRecord resolves one record. Each directive kind remembers its
// latest value; after every line the highest-ranked kind seen so far wins.
func parseShaderRecord(lines []string) (ShaderDecl, bool) {
	name := stripNamespace(lines[0])
	if f := strings.Fields(name); len(f) > 0 {
		name = f[0]
	}
	if name == "" {
		return ShaderDecl{}, false
	}

	var (
		seen    [numKinds]string
		present [numKinds]bool
		preview string
	)
	for _, raw := range lines[1:] {
		line := strings.TrimSpace(raw)
		lower := strings.ToLower(line)

		switch {
		case strings.HasPrefix(lower, "qer_editorimage"):
			seen[kindEditorImage], present[kindEditorImage] = directiveValue(line), true
		case strings.HasPrefix(lower, "diffusemap"):
			seen[kindDiffuseMap], present[kindDiffuseMap] = directiveValue(line), true
		case strings.HasPrefix(lower, "map") && strings.Contains(line, TexturePrefix):
			seen[kindMap], present[kindMap] = directiveValue(line), true
		}

		for k := numKinds - 1; k >= 0; k-- {
			if present[k] {
				preview = seen[k]
				break
			}
		}
	}

	if preview == "" {
		return ShaderDecl{}, false
	}
	return ShaderDecl{
		Name:          name,
		PreviewSource: trimExtension(stripNamespace(preview)),
		Text:          strings.Join(lines, "\n"),
	}, true
}

// directiveValue returns everything after the directive keyword. A bare
// keyword is its own value.
func directiveValue(line string) string {
	i := strings.IndexAny(line, " \t")
	if i < 0 {
		return line
	}
	return strings.TrimSpace(line[i:])
}

// stripNamespace drops the first path segment.
func stripNamespace(p string) string {
	if i := strings.Index(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}

func trimExtension(p string) string {
	if i := strings.LastIndex(p, "."); i >= 0 {
		return p[:i]
	}
	return p
}
