package assets

import (
	"image"
	"strings"
)

// Descriptor is either a *LooseTexture or a *DeclaredShader.
type Descriptor interface {
	descriptorName() string
	sourcePath() string
}

// LooseTexture is an image file under textures/.
type LooseTexture struct {
	Name         string
	Source       string      // file path, or "archive:member"
	Preview      image.Image // nil when the image could not be decoded
	Width        int         // 0 when the image could not be decoded
	Height       int
	PreviewScale float64 // preview width / Width, 1 when unknown
}

// DeclaredShader is a shader declared in a .shader script.
type DeclaredShader struct {
	Name          string
	Source        string // script path, or "archive:member"
	PreviewSource string // name the shader previews as
	Script        string // record text as declared
}

func (t *LooseTexture) descriptorName() string { return t.Name }
func (t *LooseTexture) sourcePath() string     { return t.Source }

func (s *DeclaredShader) descriptorName() string { return s.Name }
func (s *DeclaredShader) sourcePath() string     { return s.Source }

// Unsupported reports whether the texture exists but has no decoded image.
func (t *LooseTexture) Unsupported() bool {
	return t.Width == 0 && t.Height == 0
}

// SetOf returns the first path segment of a shader name.
func SetOf(name string) string {
	set, _, _ := strings.Cut(name, "/")
	return set
}
