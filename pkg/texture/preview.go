package texture

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
)

// DefaultPreviewSize is the edge length of preview thumbnails in pixels.
const DefaultPreviewSize = 128

// maxTransformedEdge bounds the output of Transformed so extreme rule
// scales cannot allocate unbounded rasters.
const maxTransformedEdge = 4096

// Thumbnail scales img to fit inside a size×size box, keeping the aspect
// ratio. Images smaller than the box are scaled up.
func Thumbnail(img image.Image, size int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 || size <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}

	scale := math.Min(float64(size)/float64(w), float64(size)/float64(h))
	tw := int(math.Round(float64(w) * scale))
	th := int(math.Round(float64(h) * scale))
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Placeholder identifies a synthetic preview shown instead of a texture.
type Placeholder int

// Placeholder kinds.
const (
	NotFound    Placeholder = iota // name or preview source missing
	Unsupported                    // texture present, format not decodable
	Replace                        // no replacement chosen yet
)

// String returns the caption drawn on the placeholder.
func (p Placeholder) String() string {
	switch p {
	case NotFound:
		return "NOT FOUND"
	case Unsupported:
		return "UNSUPPORTED"
	case Replace:
		return "REPLACE"
	default:
		return "?"
	}
}

func (p Placeholder) color() color.RGBA {
	switch p {
	case NotFound:
		return color.RGBA{R: 255, A: 255}
	case Unsupported:
		return color.RGBA{R: 255, G: 255, A: 255}
	default:
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
}

// Image renders the placeholder: caption centred on black.
func (p Placeholder) Image(size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	caption := p.String()
	width := font.MeasureString(face, caption).Round()
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(p.color()),
		Face: face,
		Dot:  fixed.P((size-width)/2, size/2+face.Ascent/2),
	}
	d.DrawString(caption)
	return img
}

// Transformed scales img by (h, v) and then rotates it by rot degrees
// (clockwise on screen). The output is sized to the rotated bounding box.
// Degenerate parameters return img unchanged.
func Transformed(img image.Image, h, v, rot float64) image.Image {
	b := img.Bounds()
	if !isFinite(h) || !isFinite(v) || !isFinite(rot) || h <= 0 || v <= 0 {
		return img
	}

	rad := rot * math.Pi / 180
	sin, cos := math.Sincos(rad)
	a, bb := cos*h, -sin*v
	d, e := sin*h, cos*v

	w, hh := float64(b.Dx()), float64(b.Dy())
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range [][2]float64{{0, 0}, {w, 0}, {0, hh}, {w, hh}} {
		x := a*c[0] + bb*c[1]
		y := d*c[0] + e*c[1]
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}

	dw := int(math.Ceil(maxX - minX))
	dh := int(math.Ceil(maxY - minY))
	if dw < 1 || dh < 1 || dw > maxTransformedEdge || dh > maxTransformedEdge {
		return img
	}

	// Source coordinates are relative to b.Min.
	tx := -minX - a*float64(b.Min.X) - bb*float64(b.Min.Y)
	ty := -minY - d*float64(b.Min.X) - e*float64(b.Min.Y)
	m := f64.Aff3{
		a, bb, tx,
		d, e, ty,
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.BiLinear.Transform(dst, m, img, b, draw.Src, nil)
	return dst
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
