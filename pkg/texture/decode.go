// Package texture provides image decoding and preview processing for game
// textures.
package texture

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/webp"
)

// Decode errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrCorruptImage      = errors.New("corrupt image data")
)

// Extensions lists the image extensions (without dot) recognised as
// textures. CRN is the engine's compressed format: recognised, never decoded.
var Extensions = []string{"tga", "png", "jpg", "jpeg", "webp", "crn"}

// DecodeFunc decodes raw image bytes. ext is the lowercased file extension
// without the dot.
type DecodeFunc func(ext string, data []byte) (image.Image, error)

// IsTexture reports whether ext (without dot, any case) is a texture
// extension.
func IsTexture(ext string) bool {
	ext = strings.ToLower(ext)
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Decode decodes image data by extension.
func Decode(ext string, data []byte) (image.Image, error) {
	r := bytes.NewReader(data)

	var (
		img image.Image
		err error
	)
	switch strings.ToLower(ext) {
	case "tga":
		img, err = tga.Decode(r)
	case "png":
		img, err = png.Decode(r)
	case "jpg", "jpeg":
		img, err = jpeg.Decode(r)
	case "webp":
		img, err = webp.Decode(r)
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "extension %q", ext)
	}
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "decoding %s", ext), ErrCorruptImage)
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, errors.Wrapf(ErrCorruptImage, "%s image has no pixels", ext)
	}
	return img, nil
}

// EncodeJPEG encodes img as JPEG for compact storage.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, errors.Wrap(err, "encoding jpeg")
	}
	return buf.Bytes(), nil
}

// DecodeJPEG is the inverse of EncodeJPEG.
func DecodeJPEG(data []byte) (image.Image, error) {
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decoding jpeg"), ErrCorruptImage)
	}
	return img, nil
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, errors.Wrap(err, "encoding png")
	}
	return buf.Bytes(), nil
}
