// Package transform recomputes texture projections when one shader is
// substituted for another.
//
// All angles in the public API are in degrees. A rotation θ blends the
// horizontal and vertical components with weights cos²θ and sin²θ, so
// 0° keeps them, 90° swaps them and intermediate angles mix them.
package transform

import (
	"math"
)

// Sizer reports the pixel dimensions a shader name resolves to. Zero
// dimensions mean the size is unknown.
type Sizer interface {
	Size(name string) (width, height int)
}

// Rule is the part of a substitution rule the transforms need.
type Rule struct {
	New      string
	HScale   float64
	VScale   float64
	Rotation float64
}

// Projection is the texture projection of one brush face.
type Projection struct {
	HShift   float64
	VShift   float64
	Rotation float64
	HScale   float64
	VScale   float64
}

// Dims are pixel dimensions; zero means unknown.
type Dims struct {
	Width  int
	Height int
}

// Known reports whether both dimensions are positive.
func (d Dims) Known() bool {
	return d.Width > 0 && d.Height > 0
}

// Landscape reports whether the texture is wider than tall.
func (d Dims) Landscape() bool {
	return d.Width > d.Height
}

// Portrait reports whether the texture is taller than wide.
func (d Dims) Portrait() bool {
	return d.Width < d.Height
}

// DimsOf looks up name through sizes.
func DimsOf(sizes Sizer, name string) Dims {
	if sizes == nil {
		return Dims{}
	}
	w, h := sizes.Size(name)
	return Dims{Width: w, Height: h}
}

// Mod360 reduces deg into [0, 360), also for negative input.
func Mod360(deg float64) float64 {
	r := math.Mod(deg, 360)
	if r < 0 {
		r += 360
	}
	if r >= 360 {
		r = 0
	}
	return r
}

// sincos returns sin and cos of deg, exact on quarter turns.
func sincos(deg float64) (sin, cos float64) {
	switch Mod360(deg) {
	case 0:
		return 0, 1
	case 90:
		return 1, 0
	case 180:
		return 0, -1
	case 270:
		return -1, 0
	}
	return math.Sincos(deg * math.Pi / 180)
}

// weights returns cos²θ and sin²θ for deg.
func weights(deg float64) (c, s float64) {
	sin, cos := sincos(deg)
	return cos * cos, sin * sin
}

// blend mixes a pair with the rotation weights.
func blend(c, s, h, v float64) (float64, float64) {
	return c*h + s*v, c*v + s*h
}

// frac drops the integer part, keeping the sign.
func frac(f float64) float64 {
	_, fr := math.Modf(f)
	return fr
}

// Face computes the projection of a brush face after applying rule.
// oldDims and newDims are the pixel sizes of the old and new shader;
// pixel-accurate shift is used only when both are known, otherwise the
// shift is divided by the rule scale.
func Face(old Projection, rule Rule, oldDims, newDims Dims) Projection {
	c, s := weights(rule.Rotation)

	hScale, vScale := blend(c, s, old.HScale, old.VScale)
	out := Projection{
		Rotation: Mod360(old.Rotation + rule.Rotation),
		HScale:   hScale * rule.HScale,
		VScale:   vScale * rule.VScale,
	}

	if oldDims.Known() && newDims.Known() {
		hRatio := frac(old.HShift / float64(oldDims.Width))
		vRatio := frac(old.VShift / float64(oldDims.Height))
		hRatio, vRatio = blend(c, s, hRatio, vRatio)
		out.HShift = frac(hRatio) * float64(newDims.Width)
		out.VShift = frac(vRatio) * float64(newDims.Height)
	} else {
		out.HShift = divideShift(old.HShift, rule.HScale)
		out.VShift = divideShift(old.VShift, rule.VScale)
	}
	return out
}

// divideShift keeps the shift when the scale would divide by zero.
func divideShift(shift, scale float64) float64 {
	if scale == 0 {
		return shift
	}
	return shift / scale
}

// PatchCoords blends the texture coordinates of one patch vertex. Only
// the rule rotation applies; patch coordinates are not rescaled.
func PatchCoords(h, v, ruleRotation float64) (float64, float64) {
	c, s := weights(ruleRotation)
	return blend(c, s, h, v)
}

// Fit derives rule scales that keep texel density when replacing a texture
// of oldDims with one of newDims. With rotation nil, 90° is chosen when one
// texture is landscape and the other portrait (squares count as neither),
// otherwise 0°. An explicit rotation is reduced modulo 360. Unknown
// dimensions give unit scales.
func Fit(oldDims, newDims Dims, rotation *float64) (hScale, vScale, rot float64) {
	known := oldDims.Known() && newDims.Known()

	switch {
	case rotation != nil:
		rot = Mod360(*rotation)
	case known && (oldDims.Landscape() && newDims.Portrait() ||
		oldDims.Portrait() && newDims.Landscape()):
		rot = 90
	default:
		rot = 0
	}

	if !known {
		return 1, 1, rot
	}

	sin, cos := sincos(rot)
	ow, oh := float64(oldDims.Width), float64(oldDims.Height)
	hScale = math.Abs((ow*cos + oh*sin) / float64(newDims.Width))
	vScale = math.Abs((oh*cos + ow*sin) / float64(newDims.Height))
	return hScale, vScale, rot
}
