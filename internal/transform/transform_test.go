package transform

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

// sizeTable is a Sizer backed by a map.
type sizeTable map[string]Dims

func (s sizeTable) Size(name string) (int, int) {
	d := s[name]
	return d.Width, d.Height
}

func TestMod360(t *testing.T) {
	assert.Equal(t, 0.0, Mod360(0))
	assert.Equal(t, 100.0, Mod360(100))
	assert.Equal(t, 0.0, Mod360(360))
	assert.Equal(t, 270.0, Mod360(-90))
	assert.Equal(t, 30.0, Mod360(750))
}

func TestFaceQuarterTurnSwapsScales(t *testing.T) {
	old := Projection{Rotation: 10, HScale: 2, VScale: 3, HShift: 8, VShift: 4}
	rule := Rule{New: "textures/new/b", HScale: 1, VScale: 1, Rotation: 90}

	p := Face(old, rule, Dims{}, Dims{})
	assert.InDelta(t, 100, p.Rotation, eps)
	assert.InDelta(t, 3, p.HScale, eps)
	assert.InDelta(t, 2, p.VScale, eps)
	// Unknown sizes: shift divided by rule scale on the same axis.
	assert.InDelta(t, 8, p.HShift, eps)
	assert.InDelta(t, 4, p.VShift, eps)
}

func TestFaceRuleScale(t *testing.T) {
	old := Projection{Rotation: 350, HScale: 0.5, VScale: 0.25, HShift: 16, VShift: -8}
	rule := Rule{HScale: 2, VScale: 4, Rotation: 20}

	p := Face(old, rule, Dims{}, Dims{})
	assert.InDelta(t, 10, p.Rotation, eps)
	c, s := weights(20)
	assert.InDelta(t, (c*0.5+s*0.25)*2, p.HScale, eps)
	assert.InDelta(t, (c*0.25+s*0.5)*4, p.VScale, eps)
	assert.InDelta(t, 8, p.HShift, eps)
	assert.InDelta(t, -2, p.VShift, eps)
}

func TestFaceZeroRuleScaleKeepsShift(t *testing.T) {
	p := Face(Projection{HShift: 5, VShift: 7, HScale: 1, VScale: 1},
		Rule{HScale: 0, VScale: 2}, Dims{}, Dims{})
	assert.InDelta(t, 5, p.HShift, eps)
	assert.InDelta(t, 3.5, p.VShift, eps)
}

func TestFaceKnownSizesNormalisesShift(t *testing.T) {
	old := Projection{HShift: 80, VShift: -10, HScale: 1, VScale: 1}
	oldDims := Dims{Width: 64, Height: 32}
	newDims := Dims{Width: 128, Height: 64}

	p := Face(old, Rule{HScale: 1, VScale: 1}, oldDims, newDims)
	assert.InDelta(t, 32, p.HShift, eps)  // frac(80/64)=0.25 → 0.25*128
	assert.InDelta(t, -20, p.VShift, eps) // frac(-10/32)=-0.3125 → *64

	p = Face(old, Rule{HScale: 1, VScale: 1, Rotation: 90}, oldDims, newDims)
	assert.InDelta(t, -40, p.HShift, eps)
	assert.InDelta(t, 16, p.VShift, eps)
}

func TestFaceOneSizeUnknownFallsBack(t *testing.T) {
	old := Projection{HShift: 80, VShift: 10, HScale: 1, VScale: 1}
	p := Face(old, Rule{HScale: 2, VScale: 2}, Dims{Width: 64, Height: 32}, Dims{})
	assert.InDelta(t, 40, p.HShift, eps)
	assert.InDelta(t, 5, p.VShift, eps)
}

func TestPatchCoords(t *testing.T) {
	h, v := PatchCoords(0.5, 1, 90)
	assert.InDelta(t, 1, h, eps)
	assert.InDelta(t, 0.5, v, eps)

	h, v = PatchCoords(0.5, 1, 0)
	assert.InDelta(t, 0.5, h, eps)
	assert.InDelta(t, 1, v, eps)

	h, v = PatchCoords(0, 1, 45)
	assert.InDelta(t, 0.5, h, eps)
	assert.InDelta(t, 0.5, v, eps)
}

func TestFit(t *testing.T) {
	rot := func(f float64) *float64 { return &f }

	tests := []struct {
		name             string
		old, new         Dims
		rotation         *float64
		wantH, wantV, rd float64
	}{
		{"same size", Dims{128, 128}, Dims{128, 128}, nil, 1, 1, 0},
		{"half resolution", Dims{256, 256}, Dims{128, 128}, nil, 2, 2, 0},
		{"landscape to portrait", Dims{256, 128}, Dims{64, 128}, nil, 2, 2, 90},
		{"portrait to landscape", Dims{64, 128}, Dims{256, 128}, nil, 0.5, 0.5, 90},
		// A square target is neither landscape nor portrait.
		{"landscape to square", Dims{256, 128}, Dims{128, 128}, nil, 2, 1, 0},
		{"landscape to landscape", Dims{256, 128}, Dims{512, 256}, nil, 0.5, 0.5, 0},
		{"explicit rotation", Dims{256, 128}, Dims{128, 128}, rot(-270), 1, 2, 90},
		{"unknown old", Dims{}, Dims{128, 128}, nil, 1, 1, 0},
		{"unknown new explicit", Dims{64, 64}, Dims{0, 64}, rot(400), 1, 1, 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, v, r := Fit(tt.old, tt.new, tt.rotation)
			assert.InDelta(t, tt.wantH, h, eps)
			assert.InDelta(t, tt.wantV, v, eps)
			assert.InDelta(t, tt.rd, r, eps)
		})
	}
}

func TestFaceLine(t *testing.T) {
	line := "( 0 0 64 ) ( 64 0 64 ) ( 0 64 64 ) old/a 8 4 10 2 3 0 0 0"
	fields := strings.Fields(line)
	require.Len(t, fields, FaceFields)

	out, ok := FaceLine(fields, Rule{New: "new/b", HScale: 1, VScale: 1, Rotation: 90}, nil)
	require.True(t, ok)
	assert.Equal(t, "( 0 0 64 ) ( 64 0 64 ) ( 0 64 64 ) new/b 8 4 100 3 2 0 0 0", out)

	sizes := sizeTable{"old/a": {64, 32}, "new/b": {128, 64}}
	fields[16], fields[17] = "80", "-10"
	out, ok = FaceLine(fields, Rule{New: "new/b", HScale: 1, VScale: 1}, sizes)
	require.True(t, ok)
	assert.Equal(t, "( 0 0 64 ) ( 64 0 64 ) ( 0 64 64 ) new/b 32 -20 10 2 3 0 0 0", out)

	fields[19] = "wide"
	_, ok = FaceLine(fields, Rule{New: "new/b"}, nil)
	assert.False(t, ok)
}

func TestPatchColumn(t *testing.T) {
	out, ok := PatchColumn("  ( ( 0 0 0 0.5 1 ) ( 64 0 0 1 1 ) )", 90)
	require.True(t, ok)
	assert.Equal(t, "( ( 0 0 0 1 0.5 ) ( 64 0 0 1 1 ) )", out)

	_, ok = PatchColumn("( ( 0 0 0 0.5 ) )", 0)
	assert.False(t, ok)
	_, ok = PatchColumn("( ( 0 0 0 x 1 ) )", 0)
	assert.False(t, ok)
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "100", FormatFloat(100))
	assert.Equal(t, "0.5", FormatFloat(0.5))
	assert.Equal(t, "-20", FormatFloat(-20))
	assert.Equal(t, "0", FormatFloat(-0.0))
}

func TestQuarterTurnsAreExact(t *testing.T) {
	for _, deg := range []float64{0, 90, 180, 270, -90, 450} {
		c, s := weights(deg)
		assert.True(t, (c == 1 && s == 0) || (c == 0 && s == 1), "deg %v", deg)
	}
	h, v, _ := Fit(Dims{256, 128}, Dims{64, 128}, nil)
	assert.Equal(t, 2.0, h)
	assert.Equal(t, 2.0, v)
}
