package transform

import (
	"strconv"
	"strings"
)

// Map record layout.
const (
	FaceFields      = 24 // tokens in a brush face line
	FaceShaderField = 15 // index of the shader name in a brush face
	patchGroupLen   = 7  // "(" x y z h v ")"
)

// FormatFloat renders f in the shortest decimal form that parses back to
// the same value.
func FormatFloat(f float64) string {
	if f == 0 {
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ParseProjection reads the five projection fields following the shader
// name of a 24-field brush face.
func ParseProjection(fields []string) (Projection, bool) {
	if len(fields) != FaceFields {
		return Projection{}, false
	}
	var vals [5]float64
	for i := range vals {
		v, err := strconv.ParseFloat(fields[FaceShaderField+1+i], 64)
		if err != nil {
			return Projection{}, false
		}
		vals[i] = v
	}
	return Projection{
		HShift:   vals[0],
		VShift:   vals[1],
		Rotation: vals[2],
		HScale:   vals[3],
		VScale:   vals[4],
	}, true
}

// FaceLine rewrites a tokenised brush face for rule. Fields are re-joined
// with single spaces. It reports false when the projection fields are not
// numeric.
func FaceLine(fields []string, rule Rule, sizes Sizer) (string, bool) {
	old, ok := ParseProjection(fields)
	if !ok {
		return "", false
	}
	oldName := fields[FaceShaderField]
	p := Face(old, rule, DimsOf(sizes, oldName), DimsOf(sizes, rule.New))

	out := make([]string, 0, FaceFields)
	out = append(out, fields[:FaceShaderField]...)
	out = append(out,
		rule.New,
		FormatFloat(p.HShift),
		FormatFloat(p.VShift),
		FormatFloat(p.Rotation),
		FormatFloat(p.HScale),
		FormatFloat(p.VScale),
	)
	out = append(out, fields[FaceShaderField+6:]...)
	return strings.Join(out, " "), true
}

// PatchColumn rewrites one column line of a patch control-point matrix,
// "( ( x y z h v ) ( x y z h v ) ... )". Positions are kept verbatim. It
// reports false when the line is not a well-formed column.
func PatchColumn(line string, ruleRotation float64) (string, bool) {
	words := strings.Fields(line)
	if len(words) < 2 {
		return "", false
	}
	inner := words[1 : len(words)-1]
	if len(inner) == 0 || len(inner)%patchGroupLen != 0 {
		return "", false
	}

	var b strings.Builder
	b.WriteString("( ")
	for i := 0; i < len(inner); i += patchGroupLen {
		g := inner[i : i+patchGroupLen]
		h, err := strconv.ParseFloat(g[4], 64)
		if err != nil {
			return "", false
		}
		v, err := strconv.ParseFloat(g[5], 64)
		if err != nil {
			return "", false
		}
		h, v = PatchCoords(h, v, ruleRotation)

		b.WriteString("( ")
		b.WriteString(g[1])
		b.WriteByte(' ')
		b.WriteString(g[2])
		b.WriteByte(' ')
		b.WriteString(g[3])
		b.WriteByte(' ')
		b.WriteString(FormatFloat(h))
		b.WriteByte(' ')
		b.WriteString(FormatFloat(v))
		b.WriteString(" ) ")
	}
	b.WriteString(")")
	return b.String(), true
}
