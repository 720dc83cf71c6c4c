// Package mapdoc loads .map sources, counts the shaders they use and
// rebuilds them with substitution rules applied.
package mapdoc

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/chameleon/internal/transform"
)

// Document is a parsed map source. The raw text is kept for rebuilding.
type Document struct {
	path   string
	text   string
	counts map[string]int
	order  []string       // row -> shader
	rows   map[string]int // shader -> row
	log    *zap.Logger
}

// New creates an empty document. A nil logger discards output.
func New(log *zap.Logger) *Document {
	if log == nil {
		log = zap.NewNop()
	}
	return &Document{
		counts: make(map[string]int),
		rows:   make(map[string]int),
		log:    log,
	}
}

// Parse replaces the document with text and recounts shader usage. A line
// of 24 fields is a brush face and contributes its shader field; a line of
// a single field containing "/" names the shader of a patch.
func (d *Document) Parse(text string) {
	d.text = text
	d.counts = make(map[string]int)

	for _, l := range splitLines(text) {
		words := strings.Fields(l.body)
		var shader string
		switch {
		case len(words) == transform.FaceFields:
			shader = words[transform.FaceShaderField]
		case len(words) == 1 && strings.Contains(words[0], "/"):
			shader = words[0]
		default:
			continue
		}
		d.counts[shader]++
	}
	d.reorder()
}

// reorder sorts shaders by count descending, then name descending.
func (d *Document) reorder() {
	d.order = make([]string, 0, len(d.counts))
	for name := range d.counts {
		d.order = append(d.order, name)
	}
	sort.Slice(d.order, func(i, j int) bool {
		a, b := d.order[i], d.order[j]
		if d.counts[a] != d.counts[b] {
			return d.counts[a] > d.counts[b]
		}
		return a > b
	})

	d.rows = make(map[string]int, len(d.order))
	for i, name := range d.order {
		d.rows[name] = i
	}
}

// Path returns the file the document was opened from, if any.
func (d *Document) Path() string {
	return d.path
}

// Text returns the raw map source.
func (d *Document) Text() string {
	return d.text
}

// ShaderAt returns the shader displayed at row.
func (d *Document) ShaderAt(row int) (string, bool) {
	if row < 0 || row >= len(d.order) {
		return "", false
	}
	return d.order[row], true
}

// RowOf returns the display row of shader.
func (d *Document) RowOf(shader string) (int, bool) {
	row, ok := d.rows[shader]
	return row, ok
}

// Count returns how many faces and patches use shader.
func (d *Document) Count(shader string) int {
	return d.counts[shader]
}

// Distinct returns the number of distinct shaders in use.
func (d *Document) Distinct() int {
	return len(d.order)
}

// Shaders returns the shaders in display order.
func (d *Document) Shaders() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Total returns the number of counted faces and patches.
func (d *Document) Total() int {
	total := 0
	for _, n := range d.counts {
		total += n
	}
	return total
}

// line is one line of text with its terminator kept apart.
type line struct {
	body string
	eol  string // "\n", "\r\n" or "" for an unterminated last line
}

func splitLines(text string) []line {
	var lines []line
	for len(text) > 0 {
		i := strings.IndexByte(text, '\n')
		if i < 0 {
			lines = append(lines, line{body: text})
			break
		}
		body, eol := text[:i], "\n"
		if strings.HasSuffix(body, "\r") {
			body, eol = body[:len(body)-1], "\r\n"
		}
		lines = append(lines, line{body: body, eol: eol})
		text = text[i+1:]
	}
	return lines
}
