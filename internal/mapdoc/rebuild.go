package mapdoc

import (
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/chameleon/internal/errs"
	"github.com/Faultbox/chameleon/internal/transform"
)

// Rules looks up the substitution rule for an old shader name.
type Rules interface {
	Transform(old string) (transform.Rule, bool)
}

// Stats counts what a rebuild replaced.
type Stats struct {
	Faces   int
	Patches int
}

// Rebuild re-emits the map with rules applied. Lines that no rule touches
// are copied byte for byte, line terminators included. sizes may be nil,
// in which case shifts are divided by the rule scale.
func (d *Document) Rebuild(rules Rules, sizes transform.Sizer) (string, Stats) {
	var (
		b        strings.Builder
		stats    Stats
		inPatch  bool
		patchRot float64
	)
	b.Grow(len(d.text))

	for _, l := range splitLines(d.text) {
		out := l.body
		words := strings.Fields(l.body)

		switch {
		case len(words) == transform.FaceFields && hasRule(rules, words[transform.FaceShaderField]):
			rule, _ := rules.Transform(words[transform.FaceShaderField])
			if face, ok := transform.FaceLine(words, rule, sizes); ok {
				out = face
				stats.Faces++
			} else {
				d.log.Debug("keeping malformed brush face", zap.String("line", l.body))
			}

		case len(words) == 1 && hasRule(rules, words[0]):
			rule, _ := rules.Transform(words[0])
			inPatch = true
			patchRot = rule.Rotation
			out = rule.New
			stats.Patches++

		case inPatch:
			if len(words) == 1 || len(words) == 7 {
				if words[0] == ")" || words[0] == "}" {
					inPatch = false
				}
				break
			}
			if col, ok := transform.PatchColumn(l.body, patchRot); ok {
				out = col
			}
		}

		b.WriteString(out)
		b.WriteString(l.eol)
	}

	return b.String(), stats
}

func hasRule(rules Rules, shader string) bool {
	if rules == nil {
		return false
	}
	_, ok := rules.Transform(shader)
	return ok
}

// Open reads and parses the map at path. On failure the current document
// is left unchanged.
func (d *Document) Open(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errs.IO(err, "opening map %s", path)
	}
	d.Parse(string(data))
	d.path = path
	d.log.Info("opened map",
		zap.String("path", path),
		zap.Int("shaders", d.Distinct()),
		zap.Int("uses", d.Total()))
	return nil
}

// Save rebuilds the map with rules applied and writes it to path.
func (d *Document) Save(path string, rules Rules, sizes transform.Sizer) (Stats, error) {
	text, stats := d.Rebuild(rules, sizes)
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return Stats{}, errs.IO(err, "writing map %s", path)
	}
	d.log.Info("saved map",
		zap.String("path", path),
		zap.Int("faces", stats.Faces),
		zap.Int("patches", stats.Patches))
	return stats, nil
}
