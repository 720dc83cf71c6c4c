package rules

import (
	"bufio"
	"bytes"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.uber.org/zap"

	"github.com/Faultbox/chameleon/internal/errs"
	"github.com/Faultbox/chameleon/internal/transform"
)

// FileExtension is the conventional extension of rules files.
const FileExtension = ".rules"

// Header lines written at the top of every rules file.
const (
	headerTitle  = "# This is a rules file for Chameleon."
	headerFormat = "# <old shader> <new shader> <horizontal scale> <vertical scale> <rotation>"
)

// Read replaces the rules with those read from r and returns the number of
// malformed lines that were skipped. Comment lines starting with "#" or
// "//" and blank lines are ignored.
func (s *Set) Read(r io.Reader) (int, error) {
	parsed := orderedmap.New[string, *Rule]()
	skipped := 0

	reader := bufio.NewReader(r)
	lineNo := 0
	for {
		raw, readErr := reader.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return skipped, errs.IO(readErr, "reading rules")
		}
		if raw == "" && readErr == io.EOF {
			break
		}
		lineNo++

		line := strings.TrimSpace(raw)
		if line != "" && !strings.HasPrefix(line, "#") && !strings.HasPrefix(line, "//") {
			rule, err := parseLine(line)
			if err != nil {
				skipped++
				s.log.Debug("skipping rule line", zap.Int("line", lineNo), zap.Error(err))
			} else {
				parsed.Set(rule.Old, rule)
			}
		}
		if readErr == io.EOF {
			break
		}
	}

	s.rules = parsed
	return skipped, nil
}

// Parse replaces the rules with those in text. See Read.
func (s *Set) Parse(text string) int {
	// Reading from a string cannot fail.
	skipped, _ := s.Read(strings.NewReader(text))
	return skipped
}

func parseLine(line string) (*Rule, error) {
	words := strings.Fields(line)
	if len(words) != 5 {
		return nil, errs.Validation("expected 5 fields, got %d", len(words))
	}
	var vals [3]float64
	for i := range vals {
		v, err := strconv.ParseFloat(words[2+i], 64)
		if err != nil {
			return nil, errs.Validation("field %d is not a number: %q", 3+i, words[2+i])
		}
		vals[i] = v
	}
	return &Rule{
		Old:      words[0],
		New:      words[1],
		HScale:   vals[0],
		VScale:   vals[1],
		Rotation: transform.Mod360(vals[2]),
	}, nil
}

// Write writes the rules in insertion order, preceded by the header lines.
func (s *Set) Write(w io.Writer) error {
	var buf bytes.Buffer
	buf.WriteString(headerTitle + "\n")
	buf.WriteString(headerFormat + "\n")
	for _, r := range s.Rules() {
		buf.WriteString(strings.Join([]string{
			r.Old,
			r.New,
			transform.FormatFloat(r.HScale),
			transform.FormatFloat(r.VScale),
			transform.FormatFloat(r.Rotation),
		}, " "))
		buf.WriteByte('\n')
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return errs.IO(err, "writing rules")
	}
	return nil
}

// ReadFile replaces the rules with those in the file at path. A missing
// file reads as an empty set.
func (s *Set) ReadFile(path string) (int, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		s.log.Debug("rules file does not exist", zap.String("path", path))
		s.Clear()
		return 0, nil
	}
	if err != nil {
		return 0, errs.IO(err, "opening rules file %s", path)
	}
	defer f.Close()

	skipped, err := s.Read(f)
	if err != nil {
		return skipped, errors.Wrapf(err, "%s", path)
	}
	s.log.Info("read rules",
		zap.String("path", path),
		zap.Int("rules", s.Len()),
		zap.Int("skipped", skipped))
	return skipped, nil
}

// WriteFile writes the rules to the file at path.
func (s *Set) WriteFile(path string) error {
	var buf bytes.Buffer
	if err := s.Write(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return errs.IO(err, "writing rules file %s", path)
	}
	s.log.Info("wrote rules", zap.String("path", path), zap.Int("rules", s.Len()))
	return nil
}
