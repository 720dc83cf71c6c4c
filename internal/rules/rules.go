// Package rules holds the ordered set of shader substitution rules and
// reads and writes rules files.
package rules

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.uber.org/zap"

	"github.com/Faultbox/chameleon/internal/transform"
)

// Rule replaces every use of Old with New, with scale and rotation applied
// on top of the existing projection.
type Rule struct {
	Old      string
	New      string
	HScale   float64
	VScale   float64
	Rotation float64 // degrees in [0, 360)
}

// Transform returns the part of the rule the projection transforms use.
func (r *Rule) Transform() transform.Rule {
	return transform.Rule{
		New:      r.New,
		HScale:   r.HScale,
		VScale:   r.VScale,
		Rotation: r.Rotation,
	}
}

// Set is an insertion-ordered mapping from old shader name to rule.
// Replacing an existing rule keeps its position.
type Set struct {
	rules *orderedmap.OrderedMap[string, *Rule]
	log   *zap.Logger
}

// New creates an empty rule set. A nil logger discards output.
func New(log *zap.Logger) *Set {
	if log == nil {
		log = zap.NewNop()
	}
	return &Set{
		rules: orderedmap.New[string, *Rule](),
		log:   log,
	}
}

// Add inserts or replaces the rule for old and fits its scales and
// rotation to the two textures' dimensions.
func (s *Set) Add(old, newShader string, sizes transform.Sizer) *Rule {
	r := &Rule{Old: old, New: newShader, HScale: 1, VScale: 1}
	s.rules.Set(old, r)
	s.fit(r, sizes, nil)
	return r
}

// SetHScale sets the horizontal scale of an existing rule.
func (s *Set) SetHScale(old string, v float64) {
	if r, ok := s.rules.Get(old); ok {
		r.HScale = v
	}
}

// SetVScale sets the vertical scale of an existing rule.
func (s *Set) SetVScale(old string, v float64) {
	if r, ok := s.rules.Get(old); ok {
		r.VScale = v
	}
}

// SetRotation sets an explicit rotation on an existing rule and refits its
// scales for that rotation.
func (s *Set) SetRotation(old string, deg float64, sizes transform.Sizer) {
	if r, ok := s.rules.Get(old); ok {
		s.fit(r, sizes, &deg)
	}
}

// AutoFit recomputes rotation and scales of an existing rule from the
// texture dimensions alone.
func (s *Set) AutoFit(old string, sizes transform.Sizer) {
	if r, ok := s.rules.Get(old); ok {
		s.fit(r, sizes, nil)
	}
}

func (s *Set) fit(r *Rule, sizes transform.Sizer, rotation *float64) {
	oldDims := transform.DimsOf(sizes, r.Old)
	newDims := transform.DimsOf(sizes, r.New)
	r.HScale, r.VScale, r.Rotation = transform.Fit(oldDims, newDims, rotation)
	s.log.Debug("fitted rule",
		zap.String("old", r.Old),
		zap.String("new", r.New),
		zap.Float64("hscale", r.HScale),
		zap.Float64("vscale", r.VScale),
		zap.Float64("rotation", r.Rotation))
}

// Get returns the rule for old.
func (s *Set) Get(old string) (*Rule, bool) {
	return s.rules.Get(old)
}

// Transform returns the transform rule for old.
func (s *Set) Transform(old string) (transform.Rule, bool) {
	r, ok := s.rules.Get(old)
	if !ok {
		return transform.Rule{}, false
	}
	return r.Transform(), true
}

// Contains reports whether a rule exists for old.
func (s *Set) Contains(old string) bool {
	_, ok := s.rules.Get(old)
	return ok
}

// Delete removes the rule for old if present.
func (s *Set) Delete(old string) {
	s.rules.Delete(old)
}

// Clear removes all rules.
func (s *Set) Clear() {
	s.rules = orderedmap.New[string, *Rule]()
}

// Len returns the number of rules.
func (s *Set) Len() int {
	return s.rules.Len()
}

// Empty reports whether the set has no rules.
func (s *Set) Empty() bool {
	return s.rules.Len() == 0
}

// Rules returns the rules in insertion order.
func (s *Set) Rules() []*Rule {
	out := make([]*Rule, 0, s.rules.Len())
	for pair := s.rules.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}
