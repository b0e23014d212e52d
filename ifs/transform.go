// Package ifs implements the Revelare fractal codec: a reversible encoding of
// byte buffers as point sequences on an iterated-function-system attractor.
//
// Each 26-bit group of the input (2 selector bits + three 8-bit color
// channels) picks one affine transform from the key and advances the current
// point; decoding re-derives the selector by testing every transform in the
// key against the stored coordinates.
package ifs

import (
	"fmt"

	"revelare.io/fractal/record"
)

const (
	// SelectorBits is the fixed width of the per-group transform selector.
	SelectorBits = 2
	// ColorBits is the width of the three packed color channels.
	ColorBits = 24
	// GroupBits is the total width of one encoded group.
	GroupBits = SelectorBits + ColorBits
	// MaxTransforms is the largest key the 2-bit selector can address.
	MaxTransforms = 1 << SelectorBits
)

// Transform is a 2-D affine map parameterized by six coefficients:
//
//	(x, y) -> (a·x + b·y + e, c·x + d·y + f)
type Transform struct {
	A, B, C, D, E, F float64
}

// Apply evaluates the map at (x, y).
func (t Transform) Apply(x, y float64) (float64, float64) {
	return t.A*x + t.B*y + t.E, t.C*x + t.D*y + t.F
}

// TransformSet is the ordered key shared between encode and decode.
// The same set, bit-for-bit, must be supplied on both sides.
type TransformSet []Transform

// NewSet validates a key. The selector field is fixed at 2 bits, so a set may
// hold at most MaxTransforms entries; shorter sets are allowed (the selector
// is reduced modulo the set size).
func NewSet(transforms ...Transform) (TransformSet, error) {
	if len(transforms) == 0 {
		return nil, newError(KindKeyFormat, "RVL-KEY-001", "transform set is empty")
	}
	if len(transforms) > MaxTransforms {
		return nil, newError(KindKeyFormat, "RVL-KEY-002",
			fmt.Sprintf("transform set holds %d transforms; the %d-bit selector addresses at most %d",
				len(transforms), SelectorBits, MaxTransforms))
	}
	return TransformSet(transforms), nil
}

// DefaultSet returns the standard 4-transform key: the four quadrant
// contractions of the unit square. Their translations are pairwise distinct,
// so no two transforms agree at any point and inverse search is unambiguous.
func DefaultSet() TransformSet {
	return TransformSet{
		{A: 0.5, D: 0.5},
		{A: 0.5, D: 0.5, E: 0.5},
		{A: 0.5, D: 0.5, F: 0.5},
		{A: 0.5, D: 0.5, E: 0.5, F: 0.5},
	}
}

// Keys converts the set into the record's serialized key form.
func (s TransformSet) Keys() []record.Key {
	keys := make([]record.Key, len(s))
	for i, t := range s {
		keys[i] = record.Key{A: t.A, B: t.B, C: t.C, D: t.D, E: t.E, F: t.F}
	}
	return keys
}

// SetFromKeys reconstructs the key embedded in a record.
func SetFromKeys(keys []record.Key) (TransformSet, error) {
	transforms := make([]Transform, len(keys))
	for i, k := range keys {
		transforms[i] = Transform{A: k.A, B: k.B, C: k.C, D: k.D, E: k.E, F: k.F}
	}
	return NewSet(transforms...)
}
