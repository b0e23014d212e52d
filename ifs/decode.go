package ifs

import (
	"context"
	"fmt"
	"math"
	"strings"

	"revelare.io/fractal/record"
)

// Epsilon is the per-axis absolute tolerance used when matching a stored
// point against candidate transform outputs. The key must reproduce the
// encoder's coefficients within this tolerance or decoding fails.
const Epsilon = 1e-9

// Decode recovers the original bytes and filename from rec.
//
// For each stored point, every transform in the embedded key is applied to
// the current reconstructed point in set order; the first output within
// Epsilon on both axes yields the selector. The walk then advances using the
// stored coordinates, not the recomputed ones, so float error cannot
// accumulate across points.
//
// A point no transform reaches produces a KindMismatch error carrying the
// point index: the record is corrupt or the key is wrong. Note that a wrong
// key is not guaranteed to fail — colliding coefficients can decode silently
// to different bytes. Callers needing tamper evidence should bind the record
// CID out of band (see the custody package).
func Decode(ctx context.Context, rec *record.Record, opts *Options) ([]byte, string, error) {
	if rec == nil {
		return nil, "", newError(KindKeyFormat, "RVL-DEC-001", "nil record")
	}
	set, err := SetFromKeys(rec.IFSKey)
	if err != nil {
		return nil, "", err
	}

	total := len(rec.Points)
	m := newMeter(total, opts, "decoded")

	var bits strings.Builder
	bits.Grow(total * GroupBits)

	x, y := 0.0, 0.0
	for i, p := range rec.Points {
		sel := -1
		for j, t := range set {
			nx, ny := t.Apply(x, y)
			if math.Abs(nx-p.X) <= Epsilon && math.Abs(ny-p.Y) <= Epsilon {
				sel = j
				break
			}
		}
		if sel < 0 {
			return nil, "", mismatchError("RVL-DEC-002",
				fmt.Sprintf("no transform reaches point %d within tolerance (corrupt record or wrong key)", i), i)
		}

		writeBits(&bits, sel, SelectorBits)
		writeBits(&bits, int(p.R), 8)
		writeBits(&bits, int(p.G), 8)
		writeBits(&bits, int(p.B), 8)
		x, y = p.X, p.Y

		if err := m.step(ctx, i+1); err != nil {
			return nil, "", err
		}
	}

	raw := BitsToBytes(bits.String())
	size := rec.Metadata.OriginalSize
	if size < 0 || size > int64(len(raw)) {
		return nil, "", newError(KindMismatch, "RVL-DEC-003",
			fmt.Sprintf("recorded original size %d exceeds decoded payload of %d bytes", size, len(raw)))
	}
	m.finish()

	return raw[:size], rec.OriginalFilename, nil
}
