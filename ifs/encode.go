package ifs

import (
	"context"
	"strings"

	"revelare.io/fractal/record"
)

// Encode maps data onto the attractor of set and returns a self-contained
// record embedding the key, the point sequence, and the original byte length.
//
// The bit stream is right-padded with '0' to a multiple of GroupBits; each
// group contributes one point. Encoding is total: any input succeeds,
// including the empty buffer (zero points). The only failure modes are a nil
// or oversized key and context cancellation.
func Encode(ctx context.Context, data []byte, filename string, set TransformSet, opts *Options) (*record.Record, error) {
	if _, err := NewSet(set...); err != nil {
		return nil, err
	}

	bits := BytesToBits(data)
	if pad := (GroupBits - len(bits)%GroupBits) % GroupBits; pad > 0 {
		bits += strings.Repeat("0", pad)
	}

	total := len(bits) / GroupBits
	points := make([]record.Point, 0, total)
	m := newMeter(total, opts, "encoded")

	x, y := 0.0, 0.0
	for off := 0; off < len(bits); off += GroupBits {
		sel := bitsValue(bits, off, SelectorBits) % len(set)
		r := bitsValue(bits, off+SelectorBits, 8)
		g := bitsValue(bits, off+SelectorBits+8, 8)
		b := bitsValue(bits, off+SelectorBits+16, 8)

		x, y = set[sel].Apply(x, y)
		points = append(points, record.Point{X: x, Y: y, R: uint8(r), G: uint8(g), B: uint8(b)})

		if err := m.step(ctx, len(points)); err != nil {
			return nil, err
		}
	}
	m.finish()

	return &record.Record{
		OriginalFilename: filename,
		Points:           points,
		IFSKey:           set.Keys(),
		Metadata: record.Metadata{
			Version:        record.FormatVersion,
			EncryptionType: record.EncryptionType,
			OriginalSize:   int64(len(data)),
		},
	}, nil
}
