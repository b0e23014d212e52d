// Package record defines the serialized fractal-record artifact and its
// canonical interchange form.
//
// A record is immutable once produced: it embeds the full numeric key, the
// ordered point sequence, and the pre-padding byte length, so it alone
// determines decoding. Rendered bytes are deterministic (fixed key order,
// stable float formatting) and are the input to the record's content ID.
package record

import (
	"encoding/json"
)

// FormatVersion is the record schema version emitted and accepted.
const FormatVersion = "1.0"

// EncryptionType tags records produced by the IFS codec.
const EncryptionType = "fractal_ifs"

// Point is one encoded point: a position on the attractor plus the three
// color channels carried by its 26-bit group.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	R uint8   `json:"r"`
	G uint8   `json:"g"`
	B uint8   `json:"b"`
}

// Key is one affine transform of the embedded key, in coefficient form.
type Key struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
	C float64 `json:"c"`
	D float64 `json:"d"`
	E float64 `json:"e"`
	F float64 `json:"f"`
}

// Metadata carries the format tag and the original byte length used for
// exact truncation on decode.
type Metadata struct {
	Version        string `json:"version"`
	EncryptionType string `json:"encryption_type"`
	OriginalSize   int64  `json:"original_size"`
}

// Record is the unit persisted and exchanged.
type Record struct {
	OriginalFilename string   `json:"original_filename"`
	Points           []Point  `json:"points"`
	IFSKey           []Key    `json:"ifs_key"`
	Metadata         Metadata `json:"metadata"`
}

// Render produces the canonical serialized form. The output is deterministic
// for a given record: struct field order fixes key order, slices preserve
// point and key order, and encoding/json emits the shortest float
// representation that round-trips exactly.
func Render(rec *Record) ([]byte, error) {
	if rec == nil {
		return nil, newError(KindParse, "RVL-REC-001", "nil record")
	}
	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, wrapError(KindParse, "RVL-REC-002", "rendering record", err)
	}
	return append(b, '\n'), nil
}
