package record

import "revelare.io/fractal/cidutil"

// CID returns the record's content identifier: a CIDv1 (raw + sha2-256) over
// the canonical rendered bytes. Two records with identical contents share a
// CID regardless of how they were produced.
func (r *Record) CID() (string, error) {
	b, err := Render(r)
	if err != nil {
		return "", err
	}
	return cidutil.CIDv1RawSHA256(b), nil
}
