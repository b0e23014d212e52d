package ifs

import "strings"

// BytesToBits expands data into a big-endian binary string: every byte
// becomes eight '0'/'1' characters, concatenated in input order.
func BytesToBits(data []byte) string {
	var sb strings.Builder
	sb.Grow(len(data) * 8)
	for _, b := range data {
		for shift := 7; shift >= 0; shift-- {
			sb.WriteByte('0' + (b>>uint(shift))&1)
		}
	}
	return sb.String()
}

// BitsToBytes packs a binary string back into bytes, eight bits at a time.
// A trailing group shorter than eight bits is dropped, not zero-extended;
// callers that need exact lengths truncate via the recorded original size.
func BitsToBytes(bits string) []byte {
	out := make([]byte, 0, len(bits)/8)
	for off := 0; off+8 <= len(bits); off += 8 {
		var b byte
		for i := 0; i < 8; i++ {
			b <<= 1
			if bits[off+i] == '1' {
				b |= 1
			}
		}
		out = append(out, b)
	}
	return out
}

// bitsValue interprets bits[off:off+width] as a big-endian unsigned integer.
func bitsValue(bits string, off, width int) int {
	v := 0
	for i := 0; i < width; i++ {
		v <<= 1
		if bits[off+i] == '1' {
			v |= 1
		}
	}
	return v
}

// writeBits appends the width-bit big-endian representation of v.
func writeBits(sb *strings.Builder, v, width int) {
	for shift := width - 1; shift >= 0; shift-- {
		sb.WriteByte('0' + byte((v>>uint(shift))&1))
	}
}
