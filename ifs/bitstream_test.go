package ifs

import (
	"bytes"
	"testing"
)

func TestBytesToBits(t *testing.T) {
	if got := BytesToBits([]byte{'A'}); got != "01000001" {
		t.Fatalf("BytesToBits('A'): got %q", got)
	}
	if got := BytesToBits([]byte{0x00, 0xFF}); got != "0000000011111111" {
		t.Fatalf("BytesToBits(00 FF): got %q", got)
	}
	if got := BytesToBits(nil); got != "" {
		t.Fatalf("BytesToBits(nil): got %q", got)
	}
}

func TestBitsToBytes(t *testing.T) {
	if got := BitsToBytes("01000001"); !bytes.Equal(got, []byte{'A'}) {
		t.Fatalf("BitsToBytes: got %v", got)
	}
	// A trailing partial byte is dropped, not zero-extended.
	if got := BitsToBytes("010000011"); !bytes.Equal(got, []byte{'A'}) {
		t.Fatalf("partial trailing bits: got %v", got)
	}
	if got := BitsToBytes("1111111"); len(got) != 0 {
		t.Fatalf("short input: got %v", got)
	}
}

func TestBitsRoundTrip(t *testing.T) {
	data := []byte{0x00, 0x01, 0x7F, 0x80, 0xFE, 0xFF, 'R', 'v'}
	if got := BitsToBytes(BytesToBits(data)); !bytes.Equal(got, data) {
		t.Fatalf("round trip mismatch: got %v", got)
	}
}
