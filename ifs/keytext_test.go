package ifs

import (
	"bytes"
	"context"
	"testing"
)

func TestParseKeyText(t *testing.T) {
	text := []byte(`# quadrant contractions
t0: a=0.5, d=0.5
t1: a=0.5, d=0.5, e=0.5
t2: d=0.5, a=0.5, f=0.5
t3: a=0.5, d=0.5, e=0.5, f=0.5
`)
	set, err := ParseKeyText(text)
	if err != nil {
		t.Fatalf("ParseKeyText failed: %v", err)
	}
	if len(set) != 4 {
		t.Fatalf("transform count: got %d want 4", len(set))
	}
	if set[2] != (Transform{A: 0.5, D: 0.5, F: 0.5}) {
		t.Fatalf("coefficient order not respected: %+v", set[2])
	}

	// Parsed keys must work end to end.
	data := []byte("keyed payload")
	rec, err := Encode(context.Background(), data, "k.bin", set, nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	got, _, err := Decode(context.Background(), rec, nil)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("round trip mismatch")
	}
}

func TestParseKeyTextIgnoresNonTransformLines(t *testing.T) {
	text := []byte("shared out of band\n\nt0: a=0.5, d=0.5\n")
	set, err := ParseKeyText(text)
	if err != nil {
		t.Fatalf("ParseKeyText failed: %v", err)
	}
	if len(set) != 1 {
		t.Fatalf("transform count: got %d want 1", len(set))
	}
}

func TestParseKeyTextErrors(t *testing.T) {
	cases := map[string]struct {
		text string
		rule string
	}{
		"empty":        {"no transforms here\n", "RVL-KEY-001"},
		"not-kv":       {"t0: a 0.5\n", "RVL-KEY-011"},
		"bad-float":    {"t0: a=zero\n", "RVL-KEY-012"},
		"unknown-name": {"t0: a=0.5, g=1\n", "RVL-KEY-013"},
		"too-many":     {"t0: a=1\nt1: a=1\nt2: a=1\nt3: a=1\nt4: a=1\n", "RVL-KEY-002"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseKeyText([]byte(tc.text))
			if !IsKind(err, KindKeyFormat) {
				t.Fatalf("got %v want KindKeyFormat", err)
			}
			if RuleID(err) != tc.rule {
				t.Fatalf("rule: got %s want %s", RuleID(err), tc.rule)
			}
		})
	}
}

func TestFormatKeyTextRoundTrip(t *testing.T) {
	orig := DefaultSet()
	text := FormatKeyText(orig)

	parsed, err := ParseKeyText(text)
	if err != nil {
		t.Fatalf("ParseKeyText(FormatKeyText): %v", err)
	}
	if len(parsed) != len(orig) {
		t.Fatalf("transform count: got %d want %d", len(parsed), len(orig))
	}
	for i := range orig {
		if parsed[i] != orig[i] {
			t.Fatalf("transform %d: got %+v want %+v", i, parsed[i], orig[i])
		}
	}
}
