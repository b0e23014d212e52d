package ifs

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// ParseKeyText parses the line-oriented transform-key notation used to share
// keys out of band:
//
//	t0: a=0.5, b=0, c=0, d=0.5, e=0, f=0
//	t1: a=0.5, d=0.5, e=0.5
//
// One transform per line, coefficients in any order, missing coefficients
// default to 0. Lines without a ':' separator are ignored, so the notation
// tolerates comments and blank lines.
//
// A record always embeds its key numerically; this format is only an
// interchange convenience and is never required for decoding.
func ParseKeyText(data []byte) (TransformSet, error) {
	var transforms []Transform

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		_, rhs, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		t, err := parseCoefficients(rhs, lineNo)
		if err != nil {
			return nil, err
		}
		transforms = append(transforms, t)
	}
	if err := scanner.Err(); err != nil {
		return nil, wrapError(KindKeyFormat, "RVL-KEY-010", "reading key text", err)
	}

	return NewSet(transforms...)
}

func parseCoefficients(rhs string, lineNo int) (Transform, error) {
	var t Transform
	for _, field := range strings.Split(rhs, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		name, value, ok := strings.Cut(field, "=")
		if !ok {
			return Transform{}, newError(KindKeyFormat, "RVL-KEY-011",
				fmt.Sprintf("line %d: %q is not a key=value pair", lineNo, field))
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return Transform{}, wrapError(KindKeyFormat, "RVL-KEY-012",
				fmt.Sprintf("line %d: invalid coefficient value %q", lineNo, strings.TrimSpace(value)), err)
		}
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "a":
			t.A = v
		case "b":
			t.B = v
		case "c":
			t.C = v
		case "d":
			t.D = v
		case "e":
			t.E = v
		case "f":
			t.F = v
		default:
			return Transform{}, newError(KindKeyFormat, "RVL-KEY-013",
				fmt.Sprintf("line %d: unknown coefficient %q", lineNo, strings.TrimSpace(name)))
		}
	}
	return t, nil
}

// FormatKeyText renders a set in the textual key notation. Coefficients use
// the shortest representation that round-trips through ParseKeyText exactly.
func FormatKeyText(set TransformSet) []byte {
	var sb strings.Builder
	for i, t := range set {
		fmt.Fprintf(&sb, "t%d: a=%s, b=%s, c=%s, d=%s, e=%s, f=%s\n",
			i, coeff(t.A), coeff(t.B), coeff(t.C), coeff(t.D), coeff(t.E), coeff(t.F))
	}
	return []byte(sb.String())
}

func coeff(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
