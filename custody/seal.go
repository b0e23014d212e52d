// Package custody implements the canonical custody seal format for
// fractal encryption records. A seal is an armored, signed text document
// binding an encrypted record's content identifier to an examiner key.
package custody

import (
	"bufio"
	"bytes"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"revelare.io/fractal/cidutil"
)

// SectionOrder defines the canonical order of seal sections.
var SectionOrder = []string{"META", "SUBJECT", "CRYPTO"}

const (
	Preamble  = "-----BEGIN REVELARE CUSTODY SEAL-----"
	Postamble = "-----END REVELARE CUSTODY SEAL-----"

	// SpecName and SpecVersion identify the seal format carried in META.
	SpecName    = "revelare-seal-1"
	SpecVersion = "1"
)

// Seal represents a parsed custody seal.
type Seal struct {
	Sections map[string]Section

	raw    []byte // canonical bytes
	signed []byte // bytes covered by the signature (BEGIN..end of SUBJECT, inclusive)
}

type Section struct {
	Name  string
	Pairs map[string]string // key-value pairs, sorted lexicographically
}

// CanonicalBytes returns a copy of the canonical seal bytes.
func (s *Seal) CanonicalBytes() []byte {
	return append([]byte(nil), s.raw...)
}

// SignedBytes returns a copy of the bytes covered by the signature.
func (s *Seal) SignedBytes() []byte {
	return append([]byte(nil), s.signed...)
}

// CID returns a deterministic content identifier for the canonical seal bytes
// (CIDv1, raw + sha2-256).
func (s *Seal) CID() string {
	return cidutil.CIDv1RawSHA256(s.raw)
}

func (s *Seal) pair(section, key string) string {
	if sec, ok := s.Sections[section]; ok {
		return sec.Pairs[key]
	}
	return ""
}

func (s *Seal) Filename() string    { return s.pair("SUBJECT", "Filename") }
func (s *Seal) RecordCID() string   { return s.pair("SUBJECT", "Record-CID") }
func (s *Seal) SealedAt() string    { return s.pair("META", "Sealed-At") }
func (s *Seal) ExaminerKey() string { return s.pair("CRYPTO", "Examiner-Key") }

// PointCount returns the declared point count, or -1 when absent or malformed.
func (s *Seal) PointCount() int {
	n, err := strconv.Atoi(s.pair("SUBJECT", "Point-Count"))
	if err != nil || n < 0 {
		return -1
	}
	return n
}

// Parse parses a custody seal and enforces the canonical serialization rules.
// Non-canonical inputs are rejected.
func Parse(data []byte) (*Seal, error) {
	if !utf8.Valid(data) {
		return nil, newError(KindParse, "RVL-SEAL-101", "seal must be valid UTF-8")
	}
	if len(data) > 0 && data[len(data)-1] == '\n' {
		return nil, newError(KindCanonical, "RVL-SEAL-102", "trailing newline not allowed")
	}
	if bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) {
		return nil, newError(KindParse, "RVL-SEAL-103", "BOM not allowed")
	}
	if bytes.Contains(data, []byte("\r")) {
		return nil, newError(KindCanonical, "RVL-SEAL-104", "CR line endings not allowed")
	}
	if !bytes.HasPrefix(data, []byte(Preamble+"\n")) {
		return nil, newError(KindParse, "RVL-SEAL-105", "missing seal preamble")
	}
	if !bytes.HasSuffix(data, []byte(Postamble)) {
		return nil, newError(KindParse, "RVL-SEAL-106", "missing seal postamble")
	}
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(line) > 0 && (line[len(line)-1] == ' ' || line[len(line)-1] == '\t') {
			return nil, newError(KindCanonical, "RVL-SEAL-107", "trailing whitespace forbidden")
		}
	}

	sections, err := parseSections(data)
	if err != nil {
		return nil, err
	}

	// Enforce full canonical byte identity by re-rendering and comparing.
	// This makes Parse() strictly reject any non-canonical inputs.
	doc := Document{
		Meta:    sections["META"].Pairs,
		Subject: sections["SUBJECT"].Pairs,
		Crypto:  sections["CRYPTO"].Pairs,
	}
	canonical, rerr := Render(doc)
	if rerr != nil {
		return nil, rerr
	}
	if !bytes.Equal(data, canonical) {
		return nil, newError(KindCanonical, "RVL-SEAL-108", "non-canonical seal")
	}

	signed, err := signedScopeFromCanonical(canonical)
	if err != nil {
		return nil, err
	}
	return &Seal{Sections: sections, raw: canonical, signed: signed}, nil
}

// signedScopeFromCanonical computes the bytes covered by the signature:
// the BEGIN line through the end of the SUBJECT section, inclusive.
// Canonical Render() emits exactly one blank line between SUBJECT and CRYPTO,
// so the signature cannot cover its own value.
func signedScopeFromCanonical(canonical []byte) ([]byte, error) {
	marker := []byte("\nCRYPTO\n")
	idx := bytes.Index(canonical, marker)
	if idx < 0 {
		return nil, newError(KindParse, "RVL-SEAL-109", "cannot determine signature scope")
	}
	return canonical[:idx+1], nil
}

func parseSections(data []byte) (map[string]Section, error) {
	sections := make(map[string]Section)
	reader := bufio.NewReader(bytes.NewReader(data))
	readLine := func() (string, error) {
		l, err := reader.ReadString('\n')
		if err == io.EOF {
			return strings.TrimRight(l, "\n"), io.EOF
		}
		if err != nil {
			return "", wrapError(KindParse, "RVL-SEAL-199", "read failure", err)
		}
		return strings.TrimRight(l, "\n"), nil
	}

	first, err := readLine()
	if err != nil && err != io.EOF {
		return nil, err
	}
	if first != Preamble {
		return nil, newError(KindParse, "RVL-SEAL-105", "seal preamble must be exact")
	}

	sectionIndex := -1
	var currSection string
	var currPairs map[string]string
	var currKeyOrder []string
	seenSection := map[string]bool{}
	seenAnySection := false
	afterSeparator := false

	flushSection := func() error {
		if currSection == "" {
			return nil
		}
		sorted := append([]string(nil), currKeyOrder...)
		sort.Strings(sorted)
		for i := range sorted {
			if sorted[i] != currKeyOrder[i] {
				return newError(KindCanonical, "RVL-SEAL-120", "keys not sorted lexicographically")
			}
		}
		sections[currSection] = Section{Name: currSection, Pairs: currPairs}
		currSection = ""
		currPairs = nil
		currKeyOrder = nil
		return nil
	}

	for {
		line, rerr := readLine()
		if rerr != nil && rerr != io.EOF {
			return nil, rerr
		}

		if line == Postamble {
			if afterSeparator {
				return nil, newError(KindCanonical, "RVL-SEAL-121", "unexpected blank line before postamble")
			}
			if err := flushSection(); err != nil {
				return nil, err
			}
			break
		}

		if isSectionHeader(line) {
			seenAnySection = true
			if currSection != "" {
				return nil, newError(KindCanonical, "RVL-SEAL-122", "missing blank line between sections")
			}
			if seenSection[line] {
				return nil, newError(KindParse, "RVL-SEAL-123", "duplicate section")
			}
			if err := flushSection(); err != nil {
				return nil, err
			}
			sectionIndex++
			if sectionIndex >= len(SectionOrder) || SectionOrder[sectionIndex] != line {
				return nil, newError(KindParse, "RVL-SEAL-124", "sections missing or out of order")
			}
			if sectionIndex == 0 {
				if afterSeparator {
					return nil, newError(KindCanonical, "RVL-SEAL-122", "blank line before first section not allowed")
				}
			} else if !afterSeparator {
				return nil, newError(KindCanonical, "RVL-SEAL-122", "missing blank line between sections")
			}
			afterSeparator = false
			seenSection[line] = true
			currSection = line
			currPairs = make(map[string]string)
			continue
		}

		if !seenAnySection {
			return nil, newError(KindParse, "RVL-SEAL-125", "unexpected content before first section")
		}

		if line == "" {
			if currSection == "" {
				return nil, newError(KindCanonical, "RVL-SEAL-122", "blank line outside section not allowed")
			}
			if currSection == "CRYPTO" {
				return nil, newError(KindCanonical, "RVL-SEAL-122", "blank line after CRYPTO section not allowed")
			}
			if afterSeparator {
				return nil, newError(KindCanonical, "RVL-SEAL-122", "multiple blank lines between sections not allowed")
			}
			if err := flushSection(); err != nil {
				return nil, err
			}
			afterSeparator = true
			continue
		}

		if currSection == "" {
			return nil, newError(KindParse, "RVL-SEAL-125", "content outside section")
		}
		if afterSeparator {
			return nil, newError(KindParse, "RVL-SEAL-126", "expected section header after blank line")
		}
		if !strings.Contains(line, ": ") {
			return nil, newError(KindParse, "RVL-SEAL-130", "invalid key-value formatting")
		}
		kv := strings.SplitN(line, ": ", 2)
		key, val := kv[0], kv[1]
		if key == "" {
			return nil, newError(KindParse, "RVL-SEAL-130", "empty key")
		}
		if !isASCII(key) {
			return nil, newError(KindParse, "RVL-SEAL-130", "non-ASCII key")
		}
		if val == "" {
			return nil, newError(KindParse, "RVL-SEAL-130", "empty value")
		}
		if strings.HasPrefix(val, " ") {
			return nil, newError(KindParse, "RVL-SEAL-130", "value must not start with a space")
		}
		if _, exists := currPairs[key]; exists {
			return nil, newError(KindParse, "RVL-SEAL-130", "duplicate key in section")
		}
		currPairs[key] = val
		currKeyOrder = append(currKeyOrder, key)

		if rerr == io.EOF {
			return nil, newError(KindParse, "RVL-SEAL-106", "missing seal postamble")
		}
	}

	for _, s := range SectionOrder {
		if !seenSection[s] {
			return nil, newError(KindParse, "RVL-SEAL-124", "sections missing or out of order")
		}
	}
	return sections, nil
}

// Validate enforces the required seal semantics beyond canonical structure:
// the META identity, the SUBJECT binding fields, and timestamp formatting.
func (s *Seal) Validate() error {
	if s.pair("META", "Spec") != SpecName {
		return newError(KindParse, "RVL-SEAL-301", "unrecognized seal spec")
	}
	if s.pair("META", "Version") != SpecVersion {
		return newError(KindParse, "RVL-SEAL-302", "unsupported seal version")
	}
	if at := s.SealedAt(); at != "" {
		if _, err := time.Parse(time.RFC3339, at); err != nil {
			return wrapError(KindParse, "RVL-SEAL-303", "Sealed-At must be RFC3339", err)
		}
	}
	if s.Filename() == "" {
		return newError(KindParse, "RVL-SEAL-311", "missing Filename")
	}
	if s.RecordCID() == "" {
		return newError(KindParse, "RVL-SEAL-312", "missing Record-CID")
	}
	if s.PointCount() < 0 {
		return newError(KindParse, "RVL-SEAL-313", "missing or invalid Point-Count")
	}
	return nil
}

func isSectionHeader(line string) bool {
	for _, s := range SectionOrder {
		if line == s {
			return true
		}
	}
	return false
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 127 {
			return false
		}
	}
	return true
}
