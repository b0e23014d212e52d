package record

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func sampleRecord() *Record {
	return &Record{
		OriginalFilename: "evidence.bin",
		Points: []Point{
			{X: 0.5, Y: 0, R: 16, G: 32, B: 64},
			{X: 0.25, Y: 0.5, R: 255, G: 0, B: 128},
		},
		IFSKey: []Key{
			{A: 0.5, D: 0.5},
			{A: 0.5, D: 0.5, E: 0.5},
		},
		Metadata: Metadata{
			Version:        FormatVersion,
			EncryptionType: EncryptionType,
			OriginalSize:   7,
		},
	}
}

func TestRenderParseRoundTrip(t *testing.T) {
	rec := sampleRecord()
	rendered, err := Render(rec)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if rendered[len(rendered)-1] != '\n' {
		t.Fatalf("rendered record must end with a newline")
	}

	parsed, err := Parse(rendered)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	again, err := Render(parsed)
	if err != nil {
		t.Fatalf("Render(parsed) failed: %v", err)
	}
	if !bytes.Equal(rendered, again) {
		t.Fatalf("render not stable across parse")
	}
}

func TestRenderNilRecord(t *testing.T) {
	_, err := Render(nil)
	if !IsKind(err, KindParse) {
		t.Fatalf("got %v want KindParse", err)
	}
}

func TestParseRejectsInvalidJSON(t *testing.T) {
	_, err := Parse([]byte("{not json"))
	if !IsKind(err, KindParse) {
		t.Fatalf("got %v want KindParse", err)
	}
	if RuleID(err) != "RVL-REC-010" {
		t.Fatalf("rule: got %s", RuleID(err))
	}
}

func TestParseRejectsMissingKeys(t *testing.T) {
	base := sampleRecord()
	rendered, err := Render(base)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	cases := map[string]struct {
		drop string
		rule string
	}{
		"filename":        {"original_filename", "RVL-REC-011"},
		"points":          {"points", "RVL-REC-012"},
		"key":             {"ifs_key", "RVL-REC-013"},
		"metadata":        {"metadata", "RVL-REC-015"},
		"version":         {"version", "RVL-REC-016"},
		"encryption_type": {"encryption_type", "RVL-REC-017"},
		"original_size":   {"original_size", "RVL-REC-018"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var m map[string]any
			if err := json.Unmarshal(rendered, &m); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if md, ok := m["metadata"].(map[string]any); ok {
				delete(md, tc.drop)
			}
			delete(m, tc.drop)
			mutated, err := json.Marshal(m)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}

			_, perr := Parse(mutated)
			if perr == nil {
				t.Fatalf("expected parse failure after dropping %s", tc.drop)
			}
			if RuleID(perr) != tc.rule {
				t.Fatalf("rule: got %s want %s", RuleID(perr), tc.rule)
			}
		})
	}
}

func TestParseRejectsEmptyKey(t *testing.T) {
	rec := sampleRecord()
	rec.IFSKey = nil
	rendered, err := Render(rec)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	// A nil slice renders as JSON null, which is a missing key.
	_, perr := Parse(rendered)
	if RuleID(perr) != "RVL-REC-013" {
		t.Fatalf("nil key: got %v", perr)
	}

	rec.IFSKey = []Key{}
	rendered, err = Render(rec)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	_, perr = Parse(rendered)
	if RuleID(perr) != "RVL-REC-014" {
		t.Fatalf("empty key: got %v", perr)
	}
}

func TestParseRejectsVersionAndType(t *testing.T) {
	rec := sampleRecord()
	rec.Metadata.Version = "2.0"
	rendered, _ := Render(rec)
	_, err := Parse(rendered)
	if !IsKind(err, KindVersion) || RuleID(err) != "RVL-REC-020" {
		t.Fatalf("bad version: got %v", err)
	}

	rec = sampleRecord()
	rec.Metadata.EncryptionType = "rot13"
	rendered, _ = Render(rec)
	_, err = Parse(rendered)
	if !IsKind(err, KindVersion) || RuleID(err) != "RVL-REC-021" {
		t.Fatalf("bad encryption type: got %v", err)
	}
}

func TestParseRejectsNegativeSize(t *testing.T) {
	rec := sampleRecord()
	rec.Metadata.OriginalSize = -1
	rendered, _ := Render(rec)
	_, err := Parse(rendered)
	if !IsKind(err, KindRange) || RuleID(err) != "RVL-REC-022" {
		t.Fatalf("negative size: got %v", err)
	}
}

func TestParseRejectsChannelRange(t *testing.T) {
	rendered, _ := Render(sampleRecord())
	mutated := strings.Replace(string(rendered), `"r": 255`, `"r": 256`, 1)
	if mutated == string(rendered) {
		t.Fatalf("fixture did not contain expected channel value")
	}
	_, err := Parse([]byte(mutated))
	if !IsKind(err, KindRange) || RuleID(err) != "RVL-REC-031" {
		t.Fatalf("channel out of range: got %v", err)
	}
}

func TestParseRejectsIncompletePoint(t *testing.T) {
	rendered, _ := Render(sampleRecord())
	var m map[string]any
	if err := json.Unmarshal(rendered, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	points := m["points"].([]any)
	delete(points[1].(map[string]any), "y")
	mutated, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	_, perr := Parse(mutated)
	if RuleID(perr) != "RVL-REC-030" {
		t.Fatalf("incomplete point: got %v", perr)
	}
}

func TestCIDStability(t *testing.T) {
	rec := sampleRecord()
	id1, err := rec.CID()
	if err != nil {
		t.Fatalf("CID failed: %v", err)
	}
	id2, err := rec.CID()
	if err != nil {
		t.Fatalf("CID(2) failed: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("CID unstable: %s vs %s", id1, id2)
	}
	if !strings.HasPrefix(id1, "b") {
		t.Fatalf("expected base32 CIDv1, got %s", id1)
	}

	rec.Points[0].R++
	id3, err := rec.CID()
	if err != nil {
		t.Fatalf("CID(3) failed: %v", err)
	}
	if id3 == id1 {
		t.Fatalf("CID did not change with content")
	}
}
