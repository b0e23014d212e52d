package custody

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/cloudflare/circl/sign/dilithium/mode3"

	"revelare.io/fractal/ifs"
	"revelare.io/fractal/keys"
	"revelare.io/fractal/record"
)

func encodeB64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func generateDilithium3(t *testing.T) (*mode3.PublicKey, *mode3.PrivateKey, error) {
	t.Helper()
	return keys.GenerateDilithium3Keypair(rand.Reader)
}

func mustKeypair(t *testing.T, seedByte byte) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = seedByte
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return priv.Public().(ed25519.PublicKey), priv
}

func sampleRecord(t *testing.T) *record.Record {
	t.Helper()
	rec, err := ifs.Encode(context.Background(), []byte("sealed evidence"), "evidence.bin", ifs.DefaultSet(), nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	return rec
}

func validSeal(t *testing.T) *Seal {
	t.Helper()
	_, priv := mustKeypair(t, 0xA1)
	seal, err := SealRecordEd25519(sampleRecord(t), priv, &SealOptions{SealedAt: "2026-08-01T12:00:00Z"})
	if err != nil {
		t.Fatalf("SealRecordEd25519 failed: %v", err)
	}
	return seal
}

func TestSealRecordAndVerify(t *testing.T) {
	rec := sampleRecord(t)
	seal := validSeal(t)

	if err := seal.Verify(); err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if seal.Filename() != "evidence.bin" {
		t.Fatalf("Filename: got %q", seal.Filename())
	}
	if seal.PointCount() != len(rec.Points) {
		t.Fatalf("PointCount: got %d want %d", seal.PointCount(), len(rec.Points))
	}
	recordCID, err := rec.CID()
	if err != nil {
		t.Fatalf("record CID failed: %v", err)
	}
	if seal.RecordCID() != recordCID {
		t.Fatalf("RecordCID: got %s want %s", seal.RecordCID(), recordCID)
	}
	if seal.SealedAt() != "2026-08-01T12:00:00Z" {
		t.Fatalf("SealedAt: got %q", seal.SealedAt())
	}
	if !strings.HasPrefix(seal.ExaminerKey(), "ed25519:") {
		t.Fatalf("ExaminerKey: got %q", seal.ExaminerKey())
	}
	if len(seal.SignedBytes()) == 0 || len(seal.CanonicalBytes()) == 0 {
		t.Fatalf("expected non-empty canonical and signed bytes")
	}
	if seal.CID() == "" {
		t.Fatalf("expected seal CID")
	}
}

func TestSealIsDeterministic(t *testing.T) {
	_, priv := mustKeypair(t, 0x42)
	rec := sampleRecord(t)

	a, err := SealRecordEd25519(rec, priv, nil)
	if err != nil {
		t.Fatalf("seal A: %v", err)
	}
	b, err := SealRecordEd25519(rec, priv, nil)
	if err != nil {
		t.Fatalf("seal B: %v", err)
	}
	if !bytes.Equal(a.CanonicalBytes(), b.CanonicalBytes()) {
		t.Fatalf("sealing is not deterministic without Sealed-At")
	}
}

func TestParseRoundTrip(t *testing.T) {
	seal := validSeal(t)
	reparsed, err := Parse(seal.CanonicalBytes())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !bytes.Equal(reparsed.CanonicalBytes(), seal.CanonicalBytes()) {
		t.Fatalf("canonical bytes changed across parse")
	}
	if err := reparsed.Verify(); err != nil {
		t.Fatalf("Verify after reparse: %v", err)
	}
}

func TestVerifyRejectsTamperedSubject(t *testing.T) {
	seal := validSeal(t)
	raw := string(seal.CanonicalBytes())

	tampered := strings.Replace(raw, "Filename: evidence.bin", "Filename: innocent.bin", 1)
	if tampered == raw {
		t.Fatalf("fixture did not contain expected Filename line")
	}
	parsed, err := Parse([]byte(tampered))
	if err != nil {
		t.Fatalf("tampered seal should still parse canonically: %v", err)
	}
	if err := parsed.Verify(); err == nil {
		t.Fatalf("expected signature failure after tampering")
	} else if !IsKind(err, KindCrypto) {
		t.Fatalf("got %v want KindCrypto", err)
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	seal := validSeal(t)
	otherPub, _ := mustKeypair(t, 0x7E)

	raw := string(seal.CanonicalBytes())
	tampered := strings.Replace(raw, seal.ExaminerKey(), "ed25519:"+encodeB64(otherPub), 1)
	parsed, err := Parse([]byte(tampered))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if err := parsed.Verify(); !IsKind(err, KindCrypto) {
		t.Fatalf("got %v want KindCrypto", err)
	}
}

func TestParseRejectsNonCanonical(t *testing.T) {
	good := string(validSeal(t).CanonicalBytes())

	cases := map[string]string{
		"trailing-newline":    good + "\n",
		"trailing-whitespace": strings.Replace(good, "META\n", "META \n", 1),
		"cr-line-endings":     strings.ReplaceAll(good, "\n", "\r\n"),
		"missing-preamble":    strings.TrimPrefix(good, Preamble+"\n"),
		"missing-postamble":   strings.TrimSuffix(good, Postamble),
		"doubled-blank-line":  strings.Replace(good, "\n\nSUBJECT", "\n\n\nSUBJECT", 1),
	}
	for name, bad := range cases {
		t.Run(name, func(t *testing.T) {
			if bad == good {
				t.Fatalf("mutation did not change fixture")
			}
			if _, err := Parse([]byte(bad)); err == nil {
				t.Fatalf("expected parse failure")
			}
		})
	}
}

func TestParseRejectsUnsortedKeys(t *testing.T) {
	bad := Preamble + `
META
Version: 1
Spec: revelare-seal-1

SUBJECT
Filename: evidence.bin
Point-Count: 5
Record-CID: bafy-rec-1

CRYPTO
Examiner-Key: ed25519:KEY
Hash-Alg: sha256
Signature: SIG
Signature-Alg: ed25519
` + Postamble
	_, err := Parse([]byte(bad))
	if err == nil {
		t.Fatal("expected error for unsorted keys")
	}
	if !IsKind(err, KindCanonical) {
		t.Fatalf("got %v want KindCanonical", err)
	}
}

func TestParseRejectsSectionsOutOfOrder(t *testing.T) {
	bad := Preamble + `
SUBJECT
Filename: evidence.bin

META
Spec: revelare-seal-1
Version: 1

CRYPTO
Signature: SIG
` + Postamble
	if _, err := Parse([]byte(bad)); err == nil {
		t.Fatal("expected error for out-of-order sections")
	}
}

func TestValidateRejectsBadMeta(t *testing.T) {
	seal := validSeal(t)
	raw := string(seal.CanonicalBytes())

	spoofed := strings.Replace(raw, "Spec: "+SpecName, "Spec: other-seal-9", 1)
	parsed, err := Parse([]byte(spoofed))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if err := parsed.Validate(); err == nil {
		t.Fatalf("expected Validate failure for wrong Spec")
	}

	badTime := strings.Replace(raw, "Sealed-At: 2026-08-01T12:00:00Z", "Sealed-At: yesterday", 1)
	parsed, err = Parse([]byte(badTime))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if err := parsed.Validate(); err == nil {
		t.Fatalf("expected Validate failure for bad Sealed-At")
	}
}

func TestSealRecordRequiresFilename(t *testing.T) {
	_, priv := mustKeypair(t, 0x01)
	rec := sampleRecord(t)
	rec.OriginalFilename = ""
	if _, err := SealRecordEd25519(rec, priv, nil); err == nil {
		t.Fatalf("expected error for record without filename")
	}
}

func TestSealRecordDilithium3(t *testing.T) {
	pub, priv, err := generateDilithium3(t)
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}
	rec := sampleRecord(t)

	seal, err := SealRecordDilithium3(rec, pub, priv, "sha3-256", nil)
	if err != nil {
		t.Fatalf("SealRecordDilithium3 failed: %v", err)
	}
	if seal.SignatureAlg() != "dilithium3" || seal.HashAlg() != "sha3-256" {
		t.Fatalf("crypto fields: %s/%s", seal.SignatureAlg(), seal.HashAlg())
	}
	if err := seal.Verify(); err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	tampered := strings.Replace(string(seal.CanonicalBytes()), "Point-Count: ", "Point-Count: 9", 1)
	parsed, err := Parse([]byte(tampered))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if err := parsed.Verify(); !IsKind(err, KindCrypto) {
		t.Fatalf("got %v want KindCrypto", err)
	}
}
