package custody

import (
	"crypto/ed25519"
	"encoding/base64"
	"strconv"

	"github.com/cloudflare/circl/sign/dilithium/mode3"

	"revelare.io/fractal/keys"
	"revelare.io/fractal/record"
)

// SealOptions controls optional seal fields.
type SealOptions struct {
	// SealedAt, when non-empty, is recorded in META and must be RFC3339.
	SealedAt string
}

// SealRecordEd25519 produces a signed custody seal over rec using an Ed25519
// key. The signature covers the canonical bytes from the BEGIN line through
// the end of the SUBJECT section, so the CRYPTO values themselves stay outside
// the signed scope.
func SealRecordEd25519(rec *record.Record, priv ed25519.PrivateKey, opts *SealOptions) (*Seal, error) {
	examinerKey, err := keys.ExaminerKeyFromPublicKey(priv.Public().(ed25519.PublicKey))
	if err != nil {
		return nil, wrapError(KindCrypto, "RVL-SEAL-501", "deriving examiner key", err)
	}
	return sealRecord(rec, examinerKey, "ed25519", "sha256", opts, func(signed []byte) (string, error) {
		return keys.SignEd25519SHA256(signed, priv), nil
	})
}

// SealRecordDilithium3 produces a signed custody seal over rec using a
// Dilithium3 key. hashAlg must be one of: sha256, sha512, sha3-256.
func SealRecordDilithium3(rec *record.Record, pub *mode3.PublicKey, priv *mode3.PrivateKey, hashAlg string, opts *SealOptions) (*Seal, error) {
	if pub == nil || priv == nil {
		return nil, newError(KindCrypto, "RVL-SEAL-502", "missing dilithium3 keypair")
	}
	raw, err := pub.MarshalBinary()
	if err != nil {
		return nil, wrapError(KindCrypto, "RVL-SEAL-503", "encoding dilithium3 public key", err)
	}
	examinerKey := "dilithium3:" + base64.StdEncoding.EncodeToString(raw)
	return sealRecord(rec, examinerKey, "dilithium3", hashAlg, opts, func(signed []byte) (string, error) {
		return keys.SignDilithium3(signed, hashAlg, priv)
	})
}

func sealRecord(rec *record.Record, examinerKey, sigAlg, hashAlg string, opts *SealOptions, sign func(signed []byte) (string, error)) (*Seal, error) {
	if rec == nil {
		return nil, newError(KindRender, "RVL-SEAL-511", "nil record")
	}
	if rec.OriginalFilename == "" {
		return nil, newError(KindRender, "RVL-SEAL-512", "record has no filename")
	}
	recordCID, err := rec.CID()
	if err != nil {
		return nil, wrapError(KindRender, "RVL-SEAL-513", "computing record CID", err)
	}

	meta := map[string]string{
		"Spec":    SpecName,
		"Version": SpecVersion,
	}
	if opts != nil && opts.SealedAt != "" {
		meta["Sealed-At"] = opts.SealedAt
	}
	doc := Document{
		Meta: meta,
		Subject: map[string]string{
			"Filename":    rec.OriginalFilename,
			"Point-Count": strconv.Itoa(len(rec.Points)),
			"Record-CID":  recordCID,
		},
		Crypto: map[string]string{
			"Examiner-Key":  examinerKey,
			"Hash-Alg":      hashAlg,
			"Signature":     "0", // placeholder, outside the signed scope
			"Signature-Alg": sigAlg,
		},
	}

	unsigned, err := Render(doc)
	if err != nil {
		return nil, err
	}
	signed, err := signedScopeFromCanonical(unsigned)
	if err != nil {
		return nil, err
	}
	sig, err := sign(signed)
	if err != nil {
		return nil, wrapError(KindCrypto, "RVL-SEAL-514", "signing seal", err)
	}
	doc.Crypto["Signature"] = sig

	final, err := Render(doc)
	if err != nil {
		return nil, err
	}
	seal, err := Parse(final)
	if err != nil {
		return nil, err
	}
	if err := seal.Validate(); err != nil {
		return nil, err
	}
	return seal, nil
}
