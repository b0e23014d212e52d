package custody

import (
	"crypto/ed25519"
	"encoding/base64"
	"strings"

	"github.com/cloudflare/circl/sign/dilithium/mode3"

	"revelare.io/fractal/keys"
)

func (s *Seal) SignatureAlg() string { return s.pair("CRYPTO", "Signature-Alg") }
func (s *Seal) HashAlg() string      { return s.pair("CRYPTO", "Hash-Alg") }
func (s *Seal) Signature() string    { return s.pair("CRYPTO", "Signature") }

// ExaminerPublicKeyBytes returns the raw public key bytes for the examiner.
// Supported encodings:
// - ed25519:<base64>
// - dilithium3:<base64>
func (s *Seal) ExaminerPublicKeyBytes() ([]byte, error) {
	examiner := s.ExaminerKey()
	if examiner == "" {
		return nil, newError(KindCrypto, "RVL-SEAL-403", "missing Examiner-Key")
	}

	alg, enc, ok := strings.Cut(examiner, ":")
	if !ok {
		return nil, newError(KindCrypto, "RVL-SEAL-411", "invalid Examiner-Key encoding")
	}
	pub, err := decodeBase64(enc)
	if err != nil {
		return nil, wrapError(KindCrypto, "RVL-SEAL-413", "invalid examiner key base64", err)
	}

	switch alg {
	case "ed25519":
		if len(pub) != ed25519.PublicKeySize {
			return nil, newError(KindCrypto, "RVL-SEAL-414", "invalid ed25519 public key length")
		}
		return pub, nil
	case "dilithium3":
		var pk mode3.PublicKey
		if err := pk.UnmarshalBinary(pub); err != nil {
			return nil, wrapError(KindCrypto, "RVL-SEAL-415", "invalid dilithium3 public key", err)
		}
		return pub, nil
	default:
		return nil, newError(KindCrypto, "RVL-SEAL-412", "unsupported examiner key encoding")
	}
}

func (s *Seal) SignatureBytes() ([]byte, error) {
	sig := s.Signature()
	if sig == "" {
		return nil, newError(KindCrypto, "RVL-SEAL-404", "missing Signature")
	}
	raw, err := decodeBase64(sig)
	if err != nil {
		return nil, wrapError(KindCrypto, "RVL-SEAL-431", "invalid signature base64", err)
	}
	switch s.SignatureAlg() {
	case "ed25519":
		if len(raw) != ed25519.SignatureSize {
			return nil, newError(KindCrypto, "RVL-SEAL-432", "invalid ed25519 signature length")
		}
	case "dilithium3":
		if len(raw) != mode3.SignatureSize {
			return nil, newError(KindCrypto, "RVL-SEAL-433", "invalid dilithium3 signature length")
		}
	}
	return raw, nil
}

// Verify verifies the seal signature. The signed message is
// Hash-Alg(SignedBytes); supported algorithms are ed25519 and dilithium3
// with sha256, sha512, or sha3-256 digests.
func (s *Seal) Verify() error {
	if s == nil {
		return newError(KindCrypto, "RVL-SEAL-401", "nil seal")
	}
	// Re-parse the receiver bytes so canonicalization cannot be bypassed via a
	// manually-constructed Seal or mutated fields.
	parsed, err := Parse(s.raw)
	if err != nil {
		return err
	}
	s = parsed

	if err := s.Validate(); err != nil {
		return err
	}
	if s.SignatureAlg() == "" {
		return newError(KindCrypto, "RVL-SEAL-405", "missing Signature-Alg")
	}
	if s.HashAlg() == "" {
		return newError(KindCrypto, "RVL-SEAL-406", "missing Hash-Alg")
	}

	examinerAlg, _, ok := strings.Cut(s.ExaminerKey(), ":")
	if !ok {
		return newError(KindCrypto, "RVL-SEAL-411", "invalid Examiner-Key encoding")
	}
	if examinerAlg != s.SignatureAlg() {
		return newError(KindCrypto, "RVL-SEAL-421", "Examiner-Key alg does not match Signature-Alg")
	}

	pub, err := s.ExaminerPublicKeyBytes()
	if err != nil {
		return err
	}
	sig, err := s.SignatureBytes()
	if err != nil {
		return err
	}
	digest, err := keys.DigestFor(s.HashAlg(), s.signed)
	if err != nil {
		return wrapError(KindCrypto, "RVL-SEAL-441", "unsupported Hash-Alg", err)
	}

	switch s.SignatureAlg() {
	case "ed25519":
		if !ed25519.Verify(ed25519.PublicKey(pub), digest, sig) {
			return newError(KindCrypto, "RVL-SEAL-451", "signature invalid")
		}
		return nil
	case "dilithium3":
		var pk mode3.PublicKey
		if err := pk.UnmarshalBinary(pub); err != nil {
			return wrapError(KindCrypto, "RVL-SEAL-415", "invalid dilithium3 public key", err)
		}
		if !mode3.Verify(&pk, digest, sig) {
			return newError(KindCrypto, "RVL-SEAL-451", "signature invalid")
		}
		return nil
	default:
		return newError(KindCrypto, "RVL-SEAL-461", "unsupported Signature-Alg")
	}
}

func decodeBase64(v string) ([]byte, error) {
	// Prefer standard padded encoding, but accept raw encoding too.
	if b, err := base64.StdEncoding.DecodeString(v); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(v)
}
