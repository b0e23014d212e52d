// Package keys provides key helpers for sealing evidence records.
//
// Pure, deterministic primitives (examiner-key formatting, role-seed
// derivation, digest and signature helpers) are stable. The filesystem
// KeyStore is a local-first convenience for examiners and labs and is not a
// long-term storage contract.
package keys
