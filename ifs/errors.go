package ifs

import "errors"

// Kind is a stable category for programmatic error handling.
//
// These categories are intended to remain stable across versions.
// Callers should branch on Kind/RuleID rather than matching error strings.
//
// NOTE: Error() strings are intentionally kept human-readable and may evolve.
// Use errors.As to extract *Error for structured handling.
type Kind string

const (
	// KindMismatch: no transform in the set reproduces a stored point within
	// tolerance. Indicates a corrupted record or the wrong key.
	KindMismatch Kind = "Mismatch"
	// KindKeyFormat: a transform set or its textual notation is unusable.
	KindKeyFormat Kind = "KeyFormat"
	// KindUnsupported: the requested operation is not available.
	KindUnsupported Kind = "Unsupported"
	// KindCanceled: the caller's context was canceled mid-operation.
	KindCanceled Kind = "Canceled"
)

// Error is the codec's structured error type.
//
// RuleID is a stable identifier (e.g., RVL-DEC-001, RVL-KEY-003) that names
// the violated invariant.
//
// For KindMismatch, Index is the zero-based index of the offending point.
type Error struct {
	Kind    Kind
	RuleID  string
	Message string
	Index   int
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func newError(kind Kind, ruleID, msg string) error {
	return &Error{Kind: kind, RuleID: ruleID, Message: msg, Index: -1}
}

func wrapError(kind Kind, ruleID, msg string, cause error) error {
	return &Error{Kind: kind, RuleID: ruleID, Message: msg, Index: -1, Cause: cause}
}

func mismatchError(ruleID, msg string, index int) error {
	return &Error{Kind: KindMismatch, RuleID: ruleID, Message: msg, Index: index}
}

// IsKind reports whether err is (or wraps) a *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// RuleID returns the stable RuleID for a structured error, or "" if unknown.
func RuleID(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.RuleID
}

// MismatchIndex returns the offending point index for a KindMismatch error,
// or -1 if err is not a mismatch.
func MismatchIndex(err error) int {
	var e *Error
	if !errors.As(err, &e) || e.Kind != KindMismatch {
		return -1
	}
	return e.Index
}
