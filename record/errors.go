package record

import "errors"

// Kind categorizes structural record failures. Callers should branch on
// Kind/RuleID rather than matching error strings.
type Kind string

const (
	// KindParse: the serialized record is not valid JSON or omits a
	// required key.
	KindParse Kind = "Parse"
	// KindRange: a field holds a value outside its domain (color channel
	// outside [0,255], negative size).
	KindRange Kind = "Range"
	// KindVersion: the record declares an unknown format version or
	// encryption type.
	KindVersion Kind = "Version"
)

// Error is the package's structured error type. RuleID is a stable
// identifier (e.g., RVL-REC-002) naming the violated rule.
type Error struct {
	Kind    Kind
	RuleID  string
	Message string
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
	return &Error{Kind: kind, RuleID: ruleID, Message: msg}
}

func wrapError(kind Kind, ruleID, msg string, cause error) error {
	return &Error{Kind: kind, RuleID: ruleID, Message: msg, Cause: cause}
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
