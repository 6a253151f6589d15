package compositekey

import "errors"

// Kind is a stable category for programmatic error handling.
//
// Callers should branch on Kind/RuleID (or errors.Is against the sentinels)
// rather than matching error strings.
type Kind string

const (
	// KindStructure marks a tree that violates the weight/threshold invariants.
	// It is only ever raised while a key is being built or decoded.
	KindStructure Kind = "Structure"
	// KindEncoding marks malformed or non-canonical text/binary input.
	KindEncoding Kind = "Encoding"
)

var (
	// ErrInvalidStructure matches every KindStructure error via errors.Is.
	ErrInvalidStructure = errors.New("compositekey: invalid structure")
	// ErrInvalidEncoding matches every KindEncoding error via errors.Is.
	ErrInvalidEncoding = errors.New("compositekey: invalid encoding")
)

// Error is the package's structured error type.
//
// RuleID names the violated invariant (CK-STR-xxx for structure, CK-ENC-xxx
// for encodings). Message is intended for humans; do not match on it.
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
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is makes errors.Is(err, ErrInvalidStructure) and
// errors.Is(err, ErrInvalidEncoding) work on structured errors.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	switch e.Kind {
	case KindStructure:
		return target == ErrInvalidStructure
	case KindEncoding:
		return target == ErrInvalidEncoding
	default:
		return false
	}
}

func structureError(ruleID, msg string) error {
	return &Error{Kind: KindStructure, RuleID: ruleID, Message: msg}
}

func encodingError(ruleID, msg string) error {
	return &Error{Kind: KindEncoding, RuleID: ruleID, Message: msg}
}

func wrapEncodingError(ruleID, msg string, cause error) error {
	if cause == nil {
		return encodingError(ruleID, msg)
	}
	return &Error{Kind: KindEncoding, RuleID: ruleID, Message: msg, Cause: cause}
}

// IsKind reports whether err is (or wraps) a *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Cause
	}
	return false
}

// RuleID returns the RuleID of the outermost structured error, or "" if unknown.
func RuleID(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.RuleID
}
