package party

import "errors"

// Kind is a stable category for programmatic error handling.
type Kind string

const (
	// KindName marks an empty or whitespace-only legal name.
	KindName Kind = "Name"
	// KindKey marks a missing or unusable owning key.
	KindKey Kind = "Key"
	// KindReference marks an empty reference tag.
	KindReference Kind = "Reference"
)

var (
	// ErrInvalidName matches every KindName error via errors.Is.
	ErrInvalidName = errors.New("party: invalid name")
	// ErrNilKey matches every KindKey error via errors.Is.
	ErrNilKey = errors.New("party: missing owning key")
	// ErrEmptyReference matches every KindReference error via errors.Is.
	ErrEmptyReference = errors.New("party: empty reference")
)

// Error is the package's structured error. errors.Is matches it against the
// sentinel for its Kind.
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

// Is matches the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	switch e.Kind {
	case KindName:
		return target == ErrInvalidName
	case KindKey:
		return target == ErrNilKey
	case KindReference:
		return target == ErrEmptyReference
	}
	return false
}

// RuleID returns the stable RuleID for a structured error, or "" if unknown.
func RuleID(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.RuleID
}
