package domain

import "fmt"

// Code is a machine-readable error code for rule engine failures.
type Code string

const (
	// CodeIllegalMove marks a move rejected by the ruleset. State is unchanged.
	CodeIllegalMove Code = "ILLEGAL_MOVE"
	// CodeInvalidCardKind marks a caravan operation given the wrong card category.
	CodeInvalidCardKind Code = "INVALID_CARD_KIND"
	// CodeTargetNotFound marks an attach or lookup against a missing pile entry.
	CodeTargetNotFound Code = "TARGET_NOT_FOUND"
	// CodeInvalidOutcome marks a broken engine invariant. It is never a user error.
	CodeInvalidOutcome Code = "INVALID_OUTCOME"
)

// Error is the rule engine error type. Errors compare equal under errors.Is when
// their codes match, so callers can test against the Err* values below.
type Error struct {
	Code    Code
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target carries the same code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

var (
	ErrIllegalMove     = &Error{Code: CodeIllegalMove, Message: "illegal move"}
	ErrInvalidCardKind = &Error{Code: CodeInvalidCardKind, Message: "invalid card kind"}
	ErrTargetNotFound  = &Error{Code: CodeTargetNotFound, Message: "target not found"}
	ErrInvalidOutcome  = &Error{Code: CodeInvalidOutcome, Message: "invalid outcome"}
)

func newError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func illegalMove(format string, args ...any) *Error {
	return newError(CodeIllegalMove, format, args...)
}
