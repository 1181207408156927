package annotations

import (
	"fmt"

	"github.com/toyz/routeplan/internal/models"
)

// AnnotationError defines the interface for annotation-related errors
type AnnotationError interface {
	error
	Location() models.SourceLocation
	Suggestion() string
	Code() ErrorCode
}

// ErrorCode represents different types of annotation errors
type ErrorCode int

const (
	SyntaxErrorCode ErrorCode = iota
	ValidationErrorCode
	SchemaErrorCode
)

// String returns the string representation of the error code
func (e ErrorCode) String() string {
	switch e {
	case SyntaxErrorCode:
		return "SyntaxError"
	case ValidationErrorCode:
		return "ValidationError"
	case SchemaErrorCode:
		return "SchemaError"
	default:
		return "UnknownError"
	}
}

// SyntaxError is an annotation comment the grammar rejects
type SyntaxError struct {
	Msg  string
	Loc  models.SourceLocation
	Hint string
}

func (e *SyntaxError) Error() string {
	return withHint(fmt.Sprintf("%s: syntax error: %s", e.Loc, e.Msg), e.Hint)
}

func (e *SyntaxError) Location() models.SourceLocation { return e.Loc }
func (e *SyntaxError) Suggestion() string              { return e.Hint }
func (e *SyntaxError) Code() ErrorCode                 { return SyntaxErrorCode }

// ValidationError is a parameter value its schema rejects
type ValidationError struct {
	Parameter string
	Expected  string
	Actual    string
	Loc       models.SourceLocation
	Hint      string
}

func (e *ValidationError) Error() string {
	return withHint(fmt.Sprintf("%s: parameter '%s' validation failed: expected %s, got %s",
		e.Loc, e.Parameter, e.Expected, e.Actual), e.Hint)
}

func (e *ValidationError) Location() models.SourceLocation { return e.Loc }
func (e *ValidationError) Suggestion() string              { return e.Hint }
func (e *ValidationError) Code() ErrorCode                 { return ValidationErrorCode }

// SchemaError is an annotation that does not fit any registered schema:
// unknown kind, unknown flag, wrong arity
type SchemaError struct {
	Msg  string
	Loc  models.SourceLocation
	Hint string
}

func (e *SchemaError) Error() string {
	return withHint(fmt.Sprintf("%s: schema error: %s", e.Loc, e.Msg), e.Hint)
}

func (e *SchemaError) Location() models.SourceLocation { return e.Loc }
func (e *SchemaError) Suggestion() string              { return e.Hint }
func (e *SchemaError) Code() ErrorCode                 { return SchemaErrorCode }

func withHint(msg, hint string) string {
	if hint == "" {
		return msg
	}
	return msg + ". " + hint
}

// Reason returns the message of an annotation error without its location
// prefix, for embedding in a diagnostic that carries the location itself
func Reason(err error) string {
	switch e := err.(type) {
	case *SyntaxError:
		return withHint("syntax error: "+e.Msg, e.Hint)
	case *ValidationError:
		return withHint(fmt.Sprintf("parameter '%s': expected %s, got %s", e.Parameter, e.Expected, e.Actual), e.Hint)
	case *SchemaError:
		return withHint(e.Msg, e.Hint)
	default:
		return err.Error()
	}
}
