package models

import (
	"fmt"
	"strings"
)

// TypeKind classifies a parameter type for binding purposes
type TypeKind int

const (
	KindPrimitive TypeKind = iota
	KindCollection
	KindComplex
	KindSpecial
	KindParseable
)

var typeKindNames = []string{"primitive", "collection", "complex", "special", "parseable"}

// String returns the string representation of the type kind
func (k TypeKind) String() string {
	if int(k) < 0 || int(k) >= len(typeKindNames) {
		return "unknown"
	}
	return typeKindNames[k]
}

// MarshalText implements encoding.TextMarshaler
func (k TypeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// SpecialKind identifies a well-known framework type that never comes from user input
type SpecialKind int

const (
	SpecialNone SpecialKind = iota
	SpecialRequestContext
	SpecialResponseWriter
	SpecialCancellation
	SpecialStream
	SpecialPipeReader
	SpecialFormFile
	SpecialFormFiles
	SpecialFormCollection
)

var specialKindNames = []string{
	"none", "request_context", "response_writer", "cancellation",
	"stream", "pipe_reader", "form_file", "form_files", "form_collection",
}

// String returns the string representation of the special kind
func (s SpecialKind) String() string {
	if int(s) < 0 || int(s) >= len(specialKindNames) {
		return "unknown"
	}
	return specialKindNames[s]
}

// MarshalText implements encoding.TextMarshaler
func (s SpecialKind) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// SourceKind is the closed set of binding sources
type SourceKind int

const (
	SourceRoute SourceKind = iota
	SourceQuery
	SourceHeader
	SourceBody
	SourceForm
	SourceFormFile
	SourceFormFiles
	SourceService
	SourceKeyedService
	SourceSpecial
	SourceComposite
)

var sourceKindNames = []string{
	"route", "query", "header", "body", "form", "form_file", "form_files",
	"service", "keyed_service", "special", "composite",
}

// String returns the string representation of the source kind
func (s SourceKind) String() string {
	if int(s) < 0 || int(s) >= len(sourceKindNames) {
		return "unknown"
	}
	return sourceKindNames[s]
}

// MarshalText implements encoding.TextMarshaler
func (s SourceKind) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ErrorCategory is the closed set of semantic error categories
type ErrorCategory int

const (
	CategoryFailure ErrorCategory = iota
	CategoryUnexpected
	CategoryValidation
	CategoryConflict
	CategoryNotFound
	CategoryUnauthorized
	CategoryForbidden
)

var errorCategoryNames = []string{
	"Failure", "Unexpected", "Validation", "Conflict", "NotFound", "Unauthorized", "Forbidden",
}

// AllErrorCategories returns every category in canonical order
func AllErrorCategories() []ErrorCategory {
	return []ErrorCategory{
		CategoryFailure, CategoryUnexpected, CategoryValidation, CategoryConflict,
		CategoryNotFound, CategoryUnauthorized, CategoryForbidden,
	}
}

// String returns the string representation of the error category
func (c ErrorCategory) String() string {
	if int(c) < 0 || int(c) >= len(errorCategoryNames) {
		return "Unknown"
	}
	return errorCategoryNames[c]
}

// ParseErrorCategory converts a category name to an ErrorCategory (case-insensitive)
func ParseErrorCategory(s string) (ErrorCategory, error) {
	for i, name := range errorCategoryNames {
		if strings.EqualFold(name, s) {
			return ErrorCategory(i), nil
		}
	}
	return 0, fmt.Errorf("unknown error category: %s", s)
}

// Severity of a diagnostic
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

// String returns the string representation of the severity
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ErrorType represents different types of host-level generator errors
type ErrorType int

const (
	ErrorTypeAnnotationSyntax ErrorType = iota
	ErrorTypeValidation
	ErrorTypeLoad
	ErrorTypeConfig
	ErrorTypeOutput
	ErrorTypeFileSystem
	ErrorTypeInternal
)

// String returns the string representation of the error type
func (e ErrorType) String() string {
	switch e {
	case ErrorTypeAnnotationSyntax:
		return "annotation syntax"
	case ErrorTypeValidation:
		return "validation"
	case ErrorTypeLoad:
		return "load"
	case ErrorTypeConfig:
		return "config"
	case ErrorTypeOutput:
		return "output"
	case ErrorTypeFileSystem:
		return "file system"
	case ErrorTypeInternal:
		return "internal"
	default:
		return "unknown"
	}
}
