package annotations

import (
	"fmt"
	"go/token"
	"strings"

	"github.com/toyz/routeplan/internal/models"
)

// ValidateIdentifier requires a Go identifier
func ValidateIdentifier(v interface{}) error {
	s := v.(string)
	if !token.IsIdentifier(s) {
		return fmt.Errorf("must be a Go identifier, got '%s'", s)
	}
	return nil
}

// ValidateBindingSource requires one of the binding source keywords
func ValidateBindingSource(v interface{}) error {
	if _, err := models.ParseBindingAnnotation(v.(string)); err != nil {
		return fmt.Errorf("must be one of route, query, header, body, form, service, keyed, group: %w", err)
	}
	return nil
}

// ValidatePrefix requires an absolute URL path
func ValidatePrefix(v interface{}) error {
	s := v.(string)
	if !strings.HasPrefix(s, "/") {
		return fmt.Errorf("prefix must start with '/', got '%s'", s)
	}
	return nil
}

// ValidateSuccessStatus requires a status code in [100,600)
func ValidateSuccessStatus(v interface{}) error {
	code := v.(int)
	if code < 100 || code >= 600 {
		return fmt.Errorf("must be an HTTP status code, got %d", code)
	}
	return nil
}

// ValidateNonEmptyList requires at least one non-empty element
func ValidateNonEmptyList(v interface{}) error {
	for _, s := range v.([]string) {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("list contains an empty element")
		}
	}
	return nil
}

// requireErrorsDeclared rejects an errors annotation naming nothing
func requireErrorsDeclared(a *ParsedAnnotation) error {
	if len(a.Rest) == 0 && len(a.GetIntSlice("Codes")) == 0 {
		return &SchemaError{
			Msg:  "errors annotation declares no category and no codes",
			Loc:  a.Location,
			Hint: "name at least one category (NotFound, Conflict, ...) or pass -Codes=429",
		}
	}
	return nil
}
