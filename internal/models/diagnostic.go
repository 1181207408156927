package models

import "fmt"

// Diagnostic is a structured finding attached to a source location
type Diagnostic struct {
	ID       string         `json:"id" yaml:"id"`
	Severity Severity       `json:"severity" yaml:"severity"`
	Title    string         `json:"title" yaml:"title"`
	Message  string         `json:"message" yaml:"message"`
	Category string         `json:"category" yaml:"category"`
	Location SourceLocation `json:"location" yaml:"location"`
}

// String renders the diagnostic in compiler style
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s %s: %s", d.Location, d.Severity, d.ID, d.Message)
}

// IsError reports whether the diagnostic suppresses generation
func (d Diagnostic) IsError() bool {
	return d.Severity == SeverityError
}
