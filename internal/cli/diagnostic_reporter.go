package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/toyz/routeplan/internal/diagnostics"
	"github.com/toyz/routeplan/internal/models"
)

// DiagnosticReporter renders compiler diagnostics and host errors for people
type DiagnosticReporter struct {
	verbose bool
	out     io.Writer
}

// NewDiagnosticReporter creates a reporter writing to out
func NewDiagnosticReporter(verbose bool, out io.Writer) *DiagnosticReporter {
	return &DiagnosticReporter{
		verbose: verbose,
		out:     out,
	}
}

var severityColors = map[models.Severity]*color.Color{
	models.SeverityError:   color.New(color.FgRed, color.Bold),
	models.SeverityWarning: color.New(color.FgYellow, color.Bold),
	models.SeverityInfo:    color.New(color.FgCyan),
}

// ReportDiagnostics prints diagnostics grouped by file, in the order given
func (r *DiagnosticReporter) ReportDiagnostics(diags []models.Diagnostic) {
	if len(diags) == 0 {
		return
	}

	var files []string
	byFile := make(map[string][]models.Diagnostic)
	for _, d := range diags {
		if _, ok := byFile[d.Location.File]; !ok {
			files = append(files, d.Location.File)
		}
		byFile[d.Location.File] = append(byFile[d.Location.File], d)
	}

	bold := color.New(color.Bold)
	for _, file := range files {
		name := file
		if name == "" {
			name = "<unknown>"
		}
		bold.Fprintln(r.out, name)
		for _, d := range byFile[file] {
			fmt.Fprintf(r.out, "  %d:%d ", d.Location.Line, d.Location.Column)
			severityColors[d.Severity].Fprint(r.out, d.Severity.String())
			fmt.Fprintf(r.out, " %s %s\n", d.ID, d.Message)
			if r.verbose {
				fmt.Fprintf(r.out, "      %s: %s\n", d.Category, d.Title)
			}
		}
	}

	errs, warnings, infos := diagnostics.Count(diags)
	fmt.Fprintf(r.out, "\n%s, %s, %s\n", plural(errs, "error"), plural(warnings, "warning"), plural(infos, "info"))
}

// ReportError prints a host-level failure with its context and suggestions
func (r *DiagnosticReporter) ReportError(err error) {
	var merr *multierror.Error
	if errors.As(err, &merr) && len(merr.Errors) > 1 {
		fmt.Fprintf(r.out, "\nERROR: %d problems\n", len(merr.Errors))
		for _, e := range merr.Errors {
			r.ReportError(e)
		}
		return
	}

	fmt.Fprintf(r.out, "\nERROR: Compilation Failed\n")
	fmt.Fprintf(r.out, "========================\n\n")

	var genErr *models.GeneratorError
	if errors.As(err, &genErr) {
		r.reportGeneratorError(genErr)
	} else {
		fmt.Fprintf(r.out, "Message: %s\n", err.Error())
	}
	fmt.Fprintln(r.out)
}

func (r *DiagnosticReporter) reportGeneratorError(genErr *models.GeneratorError) {
	title := strings.ToUpper(genErr.Type.String()[:1]) + genErr.Type.String()[1:] + " Error"
	fmt.Fprintf(r.out, "Type: %s\n", title)
	fmt.Fprintf(r.out, "%s\n\n", strings.Repeat("-", len(title)+6))

	fmt.Fprintf(r.out, "Message: %s\n\n", genErr.Message)
	if genErr.Cause != nil {
		fmt.Fprintf(r.out, "Cause: %s\n\n", genErr.Cause.Error())
	}

	if genErr.File != "" {
		if genErr.Line > 0 {
			fmt.Fprintf(r.out, "Location: %s:%d\n\n", genErr.File, genErr.Line)
		} else {
			fmt.Fprintf(r.out, "File: %s\n\n", genErr.File)
		}
	}

	if len(genErr.Context) > 0 {
		r.printContext(genErr.Context)
	}
	if len(genErr.Suggestions) > 0 {
		r.printSuggestions(genErr.Suggestions)
	}
	if r.verbose && genErr.Cause != nil {
		r.printErrorChain(genErr.Cause)
	}
}

// printContext prints context entries in key order; stacks only when verbose
func (r *DiagnosticReporter) printContext(context map[string]interface{}) {
	keys := make([]string, 0, len(context))
	for k := range context {
		if k == "stack" && !r.verbose {
			continue
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return
	}
	sort.Strings(keys)

	fmt.Fprintf(r.out, "Context:\n")
	for _, k := range keys {
		fmt.Fprintf(r.out, "   %s: %v\n", r.formatContextKey(k), context[k])
	}
	fmt.Fprintln(r.out)
}

// formatContextKey converts snake_case keys to Title Case
func (r *DiagnosticReporter) formatContextKey(key string) string {
	parts := strings.Split(key, "_")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}

func (r *DiagnosticReporter) printSuggestions(suggestions []string) {
	fmt.Fprintf(r.out, "Suggestions:\n")
	for i, suggestion := range suggestions {
		lines := strings.Split(suggestion, "\n")
		fmt.Fprintf(r.out, "   %d. %s\n", i+1, lines[0])
		for _, line := range lines[1:] {
			if strings.TrimSpace(line) != "" {
				fmt.Fprintf(r.out, "      %s\n", line)
			}
		}
	}
	fmt.Fprintln(r.out)
}

func (r *DiagnosticReporter) printErrorChain(err error) {
	fmt.Fprintf(r.out, "Error Chain:\n")
	for level := 1; err != nil; level++ {
		fmt.Fprintf(r.out, "    %d. %s\n", level, err.Error())
		err = errors.Unwrap(err)
	}
	fmt.Fprintln(r.out)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
