// Package routeplan is the public entry point for compiling annotated Go
// handlers into a validated routing table.
//
//	policy := routeplan.DefaultPolicy()
//	res, err := routeplan.CompileDir(ctx, policy, "./internal/api")
//	if err != nil {
//		return err
//	}
//	routeplan.Encode(os.Stdout, res.Table, routeplan.FormatJSON)
package routeplan

import (
	"context"
	"fmt"
	"io"

	"github.com/toyz/routeplan/internal/compiler"
	"github.com/toyz/routeplan/internal/config"
	"github.com/toyz/routeplan/internal/diagnostics"
	"github.com/toyz/routeplan/internal/emitter"
	"github.com/toyz/routeplan/internal/loader"
	"github.com/toyz/routeplan/internal/models"
)

type (
	Policy             = config.Policy
	HandlerDeclaration = models.HandlerDeclaration
	RoutingTable       = models.RoutingTable
	EndpointDescriptor = models.EndpointDescriptor
	Diagnostic         = models.Diagnostic
	Severity           = models.Severity
	Format             = emitter.Format
)

const (
	FormatJSON = emitter.FormatJSON
	FormatYAML = emitter.FormatYAML
)

const (
	SeverityError   = models.SeverityError
	SeverityWarning = models.SeverityWarning
	SeverityInfo    = models.SeverityInfo
)

// Result is a compiled routing table together with every diagnostic of the
// pass, sorted by location. Load problems reported on annotations appear here
// as well.
type Result struct {
	Table       RoutingTable
	Diagnostics []Diagnostic
	// Middleware and Parsers list the names declared in the loaded sources
	Middleware []string
	Parsers    []string
	// LoadErrors aggregates the packages that could not be loaded. Handlers
	// of every other package are still compiled.
	LoadErrors error
}

// HasErrors reports whether any endpoint was rejected or any package failed
// to load
func (r *Result) HasErrors() bool {
	return r.LoadErrors != nil || diagnostics.HasErrors(r.Diagnostics)
}

// DefaultPolicy returns the built-in policy
func DefaultPolicy() Policy {
	return config.Default()
}

// LoadPolicy reads a YAML policy file over the defaults
func LoadPolicy(path string) (Policy, error) {
	return config.Load(path)
}

// Compile analyses already-built declarations
func Compile(decls []HandlerDeclaration, policy Policy) (*Result, error) {
	res, err := compiler.New(policy).Compile(decls)
	if err != nil {
		return nil, err
	}
	return &Result{Table: res.Table, Diagnostics: res.Diagnostics}, nil
}

// CompileSource loads a single Go file held in memory and compiles its handlers
func CompileSource(policy Policy, filename, src string) (*Result, error) {
	l := loader.New(loader.Options{ParseableTypes: policy.ParseableTypes})
	loaded, err := l.LoadSource(filename, src)
	if err != nil {
		return nil, err
	}
	return compileLoaded(policy, loaded, nil)
}

// CompileDir loads every Go package below the given directories and compiles
// their handlers. Directories are scanned recursively; test files are skipped.
// Packages that fail to parse are reported in Result.LoadErrors.
func CompileDir(ctx context.Context, policy Policy, dirs ...string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l := loader.New(loader.Options{ParseableTypes: policy.ParseableTypes})
	loaded, err := l.LoadDir(dirs...)
	if loaded == nil {
		return nil, err
	}
	return compileLoaded(policy, loaded, err)
}

// CompilePackages resolves patterns with the go tool from dir and compiles
// the handlers of the matched packages. Packages with errors are reported in
// Result.LoadErrors.
func CompilePackages(ctx context.Context, policy Policy, dir string, patterns ...string) (*Result, error) {
	l := loader.New(loader.Options{ParseableTypes: policy.ParseableTypes, Root: dir})
	loaded, err := l.LoadPackages(ctx, dir, patterns...)
	if loaded == nil {
		return nil, err
	}
	return compileLoaded(policy, loaded, err)
}

// Encode writes the table as JSON or YAML
func Encode(w io.Writer, table RoutingTable, format Format) error {
	return emitter.Encode(w, table, format)
}

// ParseFormat converts "json", "yaml" or "yml" to a Format
func ParseFormat(s string) (Format, error) {
	return emitter.ParseFormat(s)
}

func compileLoaded(policy Policy, loaded *loader.Result, loadErrs error) (*Result, error) {
	if len(policy.KnownMiddleware) == 0 && len(loaded.Middleware) > 0 {
		policy = policy.WithKnownMiddleware(loaded.Middleware)
	}
	res, err := compiler.New(policy).Compile(loaded.Declarations)
	if err != nil {
		return nil, fmt.Errorf("compiling routes: %w", err)
	}
	all := append(append([]Diagnostic(nil), loaded.Diagnostics...), res.Diagnostics...)
	return &Result{
		Table:       res.Table,
		Diagnostics: diagnostics.Sort(all),
		Middleware:  loaded.Middleware,
		Parsers:     loaded.Parsers,
		LoadErrors:  loadErrs,
	}, nil
}
