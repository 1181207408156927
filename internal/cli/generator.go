package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/toyz/routeplan/internal/compiler"
	"github.com/toyz/routeplan/internal/config"
	"github.com/toyz/routeplan/internal/diagnostics"
	"github.com/toyz/routeplan/internal/emitter"
	"github.com/toyz/routeplan/internal/loader"
	"github.com/toyz/routeplan/internal/models"
	"github.com/toyz/routeplan/internal/utils"
)

// ErrDiagnostics is returned when compilation reported at least one error or
// a package failed to load. The routing table is still written.
var ErrDiagnostics = errors.New("compilation reported errors")

// Summary describes the last run
type Summary struct {
	Handlers   int
	Endpoints  int
	Middleware int
	Parsers    int
	Errors     int
	Warnings   int
	Infos      int
	// LoadFailures counts packages that could not be loaded
	LoadFailures int
	Output       string
	Duration     time.Duration
}

// Generator coordinates loading, compilation and output
type Generator struct {
	scanner     *DirectoryScanner
	reporter    *DiagnosticReporter
	diagnostics *utils.DiagnosticSystem
	stdout      io.Writer
	summary     Summary
}

// NewGenerator creates a generator. The routing table goes to stdout unless
// the config names an output file.
func NewGenerator(diag *utils.DiagnosticSystem, reporter *DiagnosticReporter, stdout io.Writer) *Generator {
	return &Generator{
		scanner:     NewDirectoryScanner(),
		reporter:    reporter,
		diagnostics: diag,
		stdout:      stdout,
	}
}

// GetSummary returns the summary of the last run
func (g *Generator) GetSummary() Summary {
	return g.summary
}

// Run executes one compilation. Diagnostics are reported as they are found;
// the routing table is written even when some endpoints were excluded.
func (g *Generator) Run(ctx context.Context, cfg Config) error {
	start := time.Now()
	g.summary = Summary{}

	policy, format, err := g.setup(cfg)
	if err != nil {
		return err
	}

	g.diagnostics.PhaseHeader("Loading")
	res, loadErr := g.load(ctx, cfg, policy)
	if res == nil {
		return loadErr
	}
	g.diagnostics.PhaseItem("%d handlers", len(res.Declarations))
	if len(res.Declarations) == 0 {
		g.diagnostics.Warn("no annotated handlers found in %v", cfg.Paths)
	}
	g.diagnostics.Debug("middleware: %v, parsers: %v", res.Middleware, res.Parsers)

	if len(policy.KnownMiddleware) == 0 && len(res.Middleware) > 0 {
		policy = policy.WithKnownMiddleware(res.Middleware)
		g.diagnostics.Info("checking middleware against %d discovered declarations", len(res.Middleware))
	}

	g.diagnostics.PhaseHeader("Compiling")
	c := compiler.New(policy, compiler.WithLogger(g.diagnostics))
	result, err := c.Compile(res.Declarations)
	if err != nil {
		return err
	}
	stats := c.CacheStats()
	g.diagnostics.Debug("parameter cache: %d entries, %d hits, %d misses", stats.Size, stats.Hits, stats.Misses)

	all := append(append([]models.Diagnostic(nil), res.Diagnostics...), result.Diagnostics...)
	all = diagnostics.Sort(all)
	g.reporter.ReportDiagnostics(all)
	if loadErr != nil {
		g.reporter.ReportError(loadErr)
	}

	if err := g.write(cfg, result.Table, format); err != nil {
		return err
	}

	errs, warnings, infos := diagnostics.Count(all)
	g.summary = Summary{
		Handlers:     len(res.Declarations),
		Endpoints:    len(result.Table.Endpoints),
		Middleware:   len(res.Middleware),
		Parsers:      len(res.Parsers),
		Errors:       errs,
		Warnings:     warnings,
		Infos:        infos,
		LoadFailures: countErrors(loadErr),
		Output:       cfg.Output,
		Duration:     time.Since(start),
	}
	g.diagnostics.Verbose("compiled in %s", g.summary.Duration.Round(time.Millisecond))

	if errs > 0 || loadErr != nil {
		return ErrDiagnostics
	}
	return nil
}

func countErrors(err error) int {
	if err == nil {
		return 0
	}
	var merr *multierror.Error
	if errors.As(err, &merr) {
		return len(merr.Errors)
	}
	return 1
}

func (g *Generator) setup(cfg Config) (config.Policy, emitter.Format, error) {
	policy := config.Default()
	if cfg.PolicyFile != "" {
		p, err := config.Load(cfg.PolicyFile)
		if err != nil {
			return config.Policy{}, "", err
		}
		policy = p
		g.diagnostics.Verbose("policy loaded from %s", cfg.PolicyFile)
	}

	if len(cfg.Targets) > 0 {
		p, err := policy.WithTargets(cfg.Targets)
		if err != nil {
			return config.Policy{}, "", &models.GeneratorError{
				Type:        models.ErrorTypeConfig,
				Message:     err.Error(),
				Suggestions: []string{fmt.Sprintf("supported targets: %v", config.KnownTargets)},
				Cause:       err,
			}
		}
		policy = p
	}

	format, err := emitter.ParseFormat(cfg.Format)
	if err != nil {
		return config.Policy{}, "", &models.GeneratorError{
			Type:        models.ErrorTypeConfig,
			Message:     err.Error(),
			Suggestions: []string{"use -format json or -format yaml"},
			Cause:       err,
		}
	}
	return policy, format, nil
}

func (g *Generator) load(ctx context.Context, cfg Config, policy config.Policy) (*loader.Result, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, &models.GeneratorError{Type: models.ErrorTypeFileSystem, Message: "resolving working directory", Cause: err}
	}
	l := loader.New(loader.Options{ParseableTypes: policy.ParseableTypes, Root: wd})

	if cfg.Packages {
		g.diagnostics.Debug("loading packages %v", cfg.Paths)
		return l.LoadPackages(ctx, wd, cfg.Paths...)
	}

	dirs, err := g.scanner.ScanDirectories(cfg.Paths)
	if err != nil {
		return nil, &models.GeneratorError{
			Type:        models.ErrorTypeFileSystem,
			Message:     "resolving input paths",
			Suggestions: []string{"pass existing directories, optionally ending in /..."},
			Cause:       err,
		}
	}
	g.diagnostics.Indent()
	for _, d := range dirs {
		g.diagnostics.PhaseItem("%s", d)
	}
	g.diagnostics.Unindent()
	return l.LoadDir(dirs...)
}

func (g *Generator) write(cfg Config, table models.RoutingTable, format emitter.Format) error {
	if cfg.Output == "" {
		return wrapOutput("", emitter.Encode(g.stdout, table, format))
	}

	f, err := os.Create(cfg.Output)
	if err != nil {
		return wrapOutput(cfg.Output, err)
	}
	if err := emitter.Encode(f, table, format); err != nil {
		f.Close()
		return wrapOutput(cfg.Output, err)
	}
	if err := f.Close(); err != nil {
		return wrapOutput(cfg.Output, err)
	}
	g.diagnostics.Verbose("routing table written to %s", cfg.Output)
	return nil
}

func wrapOutput(file string, err error) error {
	if err == nil {
		return nil
	}
	return &models.GeneratorError{
		Type:    models.ErrorTypeOutput,
		File:    file,
		Message: "writing routing table",
		Cause:   err,
	}
}
