// Package compiler runs the analysis pipeline over a batch of handler
// declarations and produces the routing table with its diagnostics.
package compiler

import (
	"encoding/json"
	"fmt"
	"runtime/debug"

	"github.com/google/uuid"
	"github.com/toyz/routeplan/internal/binding"
	"github.com/toyz/routeplan/internal/config"
	"github.com/toyz/routeplan/internal/diagnostics"
	"github.com/toyz/routeplan/internal/dialect"
	"github.com/toyz/routeplan/internal/duplicates"
	"github.com/toyz/routeplan/internal/emitter"
	"github.com/toyz/routeplan/internal/models"
	"github.com/toyz/routeplan/internal/routes"
	"github.com/toyz/routeplan/internal/utils"
	"golang.org/x/sync/errgroup"
)

// Logger receives progress output. *utils.DiagnosticSystem satisfies it.
type Logger interface {
	Verbose(format string, args ...interface{})
	Debug(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Verbose(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{})   {}

// Option configures a Compiler
type Option func(*Compiler)

// WithLogger sets the progress logger
func WithLogger(l Logger) Option {
	return func(c *Compiler) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithCache shares a memo cache between compilers, for incremental rebuilds
func WithCache(cache *utils.Cache[string, emitter.Provisional]) Option {
	return func(c *Compiler) {
		if cache != nil {
			c.cache = cache
		}
	}
}

// Compiler compiles handler declarations under a fixed policy. It is safe for
// concurrent use.
type Compiler struct {
	policy   config.Policy
	resolver *binding.Resolver
	engine   *diagnostics.Engine
	cache    *utils.Cache[string, emitter.Provisional]
	logger   Logger
}

// Result is the output of one compilation pass
type Result struct {
	Table models.RoutingTable
	// Diagnostics holds every finding of the pass, including those of
	// excluded endpoints, sorted by location
	Diagnostics []models.Diagnostic
}

// New creates a compiler for policy
func New(policy config.Policy, opts ...Option) *Compiler {
	c := &Compiler{
		policy:   policy,
		resolver: binding.NewResolver(policy.BindingOptions()),
		engine:   diagnostics.NewEngine(diagnostics.EngineOptions{KnownMiddleware: policy.KnownMiddleware}),
		cache:    utils.NewCache[string, emitter.Provisional](),
		logger:   nopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CacheStats reports memoisation effectiveness
func (c *Compiler) CacheStats() utils.CacheStats {
	return c.cache.GetStats()
}

// Compile analyses decls. Malformed declarations never produce an error; they
// are excluded from the table and explained in Result.Diagnostics. The only
// error is an internal fault while analysing an endpoint.
func (c *Compiler) Compile(decls []models.HandlerDeclaration) (*Result, error) {
	provisionals := make([]emitter.Provisional, len(decls))

	g := new(errgroup.Group)
	g.SetLimit(c.policy.Workers())
	for i := range decls {
		i := i
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = &models.GeneratorError{
						Type:    models.ErrorTypeInternal,
						File:    decls[i].Location.File,
						Line:    decls[i].Location.Line,
						Message: fmt.Sprintf("analysing %s: %v", decls[i].QualifiedName(), r),
						Context: map[string]interface{}{
							"handler": decls[i].QualifiedName(),
							"stack":   string(debug.Stack()),
						},
					}
				}
			}()
			provisionals[i] = c.endpoint(decls[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("compiling %d handlers: %w", len(decls), err)
	}

	c.detectDuplicates(provisionals)
	if len(c.policy.Targets) > 0 {
		c.probeDialects(provisionals)
	}

	var all []models.Diagnostic
	for _, p := range provisionals {
		all = append(all, p.Descriptor.Diagnostics...)
	}

	table := emitter.Emit(provisionals)
	c.logger.Verbose("compiled %d handlers into %d endpoints", len(decls), len(table.Endpoints))

	return &Result{Table: table, Diagnostics: diagnostics.Sort(all)}, nil
}

// endpoint runs the per-endpoint stages, memoised on the declaration's fingerprint
func (c *Compiler) endpoint(decl models.HandlerDeclaration) emitter.Provisional {
	key, err := c.fingerprint(decl)
	if err == nil {
		if p, ok := c.cache.Get(key); ok {
			c.logger.Debug("cache hit for %s", decl.QualifiedName())
			return p
		}
	}

	p := c.analyse(decl)
	if err == nil {
		c.cache.Set(key, p)
	}
	return p
}

func (c *Compiler) fingerprint(decl models.HandlerDeclaration) (string, error) {
	data, err := json.Marshal(decl)
	if err != nil {
		return "", err
	}
	data = append(data, c.policy.Fingerprint()...)
	return uuid.NewSHA1(uuid.NameSpaceOID, data).String(), nil
}

func (c *Compiler) analyse(decl models.HandlerDeclaration) emitter.Provisional {
	c.logger.Debug("analysing %s %s (%s)", decl.Method, decl.Pattern, decl.QualifiedName())

	tmpl, diags := routes.Parse(decl.Pattern, decl.Location)

	plan := make([]diagnostics.ResolvedParameter, 0, len(decl.Parameters))
	for _, p := range decl.Parameters {
		res := c.resolver.Resolve(p, tmpl, decl.Method)
		plan = append(plan, diagnostics.ResolvedParameter{Parameter: p, Source: res.Source})
		diags = append(diags, res.Diagnostics...)
	}

	shape, shapeDiags := c.policy.Table().Shape(decl.Return, decl.Annotations, decl.Location)
	diags = append(diags, shapeDiags...)

	diags = append(diags, c.engine.Check(diagnostics.Analysis{
		Handler:       decl,
		Template:      tmpl,
		TemplateValid: !tmpl.Invalid,
		Parameters:    plan,
	})...)

	return emitter.NewProvisional(decl, tmpl, plan, shape, diags)
}

func (c *Compiler) detectDuplicates(provisionals []emitter.Provisional) {
	entries := make([]duplicates.Entry, len(provisionals))
	for i, p := range provisionals {
		entries[i] = duplicates.Entry{
			Method:   p.Descriptor.Method,
			Template: p.Template,
			Handler:  p.Descriptor.Handler,
			Location: p.Descriptor.Location,
		}
	}
	for i, d := range duplicates.Detect(entries) {
		provisionals[i].Attach(d)
	}
}

// probeDialects registers every still-valid endpoint on each target router
func (c *Compiler) probeDialects(provisionals []emitter.Provisional) {
	var (
		endpoints []dialect.Endpoint
		index     []int
	)
	for i, p := range provisionals {
		if !p.Valid() {
			continue
		}
		endpoints = append(endpoints, dialect.Endpoint{
			Method:   p.Descriptor.Method,
			Template: p.Template,
			Route:    p.Descriptor.Route,
			Handler:  p.Descriptor.Handler,
			Location: p.Descriptor.Location,
		})
		index = append(index, i)
	}

	for j, diags := range dialect.Check(c.policy.Targets, endpoints) {
		c.logger.Verbose("%s %s: %d router dialect finding(s)", endpoints[j].Method, endpoints[j].Route, len(diags))
		provisionals[index[j]].Attach(diags...)
	}
}
