package config

import (
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/toyz/routeplan/internal/binding"
	"github.com/toyz/routeplan/internal/models"
	"github.com/toyz/routeplan/internal/taxonomy"
	"gopkg.in/yaml.v3"
)

// Policy is the immutable compilation policy. Build one with Default or
// Load; the zero value is not usable.
type Policy struct {
	ReadOnlyMethods []string       `yaml:"read_only_methods"`
	PayloadMethods  []string       `yaml:"payload_methods"`
	ParseableTypes  []string       `yaml:"parseable_types"`
	HeaderLikeNames []string       `yaml:"header_like_names"`
	KnownMiddleware []string       `yaml:"known_middleware"`
	Targets         []string       `yaml:"targets"`
	Concurrency     int            `yaml:"concurrency"`
	Taxonomy        TaxonomyConfig `yaml:"taxonomy"`

	table taxonomy.Table
}

// TaxonomyConfig overrides entries of the canonical error taxonomy
type TaxonomyConfig struct {
	Categories map[string]EntryConfig `yaml:"categories"`
	Codes      map[int]EntryConfig    `yaml:"codes"`
}

// EntryConfig is one taxonomy override
type EntryConfig struct {
	Status  int    `yaml:"status"`
	Shape   string `yaml:"shape"`
	HasBody bool   `yaml:"has_body"`
}

// Default returns the default policy
func Default() Policy {
	p := Policy{
		ReadOnlyMethods: clone(DefaultReadOnlyMethods),
		PayloadMethods:  clone(DefaultPayloadMethods),
		ParseableTypes:  clone(DefaultParseableTypes),
		HeaderLikeNames: clone(DefaultHeaderLikeNames),
	}
	p.table = taxonomy.DefaultTable()
	return p
}

// Load reads a YAML policy file over the defaults
func Load(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, &models.GeneratorError{
			Type:    models.ErrorTypeConfig,
			File:    path,
			Message: "reading policy file",
			Cause:   err,
		}
	}
	return Parse(path, data)
}

// Parse decodes policy YAML over the defaults. name is used in errors only.
func Parse(name string, data []byte) (Policy, error) {
	p := Default()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Policy{}, &models.GeneratorError{
			Type:    models.ErrorTypeConfig,
			File:    name,
			Message: "parsing policy file",
			Cause:   err,
		}
	}
	if err := p.finish(); err != nil {
		return Policy{}, &models.GeneratorError{
			Type:        models.ErrorTypeConfig,
			File:        name,
			Message:     err.Error(),
			Suggestions: []string{"check the policy file against the documented keys"},
			Cause:       err,
		}
	}
	return p, nil
}

// finish normalises fields and builds the taxonomy table
func (p *Policy) finish() error {
	p.ReadOnlyMethods = upper(p.ReadOnlyMethods)
	p.PayloadMethods = upper(p.PayloadMethods)
	for _, m := range p.ReadOnlyMethods {
		for _, o := range p.PayloadMethods {
			if m == o {
				return fmt.Errorf("method %s is both read-only and payload", m)
			}
		}
	}

	targets, err := normalizeTargets(p.Targets)
	if err != nil {
		return err
	}
	p.Targets = targets

	if p.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got %d", p.Concurrency)
	}

	table := taxonomy.DefaultTable()
	names := make([]string, 0, len(p.Taxonomy.Categories))
	for name := range p.Taxonomy.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		e := p.Taxonomy.Categories[name]
		c, err := models.ParseErrorCategory(name)
		if err != nil {
			return err
		}
		if e.Status < 400 || e.Status >= 600 {
			return fmt.Errorf("category %s: status %d outside [400,600)", name, e.Status)
		}
		table = table.WithCategory(c, e.Status, shapeOf(e.Shape), e.HasBody)
	}
	codes := make([]int, 0, len(p.Taxonomy.Codes))
	for code := range p.Taxonomy.Codes {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		if code < 400 || code >= 600 {
			return fmt.Errorf("custom code %d outside [400,600)", code)
		}
		e := p.Taxonomy.Codes[code]
		table = table.WithCode(code, shapeOf(e.Shape), e.HasBody)
	}
	p.table = table
	return nil
}

// WithTargets returns a copy of p probing the given router dialects
func (p Policy) WithTargets(targets []string) (Policy, error) {
	normalized, err := normalizeTargets(targets)
	if err != nil {
		return Policy{}, err
	}
	p.Targets = normalized
	return p, nil
}

// WithKnownMiddleware returns a copy of p that accepts the given middleware
// names. An empty list disables the middleware check.
func (p Policy) WithKnownMiddleware(names []string) Policy {
	p.KnownMiddleware = clone(names)
	return p
}

// Table returns the error taxonomy table
func (p Policy) Table() taxonomy.Table {
	return p.table
}

// Workers returns the per-endpoint parallelism limit
func (p Policy) Workers() int {
	if p.Concurrency > 0 {
		return p.Concurrency
	}
	return runtime.GOMAXPROCS(0)
}

// BindingOptions returns the resolver configuration
func (p Policy) BindingOptions() binding.Options {
	return binding.Options{
		ReadOnlyMethods: p.ReadOnlyMethods,
		PayloadMethods:  p.PayloadMethods,
		HeaderLikeNames: p.HeaderLikeNames,
	}
}

// Fingerprint identifies everything in the policy that affects per-endpoint results
func (p Policy) Fingerprint() string {
	var b strings.Builder
	for _, part := range [][]string{p.ReadOnlyMethods, p.PayloadMethods, p.ParseableTypes, p.HeaderLikeNames, p.KnownMiddleware} {
		b.WriteString(strings.Join(part, ","))
		b.WriteByte('|')
	}
	b.WriteString(p.table.Fingerprint())
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(b.String())).String()
}

func shapeOf(s string) models.ResponseBodyShape {
	if s == "" {
		return models.ShapeProblem
	}
	return models.ResponseBodyShape(s)
}

func normalizeTargets(targets []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, t := range targets {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		known := false
		for _, k := range KnownTargets {
			if k == t {
				known = true
			}
		}
		if !known {
			return nil, fmt.Errorf("unknown router target %q (known: %s)", t, strings.Join(KnownTargets, ", "))
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Strings(out)
	return out, nil
}

func upper(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToUpper(s)
	}
	return out
}

func clone(in []string) []string {
	return append([]string(nil), in...)
}
