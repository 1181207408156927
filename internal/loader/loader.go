package loader

import (
	"context"
	"fmt"
	"go/ast"
	"go/token"
	"path/filepath"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/toyz/routeplan/internal/annotations"
	"github.com/toyz/routeplan/internal/diagnostics"
	"github.com/toyz/routeplan/internal/models"
	"github.com/toyz/routeplan/internal/utils"
	"golang.org/x/tools/go/packages"
)

// Options configures a Loader
type Options struct {
	// ParseableTypes are type names bound like primitives, e.g. "uuid.UUID"
	ParseableTypes []string
	// Registry supplies annotation schemas; nil means the built-in set
	Registry annotations.AnnotationRegistry
	// Root makes reported file names relative to it when set
	Root string
}

// Result is everything captured from source
type Result struct {
	Declarations []models.HandlerDeclaration
	// Diagnostics are annotation problems that belong to no handler
	Diagnostics []models.Diagnostic
	// Middleware lists the names declared with a middleware annotation
	Middleware []string
	// Parsers lists the type names declared with a parser annotation
	Parsers []string
}

// Loader turns annotated Go source into handler declarations
type Loader struct {
	fset      *token.FileSet
	reader    *utils.FileReader
	files     *utils.FileProcessor
	gomod     *utils.GoModParser
	parser    *annotations.Parser
	parseable []string
	root      string
}

// New creates a Loader
func New(opts Options) *Loader {
	fset := token.NewFileSet()
	reader := utils.NewFileReader(fset)
	root := opts.Root
	if root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	}
	return &Loader{
		fset:      fset,
		reader:    reader,
		files:     utils.NewFileProcessor(reader),
		gomod:     utils.NewGoModParser(reader),
		parser:    annotations.NewParser(opts.Registry),
		parseable: opts.ParseableTypes,
		root:      root,
	}
}

// LoadSource loads a single file held in memory
func (l *Loader) LoadSource(filename, src string) (*Result, error) {
	file, err := l.reader.ParseGoSource(filename, src)
	if err != nil {
		return nil, &models.GeneratorError{
			Type:    models.ErrorTypeLoad,
			File:    filename,
			Message: "parsing source",
			Cause:   err,
		}
	}
	res := &Result{}
	l.load([]unit{{path: file.Name.Name, name: file.Name.Name, files: []*ast.File{file}}}, res)
	return res, nil
}

// LoadDir loads every package found in dirs and below them. Packages that
// fail to parse are skipped and reported together in the returned error; the
// result still holds everything that loaded.
func (l *Loader) LoadDir(dirs ...string) (*Result, error) {
	var units []unit
	var errs *multierror.Error
	seen := make(map[string]bool)
	for _, root := range dirs {
		found, err := l.files.ScanDirectoriesWithGoFiles(root)
		if err != nil {
			return nil, &models.GeneratorError{
				Type:    models.ErrorTypeFileSystem,
				File:    root,
				Message: "scanning for packages",
				Cause:   err,
			}
		}

		for _, d := range found {
			abs, _ := filepath.Abs(d)
			if seen[abs] {
				continue
			}
			seen[abs] = true

			files, name, err := l.files.ParseDirectoryFiles(d)
			if err != nil {
				errs = multierror.Append(errs, &models.GeneratorError{
					Type:    models.ErrorTypeLoad,
					File:    d,
					Message: "loading package",
					Cause:   utils.WrapLoadError(filepath.Base(d), err),
				})
				continue
			}
			path := l.gomod.PackagePath(d)
			if path == "" {
				path = name
			}
			units = append(units, unit{path: path, name: name, files: files})
		}
	}

	res := &Result{}
	l.load(units, res)
	return res, errs.ErrorOrNil()
}

// LoadPackages loads packages matching patterns through the go command,
// so module-aware patterns like ./... and import paths both work
func (l *Loader) LoadPackages(ctx context.Context, dir string, patterns ...string) (*Result, error) {
	cfg := &packages.Config{
		Context: ctx,
		Mode:    packages.NeedName | packages.NeedFiles | packages.NeedSyntax,
		Dir:     dir,
		Fset:    l.fset,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, &models.GeneratorError{
			Type:        models.ErrorTypeLoad,
			Message:     fmt.Sprintf("loading packages %v", patterns),
			Suggestions: []string{"run from inside the module that contains the packages"},
			Cause:       err,
		}
	}

	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].PkgPath < pkgs[j].PkgPath })

	var units []unit
	var errs *multierror.Error
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			for _, e := range pkg.Errors {
				errs = multierror.Append(errs, &models.GeneratorError{
					Type:    models.ErrorTypeLoad,
					File:    pkg.PkgPath,
					Message: e.Msg,
				})
			}
			continue
		}
		units = append(units, unit{path: pkg.PkgPath, name: pkg.Name, files: pkg.Syntax})
	}

	res := &Result{}
	l.load(units, res)
	return res, errs.ErrorOrNil()
}

// position converts a token position, relative to the root when one is set
func (l *Loader) position(pos token.Pos) models.SourceLocation {
	p := l.fset.Position(pos)
	file := p.Filename
	if l.root != "" {
		if abs, err := filepath.Abs(file); err == nil {
			if rel, err := filepath.Rel(l.root, abs); err == nil {
				file = filepath.ToSlash(rel)
			}
		}
	}
	return models.SourceLocation{File: file, Line: p.Line, Column: p.Column}
}

func (r *Result) finish() {
	sort.SliceStable(r.Declarations, func(i, j int) bool {
		return r.Declarations[i].Location.Less(r.Declarations[j].Location)
	})
	r.Diagnostics = diagnostics.Sort(r.Diagnostics)
	r.Middleware = uniqueSorted(r.Middleware)
	r.Parsers = uniqueSorted(r.Parsers)
}

func uniqueSorted(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	sort.Strings(in)
	out := in[:1]
	for _, s := range in[1:] {
		if s != out[len(out)-1] {
			out = append(out, s)
		}
	}
	return out
}
