package annotations

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/toyz/routeplan/internal/models"
)

// annotationAST is the raw shape of an annotation comment:
//
//	//routeplan::<kind> <arg>... -<Flag>[=<value>]...
type annotationAST struct {
	Kind  string      `parser:"Prefix @Word"`
	Args  []*valueAST `parser:"@@*"`
	Flags []*flagAST  `parser:"@@*"`
}

type valueAST struct {
	Pos    lexer.Position
	Quoted *string `parser:"  @String"`
	Word   *string `parser:"| @Word"`
}

func (v *valueAST) text() string {
	if v.Quoted != nil {
		return *v.Quoted
	}
	return *v.Word
}

type flagAST struct {
	Pos   lexer.Position
	Name  string    `parser:"@Flag"`
	Value *valueAST `parser:"( Equals @@ )?"`
}

var annotationLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Prefix", Pattern: `//\s*routeplan::`},
	{Name: "Flag", Pattern: `-[A-Za-z][A-Za-z0-9_]*`},
	{Name: "Equals", Pattern: `=`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Word", Pattern: `[^\s"=][^\s"]*`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// Parser parses annotation comments and validates them against a registry
type Parser struct {
	parser   *participle.Parser[annotationAST]
	registry AnnotationRegistry
}

// NewParser creates a parser over registry; nil means DefaultRegistry
func NewParser(registry AnnotationRegistry) *Parser {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Parser{
		parser: participle.MustBuild[annotationAST](
			participle.Lexer(annotationLexer),
			participle.Elide("Whitespace"),
			participle.Unquote("String"),
		),
		registry: registry,
	}
}

// IsAnnotation reports whether a comment line is meant as an annotation
func IsAnnotation(comment string) bool {
	rest, ok := strings.CutPrefix(strings.TrimSpace(comment), "//")
	return ok && strings.HasPrefix(strings.TrimSpace(rest), "routeplan::")
}

// ParseAnnotation parses one comment line. Errors are *SyntaxError,
// *SchemaError or *ValidationError.
func (p *Parser) ParseAnnotation(comment string, loc models.SourceLocation) (*ParsedAnnotation, error) {
	comment = strings.TrimSpace(comment)

	ast, err := p.parser.ParseString(loc.File, comment)
	if err != nil {
		return nil, syntaxError(err, loc)
	}

	annotationType, err := ParseAnnotationType(ast.Kind)
	if err != nil || !p.registry.IsRegistered(annotationType) {
		return nil, &SchemaError{
			Msg:  fmt.Sprintf("unknown annotation kind '%s'", ast.Kind),
			Loc:  loc,
			Hint: "known kinds: " + strings.Join(p.kinds(), ", "),
		}
	}
	schema, err := p.registry.GetSchema(annotationType)
	if err != nil {
		return nil, &SchemaError{Msg: err.Error(), Loc: loc}
	}

	parsed := &ParsedAnnotation{
		Type:       annotationType,
		Parameters: make(map[string]interface{}),
		Location:   loc,
		Raw:        comment,
	}
	if err := bindPositional(parsed, schema, ast.Args, loc); err != nil {
		return nil, err
	}
	if err := bindFlags(parsed, schema, ast.Flags, loc); err != nil {
		return nil, err
	}
	for _, validate := range schema.Validators {
		if err := validate(parsed); err != nil {
			var annErr AnnotationError
			if errors.As(err, &annErr) {
				return nil, annErr
			}
			return nil, &SchemaError{Msg: err.Error(), Loc: loc}
		}
	}
	return parsed, nil
}

func (p *Parser) kinds() []string {
	var names []string
	for _, t := range p.registry.ListTypes() {
		names = append(names, t.String())
	}
	return names
}

func syntaxError(err error, loc models.SourceLocation) *SyntaxError {
	msg := err.Error()
	var perr participle.Error
	if errors.As(err, &perr) {
		msg = perr.Message()
		loc.Column += perr.Position().Offset
	}
	return &SyntaxError{
		Msg:  msg,
		Loc:  loc,
		Hint: "annotations look like " + Prefix + "<kind> <args> -Flag=value",
	}
}

func bindPositional(parsed *ParsedAnnotation, schema AnnotationSchema, args []*valueAST, loc models.SourceLocation) error {
	for i, spec := range schema.Positional {
		if i >= len(args) {
			if spec.Required {
				return &SchemaError{
					Msg:  fmt.Sprintf("%s annotation requires <%s>", schema.Type, spec.Name),
					Loc:  loc,
					Hint: "usage: " + schema.usage(),
				}
			}
			continue
		}
		value, err := convert(spec.Name, spec.ParameterSpec, args[i].text(), offset(loc, args[i].Pos))
		if err != nil {
			return err
		}
		parsed.Parameters[spec.Name] = value
	}

	if extra := len(args) - len(schema.Positional); extra > 0 {
		if !schema.Variadic {
			return &SchemaError{
				Msg:  fmt.Sprintf("%s annotation takes %d positional argument(s), got %d", schema.Type, len(schema.Positional), len(args)),
				Loc:  loc,
				Hint: "usage: " + schema.usage(),
			}
		}
		for _, a := range args[len(schema.Positional):] {
			parsed.Rest = append(parsed.Rest, a.text())
		}
	}
	return nil
}

func bindFlags(parsed *ParsedAnnotation, schema AnnotationSchema, flags []*flagAST, loc models.SourceLocation) error {
	for _, f := range flags {
		name := strings.TrimPrefix(f.Name, "-")
		flagLoc := offset(loc, f.Pos)

		spec, ok := schema.Parameters[name]
		if !ok {
			hint := fmt.Sprintf("%s takes no flags", schema.Type)
			if len(schema.Parameters) > 0 {
				hint = "allowed flags: -" + strings.Join(sortedKeys(schema.Parameters), ", -")
			}
			return &SchemaError{Msg: fmt.Sprintf("unknown flag -%s for %s annotation", name, schema.Type), Loc: flagLoc, Hint: hint}
		}
		if parsed.HasParameter(name) {
			return &SchemaError{Msg: fmt.Sprintf("flag -%s given more than once", name), Loc: flagLoc}
		}

		if f.Value == nil {
			if spec.Type != BoolType {
				return &ValidationError{
					Parameter: name,
					Expected:  spec.Type.String() + " value",
					Actual:    "nothing",
					Loc:       flagLoc,
					Hint:      fmt.Sprintf("write -%s=<value>", name),
				}
			}
			parsed.Parameters[name] = true
			continue
		}

		value, err := convert(name, spec, f.Value.text(), flagLoc)
		if err != nil {
			return err
		}
		parsed.Parameters[name] = value
	}
	return nil
}

// convert turns raw text into the spec's type and runs its validator
func convert(name string, spec ParameterSpec, raw string, loc models.SourceLocation) (interface{}, error) {
	invalid := func(hint string) error {
		return &ValidationError{Parameter: name, Expected: spec.Type.String(), Actual: fmt.Sprintf("'%s'", raw), Loc: loc, Hint: hint}
	}

	var value interface{}
	switch spec.Type {
	case StringType:
		value = raw
	case BoolType:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, invalid("use true or false")
		}
		value = b
	case IntType:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, invalid("use a decimal integer")
		}
		value = n
	case StringSliceType:
		parts := strings.Split(raw, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		value = parts
	case IntSliceType:
		var codes []int
		for _, part := range strings.Split(raw, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return nil, invalid("use comma-separated integers, e.g. 429,503")
			}
			codes = append(codes, n)
		}
		value = codes
	}

	if spec.Validator != nil {
		if err := spec.Validator(value); err != nil {
			return nil, invalid(err.Error())
		}
	}
	return value, nil
}

func offset(loc models.SourceLocation, pos lexer.Position) models.SourceLocation {
	loc.Column += pos.Offset
	return loc
}
