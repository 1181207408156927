package annotations

// Built-in annotation schemas

// RouteAnnotationSchema defines the schema for //routeplan::route annotations
var RouteAnnotationSchema = AnnotationSchema{
	Type:        RouteAnnotation,
	Description: "Declares the HTTP method and route pattern of a handler",
	Positional: []PositionalSpec{
		{Name: "method", ParameterSpec: ParameterSpec{Type: StringType, Required: true, Description: "HTTP method token"}},
		{Name: "path", ParameterSpec: ParameterSpec{Type: StringType, Required: true, Description: "route pattern, e.g. /users/{id:int}"}},
	},
	Parameters: map[string]ParameterSpec{
		"Middleware": {Type: StringSliceType, Description: "comma-separated middleware names", Validator: ValidateNonEmptyList},
		"Tags":       {Type: StringSliceType, Description: "comma-separated grouping tags", Validator: ValidateNonEmptyList},
		"Status":     {Type: IntType, Description: "success status code override", Validator: ValidateSuccessStatus},
	},
	Examples: []string{
		"//routeplan::route GET /users",
		"//routeplan::route GET /users/{id:int}",
		"//routeplan::route POST /users -Status=201",
		"//routeplan::route DELETE /users/{id:int} -Middleware=Auth,Audit -Tags=users",
	},
}

// BindAnnotationSchema defines the schema for //routeplan::bind annotations
var BindAnnotationSchema = AnnotationSchema{
	Type:        BindAnnotation,
	Description: "Declares the binding source of one handler parameter",
	Positional: []PositionalSpec{
		{Name: "param", ParameterSpec: ParameterSpec{Type: StringType, Required: true, Validator: ValidateIdentifier}},
		{Name: "source", ParameterSpec: ParameterSpec{Type: StringType, Required: true, Validator: ValidateBindingSource}},
	},
	Parameters: map[string]ParameterSpec{
		"Name": {Type: StringType, Description: "request key when it differs from the parameter name"},
		"Key":  {Type: StringType, Description: "service key for keyed bindings"},
	},
	Examples: []string{
		"//routeplan::bind id route",
		"//routeplan::bind trace header -Name=X-Trace-Id",
		"//routeplan::bind store keyed -Key=primary",
		"//routeplan::bind filter group",
	},
}

// DefaultAnnotationSchema defines the schema for //routeplan::default annotations
var DefaultAnnotationSchema = AnnotationSchema{
	Type:        DefaultAnnotation,
	Description: "Declares a default value for a handler parameter",
	Positional: []PositionalSpec{
		{Name: "param", ParameterSpec: ParameterSpec{Type: StringType, Required: true, Validator: ValidateIdentifier}},
		{Name: "value", ParameterSpec: ParameterSpec{Type: StringType, Required: true}},
	},
	Examples: []string{
		"//routeplan::default page 1",
		`//routeplan::default sort "name asc"`,
	},
}

// ErrorsAnnotationSchema defines the schema for //routeplan::errors annotations
var ErrorsAnnotationSchema = AnnotationSchema{
	Type:        ErrorsAnnotation,
	Description: "Declares the error categories and custom status codes a handler can produce",
	Variadic:    true,
	Parameters: map[string]ParameterSpec{
		"Codes": {Type: IntSliceType, Description: "comma-separated custom status codes"},
	},
	Validators: []CustomValidator{requireErrorsDeclared},
	Examples: []string{
		"//routeplan::errors NotFound",
		"//routeplan::errors NotFound Conflict -Codes=429,503",
		"//routeplan::errors -Codes=422",
	},
}

// ControllerAnnotationSchema defines the schema for //routeplan::controller annotations
var ControllerAnnotationSchema = AnnotationSchema{
	Type:        ControllerAnnotation,
	Description: "Marks a struct whose handler methods share a route prefix and middleware",
	Parameters: map[string]ParameterSpec{
		"Prefix":     {Type: StringType, Description: "route prefix for every handler of the controller", Validator: ValidatePrefix},
		"Middleware": {Type: StringSliceType, Description: "middleware applied to every handler", Validator: ValidateNonEmptyList},
		"Tags":       {Type: StringSliceType, Description: "tags applied to every handler", Validator: ValidateNonEmptyList},
	},
	Examples: []string{
		"//routeplan::controller",
		"//routeplan::controller -Prefix=/api/v1",
		"//routeplan::controller -Prefix=/admin -Middleware=Auth",
	},
}

// MiddlewareAnnotationSchema defines the schema for //routeplan::middleware annotations
var MiddlewareAnnotationSchema = AnnotationSchema{
	Type:        MiddlewareAnnotation,
	Description: "Registers a struct as named middleware",
	Positional: []PositionalSpec{
		{Name: "name", ParameterSpec: ParameterSpec{Type: StringType, Required: true, Validator: ValidateIdentifier}},
	},
	Examples: []string{"//routeplan::middleware Auth"},
}

// ParserAnnotationSchema defines the schema for //routeplan::parser annotations
var ParserAnnotationSchema = AnnotationSchema{
	Type:        ParserAnnotation,
	Description: "Registers a function parsing a request string into a custom type",
	Positional: []PositionalSpec{
		{Name: "type", ParameterSpec: ParameterSpec{Type: StringType, Required: true, Description: "type the function produces"}},
	},
	Examples: []string{
		"//routeplan::parser Date",
		"//routeplan::parser money.Amount",
	},
}

// builtinSchemas lists every schema the default registry carries
var builtinSchemas = []AnnotationSchema{
	RouteAnnotationSchema,
	BindAnnotationSchema,
	DefaultAnnotationSchema,
	ErrorsAnnotationSchema,
	ControllerAnnotationSchema,
	MiddlewareAnnotationSchema,
	ParserAnnotationSchema,
}
