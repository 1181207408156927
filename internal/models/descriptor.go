package models

// ResponseBodyShape names the factory used to build an error response body
type ResponseBodyShape string

const (
	ShapeNone              ResponseBodyShape = "none"
	ShapeProblem           ResponseBodyShape = "problem"
	ShapeValidationProblem ResponseBodyShape = "validation_problem"
	ShapeBadRequest        ResponseBodyShape = "bad_request"
	ShapeNotFound          ResponseBodyShape = "not_found"
	ShapeConflict          ResponseBodyShape = "conflict"
	ShapeUnprocessable     ResponseBodyShape = "unprocessable_entity"
	ShapeInternal          ResponseBodyShape = "internal_server_error"
)

// ResponseEntry is one possible non-success response
type ResponseEntry struct {
	Status  int               `json:"status" yaml:"status"`
	Shape   ResponseBodyShape `json:"shape" yaml:"shape"`
	HasBody bool              `json:"has_body" yaml:"has_body"`
	Title   string            `json:"title,omitempty" yaml:"title,omitempty"`
}

// ResponseShape is the union of success and error responses of an endpoint
type ResponseShape struct {
	SuccessType   string          `json:"success_type,omitempty" yaml:"success_type,omitempty"`
	SuccessStatus int             `json:"success_status" yaml:"success_status"`
	Errors        []ResponseEntry `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// EndpointDescriptor is the emitted, validated artifact for one handler.
// Field order is part of the table's compatibility contract.
type EndpointDescriptor struct {
	ID              string             `json:"id" yaml:"id"`
	Method          string             `json:"method" yaml:"method"`
	Route           string             `json:"route" yaml:"route"`
	NormalizedRoute string             `json:"normalized_route" yaml:"normalized_route"`
	Template        RouteTemplate      `json:"template" yaml:"template"`
	Handler         string             `json:"handler" yaml:"handler"`
	Bindings        []ParameterBinding `json:"bindings" yaml:"bindings"`
	Response        ResponseShape      `json:"response" yaml:"response"`
	Middleware      []string           `json:"middleware,omitempty" yaml:"middleware,omitempty"`
	Tags            []string           `json:"tags,omitempty" yaml:"tags,omitempty"`
	Location        SourceLocation     `json:"location" yaml:"location"`
	Diagnostics     []Diagnostic       `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// RoutingTable is the ordered list of emitted endpoints
type RoutingTable struct {
	Endpoints []EndpointDescriptor `json:"endpoints" yaml:"endpoints"`
}
