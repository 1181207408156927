package models

// BindingSource is the resolved origin of a parameter value
type BindingSource struct {
	Kind       SourceKind    `json:"kind" yaml:"kind"`
	Special    SpecialKind   `json:"special,omitempty" yaml:"special,omitempty"`
	Key        string        `json:"key,omitempty" yaml:"key,omitempty"`
	ServiceKey string        `json:"service_key,omitempty" yaml:"service_key,omitempty"`
	Children   []BoundMember `json:"children,omitempty" yaml:"children,omitempty"`
}

// BoundMember is one expanded member of a composite parameter
type BoundMember struct {
	Path      string               `json:"path" yaml:"path"`
	Parameter ParameterDeclaration `json:"-" yaml:"-"`
	Type      string               `json:"type" yaml:"type"`
	Source    BindingSource        `json:"source" yaml:"source"`
}

// ReadsRequest reports whether the value is taken from the incoming request
func (b BindingSource) ReadsRequest() bool {
	switch b.Kind {
	case SourceService, SourceKeyedService:
		return false
	case SourceSpecial:
		return b.Special == SpecialRequestContext || b.Special == SpecialStream || b.Special == SpecialPipeReader
	case SourceComposite:
		for _, c := range b.Children {
			if c.Source.ReadsRequest() {
				return true
			}
		}
		return false
	default:
		return true
	}
}

// NeedsContract reports whether the source requires a serialization contract
func (b BindingSource) NeedsContract() bool {
	switch b.Kind {
	case SourceBody, SourceForm:
		return true
	case SourceComposite:
		for _, c := range b.Children {
			if c.Source.NeedsContract() {
				return true
			}
		}
	}
	return false
}

// ConsumesBody reports whether the source reads the request body itself
func (b BindingSource) ConsumesBody() bool {
	switch b.Kind {
	case SourceBody, SourceForm, SourceFormFile, SourceFormFiles:
		return true
	case SourceSpecial:
		return b.Special == SpecialStream || b.Special == SpecialPipeReader
	}
	return false
}

// BodyConsumers counts body-consuming sources including composite children
func (b BindingSource) BodyConsumers() int {
	if b.Kind == SourceComposite {
		n := 0
		for _, c := range b.Children {
			n += c.Source.BodyConsumers()
		}
		return n
	}
	if b.ConsumesBody() {
		return 1
	}
	return 0
}

// ParameterBinding pairs a declared parameter with its resolved source
type ParameterBinding struct {
	Name       string        `json:"name" yaml:"name"`
	Type       string        `json:"type" yaml:"type"`
	Nullable   bool          `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	HasDefault bool          `json:"has_default,omitempty" yaml:"has_default,omitempty"`
	Source     BindingSource `json:"source" yaml:"source"`
}
