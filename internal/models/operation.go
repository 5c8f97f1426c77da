package models

// Operation represents one API operation from an OpenAPI spec, normalized
// down to the data the analysis needs: what it reads and what it produces.
type Operation struct {
	ID          string `json:"id"`
	SpecID      string `json:"specId"`
	Method      string `json:"method"` // GET, POST, PUT, DELETE, PATCH, etc.
	Path        string `json:"path"`   // Path pattern e.g., /users/{id}
	OperationID string `json:"operationId"`
	Summary     string `json:"summary"`

	// InputAttributes are the attribute names the operation reads: path
	// parameters, query parameters and request-body properties (recursively
	// unwrapped). Sorted for stable JSON output.
	InputAttributes []string `json:"inputAttributes"`

	// OutputAttributes are the attribute names found in the success-range
	// (2xx) response schemas, same unwrapping rules.
	OutputAttributes []string `json:"outputAttributes"`

	PathParameters  []Parameter `json:"pathParameters,omitempty"`
	QueryParameters []Parameter `json:"queryParameters,omitempty"`

	// BodyProperties are the top-level request-body property names, used by
	// the runner to synthesize request bodies.
	BodyProperties []string `json:"bodyProperties,omitempty"`

	// DeclarationIndex is the operation's position in the parsed document,
	// used as the deterministic tie-break everywhere ordering matters.
	DeclarationIndex int `json:"declarationIndex"`
}

// Parameter is a named parameter with its (flattened) schema
type Parameter struct {
	Name   string           `json:"name"`
	Schema *ParameterSchema `json:"schema,omitempty"`
}

// ParameterSchema carries the schema facets the certainty resolver and the
// value generator care about, decoupled from the OpenAPI document model.
type ParameterSchema struct {
	Type        string   `json:"type,omitempty"`
	Format      string   `json:"format,omitempty"`
	Pattern     string   `json:"pattern,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Minimum     *float64 `json:"minimum,omitempty"`
	Maximum     *float64 `json:"maximum,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Signature returns the operation's unique "METHOD path" key
func (o *Operation) Signature() string {
	return o.Method + " " + o.Path
}
