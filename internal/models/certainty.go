package models

// Certainty classifies whether a path parameter's value can be invented
// statically from the spec, or must be harvested from a prior response.
type Certainty string

const (
	// CertaintyCertain means the value is derivable from the spec alone
	CertaintyCertain Certainty = "certain"
	// CertaintyUncertain means the value must come from another operation's output
	CertaintyUncertain Certainty = "uncertain"
)

// ParameterCertainty is the classification of one path parameter of one
// operation. Every path parameter of every operation gets exactly one.
type ParameterCertainty struct {
	Operation string    `json:"operation"` // operation signature
	Parameter string    `json:"parameter"`
	Certainty Certainty `json:"certainty"`
	Reason    string    `json:"reason,omitempty"`

	// DependencyEndpoints lists signatures of operations whose output
	// attributes can supply this parameter, ranked by path-prefix proximity
	// then declaration order. Empty for certain parameters, and possibly
	// empty for uncertain ones with no known producer.
	DependencyEndpoints []string `json:"dependencyEndpoints,omitempty"`
}
