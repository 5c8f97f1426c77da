package models

import (
	"time"
)

// OperationDependency annotates why one sequence member must run before another
type OperationDependency struct {
	Source      string             `json:"source"` // operation signature
	Target      string             `json:"target"`
	Reason      string             `json:"reason"`
	DataMapping []AttributeMapping `json:"dataMapping,omitempty"`
}

// OperationSequence is one executable chain of operations: earlier members
// supply data consumed by later members.
type OperationSequence struct {
	ID          string   `json:"id"`
	SpecID      string   `json:"specId"`
	Signatures  []string `json:"signatures"` // ordered operation signatures
	Description string   `json:"description"`

	Dependencies []OperationDependency `json:"dependencies,omitempty"`

	// Warnings lists unresolved-dependency conditions, e.g. a cycle member
	// scheduled before all of its producers.
	Warnings []string `json:"warnings,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// Analysis is the persisted output of one analysis run over a spec:
// the dependency graph, the parameter classifications and the generated
// sequences. Regenerated on demand (override).
type Analysis struct {
	ID        string               `json:"id"`
	SpecID    string               `json:"specId"`
	Edges     []DependencyEdge     `json:"edges"`
	Certainty []ParameterCertainty `json:"certainty"`
	Sequences []OperationSequence  `json:"sequences"`
	Warnings  []string             `json:"warnings,omitempty"`
	CreatedAt time.Time            `json:"createdAt"`
}
