package models

// AttributeMapping explains one attribute-level coupling between two
// operations: the producer's output name and the consumer's input name.
type AttributeMapping struct {
	SourceAttr string `json:"sourceAttr"`
	TargetAttr string `json:"targetAttr"`
}

// DependencyEdge is a directed relationship meaning "target's input may be
// satisfiable using a value produced by source's output".
//
// Invariants enforced by the builder:
//   - Source.Method is never DELETE (deletions are not producers).
//   - Same path: source method precedes target method in POST < GET < PUT < DELETE.
//   - Different paths: target path starts with source path.
type DependencyEdge struct {
	Source      string             `json:"source"` // operation signature
	Target      string             `json:"target"` // operation signature
	SourceIndex int                `json:"-"`      // index into the graph's operation list
	TargetIndex int                `json:"-"`
	Reason      string             `json:"reason"`
	DataMapping []AttributeMapping `json:"dataMapping"`
}

// SharedAttributes returns the source-side attribute names of the mapping
func (e *DependencyEdge) SharedAttributes() []string {
	attrs := make([]string, len(e.DataMapping))
	for i, m := range e.DataMapping {
		attrs[i] = m.SourceAttr
	}
	return attrs
}
