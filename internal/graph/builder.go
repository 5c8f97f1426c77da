package graph

import (
	"fmt"
	"strings"

	"github.com/prasenjit/go-chainer/internal/certainty"
	"github.com/prasenjit/go-chainer/internal/models"
)

// methodRank fixes the same-path method precedence: POST < GET < PUT < DELETE.
// Creators come first, destroyers last; an edge may only point forward in
// this order so e.g. a GET never depends on a DELETE of the same resource.
var methodRank = map[string]int{
	"POST":   0,
	"GET":    1,
	"PUT":    2,
	"DELETE": 3,
}

// Graph is the dependency graph over a spec's operations: operations indexed
// by position, edges stored once and reachable through per-node adjacency
// lists for O(1) neighbor lookup.
type Graph struct {
	Operations []models.Operation
	Edges      []models.DependencyEdge

	outgoing [][]int // operation index -> edge indices
	incoming [][]int
}

// Builder computes dependency edges between operations
type Builder struct{}

// NewBuilder creates a new graph builder
func NewBuilder() *Builder {
	return &Builder{}
}

// Build computes the dependency graph for the given operations. For every
// ordered pair (u, v) it tests the has-connection predicate; the result is
// deterministic for a fixed operation order.
func (b *Builder) Build(operations []models.Operation) *Graph {
	g := &Graph{
		Operations: operations,
		outgoing:   make([][]int, len(operations)),
		incoming:   make([][]int, len(operations)),
	}

	for ui := range operations {
		for vi := range operations {
			if ui == vi {
				continue
			}

			mapping := b.connection(&operations[ui], &operations[vi])
			if len(mapping) == 0 {
				continue
			}

			edge := models.DependencyEdge{
				Source:      operations[ui].Signature(),
				Target:      operations[vi].Signature(),
				SourceIndex: ui,
				TargetIndex: vi,
				Reason:      fmt.Sprintf("%s produces %s consumed by %s", operations[ui].Signature(), mappingNames(mapping), operations[vi].Signature()),
				DataMapping: mapping,
			}

			edgeIdx := len(g.Edges)
			g.Edges = append(g.Edges, edge)
			g.outgoing[ui] = append(g.outgoing[ui], edgeIdx)
			g.incoming[vi] = append(g.incoming[vi], edgeIdx)
		}
	}

	return g
}

// FromEdges reconstructs a graph from a persisted edge list, rebuilding the
// adjacency lists. Operation indices are not serialized with the edges, so
// they are recomputed here from the source and target signatures; an edge
// naming an unknown operation is dropped.
func FromEdges(operations []models.Operation, edges []models.DependencyEdge) *Graph {
	g := &Graph{
		Operations: operations,
		outgoing:   make([][]int, len(operations)),
		incoming:   make([][]int, len(operations)),
	}

	index := make(map[string]int, len(operations))
	for i := range operations {
		index[operations[i].Signature()] = i
	}

	for _, e := range edges {
		src, srcOk := index[e.Source]
		tgt, tgtOk := index[e.Target]
		if !srcOk || !tgtOk {
			continue
		}
		e.SourceIndex = src
		e.TargetIndex = tgt

		edgeIdx := len(g.Edges)
		g.Edges = append(g.Edges, e)
		g.outgoing[src] = append(g.outgoing[src], edgeIdx)
		g.incoming[tgt] = append(g.incoming[tgt], edgeIdx)
	}
	return g
}

// connection applies the has-connection predicate and returns the attribute
// mapping, or nil when no edge u → v should exist:
//
//  1. A DELETE never acts as a producer.
//  2. Same path: u's method must precede v's in the fixed precedence order.
//  3. Different paths: v's path must be a descendant of u's path.
//  4. Either way the producer's outputs must supply at least one of the
//     consumer's inputs.
//
// General attributes match by exact name equality only. Path parameters
// additionally match through the certainty resolver's looser rule, so a
// produced "id" supplies a consumed "itemId".
func (b *Builder) connection(u, v *models.Operation) []models.AttributeMapping {
	if u.Method == "DELETE" {
		return nil
	}

	if u.Path == v.Path {
		uRank, uOk := methodRank[u.Method]
		vRank, vOk := methodRank[v.Method]
		if !uOk || !vOk || uRank >= vRank {
			return nil
		}
	} else if !strings.HasPrefix(v.Path, u.Path) {
		return nil
	}

	var mapping []models.AttributeMapping
	mapped := make(map[string]bool)

	for _, attr := range intersect(u.OutputAttributes, v.InputAttributes) {
		mapping = append(mapping, models.AttributeMapping{SourceAttr: attr, TargetAttr: attr})
		mapped[attr] = true
	}

	for _, param := range v.PathParameters {
		if mapped[param.Name] {
			continue
		}
		if source, ok := certainty.ProducerAttribute(u.OutputAttributes, param.Name); ok {
			mapping = append(mapping, models.AttributeMapping{SourceAttr: source, TargetAttr: param.Name})
			mapped[param.Name] = true
		}
	}

	return mapping
}

// Incoming returns the edges pointing at the operation at index i
func (g *Graph) Incoming(i int) []*models.DependencyEdge {
	return g.edgesAt(g.incoming, i)
}

// Outgoing returns the edges leaving the operation at index i
func (g *Graph) Outgoing(i int) []*models.DependencyEdge {
	return g.edgesAt(g.outgoing, i)
}

func (g *Graph) edgesAt(adjacency [][]int, i int) []*models.DependencyEdge {
	if i < 0 || i >= len(adjacency) {
		return nil
	}
	edges := make([]*models.DependencyEdge, len(adjacency[i]))
	for n, idx := range adjacency[i] {
		edges[n] = &g.Edges[idx]
	}
	return edges
}

// intersect returns the elements present in both sorted sets, preserving order
func intersect(a, b []string) []string {
	var shared []string
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			shared = append(shared, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return shared
}

// mappingNames renders the consumed attribute names for edge reasons
func mappingNames(mapping []models.AttributeMapping) string {
	names := make([]string, len(mapping))
	for i, m := range mapping {
		names[i] = m.TargetAttr
	}
	return strings.Join(names, ", ")
}
