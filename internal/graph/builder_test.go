package graph

import (
	"encoding/json"
	"sort"
	"testing"

	"github.com/prasenjit/go-chainer/internal/models"
)

func makeOp(index int, method, path string, inputs, outputs []string, pathParams ...string) models.Operation {
	sort.Strings(inputs)
	sort.Strings(outputs)

	op := models.Operation{
		Method:           method,
		Path:             path,
		InputAttributes:  inputs,
		OutputAttributes: outputs,
		DeclarationIndex: index,
	}
	for _, name := range pathParams {
		op.PathParameters = append(op.PathParameters, models.Parameter{Name: name})
	}
	return op
}

func findEdge(g *Graph, source, target string) *models.DependencyEdge {
	for i := range g.Edges {
		if g.Edges[i].Source == source && g.Edges[i].Target == target {
			return &g.Edges[i]
		}
	}
	return nil
}

func TestBuild_CreateThenFetch(t *testing.T) {
	ops := []models.Operation{
		makeOp(0, "POST", "/items", []string{"name"}, []string{"id", "name"}),
		makeOp(1, "GET", "/items/{itemId}", []string{"itemId"}, []string{"id", "name"}, "itemId"),
	}

	g := NewBuilder().Build(ops)

	edge := findEdge(g, "POST /items", "GET /items/{itemId}")
	if edge == nil {
		t.Fatalf("expected edge POST /items -> GET /items/{itemId}, got edges %v", g.Edges)
	}

	// "id" supplies "itemId" through the path-parameter suffix rule
	found := false
	for _, m := range edge.DataMapping {
		if m.SourceAttr == "id" && m.TargetAttr == "itemId" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected data mapping id -> itemId, got %v", edge.DataMapping)
	}
}

func TestBuild_NoSelfEdges(t *testing.T) {
	ops := []models.Operation{
		makeOp(0, "POST", "/items", []string{"id", "name"}, []string{"id", "name"}),
		makeOp(1, "GET", "/items/{itemId}", []string{"itemId"}, []string{"id"}, "itemId"),
	}

	g := NewBuilder().Build(ops)

	for _, e := range g.Edges {
		if e.Source == e.Target {
			t.Errorf("self edge on %s", e.Source)
		}
	}
}

func TestBuild_DeleteNeverSource(t *testing.T) {
	ops := []models.Operation{
		makeOp(0, "DELETE", "/items/{itemId}", []string{"itemId"}, []string{"id"}, "itemId"),
		makeOp(1, "GET", "/items/{itemId}", []string{"itemId"}, []string{"id"}, "itemId"),
		makeOp(2, "GET", "/items/{itemId}/tags", []string{"itemId"}, nil, "itemId"),
	}

	g := NewBuilder().Build(ops)

	for _, e := range g.Edges {
		if e.Source == "DELETE /items/{itemId}" {
			t.Errorf("edge with DELETE source: %s -> %s", e.Source, e.Target)
		}
	}
}

func TestBuild_MethodPrecedenceSamePath(t *testing.T) {
	// GET must not depend on PUT or DELETE of the same path; POST precedes all
	ops := []models.Operation{
		makeOp(0, "POST", "/items/{itemId}", []string{"itemId"}, []string{"id"}, "itemId"),
		makeOp(1, "GET", "/items/{itemId}", []string{"itemId"}, []string{"id"}, "itemId"),
		makeOp(2, "PUT", "/items/{itemId}", []string{"itemId"}, []string{"id"}, "itemId"),
		makeOp(3, "DELETE", "/items/{itemId}", []string{"itemId"}, nil, "itemId"),
	}

	g := NewBuilder().Build(ops)

	rank := map[string]int{"POST": 0, "GET": 1, "PUT": 2, "DELETE": 3}
	for _, e := range g.Edges {
		src := g.Operations[e.SourceIndex]
		tgt := g.Operations[e.TargetIndex]
		if src.Path != tgt.Path {
			continue
		}
		if rank[src.Method] >= rank[tgt.Method] {
			t.Errorf("precedence violation: %s -> %s", e.Source, e.Target)
		}
	}

	if findEdge(g, "POST /items/{itemId}", "GET /items/{itemId}") == nil {
		t.Error("expected POST -> GET edge on same path")
	}
	if findEdge(g, "PUT /items/{itemId}", "GET /items/{itemId}") != nil {
		t.Error("unexpected PUT -> GET edge on same path")
	}
}

func TestBuild_PathContainment(t *testing.T) {
	ops := []models.Operation{
		makeOp(0, "POST", "/users", []string{"name"}, []string{"id"}),
		makeOp(1, "GET", "/orders/{orderId}", []string{"orderId"}, []string{"id"}, "orderId"),
	}

	g := NewBuilder().Build(ops)

	// /orders/{orderId} is not a descendant of /users
	if len(g.Edges) != 0 {
		t.Errorf("expected no edges across unrelated paths, got %v", g.Edges)
	}
}

func TestBuild_EmptyAttributeSetsFormNoEdges(t *testing.T) {
	ops := []models.Operation{
		makeOp(0, "POST", "/items", nil, nil),
		makeOp(1, "GET", "/items/{itemId}", nil, nil, "itemId"),
	}

	g := NewBuilder().Build(ops)

	if len(g.Edges) != 0 {
		t.Errorf("expected no edges for empty attribute sets, got %v", g.Edges)
	}
}

func TestBuild_AdjacencyLists(t *testing.T) {
	ops := []models.Operation{
		makeOp(0, "POST", "/items", []string{"name"}, []string{"id"}),
		makeOp(1, "GET", "/items/{itemId}", []string{"itemId"}, []string{"id"}, "itemId"),
		makeOp(2, "PUT", "/items/{itemId}", []string{"itemId", "name"}, []string{"id"}, "itemId"),
	}

	g := NewBuilder().Build(ops)

	if len(g.Outgoing(0)) == 0 {
		t.Error("expected outgoing edges from POST /items")
	}
	for _, e := range g.Outgoing(0) {
		if e.SourceIndex != 0 {
			t.Errorf("outgoing edge with wrong source index %d", e.SourceIndex)
		}
	}
	for _, e := range g.Incoming(1) {
		if e.TargetIndex != 1 {
			t.Errorf("incoming edge with wrong target index %d", e.TargetIndex)
		}
	}

	if got := g.Outgoing(99); got != nil {
		t.Errorf("expected nil for out-of-range index, got %v", got)
	}
}

func TestFromEdges(t *testing.T) {
	ops := []models.Operation{
		makeOp(0, "POST", "/items", []string{"name"}, []string{"id"}),
		makeOp(1, "GET", "/items/{itemId}", []string{"itemId"}, []string{"id"}, "itemId"),
	}
	built := NewBuilder().Build(ops)

	restored := FromEdges(ops, built.Edges)
	if len(restored.Incoming(1)) != len(built.Incoming(1)) {
		t.Errorf("adjacency mismatch after FromEdges: %d vs %d",
			len(restored.Incoming(1)), len(built.Incoming(1)))
	}
}

func TestFromEdges_PersistedEdgesRebuildIndices(t *testing.T) {
	ops := []models.Operation{
		makeOp(0, "POST", "/items", []string{"name"}, []string{"id"}),
		makeOp(1, "GET", "/items/{itemId}", []string{"itemId"}, []string{"id"}, "itemId"),
	}
	built := NewBuilder().Build(ops)

	// indices are not serialized; they must come back from the signatures
	data, err := json.Marshal(built.Edges)
	if err != nil {
		t.Fatalf("marshal edges: %v", err)
	}
	var persisted []models.DependencyEdge
	if err := json.Unmarshal(data, &persisted); err != nil {
		t.Fatalf("unmarshal edges: %v", err)
	}

	restored := FromEdges(ops, persisted)
	edge := findEdge(restored, "POST /items", "GET /items/{itemId}")
	if edge == nil {
		t.Fatalf("expected restored edge, got %v", restored.Edges)
	}
	if edge.SourceIndex != 0 || edge.TargetIndex != 1 {
		t.Errorf("indices = (%d, %d), want (0, 1)", edge.SourceIndex, edge.TargetIndex)
	}
	if len(restored.Outgoing(0)) != len(built.Outgoing(0)) || len(restored.Incoming(1)) != len(built.Incoming(1)) {
		t.Error("adjacency lists differ after the round trip")
	}
}

func TestFromEdges_DropsEdgesForUnknownOperations(t *testing.T) {
	ops := []models.Operation{
		makeOp(0, "POST", "/items", []string{"name"}, []string{"id"}),
	}
	edges := []models.DependencyEdge{{Source: "POST /items", Target: "GET /ghost"}}

	restored := FromEdges(ops, edges)
	if len(restored.Edges) != 0 {
		t.Errorf("edge naming an unknown operation must be dropped, got %v", restored.Edges)
	}
}

func TestIntersect(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want int
	}{
		{"disjoint", []string{"a", "b"}, []string{"c", "d"}, 0},
		{"overlap", []string{"a", "b", "c"}, []string{"b", "c", "d"}, 2},
		{"empty", nil, []string{"a"}, 0},
		{"identical", []string{"x", "y"}, []string{"x", "y"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := intersect(tt.a, tt.b); len(got) != tt.want {
				t.Errorf("intersect(%v, %v) = %v, want %d elements", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
