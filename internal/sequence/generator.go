package sequence

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/prasenjit/go-chainer/internal/graph"
	"github.com/prasenjit/go-chainer/internal/models"
)

// Strategy selects how sequences are assembled from the dependency graph
type Strategy string

const (
	// StrategyGreedy produces one global order by repeatedly committing to
	// the cheapest untouched edge (fewest shared attributes) first.
	StrategyGreedy Strategy = "greedy"
	// StrategyPerOperation emits one chain per operation: the operation
	// preceded by the minimal producer prefix it depends on.
	StrategyPerOperation Strategy = "per-operation"
)

// defaultMaxDepth bounds the producer traversal in per-operation chains
const defaultMaxDepth = 8

// Options configures sequence generation
type Options struct {
	Strategy Strategy
	MaxDepth int // producer traversal bound for per-operation chains
}

// Result carries the generated sequences plus structured warnings about
// dependency chains that could not be fully resolved (e.g. cycles).
type Result struct {
	Sequences []models.OperationSequence
	Warnings  []string
}

// Generator assembles operation sequences from a dependency graph. All
// bookkeeping state is constructed fresh per call, so a single Generator is
// safe to use concurrently for different graphs.
type Generator struct{}

// NewGenerator creates a new sequence generator
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate produces ordered operation sequences for the graph. Generation
// always terminates and always returns best-effort sequences: cycles are
// tolerated and surfaced as warnings, never as errors.
func (g *Generator) Generate(dg *graph.Graph, specID string, opts Options) *Result {
	switch opts.Strategy {
	case StrategyPerOperation:
		return g.perOperation(dg, specID, opts)
	default:
		return g.greedy(dg, specID)
	}
}

// greedy implements minimum-weight expansion: repeatedly select the edge
// with the smallest shared-attribute count among edges where neither
// endpoint is visited, append source then target to the order, and finally
// append any remaining operations in declaration order. Favoring tightly
// coupled pairs avoids over-committing to high-fan-out producers early.
func (g *Generator) greedy(dg *graph.Graph, specID string) *Result {
	n := len(dg.Operations)
	visited := make([]bool, n)
	order := make([]int, 0, n)

	for {
		best := -1
		bestWeight := 0
		for i := range dg.Edges {
			e := &dg.Edges[i]
			if visited[e.SourceIndex] || visited[e.TargetIndex] {
				continue
			}
			weight := len(e.DataMapping)
			// ties broken by edge declaration order (scan order is stable)
			if best == -1 || weight < bestWeight {
				best = i
				bestWeight = weight
			}
		}
		if best == -1 {
			break
		}

		e := &dg.Edges[best]
		visited[e.SourceIndex] = true
		visited[e.TargetIndex] = true
		order = append(order, e.SourceIndex, e.TargetIndex)
	}

	// Remaining operations keep their declaration order
	for i := 0; i < n; i++ {
		if !visited[i] {
			order = append(order, i)
		}
	}

	seq := buildSequence(dg, specID, order, "greedy minimum-weight order over all operations")
	result := &Result{
		Sequences: []models.OperationSequence{seq},
		Warnings:  seq.Warnings,
	}
	return result
}

// perOperation assembles one chain per head operation: a bounded-depth
// traversal over incoming edges collects the producers required before the
// head, deduplicated, ordered producers-first.
func (g *Generator) perOperation(dg *graph.Graph, specID string, opts Options) *Result {
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}

	result := &Result{}
	for head := range dg.Operations {
		order := producerPrefix(dg, head, maxDepth)
		desc := fmt.Sprintf("chain for %s", dg.Operations[head].Signature())
		seq := buildSequence(dg, specID, order, desc)
		result.Sequences = append(result.Sequences, seq)
		result.Warnings = append(result.Warnings, seq.Warnings...)
	}
	return result
}

// producerPrefix returns the minimal ordered prefix of producers for the
// head operation, ending with the head itself. The visited set doubles as
// the cycle guard: a producer already on the path is not revisited, so
// traversal terminates on cyclic clusters.
func producerPrefix(dg *graph.Graph, head, maxDepth int) []int {
	visited := map[int]bool{head: true}
	var order []int

	var visit func(node, depth int)
	visit = func(node, depth int) {
		if depth >= maxDepth {
			return
		}
		incoming := dg.Incoming(node)
		// deterministic producer order: by source declaration index
		producers := make([]int, 0, len(incoming))
		for _, e := range incoming {
			producers = append(producers, e.SourceIndex)
		}
		sort.Ints(producers)

		for _, p := range producers {
			if visited[p] {
				continue
			}
			visited[p] = true
			visit(p, depth+1)
			order = append(order, p)
		}
	}

	visit(head, 0)
	return append(order, head)
}

// buildSequence materializes an order of operation indices into a sequence
// record, annotating the dependencies it satisfies and warning about every
// edge it schedules backwards (the cycle-tolerance fallback).
func buildSequence(dg *graph.Graph, specID string, order []int, description string) models.OperationSequence {
	position := make(map[int]int, len(order))
	signatures := make([]string, len(order))
	for pos, idx := range order {
		position[idx] = pos
		signatures[pos] = dg.Operations[idx].Signature()
	}

	seq := models.OperationSequence{
		ID:          uuid.New().String(),
		SpecID:      specID,
		Signatures:  signatures,
		Description: description,
		CreatedAt:   time.Now(),
	}

	for i := range dg.Edges {
		e := &dg.Edges[i]
		srcPos, srcOk := position[e.SourceIndex]
		tgtPos, tgtOk := position[e.TargetIndex]
		if !srcOk || !tgtOk {
			continue
		}
		if srcPos < tgtPos {
			seq.Dependencies = append(seq.Dependencies, models.OperationDependency{
				Source:      e.Source,
				Target:      e.Target,
				Reason:      e.Reason,
				DataMapping: e.DataMapping,
			})
		} else {
			seq.Warnings = append(seq.Warnings, fmt.Sprintf(
				"%s scheduled before its producer %s (unresolved dependency)", e.Target, e.Source))
		}
	}

	return seq
}
