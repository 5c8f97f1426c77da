package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/prasenjit/go-chainer/internal/certainty"
	"github.com/prasenjit/go-chainer/internal/graph"
	"github.com/prasenjit/go-chainer/internal/models"
	"github.com/prasenjit/go-chainer/internal/parser"
	"github.com/prasenjit/go-chainer/internal/sequence"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <spec-file>",
	Short: "Analyze an OpenAPI spec and print the dependency graph and sequences",
	Long: `Parses an OpenAPI 3 specification, builds the operation dependency graph,
classifies path parameters as certain or uncertain, generates operation
sequences, and prints the analysis as JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var (
	analyzeStrategy string
	analyzeOutput   string
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeStrategy, "strategy", "s", "per-operation", "Sequence strategy: greedy or per-operation")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "Write analysis JSON to a file instead of stdout")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	analysis, _, err := analyzeSpecFile(args[0], sequence.Strategy(analyzeStrategy))
	if err != nil {
		return err
	}

	return writeJSON(analysis, analyzeOutput)
}

// analyzeSpecFile runs the full static pipeline over a spec file
func analyzeSpecFile(path string, strategy sequence.Strategy) (*models.Analysis, []models.Operation, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read spec file: %w", err)
	}

	result, err := parser.NewParser().Parse(string(content))
	if err != nil {
		return nil, nil, err
	}

	operations := make([]models.Operation, len(result.Operations))
	for i, op := range result.Operations {
		operations[i] = *op
	}

	g := graph.NewBuilder().Build(operations)
	classified := certainty.NewResolver().ResolveAll(operations)
	generated := sequence.NewGenerator().Generate(g, result.Spec.ID, sequence.Options{Strategy: strategy})

	analysis := &models.Analysis{
		ID:        uuid.New().String(),
		SpecID:    result.Spec.ID,
		Edges:     g.Edges,
		Certainty: classified,
		Sequences: generated.Sequences,
		Warnings:  generated.Warnings,
		CreatedAt: time.Now(),
	}

	return analysis, operations, nil
}

// writeJSON marshals v and writes it to path, or stdout when path is empty
func writeJSON(v interface{}, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	if path == "" {
		fmt.Println(string(data))
		return nil
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", path)
	return nil
}
