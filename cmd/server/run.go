package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/prasenjit/go-chainer/internal/runner"
	"github.com/prasenjit/go-chainer/internal/sequence"
)

var runCmd = &cobra.Command{
	Use:   "run <spec-file>",
	Short: "Analyze a spec and execute the generated sequences against a live server",
	Long: `Parses an OpenAPI 3 specification, generates operation sequences and
executes them against the given base URL, substituting placeholder values
with values harvested from earlier steps' responses. Results are printed
as JSON.

Side-effecting operations (POST etc.) are executed for real: point this at
a test instance, never at production.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

var (
	runBaseURL        string
	runStrategy       string
	runAbortOnFailure bool
	runTimeout        time.Duration
	runMaxConcurrent  int
	runSeeds          []string
	runOutput         string
)

func init() {
	runCmd.Flags().StringVarP(&runBaseURL, "base-url", "u", "", "Base URL of the server under test (required)")
	runCmd.Flags().StringVarP(&runStrategy, "strategy", "s", "per-operation", "Sequence strategy: greedy or per-operation")
	runCmd.Flags().BoolVar(&runAbortOnFailure, "abort-on-failure", false, "Stop a sequence at the first failed step")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 10*time.Second, "Per-call HTTP timeout")
	runCmd.Flags().IntVar(&runMaxConcurrent, "max-concurrent", 4, "Maximum concurrently executing sequences")
	runCmd.Flags().StringArrayVar(&runSeeds, "seed", nil, "Seed binding key=value (repeatable), e.g. --seed token=abc")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "Write results JSON to a file instead of stdout")
	runCmd.MarkFlagRequired("base-url")
}

func runRun(cmd *cobra.Command, args []string) error {
	analysis, operations, err := analyzeSpecFile(args[0], sequence.Strategy(runStrategy))
	if err != nil {
		return err
	}

	seeds, err := parseSeeds(runSeeds)
	if err != nil {
		return err
	}

	env := runner.NewEnvironment(operations, analysis.Certainty)
	opts := runner.Options{
		BaseURL:        runBaseURL,
		Timeout:        runTimeout,
		AbortOnFailure: runAbortOnFailure,
		SeedBindings:   seeds,
		MaxConcurrent:  runMaxConcurrent,
	}

	results, err := runner.NewRunner(nil).ExecuteAll(cmd.Context(), analysis.Sequences, env, opts)
	if err != nil {
		return err
	}

	return writeJSON(results, runOutput)
}

// parseSeeds converts repeated key=value flags into a binding table
func parseSeeds(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	seeds := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid seed %q, expected key=value", pair)
		}
		seeds[key] = value
	}
	return seeds, nil
}
