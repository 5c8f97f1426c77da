package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prasenjit/go-chainer/internal/models"
	"github.com/prasenjit/go-chainer/internal/valuegen"
)

// UnresolvedSentinel is substituted into a path when an uncertain parameter
// has no bound value and no static fallback at request-build time.
const UnresolvedSentinel = "__unresolved__"

const (
	// DefaultTimeout is the per-call timeout
	DefaultTimeout = 10 * time.Second
	// DefaultMaxConcurrent bounds concurrently executing sequences
	DefaultMaxConcurrent = 4
	// maxResponseBytes caps how much of a response body is retained
	maxResponseBytes = 1 << 20
)

// HTTPClient is the transport the runner delegates to. Retry policy, if
// desired, belongs there, never to the runner itself.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// StepObserver receives per-step outcomes (statistics, live event streams)
type StepObserver interface {
	ObserveStep(runID string, step *models.ExecutionStep)
}

// Options configures one sequence run
type Options struct {
	BaseURL string
	Timeout time.Duration

	// AbortOnFailure stops the run at the first failed step instead of the
	// default continue-and-mark-partial policy.
	AbortOnFailure bool

	// SeedBindings pre-populates the value-binding table, e.g. with an auth
	// token or tenant id supplied externally.
	SeedBindings map[string]string

	// Headers are added to every request
	Headers map[string]string

	// MaxConcurrent bounds concurrent sequence executions in ExecuteAll
	MaxConcurrent int
}

// Environment indexes the static analysis artifacts a run consumes:
// operations by signature and certainty classifications per path parameter.
type Environment struct {
	operations map[string]models.Operation
	certainty  map[string]models.ParameterCertainty
}

// NewEnvironment builds a run environment from an operation list and the
// resolver's classifications.
func NewEnvironment(operations []models.Operation, certainty []models.ParameterCertainty) *Environment {
	env := &Environment{
		operations: make(map[string]models.Operation, len(operations)),
		certainty:  make(map[string]models.ParameterCertainty, len(certainty)),
	}
	for _, op := range operations {
		env.operations[op.Signature()] = op
	}
	for _, pc := range certainty {
		env.certainty[pc.Operation+"#"+pc.Parameter] = pc
	}
	return env
}

func (e *Environment) lookupCertainty(signature, param string) (models.ParameterCertainty, bool) {
	pc, ok := e.certainty[signature+"#"+param]
	return pc, ok
}

// Runner executes operation sequences against a live base URL, propagating
// values harvested from earlier responses into later requests.
type Runner struct {
	client    HTTPClient
	generator *valuegen.Generator
	observers []StepObserver
}

// NewRunner creates a runner on the given transport. A nil client uses a
// default http.Client; the per-call timeout is applied per request.
func NewRunner(client HTTPClient, observers ...StepObserver) *Runner {
	if client == nil {
		client = &http.Client{}
	}
	return &Runner{
		client:    client,
		generator: valuegen.NewGenerator(),
		observers: observers,
	}
}

// Execute runs one sequence. It returns an error only for configuration
// problems (invalid base URL) detected before any step executes; every
// step-level failure is recorded in the result instead. The caller's ctx
// stops further steps from being issued, but never cuts an in-flight call
// short: each call runs under its own per-call timeout.
func (r *Runner) Execute(ctx context.Context, seq models.OperationSequence, env *Environment, opts Options) (*models.SequenceExecutionResult, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", opts.BaseURL)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	result := &models.SequenceExecutionResult{
		ID:         uuid.New().String(),
		SequenceID: seq.ID,
		SpecID:     seq.SpecID,
		BaseURL:    opts.BaseURL,
		Bindings:   copyBindings(opts.SeedBindings),
		StartedAt:  time.Now(),
	}

	aborted := false
	for _, signature := range seq.Signatures {
		if ctx.Err() != nil {
			aborted = true
			break
		}

		step := r.executeStep(signature, env, base, timeout, opts, result.Bindings)
		result.Steps = append(result.Steps, *step)
		for _, obs := range r.observers {
			obs.ObserveStep(result.ID, step)
		}

		if step.Status == models.StepFailed && opts.AbortOnFailure {
			aborted = true
			break
		}
	}

	result.CompletedAt = time.Now()
	result.Status = overallStatus(result.Steps, aborted, len(seq.Signatures))
	return result, nil
}

// ExecuteAll runs independent sequences concurrently, bounded by
// MaxConcurrent. Each sequence owns its own binding table; nothing mutable
// is shared between concurrent runs.
func (r *Runner) ExecuteAll(ctx context.Context, sequences []models.OperationSequence, env *Environment, opts Options) ([]*models.SequenceExecutionResult, error) {
	if _, err := url.Parse(opts.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL %q", opts.BaseURL)
	}
	maxConcurrent := opts.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}

	results := make([]*models.SequenceExecutionResult, len(sequences))
	sem := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup

	for i := range sequences {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			res, err := r.Execute(ctx, sequences[i], env, opts)
			if err != nil {
				res = &models.SequenceExecutionResult{
					ID:         uuid.New().String(),
					SequenceID: sequences[i].ID,
					BaseURL:    opts.BaseURL,
					Status:     models.RunAborted,
					StartedAt:  time.Now(),
				}
			}
			results[i] = res
		}(i)
	}

	wg.Wait()
	return results, nil
}

// executeStep drives one step through its state machine:
// pending → building-request → sent → {succeeded, failed}.
func (r *Runner) executeStep(signature string, env *Environment, base *url.URL, timeout time.Duration, opts Options, bindings map[string]string) *models.ExecutionStep {
	step := &models.ExecutionStep{
		Signature: signature,
		Status:    models.StepPending,
	}

	op, ok := env.operations[signature]
	if !ok {
		step.Status = models.StepFailed
		step.FailureReason = "operation not found in environment"
		return step
	}

	step.Status = models.StepBuilding
	reqURL, unresolved := r.buildURL(&op, env, base, bindings, step)
	step.URL = reqURL

	if len(unresolved) > 0 {
		step.Status = models.StepFailed
		step.FailureReason = fmt.Sprintf("unresolved path parameters: %s", strings.Join(unresolved, ", "))
		return step
	}

	body := r.buildBody(&op, bindings)
	step.RequestBody = body

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	// Per-call timeout only; deliberately not the caller's ctx, so an
	// in-flight call completes or times out naturally on cancellation.
	callCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, op.Method, reqURL, reader)
	if err != nil {
		step.Status = models.StepFailed
		step.FailureReason = fmt.Sprintf("build request: %v", err)
		return step
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	step.Status = models.StepSent
	start := time.Now()
	resp, err := r.client.Do(req)
	step.DurationMs = time.Since(start).Milliseconds()

	if err != nil {
		step.Status = models.StepFailed
		step.FailureReason = fmt.Sprintf("transport: %v", err)
		return step
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	step.StatusCode = resp.StatusCode
	step.ResponseBody = string(respBody)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		step.Status = models.StepSucceeded
		mergeBindings(bindings, step.ResponseBody)
	} else {
		step.Status = models.StepFailed
		step.FailureReason = fmt.Sprintf("unexpected status %d", resp.StatusCode)
	}

	return step
}

// buildURL substitutes path parameters into the path template and assembles
// the query string. A name bound into the path is removed from the query
// candidates: path and query bindings are mutually exclusive by invariant.
func (r *Runner) buildURL(op *models.Operation, env *Environment, base *url.URL, bindings map[string]string, step *models.ExecutionStep) (string, []string) {
	pathValue := op.Path
	step.PathParams = make(map[string]string)
	var unresolved []string

	for _, param := range op.PathParameters {
		value, ok := r.resolveValue(op, env, param, bindings)
		if !ok {
			value = UnresolvedSentinel
			unresolved = append(unresolved, param.Name)
		}
		step.PathParams[param.Name] = value
		pathValue = strings.ReplaceAll(pathValue, "{"+param.Name+"}", url.PathEscape(value))
	}

	query := url.Values{}
	step.QueryParams = make(map[string]string)
	for _, param := range op.QueryParameters {
		if _, bound := step.PathParams[param.Name]; bound {
			continue
		}
		if value, ok := lookupBinding(bindings, param.Name); ok {
			query.Set(param.Name, value)
			step.QueryParams[param.Name] = value
			continue
		}
		if pc, ok := env.lookupCertainty(op.Signature(), param.Name); ok && pc.Certainty == models.CertaintyUncertain {
			continue // no value to offer; omit rather than send garbage
		}
		value := r.generator.Generate(param.Name, param.Schema)
		query.Set(param.Name, value)
		step.QueryParams[param.Name] = value
	}

	full := *base
	full.Path = joinPath(base.Path, pathValue)
	full.RawQuery = query.Encode()
	return full.String(), unresolved
}

// resolveValue resolves one path parameter: binding table first, then a
// statically generated value for certain parameters. Uncertain parameters
// with no bound value resolve to nothing.
func (r *Runner) resolveValue(op *models.Operation, env *Environment, param models.Parameter, bindings map[string]string) (string, bool) {
	if value, ok := lookupBinding(bindings, param.Name); ok {
		return value, true
	}

	pc, classified := env.lookupCertainty(op.Signature(), param.Name)
	if classified && pc.Certainty == models.CertaintyUncertain {
		return "", false
	}

	return r.generator.Generate(param.Name, param.Schema), true
}

// buildBody synthesizes a JSON request body from the operation's top-level
// body properties, preferring harvested bindings over generated values.
func (r *Runner) buildBody(op *models.Operation, bindings map[string]string) string {
	if len(op.BodyProperties) == 0 {
		return ""
	}
	switch op.Method {
	case "POST", "PUT", "PATCH":
	default:
		return ""
	}

	payload := make(map[string]string, len(op.BodyProperties))
	for _, prop := range op.BodyProperties {
		if value, ok := lookupBinding(bindings, prop); ok {
			payload[prop] = value
		} else {
			payload[prop] = r.generator.Generate(prop, nil)
		}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	return string(data)
}

// overallStatus derives the run status from its steps
func overallStatus(steps []models.ExecutionStep, aborted bool, planned int) models.RunStatus {
	if aborted || len(steps) < planned {
		return models.RunAborted
	}
	for _, step := range steps {
		if step.Status != models.StepSucceeded {
			return models.RunPartial
		}
	}
	return models.RunCompleted
}

// joinPath joins a base path with an operation path without doubling slashes
func joinPath(basePath, opPath string) string {
	basePath = strings.TrimSuffix(basePath, "/")
	if !strings.HasPrefix(opPath, "/") {
		opPath = "/" + opPath
	}
	return basePath + opPath
}
