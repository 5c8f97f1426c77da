package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prasenjit/go-chainer/internal/certainty"
	"github.com/prasenjit/go-chainer/internal/config"
	"github.com/prasenjit/go-chainer/internal/events"
	"github.com/prasenjit/go-chainer/internal/graph"
	"github.com/prasenjit/go-chainer/internal/models"
	"github.com/prasenjit/go-chainer/internal/parser"
	"github.com/prasenjit/go-chainer/internal/runner"
	"github.com/prasenjit/go-chainer/internal/sequence"
	"github.com/prasenjit/go-chainer/internal/stats"
	"github.com/prasenjit/go-chainer/internal/storage"
)

// Handler handles admin API requests
type Handler struct {
	store     storage.Storage
	parser    *parser.Parser
	builder   *graph.Builder
	resolver  *certainty.Resolver
	generator *sequence.Generator
	runner    *runner.Runner
	stats     *stats.Collector
	events    *events.Service
	runnerCfg config.RunnerConfig
}

// NewHandler creates a new API handler
func NewHandler(store storage.Storage, statsCollector *stats.Collector, eventService *events.Service, runnerCfg config.RunnerConfig) *Handler {
	return &Handler{
		store:     store,
		parser:    parser.NewParser(),
		builder:   graph.NewBuilder(),
		resolver:  certainty.NewResolver(),
		generator: sequence.NewGenerator(),
		runner:    runner.NewRunner(nil, statsCollector, eventService),
		stats:     statsCollector,
		events:    eventService,
		runnerCfg: runnerCfg,
	}
}

// ListSpecs returns all specs without their full content
func (h *Handler) ListSpecs(c *gin.Context) {
	specs, err := h.store.GetAllSpecs()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	result := make([]gin.H, len(specs))
	for i, spec := range specs {
		ops, _ := h.store.GetOperationsBySpec(spec.ID)
		result[i] = gin.H{
			"id":             spec.ID,
			"name":           spec.Name,
			"version":        spec.Version,
			"description":    spec.Description,
			"createdAt":      spec.CreatedAt,
			"updatedAt":      spec.UpdatedAt,
			"operationCount": len(ops),
		}
	}

	c.JSON(http.StatusOK, result)
}

// CreateSpec uploads and parses a new spec
func (h *Handler) CreateSpec(c *gin.Context) {
	var input models.SpecInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	parseResult, err := h.parser.Parse(input.Content)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid OpenAPI spec: " + err.Error()})
		return
	}

	if input.Name != "" {
		parseResult.Spec.Name = input.Name
	}
	if input.Description != "" {
		parseResult.Spec.Description = input.Description
	}

	if err := h.store.CreateSpec(parseResult.Spec); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	for _, op := range parseResult.Operations {
		if err := h.store.CreateOperation(op); err != nil {
			// Rollback spec on error
			h.store.DeleteOperationsBySpec(parseResult.Spec.ID)
			h.store.DeleteSpec(parseResult.Spec.ID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":             parseResult.Spec.ID,
		"name":           parseResult.Spec.Name,
		"version":        parseResult.Spec.Version,
		"operationCount": len(parseResult.Operations),
	})
}

// GetSpec returns a single spec
func (h *Handler) GetSpec(c *gin.Context) {
	spec, err := h.store.GetSpec(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Spec not found"})
		return
	}

	c.JSON(http.StatusOK, spec)
}

// DeleteSpec deletes a spec along with its operations and analysis
func (h *Handler) DeleteSpec(c *gin.Context) {
	id := c.Param("id")

	if err := h.store.DeleteSpec(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Spec not found"})
		return
	}
	h.store.DeleteOperationsBySpec(id)
	h.store.DeleteAnalysisBySpec(id)

	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// ListOperations returns a spec's normalized operations
func (h *Handler) ListOperations(c *gin.Context) {
	ops, err := h.store.GetOperationsBySpec(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, ops)
}

// AnalyzeSpec builds the dependency graph, resolves parameter certainty and
// generates sequences for a spec. An existing analysis is returned as-is
// unless override=true.
func (h *Handler) AnalyzeSpec(c *gin.Context) {
	specID := c.Param("id")

	if _, err := h.store.GetSpec(specID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Spec not found"})
		return
	}

	if c.Query("override") != "true" {
		if existing, err := h.store.GetAnalysisBySpec(specID); err == nil {
			c.JSON(http.StatusOK, existing)
			return
		}
	}

	ops, err := h.store.GetOperationsBySpec(specID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	strategy := sequence.Strategy(c.DefaultQuery("strategy", string(sequence.StrategyPerOperation)))

	analysis := h.analyze(specID, ops, strategy)
	if err := h.store.SaveAnalysis(analysis); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, analysis)
}

// analyze runs the full static pipeline over a spec's operations
func (h *Handler) analyze(specID string, ops []*models.Operation, strategy sequence.Strategy) *models.Analysis {
	operations := make([]models.Operation, len(ops))
	for i, op := range ops {
		operations[i] = *op
	}

	g := h.builder.Build(operations)
	classified := h.resolver.ResolveAll(operations)
	generated := h.generator.Generate(g, specID, sequence.Options{Strategy: strategy})

	return &models.Analysis{
		ID:        uuid.New().String(),
		SpecID:    specID,
		Edges:     g.Edges,
		Certainty: classified,
		Sequences: generated.Sequences,
		Warnings:  generated.Warnings,
		CreatedAt: time.Now(),
	}
}

// GetAnalysis returns the stored analysis for a spec
func (h *Handler) GetAnalysis(c *gin.Context) {
	analysis, err := h.store.GetAnalysisBySpec(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No analysis for spec; POST /specs/:id/analyze first"})
		return
	}

	c.JSON(http.StatusOK, analysis)
}

// RunRequest is the body of a run request
type RunRequest struct {
	BaseURL        string            `json:"baseUrl" binding:"required"`
	SequenceID     string            `json:"sequenceId,omitempty"` // run one sequence; empty runs all
	AbortOnFailure *bool             `json:"abortOnFailure,omitempty"`
	SeedBindings   map[string]string `json:"seedBindings,omitempty"`
	TimeoutSeconds int               `json:"timeoutSeconds,omitempty"`
	MaxConcurrent  int               `json:"maxConcurrent,omitempty"`
}

// RunSequences executes a spec's generated sequences against a live base URL
func (h *Handler) RunSequences(c *gin.Context) {
	specID := c.Param("id")

	var req RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	analysis, err := h.store.GetAnalysisBySpec(specID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No analysis for spec; POST /specs/:id/analyze first"})
		return
	}

	ops, err := h.store.GetOperationsBySpec(specID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	operations := make([]models.Operation, len(ops))
	for i, op := range ops {
		operations[i] = *op
	}
	env := runner.NewEnvironment(operations, analysis.Certainty)

	sequences := analysis.Sequences
	if req.SequenceID != "" {
		sequences = nil
		for _, seq := range analysis.Sequences {
			if seq.ID == req.SequenceID {
				sequences = []models.OperationSequence{seq}
				break
			}
		}
		if sequences == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Sequence not found"})
			return
		}
	}

	opts := h.runOptions(&req)
	results, err := h.runner.ExecuteAll(c.Request.Context(), sequences, env, opts)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	for _, result := range results {
		h.store.CreateExecutionResult(result)
	}

	c.JSON(http.StatusOK, results)
}

// runOptions merges a run request with the configured defaults
func (h *Handler) runOptions(req *RunRequest) runner.Options {
	opts := runner.Options{
		BaseURL:        req.BaseURL,
		Timeout:        h.runnerCfg.Timeout,
		AbortOnFailure: h.runnerCfg.AbortOnFailure,
		SeedBindings:   h.runnerCfg.SeedBindings,
		Headers:        h.runnerCfg.Headers,
		MaxConcurrent:  h.runnerCfg.MaxConcurrent,
	}

	if req.AbortOnFailure != nil {
		opts.AbortOnFailure = *req.AbortOnFailure
	}
	if req.TimeoutSeconds > 0 {
		opts.Timeout = time.Duration(req.TimeoutSeconds) * time.Second
	}
	if req.MaxConcurrent > 0 {
		opts.MaxConcurrent = req.MaxConcurrent
	}
	if len(req.SeedBindings) > 0 {
		merged := make(map[string]string, len(opts.SeedBindings)+len(req.SeedBindings))
		for k, v := range opts.SeedBindings {
			merged[k] = v
		}
		for k, v := range req.SeedBindings {
			merged[k] = v
		}
		opts.SeedBindings = merged
	}

	return opts
}

// ListSpecRuns returns execution results for a spec
func (h *Handler) ListSpecRuns(c *gin.Context) {
	results, err := h.store.GetExecutionResultsBySpec(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, results)
}

// ListRuns returns all execution results
func (h *Handler) ListRuns(c *gin.Context) {
	results, err := h.store.GetAllExecutionResults()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, results)
}

// GetRun returns a single execution result
func (h *Handler) GetRun(c *gin.Context) {
	result, err := h.store.GetExecutionResult(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetStats returns aggregate execution statistics
func (h *Handler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.stats.Snapshot())
}

// ResetStats clears aggregate execution statistics
func (h *Handler) ResetStats(c *gin.Context) {
	h.stats.Reset()
	c.JSON(http.StatusOK, gin.H{"reset": true})
}

// ListEvents returns recent execution events, newest first. An optional
// limit query parameter caps the count; it defaults to 100.
func (h *Handler) ListEvents(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid limit %q", raw)})
			return
		}
		limit = parsed
	}
	c.JSON(http.StatusOK, h.events.Recent(limit))
}

// HealthCheck reports service liveness
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now()})
}
