package storage

import (
	"fmt"
	"sort"
	"sync"

	"github.com/prasenjit/go-chainer/internal/models"
)

// MemoryStorage implements Storage with in-memory maps
type MemoryStorage struct {
	mu         sync.RWMutex
	specs      map[string]*models.Spec
	operations map[string]*models.Operation
	analyses   map[string]*models.Analysis // keyed by spec ID
	results    map[string]*models.SequenceExecutionResult
}

// NewMemoryStorage creates a new in-memory storage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		specs:      make(map[string]*models.Spec),
		operations: make(map[string]*models.Operation),
		analyses:   make(map[string]*models.Analysis),
		results:    make(map[string]*models.SequenceExecutionResult),
	}
}

// CreateSpec creates a new spec
func (m *MemoryStorage) CreateSpec(spec *models.Spec) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.specs[spec.ID]; exists {
		return fmt.Errorf("spec with ID %s already exists", spec.ID)
	}

	m.specs[spec.ID] = spec
	return nil
}

// GetSpec retrieves a spec by ID
func (m *MemoryStorage) GetSpec(id string) (*models.Spec, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	spec, exists := m.specs[id]
	if !exists {
		return nil, fmt.Errorf("spec not found: %s", id)
	}

	return spec, nil
}

// GetAllSpecs retrieves all specs sorted by name
func (m *MemoryStorage) GetAllSpecs() ([]*models.Spec, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	specs := make([]*models.Spec, 0, len(m.specs))
	for _, spec := range m.specs {
		specs = append(specs, spec)
	}

	sort.Slice(specs, func(i, j int) bool {
		return specs[i].Name < specs[j].Name
	})

	return specs, nil
}

// UpdateSpec updates a spec
func (m *MemoryStorage) UpdateSpec(spec *models.Spec) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.specs[spec.ID]; !exists {
		return fmt.Errorf("spec not found: %s", spec.ID)
	}

	m.specs[spec.ID] = spec
	return nil
}

// DeleteSpec deletes a spec
func (m *MemoryStorage) DeleteSpec(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.specs[id]; !exists {
		return fmt.Errorf("spec not found: %s", id)
	}

	delete(m.specs, id)
	return nil
}

// CreateOperation creates a new operation
func (m *MemoryStorage) CreateOperation(op *models.Operation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.operations[op.ID]; exists {
		return fmt.Errorf("operation with ID %s already exists", op.ID)
	}

	m.operations[op.ID] = op
	return nil
}

// GetOperation retrieves an operation by ID
func (m *MemoryStorage) GetOperation(id string) (*models.Operation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	op, exists := m.operations[id]
	if !exists {
		return nil, fmt.Errorf("operation not found: %s", id)
	}

	return op, nil
}

// GetOperationsBySpec retrieves a spec's operations in declaration order
func (m *MemoryStorage) GetOperationsBySpec(specID string) ([]*models.Operation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ops := make([]*models.Operation, 0)
	for _, op := range m.operations {
		if op.SpecID == specID {
			ops = append(ops, op)
		}
	}

	sort.Slice(ops, func(i, j int) bool {
		return ops[i].DeclarationIndex < ops[j].DeclarationIndex
	})

	return ops, nil
}

// DeleteOperationsBySpec deletes all operations for a spec
func (m *MemoryStorage) DeleteOperationsBySpec(specID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, op := range m.operations {
		if op.SpecID == specID {
			delete(m.operations, id)
		}
	}

	return nil
}

// SaveAnalysis stores an analysis, replacing any existing one for the spec
func (m *MemoryStorage) SaveAnalysis(analysis *models.Analysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.analyses[analysis.SpecID] = analysis
	return nil
}

// GetAnalysisBySpec retrieves the analysis for a spec
func (m *MemoryStorage) GetAnalysisBySpec(specID string) (*models.Analysis, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	analysis, exists := m.analyses[specID]
	if !exists {
		return nil, fmt.Errorf("analysis not found for spec: %s", specID)
	}

	return analysis, nil
}

// DeleteAnalysisBySpec deletes the analysis for a spec
func (m *MemoryStorage) DeleteAnalysisBySpec(specID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.analyses, specID)
	return nil
}

// CreateExecutionResult stores an execution result
func (m *MemoryStorage) CreateExecutionResult(result *models.SequenceExecutionResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.results[result.ID]; exists {
		return fmt.Errorf("execution result with ID %s already exists", result.ID)
	}

	m.results[result.ID] = result
	return nil
}

// GetExecutionResult retrieves an execution result by ID
func (m *MemoryStorage) GetExecutionResult(id string) (*models.SequenceExecutionResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result, exists := m.results[id]
	if !exists {
		return nil, fmt.Errorf("execution result not found: %s", id)
	}

	return result, nil
}

// GetExecutionResultsBySpec retrieves execution results for a spec, newest first
func (m *MemoryStorage) GetExecutionResultsBySpec(specID string) ([]*models.SequenceExecutionResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]*models.SequenceExecutionResult, 0)
	for _, result := range m.results {
		if result.SpecID == specID {
			results = append(results, result)
		}
	}

	sortResultsNewestFirst(results)
	return results, nil
}

// GetAllExecutionResults retrieves all execution results, newest first
func (m *MemoryStorage) GetAllExecutionResults() ([]*models.SequenceExecutionResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]*models.SequenceExecutionResult, 0, len(m.results))
	for _, result := range m.results {
		results = append(results, result)
	}

	sortResultsNewestFirst(results)
	return results, nil
}

func sortResultsNewestFirst(results []*models.SequenceExecutionResult) {
	sort.Slice(results, func(i, j int) bool {
		return results[i].StartedAt.After(results[j].StartedAt)
	})
}

// Close closes the storage (no-op for memory storage)
func (m *MemoryStorage) Close() error {
	return nil
}
