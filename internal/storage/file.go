package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/prasenjit/go-chainer/internal/models"
)

// FileStorage implements Storage with JSON documents on disk, backed by an
// in-memory index for reads.
type FileStorage struct {
	mu       sync.Mutex
	basePath string
	memory   *MemoryStorage
}

const (
	dirSpecs      = "specs"
	dirOperations = "operations"
	dirAnalyses   = "analyses"
	dirResults    = "results"
)

// NewFileStorage creates a new file-based storage rooted at basePath
func NewFileStorage(basePath string) (*FileStorage, error) {
	for _, dir := range []string{basePath,
		filepath.Join(basePath, dirSpecs),
		filepath.Join(basePath, dirOperations),
		filepath.Join(basePath, dirAnalyses),
		filepath.Join(basePath, dirResults),
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	fs := &FileStorage{
		basePath: basePath,
		memory:   NewMemoryStorage(),
	}

	if err := fs.loadAll(); err != nil {
		return nil, err
	}

	return fs, nil
}

// loadAll loads all persisted documents into the in-memory index.
// Unreadable or corrupt files are skipped rather than failing startup.
func (f *FileStorage) loadAll() error {
	if err := loadDir(filepath.Join(f.basePath, dirSpecs), func(data []byte) {
		var spec models.Spec
		if json.Unmarshal(data, &spec) == nil && spec.ID != "" {
			f.memory.specs[spec.ID] = &spec
		}
	}); err != nil {
		return err
	}

	if err := loadDir(filepath.Join(f.basePath, dirOperations), func(data []byte) {
		var op models.Operation
		if json.Unmarshal(data, &op) == nil && op.ID != "" {
			f.memory.operations[op.ID] = &op
		}
	}); err != nil {
		return err
	}

	if err := loadDir(filepath.Join(f.basePath, dirAnalyses), func(data []byte) {
		var analysis models.Analysis
		if json.Unmarshal(data, &analysis) == nil && analysis.SpecID != "" {
			f.memory.analyses[analysis.SpecID] = &analysis
		}
	}); err != nil {
		return err
	}

	return loadDir(filepath.Join(f.basePath, dirResults), func(data []byte) {
		var result models.SequenceExecutionResult
		if json.Unmarshal(data, &result) == nil && result.ID != "" {
			f.memory.results[result.ID] = &result
		}
	})
}

func loadDir(dir string, load func(data []byte)) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		load(data)
	}

	return nil
}

func (f *FileStorage) writeJSON(dir, id string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(f.basePath, dir, id+".json"), data, 0644)
}

func (f *FileStorage) removeJSON(dir, id string) {
	os.Remove(filepath.Join(f.basePath, dir, id+".json"))
}

// CreateSpec creates a new spec
func (f *FileStorage) CreateSpec(spec *models.Spec) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.memory.CreateSpec(spec); err != nil {
		return err
	}
	return f.writeJSON(dirSpecs, spec.ID, spec)
}

// GetSpec retrieves a spec by ID
func (f *FileStorage) GetSpec(id string) (*models.Spec, error) {
	return f.memory.GetSpec(id)
}

// GetAllSpecs retrieves all specs
func (f *FileStorage) GetAllSpecs() ([]*models.Spec, error) {
	return f.memory.GetAllSpecs()
}

// UpdateSpec updates a spec
func (f *FileStorage) UpdateSpec(spec *models.Spec) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.memory.UpdateSpec(spec); err != nil {
		return err
	}
	return f.writeJSON(dirSpecs, spec.ID, spec)
}

// DeleteSpec deletes a spec
func (f *FileStorage) DeleteSpec(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.memory.DeleteSpec(id); err != nil {
		return err
	}
	f.removeJSON(dirSpecs, id)
	return nil
}

// CreateOperation creates a new operation
func (f *FileStorage) CreateOperation(op *models.Operation) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.memory.CreateOperation(op); err != nil {
		return err
	}
	return f.writeJSON(dirOperations, op.ID, op)
}

// GetOperation retrieves an operation by ID
func (f *FileStorage) GetOperation(id string) (*models.Operation, error) {
	return f.memory.GetOperation(id)
}

// GetOperationsBySpec retrieves all operations for a spec
func (f *FileStorage) GetOperationsBySpec(specID string) ([]*models.Operation, error) {
	return f.memory.GetOperationsBySpec(specID)
}

// DeleteOperationsBySpec deletes all operations for a spec
func (f *FileStorage) DeleteOperationsBySpec(specID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	ops, _ := f.memory.GetOperationsBySpec(specID)
	if err := f.memory.DeleteOperationsBySpec(specID); err != nil {
		return err
	}
	for _, op := range ops {
		f.removeJSON(dirOperations, op.ID)
	}
	return nil
}

// SaveAnalysis stores an analysis, replacing any existing one for the spec
func (f *FileStorage) SaveAnalysis(analysis *models.Analysis) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.memory.SaveAnalysis(analysis); err != nil {
		return err
	}
	return f.writeJSON(dirAnalyses, analysis.SpecID, analysis)
}

// GetAnalysisBySpec retrieves the analysis for a spec
func (f *FileStorage) GetAnalysisBySpec(specID string) (*models.Analysis, error) {
	return f.memory.GetAnalysisBySpec(specID)
}

// DeleteAnalysisBySpec deletes the analysis for a spec
func (f *FileStorage) DeleteAnalysisBySpec(specID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.memory.DeleteAnalysisBySpec(specID); err != nil {
		return err
	}
	f.removeJSON(dirAnalyses, specID)
	return nil
}

// CreateExecutionResult stores an execution result
func (f *FileStorage) CreateExecutionResult(result *models.SequenceExecutionResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.memory.CreateExecutionResult(result); err != nil {
		return err
	}
	return f.writeJSON(dirResults, result.ID, result)
}

// GetExecutionResult retrieves an execution result by ID
func (f *FileStorage) GetExecutionResult(id string) (*models.SequenceExecutionResult, error) {
	return f.memory.GetExecutionResult(id)
}

// GetExecutionResultsBySpec retrieves execution results for a spec
func (f *FileStorage) GetExecutionResultsBySpec(specID string) ([]*models.SequenceExecutionResult, error) {
	return f.memory.GetExecutionResultsBySpec(specID)
}

// GetAllExecutionResults retrieves all execution results
func (f *FileStorage) GetAllExecutionResults() ([]*models.SequenceExecutionResult, error) {
	return f.memory.GetAllExecutionResults()
}

// Close closes the storage
func (f *FileStorage) Close() error {
	return f.memory.Close()
}
