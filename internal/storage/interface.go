package storage

import (
	"github.com/prasenjit/go-chainer/internal/models"
)

// Storage defines the interface for data persistence. Static analysis
// artifacts (specs, operations, analyses) are cached here; live execution
// results are stored for reporting but never reused as inputs.
type Storage interface {
	// Spec operations
	CreateSpec(spec *models.Spec) error
	GetSpec(id string) (*models.Spec, error)
	GetAllSpecs() ([]*models.Spec, error)
	UpdateSpec(spec *models.Spec) error
	DeleteSpec(id string) error

	// Operation operations
	CreateOperation(op *models.Operation) error
	GetOperation(id string) (*models.Operation, error)
	GetOperationsBySpec(specID string) ([]*models.Operation, error)
	DeleteOperationsBySpec(specID string) error

	// Analysis operations. One analysis per spec; SaveAnalysis replaces an
	// existing record (override semantics).
	SaveAnalysis(analysis *models.Analysis) error
	GetAnalysisBySpec(specID string) (*models.Analysis, error)
	DeleteAnalysisBySpec(specID string) error

	// Execution result operations
	CreateExecutionResult(result *models.SequenceExecutionResult) error
	GetExecutionResult(id string) (*models.SequenceExecutionResult, error)
	GetExecutionResultsBySpec(specID string) ([]*models.SequenceExecutionResult, error)
	GetAllExecutionResults() ([]*models.SequenceExecutionResult, error)

	// Utility
	Close() error
}
