package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prasenjit/go-chainer/internal/models"
)

// backends drives the shared interface tests against both implementations
func backends(t *testing.T) map[string]Storage {
	t.Helper()

	fileStore, err := NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStorage: %v", err)
	}

	return map[string]Storage{
		"memory": NewMemoryStorage(),
		"file":   fileStore,
	}
}

func sampleSpec(id string) *models.Spec {
	return &models.Spec{
		ID:        id,
		Name:      "Inventory " + id,
		Version:   "1.0.0",
		Content:   "openapi: 3.0.3",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func TestSpecCRUD(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer store.Close()

			spec := sampleSpec("s1")
			if err := store.CreateSpec(spec); err != nil {
				t.Fatalf("CreateSpec: %v", err)
			}
			if err := store.CreateSpec(spec); err == nil {
				t.Error("duplicate create must fail")
			}

			got, err := store.GetSpec("s1")
			if err != nil || got.Name != spec.Name {
				t.Fatalf("GetSpec: %v %+v", err, got)
			}

			spec.Version = "2.0.0"
			if err := store.UpdateSpec(spec); err != nil {
				t.Fatalf("UpdateSpec: %v", err)
			}
			got, _ = store.GetSpec("s1")
			if got.Version != "2.0.0" {
				t.Errorf("update not visible: %q", got.Version)
			}

			if err := store.DeleteSpec("s1"); err != nil {
				t.Fatalf("DeleteSpec: %v", err)
			}
			if _, err := store.GetSpec("s1"); err == nil {
				t.Error("deleted spec still readable")
			}
			if err := store.DeleteSpec("s1"); err == nil {
				t.Error("deleting a missing spec must fail")
			}
		})
	}
}

func TestGetAllSpecs_SortedByName(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer store.Close()

			b := sampleSpec("b")
			b.Name = "beta"
			a := sampleSpec("a")
			a.Name = "alpha"
			store.CreateSpec(b)
			store.CreateSpec(a)

			specs, err := store.GetAllSpecs()
			if err != nil {
				t.Fatalf("GetAllSpecs: %v", err)
			}
			if len(specs) != 2 || specs[0].Name != "alpha" || specs[1].Name != "beta" {
				t.Errorf("specs not sorted by name: %+v", specs)
			}
		})
	}
}

func TestOperations_DeclarationOrderAndScoping(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer store.Close()

			ops := []*models.Operation{
				{ID: "o2", SpecID: "s1", Method: "GET", Path: "/items/{itemId}", DeclarationIndex: 1},
				{ID: "o1", SpecID: "s1", Method: "POST", Path: "/items", DeclarationIndex: 0},
				{ID: "o3", SpecID: "s2", Method: "GET", Path: "/other", DeclarationIndex: 0},
			}
			for _, op := range ops {
				if err := store.CreateOperation(op); err != nil {
					t.Fatalf("CreateOperation: %v", err)
				}
			}

			got, err := store.GetOperationsBySpec("s1")
			if err != nil {
				t.Fatalf("GetOperationsBySpec: %v", err)
			}
			if len(got) != 2 || got[0].ID != "o1" || got[1].ID != "o2" {
				t.Errorf("operations not in declaration order: %+v", got)
			}

			if err := store.DeleteOperationsBySpec("s1"); err != nil {
				t.Fatalf("DeleteOperationsBySpec: %v", err)
			}
			got, _ = store.GetOperationsBySpec("s1")
			if len(got) != 0 {
				t.Error("s1 operations survived delete")
			}
			if _, err := store.GetOperation("o3"); err != nil {
				t.Error("other spec's operation must survive")
			}
		})
	}
}

func TestSaveAnalysis_Overrides(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer store.Close()

			first := &models.Analysis{ID: "a1", SpecID: "s1", CreatedAt: time.Now()}
			second := &models.Analysis{ID: "a2", SpecID: "s1", CreatedAt: time.Now()}

			if err := store.SaveAnalysis(first); err != nil {
				t.Fatalf("SaveAnalysis: %v", err)
			}
			if err := store.SaveAnalysis(second); err != nil {
				t.Fatalf("SaveAnalysis override: %v", err)
			}

			got, err := store.GetAnalysisBySpec("s1")
			if err != nil {
				t.Fatalf("GetAnalysisBySpec: %v", err)
			}
			if got.ID != "a2" {
				t.Errorf("expected override to win, got %q", got.ID)
			}

			if err := store.DeleteAnalysisBySpec("s1"); err != nil {
				t.Fatalf("DeleteAnalysisBySpec: %v", err)
			}
			if _, err := store.GetAnalysisBySpec("s1"); err == nil {
				t.Error("deleted analysis still readable")
			}
		})
	}
}

func TestExecutionResults_NewestFirst(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer store.Close()

			old := &models.SequenceExecutionResult{ID: "r1", SpecID: "s1", StartedAt: time.Now().Add(-time.Hour)}
			recent := &models.SequenceExecutionResult{ID: "r2", SpecID: "s1", StartedAt: time.Now()}
			other := &models.SequenceExecutionResult{ID: "r3", SpecID: "s2", StartedAt: time.Now().Add(-time.Minute)}

			for _, r := range []*models.SequenceExecutionResult{old, recent, other} {
				if err := store.CreateExecutionResult(r); err != nil {
					t.Fatalf("CreateExecutionResult: %v", err)
				}
			}

			bySpec, err := store.GetExecutionResultsBySpec("s1")
			if err != nil {
				t.Fatalf("GetExecutionResultsBySpec: %v", err)
			}
			if len(bySpec) != 2 || bySpec[0].ID != "r2" || bySpec[1].ID != "r1" {
				t.Errorf("results not newest first: %+v", bySpec)
			}

			all, err := store.GetAllExecutionResults()
			if err != nil || len(all) != 3 {
				t.Fatalf("GetAllExecutionResults: %v (%d)", err, len(all))
			}
			if all[0].ID != "r2" {
				t.Errorf("all results not newest first: %+v", all)
			}
		})
	}
}

func TestFileStorage_SurvivesReload(t *testing.T) {
	dir := t.TempDir()

	store, err := NewFileStorage(dir)
	if err != nil {
		t.Fatalf("NewFileStorage: %v", err)
	}
	store.CreateSpec(sampleSpec("s1"))
	store.CreateOperation(&models.Operation{ID: "o1", SpecID: "s1", Method: "POST", Path: "/items"})
	store.SaveAnalysis(&models.Analysis{ID: "a1", SpecID: "s1"})
	store.CreateExecutionResult(&models.SequenceExecutionResult{ID: "r1", SpecID: "s1", StartedAt: time.Now()})
	store.Close()

	reloaded, err := NewFileStorage(dir)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	defer reloaded.Close()

	if _, err := reloaded.GetSpec("s1"); err != nil {
		t.Errorf("spec lost on reload: %v", err)
	}
	if _, err := reloaded.GetOperation("o1"); err != nil {
		t.Errorf("operation lost on reload: %v", err)
	}
	if _, err := reloaded.GetAnalysisBySpec("s1"); err != nil {
		t.Errorf("analysis lost on reload: %v", err)
	}
	if _, err := reloaded.GetExecutionResult("r1"); err != nil {
		t.Errorf("execution result lost on reload: %v", err)
	}
}

func TestFileStorage_SkipsCorruptFiles(t *testing.T) {
	dir := t.TempDir()

	store, err := NewFileStorage(dir)
	if err != nil {
		t.Fatalf("NewFileStorage: %v", err)
	}
	store.CreateSpec(sampleSpec("s1"))
	store.Close()

	corrupt := filepath.Join(dir, "specs", "broken.json")
	if err := os.WriteFile(corrupt, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	reloaded, err := NewFileStorage(dir)
	if err != nil {
		t.Fatalf("reload with corrupt file: %v", err)
	}
	defer reloaded.Close()

	if _, err := reloaded.GetSpec("s1"); err != nil {
		t.Errorf("valid spec lost: %v", err)
	}
}
