package certainty

import (
	"testing"

	"github.com/prasenjit/go-chainer/internal/models"
)

func floatPtr(v float64) *float64 { return &v }

func opWithParam(index int, method, path, param string, schema *models.ParameterSchema) models.Operation {
	return models.Operation{
		Method:           method,
		Path:             path,
		InputAttributes:  []string{param},
		PathParameters:   []models.Parameter{{Name: param, Schema: schema}},
		DeclarationIndex: index,
	}
}

func TestResolve_Certain(t *testing.T) {
	tests := []struct {
		name   string
		param  string
		schema *models.ParameterSchema
	}{
		{
			name:   "enum",
			param:  "status",
			schema: &models.ParameterSchema{Type: "string", Enum: []string{"open", "closed"}},
		},
		{
			name:   "uuid format",
			param:  "resourceKey",
			schema: &models.ParameterSchema{Type: "string", Format: "uuid"},
		},
		{
			name:   "date format",
			param:  "from",
			schema: &models.ParameterSchema{Type: "string", Format: "date"},
		},
		{
			name:   "pattern",
			param:  "code",
			schema: &models.ParameterSchema{Type: "string", Pattern: "^[A-Z]{3}$"},
		},
		{
			name:   "narrow numeric range",
			param:  "itemId",
			schema: &models.ParameterSchema{Type: "integer", Minimum: floatPtr(1), Maximum: floatPtr(50)},
		},
		{
			name:   "description guidance",
			param:  "region",
			schema: &models.ParameterSchema{Type: "string", Description: "Valid values are: us, eu, apac"},
		},
		{
			name:   "temporal name token",
			param:  "startDate",
			schema: &models.ParameterSchema{Type: "string"},
		},
	}

	r := NewResolver()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := opWithParam(0, "GET", "/items/{"+tt.param+"}", tt.param, tt.schema)
			results := r.Resolve(&op, []models.Operation{op})

			if len(results) != 1 {
				t.Fatalf("expected 1 classification, got %d", len(results))
			}
			if results[0].Certainty != models.CertaintyCertain {
				t.Errorf("expected certain (%s), got %s", results[0].Reason, results[0].Certainty)
			}
			if len(results[0].DependencyEndpoints) != 0 {
				t.Errorf("certain parameter should carry no dependency endpoints")
			}
		})
	}
}

func TestResolve_WideRangeIsUncertain(t *testing.T) {
	schema := &models.ParameterSchema{Type: "integer", Minimum: floatPtr(1), Maximum: floatPtr(1000)}
	op := opWithParam(0, "GET", "/items/{count}", "count", schema)

	results := NewResolver().Resolve(&op, []models.Operation{op})
	if results[0].Certainty != models.CertaintyUncertain {
		t.Errorf("range of 999 values should be uncertain, got %s", results[0].Certainty)
	}
}

func TestResolve_UncertainWithProducer(t *testing.T) {
	producer := models.Operation{
		Method:           "POST",
		Path:             "/items",
		OutputAttributes: []string{"id", "name"},
		DeclarationIndex: 0,
	}
	consumer := opWithParam(1, "GET", "/items/{itemId}", "itemId", &models.ParameterSchema{Type: "string"})

	results := NewResolver().Resolve(&consumer, []models.Operation{producer, consumer})

	if len(results) != 1 {
		t.Fatalf("expected 1 classification, got %d", len(results))
	}
	pc := results[0]
	if pc.Certainty != models.CertaintyUncertain {
		t.Fatalf("plain string parameter should be uncertain, got %s", pc.Certainty)
	}
	if len(pc.DependencyEndpoints) != 1 || pc.DependencyEndpoints[0] != "POST /items" {
		t.Errorf("expected dependency endpoints [POST /items], got %v", pc.DependencyEndpoints)
	}
}

func TestResolve_UncertainWithoutProducer(t *testing.T) {
	op := opWithParam(0, "GET", "/items/{itemId}", "itemId", &models.ParameterSchema{Type: "string"})

	results := NewResolver().Resolve(&op, []models.Operation{op})

	pc := results[0]
	if pc.Certainty != models.CertaintyUncertain {
		t.Fatalf("expected uncertain, got %s", pc.Certainty)
	}
	if len(pc.DependencyEndpoints) != 0 {
		t.Errorf("expected empty dependency endpoints, got %v", pc.DependencyEndpoints)
	}
}

func TestResolve_EndpointRanking(t *testing.T) {
	// Producers sharing a path prefix with the consumer rank first,
	// then declaration order.
	unrelated := models.Operation{
		Method:           "GET",
		Path:             "/exports",
		OutputAttributes: []string{"id"},
		DeclarationIndex: 0,
	}
	related := models.Operation{
		Method:           "POST",
		Path:             "/items",
		OutputAttributes: []string{"id"},
		DeclarationIndex: 1,
	}
	consumer := opWithParam(2, "GET", "/items/{itemId}", "itemId", &models.ParameterSchema{Type: "string"})

	results := NewResolver().Resolve(&consumer, []models.Operation{unrelated, related, consumer})

	endpoints := results[0].DependencyEndpoints
	if len(endpoints) != 2 {
		t.Fatalf("expected 2 endpoints, got %v", endpoints)
	}
	if endpoints[0] != "POST /items" || endpoints[1] != "GET /exports" {
		t.Errorf("expected path-prefix proximity ranking, got %v", endpoints)
	}
}

func TestResolve_QueryParameters(t *testing.T) {
	producer := models.Operation{
		Method:           "POST",
		Path:             "/items",
		OutputAttributes: []string{"id", "ownerId"},
		DeclarationIndex: 0,
	}
	op := models.Operation{
		Method:         "GET",
		Path:           "/items/{itemId}",
		PathParameters: []models.Parameter{{Name: "itemId", Schema: &models.ParameterSchema{Type: "string"}}},
		QueryParameters: []models.Parameter{
			{Name: "limit", Schema: &models.ParameterSchema{Type: "integer", Minimum: floatPtr(1), Maximum: floatPtr(50)}},
			{Name: "ownerId", Schema: &models.ParameterSchema{Type: "string"}},
			{Name: "itemId", Schema: &models.ParameterSchema{Type: "string"}}, // shadows the path parameter
		},
		DeclarationIndex: 1,
	}

	results := NewResolver().Resolve(&op, []models.Operation{producer, op})

	byName := make(map[string]models.ParameterCertainty)
	for _, pc := range results {
		if _, dup := byName[pc.Parameter]; dup {
			t.Errorf("parameter %q classified twice", pc.Parameter)
		}
		byName[pc.Parameter] = pc
	}
	if len(byName) != 3 {
		t.Fatalf("expected 3 classifications (itemId, limit, ownerId), got %v", results)
	}
	if byName["limit"].Certainty != models.CertaintyCertain {
		t.Errorf("narrow-range query parameter should be certain, got %s", byName["limit"].Certainty)
	}
	owner := byName["ownerId"]
	if owner.Certainty != models.CertaintyUncertain {
		t.Fatalf("plain string query parameter should be uncertain, got %s", owner.Certainty)
	}
	if len(owner.DependencyEndpoints) != 1 || owner.DependencyEndpoints[0] != "POST /items" {
		t.Errorf("expected dependency endpoints [POST /items], got %v", owner.DependencyEndpoints)
	}
}

func TestResolveAll_Totality(t *testing.T) {
	ops := []models.Operation{
		opWithParam(0, "GET", "/items/{itemId}", "itemId", &models.ParameterSchema{Type: "string"}),
		opWithParam(1, "DELETE", "/items/{itemId}", "itemId", nil),
		{Method: "POST", Path: "/items", OutputAttributes: []string{"id"}, DeclarationIndex: 2},
	}

	results := NewResolver().ResolveAll(ops)

	// Every path parameter of every operation gets exactly one classification
	if len(results) != 2 {
		t.Fatalf("expected 2 classifications (one per path parameter), got %d", len(results))
	}
	seen := make(map[string]int)
	for _, pc := range results {
		seen[pc.Operation+"#"+pc.Parameter]++
		if pc.Certainty != models.CertaintyCertain && pc.Certainty != models.CertaintyUncertain {
			t.Errorf("invalid certainty %q", pc.Certainty)
		}
	}
	for key, count := range seen {
		if count != 1 {
			t.Errorf("%s classified %d times", key, count)
		}
	}
}

func TestProducerAttribute(t *testing.T) {
	tests := []struct {
		name    string
		outputs []string
		param   string
		want    string
		ok      bool
	}{
		{"exact", []string{"id", "name"}, "id", "id", true},
		{"case insensitive", []string{"ItemID"}, "itemid", "ItemID", true},
		{"suffix id", []string{"id", "name"}, "itemId", "id", true},
		{"snake suffix", []string{"id"}, "item_id", "id", true},
		{"no match", []string{"name"}, "itemId", "", false},
		{"bare id needs exact", []string{"name"}, "id", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ProducerAttribute(tt.outputs, tt.param)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ProducerAttribute(%v, %q) = (%q, %v), want (%q, %v)",
					tt.outputs, tt.param, got, ok, tt.want, tt.ok)
			}
		})
	}
}
