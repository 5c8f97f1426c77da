package runner

import (
	"testing"
)

func TestLookupBinding(t *testing.T) {
	bindings := map[string]string{
		"id":     "7",
		"Status": "open",
		"name":   "widget",
	}

	tests := []struct {
		name  string
		key   string
		want  string
		found bool
	}{
		{"exact", "name", "widget", true},
		{"case insensitive", "status", "open", true},
		{"suffix falls back to id", "itemId", "7", true},
		{"snake suffix falls back to id", "item_id", "7", true},
		{"miss", "owner", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := lookupBinding(bindings, tt.key)
			if got != tt.want || found != tt.found {
				t.Errorf("lookupBinding(%q) = (%q, %v), want (%q, %v)",
					tt.key, got, found, tt.want, tt.found)
			}
		})
	}
}

func TestLookupBinding_BareIDNoFallback(t *testing.T) {
	bindings := map[string]string{"itemId": "7"}
	if _, found := lookupBinding(bindings, "id"); found {
		t.Error("bare \"id\" must not borrow from longer names")
	}
}

func TestMergeBindings_FlatObject(t *testing.T) {
	bindings := map[string]string{}
	mergeBindings(bindings, `{"id": 7, "name": "widget", "active": true}`)

	want := map[string]string{"id": "7", "name": "widget", "active": "true"}
	for k, v := range want {
		if bindings[k] != v {
			t.Errorf("bindings[%q] = %q, want %q", k, bindings[k], v)
		}
	}
}

func TestMergeBindings_NestedOneLevel(t *testing.T) {
	bindings := map[string]string{}
	mergeBindings(bindings, `{
		"id": 7,
		"owner": {"ownerId": 3, "address": {"city": "berlin"}},
		"tags": [{"tagId": 9}, {"tagId": 11}]
	}`)

	if bindings["ownerId"] != "3" {
		t.Errorf("nested attribute not harvested: %v", bindings)
	}
	if bindings["tagId"] != "9" {
		t.Errorf("first array element not harvested: %v", bindings)
	}
	if _, ok := bindings["city"]; ok {
		t.Error("harvest must stop one level below the top")
	}
}

func TestMergeBindings_TopLevelArray(t *testing.T) {
	bindings := map[string]string{}
	mergeBindings(bindings, `[{"id": 1}, {"id": 2}]`)

	if bindings["id"] != "1" {
		t.Errorf("expected first element binding, got %v", bindings)
	}
}

func TestMergeBindings_LaterOverwrites(t *testing.T) {
	bindings := map[string]string{"id": "1"}
	mergeBindings(bindings, `{"id": 2}`)

	if bindings["id"] != "2" {
		t.Errorf("later merge must overwrite, got %q", bindings["id"])
	}
}

func TestMergeBindings_SkipsNullAndGarbage(t *testing.T) {
	bindings := map[string]string{}
	mergeBindings(bindings, `{"id": null}`)
	if _, ok := bindings["id"]; ok {
		t.Error("null values must not bind")
	}

	mergeBindings(bindings, `not json at all`)
	mergeBindings(bindings, `"just a string"`)
	mergeBindings(bindings, `[]`)
	if len(bindings) != 0 {
		t.Errorf("non-object bodies must bind nothing, got %v", bindings)
	}
}

func TestCopyBindings(t *testing.T) {
	src := map[string]string{"id": "1"}
	dst := copyBindings(src)
	dst["id"] = "2"

	if src["id"] != "1" {
		t.Error("copy must not alias the source table")
	}
}
