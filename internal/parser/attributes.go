package parser

import (
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// extractInputAttributes collects the attribute names an operation reads:
// path parameters, query parameters, and recursively unwrapped request-body
// properties.
func extractInputAttributes(pathItem *openapi3.PathItem, op *openapi3.Operation) []string {
	attrs := make(map[string]struct{})

	collectParams := func(params openapi3.Parameters) {
		for _, ref := range params {
			if ref == nil || ref.Value == nil {
				continue
			}
			if ref.Value.In == openapi3.ParameterInPath || ref.Value.In == openapi3.ParameterInQuery {
				attrs[ref.Value.Name] = struct{}{}
			}
		}
	}
	collectParams(op.Parameters)
	collectParams(pathItem.Parameters)

	if op.RequestBody != nil && op.RequestBody.Value != nil {
		for _, media := range op.RequestBody.Value.Content {
			collectSchemaAttributes(media.Schema, attrs, make(map[*openapi3.Schema]bool))
		}
	}

	return sortedKeys(attrs)
}

// extractOutputAttributes collects the attribute names produced by an
// operation's success-range (2xx) responses.
func extractOutputAttributes(op *openapi3.Operation) []string {
	attrs := make(map[string]struct{})
	if op.Responses == nil {
		return nil
	}

	for status, ref := range op.Responses.Map() {
		if !isSuccessStatus(status) || ref == nil || ref.Value == nil {
			continue
		}
		for _, media := range ref.Value.Content {
			collectSchemaAttributes(media.Schema, attrs, make(map[*openapi3.Schema]bool))
		}
	}

	return sortedKeys(attrs)
}

// extractBodyProperties returns the top-level request-body property names,
// in stable order, for request synthesis at execution time.
func extractBodyProperties(op *openapi3.Operation) []string {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}

	props := make(map[string]struct{})
	for _, media := range op.RequestBody.Value.Content {
		schema := resolveSchema(media.Schema, make(map[*openapi3.Schema]bool))
		if schema == nil {
			continue
		}
		for name := range schema.Properties {
			props[name] = struct{}{}
		}
	}

	return sortedKeys(props)
}

// collectSchemaAttributes walks a schema and records every property name it
// encounters: object properties, array item properties, and composed
// (allOf/anyOf/oneOf) subschemas. The visited set guards against cyclic
// schemas; unresolved refs degrade to an empty contribution.
func collectSchemaAttributes(ref *openapi3.SchemaRef, attrs map[string]struct{}, visited map[*openapi3.Schema]bool) {
	if ref == nil || ref.Value == nil {
		return
	}
	schema := ref.Value
	if visited[schema] {
		return
	}
	visited[schema] = true

	for name, prop := range schema.Properties {
		attrs[name] = struct{}{}
		collectSchemaAttributes(prop, attrs, visited)
	}

	if schema.Items != nil {
		collectSchemaAttributes(schema.Items, attrs, visited)
	}

	for _, group := range [][]*openapi3.SchemaRef{schema.AllOf, schema.AnyOf, schema.OneOf} {
		for _, sub := range group {
			collectSchemaAttributes(sub, attrs, visited)
		}
	}
}

// resolveSchema follows composition until it finds a schema with properties
func resolveSchema(ref *openapi3.SchemaRef, visited map[*openapi3.Schema]bool) *openapi3.Schema {
	if ref == nil || ref.Value == nil || visited[ref.Value] {
		return nil
	}
	visited[ref.Value] = true

	if len(ref.Value.Properties) > 0 {
		return ref.Value
	}
	for _, sub := range ref.Value.AllOf {
		if resolved := resolveSchema(sub, visited); resolved != nil {
			return resolved
		}
	}
	return ref.Value
}

// isSuccessStatus reports whether a response key denotes a 2xx status.
// OpenAPI allows wildcard keys like "2XX" alongside concrete codes.
func isSuccessStatus(status string) bool {
	if status == "" {
		return false
	}
	if strings.EqualFold(status, "2xx") {
		return true
	}
	return len(status) == 3 && status[0] == '2'
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
