package parser

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/uuid"
	"github.com/prasenjit/go-chainer/internal/models"
)

// Parser handles OpenAPI 3 specification parsing
type Parser struct{}

// NewParser creates a new OpenAPI parser
func NewParser() *Parser {
	return &Parser{}
}

// ParseResult contains the parsed spec and its normalized operations
type ParseResult struct {
	Spec       *models.Spec
	Operations []*models.Operation
}

// methodOrder fixes the per-path method ordering used to assign declaration
// indices deterministically (doc path maps are unordered).
var methodOrder = []string{"POST", "GET", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS"}

// Parse parses an OpenAPI 3 specification into the normalized operation list
func (p *Parser) Parse(content string) (*ParseResult, error) {
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = true

	doc, err := loader.LoadFromData([]byte(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI spec: %w", err)
	}

	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI spec: %w", err)
	}

	specID := uuid.New().String()
	now := time.Now()

	spec := &models.Spec{
		ID:          specID,
		Name:        doc.Info.Title,
		Version:     doc.Info.Version,
		Description: doc.Info.Description,
		Content:     content,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	operations := p.extractOperations(doc, specID)

	return &ParseResult{
		Spec:       spec,
		Operations: operations,
	}, nil
}

// ParseOperations parses operations from spec content for an existing spec.
// Used when regenerating the operation list from stored specs.
func (p *Parser) ParseOperations(content string, specID string) ([]*models.Operation, error) {
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = true

	doc, err := loader.LoadFromData([]byte(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI spec: %w", err)
	}

	return p.extractOperations(doc, specID), nil
}

// extractOperations extracts all operations from the OpenAPI document,
// computing each operation's input and output attribute sets.
func (p *Parser) extractOperations(doc *openapi3.T, specID string) []*models.Operation {
	var operations []*models.Operation

	// Stable path order so declaration indices are reproducible across parses
	paths := make([]string, 0, len(doc.Paths.Map()))
	for pathPattern := range doc.Paths.Map() {
		paths = append(paths, pathPattern)
	}
	sort.Strings(paths)

	index := 0
	for _, pathPattern := range paths {
		pathItem := doc.Paths.Map()[pathPattern]
		if pathItem == nil {
			continue
		}

		byMethod := map[string]*openapi3.Operation{
			"GET":     pathItem.Get,
			"POST":    pathItem.Post,
			"PUT":     pathItem.Put,
			"DELETE":  pathItem.Delete,
			"PATCH":   pathItem.Patch,
			"HEAD":    pathItem.Head,
			"OPTIONS": pathItem.Options,
		}

		for _, method := range methodOrder {
			op := byMethod[method]
			if op == nil {
				continue
			}

			operationID := op.OperationID
			if operationID == "" {
				operationID = fmt.Sprintf("%s_%s", strings.ToLower(method), sanitizePath(pathPattern))
			}

			operation := &models.Operation{
				ID:               generateOperationID(specID, method, pathPattern),
				SpecID:           specID,
				Method:           method,
				Path:             pathPattern,
				OperationID:      operationID,
				Summary:          op.Summary,
				DeclarationIndex: index,
			}
			index++

			p.extractParameters(operation, pathItem, op)
			operation.InputAttributes = extractInputAttributes(pathItem, op)
			operation.OutputAttributes = extractOutputAttributes(op)
			operation.BodyProperties = extractBodyProperties(op)

			operations = append(operations, operation)
		}
	}

	return operations
}

// extractParameters populates the operation's path and query parameter lists.
// Path-item level parameters apply to every operation under the path.
func (p *Parser) extractParameters(operation *models.Operation, pathItem *openapi3.PathItem, op *openapi3.Operation) {
	seen := make(map[string]bool)

	add := func(param *openapi3.Parameter) {
		if param == nil || seen[param.In+":"+param.Name] {
			return
		}
		seen[param.In+":"+param.Name] = true

		normalized := models.Parameter{
			Name:   param.Name,
			Schema: flattenSchema(param.Schema, param.Description),
		}

		switch param.In {
		case openapi3.ParameterInPath:
			operation.PathParameters = append(operation.PathParameters, normalized)
		case openapi3.ParameterInQuery:
			operation.QueryParameters = append(operation.QueryParameters, normalized)
		}
	}

	for _, ref := range op.Parameters {
		if ref != nil {
			add(ref.Value)
		}
	}
	for _, ref := range pathItem.Parameters {
		if ref != nil {
			add(ref.Value)
		}
	}
}

// flattenSchema converts an OpenAPI schema ref into the facet struct the
// certainty resolver and value generator consume. Unresolvable refs degrade
// to nil rather than failing the parse.
func flattenSchema(ref *openapi3.SchemaRef, description string) *models.ParameterSchema {
	if ref == nil || ref.Value == nil {
		return nil
	}
	schema := ref.Value

	out := &models.ParameterSchema{
		Format:      schema.Format,
		Pattern:     schema.Pattern,
		Minimum:     schema.Min,
		Maximum:     schema.Max,
		Description: schema.Description,
	}
	if out.Description == "" {
		out.Description = description
	}
	if schema.Type != nil && len(schema.Type.Slice()) > 0 {
		out.Type = schema.Type.Slice()[0]
	}
	for _, v := range schema.Enum {
		out.Enum = append(out.Enum, fmt.Sprintf("%v", v))
	}

	return out
}

// sanitizePath converts a path to a valid identifier
func sanitizePath(pathPattern string) string {
	result := strings.ReplaceAll(pathPattern, "{", "")
	result = strings.ReplaceAll(result, "}", "")
	result = strings.ReplaceAll(result, "/", "_")
	result = strings.TrimPrefix(result, "_")
	result = strings.TrimSuffix(result, "_")
	return result
}

// generateOperationID generates a deterministic operation ID based on spec,
// method, and path, so operations keep stable IDs across re-parses.
func generateOperationID(specID, method, path string) string {
	data := fmt.Sprintf("%s:%s:%s", specID, method, path)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:16])
}
