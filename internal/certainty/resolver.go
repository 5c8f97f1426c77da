package certainty

import (
	"sort"
	"strings"

	"github.com/prasenjit/go-chainer/internal/models"
)

// certainFormats are schema formats with statically inventable values
var certainFormats = map[string]bool{
	"date":      true,
	"date-time": true,
	"email":     true,
	"uuid":      true,
}

// descriptionHints are phrases that indicate a description carries explicit
// value guidance (so a generator can safely invent a value from it).
var descriptionHints = []string{
	"valid values are",
	"must be one of",
	"format:",
	"example:",
	"iso-8601",
	"iso 8601",
	"yyyy-mm-dd",
}

// nameTokens are substrings of parameter names that identify temporal or
// identifier-style values with a well-known shape. A bare "id" is not here
// on purpose: plain ids must come from a producing operation.
var nameTokens = []string{
	"date", "time", "year", "month", "day", "timestamp", "uuid", "guid", "email",
}

// maxNarrowRange is the widest min/max spread still considered enumerable
const maxNarrowRange = 100

// Resolver classifies path and query parameters as certain or uncertain and,
// for uncertain ones, finds the operations able to supply them.
type Resolver struct{}

// NewResolver creates a new certainty resolver
func NewResolver() *Resolver {
	return &Resolver{}
}

// ResolveAll classifies every path and query parameter of every operation.
// Each parameter name gets exactly one classification per operation.
func (r *Resolver) ResolveAll(operations []models.Operation) []models.ParameterCertainty {
	var results []models.ParameterCertainty
	for i := range operations {
		results = append(results, r.Resolve(&operations[i], operations)...)
	}
	return results
}

// Resolve classifies the path and query parameters of one operation against
// the full operation list. A query parameter sharing a path parameter's name
// is covered by the path classification alone: path and query bindings are
// mutually exclusive at request-build time.
func (r *Resolver) Resolve(op *models.Operation, all []models.Operation) []models.ParameterCertainty {
	results := make([]models.ParameterCertainty, 0, len(op.PathParameters)+len(op.QueryParameters))
	classified := make(map[string]bool, len(op.PathParameters))

	for _, param := range op.PathParameters {
		results = append(results, r.classifyParameter(op, param, all))
		classified[param.Name] = true
	}
	for _, param := range op.QueryParameters {
		if classified[param.Name] {
			continue
		}
		classified[param.Name] = true
		results = append(results, r.classifyParameter(op, param, all))
	}

	return results
}

func (r *Resolver) classifyParameter(op *models.Operation, param models.Parameter, all []models.Operation) models.ParameterCertainty {
	pc := models.ParameterCertainty{
		Operation: op.Signature(),
		Parameter: param.Name,
	}

	if reason := classify(param.Name, param.Schema); reason != "" {
		pc.Certainty = models.CertaintyCertain
		pc.Reason = reason
	} else {
		pc.Certainty = models.CertaintyUncertain
		pc.DependencyEndpoints = r.dependencyEndpoints(op, param.Name, all)
	}

	return pc
}

// classify returns a non-empty reason when the parameter's value is
// derivable from the spec alone, or "" when it is uncertain.
func classify(name string, schema *models.ParameterSchema) string {
	if schema != nil {
		if len(schema.Enum) > 0 {
			return "enum"
		}
		if certainFormats[schema.Format] {
			return "format " + schema.Format
		}
		if schema.Pattern != "" {
			return "pattern"
		}
		if schema.Minimum != nil && schema.Maximum != nil && *schema.Maximum-*schema.Minimum <= maxNarrowRange {
			return "narrow numeric range"
		}

		desc := strings.ToLower(schema.Description)
		for _, hint := range descriptionHints {
			if strings.Contains(desc, hint) {
				return "description guidance"
			}
		}
	}

	lower := strings.ToLower(name)
	for _, token := range nameTokens {
		if strings.Contains(lower, token) {
			return "name pattern " + token
		}
	}

	return ""
}

// dependencyEndpoints returns the signatures of all operations (excluding
// the current one) whose output attributes can supply the parameter, ranked
// by path-prefix proximity first, then declaration order. May be empty:
// callers then fall back to a placeholder value rather than fail.
func (r *Resolver) dependencyEndpoints(op *models.Operation, param string, all []models.Operation) []string {
	type candidate struct {
		signature string
		related   bool
		declared  int
	}

	var candidates []candidate
	for i := range all {
		other := &all[i]
		if other.Method == op.Method && other.Path == op.Path {
			continue
		}
		if _, ok := ProducerAttribute(other.OutputAttributes, param); !ok {
			continue
		}
		candidates = append(candidates, candidate{
			signature: other.Signature(),
			related:   sharesPathPrefix(op.Path, other.Path),
			declared:  other.DeclarationIndex,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].related != candidates[j].related {
			return candidates[i].related
		}
		return candidates[i].declared < candidates[j].declared
	})

	endpoints := make([]string, len(candidates))
	for i, c := range candidates {
		endpoints[i] = c.signature
	}
	return endpoints
}

// sharesPathPrefix reports whether either path is a prefix of the other
func sharesPathPrefix(a, b string) bool {
	return strings.HasPrefix(a, b) || strings.HasPrefix(b, a)
}
