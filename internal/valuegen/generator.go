package valuegen

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prasenjit/go-chainer/internal/models"
)

// Generator invents values for parameters classified as certain: values the
// spec alone determines (enums, formats, narrow ranges) or values with a
// recognizable shape derivable from the parameter name. Safe for concurrent
// use: rand.Rand is not, so the mutex serializes draws.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// intn draws from the shared source under the lock
func (g *Generator) intn(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Intn(n)
}

func (g *Generator) int63n(n int64) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Int63n(n)
}

func (g *Generator) float64() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Float64()
}

// NewGenerator creates a new value generator
func NewGenerator() *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
		now: time.Now,
	}
}

// Generate produces a value for the named parameter from its schema facets.
// It always returns something usable; callers decide separately (via the
// certainty resolver) whether inventing a value is safe at all.
func (g *Generator) Generate(name string, schema *models.ParameterSchema) string {
	if schema != nil {
		if len(schema.Enum) > 0 {
			return schema.Enum[0]
		}
		if v := g.fromFormat(schema.Format); v != "" {
			return v
		}
		if schema.Minimum != nil && schema.Maximum != nil {
			return g.fromRange(*schema.Minimum, *schema.Maximum, schema.Type)
		}
	}

	if v := g.fromName(name); v != "" {
		return v
	}

	if schema != nil {
		switch schema.Type {
		case "integer":
			return strconv.Itoa(g.intn(100) + 1)
		case "number":
			return strconv.FormatFloat(g.float64()*100, 'f', 2, 64)
		case "boolean":
			return "true"
		}
	}

	return fmt.Sprintf("value%d", g.intn(10000))
}

// fromFormat produces a value for well-known schema formats
func (g *Generator) fromFormat(format string) string {
	switch format {
	case "date":
		return g.now().UTC().Format("2006-01-02")
	case "date-time":
		return g.now().UTC().Format(time.RFC3339)
	case "email":
		return fmt.Sprintf("user%d@example.com", g.intn(1000))
	case "uuid":
		return uuid.New().String()
	default:
		return ""
	}
}

// fromRange picks a value inside a bounded numeric range
func (g *Generator) fromRange(min, max float64, schemaType string) string {
	if max < min {
		min, max = max, min
	}
	if schemaType == "number" {
		return strconv.FormatFloat(min+(max-min)*g.float64(), 'f', 2, 64)
	}
	span := int64(max-min) + 1
	return strconv.FormatInt(int64(min)+g.int63n(span), 10)
}

// fromName produces a value for parameter names with a recognized temporal
// or identifier token, mirroring the tokens the certainty resolver accepts.
func (g *Generator) fromName(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "timestamp"):
		return strconv.FormatInt(g.now().Unix(), 10)
	case strings.Contains(lower, "date"):
		return g.now().UTC().Format("2006-01-02")
	case strings.Contains(lower, "time"):
		return g.now().UTC().Format(time.RFC3339)
	case strings.Contains(lower, "year"):
		return strconv.Itoa(g.now().Year())
	case strings.Contains(lower, "month"):
		return strconv.Itoa(int(g.now().Month()))
	case strings.Contains(lower, "day"):
		return strconv.Itoa(g.now().Day())
	case strings.Contains(lower, "uuid"), strings.Contains(lower, "guid"):
		return uuid.New().String()
	case strings.Contains(lower, "email"):
		return fmt.Sprintf("user%d@example.com", g.intn(1000))
	default:
		return ""
	}
}
