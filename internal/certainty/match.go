package certainty

import (
	"strings"
)

// ProducerAttribute returns the output attribute able to supply the named
// path parameter, if any. Matching is looser than exact name equality: a
// path-parameter-style name like "itemId" or "item_id" also matches a
// produced plain "id". Shared by the resolver's dependency-endpoint lookup
// and the graph builder's path-parameter edge detection.
func ProducerAttribute(outputs []string, param string) (string, bool) {
	lowerParam := strings.ToLower(param)
	for _, out := range outputs {
		if strings.ToLower(out) == lowerParam {
			return out, true
		}
	}
	if strings.HasSuffix(lowerParam, "id") && lowerParam != "id" {
		for _, out := range outputs {
			if strings.ToLower(out) == "id" {
				return out, true
			}
		}
	}
	return "", false
}
