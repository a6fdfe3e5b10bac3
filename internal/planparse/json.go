// internal/planparse/json.go
package planparse

import (
	"encoding/json"
	"fmt"
	"strings"
)

// jsonCodec handles the canonical revision: the assistant embeds one JSON
// object in otherwise free text. The envelope is
//
//	{"meal_plan": {"daily_summary": {...}, "meals": [...]}, "comments": "..."}
//
// The object is located by depth-counted brace matching rather than a
// first-{/last-} scan so prose around (and after) the object is tolerated.
type jsonCodec struct{}

type jsonEnvelope struct {
	MealPlan *Document       `json:"meal_plan"`
	Comments json.RawMessage `json:"comments"`
}

func (jsonCodec) Extract(raw string) Extraction {
	obj, found, err := firstBalancedObject(raw)
	if err != nil {
		return Extraction{Status: StatusSyntaxError, Raw: raw, Err: err.Error()}
	}
	if !found {
		return Extraction{Status: StatusNotFound, Raw: raw}
	}

	var env jsonEnvelope
	if uerr := json.Unmarshal([]byte(obj), &env); uerr != nil {
		return Extraction{
			Status: StatusSyntaxError,
			Raw:    raw,
			Err:    fmt.Sprintf("invalid plan object: %v", uerr),
		}
	}
	if env.MealPlan == nil {
		// A balanced object without the plan key is not a plan document.
		return Extraction{Status: StatusNotFound, Raw: raw}
	}
	return Extraction{Status: StatusFound, Doc: env.MealPlan, Raw: raw}
}

func (jsonCodec) ExtractComments(raw string) (string, bool) {
	obj, found, err := firstBalancedObject(raw)
	if err != nil || !found {
		return "", false
	}
	var env jsonEnvelope
	if json.Unmarshal([]byte(obj), &env) != nil {
		return "", false
	}
	if len(env.Comments) == 0 {
		return "", false
	}
	var s string
	if json.Unmarshal(env.Comments, &s) != nil {
		// Present but not a string.
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}

// firstBalancedObject returns the first top-level {...} span in s. The
// scan is aware of JSON string literals and escapes, so braces inside
// quoted values do not affect the depth count. A document that opens an
// object and never closes it is a syntax error, not a miss.
func firstBalancedObject(s string) (string, bool, error) {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return "", false, nil
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true, nil
			}
		}
	}
	return "", false, fmt.Errorf("unbalanced braces in embedded object (depth %d at end of input)", depth)
}
