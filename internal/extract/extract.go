// Package extract recovers structured JSON from raw LLM completions.
// Models return free text with markdown fences, stray prose, or truncated
// JSON; Extract tries successively more forgiving strategies and reports
// failure via ok=false instead of an error, so callers can degrade to a
// synthesized fallback.
package extract

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Shape constrains what top-level JSON value the caller expects.
type Shape int

const (
	ShapeAny Shape = iota
	ShapeObject
	ShapeArray
)

// Extract parses raw into a JSON value of the requested shape. It never
// returns a value that fails to re-serialize as valid JSON; ok=false
// signals that no strategy recovered a usable value.
func Extract(raw string, shape Shape) (any, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, false
	}

	strategies := []func(string) (any, bool){
		parseDirect,
		parseFenced,
		parseBalanced,
		parseLines,
	}
	for _, try := range strategies {
		if v, ok := try(trimmed); ok {
			// Text that opens an object but parses only to an array is a
			// truncated object; key-value salvage recovers more of it than
			// wrapping the surviving fragment.
			if _, isArr := v.([]any); isArr && shape == ShapeObject && trimmed[0] == '{' {
				if kv, ok := parseKeyValues(trimmed); ok {
					return kv, true
				}
			}
			if v, ok = conform(v, shape); ok {
				return v, true
			}
		}
	}

	if shape == ShapeObject {
		if v, ok := parseKeyValues(trimmed); ok {
			return v, true
		}
	}
	return nil, false
}

// conform checks the parsed value against the requested shape, wrapping
// arrays into objects when an object was expected.
func conform(v any, shape Shape) (any, bool) {
	switch shape {
	case ShapeObject:
		if obj, ok := v.(map[string]any); ok {
			return obj, true
		}
		if arr, ok := v.([]any); ok {
			return WrapArray(arr), true
		}
		return nil, false
	case ShapeArray:
		if arr, ok := v.([]any); ok {
			return arr, true
		}
		return nil, false
	default:
		return v, true
	}
}

// WrapArray lifts a bare JSON array into an object. Arrays whose items
// carry an id-like field are treated as question lists ({"questions": arr});
// anything else becomes {"items": arr}. Centralized here so call sites do
// not each re-invent the "is this actually a list of questions" check.
func WrapArray(arr []any) map[string]any {
	if looksLikeQuestions(arr) {
		return map[string]any{"questions": arr}
	}
	return map[string]any{"items": arr}
}

func looksLikeQuestions(arr []any) bool {
	if len(arr) == 0 {
		return false
	}
	for _, item := range arr {
		obj, ok := item.(map[string]any)
		if !ok {
			return false
		}
		if _, ok := obj["id"]; ok {
			continue
		}
		if _, ok := obj["question_id"]; ok {
			continue
		}
		return false
	}
	return true
}

// parseDirect tries the whole string as JSON.
func parseDirect(s string) (any, bool) {
	return tryParse(s)
}

// parseFenced strips leading/trailing markdown code-fence markers and retries.
func parseFenced(s string) (any, bool) {
	if !strings.Contains(s, "```") {
		return nil, false
	}
	cleaned := s
	if idx := strings.Index(cleaned, "```"); idx >= 0 {
		cleaned = cleaned[idx+3:]
		// Drop an optional language tag on the fence line.
		if nl := strings.IndexByte(cleaned, '\n'); nl >= 0 {
			firstLine := strings.TrimSpace(cleaned[:nl])
			if firstLine == "json" || firstLine == "" {
				cleaned = cleaned[nl+1:]
			}
		} else {
			cleaned = strings.TrimPrefix(cleaned, "json")
		}
	}
	if idx := strings.LastIndex(cleaned, "```"); idx >= 0 {
		cleaned = cleaned[:idx]
	}
	return tryParse(strings.TrimSpace(cleaned))
}

// parseBalanced scans for balanced {...} or [...] substrings, tracking
// nesting depth and string literals, and tries candidates longest first.
// Greedy regexes cannot handle nested braces, hence the manual scan.
func parseBalanced(s string) (any, bool) {
	candidates := balancedCandidates(s, '{', '}')
	candidates = append(candidates, balancedCandidates(s, '[', ']')...)

	// Longest first: a fenced object with a nested array should resolve to
	// the outer object, not the inner array.
	for i := 0; i < len(candidates); i++ {
		for j := i + 1; j < len(candidates); j++ {
			if len(candidates[j]) > len(candidates[i]) {
				candidates[i], candidates[j] = candidates[j], candidates[i]
			}
		}
	}
	for _, c := range candidates {
		if v, ok := tryParse(c); ok {
			return v, true
		}
	}
	return nil, false
}

// balancedCandidates returns every top-level balanced substring delimited
// by open/close, skipping delimiters inside JSON string literals.
func balancedCandidates(s string, open, close byte) []string {
	var out []string
	depth := 0
	start := -1
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			if depth > 0 {
				inString = true
			}
		case open:
			if depth == 0 {
				start = i
			}
			depth++
		case close:
			if depth > 0 {
				depth--
				if depth == 0 && start >= 0 {
					out = append(out, s[start:i+1])
					start = -1
				}
			}
		}
	}
	return out
}

// parseLines tries each line starting with { or [ as standalone JSON.
func parseLines(s string) (any, bool) {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if line[0] != '{' && line[0] != '[' {
			continue
		}
		if v, ok := tryParse(line); ok {
			return v, true
		}
	}
	return nil, false
}

var (
	kvStringRe = regexp.MustCompile(`"([A-Za-z_][A-Za-z0-9_]*)"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	kvArrayRe  = regexp.MustCompile(`"([A-Za-z_][A-Za-z0-9_]*)"\s*:\s*(\[[^\[\]]*\])`)
	kvNumberRe = regexp.MustCompile(`"([A-Za-z_][A-Za-z0-9_]*)"\s*:\s*(-?\d+(?:\.\d+)?)`)
)

// parseKeyValues assembles a best-effort object from "key": "value",
// "key": [...] and "key": number pairs found anywhere in the text. Last
// resort for truncated objects where no balanced substring parses.
func parseKeyValues(s string) (map[string]any, bool) {
	obj := make(map[string]any)

	for _, m := range kvStringRe.FindAllStringSubmatch(s, -1) {
		var str string
		if err := json.Unmarshal([]byte(`"`+m[2]+`"`), &str); err == nil {
			obj[m[1]] = str
		}
	}
	for _, m := range kvArrayRe.FindAllStringSubmatch(s, -1) {
		var arr []any
		if err := json.Unmarshal([]byte(m[2]), &arr); err == nil {
			obj[m[1]] = arr
		}
	}
	for _, m := range kvNumberRe.FindAllStringSubmatch(s, -1) {
		if _, exists := obj[m[1]]; exists {
			continue
		}
		var num float64
		if err := json.Unmarshal([]byte(m[2]), &num); err == nil {
			obj[m[1]] = num
		}
	}

	if len(obj) == 0 {
		return nil, false
	}
	return obj, true
}

func tryParse(s string) (any, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	if s[0] != '{' && s[0] != '[' && s[0] != '"' {
		// Bare scalars are never a useful stage result.
		return nil, false
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	return v, true
}

// Decode re-marshals an extracted value into a typed struct. The extractor
// only guarantees generic JSON; stages use Decode to obtain their tagged
// result types.
func Decode(v any, out any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}
