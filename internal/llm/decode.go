package llm

import (
	"encoding/json"
	"strings"

	"github.com/tripdocs/extractor/internal/common"
)

// DecodeResponse recovers the JSON object embedded in raw model output. The
// raw text may wrap the object in markdown fencing or prose; fences are
// stripped, a direct parse is attempted, and only then the balanced-object
// scan runs.
func DecodeResponse(raw string) (map[string]any, error) {
	s := strings.TrimSpace(stripFences(raw))

	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err == nil {
		return m, nil
	}

	obj, ok := firstJSONObject(s)
	if !ok {
		return nil, common.NewDecodeError("no JSON object in model response", nil)
	}
	if err := json.Unmarshal([]byte(obj), &m); err != nil {
		return nil, common.NewDecodeError("model response JSON did not parse", err)
	}
	return m, nil
}

func stripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```JSON", "")
	return strings.ReplaceAll(s, "```", "")
}

// firstJSONObject returns the first balanced top-level object in s. Braces
// inside string literals never change nesting depth, and escaped quotes do
// not terminate a string.
func firstJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
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
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
