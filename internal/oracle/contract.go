package oracle

import (
	"encoding/json"
	"strings"

	"github.com/lorehaven/loregraph/internal/fault"
)

const snippetLimit = 500

// Parse strips fenced-code markers from an oracle response and unmarshals
// the remainder into T. Parsing is all-or-nothing: any decode failure
// returns JSON_PARSE_ERROR carrying a truncated snippet of the offending
// text, never a partial value.
func Parse[T any](raw string) (T, error) {
	var zero T
	payload := StripFences(raw)
	if payload == "" {
		return zero, fault.New(fault.JSONParseError, "oracle returned an empty payload")
	}

	var result T
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return zero, fault.Wrap(fault.JSONParseError, err, "failed to parse oracle payload: %v (snippet: %s)", err, snippet(payload))
	}
	return result, nil
}

// StripFences removes a leading ```lang marker and a trailing ``` if the
// payload is fenced, returning the trimmed interior.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop the language tag on the opening fence line.
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimSpace(s)
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func snippet(s string) string {
	if len(s) <= snippetLimit {
		return s
	}
	return s[:snippetLimit] + "..."
}
