package extract

import (
	"encoding/json"
	"fmt"
	"strings"
)

// basic safety limits to avoid pathological model outputs
const (
	maxContentLen = 64 * 1024 // 64KB
	maxErrSnippet = 200       // limit error snippet size
)

// decodeJSON parses a model answer into dst. It tolerates the usual model
// quirks: markdown code fences, leading prose before the first brace, and
// trailing text after the last one.
func decodeJSON(content string, dst any) error {
	if len(content) > maxContentLen {
		content = content[:maxContentLen]
	}
	content = stripFences(content)

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return fmt.Errorf("no json object in model output: %q", safeSnippet(content))
	}
	content = content[start : end+1]

	if err := json.Unmarshal([]byte(content), dst); err != nil {
		return fmt.Errorf("decode model output: %w (%q)", err, safeSnippet(content))
	}
	return nil
}

// stripFences removes a surrounding markdown code fence, with or without a
// language tag.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		first := strings.TrimSpace(s[:idx])
		if first == "json" || first == "" {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// clampConfidence forces a confidence into [0, 1]; NaN-free because it comes
// out of encoding/json.
func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func safeSnippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxErrSnippet {
		return s
	}
	return s[:maxErrSnippet]
}
