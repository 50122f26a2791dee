// Package validate sanitizes the untrusted structured output of the
// text-generation endpoint. Parse failures and out-of-range values are never
// surfaced; every field degrades to a default or is flagged absent so the
// deterministic fallback can take over.
package validate

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// DefaultSummary replaces a missing or empty model summary.
const DefaultSummary = "LLM returned no summary."

// DefaultSuggestions replaces a missing or empty suggestions array.
var DefaultSuggestions = []string{
	"Add stories that directly address the most frequent ticket intents.",
	"Clarify acceptance criteria on existing stories so coverage is verifiable.",
	"Split broad stories into smaller ones tied to a single intent.",
}

// Analysis is a fully-populated analyze result with per-field flags marking
// which values actually came from the model. Absent numerics keep their zero
// value and are replaced by the fallback scorer downstream.
type Analysis struct {
	Score               float64
	ScoreFromModel      bool
	LikelihoodPercent   int
	LikelihoodFromModel bool
	Summary             string
	Suggestions         []string
}

// ParseObject parses raw model content as a JSON object. A parse failure
// yields an empty object: malformed model output is expected and must
// degrade, not abort the request.
func ParseObject(raw string) map[string]interface{} {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &obj); err != nil || obj == nil {
		return map[string]interface{}{}
	}
	return obj
}

// CheckJSON returns the parse error for raw model content, if any. Callers
// use it for logging only; the sanitizers degrade regardless.
func CheckJSON(raw string) error {
	var obj map[string]interface{}
	return json.Unmarshal([]byte(raw), &obj)
}

// SanitizeAnalysis clamps and defaults every analyze field independently.
func SanitizeAnalysis(raw string) Analysis {
	obj := ParseObject(raw)
	out := Analysis{
		Summary:     DefaultSummary,
		Suggestions: DefaultSuggestions,
	}

	if v, ok := asNumber(obj["score"]); ok {
		out.Score = clampFloat(v, 0, 1)
		out.ScoreFromModel = true
	}

	if v, ok := asNumber(obj["likelihoodPercent"]); ok {
		out.LikelihoodPercent = clampInt(int(math.Round(v)), 0, 100)
		out.LikelihoodFromModel = true
	}

	if s, ok := obj["summary"].(string); ok && strings.TrimSpace(s) != "" {
		out.Summary = s
	}

	if arr, ok := obj["suggestions"].([]interface{}); ok && len(arr) > 0 {
		out.Suggestions = stringItems(arr)
	}

	return out
}

func asNumber(v interface{}) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}

func stringItems(arr []interface{}) []string {
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok {
			out = append(out, s)
			continue
		}
		b, err := json.Marshal(item)
		if err != nil {
			continue
		}
		out = append(out, string(b))
	}
	return out
}

// parsePoints parses storyPoints as an integer, accepting JSON numbers and
// numeric strings. Returns the default on parse failure.
func parsePoints(v interface{}, def int) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case string:
		s := strings.TrimSpace(n)
		if i, err := strconv.Atoi(s); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(f)
		}
	}
	return def
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
