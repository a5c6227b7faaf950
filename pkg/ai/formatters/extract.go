package formatters

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Completer turns one prompt into the model's raw text answer.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ExtractJSONObject parses the model output as a JSON object. Output wrapped
// in prose or code fences is recovered from the first '{' to the last '}'.
func ExtractJSONObject(s string) (map[string]interface{}, error) {
	var out map[string]interface{}
	err := json.Unmarshal([]byte(strings.TrimSpace(s)), &out)
	if err == nil && out != nil {
		return out, nil
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		if err2 := json.Unmarshal([]byte(s[start:end+1]), &out); err2 == nil && out != nil {
			return out, nil
		}
	}
	if err == nil {
		err = fmt.Errorf("not a json object")
	}
	return nil, fmt.Errorf("ai returned non-json content: %w", err)
}

// StripFences removes a surrounding ``` block, with or without a language tag.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[i+1:]
	} else {
		s = ""
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func languageOr(lang, fallback string) string {
	if lang = strings.TrimSpace(lang); lang != "" {
		return lang
	}
	if fallback != "" {
		return fallback
	}
	return "english"
}

func mustMarshal(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
