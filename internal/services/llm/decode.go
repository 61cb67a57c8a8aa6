package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeJSON parses a model JSON payload into target, tolerating markdown
// code fences and leading prose some providers wrap around the object.
func DecodeJSON(content string, target any) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return fmt.Errorf("decode llm json: empty payload")
	}

	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		trimmed = strings.TrimSpace(trimmed)
	}

	if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
		start := strings.IndexAny(trimmed, "{[")
		if start < 0 {
			return fmt.Errorf("decode llm json: no object found in payload")
		}
		trimmed = trimmed[start:]
	}

	if err := json.Unmarshal([]byte(trimmed), target); err != nil {
		return fmt.Errorf("decode llm json: %w", err)
	}
	return nil
}
