package models

import "encoding/json"

// ToolResult is the normalized payload every tool returns. It always
// carries a human-readable "message" entry; failed invocations set
// "error" and over-volume queries set "warning". Values must stay
// primitive (string, number, bool, lists/maps of these) so the payload
// serializes cleanly into the transcript.
type ToolResult map[string]any

func ErrorResult(message string) ToolResult {
	return ToolResult{
		"error":   true,
		"message": message,
	}
}

// WarningResult is the guardrail payload: the record count and the
// filters that produced it, never the records themselves.
func WarningResult(count int, currentFilters map[string]any, message string) ToolResult {
	return ToolResult{
		"warning":          true,
		"cantidad":         count,
		"filtros_actuales": currentFilters,
		"message":          message,
	}
}

func (tr ToolResult) IsError() bool {
	v, _ := tr["error"].(bool)
	return v
}

func (tr ToolResult) IsWarning() bool {
	v, _ := tr["warning"].(bool)
	return v
}

// JSON serializes the result for transcript storage. Marshaling can only
// fail on non-primitive values, which the ToolResult contract forbids; if
// it does anyway, the message entry alone is preserved.
func (tr ToolResult) JSON() string {
	data, err := json.Marshal(tr)
	if err != nil {
		fallback, _ := json.Marshal(map[string]any{"message": tr["message"]})
		return string(fallback)
	}
	return string(data)
}
