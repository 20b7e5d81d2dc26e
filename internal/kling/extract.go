package kling

import "strings"

// ExtractStatus pulls the task status out of a query payload, checking the
// data envelope first and bare fields after it.
func ExtractStatus(payload map[string]any) string {
	if data, ok := payload["data"].(map[string]any); ok {
		if s, ok := data["task_status"].(string); ok && s != "" {
			return strings.ToLower(s)
		}
	}
	if s, ok := payload["task_status"].(string); ok && s != "" {
		return strings.ToLower(s)
	}
	if s, ok := payload["status"].(string); ok && s != "" {
		return strings.ToLower(s)
	}
	return ""
}

// IsSucceeded reports whether a status string marks a finished task.
func IsSucceeded(status string) bool {
	switch status {
	case StatusSucceed, StatusCompleted, StatusComplete:
		return true
	}
	return false
}

// IsFailed reports whether a status string marks a failed task.
func IsFailed(status string) bool {
	return status == StatusFailed || status == StatusError
}

// outputExtractors are tried in order against a query payload. The first
// non-empty URL wins.
var outputExtractors = []func(map[string]any) string{
	func(p map[string]any) string {
		data, ok := p["data"].(map[string]any)
		if !ok {
			return ""
		}
		result, ok := data["task_result"].(map[string]any)
		if !ok {
			return ""
		}
		videos, ok := result["videos"].([]any)
		if !ok || len(videos) == 0 {
			return ""
		}
		video, ok := videos[0].(map[string]any)
		if !ok {
			return ""
		}
		url, _ := video["url"].(string)
		return url
	},
	func(p map[string]any) string {
		data, ok := p["data"].(map[string]any)
		if !ok {
			return ""
		}
		url, _ := data["video_url"].(string)
		return url
	},
	func(p map[string]any) string {
		output, ok := p["output"].(map[string]any)
		if !ok {
			return ""
		}
		url, _ := output["video_url"].(string)
		return url
	},
	func(p map[string]any) string {
		url, _ := p["video_url"].(string)
		return url
	},
}

// ExtractOutput returns the task's result video URL, or empty when the
// payload carries none.
func ExtractOutput(payload map[string]any) string {
	for _, extract := range outputExtractors {
		if url := extract(payload); url != "" {
			return url
		}
	}
	return ""
}

// ExtractError returns the most specific failure message in the payload.
func ExtractError(payload map[string]any) string {
	if data, ok := payload["data"].(map[string]any); ok {
		if msg, ok := data["task_status_msg"].(string); ok && msg != "" {
			return msg
		}
	}
	if errObj, ok := payload["error"].(map[string]any); ok {
		if msg, ok := errObj["message"].(string); ok && msg != "" {
			return msg
		}
	}
	return "task failed"
}
