package fal

import "fmt"

// outputExtractors is the ordered list of strategies for locating the output
// video URL in a result or status payload. The queue is not consistent about
// where the reference lands: it may be a typed video object, a bare string,
// or a top-level video_url.
var outputExtractors = []func(map[string]any) (string, bool){
	// video.url
	func(p map[string]any) (string, bool) {
		if obj, ok := p["video"].(map[string]any); ok {
			if url, ok := obj["url"].(string); ok && url != "" {
				return url, true
			}
		}
		return "", false
	},
	// video as a bare string
	func(p map[string]any) (string, bool) {
		if url, ok := p["video"].(string); ok && url != "" {
			return url, true
		}
		return "", false
	},
	// video_url
	func(p map[string]any) (string, bool) {
		if url, ok := p["video_url"].(string); ok && url != "" {
			return url, true
		}
		return "", false
	},
}

// ExtractOutput locates the output video URL in a payload, trying each known
// shape in order.
func ExtractOutput(payload map[string]any) (string, bool) {
	for _, extract := range outputExtractors {
		if url, ok := extract(payload); ok {
			return url, true
		}
	}
	return "", false
}

// ExtractError pulls a best-effort human-readable message from a failure
// payload.
func ExtractError(payload map[string]any) string {
	switch v := payload["error"].(type) {
	case string:
		if v != "" {
			return v
		}
	case map[string]any:
		if msg, ok := v["message"].(string); ok && msg != "" {
			return msg
		}
		return fmt.Sprintf("%v", v)
	}
	return "unknown error"
}
