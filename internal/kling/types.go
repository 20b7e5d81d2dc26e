// Package kling provides an HTTP client for the direct Kling video API.
// Kling signs requests with a short-lived HS256 JWT and nests task state
// under a data envelope.
package kling

// ModelName is the Kling model used for motion-control generation.
const ModelName = "kling-v2-6"

// Terminal task statuses reported by Kling.
const (
	StatusSucceed   = "succeed"
	StatusCompleted = "completed"
	StatusComplete  = "complete"
	StatusFailed    = "failed"
	StatusError     = "error"
)

// CreateTaskRequest carries the inputs for a motion-control task.
// Media are raw base64 payloads; Kling takes them inline rather than by URL.
type CreateTaskRequest struct {
	ImageB64 string
	VideoB64 string
	Prompt   string
	Mode     string // "std" or "pro"
}

// QueryResult is one observation of a Kling task.
type QueryResult struct {
	Status  string
	Payload map[string]any
}

// createTaskBody is the primary request body for the image2video endpoint.
type createTaskBody struct {
	ModelName   string  `json:"model_name"`
	Image       string  `json:"image"`
	Prompt      string  `json:"prompt"`
	Mode        string  `json:"mode"`
	Duration    string  `json:"duration"`
	CfgScale    float64 `json:"cfg_scale"`
	MotionVideo string  `json:"motion_video"`
}

// fallbackTaskBody is the request body for the alternate motion endpoint.
type fallbackTaskBody struct {
	ModelName            string `json:"model_name"`
	Image                string `json:"image"`
	ReferenceVideo       string `json:"reference_video"`
	Prompt               string `json:"prompt"`
	Mode                 string `json:"mode"`
	CharacterOrientation string `json:"character_orientation"`
	KeepAudio            bool   `json:"keep_audio"`
}
