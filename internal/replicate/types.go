// Package replicate provides an HTTP client for the Replicate predictions
// API, used as the fallback route for motion-control generation.
package replicate

// MotionControlVersion is the hosted model run for motion transfer.
const MotionControlVersion = "kwaivgi/kling-v2.6-motion-control"

// Prediction statuses reported by Replicate.
const (
	StatusStarting   = "starting"
	StatusProcessing = "processing"
	StatusSucceeded  = "succeeded"
	StatusFailed     = "failed"
	StatusCanceled   = "canceled"
)

// PredictionInput carries the model inputs for a motion-control run.
// Image and Video are URLs, either uploaded file URLs or data URIs.
type PredictionInput struct {
	Image                string `json:"image"`
	Video                string `json:"video"`
	Prompt               string `json:"prompt,omitempty"`
	Mode                 string `json:"mode,omitempty"`
	CharacterOrientation string `json:"character_orientation"`
	KeepOriginalSound    bool   `json:"keep_original_sound"`
}

// Prediction is one observation of a running or finished prediction.
type Prediction struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Output any    `json:"output"`
	Error  any    `json:"error"`
}

type createPredictionRequest struct {
	Version string          `json:"version"`
	Input   PredictionInput `json:"input"`
}

type createFileResponse struct {
	UploadURL string `json:"upload_url"`
	URLs      struct {
		Get string `json:"get"`
	} `json:"urls"`
}
