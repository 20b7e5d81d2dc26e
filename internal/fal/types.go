// Package fal provides an HTTP client for the fal.ai queue API used for
// character-swap edits and lip-sync generation.
package fal

// Model identifiers for the fal.ai queue.
const (
	// EditModelID is the Kling O1 video-to-video edit model.
	EditModelID = "fal-ai/kling-video/o1/video-to-video/edit"
	// LipSyncModelID is the Kling audio-to-video lip-sync model.
	LipSyncModelID = "fal-ai/kling-video/lipsync/audio-to-video"
)

// Status values returned by the fal.ai queue.
const (
	StatusInQueue    = "IN_QUEUE"
	StatusQueued     = "QUEUED"
	StatusInProgress = "IN_PROGRESS"
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
	StatusError      = "ERROR"
)

// Element describes a character reference for the edit model.
type Element struct {
	FrontalImageURL    string   `json:"frontal_image_url"`
	ReferenceImageURLs []string `json:"reference_image_urls"`
}

// EditRequest is the submit body for the video-to-video edit model.
type EditRequest struct {
	VideoURL  string    `json:"video_url"`
	Prompt    string    `json:"prompt"`
	Elements  []Element `json:"elements"`
	KeepAudio bool      `json:"keep_audio"`
}

// LipSyncRequest is the submit body for the lip-sync model.
type LipSyncRequest struct {
	VideoURL string `json:"video_url"`
	AudioURL string `json:"audio_url"`
}

// Submission is the result of queueing a request.
// StatusURL and ResultURL are the poll/result endpoints the queue hands back.
type Submission struct {
	RequestID string
	StatusURL string
	ResultURL string
}

// StatusResult is one observation of a queued request.
// Payload keeps the raw body because completed requests sometimes carry the
// output inline instead of behind the result endpoint.
type StatusResult struct {
	Status  string
	Payload map[string]any
}

// initiateUploadRequest is the body for the storage upload initiation call.
type initiateUploadRequest struct {
	ContentType string `json:"content_type"`
	FileName    string `json:"file_name"`
}

// initiateUploadResponse is the response from the upload initiation call.
type initiateUploadResponse struct {
	UploadURL string `json:"upload_url"`
	FileURL   string `json:"file_url"`
}

// queueSubmitResponse is the response from a queue submit call.
type queueSubmitResponse struct {
	RequestID   string `json:"request_id"`
	StatusURL   string `json:"status_url"`
	ResponseURL string `json:"response_url"`
}
