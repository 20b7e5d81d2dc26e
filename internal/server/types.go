// Package server provides the HTTP server for the Swap Studio API.
// It includes handlers, middleware, routes, and DTOs separated from domain types.
package server

// SwapRequest is the HTTP request body for starting a swap job.
type SwapRequest struct {
	// ImageData is the base64 or data-URI encoded character image.
	ImageData string `json:"image_data" validate:"required"`
	// VideoData is the base64 or data-URI encoded motion source video.
	VideoData string `json:"video_data" validate:"required"`
	// Prompt optionally steers the generation.
	Prompt string `json:"prompt"`
	// Quality selects the provider tier.
	Quality string `json:"quality" validate:"omitempty,oneof=std pro"`
	// SwapMode selects the generation route. Defaults to character_swap.
	SwapMode string `json:"swap_mode" validate:"omitempty,oneof=character_swap motion_control"`
}

// LipSyncRequest is the HTTP request body for starting a lip-sync job.
type LipSyncRequest struct {
	// VideoData is the base64 or data-URI encoded source video.
	VideoData string `json:"video_data" validate:"required"`
	// AudioData is the base64 or data-URI encoded speech audio.
	AudioData string `json:"audio_data" validate:"required"`
}

// JobStatusResponse is the HTTP representation of a job.
type JobStatusResponse struct {
	// JobID is the unique identifier for the job.
	JobID string `json:"job_id"`
	// Status is the current job status.
	Status string `json:"status"`
	// Progress is the percentage of completion (0-100).
	Progress int `json:"progress"`
	// OutputURL is the generated video URL once the job succeeds.
	OutputURL string `json:"output_url,omitempty"`
	// Error contains the failure message if the job failed.
	Error string `json:"error,omitempty"`
}

// RootResponse is the HTTP response for the root endpoint.
type RootResponse struct {
	Message  string `json:"message"`
	Version  string `json:"version"`
	Provider string `json:"provider"`
}

// HealthResponse is the HTTP response for the health check endpoint.
type HealthResponse struct {
	// Status is the health status of the service.
	Status string `json:"status"`
	// Provider is the preferred configured provider.
	Provider string `json:"provider"`
	// Per-provider configuration flags.
	FalConfigured       bool `json:"fal_configured"`
	KlingConfigured     bool `json:"kling_configured"`
	ReplicateConfigured bool `json:"replicate_configured"`
}

// MessageResponse is a bare confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the human-readable error message.
	Error string `json:"error"`
	// Code is the error code for programmatic handling.
	Code string `json:"code"`
}
