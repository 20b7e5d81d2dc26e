package fal

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/swapstudio/swapstudio-api/internal/media"
)

// Static errors for fal client operations.
var (
	// ErrAPIKeyNotSet is returned when no API key is provided or found in the environment.
	ErrAPIKeyNotSet = errors.New("fal: FAL_API_KEY is not set")
	// ErrNoRequestID is returned when the submit response contains no request ID.
	ErrNoRequestID = errors.New("fal: submit failed: no request_id returned")
	// ErrUploadFailed is returned when the storage upload fails.
	ErrUploadFailed = errors.New("fal: upload failed")
	// ErrSubmitFailed is returned when the queue submit fails.
	ErrSubmitFailed = errors.New("fal: submit failed")
	// ErrRequestFailed is returned when a request fails with a non-success status code.
	ErrRequestFailed = errors.New("fal: request failed")
)

// Client defines the interface for interacting with the fal.ai queue API.
type Client interface {
	// Upload transfers a base64 (or data-URI) payload to fal storage and
	// returns the provider-addressable URL.
	Upload(ctx context.Context, fileData, contentType, filename string) (string, error)

	// SubmitEdit queues a video-to-video edit request.
	SubmitEdit(ctx context.Context, req EditRequest) (Submission, error)

	// SubmitLipSync queues a lip-sync request.
	SubmitLipSync(ctx context.Context, req LipSyncRequest) (Submission, error)

	// Status polls the status endpoint handed back at submit time.
	Status(ctx context.Context, statusURL string) (StatusResult, error)

	// Result fetches the result payload from the result endpoint.
	Result(ctx context.Context, resultURL string) (map[string]any, error)
}

// HTTPClient is the HTTP implementation of the fal Client interface.
type HTTPClient struct {
	apiKey     string
	queueURL   string
	restURL    string
	httpClient *http.Client
}

// ClientOption is a function that configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithAPIKey sets the API key for authentication.
func WithAPIKey(key string) ClientOption {
	return func(hc *HTTPClient) {
		hc.apiKey = key
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(hc *HTTPClient) {
		hc.httpClient = c
	}
}

// WithQueueURL sets a custom base URL for the queue API.
func WithQueueURL(url string) ClientOption {
	return func(hc *HTTPClient) {
		hc.queueURL = url
	}
}

// WithRestURL sets a custom base URL for the storage REST API.
func WithRestURL(url string) ClientOption {
	return func(hc *HTTPClient) {
		hc.restURL = url
	}
}

// NewClient creates a new fal HTTP client.
// The API key can be set via the WithAPIKey option. If not provided,
// it is read from the environment variable FAL_API_KEY.
func NewClient(opts ...ClientOption) (*HTTPClient, error) {
	c := &HTTPClient{
		queueURL:   "https://queue.fal.run",
		restURL:    "https://rest.alpha.fal.ai",
		httpClient: &http.Client{Timeout: 600 * time.Second},
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.apiKey == "" {
		c.apiKey = os.Getenv("FAL_API_KEY")
	}

	if c.apiKey == "" {
		return nil, ErrAPIKeyNotSet
	}

	return c, nil
}

// Upload transfers a binary payload to fal storage via the two-step
// initiate -> signed PUT flow and returns the file URL.
func (c *HTTPClient) Upload(ctx context.Context, fileData, contentType, filename string) (string, error) {
	fileBytes, err := base64.StdEncoding.DecodeString(media.StripDataURI(fileData))
	if err != nil {
		return "", fmt.Errorf("fal: decode upload payload: %w", err)
	}

	initBody, err := json.Marshal(initiateUploadRequest{
		ContentType: contentType,
		FileName:    filename,
	})
	if err != nil {
		return "", fmt.Errorf("fal: marshal initiate request: %w", err)
	}

	initURL := c.restURL + "/storage/upload/initiate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, initURL, bytes.NewReader(initBody))
	if err != nil {
		return "", fmt.Errorf("fal: create initiate request: %w", err)
	}
	req.Header.Set("Authorization", "Key "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fal: initiate upload: %w", err)
	}
	respBody, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return "", fmt.Errorf("fal: read initiate response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: initiate returned %d: %s", ErrUploadFailed, resp.StatusCode, string(respBody))
	}

	var initResp initiateUploadResponse
	if err := json.Unmarshal(respBody, &initResp); err != nil {
		return "", fmt.Errorf("fal: unmarshal initiate response: %w", err)
	}

	putReq, err := http.NewRequestWithContext(ctx, http.MethodPut, initResp.UploadURL, bytes.NewReader(fileBytes))
	if err != nil {
		return "", fmt.Errorf("fal: create upload request: %w", err)
	}
	putReq.Header.Set("Content-Type", contentType)

	putResp, err := c.httpClient.Do(putReq)
	if err != nil {
		return "", fmt.Errorf("fal: upload bytes: %w", err)
	}
	_, _ = io.Copy(io.Discard, putResp.Body)
	_ = putResp.Body.Close()

	if putResp.StatusCode < 200 || putResp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: PUT returned %d", ErrUploadFailed, putResp.StatusCode)
	}

	return initResp.FileURL, nil
}

// SubmitEdit queues a video-to-video edit request.
func (c *HTTPClient) SubmitEdit(ctx context.Context, req EditRequest) (Submission, error) {
	return c.submit(ctx, EditModelID, req)
}

// SubmitLipSync queues a lip-sync request.
func (c *HTTPClient) SubmitLipSync(ctx context.Context, req LipSyncRequest) (Submission, error) {
	return c.submit(ctx, LipSyncModelID, req)
}

func (c *HTTPClient) submit(ctx context.Context, modelID string, body any) (Submission, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return Submission{}, fmt.Errorf("fal: marshal submit request: %w", err)
	}

	url := fmt.Sprintf("%s/%s", c.queueURL, modelID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return Submission{}, fmt.Errorf("fal: create submit request: %w", err)
	}
	req.Header.Set("Authorization", "Key "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Submission{}, fmt.Errorf("fal: submit request: %w", err)
	}
	respBody, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return Submission{}, fmt.Errorf("fal: read submit response: %w", err)
	}

	if resp.StatusCode != http.StatusOK &&
		resp.StatusCode != http.StatusCreated &&
		resp.StatusCode != http.StatusAccepted {
		return Submission{}, fmt.Errorf("%w: %d: %s", ErrSubmitFailed, resp.StatusCode, string(respBody))
	}

	var submitResp queueSubmitResponse
	if err := json.Unmarshal(respBody, &submitResp); err != nil {
		return Submission{}, fmt.Errorf("fal: unmarshal submit response: %w", err)
	}

	if submitResp.RequestID == "" {
		return Submission{}, fmt.Errorf("%w: %s", ErrNoRequestID, string(respBody))
	}

	sub := Submission{
		RequestID: submitResp.RequestID,
		StatusURL: submitResp.StatusURL,
		ResultURL: submitResp.ResponseURL,
	}
	if sub.StatusURL == "" {
		sub.StatusURL = fmt.Sprintf("%s/%s/requests/%s/status", c.queueURL, modelID, submitResp.RequestID)
	}
	if sub.ResultURL == "" {
		sub.ResultURL = fmt.Sprintf("%s/%s/requests/%s", c.queueURL, modelID, submitResp.RequestID)
	}

	return sub, nil
}

// Status polls the status endpoint. The queue answers 200 or 202 for a live
// request; anything else is an error the caller may skip.
func (c *HTTPClient) Status(ctx context.Context, statusURL string) (StatusResult, error) {
	payload, err := c.getJSON(ctx, statusURL, http.StatusOK, http.StatusAccepted)
	if err != nil {
		return StatusResult{}, err
	}

	status, _ := payload["status"].(string)
	return StatusResult{Status: status, Payload: payload}, nil
}

// Result fetches the completed request's result payload.
func (c *HTTPClient) Result(ctx context.Context, resultURL string) (map[string]any, error) {
	return c.getJSON(ctx, resultURL, http.StatusOK)
}

func (c *HTTPClient) getJSON(ctx context.Context, url string, okCodes ...int) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fal: create request: %w", err)
	}
	req.Header.Set("Authorization", "Key "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fal: request: %w", err)
	}
	respBody, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("fal: read response: %w", err)
	}

	ok := false
	for _, code := range okCodes {
		if resp.StatusCode == code {
			ok = true
			break
		}
	}
	if !ok {
		return nil, fmt.Errorf("%w with status %d: %s", ErrRequestFailed, resp.StatusCode, string(respBody))
	}

	var payload map[string]any
	if err := json.Unmarshal(respBody, &payload); err != nil {
		return nil, fmt.Errorf("fal: unmarshal response: %w", err)
	}

	return payload, nil
}

// Compile-time check that HTTPClient implements Client.
var _ Client = (*HTTPClient)(nil)
