package kling

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

const (
	defaultBaseURL = "https://api.klingai.com"

	createPath         = "/v1/videos/image2video"
	queryPath          = "/v1/videos/image2video/%s"
	fallbackCreatePath = "/v1/videos/motion"
	fallbackQueryPath  = "/v1/videos/motion/%s"

	defaultRequestTimeout = 600 * time.Second
)

var (
	// ErrMissingCredentials indicates the access or secret key is empty.
	ErrMissingCredentials = errors.New("kling access key and secret key are required")
	// ErrNoTaskID indicates the create response carried no task id.
	ErrNoTaskID = errors.New("kling response missing task id")
	// ErrTaskNotFound indicates neither query endpoint knows the task.
	ErrTaskNotFound = errors.New("kling task not found")
)

// Client talks to the direct Kling video API.
type Client interface {
	// CreateTask submits a motion-control generation and returns the task id.
	CreateTask(ctx context.Context, req CreateTaskRequest) (string, error)
	// QueryTask fetches the current state of a task.
	QueryTask(ctx context.Context, taskID string) (QueryResult, error)
	// RefreshToken forces a new API token to be minted on the next request.
	RefreshToken()
}

// HTTPClient implements Client over net/http.
type HTTPClient struct {
	accessKey string
	secretKey string
	baseURL   string

	httpClient *http.Client
	now        func() time.Time

	mu           sync.Mutex
	token        string
	usedFallback bool
}

var _ Client = (*HTTPClient)(nil)

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithCredentials sets the access and secret keys explicitly.
func WithCredentials(accessKey, secretKey string) Option {
	return func(c *HTTPClient) {
		c.accessKey = accessKey
		c.secretKey = secretKey
	}
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *HTTPClient) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *HTTPClient) {
		c.httpClient = client
	}
}

// WithClock overrides the time source used for token claims.
func WithClock(now func() time.Time) Option {
	return func(c *HTTPClient) {
		c.now = now
	}
}

// NewClient creates an HTTPClient. Credentials default to the
// KLING_ACCESS_KEY and KLING_SECRET_KEY environment variables.
func NewClient(opts ...Option) (*HTTPClient, error) {
	c := &HTTPClient{
		accessKey: os.Getenv("KLING_ACCESS_KEY"),
		secretKey: os.Getenv("KLING_SECRET_KEY"),
		baseURL:   defaultBaseURL,
		httpClient: &http.Client{
			Timeout: defaultRequestTimeout,
		},
		now: time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.accessKey == "" || c.secretKey == "" {
		return nil, ErrMissingCredentials
	}

	return c, nil
}

// CreateTask submits to the image2video endpoint and retries the alternate
// motion endpoint when Kling rejects the primary one for this account tier.
func (c *HTTPClient) CreateTask(ctx context.Context, req CreateTaskRequest) (string, error) {
	mode := req.Mode
	if mode == "" {
		mode = "std"
	}

	primary := createTaskBody{
		ModelName:   ModelName,
		Image:       req.ImageB64,
		Prompt:      req.Prompt,
		Mode:        mode,
		Duration:    "5",
		CfgScale:    0.5,
		MotionVideo: req.VideoB64,
	}

	payload, status, err := c.postJSON(ctx, createPath, primary)
	if err == nil && status == http.StatusOK {
		return taskIDFrom(payload)
	}
	if err != nil {
		return "", err
	}

	if status != http.StatusBadRequest && status != http.StatusNotFound {
		return "", fmt.Errorf("kling create task failed with status %d: %s", status, errorMessageFrom(payload))
	}

	fallback := fallbackTaskBody{
		ModelName:            ModelName,
		Image:                req.ImageB64,
		ReferenceVideo:       req.VideoB64,
		Prompt:               req.Prompt,
		Mode:                 mode,
		CharacterOrientation: "video",
		KeepAudio:            true,
	}

	payload, status, err = c.postJSON(ctx, fallbackCreatePath, fallback)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("kling create task failed with status %d: %s", status, errorMessageFrom(payload))
	}

	c.mu.Lock()
	c.usedFallback = true
	c.mu.Unlock()

	return taskIDFrom(payload)
}

// QueryTask looks up a task on the endpoint its create call used, then on
// the other endpoint if the first one does not know the id.
func (c *HTTPClient) QueryTask(ctx context.Context, taskID string) (QueryResult, error) {
	c.mu.Lock()
	fallbackFirst := c.usedFallback
	c.mu.Unlock()

	paths := []string{fmt.Sprintf(queryPath, taskID), fmt.Sprintf(fallbackQueryPath, taskID)}
	if fallbackFirst {
		paths[0], paths[1] = paths[1], paths[0]
	}

	var lastStatus int
	for _, path := range paths {
		payload, status, err := c.getJSON(ctx, path)
		if err != nil {
			return QueryResult{}, err
		}
		if status == http.StatusOK {
			return QueryResult{
				Status:  ExtractStatus(payload),
				Payload: payload,
			}, nil
		}
		lastStatus = status
		if status != http.StatusNotFound {
			break
		}
	}

	if lastStatus == http.StatusNotFound {
		return QueryResult{}, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	return QueryResult{}, fmt.Errorf("kling query task failed with status %d", lastStatus)
}

// RefreshToken drops the cached token so the next request mints a new one.
// Callers invoke it on long polls so a task never outlives its token.
func (c *HTTPClient) RefreshToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

func (c *HTTPClient) authToken() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" {
		return c.token, nil
	}

	token, err := signToken(c.accessKey, c.secretKey, c.now())
	if err != nil {
		return "", err
	}

	c.token = token
	return token, nil
}

func (c *HTTPClient) postJSON(ctx context.Context, path string, body any) (map[string]any, int, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("encoding kling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, 0, fmt.Errorf("creating kling request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *HTTPClient) getJSON(ctx context.Context, path string) (map[string]any, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating kling request: %w", err)
	}

	return c.do(req)
}

func (c *HTTPClient) do(req *http.Request) (map[string]any, int, error) {
	token, err := c.authToken()
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("executing kling request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("reading kling response: %w", err)
	}

	payload := map[string]any{}
	if len(raw) > 0 {
		// Kling error bodies are not always JSON. A decode failure on a
		// non-200 still lets the caller report the status code.
		_ = json.Unmarshal(raw, &payload)
	}

	return payload, resp.StatusCode, nil
}

func errorMessageFrom(payload map[string]any) string {
	if msg, ok := payload["message"].(string); ok && msg != "" {
		return msg
	}
	if errObj, ok := payload["error"].(map[string]any); ok {
		if msg, ok := errObj["message"].(string); ok && msg != "" {
			return msg
		}
	}
	return "unexpected response"
}

func taskIDFrom(payload map[string]any) (string, error) {
	if data, ok := payload["data"].(map[string]any); ok {
		if id, ok := data["task_id"].(string); ok && id != "" {
			return id, nil
		}
	}
	if id, ok := payload["task_id"].(string); ok && id != "" {
		return id, nil
	}
	return "", ErrNoTaskID
}
