package replicate

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	defaultBaseURL        = "https://api.replicate.com"
	defaultRequestTimeout = 600 * time.Second
)

var (
	// ErrMissingToken indicates the API token is empty.
	ErrMissingToken = errors.New("replicate api token is required")
	// ErrNoPredictionID indicates the create response carried no id.
	ErrNoPredictionID = errors.New("replicate response missing prediction id")
)

// Client talks to the Replicate predictions API.
type Client interface {
	// UploadMedia pushes raw bytes to Replicate's file store and returns a
	// fetchable URL. When the upload fails it falls back to a data URI so a
	// generation can still run.
	UploadMedia(ctx context.Context, data []byte, filename, contentType string) string
	// CreatePrediction starts a motion-control run and returns its id.
	CreatePrediction(ctx context.Context, input PredictionInput) (string, error)
	// GetPrediction fetches the current state of a prediction.
	GetPrediction(ctx context.Context, id string) (Prediction, error)
}

// HTTPClient implements Client over net/http.
type HTTPClient struct {
	apiToken   string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ Client = (*HTTPClient)(nil)

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithAPIToken sets the API token explicitly.
func WithAPIToken(token string) Option {
	return func(c *HTTPClient) {
		c.apiToken = token
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

// WithLogger overrides the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *HTTPClient) {
		c.logger = logger
	}
}

// NewClient creates an HTTPClient. The token defaults to the
// REPLICATE_API_TOKEN environment variable.
func NewClient(opts ...Option) (*HTTPClient, error) {
	c := &HTTPClient{
		apiToken: os.Getenv("REPLICATE_API_TOKEN"),
		baseURL:  defaultBaseURL,
		httpClient: &http.Client{
			Timeout: defaultRequestTimeout,
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.apiToken == "" {
		return nil, ErrMissingToken
	}

	return c, nil
}

// UploadMedia registers a file, PUTs the bytes to the signed upload URL and
// returns the fetch URL. Any failure degrades to an inline data URI.
func (c *HTTPClient) UploadMedia(ctx context.Context, data []byte, filename, contentType string) string {
	url, err := c.uploadFile(ctx, data, filename, contentType)
	if err != nil {
		c.logger.Warn("replicate upload failed, falling back to data uri",
			"filename", filename,
			"error", err,
		)
		return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data))
	}
	return url
}

func (c *HTTPClient) uploadFile(ctx context.Context, data []byte, filename, contentType string) (string, error) {
	body, err := json.Marshal(map[string]string{
		"filename":     filename,
		"content_type": contentType,
	})
	if err != nil {
		return "", fmt.Errorf("encoding file request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/files", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating file request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("registering file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("file registration failed with status %d: %s", resp.StatusCode, raw)
	}

	var created createFileResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("decoding file response: %w", err)
	}
	if created.UploadURL == "" || created.URLs.Get == "" {
		return "", errors.New("file response missing upload url")
	}

	putReq, err := http.NewRequestWithContext(ctx, http.MethodPut, created.UploadURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating upload request: %w", err)
	}
	putReq.Header.Set("Content-Type", contentType)

	putResp, err := c.httpClient.Do(putReq)
	if err != nil {
		return "", fmt.Errorf("uploading file bytes: %w", err)
	}
	defer putResp.Body.Close()

	if putResp.StatusCode < 200 || putResp.StatusCode >= 300 {
		return "", fmt.Errorf("file upload failed with status %d", putResp.StatusCode)
	}

	return created.URLs.Get, nil
}

// CreatePrediction submits a run against the motion-control model.
func (c *HTTPClient) CreatePrediction(ctx context.Context, input PredictionInput) (string, error) {
	body, err := json.Marshal(createPredictionRequest{
		Version: MotionControlVersion,
		Input:   input,
	})
	if err != nil {
		return "", fmt.Errorf("encoding prediction request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/predictions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating prediction request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("submitting prediction: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading prediction response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
	default:
		return "", fmt.Errorf("prediction submit failed with status %d: %s", resp.StatusCode, raw)
	}

	var prediction Prediction
	if err := json.Unmarshal(raw, &prediction); err != nil {
		return "", fmt.Errorf("decoding prediction response: %w", err)
	}
	if prediction.ID == "" {
		return "", ErrNoPredictionID
	}

	return prediction.ID, nil
}

// GetPrediction fetches one prediction by id.
func (c *HTTPClient) GetPrediction(ctx context.Context, id string) (Prediction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/predictions/"+id, nil)
	if err != nil {
		return Prediction{}, fmt.Errorf("creating prediction request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Prediction{}, fmt.Errorf("fetching prediction: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return Prediction{}, fmt.Errorf("prediction fetch failed with status %d: %s", resp.StatusCode, raw)
	}

	var prediction Prediction
	if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
		return Prediction{}, fmt.Errorf("decoding prediction response: %w", err)
	}

	return prediction, nil
}

// OutputURL resolves the prediction output to a single video URL. Replicate
// returns either a bare string or a list of strings depending on the model.
func OutputURL(output any) string {
	switch v := output.(type) {
	case string:
		return v
	case []any:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				return s
			}
		}
	}
	return ""
}

// ErrorMessage renders the prediction error field, which Replicate types
// loosely, as a string.
func ErrorMessage(errField any) string {
	switch v := errField.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
