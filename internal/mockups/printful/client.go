package printful

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Client handles communication with the print vendor's mockup-generator API.
// It is a pure adapter: one POST per submission, no retries, no backoff.
// Retry policy, if any, belongs to the caller.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new vendor client. requestsPerMinute bounds outbound
// task submissions because the vendor throttles the mockup generator.
func NewClient(baseURL, apiKey string, requestsPerMinute int) *Client {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), requestsPerMinute),
	}
}

// Configured reports whether the client has credentials to call the vendor.
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.apiKey != ""
}

// VendorError carries the vendor's machine-readable status code and body
// verbatim so callers can classify the failure.
type VendorError struct {
	Status int
	Body   string
}

func (e *VendorError) Error() string {
	return fmt.Sprintf("vendor returned status %d: %s", e.Status, e.Body)
}

// FilePosition places the artwork inside the variant's print area.
type FilePosition struct {
	AreaWidth  int `json:"area_width"`
	AreaHeight int `json:"area_height"`
	Width      int `json:"width"`
	Height     int `json:"height"`
	Top        int `json:"top"`
	Left       int `json:"left"`
}

// TaskFile is one artwork file in a mockup task.
type TaskFile struct {
	Placement string       `json:"placement"`
	ImageURL  string       `json:"image_url"`
	Position  FilePosition `json:"position"`
}

// MockupTaskRequest is the payload for creating a mockup render task.
// ExternalID is an opaque echo field: the vendor round-trips it in the
// completion webhook so the task can be correlated back to a design.
type MockupTaskRequest struct {
	VariantIDs []int64    `json:"variant_ids"`
	Files      []TaskFile `json:"files"`
	ExternalID string     `json:"external_id"`
}

// CreateMockupTaskResponse is the acknowledgment for a submitted task.
type CreateMockupTaskResponse struct {
	Result struct {
		TaskKey string `json:"task_key"`
		Status  string `json:"status"`
	} `json:"result"`
}

// CreateMockupTask submits a mockup render task for a product and returns
// the vendor's task reference.
func (c *Client) CreateMockupTask(ctx context.Context, productRef int64, task *MockupTaskRequest) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	jsonData, err := json.Marshal(task)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/mockup-generator/create-task/%d", c.baseURL, productRef)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call vendor: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &VendorError{Status: resp.StatusCode, Body: string(body)}
	}

	var createResp CreateMockupTaskResponse
	if err := json.Unmarshal(body, &createResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if createResp.Result.TaskKey == "" {
		return "", fmt.Errorf("vendor response missing task_key: %s", string(body))
	}

	return createResp.Result.TaskKey, nil
}
