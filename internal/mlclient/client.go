// Package mlclient is an HTTP client for the external ML service that
// parses resumes and attendance sheets, matches opportunities, scores
// trainings and analyzes consultant insights.
package mlclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/jonathan/intelliconsult/internal/schemas"
)

// Endpoint paths relative to the service base URL
const (
	EndpointResume         = "api/resume/add"
	EndpointOpportunity    = "api/opportunity/handle"
	EndpointAnalyze        = "api/attendance/analyze"
	EndpointAttendanceFile = "api/attendance/upload"
	EndpointTraining       = "api/training/handle"
)

// Default timeouts
const (
	DefaultTimeout       = 60 * time.Second
	DefaultUploadTimeout = 2 * time.Minute
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 16 << 20

// Options configures a Client. Zero values select the defaults.
type Options struct {
	Timeout       time.Duration
	UploadTimeout time.Duration
	HTTPClient    *http.Client
}

// Client calls the ML service. Every call is attempted exactly once.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	timeout       time.Duration
	uploadTimeout time.Duration
}

// New creates a client for the service at baseURL.
func New(baseURL string, opts *Options) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid ML service URL %q", baseURL)
	}
	if opts == nil {
		opts = &Options{}
	}

	c := &Client{
		baseURL:       u.String(),
		httpClient:    opts.HTTPClient,
		timeout:       opts.Timeout,
		uploadTimeout: opts.UploadTimeout,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.uploadTimeout <= 0 {
		c.uploadTimeout = DefaultUploadTimeout
	}
	return c, nil
}

// BaseURL returns the service base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ParseResume uploads a resume and returns the skill names found in it.
func (c *Client) ParseResume(ctx context.Context, filename string, file io.Reader) (*ResumeParseResponse, error) {
	body, err := c.postFile(ctx, EndpointResume, filename, file, c.timeout, schemas.ResumeParse)
	if err != nil {
		return nil, err
	}
	var out ResumeParseResponse
	if err := decode(EndpointResume, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MatchOpportunities asks the matcher which consultants fit the given
// opportunities.
func (c *Client) MatchOpportunities(ctx context.Context, req *MatchRequest) (*MatchResponse, error) {
	body, err := c.postJSON(ctx, EndpointOpportunity, req, schemas.OpportunityMatch)
	if err != nil {
		return nil, err
	}
	var out MatchResponse
	if err := decode(EndpointOpportunity, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AnalyzeInsights sends a consultant batch to the insight analyzer and
// returns its reply verbatim.
func (c *Client) AnalyzeInsights(ctx context.Context, payload any) (json.RawMessage, error) {
	body, err := c.postJSON(ctx, EndpointAnalyze, payload, schemas.Analysis)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// ScoreTraining asks the training scorer to rate a consultant and returns
// its reply verbatim.
func (c *Client) ScoreTraining(ctx context.Context, req *TrainingScoreRequest) (json.RawMessage, error) {
	body, err := c.postJSON(ctx, EndpointTraining, req, schemas.Analysis)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// ParseAttendanceSheet forwards an attendance sheet file to the parser
// under the upload timeout and returns its reply verbatim.
func (c *Client) ParseAttendanceSheet(ctx context.Context, filename string, file io.Reader) (json.RawMessage, error) {
	body, err := c.postFile(ctx, EndpointAttendanceFile, filename, file, c.uploadTimeout, schemas.Analysis)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

func (c *Client) postJSON(ctx context.Context, endpoint string, payload any, schema string) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", endpoint, err)
	}
	return c.do(ctx, endpoint, "application/json", bytes.NewReader(data), c.timeout, schema)
}

func (c *Client) postFile(ctx context.Context, endpoint, filename string, file io.Reader, timeout time.Duration, schema string) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s upload: %w", endpoint, err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to read upload %s: %w", filename, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to build %s upload: %w", endpoint, err)
	}
	return c.do(ctx, endpoint, w.FormDataContentType(), &buf, timeout, schema)
}

func (c *Client) do(ctx context.Context, endpoint, contentType string, body io.Reader, timeout time.Duration, schema string) ([]byte, error) {
	target, err := url.JoinPath(c.baseURL, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s URL: %w", endpoint, err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		msg := "request failed"
		if errors.Is(err, context.DeadlineExceeded) {
			msg = fmt.Sprintf("timed out after %s", timeout)
		}
		return nil, &UpstreamError{Endpoint: endpoint, Message: msg, Cause: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &UpstreamError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: "failed to read response", Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: snippet(data)}
	}

	if schema != "" {
		if err := schemas.Validate(schema, data); err != nil {
			return nil, &UpstreamError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: "malformed response", Cause: err}
		}
	}
	return data, nil
}

func decode(endpoint string, data []byte, out any) error {
	if err := json.Unmarshal(data, out); err != nil {
		return &UpstreamError{Endpoint: endpoint, Message: "undecodable response", Cause: err}
	}
	return nil
}

func snippet(data []byte) string {
	const limit = 200
	s := string(bytes.TrimSpace(data))
	if s == "" {
		return "empty response"
	}
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
