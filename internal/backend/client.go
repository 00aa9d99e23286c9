// Package backend talks to the summarization API. It prepares requests and
// classifies failures; it never interprets a successful body.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"content-summarizer-web/internal/models"
)

const (
	maxResponseBytes = 32 << 20

	historyFallbackMessage = "Failed to fetch history"
)

// Client is an HTTP client for the summarization backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logrus.Logger
}

// NewClient creates a client for baseURL.
func NewClient(baseURL string, log *logrus.Logger) *Client {
	return NewClientWithHTTPClient(baseURL, &http.Client{
		// Timeout is intentionally not set (0 = no timeout).
		// The backend and the caller's context own request deadlines.
	}, log)
}

// NewClientWithHTTPClient creates a client with a custom *http.Client.
func NewClientWithHTTPClient(baseURL string, httpClient *http.Client, log *logrus.Logger) *Client {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		log:        log,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// BuildURL constructs the full backend URL from a path.
func (c *Client) BuildURL(path string) string {
	if strings.HasPrefix(path, "/") {
		return c.baseURL + path
	}
	return c.baseURL + "/" + path
}

// Summarize issues exactly one POST for req and returns the raw body of a
// 2xx response.
func (c *Client) Summarize(ctx context.Context, req models.SubmissionRequest) ([]byte, error) {
	endpoint := req.Kind.Endpoint()
	if endpoint == "" {
		return nil, fmt.Errorf("no endpoint for modality %q", req.Kind)
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", req.Kind, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BuildURL(endpoint), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", req.Kind, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	return c.do(httpReq, "Failed to summarize "+req.Kind.Noun(), logrus.Fields{
		"modality": req.Kind,
		"user_id":  req.UserID,
		"language": req.Language,
	})
}

// History fetches the prior summaries recorded for userID.
func (c *Client) History(ctx context.Context, userID string) ([]models.HistoryEntry, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BuildURL("/history/"+url.PathEscape(userID)), nil)
	if err != nil {
		return nil, fmt.Errorf("build history request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	body, err := c.do(httpReq, historyFallbackMessage, logrus.Fields{"user_id": userID})
	if err != nil {
		return nil, err
	}

	var resp struct {
		History []models.HistoryEntry `json:"history"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	if resp.History == nil {
		resp.History = []models.HistoryEntry{}
	}
	return resp.History, nil
}

func (c *Client) do(req *http.Request, fallback string, fields logrus.Fields) ([]byte, error) {
	if reqID := chimiddleware.GetReqID(req.Context()); reqID != "" {
		req.Header.Set("X-Request-ID", reqID)
	}

	entry := c.log.WithFields(fields).WithFields(logrus.Fields{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		entry.WithError(err).Warn("Backend request failed without a response")
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		entry.WithError(err).Warn("Failed to read backend response")
		return nil, &TransportError{Err: fmt.Errorf("read response: %w", err)}
	}

	entry = entry.WithFields(logrus.Fields{
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, ok := errorMessage(body)
		if !ok {
			msg = fallback
		}
		entry.WithField("error", msg).Warn("Backend returned an error status")
		return nil, &BackendError{StatusCode: resp.StatusCode, Message: msg}
	}

	entry.Debug("Backend request completed")
	return body, nil
}
