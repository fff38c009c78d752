// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jeranaias/docbud-tui/internal/document"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the backend client.
type ClientError struct {
	Type       ErrorType
	Message    string
	StatusCode int // set for ErrTypeStatus
	Cause      error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is matches sentinels by Type.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeTimeout
	ErrTypeStatus
)

func (t ErrorType) String() string {
	switch t {
	case ErrTypeConnection:
		return "connection"
	case ErrTypeTimeout:
		return "timeout"
	case ErrTypeStatus:
		return "status"
	default:
		return "unknown"
	}
}

// Sentinel errors for errors.Is checks.
var (
	ErrConnection = &ClientError{Type: ErrTypeConnection, Message: "backend unreachable"}
	ErrTimeout    = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrStatus     = &ClientError{Type: ErrTypeStatus, Message: "backend rejected request"}
)

// FallbackAnswer is used when the backend responds without an answer.
const FallbackAnswer = "No answer received."

// Endpoint paths relative to BaseURL.
const (
	UploadPath = "/upload_pdf/"
	AskPath    = "/ask_question/"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL of the service (default: http://127.0.0.1:8000)
	BaseURL string

	// Timeout per request (default: 120s; answers can take a while)
	Timeout time.Duration

	// RequestsPerSecond caps outgoing calls; 0 disables the limiter.
	RequestsPerSecond float64
}

// DefaultBaseURL is the address the service listens on in development.
const DefaultBaseURL = "http://127.0.0.1:8000"

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the question-answering service. It is safe for
// concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a client, filling zero config values with defaults.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    limiter,
	}
}

// BaseURL returns the service address.
func (c *Client) BaseURL() string { return c.baseURL }

// =============================================================================
// OPERATIONS
// =============================================================================

// UploadPDF sends the document as multipart field "file". Any 2xx response
// is success; the body is ignored.
func (c *Client) UploadPDF(ctx context.Context, filename string, r io.Reader) error {
	body, contentType, err := multipartBody(func(w *multipart.Writer) error {
		part, err := w.CreatePart(filePartHeader("file", filename))
		if err != nil {
			return err
		}
		_, err = io.Copy(part, r)
		return err
	})
	if err != nil {
		return &ClientError{Type: ErrTypeUnknown, Message: "failed to build upload body", Cause: err}
	}

	resp, err := c.post(ctx, UploadPath, contentType, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// AskQuestion sends the question as multipart field "question" and returns
// the answer text, or FallbackAnswer when a 2xx response carries none or
// cannot be decoded.
func (c *Client) AskQuestion(ctx context.Context, question string) (string, error) {
	body, contentType, err := multipartBody(func(w *multipart.Writer) error {
		return w.WriteField("question", question)
	})
	if err != nil {
		return "", &ClientError{Type: ErrTypeUnknown, Message: "failed to build question body", Cause: err}
	}

	resp, err := c.post(ctx, AskPath, contentType, body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	// A 2xx body without a string answer is not a failure.
	var result AskResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Debug().Err(err).Msg("answer body not decodable, using fallback")
		return FallbackAnswer, nil
	}
	if result.Answer == "" {
		return FallbackAnswer, nil
	}
	return result.Answer, nil
}

// =============================================================================
// INTERNALS
// =============================================================================

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// filePartHeader labels the part as a PDF; CreateFormFile would send
// application/octet-stream.
func filePartHeader(field, filename string) textproto.MIMEHeader {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(filename)))
	h.Set("Content-Type", document.MediaTypePDF)
	return h
}

func multipartBody(fill func(*multipart.Writer) error) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := fill(w); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// post sends one request and returns the response when its status is 2xx.
// The caller closes the body.
func (c *Client) post(ctx context.Context, path, contentType string, body io.Reader) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, classify(err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	requestID := uuid.New().String()
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	logger := log.With().Str("request_id", requestID).Str("path", path).Dur("elapsed", time.Since(start)).Logger()
	if err != nil {
		logger.Warn().Err(err).Msg("backend request failed")
		return nil, classify(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		logger.Warn().Int("status", resp.StatusCode).Str("body", strings.TrimSpace(string(snippet))).Msg("backend returned error status")
		return nil, &ClientError{
			Type:       ErrTypeStatus,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("%s %s: %s", http.MethodPost, path, resp.Status),
		}
	}

	logger.Debug().Int("status", resp.StatusCode).Msg("backend request ok")
	return resp, nil
}

func classify(err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return &ClientError{Type: ErrTypeTimeout, Message: ErrTimeout.Message, Cause: err}
	case errors.Is(err, context.Canceled):
		return &ClientError{Type: ErrTypeConnection, Message: "request cancelled", Cause: err}
	default:
		return &ClientError{Type: ErrTypeConnection, Message: ErrConnection.Message, Cause: err}
	}
}
