// Package transport calls the two collaborator endpoints of the chat widget:
// POST /chat for replies and POST /upload for file uploads.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

const maxMessageLen = 200

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply *string `json:"reply"`
	Error string  `json:"error,omitempty"`
}

type uploadResponse struct {
	Success string `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Option configures a Client.
type Option func(*Client)

// WithLogger routes the HTTP client's diagnostics to logger. Defaults to a
// disabled logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// Client is an HTTP client for the reply service.
type Client struct {
	cfg    Config
	http   *resty.Client
	logger zerolog.Logger
}

// New creates a Client. A nil cfg uses DefaultConfig; zero fields fall back
// to their defaults.
func New(cfg *Config, opts ...Option) *Client {
	c := &Client{
		cfg:    DefaultConfig(),
		logger: zerolog.Nop(),
	}
	if cfg != nil {
		c.cfg.Merge(cfg)
	}
	for _, opt := range opts {
		opt(c)
	}

	c.http = resty.New().
		SetBaseURL(strings.TrimRight(c.cfg.BaseURL, "/")).
		SetHeader("User-Agent", c.cfg.UserAgent).
		SetHeader("Accept", "application/json").
		SetLogger(restyLogger{c.logger})
	return c
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// Chat sends message to the chat endpoint and returns the reply text.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	endpoint := c.cfg.ChatPath

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(chatRequest{Message: message}).
		Post(endpoint)
	if err != nil {
		return "", &Error{Endpoint: endpoint, Err: err}
	}
	if resp.IsError() {
		return "", &Error{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode(),
			Message:    serverMessage(resp.Body()),
		}
	}

	var body chatResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return "", &Error{Endpoint: endpoint, StatusCode: resp.StatusCode(), Err: fmt.Errorf("decode reply: %w", err)}
	}
	if body.Reply == nil {
		if body.Error != "" {
			return "", &Error{Endpoint: endpoint, StatusCode: resp.StatusCode(), Message: body.Error}
		}
		return "", &Error{Endpoint: endpoint, StatusCode: resp.StatusCode(), Err: errors.New("response has no reply")}
	}
	return *body.Reply, nil
}

// Upload sends the content of r as a single multipart file part named
// filename and returns the outcome text: the server's success message, or a
// default confirmation when the server does not provide one.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	endpoint := c.cfg.UploadPath

	data, err := io.ReadAll(r)
	if err != nil {
		return "", &Error{Endpoint: endpoint, Err: fmt.Errorf("read file: %w", err)}
	}

	name := filepath.Base(filename)
	if name == "." || name == string(filepath.Separator) {
		name = "upload"
	}
	contentType := mimetype.Detect(data).String()

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("filename", name).
		Str("content_type", contentType).
		Int("size", len(data)).
		Msg("uploading file")

	resp, err := c.http.R().
		SetContext(ctx).
		SetMultipartField(c.cfg.UploadField, name, contentType, bytes.NewReader(data)).
		Post(endpoint)
	if err != nil {
		return "", &Error{Endpoint: endpoint, Err: err}
	}
	if resp.IsError() {
		return "", &Error{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode(),
			Message:    serverMessage(resp.Body()),
		}
	}

	var body uploadResponse
	if len(bytes.TrimSpace(resp.Body())) > 0 {
		if err := json.Unmarshal(resp.Body(), &body); err != nil {
			return "", &Error{Endpoint: endpoint, StatusCode: resp.StatusCode(), Err: fmt.Errorf("decode outcome: %w", err)}
		}
	}
	if body.Error != "" {
		return "", &Error{Endpoint: endpoint, StatusCode: resp.StatusCode(), Message: body.Error}
	}
	if body.Success != "" {
		return body.Success, nil
	}
	return fmt.Sprintf("File '%s' uploaded successfully.", name), nil
}

// serverMessage extracts an error description from a failed response body:
// the "error" field when the body is JSON, otherwise the trimmed text.
func serverMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		return payload.Error
	}

	msg := strings.TrimSpace(string(body))
	if runes := []rune(msg); len(runes) > maxMessageLen {
		msg = string(runes[:maxMessageLen]) + "..."
	}
	return msg
}

// restyLogger adapts zerolog to resty's logger interface.
type restyLogger struct {
	logger zerolog.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.logger.Error().Msgf(strings.TrimSpace(format), v...)
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.logger.Warn().Msgf(strings.TrimSpace(format), v...)
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.logger.Debug().Msgf(strings.TrimSpace(format), v...)
}
