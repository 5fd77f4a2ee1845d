package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/consensuslabs/festival/backend/internal/intake/draft"
	"github.com/consensuslabs/festival/backend/internal/intake/encode"
	"github.com/consensuslabs/festival/backend/internal/logger"
)

const (
	submissionsPath = "/api/v1/submissions"
	editPath        = "/api/v1/submissions/edit/"
	maxResponseBody = 1 << 20
)

// Config wires a Client.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Encoder    *encode.Encoder
	Devices    DeviceSource
	Logger     logger.Logger
}

// Client talks to the submission API. It implements draft.Submitter.
type Client struct {
	base    *url.URL
	http    *http.Client
	encoder *encode.Encoder
	devices DeviceSource
	logger  logger.Logger
}

// New validates cfg and creates a Client.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", cfg.BaseURL)
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 10 * time.Minute}
	}
	if cfg.Encoder == nil {
		cfg.Encoder = encode.New(encode.Options{})
	}
	if cfg.Devices == nil {
		cfg.Devices = StaticDevice("")
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}
	return &Client{
		base:    base,
		http:    cfg.HTTPClient,
		encoder: cfg.Encoder,
		devices: cfg.Devices,
		logger:  cfg.Logger,
	}, nil
}

// Submit encodes d and posts it to the creation endpoint. Field failures
// reported by the server come back as apperrors.ValidationErrors.
func (c *Client) Submit(ctx context.Context, d draft.Draft) (*draft.Receipt, error) {
	return c.send(ctx, http.MethodPost, submissionsPath, d)
}

// Amend encodes d and sends it to the edit endpoint of token, consuming
// the token.
func (c *Client) Amend(ctx context.Context, token string, d draft.Draft) (*draft.Receipt, error) {
	return c.send(ctx, http.MethodPut, editPath+url.PathEscape(token), d)
}

// OpenEdit validates an edit token and returns the stored submission.
func (c *Client) OpenEdit(ctx context.Context, token string) (*Submission, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(editPath+url.PathEscape(token)), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.decorate(req)

	env, status, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, editError(status, env)
	}

	var sub Submission
	if err := json.Unmarshal(env.Data, &sub); err != nil {
		return nil, fmt.Errorf("decode submission: %w", err)
	}
	return &sub, nil
}

func (c *Client) send(ctx context.Context, method, path string, d draft.Draft) (*draft.Receipt, error) {
	contentType, body, err := c.encoder.Stream(d)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	c.decorate(req)

	start := time.Now()
	env, status, err := c.do(req)
	if err != nil {
		return nil, err
	}
	c.logger.LogDebug("Submission response received", map[string]interface{}{
		"method":   method,
		"status":   status,
		"duration": time.Since(start).String(),
	})

	switch {
	case status == http.StatusOK || status == http.StatusCreated:
		var receipt draft.Receipt
		if err := json.Unmarshal(env.Data, &receipt); err != nil || receipt.ID == "" {
			return nil, &StatusError{StatusCode: status, Message: "response carries no submission id"}
		}
		return &receipt, nil
	case len(env.Errors) > 0:
		return nil, env.Errors
	case status == http.StatusForbidden:
		return nil, ErrVerificationRejected
	case method == http.MethodPut:
		return nil, editError(status, env)
	}
	return nil, statusError(status, env)
}

func (c *Client) endpoint(path string) string {
	return c.base.String() + path
}

func (c *Client) decorate(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if id, ok := c.devices.DeviceID(); ok {
		req.Header.Set(DeviceHeader, id)
	}
}

func (c *Client) do(req *http.Request) (*envelope, int, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	env := &envelope{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, env); err != nil {
			return nil, resp.StatusCode, &StatusError{
				StatusCode: resp.StatusCode,
				Message:    "malformed response: " + strings.TrimSpace(string(raw)),
			}
		}
	}
	return env, resp.StatusCode, nil
}

func editError(status int, env *envelope) error {
	switch status {
	case http.StatusNotFound:
		return ErrEditTokenInvalid
	case http.StatusGone:
		return ErrEditTokenExpired
	case http.StatusConflict:
		return ErrEditTokenUsed
	}
	return statusError(status, env)
}

func statusError(status int, env *envelope) error {
	e := &StatusError{StatusCode: status, Message: env.Message}
	if env.Error != nil {
		e.Code = env.Error.Code
		if env.Error.Message != "" {
			e.Message = env.Error.Message
		}
	}
	return e
}

var _ draft.Submitter = (*Client)(nil)
