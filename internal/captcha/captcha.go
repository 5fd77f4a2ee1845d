// Package captcha verifies human verification tokens against a
// Turnstile-compatible siteverify endpoint and refuses tokens seen before.
package captcha

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/consensuslabs/festival/backend/internal/cache"
)

var (
	ErrMissingToken = errors.New("verification token is missing")
	ErrRejected     = errors.New("verification token was rejected")
	ErrReplayed     = errors.New("verification token was already used")
)

// Config configures verification.
type Config struct {
	Enabled   bool          `mapstructure:"enabled"`
	Secret    string        `mapstructure:"secret"`
	VerifyURL string        `mapstructure:"verifyURL"`
	TokenTTL  time.Duration `mapstructure:"tokenTTL"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// DefaultVerifyURL is Cloudflare Turnstile's siteverify endpoint.
const DefaultVerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

// Verifier checks a token.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

type siteverifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
	Hostname   string   `json:"hostname"`
}

// HTTPVerifier calls the siteverify endpoint.
type HTTPVerifier struct {
	secret string
	url    string
	client *http.Client
}

// NewHTTPVerifier creates a verifier from cfg.
func NewHTTPVerifier(cfg *Config, client *http.Client) *HTTPVerifier {
	verifyURL := cfg.VerifyURL
	if verifyURL == "" {
		verifyURL = DefaultVerifyURL
	}
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &HTTPVerifier{secret: cfg.Secret, url: verifyURL, client: client}
}

// Verify posts token to the endpoint.
func (v *HTTPVerifier) Verify(ctx context.Context, token, remoteIP string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrMissingToken
	}

	form := url.Values{"secret": {v.secret}, "response": {token}}
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.url, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build siteverify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("siteverify: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("siteverify: unexpected status %d", resp.StatusCode)
	}

	var out siteverifyResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&out); err != nil {
		return fmt.Errorf("siteverify: decode response: %w", err)
	}
	if !out.Success {
		if len(out.ErrorCodes) > 0 {
			return fmt.Errorf("%w: %s", ErrRejected, strings.Join(out.ErrorCodes, ","))
		}
		return ErrRejected
	}
	return nil
}

// AllowAll accepts every non-empty token. It backs local development where
// no challenge widget is available.
type AllowAll struct{}

func (AllowAll) Verify(_ context.Context, token, _ string) error {
	if strings.TrimSpace(token) == "" {
		return ErrMissingToken
	}
	return nil
}

// Guard rejects tokens already accepted once within ttl before delegating.
type Guard struct {
	next  Verifier
	cache cache.Service
	ttl   time.Duration
}

// NewGuard wraps next with a replay check stored in c.
func NewGuard(next Verifier, c cache.Service, ttl time.Duration) *Guard {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Guard{next: next, cache: c, ttl: ttl}
}

// Verify claims the token then delegates. A token rejected downstream
// stays claimed; verification providers never accept a token twice.
func (g *Guard) Verify(ctx context.Context, token, remoteIP string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrMissingToken
	}

	sum := sha256.Sum256([]byte(token))
	claimed, err := g.cache.SetNX(ctx, "captcha:"+hex.EncodeToString(sum[:]), 1, g.ttl)
	if err != nil {
		return fmt.Errorf("replay guard: %w", err)
	}
	if !claimed {
		return ErrReplayed
	}
	return g.next.Verify(ctx, token, remoteIP)
}
