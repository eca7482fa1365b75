// Package verify checks student documents against the verification function
// and records the outcome on the user's profile.
package verify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"campusnet/internal/config"
	"campusnet/internal/logging"
)

// ErrRejected wraps a refusal reported by the function itself, as opposed to
// a transport failure.
var ErrRejected = errors.New("verification rejected")

type Request struct {
	DocumentPath  string `json:"document_path"`
	UserID        string `json:"user_id"`
	UserType      string `json:"user_type"`
	ProvidedEmail string `json:"provided_email"`
}

type Result struct {
	Success    bool   `json:"success"`
	Status     string `json:"status"`
	MatchScore int    `json:"match_score"`
}

type response struct {
	Result
	Error string `json:"error"`
}

// Verifier calls the verification function.
type Verifier interface {
	Verify(ctx context.Context, req Request) (Result, error)
}

// Client is an HTTP Verifier guarded by a circuit breaker.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
	cb       *gobreaker.CircuitBreaker
	log      *zap.Logger
}

func NewClient(cfg config.VerificationConfig, httpClient *http.Client, log *zap.Logger) *Client {
	log = logging.OrNop(log)
	if httpClient == nil {
		timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	maxFailures := uint32(cfg.MaxFailures)
	if maxFailures == 0 {
		maxFailures = 5
	}

	st := gobreaker.Settings{
		Name:        "verify-document",
		MaxRequests: 1,
		Timeout:     time.Duration(cfg.OpenTimeoutSeconds) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Info("circuit breaker state", zap.String("name", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	}
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		http:     httpClient,
		cb:       gobreaker.NewCircuitBreaker(st),
		log:      log,
	}
}

// Verify posts req to the function. Rejections reported in the response body
// do not count against the breaker.
func (c *Client) Verify(ctx context.Context, req Request) (Result, error) {
	out, err := c.cb.Execute(func() (interface{}, error) {
		return c.call(ctx, req)
	})
	if err != nil {
		return Result{}, err
	}

	resp := out.(response)
	if resp.Error != "" {
		return Result{}, fmt.Errorf("%w: %s", ErrRejected, resp.Error)
	}
	return resp.Result, nil
}

func (c *Client) call(ctx context.Context, req Request) (response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return response{}, fmt.Errorf("failed to encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return response{}, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return response{}, fmt.Errorf("verification call failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode >= http.StatusInternalServerError {
		snippet, _ := io.ReadAll(io.LimitReader(httpResp.Body, 512))
		return response{}, fmt.Errorf("verification function returned %d: %s", httpResp.StatusCode, bytes.TrimSpace(snippet))
	}

	var resp response
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return response{}, fmt.Errorf("failed to decode verification response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK && resp.Error == "" {
		resp.Error = http.StatusText(httpResp.StatusCode)
	}
	return resp, nil
}
