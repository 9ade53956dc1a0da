package larekapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/jafarshop/larek/internal/config"
	"github.com/jafarshop/larek/internal/metrics"
	"github.com/jafarshop/larek/pkg/errors"
)

const maxBodySize = 1 << 20

// Client talks to the storefront API behind a circuit breaker
type Client struct {
	baseURL    string
	cdnURL     string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
	logger     *zap.Logger
}

// NewClient creates a storefront API client
func NewClient(cfg config.APIConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        "larek-api",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			// 4xx answers mean the API is up
			if netErr, ok := err.(*errors.NetworkError); ok {
				return netErr.Status >= 400 && netErr.Status < 500
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.CircuitBreakerState.Set(stateToFloat(to))
		},
	}

	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		cdnURL:  strings.TrimSuffix(cfg.CDNURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		breaker: gobreaker.NewCircuitBreaker[[]byte](settings),
		logger:  logger,
	}
}

// errorResponse is the body the API sends with non-2xx statuses
type errorResponse struct {
	Error string `json:"error"`
}

// do sends one request and returns the raw body of a 2xx answer. It never retries.
func (c *Client) do(ctx context.Context, op, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	data, err := c.breaker.Execute(func() ([]byte, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, &errors.NetworkError{Op: op, Err: err}
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if err != nil {
			return nil, &errors.NetworkError{Op: op, Status: resp.StatusCode, Err: err}
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			var apiErr errorResponse
			msg := resp.Status
			if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
				msg = apiErr.Error
			}
			return nil, &errors.NetworkError{Op: op, Status: resp.StatusCode, Message: msg}
		}
		return data, nil
	})
	if err != nil {
		if _, ok := err.(*errors.NetworkError); !ok {
			// gobreaker.ErrOpenState or ErrTooManyRequests
			err = &errors.NetworkError{Op: op, Err: err}
		}
		metrics.RemoteRequestsTotal.WithLabelValues(op, "network_error").Inc()
		return nil, err
	}
	return data, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
