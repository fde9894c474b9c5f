// Package catalog fetches the third-party movie catalog.
package catalog

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/moviecollections/apiserver/config"
	"github.com/moviecollections/apiserver/internal/logging"
	"github.com/moviecollections/apiserver/internal/metrics"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

const (
	maxBodyBytes           = 32 << 20
	defaultInitialInterval = 250 * time.Millisecond
	defaultMaxInterval     = 5 * time.Second
	breakerFailures        = 5
	breakerOpenTimeout     = 30 * time.Second
)

var (
	// ErrMissingCredentials means the catalog username or password is unset.
	ErrMissingCredentials = errors.New("catalog credentials are not configured")

	// ErrUnavailable wraps every failure to obtain a 200 response.
	ErrUnavailable = errors.New("movie catalog unavailable")
)

// StatusError reports a non-200 upstream response.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog responded with status %d", e.StatusCode)
}

// Client calls the catalog endpoint with bounded exponential backoff behind
// a circuit breaker.
type Client struct {
	url        string
	username   string
	password   string
	maxRetries uint64
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[json.RawMessage]
	log        zerolog.Logger

	initialInterval time.Duration
	maxInterval     time.Duration
}

func NewClient(cfg config.CatalogConfig) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for the demo catalog host
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	c := &Client{
		url:        cfg.URL,
		username:   strings.TrimSpace(cfg.Username),
		password:   strings.TrimSpace(cfg.Password),
		maxRetries: uint64(maxRetries),
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		log:             logging.Component("catalog"),
		initialInterval: defaultInitialInterval,
		maxInterval:     defaultMaxInterval,
	}
	c.breaker = gobreaker.NewCircuitBreaker[json.RawMessage](gobreaker.Settings{
		Name:    "movie-catalog",
		Timeout: breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	})
	return c
}

// Configured reports whether credentials are present.
func (c *Client) Configured() bool {
	return c.username != "" && c.password != ""
}

// Fetch returns the catalog body verbatim once the endpoint answers 200.
func (c *Client) Fetch(ctx context.Context) (json.RawMessage, error) {
	if !c.Configured() {
		return nil, ErrMissingCredentials
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.initialInterval
	policy.MaxInterval = c.maxInterval
	policy.MaxElapsedTime = 0

	attempt := 0
	body, err := backoff.RetryWithData(func() (json.RawMessage, error) {
		attempt++
		body, err := c.breaker.Execute(func() (json.RawMessage, error) {
			return c.fetchOnce(ctx)
		})
		if err == nil {
			metrics.RecordCatalogAttempt("ok")
			return body, nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.RecordCatalogAttempt("breaker_open")
			return nil, backoff.Permanent(err)
		}

		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			metrics.RecordCatalogAttempt("status")
		} else {
			metrics.RecordCatalogAttempt("error")
		}
		c.log.Debug().Err(err).Int("attempt", attempt).Msg("catalog attempt failed")
		return nil, err
	}, backoff.WithContext(backoff.WithMaxRetries(policy, c.maxRetries), ctx))
	if err != nil {
		return nil, fmt.Errorf("%w after %d attempt(s): %w", ErrUnavailable, attempt, err)
	}
	return body, nil
}

func (c *Client) fetchOnce(ctx context.Context) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("username", c.username)
	req.Header.Set("password", c.password)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		return nil, errors.New("catalog response is not valid JSON")
	}
	return json.RawMessage(data), nil
}
