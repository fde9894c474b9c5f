package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/moviecollections/apiserver/config"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string, maxRetries int) *Client {
	c := NewClient(config.CatalogConfig{
		URL:        url,
		Username:   "maya",
		Password:   "secret",
		Timeout:    time.Second,
		MaxRetries: maxRetries,
	})
	c.initialInterval = time.Millisecond
	c.maxInterval = 2 * time.Millisecond
	return c
}

func TestFetchMissingCredentials(t *testing.T) {
	c := NewClient(config.CatalogConfig{URL: "http://unused.invalid", Username: "maya"})
	assert.False(t, c.Configured())

	_, err := c.Fetch(context.Background())
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestFetchRetriesUntilOK(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "maya", r.Header.Get("username"))
		assert.Equal(t, "secret", r.Header.Get("password"))
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"count":1,"results":[{"title":"Heat","genres":"Crime,Drama"}]}`))
	}))
	defer server.Close()

	body, err := newTestClient(server.URL, 5).Fetch(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":1,"results":[{"title":"Heat","genres":"Crime,Drama"}]}`, string(body))
	assert.EqualValues(t, 3, calls.Load())
}

func TestFetchGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, 2).Fetch(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.EqualValues(t, 3, calls.Load())
}

func TestFetchStopsWhenBreakerOpens(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, 20).Fetch(context.Background())
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.EqualValues(t, breakerFailures, calls.Load())
}

func TestFetchRejectsInvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, 0).Fetch(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestFetchHonoursContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(server.URL, 50).Fetch(ctx)
	assert.Error(t, err)
}
