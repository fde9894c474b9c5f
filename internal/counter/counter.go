// Package counter tracks how many HTTP requests the process has served.
package counter

import (
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
)

// HeaderName carries the cumulative request count on every response.
const HeaderName = "X-Request-Count"

// Counter is a process-wide request tally. The zero value is ready to use.
type Counter struct {
	n atomic.Int64
}

func New() *Counter {
	return &Counter{}
}

// Increment records one request and returns the new total.
func (c *Counter) Increment() int64 {
	return c.n.Add(1)
}

func (c *Counter) Value() int64 {
	return c.n.Load()
}

func (c *Counter) Reset() {
	c.n.Store(0)
}

// Sentence formats the current count for the request-count endpoint.
func (c *Counter) Sentence() string {
	return fmt.Sprintf("This is the %s request.", ordinal(c.Value()))
}

func ordinal(n int64) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.FormatInt(n, 10) + suffix
}

// Middleware increments the counter before the handler runs and stamps the
// count on the response when its headers are written.
func (c *Counter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.Increment()
		cw := &countingResponseWriter{ResponseWriter: w, counter: c}
		next.ServeHTTP(cw, r)
		if !cw.wroteHeader {
			cw.WriteHeader(http.StatusOK)
		}
	})
}

type countingResponseWriter struct {
	http.ResponseWriter
	counter     *Counter
	wroteHeader bool
}

func (w *countingResponseWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.wroteHeader = true
		w.Header().Set(HeaderName, strconv.FormatInt(w.counter.Value(), 10))
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *countingResponseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func (w *countingResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
