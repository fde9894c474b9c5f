package handlers

import (
	"net/http"

	"github.com/moviecollections/apiserver/internal/counter"
)

// CounterHandler exposes the process-wide request counter.
type CounterHandler struct {
	counter *counter.Counter
}

func NewCounterHandler(c *counter.Counter) *CounterHandler {
	return &CounterHandler{counter: c}
}

type resetResponse struct {
	Message string `json:"Message"`
}

type badRequestResponse struct {
	Error string `json:"Error"`
}

// RequestCount reports how many requests the process has handled,
// including this one.
func (h *CounterHandler) RequestCount(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Message: h.counter.Sentence()})
}

// Reset zeroes the counter. Only POST is accepted.
func (h *CounterHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusBadRequest, badRequestResponse{Error: "Bad Request"})
		return
	}
	h.counter.Reset()
	writeJSON(w, http.StatusOK, resetResponse{Message: "Request count reset successfully"})
}
