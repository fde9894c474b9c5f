package handlers

import (
	"errors"
	"net/http"

	"github.com/moviecollections/apiserver/internal/logging"
	"github.com/moviecollections/apiserver/internal/services"
)

// MovieHandler proxies the external movie catalog.
type MovieHandler struct {
	catalogService *services.CatalogService
}

func NewMovieHandler(catalogService *services.CatalogService) *MovieHandler {
	return &MovieHandler{catalogService: catalogService}
}

func (h *MovieHandler) ListMovies(w http.ResponseWriter, r *http.Request) {
	body, err := h.catalogService.Fetch(r.Context())
	if err != nil {
		if errors.Is(err, services.ErrConfig) {
			writeError(w, http.StatusInternalServerError, "Username or password not set in environment variables.")
			return
		}
		logging.Error().Err(err).Msg("fetch movie catalog")
		writeError(w, http.StatusInternalServerError, "Failed to fetch movies from the catalog.")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
