package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/moviecollections/apiserver/internal/logging"
	"github.com/moviecollections/apiserver/internal/services"
	"github.com/moviecollections/apiserver/types"
)

// noData stands in for the collection summary of a user with no collections.
const noData = "No Data"

// CollectionHandler provides HTTP handlers for movie collections.
type CollectionHandler struct {
	collectionService *services.CollectionService
}

func NewCollectionHandler(collectionService *services.CollectionService) *CollectionHandler {
	return &CollectionHandler{collectionService: collectionService}
}

// CollectionRouter registers collection routes on the given router. The
// caller mounts it behind the auth middleware.
func CollectionRouter(r chi.Router, collectionService *services.CollectionService) {
	handler := NewCollectionHandler(collectionService)

	r.Get("/", handler.GetUserCollection)
	r.Post("/", handler.CreateCollection)
	r.Route("/{collectionID}", func(r chi.Router) {
		r.Get("/", handler.GetCollection)
		r.Put("/", handler.UpdateCollection)
		r.Delete("/", handler.DeleteCollection)
	})
}

type CollectionResponse struct {
	IsSuccess bool `json:"is_success"`
	Data      any  `json:"data,omitempty"`
	Error     any  `json:"error,omitempty"`
}

type collectionSummary struct {
	Collections     any `json:"collections"`
	FavouriteGenres any `json:"favourite_genres"`
}

type collectionItem struct {
	UUID        uuid.UUID     `json:"uuid"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Movies      []types.Movie `json:"movies"`
}

type collectionDetail struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Movies      []types.Movie `json:"movies"`
}

type collectionCreated struct {
	CollectionUUID uuid.UUID `json:"collection_uuid"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *CollectionHandler) GetUserCollection(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requester(w, r)
	if !ok {
		return
	}

	result, err := h.collectionService.ForUser(r.Context(), userID)
	if err != nil {
		h.fail(w, err, "load collections")
		return
	}

	summary := collectionSummary{Collections: noData, FavouriteGenres: noData}
	if result.Collection != nil {
		summary.Collections = []collectionItem{{
			UUID:        result.Collection.UUID,
			Title:       result.Collection.Title,
			Description: result.Collection.Description,
			Movies:      detailOf(*result.Collection).Movies,
		}}
		summary.FavouriteGenres = result.FavouriteGenres
	}
	writeJSON(w, http.StatusOK, CollectionResponse{IsSuccess: true, Data: summary})
}

func (h *CollectionHandler) CreateCollection(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requester(w, r)
	if !ok {
		return
	}

	var req services.CollectionInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeCollectionError(w, http.StatusBadRequest, "invalid request")
		return
	}

	created, err := h.collectionService.Create(r.Context(), userID, req)
	if err != nil {
		h.fail(w, err, "create collection")
		return
	}
	writeJSON(w, http.StatusCreated, collectionCreated{CollectionUUID: created.UUID})
}

func (h *CollectionHandler) GetCollection(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requester(w, r)
	if !ok {
		return
	}
	id, err := services.ParseID(chi.URLParam(r, "collectionID"))
	if err != nil {
		h.fail(w, err, "get collection")
		return
	}

	collection, err := h.collectionService.Detail(r.Context(), userID, id)
	if err != nil {
		h.fail(w, err, "get collection")
		return
	}
	writeJSON(w, http.StatusOK, detailOf(collection))
}

func (h *CollectionHandler) UpdateCollection(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requester(w, r)
	if !ok {
		return
	}
	id, err := services.ParseID(chi.URLParam(r, "collectionID"))
	if err != nil {
		h.fail(w, err, "update collection")
		return
	}

	var req services.CollectionInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeCollectionError(w, http.StatusBadRequest, "invalid request")
		return
	}

	updated, err := h.collectionService.Update(r.Context(), userID, id, req)
	if err != nil {
		h.fail(w, err, "update collection")
		return
	}
	writeJSON(w, http.StatusAccepted, detailOf(updated))
}

func (h *CollectionHandler) DeleteCollection(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requester(w, r)
	if !ok {
		return
	}
	id, err := services.ParseID(chi.URLParam(r, "collectionID"))
	if err != nil {
		h.fail(w, err, "delete collection")
		return
	}

	if err := h.collectionService.Delete(r.Context(), userID, id); err != nil {
		h.fail(w, err, "delete collection")
		return
	}
	writeJSON(w, http.StatusAccepted, messageResponse{
		Message: fmt.Sprintf("collection having uuid %s is deleted", id),
	})
}

func (h *CollectionHandler) requester(w http.ResponseWriter, r *http.Request) (int, bool) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeCollectionError(w, http.StatusUnauthorized, "unauthorized")
		return 0, false
	}
	return userID, true
}

func (h *CollectionHandler) fail(w http.ResponseWriter, err error, action string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		writeCollectionError(w, http.StatusBadRequest, verr.Problems)
	case errors.Is(err, services.ErrNotFound):
		writeCollectionError(w, http.StatusNotFound, "Collection not found")
	default:
		logging.Error().Err(err).Msg(action)
		writeCollectionError(w, http.StatusInternalServerError, "failed to "+action)
	}
}

func detailOf(c types.Collection) collectionDetail {
	movies := c.Movies
	if movies == nil {
		movies = []types.Movie{}
	}
	return collectionDetail{Title: c.Title, Description: c.Description, Movies: movies}
}

func writeCollectionError(w http.ResponseWriter, status int, message any) {
	writeJSON(w, status, CollectionResponse{IsSuccess: false, Error: message})
}
