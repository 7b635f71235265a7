// Package handler implements the HTTP transport over the feed pipeline.
package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/xay/video-feed-service/internal/cache"
	"github.com/xay/video-feed-service/internal/events"
	"github.com/xay/video-feed-service/internal/service"
)

type Handler struct {
	feeds    *service.FeedService
	tenants  *service.TenantResolver
	index    *service.CandidateIndex
	store    cache.FeedStore
	queue    *events.Queue
	validate *validator.Validate
	log      zerolog.Logger
}

func New(feeds *service.FeedService, tenants *service.TenantResolver, index *service.CandidateIndex, store cache.FeedStore, queue *events.Queue, log zerolog.Logger) *Handler {
	return &Handler{
		feeds:    feeds,
		tenants:  tenants,
		index:    index,
		store:    store,
		queue:    queue,
		validate: validator.New(),
		log:      log.With().Str("component", "http").Logger(),
	}
}

// write JSON response
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writes JSON error response.
func writeError(w http.ResponseWriter, status int, errCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   errCode,
		Message: message,
	})
}
