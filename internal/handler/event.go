package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/xay/video-feed-service/internal/domain"
)

type EventItem struct {
	Type      string         `json:"type" validate:"required,oneof=video_watch video_like video_share"`
	VideoID   string         `json:"video_id" validate:"required,max=64"`
	Timestamp time.Time      `json:"timestamp" validate:"required"`
	Data      map[string]any `json:"data" validate:"omitempty,max=10"`
}

type EventRequest struct {
	Events  []EventItem       `json:"events" validate:"required,min=1,max=100,dive"`
	Context map[string]string `json:"context" validate:"omitempty,max=10"`
}

// POST /v1/events
func (h *Handler) PostEvents(w http.ResponseWriter, r *http.Request) {
	tenantID, userID, requestID, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	// Unknown tenants are rejected before anything is queued.
	if _, err := h.tenants.Get(r.Context(), tenantID); err != nil {
		if errors.Is(err, domain.ErrTenantNotFound) {
			writeError(w, http.StatusNotFound, "tenant_not_found", "Tenant does not exist")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
		return
	}

	var req EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	batch := make([]domain.Event, 0, len(req.Events))
	for _, e := range req.Events {
		batch = append(batch, domain.Event{
			Type:      domain.EventType(e.Type),
			VideoID:   e.VideoID,
			Timestamp: e.Timestamp,
			Data:      e.Data,
		})
	}
	accepted := h.queue.Enqueue(tenantID, userID, batch)

	w.Header().Set("X-Request-ID", requestID)
	writeJSON(w, http.StatusAccepted, EventResponse{
		Status:    "accepted",
		Accepted:  accepted,
		RequestID: requestID,
	})
}
