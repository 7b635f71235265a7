package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/xay/video-feed-service/internal/domain"
	"github.com/xay/video-feed-service/internal/service"
)

// GET /v1/feed
func (h *Handler) GetFeed(w http.ResponseWriter, r *http.Request) {
	tenantID, userID, requestID, ok := requestIdentity(w, r)
	if !ok {
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 || parsed > 50 {
			writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid limit parameter")
			return
		}
		limit = parsed
	}

	cursor := r.URL.Query().Get("cursor")
	ifNoneMatch := r.Header.Get("If-None-Match")

	page, err := h.feeds.Feed(r.Context(), tenantID, userID, limit, cursor, ifNoneMatch)
	if err != nil {
		if errors.Is(err, service.ErrNotModified) {
			w.Header().Set("ETag", ifNoneMatch)
			w.Header().Set("X-Request-ID", requestID)
			w.WriteHeader(http.StatusNotModified)
			return
		}
		if errors.Is(err, domain.ErrTenantNotFound) {
			writeError(w, http.StatusNotFound, "tenant_not_found",
				fmt.Sprintf("Tenant with ID %d does not exist", tenantID))
			return
		}
		h.log.Error().Int64("tenant_id", tenantID).Str("user_id", userID).Err(err).Msg("feed generation failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
		return
	}

	if page.ETag != "" {
		w.Header().Set("ETag", page.ETag)
	}
	w.Header().Set("Cache-Control", fmt.Sprintf("private, max-age=%d", page.Meta.TTLHintSeconds))
	w.Header().Set("X-Feed-Type", page.Meta.FeedType)
	w.Header().Set("X-Request-ID", requestID)
	writeJSON(w, http.StatusOK, page)
}

// requestIdentity parses the tenant/user headers shared by the feed and
// event endpoints, writing the 400 itself when they are missing.
func requestIdentity(w http.ResponseWriter, r *http.Request) (tenantID int64, userID, requestID string, ok bool) {
	tenantStr := r.Header.Get("X-Tenant-ID")
	tenantID, err := strconv.ParseInt(tenantStr, 10, 64)
	if err != nil || tenantID <= 0 {
		writeError(w, http.StatusBadRequest, "missing_header", "Required header 'X-Tenant-ID' is missing or invalid")
		return 0, "", "", false
	}

	userID = r.Header.Get("X-User-ID")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing_header", "Required header 'X-User-ID' is missing")
		return 0, "", "", false
	}

	requestID = r.Header.Get("X-Request-ID")
	if requestID == "" {
		requestID = uuid.New().String()
	}
	return tenantID, userID, requestID, true
}
