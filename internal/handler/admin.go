package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// POST /v1/admin/tenants/{tenantID}/candidates/rebuild
//
// External invalidation trigger: bumps the candidate version, evicts the
// cached set, and invalidates every cached feed for the tenant so the next
// requests re-rank against the new catalog.
func (h *Handler) RebuildCandidates(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := adminTenantID(w, r)
	if !ok {
		return
	}

	h.index.Rebuild(tenantID)
	if err := h.store.EvictTenantFeeds(r.Context(), tenantID); err != nil {
		h.log.Warn().Int64("tenant_id", tenantID).Err(err).Msg("tenant feed eviction failed")
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"status":  "rebuilt",
		"version": h.index.Version(tenantID),
	})
}

// POST /v1/admin/tenants/{tenantID}/config/invalidate
func (h *Handler) InvalidateTenantConfig(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := adminTenantID(w, r)
	if !ok {
		return
	}

	h.tenants.Invalidate(tenantID)
	w.WriteHeader(http.StatusNoContent)
}

func adminTenantID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	tenantID, err := strconv.ParseInt(chi.URLParam(r, "tenantID"), 10, 64)
	if err != nil || tenantID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid tenantID parameter")
		return 0, false
	}
	return tenantID, true
}
