package handlers

import (
	"net/http"

	apierrors "github.com/pribylovaa/estate-digest/internal/errors"
)

// GetDigest — GET /digest?scope=...
// Пустой или отсутствующий scope означает общенациональный дайджест.
func (h *Handlers) GetDigest(w http.ResponseWriter, r *http.Request) {
	scope := r.URL.Query().Get("scope")

	digest, err := h.Service.Digest(r.Context(), scope)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, digest)
}
