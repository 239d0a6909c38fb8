package handler

import (
	"net/http"

	"github.com/go-faster/jx"
)

// Analytics returns order statistics.
func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	s, err := h.analytics.Snapshot(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	encodeSnapshot(e, s)
	writeJSON(w, http.StatusOK, e.Bytes())
}
