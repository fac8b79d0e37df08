package api

import (
	"encoding/json"
	"net/http"

	"fundcrm/internal/service"
)

type generateHandoverRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	FromUserID  int64   `json:"from_user_id"`
	ToUserID    int64   `json:"to_user_id"`
	ClientIDs   []int64 `json:"client_ids"`
}

func (h *Handler) generateHandover(w http.ResponseWriter, r *http.Request) {
	var req generateHandoverRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	created, err := h.handovers.Generate(r.Context(), service.GenerateRequest{
		Title:       req.Title,
		Description: req.Description,
		FromUserID:  req.FromUserID,
		ToUserID:    req.ToUserID,
		ClientIDs:   req.ClientIDs,
	})
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toHandoverView(created))
}

func (h *Handler) listHandovers(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)
	rows, total, err := h.handovers.List(r.Context(), page)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writePaged(w, toHandoverViews(rows), page, total)
}

func (h *Handler) getHandover(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	pkg, err := h.handovers.Get(r.Context(), id)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toHandoverView(pkg))
}

// exportHandover returns the generated package content itself, not the
// envelope, so the response body is the handover document.
func (h *Handler) exportHandover(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	pkg, err := h.handovers.Export(r.Context(), id)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, json.RawMessage(pkg.Content))
}

func (h *Handler) finalizeHandover(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	pkg, err := h.handovers.Finalize(r.Context(), id)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toHandoverView(pkg))
}

func (h *Handler) acknowledgeHandover(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	pkg, err := h.handovers.Acknowledge(r.Context(), id)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toHandoverView(pkg))
}
