package api

import (
	"net/http"
	"time"

	"fundcrm/internal/domain"
)

func (h *Handler) listAudit(w http.ResponseWriter, r *http.Request) {
	filter := domain.AuditFilter{
		ActorID:    queryInt(r, "actor_id"),
		Action:     queryStr(r, "action"),
		EntityType: queryStr(r, "entity_type"),
		EntityID:   queryInt(r, "entity_id"),
		From:       queryStr(r, "from"),
		To:         queryStr(r, "to"),
		Page:       pageFromQuery(r),
	}
	rows, total, err := h.audit.List(r.Context(), filter)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writePaged(w, toAuditEntryViews(rows), filter.Page, total)
}

type verifyResponse struct {
	Valid                 bool   `json:"valid"`
	FirstBrokenSequenceID *int64 `json:"first_broken_sequence_id"`
	EntriesChecked        int64  `json:"entries_checked"`
}

func (h *Handler) verifyAudit(w http.ResponseWriter, r *http.Request) {
	res, err := h.audit.Verify(r.Context())
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, verifyResponse{
		Valid:                 res.Valid,
		FirstBrokenSequenceID: res.FirstBrokenSequenceID,
		EntriesChecked:        res.EntriesChecked,
	})
}

func (h *Handler) exportAudit(w http.ResponseWriter, r *http.Request) {
	name := "audit_log_" + time.Now().UTC().Format("20060102T150405Z") + ".csv"
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if err := h.audit.ExportCSV(r.Context(), w); err != nil {
		h.log.ErrorContext(r.Context(), "audit export failed", "error", err)
	}
}
