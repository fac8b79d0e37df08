package api

import (
	"io"
	"net/http"
	"strconv"

	"fundcrm/internal/domain"
)

type createInteractionRequest struct {
	ClientID             int64   `json:"client_id"`
	InteractionType      string  `json:"interaction_type"`
	Subject              string  `json:"subject"`
	Description          *string `json:"description"`
	InteractionDate      string  `json:"interaction_date"`
	DurationMinutes      *int64  `json:"duration_minutes"`
	Location             *string `json:"location"`
	MeetingObjective     *string `json:"meeting_objective"`
	MeetingOutcome       *string `json:"meeting_outcome"`
	NextSteps            *string `json:"next_steps"`
	FollowUpDate         *string `json:"follow_up_date"`
	InternalParticipants *string `json:"internal_participants"`
	ExternalParticipants *string `json:"external_participants"`
	ProposalAmountJPY    *int64  `json:"proposal_amount_jpy"`
	ProposalStatus       *string `json:"proposal_status"`
	Sentiment            *string `json:"sentiment"`
	Priority             string  `json:"priority"`
}

func (h *Handler) createInteraction(w http.ResponseWriter, r *http.Request) {
	var req createInteractionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	created, err := h.interactions.Create(r.Context(), &domain.Interaction{
		ClientID:             req.ClientID,
		InteractionType:      req.InteractionType,
		Subject:              req.Subject,
		Description:          req.Description,
		InteractionDate:      req.InteractionDate,
		DurationMinutes:      req.DurationMinutes,
		Location:             req.Location,
		MeetingObjective:     req.MeetingObjective,
		MeetingOutcome:       req.MeetingOutcome,
		NextSteps:            req.NextSteps,
		FollowUpDate:         req.FollowUpDate,
		InternalParticipants: req.InternalParticipants,
		ExternalParticipants: req.ExternalParticipants,
		ProposalAmountJPY:    req.ProposalAmountJPY,
		ProposalStatus:       req.ProposalStatus,
		Sentiment:            req.Sentiment,
		Priority:             req.Priority,
	})
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toInteractionView(created))
}

func (h *Handler) listInteractions(w http.ResponseWriter, r *http.Request) {
	filter := domain.InteractionFilter{
		ClientID:        queryInt(r, "client_id"),
		InteractionType: queryStr(r, "type"),
		From:            queryStr(r, "from"),
		To:              queryStr(r, "to"),
		CreatedBy:       queryInt(r, "created_by"),
		Page:            pageFromQuery(r),
	}
	rows, total, err := h.interactions.List(r.Context(), filter)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writePaged(w, toInteractionViews(rows), filter.Page, total)
}

func (h *Handler) getInteraction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	i, err := h.interactions.Get(r.Context(), id)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toInteractionView(i))
}

type updateInteractionRequest struct {
	InteractionType      *string `json:"interaction_type"`
	Subject              *string `json:"subject"`
	Description          *string `json:"description"`
	InteractionDate      *string `json:"interaction_date"`
	DurationMinutes      *int64  `json:"duration_minutes"`
	Location             *string `json:"location"`
	MeetingObjective     *string `json:"meeting_objective"`
	MeetingOutcome       *string `json:"meeting_outcome"`
	NextSteps            *string `json:"next_steps"`
	FollowUpDate         *string `json:"follow_up_date"`
	InternalParticipants *string `json:"internal_participants"`
	ExternalParticipants *string `json:"external_participants"`
	ProposalAmountJPY    *int64  `json:"proposal_amount_jpy"`
	ProposalStatus       *string `json:"proposal_status"`
	Sentiment            *string `json:"sentiment"`
	Priority             *string `json:"priority"`
}

func (h *Handler) updateInteraction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	var req updateInteractionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	updated, err := h.interactions.Update(r.Context(), id, domain.UpdateInteraction{
		InteractionType:      req.InteractionType,
		Subject:              req.Subject,
		Description:          req.Description,
		InteractionDate:      req.InteractionDate,
		DurationMinutes:      req.DurationMinutes,
		Location:             req.Location,
		MeetingObjective:     req.MeetingObjective,
		MeetingOutcome:       req.MeetingOutcome,
		NextSteps:            req.NextSteps,
		FollowUpDate:         req.FollowUpDate,
		InternalParticipants: req.InternalParticipants,
		ExternalParticipants: req.ExternalParticipants,
		ProposalAmountJPY:    req.ProposalAmountJPY,
		ProposalStatus:       req.ProposalStatus,
		Sentiment:            req.Sentiment,
		Priority:             req.Priority,
	})
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toInteractionView(updated))
}

func (h *Handler) lockInteraction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	locked, err := h.interactions.Lock(r.Context(), id)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toInteractionView(locked))
}

func (h *Handler) deleteInteraction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if err := h.interactions.Delete(r.Context(), id); err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) listAttachments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	rows, err := h.interactions.ListAttachments(r.Context(), id)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAttachmentViews(rows))
}

// uploadAttachment accepts multipart form data with the file under the
// "file" field.
func (h *Handler) uploadAttachment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		h.writeErr(w, r, domain.ErrValidation("invalid multipart form: %v", err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeErr(w, r, domain.ErrValidation("file field is required"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	created, err := h.interactions.AddAttachment(r.Context(), id, header.Filename, contentType, file)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAttachmentView(created))
}

func (h *Handler) downloadAttachment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	a, f, err := h.interactions.OpenAttachment(r.Context(), id)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", a.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(a.SizeBytes, 10))
	w.Header().Set("Content-Disposition", `attachment; filename="`+a.FileName+`"`)
	_, _ = io.Copy(w, f)
}

func (h *Handler) deleteAttachment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if err := h.interactions.DeleteAttachment(r.Context(), id); err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
