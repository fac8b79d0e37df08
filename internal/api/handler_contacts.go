package api

import (
	"net/http"

	"fundcrm/internal/domain"
)

type createContactRequest struct {
	ClientID               int64   `json:"client_id"`
	FirstName              string  `json:"first_name"`
	LastName               string  `json:"last_name"`
	FirstNameKana          *string `json:"first_name_kana"`
	LastNameKana           *string `json:"last_name_kana"`
	Title                  *string `json:"title"`
	Department             *string `json:"department"`
	Email                  *string `json:"email"`
	Phone                  *string `json:"phone"`
	Mobile                 *string `json:"mobile"`
	IsPrimaryContact       bool    `json:"is_primary_contact"`
	IsDecisionMaker        bool    `json:"is_decision_maker"`
	PreferredLanguage      string  `json:"preferred_language"`
	PreferredContactMethod string  `json:"preferred_contact_method"`
	Notes                  *string `json:"notes"`
}

func (h *Handler) createContact(w http.ResponseWriter, r *http.Request) {
	var req createContactRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	created, err := h.contacts.Create(r.Context(), &domain.Contact{
		ClientID:               req.ClientID,
		FirstName:              req.FirstName,
		LastName:               req.LastName,
		FirstNameKana:          req.FirstNameKana,
		LastNameKana:           req.LastNameKana,
		Title:                  req.Title,
		Department:             req.Department,
		Email:                  req.Email,
		Phone:                  req.Phone,
		Mobile:                 req.Mobile,
		IsPrimaryContact:       req.IsPrimaryContact,
		IsDecisionMaker:        req.IsDecisionMaker,
		PreferredLanguage:      req.PreferredLanguage,
		PreferredContactMethod: req.PreferredContactMethod,
		Notes:                  req.Notes,
	})
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toContactView(created))
}

func (h *Handler) getContact(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	c, err := h.contacts.Get(r.Context(), id)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toContactView(c))
}

type updateContactRequest struct {
	FirstName              *string `json:"first_name"`
	LastName               *string `json:"last_name"`
	FirstNameKana          *string `json:"first_name_kana"`
	LastNameKana           *string `json:"last_name_kana"`
	Title                  *string `json:"title"`
	Department             *string `json:"department"`
	Email                  *string `json:"email"`
	Phone                  *string `json:"phone"`
	Mobile                 *string `json:"mobile"`
	IsPrimaryContact       *bool   `json:"is_primary_contact"`
	IsDecisionMaker        *bool   `json:"is_decision_maker"`
	PreferredLanguage      *string `json:"preferred_language"`
	PreferredContactMethod *string `json:"preferred_contact_method"`
	Notes                  *string `json:"notes"`
}

func (h *Handler) updateContact(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	var req updateContactRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	updated, err := h.contacts.Update(r.Context(), id, domain.UpdateContact{
		FirstName:              req.FirstName,
		LastName:               req.LastName,
		FirstNameKana:          req.FirstNameKana,
		LastNameKana:           req.LastNameKana,
		Title:                  req.Title,
		Department:             req.Department,
		Email:                  req.Email,
		Phone:                  req.Phone,
		Mobile:                 req.Mobile,
		IsPrimaryContact:       req.IsPrimaryContact,
		IsDecisionMaker:        req.IsDecisionMaker,
		PreferredLanguage:      req.PreferredLanguage,
		PreferredContactMethod: req.PreferredContactMethod,
		Notes:                  req.Notes,
	})
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toContactView(updated))
}

func (h *Handler) deleteContact(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if err := h.contacts.Delete(r.Context(), id); err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}
