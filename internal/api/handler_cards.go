package api

import (
	"net/http"

	"fundcrm/internal/domain"
)

type createCardRequest struct {
	ContactID    *int64  `json:"contact_id"`
	ClientID     *int64  `json:"client_id"`
	ImagePath    string  `json:"image_path"`
	CompanyName  *string `json:"company_name"`
	PersonName   *string `json:"person_name"`
	Department   *string `json:"department"`
	Title        *string `json:"title"`
	Phone        *string `json:"phone"`
	Mobile       *string `json:"mobile"`
	Email        *string `json:"email"`
	Address      *string `json:"address"`
	Website      *string `json:"website"`
	ExchangeDate *string `json:"exchange_date"`
	OwnerUserID  *int64  `json:"owner_user_id"`
	Notes        *string `json:"notes"`
	Tags         *string `json:"tags"`
	IsDigitized  bool    `json:"is_digitized"`
}

func (h *Handler) createCard(w http.ResponseWriter, r *http.Request) {
	var req createCardRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	created, err := h.cards.Create(r.Context(), &domain.BusinessCard{
		ContactID:    req.ContactID,
		ClientID:     req.ClientID,
		ImagePath:    req.ImagePath,
		CompanyName:  req.CompanyName,
		PersonName:   req.PersonName,
		Department:   req.Department,
		Title:        req.Title,
		Phone:        req.Phone,
		Mobile:       req.Mobile,
		Email:        req.Email,
		Address:      req.Address,
		Website:      req.Website,
		ExchangeDate: req.ExchangeDate,
		OwnerUserID:  req.OwnerUserID,
		Notes:        req.Notes,
		Tags:         req.Tags,
		IsDigitized:  req.IsDigitized,
	})
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBusinessCardView(created))
}

func (h *Handler) listCards(w http.ResponseWriter, r *http.Request) {
	filter := domain.BusinessCardFilter{
		Search:      queryStr(r, "search"),
		ClientID:    queryInt(r, "client_id"),
		OwnerUserID: queryInt(r, "owner_user_id"),
		Page:        pageFromQuery(r),
	}
	rows, total, err := h.cards.List(r.Context(), filter)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writePaged(w, toBusinessCardViews(rows), filter.Page, total)
}

func (h *Handler) getCard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	b, err := h.cards.Get(r.Context(), id)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBusinessCardView(b))
}

type updateCardRequest struct {
	ContactID    *int64  `json:"contact_id"`
	ClientID     *int64  `json:"client_id"`
	CompanyName  *string `json:"company_name"`
	PersonName   *string `json:"person_name"`
	Department   *string `json:"department"`
	Title        *string `json:"title"`
	Phone        *string `json:"phone"`
	Mobile       *string `json:"mobile"`
	Email        *string `json:"email"`
	Address      *string `json:"address"`
	Website      *string `json:"website"`
	ExchangeDate *string `json:"exchange_date"`
	Notes        *string `json:"notes"`
	Tags         *string `json:"tags"`
	IsDigitized  *bool   `json:"is_digitized"`
}

func (h *Handler) updateCard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	var req updateCardRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	updated, err := h.cards.Update(r.Context(), id, domain.UpdateBusinessCard{
		ContactID:    req.ContactID,
		ClientID:     req.ClientID,
		CompanyName:  req.CompanyName,
		PersonName:   req.PersonName,
		Department:   req.Department,
		Title:        req.Title,
		Phone:        req.Phone,
		Mobile:       req.Mobile,
		Email:        req.Email,
		Address:      req.Address,
		Website:      req.Website,
		ExchangeDate: req.ExchangeDate,
		Notes:        req.Notes,
		Tags:         req.Tags,
		IsDigitized:  req.IsDigitized,
	})
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBusinessCardView(updated))
}

func (h *Handler) deleteCard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if err := h.cards.Delete(r.Context(), id); err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
