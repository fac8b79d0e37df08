package api

import (
	"net/http"

	"fundcrm/internal/domain"
)

type createUserRequest struct {
	Email        string  `json:"email"`
	Password     string  `json:"password"`
	FullName     string  `json:"full_name"`
	FullNameKana *string `json:"full_name_kana"`
	Role         string  `json:"role"`
	Department   *string `json:"department"`
	Title        *string `json:"title"`
	Phone        *string `json:"phone"`
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	created, err := h.users.Create(r.Context(), domain.CreateUser{
		Email:        req.Email,
		Password:     req.Password,
		FullName:     req.FullName,
		FullNameKana: req.FullNameKana,
		Role:         req.Role,
		Department:   req.Department,
		Title:        req.Title,
		Phone:        req.Phone,
	})
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserView(created))
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)
	rows, total, err := h.users.List(r.Context(), page)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	out := make([]userView, 0, len(rows))
	for i := range rows {
		out = append(out, toUserView(&rows[i]))
	}
	writePaged(w, out, page, total)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	u, err := h.users.Get(r.Context(), id)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserView(u))
}

type updateUserRequest struct {
	FullName     *string `json:"full_name"`
	FullNameKana *string `json:"full_name_kana"`
	Department   *string `json:"department"`
	Title        *string `json:"title"`
	Phone        *string `json:"phone"`
	Role         *string `json:"role"`
	IsActive     *bool   `json:"is_active"`
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	updated, err := h.users.Update(r.Context(), id, domain.UpdateUser{
		FullName:     req.FullName,
		FullNameKana: req.FullNameKana,
		Department:   req.Department,
		Title:        req.Title,
		Phone:        req.Phone,
		Role:         req.Role,
		IsActive:     req.IsActive,
	})
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserView(updated))
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if err := h.users.Delete(r.Context(), id); err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}
