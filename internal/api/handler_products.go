package api

import (
	"net/http"

	"fundcrm/internal/domain"
)

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("include_inactive") != "true"
	rows, err := h.products.ListCatalog(r.Context(), activeOnly)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	out := make([]fundProductView, 0, len(rows))
	for i := range rows {
		out = append(out, toFundProductView(&rows[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	p, err := h.products.GetCatalogProduct(r.Context(), id)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toFundProductView(p))
}

type createProductRequest struct {
	ProductName        string  `json:"product_name"`
	ProductNameEn      *string `json:"product_name_en"`
	ProductType        string  `json:"product_type"`
	Description        *string `json:"description"`
	TypicalTenorMonths *int64  `json:"typical_tenor_months"`
	MinAmountJPY       *int64  `json:"min_amount_jpy"`
	MaxAmountJPY       *int64  `json:"max_amount_jpy"`
	BaseRate           *string `json:"base_rate"`
	SpreadBpsMin       *int64  `json:"spread_bps_min"`
	SpreadBpsMax       *int64  `json:"spread_bps_max"`
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	created, err := h.products.CreateCatalogProduct(r.Context(), &domain.FundProduct{
		ProductName:        req.ProductName,
		ProductNameEn:      req.ProductNameEn,
		ProductType:        req.ProductType,
		Description:        req.Description,
		TypicalTenorMonths: req.TypicalTenorMonths,
		MinAmountJPY:       req.MinAmountJPY,
		MaxAmountJPY:       req.MaxAmountJPY,
		BaseRate:           req.BaseRate,
		SpreadBpsMin:       req.SpreadBpsMin,
		SpreadBpsMax:       req.SpreadBpsMax,
	})
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toFundProductView(created))
}

type assignProductRequest struct {
	ProductID         int64   `json:"product_id"`
	FacilityAmountJPY *int64  `json:"facility_amount_jpy"`
	SpreadBps         *int64  `json:"spread_bps"`
	StartDate         *string `json:"start_date"`
	MaturityDate      *string `json:"maturity_date"`
	Status            string  `json:"status"`
	Notes             *string `json:"notes"`
}

func (h *Handler) assignProduct(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	var req assignProductRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	created, err := h.products.Assign(r.Context(), &domain.ClientProduct{
		ClientID:          clientID,
		ProductID:         req.ProductID,
		FacilityAmountJPY: req.FacilityAmountJPY,
		SpreadBps:         req.SpreadBps,
		StartDate:         req.StartDate,
		MaturityDate:      req.MaturityDate,
		Status:            req.Status,
		Notes:             req.Notes,
	})
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toClientProductView(created))
}

func (h *Handler) listClientProducts(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	rows, err := h.products.ListForClient(r.Context(), clientID)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toClientProductViews(rows))
}

type updateClientProductRequest struct {
	FacilityAmountJPY *int64  `json:"facility_amount_jpy"`
	SpreadBps         *int64  `json:"spread_bps"`
	StartDate         *string `json:"start_date"`
	MaturityDate      *string `json:"maturity_date"`
	Status            *string `json:"status"`
	Notes             *string `json:"notes"`
}

func (h *Handler) updateClientProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	var req updateClientProductRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	updated, err := h.products.UpdateAssignment(r.Context(), id, domain.UpdateClientProduct{
		FacilityAmountJPY: req.FacilityAmountJPY,
		SpreadBps:         req.SpreadBps,
		StartDate:         req.StartDate,
		MaturityDate:      req.MaturityDate,
		Status:            req.Status,
		Notes:             req.Notes,
	})
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toClientProductView(updated))
}
