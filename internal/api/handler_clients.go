package api

import (
	"net/http"

	"fundcrm/internal/domain"
)

type createClientRequest struct {
	CompanyName           string  `json:"company_name"`
	CompanyNameKana       *string `json:"company_name_kana"`
	CompanyNameEn         *string `json:"company_name_en"`
	Industry              *string `json:"industry"`
	SubIndustry           *string `json:"sub_industry"`
	CompanyType           *string `json:"company_type"`
	RegistrationNumber    *string `json:"registration_number"`
	Address               *string `json:"address"`
	AddressEn             *string `json:"address_en"`
	City                  *string `json:"city"`
	Country               string  `json:"country"`
	Phone                 *string `json:"phone"`
	Website               *string `json:"website"`
	FiscalYearEnd         *string `json:"fiscal_year_end"`
	AumJPY                *int64  `json:"aum_jpy"`
	EmployeeCount         *int64  `json:"employee_count"`
	RelationshipStartDate *string `json:"relationship_start_date"`
	RelationshipStatus    string  `json:"relationship_status"`
	RiskRating            *string `json:"risk_rating"`
	AssignedRMID          *int64  `json:"assigned_rm_id"`
	CapitalAmountJPY      *int64  `json:"capital_amount_jpy"`
	RevenueJPY            *int64  `json:"revenue_jpy"`
	StockCode             *string `json:"stock_code"`
	FoundingDate          *string `json:"founding_date"`
	RepresentativeName    *string `json:"representative_name"`
	RepresentativeTitle   *string `json:"representative_title"`
	Notes                 *string `json:"notes"`
}

func (h *Handler) createClient(w http.ResponseWriter, r *http.Request) {
	var req createClientRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	created, err := h.clients.Create(r.Context(), &domain.Client{
		CompanyName:           req.CompanyName,
		CompanyNameKana:       req.CompanyNameKana,
		CompanyNameEn:         req.CompanyNameEn,
		Industry:              req.Industry,
		SubIndustry:           req.SubIndustry,
		CompanyType:           req.CompanyType,
		RegistrationNumber:    req.RegistrationNumber,
		Address:               req.Address,
		AddressEn:             req.AddressEn,
		City:                  req.City,
		Country:               req.Country,
		Phone:                 req.Phone,
		Website:               req.Website,
		FiscalYearEnd:         req.FiscalYearEnd,
		AumJPY:                req.AumJPY,
		EmployeeCount:         req.EmployeeCount,
		RelationshipStartDate: req.RelationshipStartDate,
		RelationshipStatus:    req.RelationshipStatus,
		RiskRating:            req.RiskRating,
		AssignedRMID:          req.AssignedRMID,
		CapitalAmountJPY:      req.CapitalAmountJPY,
		RevenueJPY:            req.RevenueJPY,
		StockCode:             req.StockCode,
		FoundingDate:          req.FoundingDate,
		RepresentativeName:    req.RepresentativeName,
		RepresentativeTitle:   req.RepresentativeTitle,
		Notes:                 req.Notes,
	})
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toClientView(created))
}

func (h *Handler) listClients(w http.ResponseWriter, r *http.Request) {
	filter := domain.ClientFilter{
		Search:             queryStr(r, "search"),
		RelationshipStatus: queryStr(r, "status"),
		Industry:           queryStr(r, "industry"),
		AssignedRMID:       queryInt(r, "assigned_rm_id"),
		Page:               pageFromQuery(r),
	}
	rows, total, err := h.clients.List(r.Context(), filter)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writePaged(w, toClientSummaryViews(rows), filter.Page, total)
}

func (h *Handler) getClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	detail, err := h.clients.Get(r.Context(), id)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toClientDetailView(detail))
}

type updateClientRequest struct {
	CompanyName           *string `json:"company_name"`
	CompanyNameKana       *string `json:"company_name_kana"`
	CompanyNameEn         *string `json:"company_name_en"`
	Industry              *string `json:"industry"`
	SubIndustry           *string `json:"sub_industry"`
	CompanyType           *string `json:"company_type"`
	RegistrationNumber    *string `json:"registration_number"`
	Address               *string `json:"address"`
	AddressEn             *string `json:"address_en"`
	City                  *string `json:"city"`
	Country               *string `json:"country"`
	Phone                 *string `json:"phone"`
	Website               *string `json:"website"`
	FiscalYearEnd         *string `json:"fiscal_year_end"`
	AumJPY                *int64  `json:"aum_jpy"`
	EmployeeCount         *int64  `json:"employee_count"`
	RelationshipStartDate *string `json:"relationship_start_date"`
	RelationshipStatus    *string `json:"relationship_status"`
	RiskRating            *string `json:"risk_rating"`
	AssignedRMID          *int64  `json:"assigned_rm_id"`
	CapitalAmountJPY      *int64  `json:"capital_amount_jpy"`
	RevenueJPY            *int64  `json:"revenue_jpy"`
	StockCode             *string `json:"stock_code"`
	FoundingDate          *string `json:"founding_date"`
	RepresentativeName    *string `json:"representative_name"`
	RepresentativeTitle   *string `json:"representative_title"`
	Notes                 *string `json:"notes"`
}

func (h *Handler) updateClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	var req updateClientRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	updated, err := h.clients.Update(r.Context(), id, domain.UpdateClient{
		CompanyName:           req.CompanyName,
		CompanyNameKana:       req.CompanyNameKana,
		CompanyNameEn:         req.CompanyNameEn,
		Industry:              req.Industry,
		SubIndustry:           req.SubIndustry,
		CompanyType:           req.CompanyType,
		RegistrationNumber:    req.RegistrationNumber,
		Address:               req.Address,
		AddressEn:             req.AddressEn,
		City:                  req.City,
		Country:               req.Country,
		Phone:                 req.Phone,
		Website:               req.Website,
		FiscalYearEnd:         req.FiscalYearEnd,
		AumJPY:                req.AumJPY,
		EmployeeCount:         req.EmployeeCount,
		RelationshipStartDate: req.RelationshipStartDate,
		RelationshipStatus:    req.RelationshipStatus,
		RiskRating:            req.RiskRating,
		AssignedRMID:          req.AssignedRMID,
		CapitalAmountJPY:      req.CapitalAmountJPY,
		RevenueJPY:            req.RevenueJPY,
		StockCode:             req.StockCode,
		FoundingDate:          req.FoundingDate,
		RepresentativeName:    req.RepresentativeName,
		RepresentativeTitle:   req.RepresentativeTitle,
		Notes:                 req.Notes,
	})
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toClientView(updated))
}

func (h *Handler) deleteClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if err := h.clients.Delete(r.Context(), id); err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "marked former"})
}

func (h *Handler) listClientContacts(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	activeOnly := r.URL.Query().Get("include_inactive") != "true"
	rows, err := h.contacts.ListForClient(r.Context(), id, activeOnly)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toContactViews(rows))
}

func (h *Handler) listClientCards(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	rows, _, err := h.cards.List(r.Context(), domain.BusinessCardFilter{
		ClientID: &id,
		Page:     domain.PageRequest{Page: 1, Limit: domain.MaxPageSize},
	})
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBusinessCardViews(rows))
}
