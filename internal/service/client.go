package service

import (
	"context"

	"fundcrm/internal/domain"
)

type ClientService struct {
	repo  domain.ClientRepository
	audit *AuditService
}

func NewClientService(repo domain.ClientRepository, audit *AuditService) *ClientService {
	return &ClientService{repo: repo, audit: audit}
}

func (s *ClientService) Create(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	actor, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if c.CompanyName == "" {
		return nil, domain.ErrValidation("company_name is required")
	}
	if c.RelationshipStatus != "" && !domain.ValidRelationshipStatus(c.RelationshipStatus) {
		return nil, domain.ErrValidation("invalid relationship_status %q", c.RelationshipStatus)
	}
	if c.RiskRating != nil && !domain.ValidRiskRating(*c.RiskRating) {
		return nil, domain.ErrValidation("invalid risk_rating %q", *c.RiskRating)
	}
	if c.CompanyType != nil && !domain.ValidCompanyType(*c.CompanyType) {
		return nil, domain.ErrValidation("invalid company_type %q", *c.CompanyType)
	}
	c.CreatedBy = &actor.ID

	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, err
	}

	if err := s.audit.Record(ctx, domain.ActionCreate, domain.EntityClient,
		&created.ID, &created.CompanyName,
		map[string]any{"company_name": created.CompanyName}); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *ClientService) Get(ctx context.Context, id int64) (*domain.ClientDetail, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	return s.repo.GetDetail(ctx, id)
}

func (s *ClientService) List(ctx context.Context, filter domain.ClientFilter) ([]domain.ClientSummary, int64, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, filter)
}

func (s *ClientService) Update(ctx context.Context, id int64, upd domain.UpdateClient) (*domain.Client, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.CompanyName != nil && *upd.CompanyName == "" {
		return nil, domain.ErrValidation("company_name cannot be empty")
	}
	if upd.RelationshipStatus != nil && !domain.ValidRelationshipStatus(*upd.RelationshipStatus) {
		return nil, domain.ErrValidation("invalid relationship_status %q", *upd.RelationshipStatus)
	}
	if upd.RiskRating != nil && !domain.ValidRiskRating(*upd.RiskRating) {
		return nil, domain.ErrValidation("invalid risk_rating %q", *upd.RiskRating)
	}
	if upd.CompanyType != nil && !domain.ValidCompanyType(*upd.CompanyType) {
		return nil, domain.ErrValidation("invalid company_type %q", *upd.CompanyType)
	}

	fields := map[string]any{}
	details := map[string]any{}
	applyStrVal(fields, details, "company_name", existing.CompanyName, upd.CompanyName)
	applyStr(fields, details, "company_name_kana", existing.CompanyNameKana, upd.CompanyNameKana)
	applyStr(fields, details, "company_name_en", existing.CompanyNameEn, upd.CompanyNameEn)
	applyStr(fields, details, "industry", existing.Industry, upd.Industry)
	applyStr(fields, details, "sub_industry", existing.SubIndustry, upd.SubIndustry)
	applyStr(fields, details, "company_type", existing.CompanyType, upd.CompanyType)
	applyStr(fields, details, "registration_number", existing.RegistrationNumber, upd.RegistrationNumber)
	applyStr(fields, details, "address", existing.Address, upd.Address)
	applyStr(fields, details, "address_en", existing.AddressEn, upd.AddressEn)
	applyStr(fields, details, "city", existing.City, upd.City)
	applyStrVal(fields, details, "country", existing.Country, upd.Country)
	applyStr(fields, details, "phone", existing.Phone, upd.Phone)
	applyStr(fields, details, "website", existing.Website, upd.Website)
	applyStr(fields, details, "fiscal_year_end", existing.FiscalYearEnd, upd.FiscalYearEnd)
	applyInt(fields, details, "aum_jpy", existing.AumJPY, upd.AumJPY)
	applyInt(fields, details, "employee_count", existing.EmployeeCount, upd.EmployeeCount)
	applyStr(fields, details, "relationship_start_date", existing.RelationshipStartDate, upd.RelationshipStartDate)
	applyStrVal(fields, details, "relationship_status", existing.RelationshipStatus, upd.RelationshipStatus)
	applyStr(fields, details, "risk_rating", existing.RiskRating, upd.RiskRating)
	applyInt(fields, details, "assigned_rm_id", existing.AssignedRMID, upd.AssignedRMID)
	applyInt(fields, details, "capital_amount_jpy", existing.CapitalAmountJPY, upd.CapitalAmountJPY)
	applyInt(fields, details, "revenue_jpy", existing.RevenueJPY, upd.RevenueJPY)
	applyStr(fields, details, "stock_code", existing.StockCode, upd.StockCode)
	applyStr(fields, details, "founding_date", existing.FoundingDate, upd.FoundingDate)
	applyStr(fields, details, "representative_name", existing.RepresentativeName, upd.RepresentativeName)
	applyStr(fields, details, "representative_title", existing.RepresentativeTitle, upd.RepresentativeTitle)
	applyStr(fields, details, "notes", existing.Notes, upd.Notes)

	if len(fields) == 0 {
		return existing, nil
	}
	if err := s.repo.Update(ctx, id, fields); err != nil {
		return nil, err
	}

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.audit.Record(ctx, domain.ActionUpdate, domain.EntityClient,
		&id, &updated.CompanyName, details); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete marks a client as a former relationship. Client rows are never
// removed; the history behind them must stay resolvable.
func (s *ClientService) Delete(ctx context.Context, id int64) error {
	if _, err := requireRole(ctx, domain.RoleAdmin); err != nil {
		return err
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.RelationshipStatus == domain.RelationshipFormer {
		return nil
	}

	if err := s.repo.Update(ctx, id, map[string]any{
		"relationship_status": domain.RelationshipFormer,
	}); err != nil {
		return err
	}

	details := map[string]any{
		"soft_delete":     true,
		"previous_status": existing.RelationshipStatus,
	}
	return s.audit.Record(ctx, domain.ActionDelete, domain.EntityClient,
		&id, &existing.CompanyName, details)
}
