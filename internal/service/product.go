package service

import (
	"context"

	"fundcrm/internal/domain"
)

type ProductService struct {
	repo    domain.ProductRepository
	clients domain.ClientRepository
	audit   *AuditService
}

func NewProductService(repo domain.ProductRepository, clients domain.ClientRepository, audit *AuditService) *ProductService {
	return &ProductService{repo: repo, clients: clients, audit: audit}
}

func (s *ProductService) ListCatalog(ctx context.Context, activeOnly bool) ([]domain.FundProduct, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListFundProducts(ctx, activeOnly)
}

func (s *ProductService) GetCatalogProduct(ctx context.Context, id int64) (*domain.FundProduct, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	return s.repo.GetFundProduct(ctx, id)
}

// CreateCatalogProduct adds a product to the catalog. Admin only.
func (s *ProductService) CreateCatalogProduct(ctx context.Context, p *domain.FundProduct) (*domain.FundProduct, error) {
	if _, err := requireRole(ctx, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if p.ProductName == "" {
		return nil, domain.ErrValidation("product_name is required")
	}
	if !domain.ValidProductType(p.ProductType) {
		return nil, domain.ErrValidation("invalid product_type %q", p.ProductType)
	}

	created, err := s.repo.CreateFundProduct(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := s.audit.Record(ctx, domain.ActionCreate, domain.EntityFundProduct,
		&created.ID, &created.ProductName,
		map[string]any{"product_type": created.ProductType}); err != nil {
		return nil, err
	}
	return created, nil
}

// Assign opens a facility of a catalog product for a client.
func (s *ProductService) Assign(ctx context.Context, cp *domain.ClientProduct) (*domain.ClientProduct, error) {
	actor, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if cp.Status != "" && !domain.ValidProductStatus(cp.Status) {
		return nil, domain.ErrValidation("invalid status %q", cp.Status)
	}
	if _, err := s.clients.GetByID(ctx, cp.ClientID); err != nil {
		return nil, err
	}
	product, err := s.repo.GetFundProduct(ctx, cp.ProductID)
	if err != nil {
		return nil, err
	}
	cp.CreatedBy = &actor.ID

	created, err := s.repo.AssignToClient(ctx, cp)
	if err != nil {
		return nil, err
	}
	if err := s.audit.Record(ctx, domain.ActionCreate, domain.EntityClientProduct,
		&created.ID, &product.ProductName,
		map[string]any{"client_id": created.ClientID, "product_id": created.ProductID}); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *ProductService) ListForClient(ctx context.Context, clientID int64) ([]domain.ClientProduct, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListForClient(ctx, clientID)
}

// UpdateAssignment changes a facility's terms or moves it through its
// status transitions. Facilities are never deleted.
func (s *ProductService) UpdateAssignment(ctx context.Context, id int64, upd domain.UpdateClientProduct) (*domain.ClientProduct, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetClientProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Status != nil && !domain.ValidProductStatus(*upd.Status) {
		return nil, domain.ErrValidation("invalid status %q", *upd.Status)
	}

	fields := map[string]any{}
	details := map[string]any{}
	applyInt(fields, details, "facility_amount_jpy", existing.FacilityAmountJPY, upd.FacilityAmountJPY)
	applyInt(fields, details, "spread_bps", existing.SpreadBps, upd.SpreadBps)
	applyStr(fields, details, "start_date", existing.StartDate, upd.StartDate)
	applyStr(fields, details, "maturity_date", existing.MaturityDate, upd.MaturityDate)
	applyStrVal(fields, details, "status", existing.Status, upd.Status)
	applyStr(fields, details, "notes", existing.Notes, upd.Notes)

	if len(fields) == 0 {
		return existing, nil
	}
	if err := s.repo.UpdateClientProduct(ctx, id, fields); err != nil {
		return nil, err
	}

	updated, err := s.repo.GetClientProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.audit.Record(ctx, domain.ActionUpdate, domain.EntityClientProduct,
		&id, updated.ProductName, details); err != nil {
		return nil, err
	}
	return updated, nil
}
