package service

import (
	"context"

	"fundcrm/internal/domain"
)

type BusinessCardService struct {
	repo  domain.BusinessCardRepository
	audit *AuditService
}

func NewBusinessCardService(repo domain.BusinessCardRepository, audit *AuditService) *BusinessCardService {
	return &BusinessCardService{repo: repo, audit: audit}
}

func (s *BusinessCardService) Create(ctx context.Context, b *domain.BusinessCard) (*domain.BusinessCard, error) {
	actor, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if b.PersonName == nil && b.CompanyName == nil {
		return nil, domain.ErrValidation("person_name or company_name is required")
	}
	if b.OwnerUserID == nil {
		b.OwnerUserID = &actor.ID
	}

	created, err := s.repo.Create(ctx, b)
	if err != nil {
		return nil, err
	}

	label := created.Label()
	if err := s.audit.Record(ctx, domain.ActionCreate, domain.EntityBusinessCard,
		&created.ID, &label, nil); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *BusinessCardService) Get(ctx context.Context, id int64) (*domain.BusinessCard, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *BusinessCardService) List(ctx context.Context, filter domain.BusinessCardFilter) ([]domain.BusinessCard, int64, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, filter)
}

func (s *BusinessCardService) Update(ctx context.Context, id int64, upd domain.UpdateBusinessCard) (*domain.BusinessCard, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	details := map[string]any{}
	applyInt(fields, details, "contact_id", existing.ContactID, upd.ContactID)
	applyInt(fields, details, "client_id", existing.ClientID, upd.ClientID)
	applyStr(fields, details, "company_name", existing.CompanyName, upd.CompanyName)
	applyStr(fields, details, "person_name", existing.PersonName, upd.PersonName)
	applyStr(fields, details, "department", existing.Department, upd.Department)
	applyStr(fields, details, "title", existing.Title, upd.Title)
	applyStr(fields, details, "phone", existing.Phone, upd.Phone)
	applyStr(fields, details, "mobile", existing.Mobile, upd.Mobile)
	applyStr(fields, details, "email", existing.Email, upd.Email)
	applyStr(fields, details, "address", existing.Address, upd.Address)
	applyStr(fields, details, "website", existing.Website, upd.Website)
	applyStr(fields, details, "exchange_date", existing.ExchangeDate, upd.ExchangeDate)
	applyStr(fields, details, "notes", existing.Notes, upd.Notes)
	applyStr(fields, details, "tags", existing.Tags, upd.Tags)
	applyBool(fields, details, "is_digitized", existing.IsDigitized, upd.IsDigitized)

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
	label := updated.Label()
	if err := s.audit.Record(ctx, domain.ActionUpdate, domain.EntityBusinessCard,
		&id, &label, details); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a card. Cards are scan captures, not system records,
// so they are the one entity that hard-deletes.
func (s *BusinessCardService) Delete(ctx context.Context, id int64) error {
	if _, err := requireUser(ctx); err != nil {
		return err
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	label := existing.Label()
	return s.audit.Record(ctx, domain.ActionDelete, domain.EntityBusinessCard,
		&id, &label, nil)
}
