package service

import (
	"context"

	"fundcrm/internal/domain"
)

type ContactService struct {
	repo    domain.ContactRepository
	clients domain.ClientRepository
	audit   *AuditService
}

func NewContactService(repo domain.ContactRepository, clients domain.ClientRepository, audit *AuditService) *ContactService {
	return &ContactService{repo: repo, clients: clients, audit: audit}
}

func (s *ContactService) Create(ctx context.Context, c *domain.Contact) (*domain.Contact, error) {
	actor, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if c.FirstName == "" || c.LastName == "" {
		return nil, domain.ErrValidation("first_name and last_name are required")
	}
	if c.PreferredContactMethod != "" && !domain.ValidContactMethod(c.PreferredContactMethod) {
		return nil, domain.ErrValidation("invalid preferred_contact_method %q", c.PreferredContactMethod)
	}
	if c.PreferredLanguage != "" && c.PreferredLanguage != "ja" && c.PreferredLanguage != "en" {
		return nil, domain.ErrValidation("invalid preferred_language %q", c.PreferredLanguage)
	}
	if _, err := s.clients.GetByID(ctx, c.ClientID); err != nil {
		return nil, err
	}
	c.CreatedBy = &actor.ID

	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, err
	}

	name := created.DisplayName()
	if err := s.audit.Record(ctx, domain.ActionCreate, domain.EntityClientContact,
		&created.ID, &name, map[string]any{"client_id": created.ClientID}); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *ContactService) Get(ctx context.Context, id int64) (*domain.Contact, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *ContactService) ListForClient(ctx context.Context, clientID int64, activeOnly bool) ([]domain.Contact, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListForClient(ctx, clientID, activeOnly)
}

func (s *ContactService) Update(ctx context.Context, id int64, upd domain.UpdateContact) (*domain.Contact, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.PreferredContactMethod != nil && !domain.ValidContactMethod(*upd.PreferredContactMethod) {
		return nil, domain.ErrValidation("invalid preferred_contact_method %q", *upd.PreferredContactMethod)
	}
	if upd.PreferredLanguage != nil && *upd.PreferredLanguage != "ja" && *upd.PreferredLanguage != "en" {
		return nil, domain.ErrValidation("invalid preferred_language %q", *upd.PreferredLanguage)
	}

	fields := map[string]any{}
	details := map[string]any{}
	applyStrVal(fields, details, "first_name", existing.FirstName, upd.FirstName)
	applyStrVal(fields, details, "last_name", existing.LastName, upd.LastName)
	applyStr(fields, details, "first_name_kana", existing.FirstNameKana, upd.FirstNameKana)
	applyStr(fields, details, "last_name_kana", existing.LastNameKana, upd.LastNameKana)
	applyStr(fields, details, "title", existing.Title, upd.Title)
	applyStr(fields, details, "department", existing.Department, upd.Department)
	applyStr(fields, details, "email", existing.Email, upd.Email)
	applyStr(fields, details, "phone", existing.Phone, upd.Phone)
	applyStr(fields, details, "mobile", existing.Mobile, upd.Mobile)
	applyBool(fields, details, "is_primary_contact", existing.IsPrimaryContact, upd.IsPrimaryContact)
	applyBool(fields, details, "is_decision_maker", existing.IsDecisionMaker, upd.IsDecisionMaker)
	applyStrVal(fields, details, "preferred_language", existing.PreferredLanguage, upd.PreferredLanguage)
	applyStrVal(fields, details, "preferred_contact_method", existing.PreferredContactMethod, upd.PreferredContactMethod)
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
	name := updated.DisplayName()
	if err := s.audit.Record(ctx, domain.ActionUpdate, domain.EntityClientContact,
		&id, &name, details); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete deactivates a contact. Contact rows stay behind for history.
func (s *ContactService) Delete(ctx context.Context, id int64) error {
	if _, err := requireUser(ctx); err != nil {
		return err
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !existing.IsActive {
		return nil
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}

	name := existing.DisplayName()
	details := map[string]any{}
	fieldChange(details, "is_active", true, false)
	return s.audit.Record(ctx, domain.ActionDelete, domain.EntityClientContact,
		&id, &name, details)
}
