package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"fundcrm/internal/domain"
)

// handoverRecentInteractions caps how many interactions each client
// section carries.
const handoverRecentInteractions = 10

type HandoverService struct {
	repo         domain.HandoverRepository
	clients      domain.ClientRepository
	interactions domain.InteractionRepository
	users        domain.UserRepository
	audit        *AuditService
}

func NewHandoverService(repo domain.HandoverRepository, clients domain.ClientRepository,
	interactions domain.InteractionRepository, users domain.UserRepository, audit *AuditService) *HandoverService {
	return &HandoverService{
		repo:         repo,
		clients:      clients,
		interactions: interactions,
		users:        users,
		audit:        audit,
	}
}

// GenerateRequest describes a handover package to build.
type GenerateRequest struct {
	Title       string
	Description *string
	FromUserID  int64
	ToUserID    int64
	ClientIDs   []int64
}

// Generate builds a draft package: one summarized section per client,
// fetched concurrently, serialized into the package content.
func (s *HandoverService) Generate(ctx context.Context, req GenerateRequest) (*domain.HandoverPackage, error) {
	actor, err := requireRole(ctx, domain.RoleAdmin, domain.RoleManager)
	if err != nil {
		return nil, err
	}
	if req.Title == "" {
		return nil, domain.ErrValidation("title is required")
	}
	if len(req.ClientIDs) == 0 {
		return nil, domain.ErrValidation("at least one client is required")
	}
	if req.FromUserID == req.ToUserID {
		return nil, domain.ErrValidation("from_user and to_user must differ")
	}
	if _, err := s.users.GetActiveByID(ctx, req.FromUserID); err != nil {
		return nil, domain.ErrValidation("from_user %d is not an active user", req.FromUserID)
	}
	if _, err := s.users.GetActiveByID(ctx, req.ToUserID); err != nil {
		return nil, domain.ErrValidation("to_user %d is not an active user", req.ToUserID)
	}

	sections := make([]domain.HandoverClientSection, len(req.ClientIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for idx, clientID := range req.ClientIDs {
		idx, clientID := idx, clientID
		g.Go(func() error {
			section, err := s.buildClientSection(gctx, clientID)
			if err != nil {
				return err
			}
			sections[idx] = *section
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	content := domain.HandoverContent{
		GeneratedAt: domain.NewAuditTimestamp(time.Now()),
		Clients:     sections,
	}
	body, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("serialize handover content: %w", err)
	}

	created, err := s.repo.Create(ctx, &domain.HandoverPackage{
		Title:       req.Title,
		Description: req.Description,
		FromUserID:  req.FromUserID,
		ToUserID:    req.ToUserID,
		ClientIDs:   req.ClientIDs,
		Content:     string(body),
		CreatedBy:   actor.ID,
	})
	if err != nil {
		return nil, err
	}

	if err := s.audit.Record(ctx, domain.ActionHandoverGenerate, domain.EntityHandoverPackage,
		&created.ID, &created.Title,
		map[string]any{
			"from_user_id": req.FromUserID,
			"to_user_id":   req.ToUserID,
			"client_count": len(req.ClientIDs),
		}); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *HandoverService) buildClientSection(ctx context.Context, clientID int64) (*domain.HandoverClientSection, error) {
	detail, err := s.clients.GetDetail(ctx, clientID)
	if err != nil {
		return nil, err
	}

	recent, _, err := s.interactions.List(ctx, domain.InteractionFilter{
		ClientID: &clientID,
		Page:     domain.PageRequest{Page: 1, Limit: handoverRecentInteractions},
	})
	if err != nil {
		return nil, err
	}

	section := &domain.HandoverClientSection{
		ClientID:    clientID,
		CompanyName: detail.CompanyName,
		RelationshipSummary: fmt.Sprintf("%s relationship, %d interactions in the last 90 days",
			detail.RelationshipStatus, detail.RecentInteractionCount),
	}
	for _, i := range recent {
		note := domain.HandoverNote{
			Date:    i.InteractionDate,
			Type:    i.InteractionType,
			Subject: i.Subject,
		}
		if i.MeetingOutcome != nil {
			note.Summary = *i.MeetingOutcome
		} else if i.Description != nil {
			note.Summary = *i.Description
		}
		section.RecentInteractions = append(section.RecentInteractions, note)
	}
	for _, c := range detail.Contacts {
		section.KeyContacts = append(section.KeyContacts, domain.HandoverKeyContact{
			Name:             c.DisplayName(),
			Title:            c.Title,
			IsPrimary:        c.IsPrimaryContact,
			PreferredContact: c.PreferredContactMethod,
			Notes:            c.Notes,
		})
	}
	for _, p := range detail.Products {
		if p.Status != "active" {
			continue
		}
		name := ""
		if p.ProductName != nil {
			name = *p.ProductName
		}
		section.ActiveProducts = append(section.ActiveProducts, domain.HandoverProduct{
			ProductName:       name,
			FacilityAmountJPY: p.FacilityAmountJPY,
			Status:            p.Status,
			MaturityDate:      p.MaturityDate,
		})
	}
	return section, nil
}

func (s *HandoverService) Get(ctx context.Context, id int64) (*domain.HandoverPackage, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *HandoverService) List(ctx context.Context, page domain.PageRequest) ([]domain.HandoverPackage, int64, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, page)
}

// Export returns a package for download and records the export in the
// audit chain.
func (s *HandoverService) Export(ctx context.Context, id int64) (*domain.HandoverPackage, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.audit.Record(ctx, domain.ActionExport, domain.EntityHandoverPackage,
		&id, &h.Title, map[string]any{"status": h.Status}); err != nil {
		return nil, err
	}
	return h, nil
}

// Finalize freezes a draft package. Only the handing-over manager, the
// package's creator, or an admin may finalize.
func (s *HandoverService) Finalize(ctx context.Context, id int64) (*domain.HandoverPackage, error) {
	actor, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if h.Status != domain.HandoverDraft {
		return nil, domain.ErrConflict("handover package %d is %s, not draft", id, h.Status)
	}
	if actor.Role != domain.RoleAdmin && actor.ID != h.FromUserID && actor.ID != h.CreatedBy {
		return nil, domain.ErrAccessDenied("only the handing-over manager may finalize")
	}

	if err := s.repo.SetStatus(ctx, id, domain.HandoverFinalized, actor.ID); err != nil {
		return nil, err
	}
	if err := s.audit.Record(ctx, domain.ActionHandoverFinalize, domain.EntityHandoverPackage,
		&id, &h.Title, nil); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Acknowledge confirms receipt. Only the receiving manager may
// acknowledge, and only once the package is finalized.
func (s *HandoverService) Acknowledge(ctx context.Context, id int64) (*domain.HandoverPackage, error) {
	actor, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if h.Status != domain.HandoverFinalized {
		return nil, domain.ErrConflict("handover package %d is %s, not finalized", id, h.Status)
	}
	if actor.ID != h.ToUserID {
		return nil, domain.ErrAccessDenied("only the receiving manager may acknowledge")
	}

	if err := s.repo.SetStatus(ctx, id, domain.HandoverAcknowledged, actor.ID); err != nil {
		return nil, err
	}
	if err := s.audit.Record(ctx, domain.ActionHandoverAcknowledge, domain.EntityHandoverPackage,
		&id, &h.Title, nil); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}
