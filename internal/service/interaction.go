package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"fundcrm/internal/domain"
)

// maxAttachmentSize caps uploads at 20 MiB.
const maxAttachmentSize = 20 << 20

type InteractionService struct {
	repo          domain.InteractionRepository
	clients       domain.ClientRepository
	audit         *AuditService
	attachmentDir string
}

func NewInteractionService(repo domain.InteractionRepository, clients domain.ClientRepository, audit *AuditService, attachmentDir string) *InteractionService {
	return &InteractionService{repo: repo, clients: clients, audit: audit, attachmentDir: attachmentDir}
}

func (s *InteractionService) Create(ctx context.Context, i *domain.Interaction) (*domain.Interaction, error) {
	actor, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if i.Subject == "" {
		return nil, domain.ErrValidation("subject is required")
	}
	if i.InteractionDate == "" {
		return nil, domain.ErrValidation("interaction_date is required")
	}
	if !domain.ValidInteractionType(i.InteractionType) {
		return nil, domain.ErrValidation("invalid interaction_type %q", i.InteractionType)
	}
	if i.ProposalStatus != nil && !domain.ValidProposalStatus(*i.ProposalStatus) {
		return nil, domain.ErrValidation("invalid proposal_status %q", *i.ProposalStatus)
	}
	if i.Sentiment != nil && !domain.ValidSentiment(*i.Sentiment) {
		return nil, domain.ErrValidation("invalid sentiment %q", *i.Sentiment)
	}
	if i.Priority != "" && !domain.ValidPriority(i.Priority) {
		return nil, domain.ErrValidation("invalid priority %q", i.Priority)
	}
	if _, err := s.clients.GetByID(ctx, i.ClientID); err != nil {
		return nil, err
	}
	i.CreatedBy = actor.ID

	created, err := s.repo.Create(ctx, i)
	if err != nil {
		return nil, err
	}

	if err := s.audit.Record(ctx, domain.ActionCreate, domain.EntityInteraction,
		&created.ID, &created.Subject,
		map[string]any{"client_id": created.ClientID, "interaction_type": created.InteractionType}); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *InteractionService) Get(ctx context.Context, id int64) (*domain.Interaction, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *InteractionService) List(ctx context.Context, filter domain.InteractionFilter) ([]domain.Interaction, int64, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, filter)
}

func (s *InteractionService) Update(ctx context.Context, id int64, upd domain.UpdateInteraction) (*domain.Interaction, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.IsLocked {
		return nil, domain.ErrConflict("interaction %d is locked", id)
	}
	if upd.InteractionType != nil && !domain.ValidInteractionType(*upd.InteractionType) {
		return nil, domain.ErrValidation("invalid interaction_type %q", *upd.InteractionType)
	}
	if upd.ProposalStatus != nil && !domain.ValidProposalStatus(*upd.ProposalStatus) {
		return nil, domain.ErrValidation("invalid proposal_status %q", *upd.ProposalStatus)
	}
	if upd.Sentiment != nil && !domain.ValidSentiment(*upd.Sentiment) {
		return nil, domain.ErrValidation("invalid sentiment %q", *upd.Sentiment)
	}
	if upd.Priority != nil && !domain.ValidPriority(*upd.Priority) {
		return nil, domain.ErrValidation("invalid priority %q", *upd.Priority)
	}

	fields := map[string]any{}
	details := map[string]any{}
	applyStrVal(fields, details, "interaction_type", existing.InteractionType, upd.InteractionType)
	applyStrVal(fields, details, "subject", existing.Subject, upd.Subject)
	applyStr(fields, details, "description", existing.Description, upd.Description)
	applyStrVal(fields, details, "interaction_date", existing.InteractionDate, upd.InteractionDate)
	applyInt(fields, details, "duration_minutes", existing.DurationMinutes, upd.DurationMinutes)
	applyStr(fields, details, "location", existing.Location, upd.Location)
	applyStr(fields, details, "meeting_objective", existing.MeetingObjective, upd.MeetingObjective)
	applyStr(fields, details, "meeting_outcome", existing.MeetingOutcome, upd.MeetingOutcome)
	applyStr(fields, details, "next_steps", existing.NextSteps, upd.NextSteps)
	applyStr(fields, details, "follow_up_date", existing.FollowUpDate, upd.FollowUpDate)
	applyStr(fields, details, "internal_participants", existing.InternalParticipants, upd.InternalParticipants)
	applyStr(fields, details, "external_participants", existing.ExternalParticipants, upd.ExternalParticipants)
	applyInt(fields, details, "proposal_amount_jpy", existing.ProposalAmountJPY, upd.ProposalAmountJPY)
	applyStr(fields, details, "proposal_status", existing.ProposalStatus, upd.ProposalStatus)
	applyStr(fields, details, "sentiment", existing.Sentiment, upd.Sentiment)
	applyStrVal(fields, details, "priority", existing.Priority, upd.Priority)

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
	if err := s.audit.Record(ctx, domain.ActionUpdate, domain.EntityInteraction,
		&id, &updated.Subject, details); err != nil {
		return nil, err
	}
	return updated, nil
}

// Lock makes an interaction permanently read-only. Locking an already
// locked interaction is a conflict.
func (s *InteractionService) Lock(ctx context.Context, id int64) (*domain.Interaction, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.IsLocked {
		return nil, domain.ErrConflict("interaction %d is already locked", id)
	}
	if err := s.repo.Lock(ctx, id); err != nil {
		return nil, err
	}

	if err := s.audit.Record(ctx, domain.ActionLockInteraction, domain.EntityInteraction,
		&id, &existing.Subject, nil); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Delete removes an interaction and its attachments. Admin only, and
// locked interactions cannot be removed even by admins.
func (s *InteractionService) Delete(ctx context.Context, id int64) error {
	if _, err := requireRole(ctx, domain.RoleAdmin); err != nil {
		return err
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.IsLocked {
		return domain.ErrConflict("interaction %d is locked", id)
	}

	attachments, err := s.repo.ListAttachments(ctx, id)
	if err != nil {
		return err
	}
	for _, a := range attachments {
		if err := s.repo.DeleteAttachment(ctx, a.ID); err != nil {
			return err
		}
		_ = os.Remove(filepath.Join(s.attachmentDir, a.StoredName))
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	return s.audit.Record(ctx, domain.ActionDelete, domain.EntityInteraction,
		&id, &existing.Subject, map[string]any{"attachments_removed": len(attachments)})
}

// AddAttachment stores the uploaded file on disk under a generated name
// and records its metadata.
func (s *InteractionService) AddAttachment(ctx context.Context, interactionID int64, fileName, contentType string, r io.Reader) (*domain.Attachment, error) {
	actor, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if fileName == "" {
		return nil, domain.ErrValidation("file name is required")
	}
	interaction, err := s.repo.GetByID(ctx, interactionID)
	if err != nil {
		return nil, err
	}
	if interaction.IsLocked {
		return nil, domain.ErrConflict("interaction %d is locked", interactionID)
	}

	storedName := uuid.NewString() + filepath.Ext(fileName)
	path := filepath.Join(s.attachmentDir, storedName)
	if err := os.MkdirAll(s.attachmentDir, 0o755); err != nil {
		return nil, fmt.Errorf("create attachment dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create attachment file: %w", err)
	}
	size, err := io.Copy(f, io.LimitReader(r, maxAttachmentSize+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("store attachment: %w", err)
	}
	if size > maxAttachmentSize {
		_ = os.Remove(path)
		return nil, domain.ErrValidation("attachment exceeds %d bytes", maxAttachmentSize)
	}

	a := &domain.Attachment{
		InteractionID: interactionID,
		FileName:      fileName,
		StoredName:    storedName,
		ContentType:   contentType,
		SizeBytes:     size,
		UploadedBy:    actor.ID,
	}
	created, err := s.repo.AddAttachment(ctx, a)
	if err != nil {
		_ = os.Remove(path)
		return nil, err
	}

	if err := s.audit.Record(ctx, domain.ActionCreate, domain.EntityAttachment,
		&created.ID, &created.FileName,
		map[string]any{"interaction_id": interactionID, "size_bytes": size}); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *InteractionService) ListAttachments(ctx context.Context, interactionID int64) ([]domain.Attachment, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByID(ctx, interactionID); err != nil {
		return nil, err
	}
	return s.repo.ListAttachments(ctx, interactionID)
}

// OpenAttachment returns the attachment metadata and an open handle on
// the stored file. The caller closes the handle.
func (s *InteractionService) OpenAttachment(ctx context.Context, id int64) (*domain.Attachment, *os.File, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, nil, err
	}
	a, err := s.repo.GetAttachment(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(filepath.Join(s.attachmentDir, a.StoredName))
	if err != nil {
		return nil, nil, fmt.Errorf("open attachment: %w", err)
	}
	return a, f, nil
}

func (s *InteractionService) DeleteAttachment(ctx context.Context, id int64) error {
	if _, err := requireUser(ctx); err != nil {
		return err
	}
	a, err := s.repo.GetAttachment(ctx, id)
	if err != nil {
		return err
	}
	interaction, err := s.repo.GetByID(ctx, a.InteractionID)
	if err != nil {
		return err
	}
	if interaction.IsLocked {
		return domain.ErrConflict("interaction %d is locked", a.InteractionID)
	}

	if err := s.repo.DeleteAttachment(ctx, id); err != nil {
		return err
	}
	_ = os.Remove(filepath.Join(s.attachmentDir, a.StoredName))

	return s.audit.Record(ctx, domain.ActionDelete, domain.EntityAttachment,
		&id, &a.FileName, map[string]any{"interaction_id": a.InteractionID})
}
