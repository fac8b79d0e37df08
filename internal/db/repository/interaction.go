package repository

import (
	"context"
	"database/sql"
	"strings"

	"fundcrm/internal/domain"
)

type InteractionRepo struct {
	db *sql.DB
}

func NewInteractionRepo(db *sql.DB) *InteractionRepo {
	return &InteractionRepo{db: db}
}

// interactionSelect joins the client name, creator name, and attachment
// count that list and detail views need.
const interactionSelect = `
	SELECT i.id, i.client_id, c.company_name, i.interaction_type, i.subject, i.description,
		i.interaction_date, i.duration_minutes, i.location, i.meeting_objective,
		i.meeting_outcome, i.next_steps, i.follow_up_date, i.internal_participants,
		i.external_participants, i.proposal_amount_jpy, i.proposal_status, i.sentiment,
		i.priority, i.is_locked, i.locked_at, i.created_by, u.full_name,
		(SELECT COUNT(*) FROM attachments a WHERE a.interaction_id = i.id),
		i.created_at, i.updated_at
	FROM interactions i
	JOIN clients c ON c.id = i.client_id
	JOIN users u ON u.id = i.created_by`

func (r *InteractionRepo) Create(ctx context.Context, i *domain.Interaction) (*domain.Interaction, error) {
	priority := i.Priority
	if priority == "" {
		priority = "medium"
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO interactions (client_id, interaction_type, subject, description,
			interaction_date, duration_minutes, location, meeting_objective, meeting_outcome,
			next_steps, follow_up_date, internal_participants, external_participants,
			proposal_amount_jpy, proposal_status, sentiment, priority, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		i.ClientID, i.InteractionType, i.Subject, strArg(i.Description), i.InteractionDate,
		intArg(i.DurationMinutes), strArg(i.Location), strArg(i.MeetingObjective),
		strArg(i.MeetingOutcome), strArg(i.NextSteps), strArg(i.FollowUpDate),
		strArg(i.InternalParticipants), strArg(i.ExternalParticipants),
		intArg(i.ProposalAmountJPY), strArg(i.ProposalStatus), strArg(i.Sentiment),
		priority, i.CreatedBy)
	if err != nil {
		return nil, mapDBError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *InteractionRepo) GetByID(ctx context.Context, id int64) (*domain.Interaction, error) {
	row := r.db.QueryRowContext(ctx, interactionSelect+` WHERE i.id = ?`, id)
	i, err := scanInteraction(row)
	if err != nil {
		return nil, mapDBError(err)
	}
	return i, nil
}

func (r *InteractionRepo) List(ctx context.Context, filter domain.InteractionFilter) ([]domain.Interaction, int64, error) {
	var conds []string
	var args []any
	if filter.ClientID != nil {
		conds = append(conds, "i.client_id = ?")
		args = append(args, *filter.ClientID)
	}
	if filter.InteractionType != nil {
		conds = append(conds, "i.interaction_type = ?")
		args = append(args, *filter.InteractionType)
	}
	if filter.From != nil {
		conds = append(conds, "i.interaction_date >= ?")
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conds = append(conds, "i.interaction_date <= ?")
		args = append(args, *filter.To)
	}
	if filter.CreatedBy != nil {
		conds = append(conds, "i.created_by = ?")
		args = append(args, *filter.CreatedBy)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM interactions i`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listArgs := append(append([]any{}, args...),
		filter.Page.EffectiveLimit(), filter.Page.Offset())
	rows, err := r.db.QueryContext(ctx,
		interactionSelect+where+` ORDER BY i.interaction_date DESC, i.id DESC LIMIT ? OFFSET ?`,
		listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.Interaction
	for rows.Next() {
		i, err := scanInteraction(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *i)
	}
	return out, total, rows.Err()
}

func (r *InteractionRepo) Update(ctx context.Context, id int64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	set, args := buildUpdate(fields, true)
	args = append(args, id)
	_, err := r.db.ExecContext(ctx, `UPDATE interactions SET `+set+` WHERE id = ?`, args...)
	return mapDBError(err)
}

func (r *InteractionRepo) Lock(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE interactions SET is_locked = 1, locked_at = datetime('now'),
			updated_at = datetime('now') WHERE id = ?`, id)
	return mapDBError(err)
}

func (r *InteractionRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM interactions WHERE id = ?`, id)
	if err != nil {
		return mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &domain.NotFoundError{Message: "interaction not found"}
	}
	return nil
}

func (r *InteractionRepo) AddAttachment(ctx context.Context, a *domain.Attachment) (*domain.Attachment, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO attachments (interaction_id, file_name, stored_name, content_type, size_bytes, uploaded_by)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.InteractionID, a.FileName, a.StoredName, a.ContentType, a.SizeBytes, a.UploadedBy)
	if err != nil {
		return nil, mapDBError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetAttachment(ctx, id)
}

func (r *InteractionRepo) GetAttachment(ctx context.Context, id int64) (*domain.Attachment, error) {
	var a domain.Attachment
	var createdAt string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, interaction_id, file_name, stored_name, content_type, size_bytes, uploaded_by, created_at
		 FROM attachments WHERE id = ?`, id).
		Scan(&a.ID, &a.InteractionID, &a.FileName, &a.StoredName, &a.ContentType,
			&a.SizeBytes, &a.UploadedBy, &createdAt)
	if err != nil {
		return nil, mapDBError(err)
	}
	a.CreatedAt = parseTime(createdAt)
	return &a, nil
}

func (r *InteractionRepo) ListAttachments(ctx context.Context, interactionID int64) ([]domain.Attachment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, interaction_id, file_name, stored_name, content_type, size_bytes, uploaded_by, created_at
		 FROM attachments WHERE interaction_id = ? ORDER BY id ASC`, interactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.Attachment
	for rows.Next() {
		var a domain.Attachment
		var createdAt string
		if err := rows.Scan(&a.ID, &a.InteractionID, &a.FileName, &a.StoredName,
			&a.ContentType, &a.SizeBytes, &a.UploadedBy, &createdAt); err != nil {
			return nil, err
		}
		a.CreatedAt = parseTime(createdAt)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *InteractionRepo) DeleteAttachment(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM attachments WHERE id = ?`, id)
	if err != nil {
		return mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &domain.NotFoundError{Message: "attachment not found"}
	}
	return nil
}

func scanInteraction(row rowScanner) (*domain.Interaction, error) {
	var i domain.Interaction
	var companyName, description, location, objective, outcome, nextSteps, followUp,
		internal, external, proposalStatus, sentiment, lockedAt, creatorName sql.NullString
	var duration, proposalAmount sql.NullInt64
	var locked int64
	var createdAt, updatedAt string
	if err := row.Scan(&i.ID, &i.ClientID, &companyName, &i.InteractionType, &i.Subject,
		&description, &i.InteractionDate, &duration, &location, &objective, &outcome,
		&nextSteps, &followUp, &internal, &external, &proposalAmount, &proposalStatus,
		&sentiment, &i.Priority, &locked, &lockedAt, &i.CreatedBy, &creatorName,
		&i.AttachmentCount, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	i.CompanyName = nullStr(companyName)
	i.Description = nullStr(description)
	i.DurationMinutes = nullInt(duration)
	i.Location = nullStr(location)
	i.MeetingObjective = nullStr(objective)
	i.MeetingOutcome = nullStr(outcome)
	i.NextSteps = nullStr(nextSteps)
	i.FollowUpDate = nullStr(followUp)
	i.InternalParticipants = nullStr(internal)
	i.ExternalParticipants = nullStr(external)
	i.ProposalAmountJPY = nullInt(proposalAmount)
	i.ProposalStatus = nullStr(proposalStatus)
	i.Sentiment = nullStr(sentiment)
	i.IsLocked = locked != 0
	i.LockedAt = parseNullTime(lockedAt)
	i.CreatedByName = nullStr(creatorName)
	i.CreatedAt = parseTime(createdAt)
	i.UpdatedAt = parseTime(updatedAt)
	return &i, nil
}
