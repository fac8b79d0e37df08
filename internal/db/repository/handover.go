package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"fundcrm/internal/domain"
)

type HandoverRepo struct {
	db *sql.DB
}

func NewHandoverRepo(db *sql.DB) *HandoverRepo {
	return &HandoverRepo{db: db}
}

const handoverSelect = `
	SELECT h.id, h.title, h.description, h.from_user_id, fu.full_name, h.to_user_id,
		tu.full_name, h.client_ids, h.content, h.status, h.finalized_at,
		h.acknowledged_at, h.acknowledged_by, h.created_by, h.created_at, h.updated_at
	FROM handover_packages h
	JOIN users fu ON fu.id = h.from_user_id
	JOIN users tu ON tu.id = h.to_user_id`

func (r *HandoverRepo) Create(ctx context.Context, h *domain.HandoverPackage) (*domain.HandoverPackage, error) {
	ids, err := json.Marshal(h.ClientIDs)
	if err != nil {
		return nil, fmt.Errorf("encode client ids: %w", err)
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO handover_packages (title, description, from_user_id, to_user_id,
			client_ids, content, status, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		h.Title, strArg(h.Description), h.FromUserID, h.ToUserID,
		string(ids), h.Content, domain.HandoverDraft, h.CreatedBy)
	if err != nil {
		return nil, mapDBError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *HandoverRepo) GetByID(ctx context.Context, id int64) (*domain.HandoverPackage, error) {
	row := r.db.QueryRowContext(ctx, handoverSelect+` WHERE h.id = ?`, id)
	h, err := scanHandover(row)
	if err != nil {
		return nil, mapDBError(err)
	}
	return h, nil
}

func (r *HandoverRepo) List(ctx context.Context, page domain.PageRequest) ([]domain.HandoverPackage, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM handover_packages`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		handoverSelect+` ORDER BY h.id DESC LIMIT ? OFFSET ?`,
		page.EffectiveLimit(), page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.HandoverPackage
	for rows.Next() {
		h, err := scanHandover(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *h)
	}
	return out, total, rows.Err()
}

// SetStatus moves a package through draft -> finalized -> acknowledged,
// stamping the matching timestamp column.
func (r *HandoverRepo) SetStatus(ctx context.Context, id int64, status string, actorID int64) error {
	var err error
	switch status {
	case domain.HandoverFinalized:
		_, err = r.db.ExecContext(ctx,
			`UPDATE handover_packages SET status = ?, finalized_at = datetime('now'),
				updated_at = datetime('now') WHERE id = ?`, status, id)
	case domain.HandoverAcknowledged:
		_, err = r.db.ExecContext(ctx,
			`UPDATE handover_packages SET status = ?, acknowledged_at = datetime('now'),
				acknowledged_by = ?, updated_at = datetime('now') WHERE id = ?`,
			status, actorID, id)
	default:
		_, err = r.db.ExecContext(ctx,
			`UPDATE handover_packages SET status = ?, updated_at = datetime('now') WHERE id = ?`,
			status, id)
	}
	return mapDBError(err)
}

func scanHandover(row rowScanner) (*domain.HandoverPackage, error) {
	var h domain.HandoverPackage
	var description, finalizedAt, acknowledgedAt sql.NullString
	var fromName, toName string
	var acknowledgedBy sql.NullInt64
	var clientIDs string
	var createdAt, updatedAt string
	if err := row.Scan(&h.ID, &h.Title, &description, &h.FromUserID, &fromName,
		&h.ToUserID, &toName, &clientIDs, &h.Content, &h.Status, &finalizedAt,
		&acknowledgedAt, &acknowledgedBy, &h.CreatedBy, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	h.Description = nullStr(description)
	h.FromUserName = &fromName
	h.ToUserName = &toName
	if err := json.Unmarshal([]byte(clientIDs), &h.ClientIDs); err != nil {
		return nil, fmt.Errorf("decode client ids: %w", err)
	}
	h.FinalizedAt = parseNullTime(finalizedAt)
	h.AcknowledgedAt = parseNullTime(acknowledgedAt)
	h.AcknowledgedBy = nullInt(acknowledgedBy)
	h.CreatedAt = parseTime(createdAt)
	h.UpdatedAt = parseTime(updatedAt)
	return &h, nil
}
