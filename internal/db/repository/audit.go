package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"fundcrm/internal/domain"
)

// AuditRepo persists the audit hash chain. It must be constructed with
// the write pool: that pool holds a single connection and opens
// transactions with _txlock=immediate, so the read-last-hash + insert
// pair below is serialized against concurrent appenders and the chain
// cannot fork.
type AuditRepo struct {
	db *sql.DB
}

func NewAuditRepo(writeDB *sql.DB) *AuditRepo {
	return &AuditRepo{db: writeDB}
}

const auditColumns = `sequence_id, timestamp, actor_id, actor_name, action, entity_type,
	entity_id, entity_name, details, ip_address, previous_hash, entry_hash`

// Append durably extends the chain with one entry. It reads the newest
// entry's hash and inserts the new row linked to it inside a single
// immediate transaction: either the fully-linked row is committed or
// nothing is. The entry's Timestamp is assigned here if unset;
// PreviousHash and EntryHash are always computed here and any caller-
// provided values are ignored.
func (r *AuditRepo) Append(ctx context.Context, e *domain.AuditEntry) (*domain.AuditEntry, error) {
	if e.Timestamp == "" {
		e.Timestamp = domain.NewAuditTimestamp(time.Now())
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin audit append: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var last sql.NullString
	err = tx.QueryRowContext(ctx,
		`SELECT entry_hash FROM audit_log ORDER BY sequence_id DESC LIMIT 1`).Scan(&last)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read last audit hash: %w", err)
	}

	if last.Valid {
		prev := last.String
		e.PreviousHash = &prev
	} else {
		e.PreviousHash = nil
	}
	e.EntryHash = e.ComputeEntryHash()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO audit_log (timestamp, actor_id, actor_name, action, entity_type,
			entity_id, entity_name, details, ip_address, previous_hash, entry_hash)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Timestamp, e.ActorID, e.ActorName, e.Action, e.EntityType,
		intArg(e.EntityID), strArg(e.EntityName), strArg(e.Details), strArg(e.IP),
		strArg(e.PreviousHash), e.EntryHash)
	if err != nil {
		return nil, fmt.Errorf("insert audit entry: %w", mapDBError(err))
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("audit sequence id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit audit append: %w", err)
	}

	e.SequenceID = seq
	return e, nil
}

// List returns entries newest-first with optional filters, plus the
// total count for pagination.
func (r *AuditRepo) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, int64, error) {
	where, args := auditWhere(filter)

	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audit_log`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listArgs := append(append([]any{}, args...),
		filter.Page.EffectiveLimit(), filter.Page.Offset())
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+auditColumns+` FROM audit_log`+where+
			` ORDER BY sequence_id DESC LIMIT ? OFFSET ?`, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close() //nolint:errcheck

	entries, err := scanAuditEntries(rows)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// ListAll returns the entire chain in ascending sequence order — the
// order verification must walk.
func (r *AuditRepo) ListAll(ctx context.Context) ([]domain.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+auditColumns+` FROM audit_log ORDER BY sequence_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	return scanAuditEntries(rows)
}

func auditWhere(filter domain.AuditFilter) (string, []any) {
	var conds []string
	var args []any
	if filter.ActorID != nil {
		conds = append(conds, "actor_id = ?")
		args = append(args, *filter.ActorID)
	}
	if filter.Action != nil {
		conds = append(conds, "action = ?")
		args = append(args, *filter.Action)
	}
	if filter.EntityType != nil {
		conds = append(conds, "entity_type = ?")
		args = append(args, *filter.EntityType)
	}
	if filter.EntityID != nil {
		conds = append(conds, "entity_id = ?")
		args = append(args, *filter.EntityID)
	}
	if filter.From != nil {
		conds = append(conds, "timestamp >= ?")
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conds = append(conds, "timestamp <= ?")
		args = append(args, *filter.To)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanAuditEntries(rows *sql.Rows) ([]domain.AuditEntry, error) {
	var entries []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		var entityID sql.NullInt64
		var entityName, details, ip, prevHash sql.NullString
		if err := rows.Scan(&e.SequenceID, &e.Timestamp, &e.ActorID, &e.ActorName,
			&e.Action, &e.EntityType, &entityID, &entityName, &details, &ip,
			&prevHash, &e.EntryHash); err != nil {
			return nil, err
		}
		e.EntityID = nullInt(entityID)
		e.EntityName = nullStr(entityName)
		e.Details = nullStr(details)
		e.IP = nullStr(ip)
		e.PreviousHash = nullStr(prevHash)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
