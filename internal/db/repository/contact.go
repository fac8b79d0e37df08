package repository

import (
	"context"
	"database/sql"

	"fundcrm/internal/domain"
)

type ContactRepo struct {
	db *sql.DB
}

func NewContactRepo(db *sql.DB) *ContactRepo {
	return &ContactRepo{db: db}
}

const contactColumns = `id, client_id, first_name, last_name, first_name_kana, last_name_kana,
	title, department, email, phone, mobile, is_primary_contact, is_decision_maker,
	preferred_language, preferred_contact_method, notes, is_active, created_by,
	created_at, updated_at`

func (r *ContactRepo) Create(ctx context.Context, c *domain.Contact) (*domain.Contact, error) {
	lang := c.PreferredLanguage
	if lang == "" {
		lang = "ja"
	}
	method := c.PreferredContactMethod
	if method == "" {
		method = "email"
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO client_contacts (client_id, first_name, last_name, first_name_kana,
			last_name_kana, title, department, email, phone, mobile, is_primary_contact,
			is_decision_maker, preferred_language, preferred_contact_method, notes, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ClientID, c.FirstName, c.LastName, strArg(c.FirstNameKana), strArg(c.LastNameKana),
		strArg(c.Title), strArg(c.Department), strArg(c.Email), strArg(c.Phone),
		strArg(c.Mobile), boolToInt(c.IsPrimaryContact), boolToInt(c.IsDecisionMaker),
		lang, method, strArg(c.Notes), intArg(c.CreatedBy))
	if err != nil {
		return nil, mapDBError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *ContactRepo) GetByID(ctx context.Context, id int64) (*domain.Contact, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+contactColumns+` FROM client_contacts WHERE id = ?`, id)
	c, err := scanContact(row)
	if err != nil {
		return nil, mapDBError(err)
	}
	return c, nil
}

// ListForClient returns contacts ordered primary-first then by name.
func (r *ContactRepo) ListForClient(ctx context.Context, clientID int64, activeOnly bool) ([]domain.Contact, error) {
	q := `SELECT ` + contactColumns + ` FROM client_contacts WHERE client_id = ?`
	if activeOnly {
		q += ` AND is_active = 1`
	}
	q += ` ORDER BY is_primary_contact DESC, last_name ASC, first_name ASC`

	rows, err := r.db.QueryContext(ctx, q, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *ContactRepo) Update(ctx context.Context, id int64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	set, args := buildUpdate(fields, true)
	args = append(args, id)
	_, err := r.db.ExecContext(ctx, `UPDATE client_contacts SET `+set+` WHERE id = ?`, args...)
	return mapDBError(err)
}

func (r *ContactRepo) Deactivate(ctx context.Context, id int64) error {
	return r.Update(ctx, id, map[string]any{"is_active": 0})
}

func scanContact(row rowScanner) (*domain.Contact, error) {
	var c domain.Contact
	var firstKana, lastKana, title, department, email, phone, mobile, notes sql.NullString
	var primary, decisionMaker, active int64
	var createdBy sql.NullInt64
	var createdAt, updatedAt string
	if err := row.Scan(&c.ID, &c.ClientID, &c.FirstName, &c.LastName, &firstKana, &lastKana,
		&title, &department, &email, &phone, &mobile, &primary, &decisionMaker,
		&c.PreferredLanguage, &c.PreferredContactMethod, &notes, &active, &createdBy,
		&createdAt, &updatedAt); err != nil {
		return nil, err
	}
	c.FirstNameKana = nullStr(firstKana)
	c.LastNameKana = nullStr(lastKana)
	c.Title = nullStr(title)
	c.Department = nullStr(department)
	c.Email = nullStr(email)
	c.Phone = nullStr(phone)
	c.Mobile = nullStr(mobile)
	c.IsPrimaryContact = primary != 0
	c.IsDecisionMaker = decisionMaker != 0
	c.Notes = nullStr(notes)
	c.IsActive = active != 0
	c.CreatedBy = nullInt(createdBy)
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	return &c, nil
}
