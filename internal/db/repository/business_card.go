package repository

import (
	"context"
	"database/sql"
	"strings"

	"fundcrm/internal/domain"
)

type BusinessCardRepo struct {
	db *sql.DB
}

func NewBusinessCardRepo(db *sql.DB) *BusinessCardRepo {
	return &BusinessCardRepo{db: db}
}

const businessCardSelect = `
	SELECT b.id, b.contact_id, b.client_id, b.image_path, b.company_name, b.person_name,
		b.department, b.title, b.phone, b.mobile, b.email, b.address, b.website,
		b.exchange_date, b.owner_user_id, u.full_name, b.notes, b.tags, b.is_digitized,
		b.created_at, b.updated_at
	FROM business_cards b
	LEFT JOIN users u ON u.id = b.owner_user_id`

func (r *BusinessCardRepo) Create(ctx context.Context, b *domain.BusinessCard) (*domain.BusinessCard, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO business_cards (contact_id, client_id, image_path, company_name,
			person_name, department, title, phone, mobile, email, address, website,
			exchange_date, owner_user_id, notes, tags, is_digitized)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		intArg(b.ContactID), intArg(b.ClientID), b.ImagePath, strArg(b.CompanyName),
		strArg(b.PersonName), strArg(b.Department), strArg(b.Title), strArg(b.Phone),
		strArg(b.Mobile), strArg(b.Email), strArg(b.Address), strArg(b.Website),
		strArg(b.ExchangeDate), intArg(b.OwnerUserID), strArg(b.Notes), strArg(b.Tags),
		boolToInt(b.IsDigitized))
	if err != nil {
		return nil, mapDBError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *BusinessCardRepo) GetByID(ctx context.Context, id int64) (*domain.BusinessCard, error) {
	row := r.db.QueryRowContext(ctx, businessCardSelect+` WHERE b.id = ?`, id)
	b, err := scanBusinessCard(row)
	if err != nil {
		return nil, mapDBError(err)
	}
	return b, nil
}

func (r *BusinessCardRepo) List(ctx context.Context, filter domain.BusinessCardFilter) ([]domain.BusinessCard, int64, error) {
	var conds []string
	var args []any
	if filter.Search != nil && *filter.Search != "" {
		like := "%" + *filter.Search + "%"
		conds = append(conds, `(b.person_name LIKE ? OR b.company_name LIKE ? OR b.email LIKE ?)`)
		args = append(args, like, like, like)
	}
	if filter.ClientID != nil {
		conds = append(conds, "b.client_id = ?")
		args = append(args, *filter.ClientID)
	}
	if filter.OwnerUserID != nil {
		conds = append(conds, "b.owner_user_id = ?")
		args = append(args, *filter.OwnerUserID)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM business_cards b`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listArgs := append(append([]any{}, args...),
		filter.Page.EffectiveLimit(), filter.Page.Offset())
	rows, err := r.db.QueryContext(ctx,
		businessCardSelect+where+` ORDER BY b.id DESC LIMIT ? OFFSET ?`, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.BusinessCard
	for rows.Next() {
		b, err := scanBusinessCard(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *b)
	}
	return out, total, rows.Err()
}

func (r *BusinessCardRepo) ListForClient(ctx context.Context, clientID int64) ([]domain.BusinessCard, error) {
	rows, err := r.db.QueryContext(ctx,
		businessCardSelect+` WHERE b.client_id = ? ORDER BY b.id DESC`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.BusinessCard
	for rows.Next() {
		b, err := scanBusinessCard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (r *BusinessCardRepo) Update(ctx context.Context, id int64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	set, args := buildUpdate(fields, true)
	args = append(args, id)
	_, err := r.db.ExecContext(ctx, `UPDATE business_cards SET `+set+` WHERE id = ?`, args...)
	return mapDBError(err)
}

func (r *BusinessCardRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM business_cards WHERE id = ?`, id)
	if err != nil {
		return mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &domain.NotFoundError{Message: "business card not found"}
	}
	return nil
}

func scanBusinessCard(row rowScanner) (*domain.BusinessCard, error) {
	var b domain.BusinessCard
	var contactID, clientID, ownerID sql.NullInt64
	var company, person, department, title, phone, mobile, email, address, website,
		exchangeDate, ownerName, notes, tags sql.NullString
	var digitized int64
	var createdAt, updatedAt string
	if err := row.Scan(&b.ID, &contactID, &clientID, &b.ImagePath, &company, &person,
		&department, &title, &phone, &mobile, &email, &address, &website, &exchangeDate,
		&ownerID, &ownerName, &notes, &tags, &digitized, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	b.ContactID = nullInt(contactID)
	b.ClientID = nullInt(clientID)
	b.CompanyName = nullStr(company)
	b.PersonName = nullStr(person)
	b.Department = nullStr(department)
	b.Title = nullStr(title)
	b.Phone = nullStr(phone)
	b.Mobile = nullStr(mobile)
	b.Email = nullStr(email)
	b.Address = nullStr(address)
	b.Website = nullStr(website)
	b.ExchangeDate = nullStr(exchangeDate)
	b.OwnerUserID = nullInt(ownerID)
	b.OwnerName = nullStr(ownerName)
	b.Notes = nullStr(notes)
	b.Tags = nullStr(tags)
	b.IsDigitized = digitized != 0
	b.CreatedAt = parseTime(createdAt)
	b.UpdatedAt = parseTime(updatedAt)
	return &b, nil
}
