package repository

import (
	"context"
	"database/sql"

	"fundcrm/internal/domain"
)

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, email, password_hash, full_name, full_name_kana, role,
	department, title, phone, is_active, last_login_at, created_at, updated_at`

func (r *UserRepo) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, full_name, full_name_kana, role, department, title, phone)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.Email, u.PasswordHash, u.FullName, strArg(u.FullNameKana), u.Role,
		strArg(u.Department), strArg(u.Title), strArg(u.Phone))
	if err != nil {
		return nil, mapDBError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.getWhere(ctx, "id = ?", id)
}

func (r *UserRepo) GetActiveByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.getWhere(ctx, "id = ? AND is_active = 1", id)
}

func (r *UserRepo) GetActiveByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getWhere(ctx, "email = ? AND is_active = 1", email)
}

func (r *UserRepo) getWhere(ctx context.Context, where string, args ...any) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+where, args...)
	u, err := scanUser(row)
	if err != nil {
		return nil, mapDBError(err)
	}
	return u, nil
}

func (r *UserRepo) List(ctx context.Context, page domain.PageRequest) ([]domain.User, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY full_name ASC LIMIT ? OFFSET ?`,
		page.EffectiveLimit(), page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close() //nolint:errcheck

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *u)
	}
	return users, total, rows.Err()
}

func (r *UserRepo) Update(ctx context.Context, id int64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	set, args := buildUpdate(fields, true)
	args = append(args, id)
	_, err := r.db.ExecContext(ctx, `UPDATE users SET `+set+` WHERE id = ?`, args...)
	return mapDBError(err)
}

func (r *UserRepo) TouchLastLogin(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET last_login_at = datetime('now') WHERE id = ?`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	var kana, department, title, phone, lastLogin sql.NullString
	var isActive int64
	var createdAt, updatedAt string
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &kana, &u.Role,
		&department, &title, &phone, &isActive, &lastLogin, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	u.FullNameKana = nullStr(kana)
	u.Department = nullStr(department)
	u.Title = nullStr(title)
	u.Phone = nullStr(phone)
	u.IsActive = isActive != 0
	u.LastLoginAt = parseNullTime(lastLogin)
	u.CreatedAt = parseTime(createdAt)
	u.UpdatedAt = parseTime(updatedAt)
	return &u, nil
}
