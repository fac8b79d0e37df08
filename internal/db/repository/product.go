package repository

import (
	"context"
	"database/sql"

	"fundcrm/internal/domain"
)

type ProductRepo struct {
	db *sql.DB
}

func NewProductRepo(db *sql.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

const fundProductColumns = `id, product_name, product_name_en, product_type, description,
	typical_tenor_months, min_amount_jpy, max_amount_jpy, base_rate, spread_bps_min,
	spread_bps_max, is_active, created_at`

func (r *ProductRepo) ListFundProducts(ctx context.Context, activeOnly bool) ([]domain.FundProduct, error) {
	q := `SELECT ` + fundProductColumns + ` FROM fund_products`
	if activeOnly {
		q += ` WHERE is_active = 1`
	}
	q += ` ORDER BY product_name ASC`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.FundProduct
	for rows.Next() {
		p, err := scanFundProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *ProductRepo) GetFundProduct(ctx context.Context, id int64) (*domain.FundProduct, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+fundProductColumns+` FROM fund_products WHERE id = ?`, id)
	p, err := scanFundProduct(row)
	if err != nil {
		return nil, mapDBError(err)
	}
	return p, nil
}

func (r *ProductRepo) CreateFundProduct(ctx context.Context, p *domain.FundProduct) (*domain.FundProduct, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO fund_products (product_name, product_name_en, product_type, description,
			typical_tenor_months, min_amount_jpy, max_amount_jpy, base_rate, spread_bps_min, spread_bps_max)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ProductName, strArg(p.ProductNameEn), p.ProductType, strArg(p.Description),
		intArg(p.TypicalTenorMonths), intArg(p.MinAmountJPY), intArg(p.MaxAmountJPY),
		strArg(p.BaseRate), intArg(p.SpreadBpsMin), intArg(p.SpreadBpsMax))
	if err != nil {
		return nil, mapDBError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetFundProduct(ctx, id)
}

const clientProductSelect = `
	SELECT cp.id, cp.client_id, cp.product_id, fp.product_name, fp.product_type,
		cp.facility_amount_jpy, cp.spread_bps, cp.start_date, cp.maturity_date,
		cp.status, cp.notes, cp.created_by, cp.created_at, cp.updated_at
	FROM client_products cp
	JOIN fund_products fp ON fp.id = cp.product_id`

func (r *ProductRepo) AssignToClient(ctx context.Context, cp *domain.ClientProduct) (*domain.ClientProduct, error) {
	status := cp.Status
	if status == "" {
		status = "prospecting"
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO client_products (client_id, product_id, facility_amount_jpy, spread_bps,
			start_date, maturity_date, status, notes, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		cp.ClientID, cp.ProductID, intArg(cp.FacilityAmountJPY), intArg(cp.SpreadBps),
		strArg(cp.StartDate), strArg(cp.MaturityDate), status, strArg(cp.Notes),
		intArg(cp.CreatedBy))
	if err != nil {
		return nil, mapDBError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetClientProduct(ctx, id)
}

func (r *ProductRepo) GetClientProduct(ctx context.Context, id int64) (*domain.ClientProduct, error) {
	row := r.db.QueryRowContext(ctx, clientProductSelect+` WHERE cp.id = ?`, id)
	cp, err := scanClientProduct(row)
	if err != nil {
		return nil, mapDBError(err)
	}
	return cp, nil
}

func (r *ProductRepo) ListForClient(ctx context.Context, clientID int64) ([]domain.ClientProduct, error) {
	rows, err := r.db.QueryContext(ctx,
		clientProductSelect+` WHERE cp.client_id = ? ORDER BY cp.id ASC`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.ClientProduct
	for rows.Next() {
		cp, err := scanClientProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *cp)
	}
	return out, rows.Err()
}

func (r *ProductRepo) UpdateClientProduct(ctx context.Context, id int64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	set, args := buildUpdate(fields, true)
	args = append(args, id)
	_, err := r.db.ExecContext(ctx, `UPDATE client_products SET `+set+` WHERE id = ?`, args...)
	return mapDBError(err)
}

func scanFundProduct(row rowScanner) (*domain.FundProduct, error) {
	var p domain.FundProduct
	var nameEn, description, baseRate sql.NullString
	var tenor, minAmt, maxAmt, spreadMin, spreadMax sql.NullInt64
	var active int64
	var createdAt string
	if err := row.Scan(&p.ID, &p.ProductName, &nameEn, &p.ProductType, &description,
		&tenor, &minAmt, &maxAmt, &baseRate, &spreadMin, &spreadMax, &active, &createdAt); err != nil {
		return nil, err
	}
	p.ProductNameEn = nullStr(nameEn)
	p.Description = nullStr(description)
	p.TypicalTenorMonths = nullInt(tenor)
	p.MinAmountJPY = nullInt(minAmt)
	p.MaxAmountJPY = nullInt(maxAmt)
	p.BaseRate = nullStr(baseRate)
	p.SpreadBpsMin = nullInt(spreadMin)
	p.SpreadBpsMax = nullInt(spreadMax)
	p.IsActive = active != 0
	p.CreatedAt = parseTime(createdAt)
	return &p, nil
}

func scanClientProduct(row rowScanner) (*domain.ClientProduct, error) {
	var cp domain.ClientProduct
	var productName, productType, startDate, maturityDate, notes sql.NullString
	var facility, spread, createdBy sql.NullInt64
	var createdAt, updatedAt string
	if err := row.Scan(&cp.ID, &cp.ClientID, &cp.ProductID, &productName, &productType,
		&facility, &spread, &startDate, &maturityDate, &cp.Status, &notes, &createdBy,
		&createdAt, &updatedAt); err != nil {
		return nil, err
	}
	cp.ProductName = nullStr(productName)
	cp.ProductType = nullStr(productType)
	cp.FacilityAmountJPY = nullInt(facility)
	cp.SpreadBps = nullInt(spread)
	cp.StartDate = nullStr(startDate)
	cp.MaturityDate = nullStr(maturityDate)
	cp.Notes = nullStr(notes)
	cp.CreatedBy = nullInt(createdBy)
	cp.CreatedAt = parseTime(createdAt)
	cp.UpdatedAt = parseTime(updatedAt)
	return &cp, nil
}
