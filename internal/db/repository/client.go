package repository

import (
	"context"
	"database/sql"
	"strings"

	"fundcrm/internal/domain"
)

type ClientRepo struct {
	db       *sql.DB
	contacts *ContactRepo
	products *ProductRepo
}

func NewClientRepo(db *sql.DB) *ClientRepo {
	return &ClientRepo{db: db, contacts: NewContactRepo(db), products: NewProductRepo(db)}
}

const clientColumns = `id, company_name, company_name_kana, company_name_en, industry,
	sub_industry, company_type, registration_number, address, address_en, city, country,
	phone, website, fiscal_year_end, aum_jpy, employee_count, relationship_start_date,
	relationship_status, risk_rating, assigned_rm_id, capital_amount_jpy, revenue_jpy,
	stock_code, founding_date, representative_name, representative_title, notes,
	created_by, created_at, updated_at`

func (r *ClientRepo) Create(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	country := c.Country
	if country == "" {
		country = "Japan"
	}
	status := c.RelationshipStatus
	if status == "" {
		status = domain.RelationshipProspect
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO clients (company_name, company_name_kana, company_name_en, industry,
			sub_industry, company_type, registration_number, address, address_en, city,
			country, phone, website, fiscal_year_end, aum_jpy, employee_count,
			relationship_start_date, relationship_status, risk_rating, assigned_rm_id,
			capital_amount_jpy, revenue_jpy, stock_code, founding_date,
			representative_name, representative_title, notes, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.CompanyName, strArg(c.CompanyNameKana), strArg(c.CompanyNameEn), strArg(c.Industry),
		strArg(c.SubIndustry), strArg(c.CompanyType), strArg(c.RegistrationNumber),
		strArg(c.Address), strArg(c.AddressEn), strArg(c.City), country, strArg(c.Phone),
		strArg(c.Website), strArg(c.FiscalYearEnd), intArg(c.AumJPY), intArg(c.EmployeeCount),
		strArg(c.RelationshipStartDate), status, strArg(c.RiskRating), intArg(c.AssignedRMID),
		intArg(c.CapitalAmountJPY), intArg(c.RevenueJPY), strArg(c.StockCode),
		strArg(c.FoundingDate), strArg(c.RepresentativeName), strArg(c.RepresentativeTitle),
		strArg(c.Notes), intArg(c.CreatedBy))
	if err != nil {
		return nil, mapDBError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *ClientRepo) GetByID(ctx context.Context, id int64) (*domain.Client, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = ?`, id)
	c, err := scanClient(row)
	if err != nil {
		return nil, mapDBError(err)
	}
	return c, nil
}

// GetDetail loads the client together with its active contacts, product
// assignments, recent-interaction count, and assigned RM name.
func (r *ClientRepo) GetDetail(ctx context.Context, id int64) (*domain.ClientDetail, error) {
	c, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &domain.ClientDetail{Client: *c}

	if detail.Contacts, err = r.contacts.ListForClient(ctx, id, true); err != nil {
		return nil, err
	}
	if detail.Products, err = r.products.ListForClient(ctx, id); err != nil {
		return nil, err
	}

	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM interactions
		 WHERE client_id = ? AND interaction_date >= datetime('now', '-90 days')`, id).
		Scan(&detail.RecentInteractionCount); err != nil {
		return nil, err
	}

	if c.AssignedRMID != nil {
		var name sql.NullString
		err := r.db.QueryRowContext(ctx,
			`SELECT full_name FROM users WHERE id = ?`, *c.AssignedRMID).Scan(&name)
		if err != nil && err != sql.ErrNoRows {
			return nil, err
		}
		detail.AssignedRMName = nullStr(name)
	}

	return detail, nil
}

func (r *ClientRepo) List(ctx context.Context, filter domain.ClientFilter) ([]domain.ClientSummary, int64, error) {
	var conds []string
	var args []any
	if filter.Search != nil && *filter.Search != "" {
		like := "%" + *filter.Search + "%"
		conds = append(conds, `(c.company_name LIKE ? OR c.company_name_kana LIKE ? OR c.company_name_en LIKE ?)`)
		args = append(args, like, like, like)
	}
	if filter.RelationshipStatus != nil {
		conds = append(conds, "c.relationship_status = ?")
		args = append(args, *filter.RelationshipStatus)
	}
	if filter.Industry != nil {
		conds = append(conds, "c.industry = ?")
		args = append(args, *filter.Industry)
	}
	if filter.AssignedRMID != nil {
		conds = append(conds, "c.assigned_rm_id = ?")
		args = append(args, *filter.AssignedRMID)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM clients c`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listArgs := append(append([]any{}, args...),
		filter.Page.EffectiveLimit(), filter.Page.Offset())
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.company_name, c.company_name_en, c.industry, c.company_type,
			c.relationship_status, c.risk_rating, c.assigned_rm_id, u.full_name,
			(SELECT COUNT(*) FROM interactions i WHERE i.client_id = c.id),
			(SELECT MAX(i.interaction_date) FROM interactions i WHERE i.client_id = c.id),
			(SELECT COUNT(*) FROM client_products cp WHERE cp.client_id = c.id AND cp.status = 'active'),
			(SELECT SUM(cp.facility_amount_jpy) FROM client_products cp WHERE cp.client_id = c.id AND cp.status = 'active'),
			c.created_at
		FROM clients c
		LEFT JOIN users u ON u.id = c.assigned_rm_id`+where+`
		ORDER BY c.company_name ASC
		LIMIT ? OFFSET ?`, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.ClientSummary
	for rows.Next() {
		var s domain.ClientSummary
		var nameEn, industry, companyType, risk, rmName, lastDate sql.NullString
		var rmID, facility sql.NullInt64
		var createdAt string
		if err := rows.Scan(&s.ID, &s.CompanyName, &nameEn, &industry, &companyType,
			&s.RelationshipStatus, &risk, &rmID, &rmName, &s.InteractionCount,
			&lastDate, &s.ActiveProductCount, &facility, &createdAt); err != nil {
			return nil, 0, err
		}
		s.CompanyNameEn = nullStr(nameEn)
		s.Industry = nullStr(industry)
		s.CompanyType = nullStr(companyType)
		s.RiskRating = nullStr(risk)
		s.AssignedRMID = nullInt(rmID)
		s.AssignedRMName = nullStr(rmName)
		s.LastInteractionDate = nullStr(lastDate)
		s.TotalActiveFacilityJPY = nullInt(facility)
		s.CreatedAt = parseTime(createdAt)
		out = append(out, s)
	}
	return out, total, rows.Err()
}

func (r *ClientRepo) Update(ctx context.Context, id int64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	set, args := buildUpdate(fields, true)
	args = append(args, id)
	_, err := r.db.ExecContext(ctx, `UPDATE clients SET `+set+` WHERE id = ?`, args...)
	return mapDBError(err)
}

func scanClient(row rowScanner) (*domain.Client, error) {
	var c domain.Client
	var kana, nameEn, industry, subIndustry, companyType, regNo, addr, addrEn, city,
		phone, website, fiscalYearEnd, relStart, risk, stockCode, foundingDate,
		repName, repTitle, notes sql.NullString
	var aum, employees, rmID, capital, revenue, createdBy sql.NullInt64
	var createdAt, updatedAt string
	if err := row.Scan(&c.ID, &c.CompanyName, &kana, &nameEn, &industry, &subIndustry,
		&companyType, &regNo, &addr, &addrEn, &city, &c.Country, &phone, &website,
		&fiscalYearEnd, &aum, &employees, &relStart, &c.RelationshipStatus, &risk,
		&rmID, &capital, &revenue, &stockCode, &foundingDate, &repName, &repTitle,
		&notes, &createdBy, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	c.CompanyNameKana = nullStr(kana)
	c.CompanyNameEn = nullStr(nameEn)
	c.Industry = nullStr(industry)
	c.SubIndustry = nullStr(subIndustry)
	c.CompanyType = nullStr(companyType)
	c.RegistrationNumber = nullStr(regNo)
	c.Address = nullStr(addr)
	c.AddressEn = nullStr(addrEn)
	c.City = nullStr(city)
	c.Phone = nullStr(phone)
	c.Website = nullStr(website)
	c.FiscalYearEnd = nullStr(fiscalYearEnd)
	c.AumJPY = nullInt(aum)
	c.EmployeeCount = nullInt(employees)
	c.RelationshipStartDate = nullStr(relStart)
	c.RiskRating = nullStr(risk)
	c.AssignedRMID = nullInt(rmID)
	c.CapitalAmountJPY = nullInt(capital)
	c.RevenueJPY = nullInt(revenue)
	c.StockCode = nullStr(stockCode)
	c.FoundingDate = nullStr(foundingDate)
	c.RepresentativeName = nullStr(repName)
	c.RepresentativeTitle = nullStr(repTitle)
	c.Notes = nullStr(notes)
	c.CreatedBy = nullInt(createdBy)
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	return &c, nil
}
