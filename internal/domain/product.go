package domain

import "time"

// ValidProductType reports whether t is a known fund product type.
func ValidProductType(t string) bool {
	switch t {
	case "capital_call_facility", "nav_facility", "hybrid_facility",
		"management_company_facility", "bridge_loan", "warehouse_facility", "other":
		return true
	}
	return false
}

// ValidProductStatus reports whether s is a known client-product status.
func ValidProductStatus(s string) bool {
	switch s {
	case "prospecting", "negotiating", "documentation", "active", "expired", "terminated":
		return true
	}
	return false
}

// FundProduct is a catalog entry for a financing product the unit offers.
type FundProduct struct {
	ID                 int64
	ProductName        string
	ProductNameEn      *string
	ProductType        string
	Description        *string
	TypicalTenorMonths *int64
	MinAmountJPY       *int64
	MaxAmountJPY       *int64
	BaseRate           *string
	SpreadBpsMin       *int64
	SpreadBpsMax       *int64
	IsActive           bool
	CreatedAt          time.Time
}

// UpdateClientProduct holds optional facility updates. Nil means
// "leave as is".
type UpdateClientProduct struct {
	FacilityAmountJPY *int64
	SpreadBps         *int64
	StartDate         *string
	MaturityDate      *string
	Status            *string
	Notes             *string
}

// ClientProduct is a product facility assigned to a client. Facilities
// are never deleted; they move through status transitions instead.
type ClientProduct struct {
	ID                int64
	ClientID          int64
	ProductID         int64
	ProductName       *string // joined from fund_products
	ProductType       *string // joined
	FacilityAmountJPY *int64
	SpreadBps         *int64
	StartDate         *string
	MaturityDate      *string
	Status            string
	Notes             *string
	CreatedBy         *int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
