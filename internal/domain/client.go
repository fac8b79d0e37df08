package domain

import "time"

// Relationship lifecycle statuses for a client.
const (
	RelationshipProspect = "prospect"
	RelationshipActive   = "active"
	RelationshipDormant  = "dormant"
	RelationshipFormer   = "former"
)

// ValidRelationshipStatus reports whether s is a known status.
func ValidRelationshipStatus(s string) bool {
	switch s {
	case RelationshipProspect, RelationshipActive, RelationshipDormant, RelationshipFormer:
		return true
	}
	return false
}

// ValidRiskRating reports whether r is a known risk rating.
func ValidRiskRating(r string) bool {
	return r == "low" || r == "medium" || r == "high"
}

// ValidCompanyType reports whether t is a known company type.
func ValidCompanyType(t string) bool {
	switch t {
	case "Corporation", "Fund", "SPC", "Trust", "Partnership", "Other":
		return true
	}
	return false
}

// Client is a corporate client of the fund-finance unit.
type Client struct {
	ID                    int64
	CompanyName           string
	CompanyNameKana       *string
	CompanyNameEn         *string
	Industry              *string
	SubIndustry           *string
	CompanyType           *string
	RegistrationNumber    *string
	Address               *string
	AddressEn             *string
	City                  *string
	Country               string
	Phone                 *string
	Website               *string
	FiscalYearEnd         *string
	AumJPY                *int64
	EmployeeCount         *int64
	RelationshipStartDate *string
	RelationshipStatus    string
	RiskRating            *string
	AssignedRMID          *int64
	CapitalAmountJPY      *int64
	RevenueJPY            *int64
	StockCode             *string
	FoundingDate          *string
	RepresentativeName    *string
	RepresentativeTitle   *string
	Notes                 *string
	CreatedBy             *int64
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// UpdateClient holds optional client updates. Nil means "leave as is".
type UpdateClient struct {
	CompanyName           *string
	CompanyNameKana       *string
	CompanyNameEn         *string
	Industry              *string
	SubIndustry           *string
	CompanyType           *string
	RegistrationNumber    *string
	Address               *string
	AddressEn             *string
	City                  *string
	Country               *string
	Phone                 *string
	Website               *string
	FiscalYearEnd         *string
	AumJPY                *int64
	EmployeeCount         *int64
	RelationshipStartDate *string
	RelationshipStatus    *string
	RiskRating            *string
	AssignedRMID          *int64
	CapitalAmountJPY      *int64
	RevenueJPY            *int64
	StockCode             *string
	FoundingDate          *string
	RepresentativeName    *string
	RepresentativeTitle   *string
	Notes                 *string
}

// ClientSummary is the list-view projection with aggregates joined in.
type ClientSummary struct {
	ID                     int64
	CompanyName            string
	CompanyNameEn          *string
	Industry               *string
	CompanyType            *string
	RelationshipStatus     string
	RiskRating             *string
	AssignedRMID           *int64
	AssignedRMName         *string
	InteractionCount       int64
	LastInteractionDate    *string
	ActiveProductCount     int64
	TotalActiveFacilityJPY *int64
	CreatedAt              time.Time
}

// ClientDetail is a client with its related records attached.
type ClientDetail struct {
	Client
	AssignedRMName         *string
	Contacts               []Contact
	Products               []ClientProduct
	RecentInteractionCount int64
}

// ClientFilter narrows client list queries.
type ClientFilter struct {
	Search             *string // matches company_name, kana, en
	RelationshipStatus *string
	Industry           *string
	AssignedRMID       *int64
	Page               PageRequest
}
