package domain

import "time"

// BusinessCard is a captured business card, optionally linked to a
// client and contact once digitized.
type BusinessCard struct {
	ID           int64
	ContactID    *int64
	ClientID     *int64
	ImagePath    string
	CompanyName  *string
	PersonName   *string
	Department   *string
	Title        *string
	Phone        *string
	Mobile       *string
	Email        *string
	Address      *string
	Website      *string
	ExchangeDate *string
	OwnerUserID  *int64
	OwnerName    *string // joined
	Notes        *string
	Tags         *string
	IsDigitized  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UpdateBusinessCard holds optional card updates. Nil means "leave as
// is".
type UpdateBusinessCard struct {
	ContactID    *int64
	ClientID     *int64
	CompanyName  *string
	PersonName   *string
	Department   *string
	Title        *string
	Phone        *string
	Mobile       *string
	Email        *string
	Address      *string
	Website      *string
	ExchangeDate *string
	Notes        *string
	Tags         *string
	IsDigitized  *bool
}

// Label returns the audit snapshot name for a card: the person name,
// falling back to the company, falling back to "untitled card".
func (b BusinessCard) Label() string {
	if b.PersonName != nil && *b.PersonName != "" {
		return *b.PersonName
	}
	if b.CompanyName != nil && *b.CompanyName != "" {
		return *b.CompanyName
	}
	return "untitled card"
}

// BusinessCardFilter narrows card list queries.
type BusinessCardFilter struct {
	Search      *string // matches person_name, company_name, email
	ClientID    *int64
	OwnerUserID *int64
	Page        PageRequest
}
