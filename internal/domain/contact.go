package domain

import "time"

// ValidContactMethod reports whether m is a known contact method.
func ValidContactMethod(m string) bool {
	return m == "email" || m == "phone" || m == "in_person"
}

// Contact is a person at a client company.
type Contact struct {
	ID                     int64
	ClientID               int64
	FirstName              string
	LastName               string
	FirstNameKana          *string
	LastNameKana           *string
	Title                  *string
	Department             *string
	Email                  *string
	Phone                  *string
	Mobile                 *string
	IsPrimaryContact       bool
	IsDecisionMaker        bool
	PreferredLanguage      string // "ja" or "en"
	PreferredContactMethod string
	Notes                  *string
	IsActive               bool
	CreatedBy              *int64
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// UpdateContact holds optional contact updates. Nil means "leave as is".
type UpdateContact struct {
	FirstName              *string
	LastName               *string
	FirstNameKana          *string
	LastNameKana           *string
	Title                  *string
	Department             *string
	Email                  *string
	Phone                  *string
	Mobile                 *string
	IsPrimaryContact       *bool
	IsDecisionMaker        *bool
	PreferredLanguage      *string
	PreferredContactMethod *string
	Notes                  *string
}

// DisplayName returns the "Last First" label used for audit snapshots.
func (c Contact) DisplayName() string {
	return c.LastName + " " + c.FirstName
}
