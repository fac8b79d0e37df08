package domain

import "time"

// Handover package statuses.
const (
	HandoverDraft        = "draft"
	HandoverFinalized    = "finalized"
	HandoverAcknowledged = "acknowledged"
)

// HandoverPackage is a relationship-handover document generated when a
// client portfolio moves between relationship managers. Content is the
// generated HandoverContent serialized as JSON.
type HandoverPackage struct {
	ID             int64
	Title          string
	Description    *string
	FromUserID     int64
	FromUserName   *string // joined
	ToUserID       int64
	ToUserName     *string // joined
	ClientIDs      []int64
	Content        string
	Status         string
	FinalizedAt    *time.Time
	AcknowledgedAt *time.Time
	AcknowledgedBy *int64
	CreatedBy      int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HandoverContent is the generated body of a handover package.
type HandoverContent struct {
	GeneratedAt string                  `json:"generated_at"`
	Clients     []HandoverClientSection `json:"clients"`
}

// HandoverClientSection summarizes one client for the receiving manager.
type HandoverClientSection struct {
	ClientID            int64                `json:"client_id"`
	CompanyName         string               `json:"company_name"`
	RelationshipSummary string               `json:"relationship_summary"`
	RecentInteractions  []HandoverNote       `json:"recent_interactions"`
	KeyContacts         []HandoverKeyContact `json:"key_contacts"`
	ActiveProducts      []HandoverProduct    `json:"active_products"`
}

// HandoverNote is a condensed interaction entry.
type HandoverNote struct {
	Date    string `json:"date"`
	Type    string `json:"type"`
	Subject string `json:"subject"`
	Summary string `json:"summary"`
}

// HandoverKeyContact is a condensed contact entry.
type HandoverKeyContact struct {
	Name             string  `json:"name"`
	Title            *string `json:"title"`
	IsPrimary        bool    `json:"is_primary"`
	PreferredContact string  `json:"preferred_contact"`
	Notes            *string `json:"notes"`
}

// HandoverProduct is a condensed active-facility entry.
type HandoverProduct struct {
	ProductName       string  `json:"product_name"`
	FacilityAmountJPY *int64  `json:"facility_amount_jpy"`
	Status            string  `json:"status"`
	MaturityDate      *string `json:"maturity_date"`
}
