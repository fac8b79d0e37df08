package domain

import "time"

// ValidInteractionType reports whether t is a known interaction type.
func ValidInteractionType(t string) bool {
	switch t {
	case "meeting", "call", "email", "proposal", "site_visit", "conference", "other":
		return true
	}
	return false
}

// ValidProposalStatus reports whether s is a known proposal status.
func ValidProposalStatus(s string) bool {
	switch s {
	case "draft", "submitted", "under_review", "accepted", "rejected", "withdrawn":
		return true
	}
	return false
}

// ValidSentiment reports whether s is a known sentiment.
func ValidSentiment(s string) bool {
	return s == "positive" || s == "neutral" || s == "negative"
}

// ValidPriority reports whether p is a known priority.
func ValidPriority(p string) bool {
	return p == "low" || p == "medium" || p == "high" || p == "urgent"
}

// Interaction is a logged touchpoint with a client: meeting, call,
// proposal, and so on. Once locked it becomes read-only.
type Interaction struct {
	ID                   int64
	ClientID             int64
	CompanyName          *string // joined for list/detail views
	InteractionType      string
	Subject              string
	Description          *string
	InteractionDate      string
	DurationMinutes      *int64
	Location             *string
	MeetingObjective     *string
	MeetingOutcome       *string
	NextSteps            *string
	FollowUpDate         *string
	InternalParticipants *string
	ExternalParticipants *string
	ProposalAmountJPY    *int64
	ProposalStatus       *string
	Sentiment            *string
	Priority             string
	IsLocked             bool
	LockedAt             *time.Time
	CreatedBy            int64
	CreatedByName        *string // joined
	AttachmentCount      int64
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// UpdateInteraction holds optional interaction updates. Nil means
// "leave as is". Updates are rejected once the interaction is locked.
type UpdateInteraction struct {
	InteractionType      *string
	Subject              *string
	Description          *string
	InteractionDate      *string
	DurationMinutes      *int64
	Location             *string
	MeetingObjective     *string
	MeetingOutcome       *string
	NextSteps            *string
	FollowUpDate         *string
	InternalParticipants *string
	ExternalParticipants *string
	ProposalAmountJPY    *int64
	ProposalStatus       *string
	Sentiment            *string
	Priority             *string
}

// InteractionFilter narrows interaction list queries.
type InteractionFilter struct {
	ClientID        *int64
	InteractionType *string
	From            *string // inclusive interaction_date lower bound
	To              *string // inclusive interaction_date upper bound
	CreatedBy       *int64
	Page            PageRequest
}

// Attachment is a file stored against an interaction. The binary lives
// on disk under the configured attachment directory; the row records
// its metadata and storage name.
type Attachment struct {
	ID            int64
	InteractionID int64
	FileName      string
	StoredName    string
	ContentType   string
	SizeBytes     int64
	UploadedBy    int64
	CreatedAt     time.Time
}
