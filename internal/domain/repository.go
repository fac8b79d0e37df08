package domain

import "context"

// UserRepository provides CRUD operations for user accounts.
type UserRepository interface {
	Create(ctx context.Context, u *User) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetActiveByID(ctx context.Context, id int64) (*User, error)
	GetActiveByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, page PageRequest) ([]User, int64, error)
	Update(ctx context.Context, id int64, fields map[string]any) error
	TouchLastLogin(ctx context.Context, id int64) error
}

// ClientRepository provides CRUD operations for corporate clients.
type ClientRepository interface {
	Create(ctx context.Context, c *Client) (*Client, error)
	GetByID(ctx context.Context, id int64) (*Client, error)
	GetDetail(ctx context.Context, id int64) (*ClientDetail, error)
	List(ctx context.Context, filter ClientFilter) ([]ClientSummary, int64, error)
	Update(ctx context.Context, id int64, fields map[string]any) error
}

// ContactRepository provides CRUD operations for client contacts.
type ContactRepository interface {
	Create(ctx context.Context, c *Contact) (*Contact, error)
	GetByID(ctx context.Context, id int64) (*Contact, error)
	ListForClient(ctx context.Context, clientID int64, activeOnly bool) ([]Contact, error)
	Update(ctx context.Context, id int64, fields map[string]any) error
	Deactivate(ctx context.Context, id int64) error
}

// InteractionRepository provides CRUD operations for interactions and
// their attachments.
type InteractionRepository interface {
	Create(ctx context.Context, i *Interaction) (*Interaction, error)
	GetByID(ctx context.Context, id int64) (*Interaction, error)
	List(ctx context.Context, filter InteractionFilter) ([]Interaction, int64, error)
	Update(ctx context.Context, id int64, fields map[string]any) error
	Lock(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error

	AddAttachment(ctx context.Context, a *Attachment) (*Attachment, error)
	GetAttachment(ctx context.Context, id int64) (*Attachment, error)
	ListAttachments(ctx context.Context, interactionID int64) ([]Attachment, error)
	DeleteAttachment(ctx context.Context, id int64) error
}

// ProductRepository provides access to the fund-product catalog and
// per-client facility assignments.
type ProductRepository interface {
	ListFundProducts(ctx context.Context, activeOnly bool) ([]FundProduct, error)
	GetFundProduct(ctx context.Context, id int64) (*FundProduct, error)
	CreateFundProduct(ctx context.Context, p *FundProduct) (*FundProduct, error)

	AssignToClient(ctx context.Context, cp *ClientProduct) (*ClientProduct, error)
	GetClientProduct(ctx context.Context, id int64) (*ClientProduct, error)
	ListForClient(ctx context.Context, clientID int64) ([]ClientProduct, error)
	UpdateClientProduct(ctx context.Context, id int64, fields map[string]any) error
}

// BusinessCardRepository provides CRUD operations for business cards.
type BusinessCardRepository interface {
	Create(ctx context.Context, b *BusinessCard) (*BusinessCard, error)
	GetByID(ctx context.Context, id int64) (*BusinessCard, error)
	List(ctx context.Context, filter BusinessCardFilter) ([]BusinessCard, int64, error)
	ListForClient(ctx context.Context, clientID int64) ([]BusinessCard, error)
	Update(ctx context.Context, id int64, fields map[string]any) error
	Delete(ctx context.Context, id int64) error
}

// HandoverRepository provides CRUD operations for handover packages.
type HandoverRepository interface {
	Create(ctx context.Context, h *HandoverPackage) (*HandoverPackage, error)
	GetByID(ctx context.Context, id int64) (*HandoverPackage, error)
	List(ctx context.Context, page PageRequest) ([]HandoverPackage, int64, error)
	SetStatus(ctx context.Context, id int64, status string, actorID int64) error
}

// AuditRepository is the persistence port for the audit hash chain.
//
// Append must atomically read the newest entry's hash and insert the
// new row linked to it — implementations serialize concurrent appends
// so the chain stays linear. No update or delete operation exists.
type AuditRepository interface {
	Append(ctx context.Context, e *AuditEntry) (*AuditEntry, error)
	List(ctx context.Context, filter AuditFilter) ([]AuditEntry, int64, error)
	ListAll(ctx context.Context) ([]AuditEntry, error)
}
