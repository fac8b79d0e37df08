package api

import (
	"time"

	"fundcrm/internal/domain"
)

// JSON projections of the domain types. Kept separate so wire names
// stay stable when domain structs move.

func fmtTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func fmtTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := fmtTime(*t)
	return &s
}

type userView struct {
	ID           int64   `json:"id"`
	Email        string  `json:"email"`
	FullName     string  `json:"full_name"`
	FullNameKana *string `json:"full_name_kana"`
	Role         string  `json:"role"`
	Department   *string `json:"department"`
	Title        *string `json:"title"`
	Phone        *string `json:"phone"`
	IsActive     bool    `json:"is_active"`
	LastLoginAt  *string `json:"last_login_at"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

func toUserView(u *domain.User) userView {
	return userView{
		ID:           u.ID,
		Email:        u.Email,
		FullName:     u.FullName,
		FullNameKana: u.FullNameKana,
		Role:         u.Role,
		Department:   u.Department,
		Title:        u.Title,
		Phone:        u.Phone,
		IsActive:     u.IsActive,
		LastLoginAt:  fmtTimePtr(u.LastLoginAt),
		CreatedAt:    fmtTime(u.CreatedAt),
		UpdatedAt:    fmtTime(u.UpdatedAt),
	}
}

type clientView struct {
	ID                    int64   `json:"id"`
	CompanyName           string  `json:"company_name"`
	CompanyNameKana       *string `json:"company_name_kana"`
	CompanyNameEn         *string `json:"company_name_en"`
	Industry              *string `json:"industry"`
	SubIndustry           *string `json:"sub_industry"`
	CompanyType           *string `json:"company_type"`
	RegistrationNumber    *string `json:"registration_number"`
	Address               *string `json:"address"`
	AddressEn             *string `json:"address_en"`
	City                  *string `json:"city"`
	Country               string  `json:"country"`
	Phone                 *string `json:"phone"`
	Website               *string `json:"website"`
	FiscalYearEnd         *string `json:"fiscal_year_end"`
	AumJPY                *int64  `json:"aum_jpy"`
	EmployeeCount         *int64  `json:"employee_count"`
	RelationshipStartDate *string `json:"relationship_start_date"`
	RelationshipStatus    string  `json:"relationship_status"`
	RiskRating            *string `json:"risk_rating"`
	AssignedRMID          *int64  `json:"assigned_rm_id"`
	CapitalAmountJPY      *int64  `json:"capital_amount_jpy"`
	RevenueJPY            *int64  `json:"revenue_jpy"`
	StockCode             *string `json:"stock_code"`
	FoundingDate          *string `json:"founding_date"`
	RepresentativeName    *string `json:"representative_name"`
	RepresentativeTitle   *string `json:"representative_title"`
	Notes                 *string `json:"notes"`
	CreatedBy             *int64  `json:"created_by"`
	CreatedAt             string  `json:"created_at"`
	UpdatedAt             string  `json:"updated_at"`
}

func toClientView(c *domain.Client) clientView {
	return clientView{
		ID:                    c.ID,
		CompanyName:           c.CompanyName,
		CompanyNameKana:       c.CompanyNameKana,
		CompanyNameEn:         c.CompanyNameEn,
		Industry:              c.Industry,
		SubIndustry:           c.SubIndustry,
		CompanyType:           c.CompanyType,
		RegistrationNumber:    c.RegistrationNumber,
		Address:               c.Address,
		AddressEn:             c.AddressEn,
		City:                  c.City,
		Country:               c.Country,
		Phone:                 c.Phone,
		Website:               c.Website,
		FiscalYearEnd:         c.FiscalYearEnd,
		AumJPY:                c.AumJPY,
		EmployeeCount:         c.EmployeeCount,
		RelationshipStartDate: c.RelationshipStartDate,
		RelationshipStatus:    c.RelationshipStatus,
		RiskRating:            c.RiskRating,
		AssignedRMID:          c.AssignedRMID,
		CapitalAmountJPY:      c.CapitalAmountJPY,
		RevenueJPY:            c.RevenueJPY,
		StockCode:             c.StockCode,
		FoundingDate:          c.FoundingDate,
		RepresentativeName:    c.RepresentativeName,
		RepresentativeTitle:   c.RepresentativeTitle,
		Notes:                 c.Notes,
		CreatedBy:             c.CreatedBy,
		CreatedAt:             fmtTime(c.CreatedAt),
		UpdatedAt:             fmtTime(c.UpdatedAt),
	}
}

type clientSummaryView struct {
	ID                     int64   `json:"id"`
	CompanyName            string  `json:"company_name"`
	CompanyNameEn          *string `json:"company_name_en"`
	Industry               *string `json:"industry"`
	CompanyType            *string `json:"company_type"`
	RelationshipStatus     string  `json:"relationship_status"`
	RiskRating             *string `json:"risk_rating"`
	AssignedRMID           *int64  `json:"assigned_rm_id"`
	AssignedRMName         *string `json:"assigned_rm_name"`
	InteractionCount       int64   `json:"interaction_count"`
	LastInteractionDate    *string `json:"last_interaction_date"`
	ActiveProductCount     int64   `json:"active_product_count"`
	TotalActiveFacilityJPY *int64  `json:"total_active_facility_jpy"`
	CreatedAt              string  `json:"created_at"`
}

func toClientSummaryViews(in []domain.ClientSummary) []clientSummaryView {
	out := make([]clientSummaryView, 0, len(in))
	for _, s := range in {
		out = append(out, clientSummaryView{
			ID:                     s.ID,
			CompanyName:            s.CompanyName,
			CompanyNameEn:          s.CompanyNameEn,
			Industry:               s.Industry,
			CompanyType:            s.CompanyType,
			RelationshipStatus:     s.RelationshipStatus,
			RiskRating:             s.RiskRating,
			AssignedRMID:           s.AssignedRMID,
			AssignedRMName:         s.AssignedRMName,
			InteractionCount:       s.InteractionCount,
			LastInteractionDate:    s.LastInteractionDate,
			ActiveProductCount:     s.ActiveProductCount,
			TotalActiveFacilityJPY: s.TotalActiveFacilityJPY,
			CreatedAt:              fmtTime(s.CreatedAt),
		})
	}
	return out
}

type clientDetailView struct {
	clientView
	AssignedRMName         *string             `json:"assigned_rm_name"`
	Contacts               []contactView       `json:"contacts"`
	Products               []clientProductView `json:"products"`
	RecentInteractionCount int64               `json:"recent_interaction_count"`
}

func toClientDetailView(d *domain.ClientDetail) clientDetailView {
	return clientDetailView{
		clientView:             toClientView(&d.Client),
		AssignedRMName:         d.AssignedRMName,
		Contacts:               toContactViews(d.Contacts),
		Products:               toClientProductViews(d.Products),
		RecentInteractionCount: d.RecentInteractionCount,
	}
}

type contactView struct {
	ID                     int64   `json:"id"`
	ClientID               int64   `json:"client_id"`
	FirstName              string  `json:"first_name"`
	LastName               string  `json:"last_name"`
	FirstNameKana          *string `json:"first_name_kana"`
	LastNameKana           *string `json:"last_name_kana"`
	Title                  *string `json:"title"`
	Department             *string `json:"department"`
	Email                  *string `json:"email"`
	Phone                  *string `json:"phone"`
	Mobile                 *string `json:"mobile"`
	IsPrimaryContact       bool    `json:"is_primary_contact"`
	IsDecisionMaker        bool    `json:"is_decision_maker"`
	PreferredLanguage      string  `json:"preferred_language"`
	PreferredContactMethod string  `json:"preferred_contact_method"`
	Notes                  *string `json:"notes"`
	IsActive               bool    `json:"is_active"`
	CreatedAt              string  `json:"created_at"`
	UpdatedAt              string  `json:"updated_at"`
}

func toContactView(c *domain.Contact) contactView {
	return contactView{
		ID:                     c.ID,
		ClientID:               c.ClientID,
		FirstName:              c.FirstName,
		LastName:               c.LastName,
		FirstNameKana:          c.FirstNameKana,
		LastNameKana:           c.LastNameKana,
		Title:                  c.Title,
		Department:             c.Department,
		Email:                  c.Email,
		Phone:                  c.Phone,
		Mobile:                 c.Mobile,
		IsPrimaryContact:       c.IsPrimaryContact,
		IsDecisionMaker:        c.IsDecisionMaker,
		PreferredLanguage:      c.PreferredLanguage,
		PreferredContactMethod: c.PreferredContactMethod,
		Notes:                  c.Notes,
		IsActive:               c.IsActive,
		CreatedAt:              fmtTime(c.CreatedAt),
		UpdatedAt:              fmtTime(c.UpdatedAt),
	}
}

func toContactViews(in []domain.Contact) []contactView {
	out := make([]contactView, 0, len(in))
	for i := range in {
		out = append(out, toContactView(&in[i]))
	}
	return out
}

type interactionView struct {
	ID                   int64   `json:"id"`
	ClientID             int64   `json:"client_id"`
	CompanyName          *string `json:"company_name"`
	InteractionType      string  `json:"interaction_type"`
	Subject              string  `json:"subject"`
	Description          *string `json:"description"`
	InteractionDate      string  `json:"interaction_date"`
	DurationMinutes      *int64  `json:"duration_minutes"`
	Location             *string `json:"location"`
	MeetingObjective     *string `json:"meeting_objective"`
	MeetingOutcome       *string `json:"meeting_outcome"`
	NextSteps            *string `json:"next_steps"`
	FollowUpDate         *string `json:"follow_up_date"`
	InternalParticipants *string `json:"internal_participants"`
	ExternalParticipants *string `json:"external_participants"`
	ProposalAmountJPY    *int64  `json:"proposal_amount_jpy"`
	ProposalStatus       *string `json:"proposal_status"`
	Sentiment            *string `json:"sentiment"`
	Priority             string  `json:"priority"`
	IsLocked             bool    `json:"is_locked"`
	LockedAt             *string `json:"locked_at"`
	CreatedBy            int64   `json:"created_by"`
	CreatedByName        *string `json:"created_by_name"`
	AttachmentCount      int64   `json:"attachment_count"`
	CreatedAt            string  `json:"created_at"`
	UpdatedAt            string  `json:"updated_at"`
}

func toInteractionView(i *domain.Interaction) interactionView {
	return interactionView{
		ID:                   i.ID,
		ClientID:             i.ClientID,
		CompanyName:          i.CompanyName,
		InteractionType:      i.InteractionType,
		Subject:              i.Subject,
		Description:          i.Description,
		InteractionDate:      i.InteractionDate,
		DurationMinutes:      i.DurationMinutes,
		Location:             i.Location,
		MeetingObjective:     i.MeetingObjective,
		MeetingOutcome:       i.MeetingOutcome,
		NextSteps:            i.NextSteps,
		FollowUpDate:         i.FollowUpDate,
		InternalParticipants: i.InternalParticipants,
		ExternalParticipants: i.ExternalParticipants,
		ProposalAmountJPY:    i.ProposalAmountJPY,
		ProposalStatus:       i.ProposalStatus,
		Sentiment:            i.Sentiment,
		Priority:             i.Priority,
		IsLocked:             i.IsLocked,
		LockedAt:             fmtTimePtr(i.LockedAt),
		CreatedBy:            i.CreatedBy,
		CreatedByName:        i.CreatedByName,
		AttachmentCount:      i.AttachmentCount,
		CreatedAt:            fmtTime(i.CreatedAt),
		UpdatedAt:            fmtTime(i.UpdatedAt),
	}
}

func toInteractionViews(in []domain.Interaction) []interactionView {
	out := make([]interactionView, 0, len(in))
	for i := range in {
		out = append(out, toInteractionView(&in[i]))
	}
	return out
}

type attachmentView struct {
	ID            int64  `json:"id"`
	InteractionID int64  `json:"interaction_id"`
	FileName      string `json:"file_name"`
	ContentType   string `json:"content_type"`
	SizeBytes     int64  `json:"size_bytes"`
	UploadedBy    int64  `json:"uploaded_by"`
	CreatedAt     string `json:"created_at"`
}

func toAttachmentView(a *domain.Attachment) attachmentView {
	return attachmentView{
		ID:            a.ID,
		InteractionID: a.InteractionID,
		FileName:      a.FileName,
		ContentType:   a.ContentType,
		SizeBytes:     a.SizeBytes,
		UploadedBy:    a.UploadedBy,
		CreatedAt:     fmtTime(a.CreatedAt),
	}
}

func toAttachmentViews(in []domain.Attachment) []attachmentView {
	out := make([]attachmentView, 0, len(in))
	for i := range in {
		out = append(out, toAttachmentView(&in[i]))
	}
	return out
}

type fundProductView struct {
	ID                 int64   `json:"id"`
	ProductName        string  `json:"product_name"`
	ProductNameEn      *string `json:"product_name_en"`
	ProductType        string  `json:"product_type"`
	Description        *string `json:"description"`
	TypicalTenorMonths *int64  `json:"typical_tenor_months"`
	MinAmountJPY       *int64  `json:"min_amount_jpy"`
	MaxAmountJPY       *int64  `json:"max_amount_jpy"`
	BaseRate           *string `json:"base_rate"`
	SpreadBpsMin       *int64  `json:"spread_bps_min"`
	SpreadBpsMax       *int64  `json:"spread_bps_max"`
	IsActive           bool    `json:"is_active"`
	CreatedAt          string  `json:"created_at"`
}

func toFundProductView(p *domain.FundProduct) fundProductView {
	return fundProductView{
		ID:                 p.ID,
		ProductName:        p.ProductName,
		ProductNameEn:      p.ProductNameEn,
		ProductType:        p.ProductType,
		Description:        p.Description,
		TypicalTenorMonths: p.TypicalTenorMonths,
		MinAmountJPY:       p.MinAmountJPY,
		MaxAmountJPY:       p.MaxAmountJPY,
		BaseRate:           p.BaseRate,
		SpreadBpsMin:       p.SpreadBpsMin,
		SpreadBpsMax:       p.SpreadBpsMax,
		IsActive:           p.IsActive,
		CreatedAt:          fmtTime(p.CreatedAt),
	}
}

type clientProductView struct {
	ID                int64   `json:"id"`
	ClientID          int64   `json:"client_id"`
	ProductID         int64   `json:"product_id"`
	ProductName       *string `json:"product_name"`
	ProductType       *string `json:"product_type"`
	FacilityAmountJPY *int64  `json:"facility_amount_jpy"`
	SpreadBps         *int64  `json:"spread_bps"`
	StartDate         *string `json:"start_date"`
	MaturityDate      *string `json:"maturity_date"`
	Status            string  `json:"status"`
	Notes             *string `json:"notes"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
}

func toClientProductView(cp *domain.ClientProduct) clientProductView {
	return clientProductView{
		ID:                cp.ID,
		ClientID:          cp.ClientID,
		ProductID:         cp.ProductID,
		ProductName:       cp.ProductName,
		ProductType:       cp.ProductType,
		FacilityAmountJPY: cp.FacilityAmountJPY,
		SpreadBps:         cp.SpreadBps,
		StartDate:         cp.StartDate,
		MaturityDate:      cp.MaturityDate,
		Status:            cp.Status,
		Notes:             cp.Notes,
		CreatedAt:         fmtTime(cp.CreatedAt),
		UpdatedAt:         fmtTime(cp.UpdatedAt),
	}
}

func toClientProductViews(in []domain.ClientProduct) []clientProductView {
	out := make([]clientProductView, 0, len(in))
	for i := range in {
		out = append(out, toClientProductView(&in[i]))
	}
	return out
}

type businessCardView struct {
	ID           int64   `json:"id"`
	ContactID    *int64  `json:"contact_id"`
	ClientID     *int64  `json:"client_id"`
	ImagePath    string  `json:"image_path"`
	CompanyName  *string `json:"company_name"`
	PersonName   *string `json:"person_name"`
	Department   *string `json:"department"`
	Title        *string `json:"title"`
	Phone        *string `json:"phone"`
	Mobile       *string `json:"mobile"`
	Email        *string `json:"email"`
	Address      *string `json:"address"`
	Website      *string `json:"website"`
	ExchangeDate *string `json:"exchange_date"`
	OwnerUserID  *int64  `json:"owner_user_id"`
	OwnerName    *string `json:"owner_name"`
	Notes        *string `json:"notes"`
	Tags         *string `json:"tags"`
	IsDigitized  bool    `json:"is_digitized"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

func toBusinessCardView(b *domain.BusinessCard) businessCardView {
	return businessCardView{
		ID:           b.ID,
		ContactID:    b.ContactID,
		ClientID:     b.ClientID,
		ImagePath:    b.ImagePath,
		CompanyName:  b.CompanyName,
		PersonName:   b.PersonName,
		Department:   b.Department,
		Title:        b.Title,
		Phone:        b.Phone,
		Mobile:       b.Mobile,
		Email:        b.Email,
		Address:      b.Address,
		Website:      b.Website,
		ExchangeDate: b.ExchangeDate,
		OwnerUserID:  b.OwnerUserID,
		OwnerName:    b.OwnerName,
		Notes:        b.Notes,
		Tags:         b.Tags,
		IsDigitized:  b.IsDigitized,
		CreatedAt:    fmtTime(b.CreatedAt),
		UpdatedAt:    fmtTime(b.UpdatedAt),
	}
}

func toBusinessCardViews(in []domain.BusinessCard) []businessCardView {
	out := make([]businessCardView, 0, len(in))
	for i := range in {
		out = append(out, toBusinessCardView(&in[i]))
	}
	return out
}

type handoverView struct {
	ID             int64   `json:"id"`
	Title          string  `json:"title"`
	Description    *string `json:"description"`
	FromUserID     int64   `json:"from_user_id"`
	FromUserName   *string `json:"from_user_name"`
	ToUserID       int64   `json:"to_user_id"`
	ToUserName     *string `json:"to_user_name"`
	ClientIDs      []int64 `json:"client_ids"`
	Content        string  `json:"content"`
	Status         string  `json:"status"`
	FinalizedAt    *string `json:"finalized_at"`
	AcknowledgedAt *string `json:"acknowledged_at"`
	AcknowledgedBy *int64  `json:"acknowledged_by"`
	CreatedBy      int64   `json:"created_by"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

func toHandoverView(h *domain.HandoverPackage) handoverView {
	return handoverView{
		ID:             h.ID,
		Title:          h.Title,
		Description:    h.Description,
		FromUserID:     h.FromUserID,
		FromUserName:   h.FromUserName,
		ToUserID:       h.ToUserID,
		ToUserName:     h.ToUserName,
		ClientIDs:      h.ClientIDs,
		Content:        h.Content,
		Status:         h.Status,
		FinalizedAt:    fmtTimePtr(h.FinalizedAt),
		AcknowledgedAt: fmtTimePtr(h.AcknowledgedAt),
		AcknowledgedBy: h.AcknowledgedBy,
		CreatedBy:      h.CreatedBy,
		CreatedAt:      fmtTime(h.CreatedAt),
		UpdatedAt:      fmtTime(h.UpdatedAt),
	}
}

func toHandoverViews(in []domain.HandoverPackage) []handoverView {
	out := make([]handoverView, 0, len(in))
	for i := range in {
		out = append(out, toHandoverView(&in[i]))
	}
	return out
}

type auditEntryView struct {
	SequenceID   int64   `json:"sequence_id"`
	Timestamp    string  `json:"timestamp"`
	ActorID      int64   `json:"actor_id"`
	ActorName    string  `json:"actor_name"`
	Action       string  `json:"action"`
	EntityType   string  `json:"entity_type"`
	EntityID     *int64  `json:"entity_id"`
	EntityName   *string `json:"entity_name"`
	Details      *string `json:"details"`
	IPAddress    *string `json:"ip_address"`
	PreviousHash *string `json:"previous_hash"`
	EntryHash    string  `json:"entry_hash"`
}

func toAuditEntryViews(in []domain.AuditEntry) []auditEntryView {
	out := make([]auditEntryView, 0, len(in))
	for _, e := range in {
		out = append(out, auditEntryView{
			SequenceID:   e.SequenceID,
			Timestamp:    e.Timestamp,
			ActorID:      e.ActorID,
			ActorName:    e.ActorName,
			Action:       e.Action,
			EntityType:   e.EntityType,
			EntityID:     e.EntityID,
			EntityName:   e.EntityName,
			Details:      e.Details,
			IPAddress:    e.IP,
			PreviousHash: e.PreviousHash,
			EntryHash:    e.EntryHash,
		})
	}
	return out
}
