package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundcrm/internal/domain"
)

func TestHandoverService_GenerateBuildsContent(t *testing.T) {
	env := newTestEnv(t)
	from := env.seedUser(t, "from@bank.example", "From Manager", domain.RoleManager, "password123")
	to := env.seedUser(t, "to@bank.example", "To Manager", domain.RoleManager, "password123")
	ctx := ctxAs(from)

	client, err := env.clients.Create(ctx, &domain.Client{CompanyName: "Acme Corp"})
	require.NoError(t, err)
	_, err = env.interactions.Create(ctx, &domain.Interaction{
		ClientID:        client.ID,
		InteractionType: "meeting",
		Subject:         "Quarterly review",
		InteractionDate: "2025-01-10",
	})
	require.NoError(t, err)
	_, err = env.contacts.Create(ctx, &domain.Contact{
		ClientID:         client.ID,
		FirstName:        "Yuki",
		LastName:         "Tanaka",
		IsPrimaryContact: true,
	})
	require.NoError(t, err)

	pkg, err := env.handovers.Generate(ctx, GenerateRequest{
		Title:      "Portfolio handover",
		FromUserID: from.ID,
		ToUserID:   to.ID,
		ClientIDs:  []int64{client.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.HandoverDraft, pkg.Status)
	assert.Equal(t, []int64{client.ID}, pkg.ClientIDs)

	var content domain.HandoverContent
	require.NoError(t, json.Unmarshal([]byte(pkg.Content), &content))
	require.Len(t, content.Clients, 1)
	section := content.Clients[0]
	assert.Equal(t, "Acme Corp", section.CompanyName)
	require.Len(t, section.RecentInteractions, 1)
	assert.Equal(t, "Quarterly review", section.RecentInteractions[0].Subject)
	require.Len(t, section.KeyContacts, 1)
	assert.Equal(t, "Tanaka Yuki", section.KeyContacts[0].Name)
	assert.True(t, section.KeyContacts[0].IsPrimary)

	entries := env.lastAuditEntries(t, 1)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionHandoverGenerate, entries[0].Action)
}

func TestHandoverService_GenerateValidation(t *testing.T) {
	env := newTestEnv(t)
	from := env.seedUser(t, "from@bank.example", "From Manager", domain.RoleManager, "password123")
	staff := env.seedUser(t, "staff@bank.example", "Staff", domain.RoleStaff, "password123")
	ctx := ctxAs(from)

	var validation *domain.ValidationError
	var denied *domain.AccessDeniedError

	_, err := env.handovers.Generate(ctxAs(staff), GenerateRequest{
		Title: "X", FromUserID: from.ID, ToUserID: staff.ID, ClientIDs: []int64{1},
	})
	assert.ErrorAs(t, err, &denied)

	_, err = env.handovers.Generate(ctx, GenerateRequest{
		FromUserID: from.ID, ToUserID: staff.ID, ClientIDs: []int64{1},
	})
	assert.ErrorAs(t, err, &validation)

	_, err = env.handovers.Generate(ctx, GenerateRequest{
		Title: "X", FromUserID: from.ID, ToUserID: from.ID, ClientIDs: []int64{1},
	})
	assert.ErrorAs(t, err, &validation)

	_, err = env.handovers.Generate(ctx, GenerateRequest{
		Title: "X", FromUserID: from.ID, ToUserID: staff.ID, ClientIDs: nil,
	})
	assert.ErrorAs(t, err, &validation)
}

func TestHandoverService_ExportAuditsExport(t *testing.T) {
	env := newTestEnv(t)
	from := env.seedUser(t, "from@bank.example", "From Manager", domain.RoleManager, "password123")
	to := env.seedUser(t, "to@bank.example", "To Manager", domain.RoleManager, "password123")

	client, err := env.clients.Create(ctxAs(from), &domain.Client{CompanyName: "Acme Corp"})
	require.NoError(t, err)
	pkg, err := env.handovers.Generate(ctxAs(from), GenerateRequest{
		Title: "Portfolio handover", FromUserID: from.ID, ToUserID: to.ID,
		ClientIDs: []int64{client.ID},
	})
	require.NoError(t, err)

	exported, err := env.handovers.Export(ctxAs(to), pkg.ID)
	require.NoError(t, err)
	assert.JSONEq(t, pkg.Content, exported.Content)

	entries := env.lastAuditEntries(t, 1)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionExport, entries[0].Action)
	assert.Equal(t, domain.EntityHandoverPackage, entries[0].EntityType)
}

func TestHandoverService_FinalizeAndAcknowledge(t *testing.T) {
	env := newTestEnv(t)
	from := env.seedUser(t, "from@bank.example", "From Manager", domain.RoleManager, "password123")
	to := env.seedUser(t, "to@bank.example", "To Manager", domain.RoleManager, "password123")
	other := env.seedUser(t, "other@bank.example", "Other", domain.RoleManager, "password123")

	client, err := env.clients.Create(ctxAs(from), &domain.Client{CompanyName: "Acme Corp"})
	require.NoError(t, err)
	pkg, err := env.handovers.Generate(ctxAs(from), GenerateRequest{
		Title: "Portfolio handover", FromUserID: from.ID, ToUserID: to.ID,
		ClientIDs: []int64{client.ID},
	})
	require.NoError(t, err)

	// Acknowledging a draft conflicts.
	_, err = env.handovers.Acknowledge(ctxAs(to), pkg.ID)
	var conflict *domain.ConflictError
	assert.ErrorAs(t, err, &conflict)

	// Only the handing-over side may finalize.
	_, err = env.handovers.Finalize(ctxAs(other), pkg.ID)
	var denied *domain.AccessDeniedError
	assert.ErrorAs(t, err, &denied)

	finalized, err := env.handovers.Finalize(ctxAs(from), pkg.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.HandoverFinalized, finalized.Status)
	assert.NotNil(t, finalized.FinalizedAt)

	// Only the receiving side may acknowledge.
	_, err = env.handovers.Acknowledge(ctxAs(from), pkg.ID)
	assert.ErrorAs(t, err, &denied)

	acked, err := env.handovers.Acknowledge(ctxAs(to), pkg.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.HandoverAcknowledged, acked.Status)
	assert.NotNil(t, acked.AcknowledgedAt)
	require.NotNil(t, acked.AcknowledgedBy)
	assert.Equal(t, to.ID, *acked.AcknowledgedBy)

	// Re-finalizing conflicts.
	_, err = env.handovers.Finalize(ctxAs(from), pkg.ID)
	assert.ErrorAs(t, err, &conflict)

	entries := env.lastAuditEntries(t, 2)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.ActionHandoverAcknowledge, entries[0].Action)
	assert.Equal(t, domain.ActionHandoverFinalize, entries[1].Action)
}
