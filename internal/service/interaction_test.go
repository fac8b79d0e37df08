package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundcrm/internal/domain"
)

func seedClientAndInteraction(t *testing.T, env *testEnv, u *domain.User) (*domain.Client, *domain.Interaction) {
	t.Helper()
	client, err := env.clients.Create(ctxAs(u), &domain.Client{CompanyName: "Acme Corp"})
	require.NoError(t, err)
	interaction, err := env.interactions.Create(ctxAs(u), &domain.Interaction{
		ClientID:        client.ID,
		InteractionType: "meeting",
		Subject:         "Facility kickoff",
		InteractionDate: "2025-01-15",
	})
	require.NoError(t, err)
	return client, interaction
}

func TestInteractionService_CreateAndAudit(t *testing.T) {
	env := newTestEnv(t)
	staff := env.seedUser(t, "staff@bank.example", "Staff", domain.RoleStaff, "password123")

	_, interaction := seedClientAndInteraction(t, env, staff)
	assert.Equal(t, "medium", interaction.Priority)
	assert.Equal(t, staff.ID, interaction.CreatedBy)

	entries := env.lastAuditEntries(t, 1)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionCreate, entries[0].Action)
	assert.Equal(t, domain.EntityInteraction, entries[0].EntityType)
}

func TestInteractionService_LockBlocksChanges(t *testing.T) {
	env := newTestEnv(t)
	staff := env.seedUser(t, "staff@bank.example", "Staff", domain.RoleStaff, "password123")
	ctx := ctxAs(staff)

	_, interaction := seedClientAndInteraction(t, env, staff)

	locked, err := env.interactions.Lock(ctx, interaction.ID)
	require.NoError(t, err)
	assert.True(t, locked.IsLocked)
	assert.NotNil(t, locked.LockedAt)

	entries := env.lastAuditEntries(t, 1)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionLockInteraction, entries[0].Action)

	// Re-locking conflicts.
	_, err = env.interactions.Lock(ctx, interaction.ID)
	var conflict *domain.ConflictError
	assert.ErrorAs(t, err, &conflict)

	// Updates conflict.
	subject := "Rewritten history"
	_, err = env.interactions.Update(ctx, interaction.ID, domain.UpdateInteraction{Subject: &subject})
	assert.ErrorAs(t, err, &conflict)

	// Attachment changes conflict.
	_, err = env.interactions.AddAttachment(ctx, interaction.ID, "notes.pdf", "application/pdf",
		strings.NewReader("content"))
	assert.ErrorAs(t, err, &conflict)
}

func TestInteractionService_UpdateDiffAndAudit(t *testing.T) {
	env := newTestEnv(t)
	staff := env.seedUser(t, "staff@bank.example", "Staff", domain.RoleStaff, "password123")
	ctx := ctxAs(staff)

	_, interaction := seedClientAndInteraction(t, env, staff)

	outcome := "Agreed to proceed to documentation"
	sentiment := "positive"
	updated, err := env.interactions.Update(ctx, interaction.ID, domain.UpdateInteraction{
		MeetingOutcome: &outcome,
		Sentiment:      &sentiment,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.MeetingOutcome)
	assert.Equal(t, outcome, *updated.MeetingOutcome)

	entries := env.lastAuditEntries(t, 1)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionUpdate, entries[0].Action)
	require.NotNil(t, entries[0].Details)
	assert.Contains(t, *entries[0].Details, "meeting_outcome")
}

func TestInteractionService_Attachments(t *testing.T) {
	env := newTestEnv(t)
	staff := env.seedUser(t, "staff@bank.example", "Staff", domain.RoleStaff, "password123")
	ctx := ctxAs(staff)

	_, interaction := seedClientAndInteraction(t, env, staff)

	a, err := env.interactions.AddAttachment(ctx, interaction.ID, "terms.pdf", "application/pdf",
		strings.NewReader("facility terms"))
	require.NoError(t, err)
	assert.Equal(t, "terms.pdf", a.FileName)
	assert.Equal(t, int64(len("facility terms")), a.SizeBytes)
	assert.True(t, strings.HasSuffix(a.StoredName, ".pdf"))

	meta, f, err := env.interactions.OpenAttachment(ctx, a.ID)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck
	assert.Equal(t, a.ID, meta.ID)

	list, err := env.interactions.ListAttachments(ctx, interaction.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, env.interactions.DeleteAttachment(ctx, a.ID))
	list, err = env.interactions.ListAttachments(ctx, interaction.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	entries := env.lastAuditEntries(t, 1)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionDelete, entries[0].Action)
	assert.Equal(t, domain.EntityAttachment, entries[0].EntityType)
}

func TestInteractionService_DeleteAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	staff := env.seedUser(t, "staff@bank.example", "Staff", domain.RoleStaff, "password123")
	admin := env.seedUser(t, "admin@bank.example", "Admin", domain.RoleAdmin, "password123")

	_, interaction := seedClientAndInteraction(t, env, staff)

	err := env.interactions.Delete(ctxAs(staff), interaction.ID)
	var denied *domain.AccessDeniedError
	assert.ErrorAs(t, err, &denied)

	require.NoError(t, env.interactions.Delete(ctxAs(admin), interaction.ID))

	_, err = env.interactions.Get(ctxAs(admin), interaction.ID)
	var notFound *domain.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestInteractionService_DeleteLockedRejected(t *testing.T) {
	env := newTestEnv(t)
	staff := env.seedUser(t, "staff@bank.example", "Staff", domain.RoleStaff, "password123")
	admin := env.seedUser(t, "admin@bank.example", "Admin", domain.RoleAdmin, "password123")

	_, interaction := seedClientAndInteraction(t, env, staff)
	_, err := env.interactions.Lock(ctxAs(staff), interaction.ID)
	require.NoError(t, err)

	err = env.interactions.Delete(ctxAs(admin), interaction.ID)
	var conflict *domain.ConflictError
	assert.ErrorAs(t, err, &conflict)
}
