package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundcrm/internal/domain"
)

const defaultTestTTL = 24 * time.Hour

func TestAuditService_RecordRequiresActor(t *testing.T) {
	env := newTestEnv(t)

	err := env.audit.Record(context.Background(), domain.ActionCreate, domain.EntityClient, nil, nil, nil)
	require.Error(t, err)
	var unauthorized *domain.UnauthorizedError
	assert.ErrorAs(t, err, &unauthorized)
}

func TestAuditService_RecordCapturesActorAndIP(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "admin@bank.example", "Admin", domain.RoleAdmin, "password123")

	err := env.audit.Record(ctxAs(admin), domain.ActionCreate, domain.EntityClient,
		nil, nil, map[string]any{"company_name": "Acme Corp"})
	require.NoError(t, err)

	entries := env.lastAuditEntries(t, 1)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, admin.ID, e.ActorID)
	assert.Equal(t, "Admin", e.ActorName)
	require.NotNil(t, e.IP)
	assert.Equal(t, "192.0.2.1", *e.IP)
	require.NotNil(t, e.Details)
	assert.Equal(t, `{"company_name":"Acme Corp"}`, *e.Details)
}

func TestAuditService_RecordFailClosed(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewAuditService(&failingAuditRepo{}, logger)

	ctx := domain.WithUser(context.Background(), domain.ContextUser{ID: 1, FullName: "Admin", Role: domain.RoleAdmin})
	err := svc.Record(ctx, domain.ActionCreate, domain.EntityClient, nil, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record audit entry")
}

func TestAuditService_VerifyIntactChain(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "admin@bank.example", "Admin", domain.RoleAdmin, "password123")

	ctx := ctxAs(admin)
	for i := 0; i < 5; i++ {
		require.NoError(t, env.audit.Record(ctx, domain.ActionCreate, domain.EntityClient, nil, nil, nil))
	}

	res, err := env.audit.Verify(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, int64(5), res.EntriesChecked)
}

func TestAuditService_VerifyEmptyChain(t *testing.T) {
	env := newTestEnv(t)

	res, err := env.audit.Verify(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, int64(0), res.EntriesChecked)
}

func TestAuditService_ExportCSV(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "admin@bank.example", "Admin", domain.RoleAdmin, "password123")

	ctx := ctxAs(admin)
	require.NoError(t, env.audit.Record(ctx, domain.ActionCreate, domain.EntityClient, nil, nil, nil))
	require.NoError(t, env.audit.Record(ctx, domain.ActionUpdate, domain.EntityClient, nil, nil, nil))

	var buf bytes.Buffer
	require.NoError(t, env.audit.ExportCSV(ctx, &buf))

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3) // header + 2 entries
	assert.Equal(t, "sequence_id", records[0][0])
	assert.Equal(t, "entry_hash", records[0][11])
	assert.Len(t, records[1][11], 64)

	// The export itself lands in the chain.
	entries := env.lastAuditEntries(t, 1)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionExport, entries[0].Action)
}
