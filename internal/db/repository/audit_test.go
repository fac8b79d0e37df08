package repository

import (
	"context"
	"sync"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internaldb "fundcrm/internal/db"
	"fundcrm/internal/domain"
)

func setupAuditRepo(t *testing.T) *AuditRepo {
	t.Helper()
	writeDB, _ := internaldb.OpenTestSQLite(t)
	return NewAuditRepo(writeDB)
}

func ptrStr(s string) *string { return &s }
func ptrInt64(i int64) *int64 { return &i }

func makeEntry(actorID int64, actorName, action, entityType string) *domain.AuditEntry {
	return &domain.AuditEntry{
		ActorID:    actorID,
		ActorName:  actorName,
		Action:     action,
		EntityType: entityType,
	}
}

func TestAuditRepo_AppendLinksChain(t *testing.T) {
	repo := setupAuditRepo(t)
	ctx := context.Background()

	first, err := repo.Append(ctx, makeEntry(1, "Tanaka", domain.ActionLogin, domain.EntitySession))
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.SequenceID)
	assert.Nil(t, first.PreviousHash)
	assert.Len(t, first.EntryHash, 64)

	second := makeEntry(1, "Tanaka", domain.ActionCreate, domain.EntityClient)
	second.EntityID = ptrInt64(42)
	second, err = repo.Append(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.SequenceID)
	require.NotNil(t, second.PreviousHash)
	assert.Equal(t, first.EntryHash, *second.PreviousHash)

	third, err := repo.Append(ctx, makeEntry(2, "Suzuki", domain.ActionUpdate, domain.EntityClient))
	require.NoError(t, err)
	require.NotNil(t, third.PreviousHash)
	assert.Equal(t, second.EntryHash, *third.PreviousHash)
}

func TestAuditRepo_ChainVerifiesAfterAppends(t *testing.T) {
	repo := setupAuditRepo(t)
	ctx := context.Background()

	for i := int64(1); i <= 10; i++ {
		e := makeEntry(i, "actor", domain.ActionCreate, domain.EntityClient)
		e.EntityID = ptrInt64(i)
		e.Details = ptrStr(`{"company_name":"Client"}`)
		_, err := repo.Append(ctx, e)
		require.NoError(t, err)
	}

	entries, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 10)

	res := domain.VerifyChain(entries)
	assert.True(t, res.Valid)
	assert.Nil(t, res.FirstBrokenSequenceID)
	assert.Equal(t, int64(10), res.EntriesChecked)
}

func TestAuditRepo_AppendOnlyEnforced(t *testing.T) {
	repo := setupAuditRepo(t)
	ctx := context.Background()

	_, err := repo.Append(ctx, makeEntry(1, "Tanaka", domain.ActionLogin, domain.EntitySession))
	require.NoError(t, err)

	_, err = repo.db.ExecContext(ctx,
		`UPDATE audit_log SET actor_name = 'Mallory' WHERE sequence_id = 1`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "append-only")

	_, err = repo.db.ExecContext(ctx, `DELETE FROM audit_log WHERE sequence_id = 1`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "append-only")
}

func TestAuditRepo_ConcurrentAppendsDoNotFork(t *testing.T) {
	repo := setupAuditRepo(t)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e := makeEntry(int64(i+1), "actor", domain.ActionCreate, domain.EntityClient)
			_, err := repo.Append(ctx, e)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	entries, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, n)

	res := domain.VerifyChain(entries)
	assert.True(t, res.Valid)

	// Every previous_hash must be distinct: no two entries share a parent.
	seen := map[string]bool{}
	for _, e := range entries[1:] {
		require.NotNil(t, e.PreviousHash)
		assert.False(t, seen[*e.PreviousHash])
		seen[*e.PreviousHash] = true
	}
}

func TestAuditRepo_ListFilters(t *testing.T) {
	repo := setupAuditRepo(t)
	ctx := context.Background()

	_, err := repo.Append(ctx, makeEntry(1, "Tanaka", domain.ActionLogin, domain.EntitySession))
	require.NoError(t, err)
	e := makeEntry(1, "Tanaka", domain.ActionCreate, domain.EntityClient)
	e.EntityID = ptrInt64(7)
	_, err = repo.Append(ctx, e)
	require.NoError(t, err)
	_, err = repo.Append(ctx, makeEntry(2, "Suzuki", domain.ActionLogin, domain.EntitySession))
	require.NoError(t, err)

	entries, total, err := repo.List(ctx, domain.AuditFilter{Action: ptrStr(domain.ActionLogin)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, entries, 2)

	entries, total, err = repo.List(ctx, domain.AuditFilter{
		EntityType: ptrStr(domain.EntityClient),
		EntityID:   ptrInt64(7),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionCreate, entries[0].Action)

	// Newest first.
	entries, _, err = repo.List(ctx, domain.AuditFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, int64(3), entries[0].SequenceID)
}

func TestAuditRepo_ListPagination(t *testing.T) {
	repo := setupAuditRepo(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := repo.Append(ctx, makeEntry(1, "actor", domain.ActionCreate, domain.EntityClient))
		require.NoError(t, err)
	}

	entries, total, err := repo.List(ctx, domain.AuditFilter{
		Page: domain.PageRequest{Page: 2, Limit: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(3), entries[0].SequenceID)
	assert.Equal(t, int64(2), entries[1].SequenceID)
}
