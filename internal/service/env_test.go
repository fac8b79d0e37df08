package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	internaldb "fundcrm/internal/db"
	"fundcrm/internal/db/repository"
	"fundcrm/internal/domain"
)

type testEnv struct {
	db        *sql.DB
	users     *repository.UserRepo
	auditRepo *repository.AuditRepo

	audit        *AuditService
	auth         *AuthService
	clients      *ClientService
	contacts     *ContactService
	interactions *InteractionService
	products     *ProductService
	cards        *BusinessCardService
	accounts     *UserService
	handovers    *HandoverService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	writeDB, _ := internaldb.OpenTestSQLite(t)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	userRepo := repository.NewUserRepo(writeDB)
	clientRepo := repository.NewClientRepo(writeDB)
	contactRepo := repository.NewContactRepo(writeDB)
	interactionRepo := repository.NewInteractionRepo(writeDB)
	productRepo := repository.NewProductRepo(writeDB)
	cardRepo := repository.NewBusinessCardRepo(writeDB)
	handoverRepo := repository.NewHandoverRepo(writeDB)
	auditRepo := repository.NewAuditRepo(writeDB)

	audit := NewAuditService(auditRepo, logger)

	return &testEnv{
		db:           writeDB,
		users:        userRepo,
		auditRepo:    auditRepo,
		audit:        audit,
		auth:         NewAuthService(userRepo, audit, []byte("test-secret"), defaultTestTTL),
		clients:      NewClientService(clientRepo, audit),
		contacts:     NewContactService(contactRepo, clientRepo, audit),
		interactions: NewInteractionService(interactionRepo, clientRepo, audit, t.TempDir()),
		products:     NewProductService(productRepo, clientRepo, audit),
		cards:        NewBusinessCardService(cardRepo, audit),
		accounts:     NewUserService(userRepo, audit),
		handovers: NewHandoverService(handoverRepo, clientRepo, interactionRepo,
			userRepo, audit),
	}
}

// seedUser inserts an account directly and returns it.
func (e *testEnv) seedUser(t *testing.T, email, fullName, role, password string) *domain.User {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	u, err := e.users.Create(context.Background(), &domain.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		Role:         role,
	})
	require.NoError(t, err)
	return u
}

func ctxAs(u *domain.User) context.Context {
	ctx := domain.WithUser(context.Background(), domain.ContextUser{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		Role:     u.Role,
	})
	return domain.WithClientIP(ctx, "192.0.2.1")
}

// lastAuditEntries returns the newest n chain entries, newest first.
func (e *testEnv) lastAuditEntries(t *testing.T, n int) []domain.AuditEntry {
	t.Helper()
	entries, _, err := e.auditRepo.List(context.Background(), domain.AuditFilter{
		Page: domain.PageRequest{Page: 1, Limit: n},
	})
	require.NoError(t, err)
	return entries
}

// failingAuditRepo rejects every append, for fail-closed tests.
type failingAuditRepo struct{}

func (f *failingAuditRepo) Append(context.Context, *domain.AuditEntry) (*domain.AuditEntry, error) {
	return nil, errors.New("disk full")
}

func (f *failingAuditRepo) List(context.Context, domain.AuditFilter) ([]domain.AuditEntry, int64, error) {
	return nil, 0, nil
}

func (f *failingAuditRepo) ListAll(context.Context) ([]domain.AuditEntry, error) {
	return nil, nil
}
