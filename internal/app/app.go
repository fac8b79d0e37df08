// Package app wires repositories, services, and the HTTP handler from
// the dependencies main() provides.
package app

import (
	"context"
	"database/sql"
	"log/slog"

	"fundcrm/internal/api"
	"fundcrm/internal/config"
	"fundcrm/internal/db/repository"
	"fundcrm/internal/domain"
	"fundcrm/internal/service"
)

// Deps holds the external dependencies that main() must provide:
// database handles, config, and the logger.
type Deps struct {
	Cfg     *config.Config
	WriteDB *sql.DB
	ReadDB  *sql.DB
	Logger  *slog.Logger
}

// App holds the fully-wired application.
type App struct {
	Handler  *api.Handler
	Audit    *service.AuditService
	Verifier *service.VerifyScheduler
	Users    domain.UserRepository
}

// New wires all repositories and services from the provided deps and
// runs the idempotent seed.
func New(ctx context.Context, deps Deps) (*App, error) {
	cfg := deps.Cfg

	// All repos ride the write pool: the single-connection pool is what
	// serializes audit appends against their predecessors.
	userRepo := repository.NewUserRepo(deps.WriteDB)
	clientRepo := repository.NewClientRepo(deps.WriteDB)
	contactRepo := repository.NewContactRepo(deps.WriteDB)
	interactionRepo := repository.NewInteractionRepo(deps.WriteDB)
	productRepo := repository.NewProductRepo(deps.WriteDB)
	cardRepo := repository.NewBusinessCardRepo(deps.WriteDB)
	handoverRepo := repository.NewHandoverRepo(deps.WriteDB)
	auditRepo := repository.NewAuditRepo(deps.WriteDB)

	auditSvc := service.NewAuditService(auditRepo, deps.Logger.With("component", "audit"))

	handler := api.NewHandler(api.HandlerDeps{
		Auth:         service.NewAuthService(userRepo, auditSvc, []byte(cfg.JWTSecret), cfg.SessionTTL),
		Clients:      service.NewClientService(clientRepo, auditSvc),
		Contacts:     service.NewContactService(contactRepo, clientRepo, auditSvc),
		Interactions: service.NewInteractionService(interactionRepo, clientRepo, auditSvc, cfg.AttachmentDir),
		Products:     service.NewProductService(productRepo, clientRepo, auditSvc),
		Cards:        service.NewBusinessCardService(cardRepo, auditSvc),
		Users:        service.NewUserService(userRepo, auditSvc),
		Handovers: service.NewHandoverService(handoverRepo, clientRepo,
			interactionRepo, userRepo, auditSvc),
		Audit: auditSvc,
		Log:   deps.Logger.With("component", "api"),
	})

	var verifier *service.VerifyScheduler
	if cfg.AuditVerifySchedule != "" {
		v, err := service.NewVerifyScheduler(auditSvc, cfg.AuditVerifySchedule,
			deps.Logger.With("component", "audit-verify"))
		if err != nil {
			return nil, err
		}
		verifier = v
	}

	if err := seed(ctx, cfg, userRepo, productRepo, deps.Logger); err != nil {
		deps.Logger.Warn("seed failed", "error", err)
	}

	return &App{
		Handler:  handler,
		Audit:    auditSvc,
		Verifier: verifier,
		Users:    userRepo,
	}, nil
}
