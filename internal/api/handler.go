package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"fundcrm/internal/domain"
	"fundcrm/internal/middleware"
	"fundcrm/internal/service"
)

// Handler bundles the service layer behind the REST routes.
type Handler struct {
	auth         *service.AuthService
	clients      *service.ClientService
	contacts     *service.ContactService
	interactions *service.InteractionService
	products     *service.ProductService
	cards        *service.BusinessCardService
	users        *service.UserService
	handovers    *service.HandoverService
	audit        *service.AuditService
	log          *slog.Logger
}

type HandlerDeps struct {
	Auth         *service.AuthService
	Clients      *service.ClientService
	Contacts     *service.ContactService
	Interactions *service.InteractionService
	Products     *service.ProductService
	Cards        *service.BusinessCardService
	Users        *service.UserService
	Handovers    *service.HandoverService
	Audit        *service.AuditService
	Log          *slog.Logger
}

func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{
		auth:         deps.Auth,
		clients:      deps.Clients,
		contacts:     deps.Contacts,
		interactions: deps.Interactions,
		products:     deps.Products,
		cards:        deps.Cards,
		users:        deps.Users,
		handovers:    deps.Handovers,
		audit:        deps.Audit,
		log:          deps.Log,
	}
}

// Routes mounts every endpoint on r. authn is the session middleware;
// it is injected so tests can swap in a canned identity.
func (h *Handler) Routes(r chi.Router, authn func(http.Handler) http.Handler) {
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/auth/login", h.login)

	r.Group(func(r chi.Router) {
		r.Use(authn)

		r.Post("/api/auth/logout", h.logout)
		r.Get("/api/auth/me", h.me)

		r.Route("/api/clients", func(r chi.Router) {
			r.Get("/", h.listClients)
			r.Post("/", h.createClient)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.getClient)
				r.Put("/", h.updateClient)
				r.Delete("/", h.deleteClient)
				r.Get("/contacts", h.listClientContacts)
				r.Get("/products", h.listClientProducts)
				r.Post("/products", h.assignProduct)
				r.Get("/business-cards", h.listClientCards)
			})
		})

		r.Route("/api/contacts", func(r chi.Router) {
			r.Post("/", h.createContact)
			r.Get("/{id}", h.getContact)
			r.Put("/{id}", h.updateContact)
			r.Delete("/{id}", h.deleteContact)
		})

		r.Route("/api/interactions", func(r chi.Router) {
			r.Get("/", h.listInteractions)
			r.Post("/", h.createInteraction)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.getInteraction)
				r.Put("/", h.updateInteraction)
				r.Delete("/", h.deleteInteraction)
				r.Post("/lock", h.lockInteraction)
				r.Get("/attachments", h.listAttachments)
				r.Post("/attachments", h.uploadAttachment)
			})
		})

		r.Route("/api/attachments", func(r chi.Router) {
			r.Get("/{id}", h.downloadAttachment)
			r.Delete("/{id}", h.deleteAttachment)
		})

		r.Route("/api/fund-products", func(r chi.Router) {
			r.Get("/", h.listProducts)
			r.Post("/", h.createProduct)
			r.Get("/{id}", h.getProduct)
		})
		r.Put("/api/client-products/{id}", h.updateClientProduct)

		r.Route("/api/business-cards", func(r chi.Router) {
			r.Get("/", h.listCards)
			r.Post("/", h.createCard)
			r.Get("/{id}", h.getCard)
			r.Put("/{id}", h.updateCard)
			r.Delete("/{id}", h.deleteCard)
		})

		r.Route("/api/users", func(r chi.Router) {
			r.Get("/", h.listUsers)
			r.Post("/", h.createUser)
			r.Get("/{id}", h.getUser)
			r.Put("/{id}", h.updateUser)
			r.Delete("/{id}", h.deleteUser)
		})

		r.Route("/api/handovers", func(r chi.Router) {
			r.Get("/", h.listHandovers)
			r.Post("/", h.generateHandover)
			r.Get("/{id}", h.getHandover)
			r.Post("/{id}/finalize", h.finalizeHandover)
			r.Post("/{id}/acknowledge", h.acknowledgeHandover)
			r.Get("/{id}/export", h.exportHandover)
		})

		r.Route("/api/audit", func(r chi.Router) {
			r.Use(middleware.RequireRole(domain.RoleAdmin))
			r.Get("/", h.listAudit)
			r.Get("/verify", h.verifyAudit)
			r.Get("/export", h.exportAudit)
		})
	})
}
