package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internaldb "fundcrm/internal/db"
	"fundcrm/internal/db/repository"
	"fundcrm/internal/domain"
	"fundcrm/internal/middleware"
	"fundcrm/internal/service"
)

const testSessionTTL = 8 * time.Hour

type apiEnv struct {
	server *httptest.Server
	users  *repository.UserRepo
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	writeDB, _ := internaldb.OpenTestSQLite(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	secret := []byte("test-secret")

	userRepo := repository.NewUserRepo(writeDB)
	clientRepo := repository.NewClientRepo(writeDB)
	contactRepo := repository.NewContactRepo(writeDB)
	interactionRepo := repository.NewInteractionRepo(writeDB)
	productRepo := repository.NewProductRepo(writeDB)
	cardRepo := repository.NewBusinessCardRepo(writeDB)
	handoverRepo := repository.NewHandoverRepo(writeDB)
	auditRepo := repository.NewAuditRepo(writeDB)

	audit := service.NewAuditService(auditRepo, logger)
	h := NewHandler(HandlerDeps{
		Auth:         service.NewAuthService(userRepo, audit, secret, testSessionTTL),
		Clients:      service.NewClientService(clientRepo, audit),
		Contacts:     service.NewContactService(contactRepo, clientRepo, audit),
		Interactions: service.NewInteractionService(interactionRepo, clientRepo, audit, t.TempDir()),
		Products:     service.NewProductService(productRepo, clientRepo, audit),
		Cards:        service.NewBusinessCardService(cardRepo, audit),
		Users:        service.NewUserService(userRepo, audit),
		Handovers: service.NewHandoverService(handoverRepo, clientRepo,
			interactionRepo, userRepo, audit),
		Audit: audit,
		Log:   logger,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	h.Routes(r, middleware.Auth(secret, userRepo))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &apiEnv{server: srv, users: userRepo}
}

func (e *apiEnv) seedUser(t *testing.T, email, fullName, role, password string) *domain.User {
	t.Helper()
	hash, err := service.HashPassword(password)
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

// loginAs returns an HTTP client holding a session cookie for the user.
func (e *apiEnv) loginAs(t *testing.T, email, password string) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	c := &http.Client{Jar: jar}

	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	resp, err := c.Post(e.server.URL+"/api/auth/login", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return c
}

func doJSON(t *testing.T, c *http.Client, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return resp, out
}

func TestLoginSetsSessionCookie(t *testing.T) {
	env := newAPIEnv(t)
	env.seedUser(t, "tanaka@example.com", "Tanaka Yuki", domain.RoleStaff, "correct-horse")

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	c := &http.Client{Jar: jar}

	resp, err := c.Post(env.server.URL+"/api/auth/login", "application/json",
		strings.NewReader(`{"email":"tanaka@example.com","password":"correct-horse"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var found bool
	for _, ck := range resp.Cookies() {
		if ck.Name == middleware.SessionCookie {
			found = true
			assert.True(t, ck.HttpOnly)
			assert.NotEmpty(t, ck.Value)
		}
	}
	assert.True(t, found, "session cookie not set")

	meResp, me := doJSON(t, c, http.MethodGet, env.server.URL+"/api/auth/me", nil)
	require.Equal(t, http.StatusOK, meResp.StatusCode)
	assert.Equal(t, "tanaka@example.com", me["email"])
}

func TestLoginBadCredentials(t *testing.T) {
	env := newAPIEnv(t)
	env.seedUser(t, "tanaka@example.com", "Tanaka Yuki", domain.RoleStaff, "correct-horse")

	resp, err := http.Post(env.server.URL+"/api/auth/login", "application/json",
		strings.NewReader(`{"email":"tanaka@example.com","password":"wrong"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	env := newAPIEnv(t)

	resp, err := http.Get(env.server.URL + "/api/clients")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestClientLifecycleOverHTTP(t *testing.T) {
	env := newAPIEnv(t)
	env.seedUser(t, "admin@example.com", "Yamada Jiro", domain.RoleAdmin, "password-1")
	c := env.loginAs(t, "admin@example.com", "password-1")

	resp, created := doJSON(t, c, http.MethodPost, env.server.URL+"/api/clients",
		map[string]any{"company_name": "Acme Capital"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Acme Capital", created["company_name"])
	assert.Equal(t, "prospect", created["relationship_status"])
	id := int64(created["id"].(float64))

	resp, detail := doJSON(t, c, http.MethodGet,
		fmt.Sprintf("%s/api/clients/%d", env.server.URL, id), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Acme Capital", detail["company_name"])

	resp, updated := doJSON(t, c, http.MethodPut,
		fmt.Sprintf("%s/api/clients/%d", env.server.URL, id),
		map[string]any{"relationship_status": "active"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "active", updated["relationship_status"])

	resp, _ = doJSON(t, c, http.MethodDelete,
		fmt.Sprintf("%s/api/clients/%d", env.server.URL, id), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, after := doJSON(t, c, http.MethodGet,
		fmt.Sprintf("%s/api/clients/%d", env.server.URL, id), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "former", after["relationship_status"])
}

func TestClientDeleteForbiddenForStaff(t *testing.T) {
	env := newAPIEnv(t)
	env.seedUser(t, "staff@example.com", "Suzuki Ai", domain.RoleStaff, "password-1")
	c := env.loginAs(t, "staff@example.com", "password-1")

	resp, created := doJSON(t, c, http.MethodPost, env.server.URL+"/api/clients",
		map[string]any{"company_name": "Acme Capital"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := int64(created["id"].(float64))

	resp, _ = doJSON(t, c, http.MethodDelete,
		fmt.Sprintf("%s/api/clients/%d", env.server.URL, id), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestValidationErrorsAre400(t *testing.T) {
	env := newAPIEnv(t)
	env.seedUser(t, "staff@example.com", "Suzuki Ai", domain.RoleStaff, "password-1")
	c := env.loginAs(t, "staff@example.com", "password-1")

	resp, body := doJSON(t, c, http.MethodPost, env.server.URL+"/api/clients",
		map[string]any{"company_name": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "company_name")

	resp, _ = doJSON(t, c, http.MethodPost, env.server.URL+"/api/clients",
		map[string]any{"company_name": "X", "bogus_field": 1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAuditRoutesAdminOnly(t *testing.T) {
	env := newAPIEnv(t)
	env.seedUser(t, "staff@example.com", "Suzuki Ai", domain.RoleStaff, "password-1")
	env.seedUser(t, "admin@example.com", "Yamada Jiro", domain.RoleAdmin, "password-2")

	staff := env.loginAs(t, "staff@example.com", "password-1")
	resp, _ := doJSON(t, staff, http.MethodGet, env.server.URL+"/api/audit", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	admin := env.loginAs(t, "admin@example.com", "password-2")
	resp, body := doJSON(t, admin, http.MethodGet, env.server.URL+"/api/audit", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	// at least the two LOGIN entries
	assert.GreaterOrEqual(t, body["total"].(float64), 2.0)

	resp, verify := doJSON(t, admin, http.MethodGet, env.server.URL+"/api/audit/verify", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, verify["valid"])
}

func TestAuditExportStreamsCSV(t *testing.T) {
	env := newAPIEnv(t)
	env.seedUser(t, "admin@example.com", "Yamada Jiro", domain.RoleAdmin, "password-2")
	admin := env.loginAs(t, "admin@example.com", "password-2")

	resp, err := admin.Get(env.server.URL + "/api/audit/export")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "audit_log_")

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.True(t, strings.HasPrefix(lines[0], "sequence_id,timestamp,actor_id"))
}

func TestAttachmentUploadAndDownload(t *testing.T) {
	env := newAPIEnv(t)
	env.seedUser(t, "staff@example.com", "Suzuki Ai", domain.RoleStaff, "password-1")
	c := env.loginAs(t, "staff@example.com", "password-1")

	resp, client := doJSON(t, c, http.MethodPost, env.server.URL+"/api/clients",
		map[string]any{"company_name": "Acme Capital"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	clientID := int64(client["id"].(float64))

	resp, interaction := doJSON(t, c, http.MethodPost, env.server.URL+"/api/interactions",
		map[string]any{
			"client_id":        clientID,
			"interaction_type": "meeting",
			"subject":          "Kickoff",
			"interaction_date": "2025-03-01",
		})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	interactionID := int64(interaction["id"].(float64))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "terms.pdf")
	require.NoError(t, err)
	_, err = fw.Write([]byte("%PDF-1.4 fake"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost,
		fmt.Sprintf("%s/api/interactions/%d/attachments", env.server.URL, interactionID), &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	upResp, err := c.Do(req)
	require.NoError(t, err)
	defer upResp.Body.Close()
	require.Equal(t, http.StatusCreated, upResp.StatusCode)

	var att map[string]any
	require.NoError(t, json.NewDecoder(upResp.Body).Decode(&att))
	assert.Equal(t, "terms.pdf", att["file_name"])
	attID := int64(att["id"].(float64))

	dlResp, err := c.Get(fmt.Sprintf("%s/api/attachments/%d", env.server.URL, attID))
	require.NoError(t, err)
	defer dlResp.Body.Close()
	require.Equal(t, http.StatusOK, dlResp.StatusCode)
	body, err := io.ReadAll(dlResp.Body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake", string(body))
	assert.Contains(t, dlResp.Header.Get("Content-Disposition"), "terms.pdf")
}

func TestLockedInteractionConflictsOverHTTP(t *testing.T) {
	env := newAPIEnv(t)
	env.seedUser(t, "staff@example.com", "Suzuki Ai", domain.RoleStaff, "password-1")
	c := env.loginAs(t, "staff@example.com", "password-1")

	resp, client := doJSON(t, c, http.MethodPost, env.server.URL+"/api/clients",
		map[string]any{"company_name": "Acme Capital"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	clientID := int64(client["id"].(float64))

	resp, interaction := doJSON(t, c, http.MethodPost, env.server.URL+"/api/interactions",
		map[string]any{
			"client_id":        clientID,
			"interaction_type": "call",
			"subject":          "Terms call",
			"interaction_date": "2025-03-02",
		})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := int64(interaction["id"].(float64))

	resp, locked := doJSON(t, c, http.MethodPost,
		fmt.Sprintf("%s/api/interactions/%d/lock", env.server.URL, id), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, locked["is_locked"])

	resp, _ = doJSON(t, c, http.MethodPut,
		fmt.Sprintf("%s/api/interactions/%d", env.server.URL, id),
		map[string]any{"subject": "Edited"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestDeactivatedUserLosesSession(t *testing.T) {
	env := newAPIEnv(t)
	admin := env.seedUser(t, "admin@example.com", "Yamada Jiro", domain.RoleAdmin, "password-2")
	staff := env.seedUser(t, "staff@example.com", "Suzuki Ai", domain.RoleStaff, "password-1")
	_ = admin

	staffClient := env.loginAs(t, "staff@example.com", "password-1")
	adminClient := env.loginAs(t, "admin@example.com", "password-2")

	resp, _ := doJSON(t, staffClient, http.MethodGet, env.server.URL+"/api/clients", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, adminClient, http.MethodDelete,
		fmt.Sprintf("%s/api/users/%d", env.server.URL, staff.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, staffClient, http.MethodGet, env.server.URL+"/api/clients", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandoverFlowOverHTTP(t *testing.T) {
	env := newAPIEnv(t)
	from := env.seedUser(t, "from@example.com", "Sato Kenji", domain.RoleManager, "password-1")
	to := env.seedUser(t, "to@example.com", "Ito Mika", domain.RoleManager, "password-2")

	fromClient := env.loginAs(t, "from@example.com", "password-1")
	toClient := env.loginAs(t, "to@example.com", "password-2")

	resp, client := doJSON(t, fromClient, http.MethodPost, env.server.URL+"/api/clients",
		map[string]any{"company_name": "Acme Capital"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	clientID := int64(client["id"].(float64))

	resp, pkg := doJSON(t, fromClient, http.MethodPost, env.server.URL+"/api/handovers",
		map[string]any{
			"title":        "Q2 portfolio handover",
			"from_user_id": from.ID,
			"to_user_id":   to.ID,
			"client_ids":   []int64{clientID},
		})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "draft", pkg["status"])
	pkgID := int64(pkg["id"].(float64))

	resp, finalized := doJSON(t, fromClient, http.MethodPost,
		fmt.Sprintf("%s/api/handovers/%d/finalize", env.server.URL, pkgID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "finalized", finalized["status"])

	// the sender cannot acknowledge their own package
	resp, _ = doJSON(t, fromClient, http.MethodPost,
		fmt.Sprintf("%s/api/handovers/%d/acknowledge", env.server.URL, pkgID), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, acked := doJSON(t, toClient, http.MethodPost,
		fmt.Sprintf("%s/api/handovers/%d/acknowledge", env.server.URL, pkgID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "acknowledged", acked["status"])
}
