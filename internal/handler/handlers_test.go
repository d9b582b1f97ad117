package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wedding-site/internal/database"
	"wedding-site/internal/domain"
	"wedding-site/internal/logger"
	"wedding-site/internal/repository"
	"wedding-site/internal/service"
	"wedding-site/internal/storage"
)

const (
	adminEmail    = "admin@boda.com"
	adminPassword = "super-secret-password"
)

type captureMailer struct {
	mu     sync.Mutex
	tokens []string
}

func (m *captureMailer) SendRSVPConfirmation(_ context.Context, _ string, data domain.ConfirmationEmail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = append(m.tokens, data.EditToken)
	return nil
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	router *gin.Engine
	db     *database.DB
	clock  *testClock
	mailer *captureMailer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	log := logger.NewNopLogger()

	db, err := database.Open(ctx, database.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := storage.NewMemoryStorage(log, 0)
	t.Cleanup(func() { store.Close() })

	rules := map[domain.RateLimitScope]domain.RateLimitRule{
		domain.RSVPScope:      {Scope: domain.RSVPScope, Limit: 5, Window: time.Minute},
		domain.GuestbookScope: {Scope: domain.GuestbookScope, Limit: 3, Window: time.Minute},
	}

	rsvpRepo := repository.NewRSVPRepository(db.DB)
	guestbookRepo := repository.NewGuestbookRepository(db.DB)
	settingsRepo := repository.NewSettingsRepository(db.DB)
	userRepo := repository.NewUserRepository(db.DB)

	clock := &testClock{now: time.Now().UTC()}
	mailer := &captureMailer{}
	tokens := service.NewEditTokenService(rsvpRepo, service.DefaultEditTokenTTL, log, service.WithEditTokenClock(clock.Now))
	auth := service.NewAuthService(userRepo, strings.Repeat("s", 32), time.Hour, log)

	_, err = auth.CreateUser(ctx, adminEmail, adminPassword, "Admin")
	require.NoError(t, err)

	services := Services{
		RateLimiter: service.NewRateLimiterService(store, rules, log),
		EditTokens:  tokens,
		RSVPs:       service.NewRSVPService(rsvpRepo, tokens, mailer, log, "salt"),
		Guestbook:   service.NewGuestbookService(guestbookRepo, log, "salt"),
		FAQs:        service.NewFAQService(repository.NewFAQRepository(db.DB), log),
		Settings:    service.NewSettingsService(settingsRepo, log, time.Minute),
		Auth:        auth,
		Dashboard:   service.NewDashboardService(rsvpRepo, guestbookRepo, settingsRepo),
	}

	router := gin.New()
	NewHandlers(services, db, store, log, false).SetupRoutes(router)

	return &testEnv{router: router, db: db, clock: clock, mailer: mailer}
}

type request struct {
	method  string
	path    string
	body    interface{}
	ip      string
	cookies []*http.Cookie
}

func (e *testEnv) do(t *testing.T, r request) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	switch b := r.body.(type) {
	case nil:
		body = bytes.NewReader(nil)
	case string:
		body = bytes.NewReader([]byte(b))
	default:
		encoded, err := json.Marshal(b)
		require.NoError(t, err)
		body = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(r.method, r.path, body)
	req.Header.Set("Content-Type", "application/json")
	ip := r.ip
	if ip == "" {
		ip = "203.0.113.10"
	}
	req.Header.Set("X-Forwarded-For", ip)
	for _, c := range r.cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) login(t *testing.T) []*http.Cookie {
	t.Helper()
	w := e.do(t, request{method: http.MethodPost, path: "/api/auth/login", body: gin.H{
		"email": adminEmail, "password": adminPassword,
	}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return w.Result().Cookies()
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func validRSVP(email string) gin.H {
	return gin.H{
		"firstName":   "Ana",
		"lastName":    "García",
		"email":       email,
		"attending":   true,
		"numGuests":   1,
		"guests":      []gin.H{{"name": "Luis"}},
		"menu":        "Pescado",
		"gdprConsent": true,
	}
}

func TestHealthHandler(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, request{method: http.MethodGet, path: "/health"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	body := decode(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, map[string]interface{}{"database": "ok", "rate_limit_storage": "ok"}, body["checks"])

	require.NoError(t, env.db.Close())
	w = env.do(t, request{method: http.MethodGet, path: "/health"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "unhealthy", decode(t, w)["status"])
}

func TestMetricsHandler(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, request{method: http.MethodGet, path: "/metrics"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Contains(t, body, "system")
	assert.Contains(t, body, "storage")
	assert.Len(t, body["rate_limits"], 2)
}

func TestRSVPFlow(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, request{method: http.MethodPost, path: "/api/rsvp", body: validRSVP("ana@example.com")})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	created := decode(t, w)
	token := created["editToken"].(string)
	assert.Len(t, token, 43)
	assert.Equal(t, true, created["success"])
	assert.Equal(t, []string{token}, env.mailer.tokens)
	assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))

	w = env.do(t, request{method: http.MethodGet, path: "/api/rsvp/" + token})
	require.Equal(t, http.StatusOK, w.Code)
	fetched := decode(t, w)
	assert.Equal(t, "Ana", fetched["firstName"])
	assert.NotContains(t, fetched, "editToken")

	w = env.do(t, request{method: http.MethodPut, path: "/api/rsvp/" + token, body: gin.H{"numGuests": 2, "allergies": "frutos secos"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode(t, w)["rsvp"].(map[string]interface{})
	assert.Equal(t, float64(2), updated["numGuests"])
	assert.Equal(t, "frutos secos", updated["allergies"])
	assert.Equal(t, "Pescado", updated["menu"])

	// the same token keeps working after an edit
	w = env.do(t, request{method: http.MethodGet, path: "/api/rsvp/" + token})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRSVPUpdate_InvalidPatchLeavesRecordUntouched(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, request{method: http.MethodPost, path: "/api/rsvp", body: validRSVP("ana@example.com")})
	require.Equal(t, http.StatusOK, w.Code)
	token := decode(t, w)["editToken"].(string)

	w = env.do(t, request{method: http.MethodPut, path: "/api/rsvp/" + token, body: gin.H{"numGuests": -1, "menu": "Pizza"}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Datos inválidos", body["error"])
	fields := []string{}
	for _, d := range body["details"].([]interface{}) {
		fields = append(fields, d.(map[string]interface{})["field"].(string))
	}
	assert.ElementsMatch(t, []string{"numGuests", "menu"}, fields)

	w = env.do(t, request{method: http.MethodGet, path: "/api/rsvp/" + token})
	fetched := decode(t, w)
	assert.Equal(t, float64(1), fetched["numGuests"])
	assert.Equal(t, "Pescado", fetched["menu"])
}

func TestRSVPToken_NotFoundAndExpired(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, request{method: http.MethodGet, path: "/api/rsvp/does-not-exist"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "RSVP no encontrado", decode(t, w)["error"])

	w = env.do(t, request{method: http.MethodPost, path: "/api/rsvp", body: validRSVP("ana@example.com")})
	require.Equal(t, http.StatusOK, w.Code)
	token := decode(t, w)["editToken"].(string)

	env.clock.Advance(29 * 24 * time.Hour)
	w = env.do(t, request{method: http.MethodGet, path: "/api/rsvp/" + token})
	assert.Equal(t, http.StatusOK, w.Code)

	env.clock.Advance(2 * 24 * time.Hour)
	w = env.do(t, request{method: http.MethodGet, path: "/api/rsvp/" + token})
	assert.Equal(t, http.StatusGone, w.Code)
	assert.Equal(t, "El enlace ha expirado", decode(t, w)["error"])

	w = env.do(t, request{method: http.MethodPut, path: "/api/rsvp/" + token, body: gin.H{"numGuests": 3}})
	assert.Equal(t, http.StatusGone, w.Code)

	// a stale link wins over a malformed body
	w = env.do(t, request{method: http.MethodPut, path: "/api/rsvp/" + token, body: "{"})
	assert.Equal(t, http.StatusGone, w.Code)
}

func TestRSVPResubmissionRotatesToken(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, request{method: http.MethodPost, path: "/api/rsvp", body: validRSVP("ana@example.com")})
	require.Equal(t, http.StatusOK, w.Code)
	first := decode(t, w)

	resubmit := validRSVP("ana@example.com")
	resubmit["attending"] = false
	w = env.do(t, request{method: http.MethodPost, path: "/api/rsvp", body: resubmit})
	require.Equal(t, http.StatusOK, w.Code)
	second := decode(t, w)

	assert.Equal(t, first["id"], second["id"])
	assert.NotEqual(t, first["editToken"], second["editToken"])

	w = env.do(t, request{method: http.MethodGet, path: "/api/rsvp/" + first["editToken"].(string)})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, request{method: http.MethodGet, path: "/api/rsvp/" + second["editToken"].(string)})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["attending"])
}

func TestRSVPSubmit_Rejections(t *testing.T) {
	env := newTestEnv(t)

	t.Run("missing consent and names", func(t *testing.T) {
		w := env.do(t, request{method: http.MethodPost, path: "/api/rsvp", ip: "198.51.100.1", body: gin.H{
			"email": "ana@example.com", "attending": true,
		}})
		require.Equal(t, http.StatusBadRequest, w.Code)
		body := decode(t, w)
		messages := map[string]string{}
		for _, d := range body["details"].([]interface{}) {
			detail := d.(map[string]interface{})
			messages[detail["field"].(string)] = detail["message"].(string)
		}
		assert.Equal(t, "El nombre es obligatorio", messages["firstName"])
		assert.Equal(t, "Los apellidos son obligatorios", messages["lastName"])
		assert.Equal(t, "Debes aceptar la política de privacidad", messages["gdprConsent"])
	})

	t.Run("invalid guest", func(t *testing.T) {
		input := validRSVP("ana@example.com")
		input["guests"] = []gin.H{{"name": ""}}
		w := env.do(t, request{method: http.MethodPost, path: "/api/rsvp", ip: "198.51.100.2", body: input})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "guests[0].name")
	})

	t.Run("honeypot", func(t *testing.T) {
		input := validRSVP("bot@example.com")
		input["honeypot"] = "http://spam"
		w := env.do(t, request{method: http.MethodPost, path: "/api/rsvp", ip: "198.51.100.3", body: input})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Error de validación", decode(t, w)["error"])
	})

	t.Run("malformed json", func(t *testing.T) {
		w := env.do(t, request{method: http.MethodPost, path: "/api/rsvp", ip: "198.51.100.4", body: `{"firstName": `})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	assert.Empty(t, env.mailer.tokens)
}

func TestRSVPSubmit_RateLimited(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < 5; i++ {
		w := env.do(t, request{method: http.MethodPost, path: "/api/rsvp", ip: "192.0.2.50", body: validRSVP("ana@example.com")})
		require.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
	}

	w := env.do(t, request{method: http.MethodPost, path: "/api/rsvp", ip: "192.0.2.50", body: validRSVP("ana@example.com")})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Demasiadas solicitudes")
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "rsvp", w.Header().Get("X-RateLimit-Scope"))

	// the guestbook budget of the same client is untouched
	w = env.do(t, request{method: http.MethodPost, path: "/api/guestbook", ip: "192.0.2.50", body: gin.H{"name": "Ana", "message": "¡Vivan los novios!"}})
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, request{method: http.MethodPost, path: "/api/rsvp", ip: "192.0.2.51", body: validRSVP("bob@example.com")})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminRequiresSession(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/api/admin/stats", "/api/admin/rsvps", "/api/admin/export-rsvps", "/api/auth/me"} {
		w := env.do(t, request{method: http.MethodGet, path: path})
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	w := env.do(t, request{method: http.MethodPost, path: "/api/auth/login", body: gin.H{"email": adminEmail, "password": "wrong-password"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Credenciales inválidas", decode(t, w)["error"])

	w = env.do(t, request{method: http.MethodPost, path: "/api/auth/login", body: gin.H{"email": "not-an-email"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminSession(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.login(t)
	require.NotEmpty(t, cookies)
	assert.Equal(t, service.SessionCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	w := env.do(t, request{method: http.MethodGet, path: "/api/auth/me", cookies: cookies})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, adminEmail, decode(t, w)["email"])

	w = env.do(t, request{method: http.MethodPost, path: "/api/auth/logout", cookies: cookies})
	require.Equal(t, http.StatusOK, w.Code)
	cleared := w.Result().Cookies()
	require.NotEmpty(t, cleared)
	assert.Empty(t, cleared[0].Value)
	assert.True(t, cleared[0].MaxAge < 0)
}

func TestAdminRSVPManagement(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.login(t)

	w := env.do(t, request{method: http.MethodPost, path: "/api/rsvp", body: validRSVP("ana@example.com")})
	require.Equal(t, http.StatusOK, w.Code)
	created := decode(t, w)
	id := created["id"].(string)

	declined := validRSVP("bob@example.com")
	declined["firstName"] = "Bob"
	declined["attending"] = false
	w = env.do(t, request{method: http.MethodPost, path: "/api/rsvp", body: declined})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, request{method: http.MethodGet, path: "/api/admin/rsvps?attending=false", cookies: cookies})
	require.Equal(t, http.StatusOK, w.Code)
	list := decode(t, w)
	assert.Len(t, list["rsvps"], 1)
	assert.Equal(t, float64(1), list["pagination"].(map[string]interface{})["total"])

	w = env.do(t, request{method: http.MethodGet, path: "/api/admin/stats", cookies: cookies})
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode(t, w)
	assert.Equal(t, float64(2), stats["totalRSVPs"])
	assert.Equal(t, float64(50), stats["attendanceRate"])

	w = env.do(t, request{method: http.MethodGet, path: "/api/admin/export-rsvps", cookies: cookies})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "rsvps-")
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	assert.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID,Nombre,Apellidos"))

	w = env.do(t, request{method: http.MethodDelete, path: "/api/admin/rsvps/" + id, cookies: cookies})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, request{method: http.MethodGet, path: "/api/admin/rsvps/" + id, cookies: cookies})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// the edit link of a deleted RSVP stops resolving
	w = env.do(t, request{method: http.MethodGet, path: "/api/rsvp/" + created["editToken"].(string)})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGuestbookModeration(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.login(t)

	w := env.do(t, request{method: http.MethodPost, path: "/api/guestbook", body: gin.H{"name": "Marta", "message": "¡Enhorabuena!"}})
	require.Equal(t, http.StatusOK, w.Code)
	submitted := decode(t, w)
	assert.Equal(t, GuestbookSubmittedMessage, submitted["message"])
	id := submitted["id"].(string)

	w = env.do(t, request{method: http.MethodGet, path: "/api/guestbook"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["entries"])

	w = env.do(t, request{method: http.MethodGet, path: "/api/admin/guestbook?status=pending", cookies: cookies})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["entries"], 1)

	w = env.do(t, request{method: http.MethodGet, path: "/api/admin/guestbook?status=spam", cookies: cookies})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, request{method: http.MethodPatch, path: "/api/admin/guestbook/" + id, cookies: cookies, body: gin.H{"approved": true}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	entry := decode(t, w)["entry"].(map[string]interface{})
	assert.Equal(t, true, entry["approved"])
	assert.NotEmpty(t, entry["approvedBy"])

	w = env.do(t, request{method: http.MethodGet, path: "/api/guestbook"})
	assert.Len(t, decode(t, w)["entries"], 1)

	w = env.do(t, request{method: http.MethodPatch, path: "/api/admin/guestbook/" + id, cookies: cookies, body: gin.H{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, request{method: http.MethodDelete, path: "/api/admin/guestbook/" + id, cookies: cookies})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, request{method: http.MethodPatch, path: "/api/admin/guestbook/" + id, cookies: cookies, body: gin.H{"approved": true}})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGuestbookSubmit_Validation(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, request{method: http.MethodPost, path: "/api/guestbook", body: gin.H{"name": "", "message": strings.Repeat("a", 1001)}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "message")
	assert.Contains(t, w.Body.String(), "name")
}

func TestFAQAndSettingsAdmin(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.login(t)

	w := env.do(t, request{method: http.MethodPost, path: "/api/admin/faqs", cookies: cookies, body: gin.H{"question": "¿Hay parking?", "answer": "Sí"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := decode(t, w)
	assert.Equal(t, float64(0), first["order"])

	w = env.do(t, request{method: http.MethodPost, path: "/api/admin/faqs", cookies: cookies, body: gin.H{"question": "¿Dress code?", "answer": "Formal"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["order"])

	w = env.do(t, request{method: http.MethodPatch, path: "/api/admin/faqs/" + first["id"].(string), cookies: cookies, body: gin.H{"question": "¿Hay parking?", "answer": "Sí, gratuito", "order": 5}})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, request{method: http.MethodGet, path: "/api/faqs"})
	require.Equal(t, http.StatusOK, w.Code)
	var faqs []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &faqs))
	require.Len(t, faqs, 2)
	assert.Equal(t, "¿Dress code?", faqs[0]["question"])
	assert.Equal(t, "Sí, gratuito", faqs[1]["answer"])

	w = env.do(t, request{method: http.MethodPost, path: "/api/admin/faqs", cookies: cookies, body: gin.H{"question": ""}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, request{method: http.MethodDelete, path: "/api/admin/faqs/missing", cookies: cookies})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, request{method: http.MethodPost, path: "/api/admin/settings", cookies: cookies, body: gin.H{"couple_names": "Ana & Luis", "max_guests": 2}})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, request{method: http.MethodGet, path: "/api/settings"})
	require.Equal(t, http.StatusOK, w.Code)
	settings := decode(t, w)
	assert.Equal(t, "Ana & Luis", settings["couple_names"])
	assert.Equal(t, "2", settings["max_guests"])

	w = env.do(t, request{method: http.MethodGet, path: "/api/admin/settings", cookies: cookies})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["settings"], 2)
}

func TestAdminRateLimits(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.login(t)

	for i := 0; i < 3; i++ {
		w := env.do(t, request{method: http.MethodPost, path: "/api/guestbook", ip: "192.0.2.77", body: gin.H{"name": "Ana", "message": "Hola"}})
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := env.do(t, request{method: http.MethodPost, path: "/api/guestbook", ip: "192.0.2.77", body: gin.H{"name": "Ana", "message": "Hola"}})
	require.Equal(t, http.StatusTooManyRequests, w.Code)

	w = env.do(t, request{method: http.MethodGet, path: "/api/admin/rate-limits/status?scope=guestbook&identifier=192.0.2.77", cookies: cookies})
	require.Equal(t, http.StatusOK, w.Code)
	status := decode(t, w)
	assert.Equal(t, float64(3), status["current"])
	assert.Equal(t, float64(0), status["remaining"])

	w = env.do(t, request{method: http.MethodGet, path: "/api/admin/rate-limits/status?scope=login", cookies: cookies})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, request{method: http.MethodPost, path: "/api/admin/rate-limits/reset", cookies: cookies, body: gin.H{"scope": "guestbook", "identifier": "192.0.2.77"}})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, request{method: http.MethodPost, path: "/api/guestbook", ip: "192.0.2.77", body: gin.H{"name": "Ana", "message": "Hola"}})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.0 KB", formatBytes(1024))
	assert.Equal(t, "1.5 MB", formatBytes(1536*1024))
}
