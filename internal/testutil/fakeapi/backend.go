package fakeapi

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nkiryanov/carectl/internal/models"
)

// Seeded administrator account
const (
	AdminEmail    = "admin@care.test"
	AdminPassword = "secret123"
)

// Request as received by the backend
type Request struct {
	Method        string
	Path          string
	RawQuery      string
	Body          string
	RequestID     string
	Authorization string
}

type account struct {
	user         models.User
	passwordHash string
}

// Backend is an in-memory stand-in of the cooperative REST API.
// It issues HS256 JWT access tokens and opaque refresh tokens.
type Backend struct {
	*httptest.Server

	key       []byte
	accessTTL time.Duration

	mu            sync.Mutex
	accounts      map[string]*account
	nextUserID    int64
	refreshTokens map[string]int64
	revoked       map[string]bool
	rejectAll     bool
	rotate        bool
	refreshCalls  int
	requests      []Request

	schedules            map[int64]models.Schedule
	nextScheduleID       int64
	scheduleCreates      int
	failScheduleCreateOn int
	failScheduleDelete   bool

	patients      []models.Patient
	professionals []models.Professional
	appointments  []models.Appointment
}

// New starts backend seeded with an administrator, patients and professionals.
// Closed on test cleanup.
func New(t *testing.T) *Backend {
	t.Helper()

	b := &Backend{
		key:           []byte("fake-backend-secret"),
		accessTTL:     time.Hour,
		accounts:      make(map[string]*account),
		refreshTokens: make(map[string]int64),
		revoked:       make(map[string]bool),
		rotate:        true,
		schedules:     make(map[int64]models.Schedule),
	}
	b.seed()

	b.Server = httptest.NewServer(b.router())
	t.Cleanup(b.Close)

	return b
}

func (b *Backend) seed() {
	hash, err := hashPassword(AdminPassword)
	if err != nil {
		panic(err)
	}

	b.nextUserID = 1
	b.accounts[AdminEmail] = &account{
		user:         models.User{ID: 1, Name: "Admin", Email: AdminEmail, Roles: []string{"ADMIN"}},
		passwordHash: hash,
	}

	b.patients = []models.Patient{
		{ID: 1, Name: "Maria Souza", CPF: "529.982.247-25", Phone: "(11) 98765-4321", Status: "ATIVO"},
		{ID: 2, Name: "João Lima", CPF: "111.444.777-35", Phone: "(11) 91234-5678", Status: "ATIVO"},
	}
	b.professionals = []models.Professional{
		{ID: 1, Name: "Ana Costa", Specialty: models.SpecialtyNursingTechnician, Status: "ATIVO"},
		{ID: 2, Name: "Carlos Dias", Specialty: "Enfermeiro", Status: "ATIVO"},
		{ID: 3, Name: "Beatriz Reis", Specialty: models.SpecialtyNursingTechnician, Status: "INATIVO"},
	}
}

// Configuration and inspection, safe to call while requests are served

// SetRejectAll makes every authenticated endpoint answer 401
func (b *Backend) SetRejectAll(reject bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rejectAll = reject
}

// SetRotateRefresh controls whether refresh issues a new refresh token
func (b *Backend) SetRotateRefresh(rotate bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rotate = rotate
}

// Revoke makes access rejected although it is still valid
func (b *Backend) Revoke(access string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revoked[access] = true
}

// FailScheduleCreateOn makes the n-th schedule create call fail, zero disables
func (b *Backend) FailScheduleCreateOn(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failScheduleCreateOn = n
}

func (b *Backend) FailScheduleDelete(fail bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failScheduleDelete = fail
}

func (b *Backend) RefreshCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.refreshCalls
}

func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Request(nil), b.requests...)
}

// Schedules stored, ordered by id
func (b *Backend) Schedules() []models.Schedule {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]models.Schedule, 0, len(b.schedules))
	for _, s := range b.schedules {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (b *Backend) AddSchedule(s models.Schedule) models.Schedule {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextScheduleID++
	s.ID = b.nextScheduleID
	b.schedules[s.ID] = s
	return s
}

func (b *Backend) AddAppointment(a models.Appointment) models.Appointment {
	b.mu.Lock()
	defer b.mu.Unlock()

	a.ID = int64(len(b.appointments) + 1)
	b.appointments = append(b.appointments, a)
	return a
}

// IssuePair logs the account in without a request
func (b *Backend) IssuePair(email string) (access string, refresh string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	acc, ok := b.accounts[email]
	if !ok {
		panic("unknown account " + email)
	}

	access, refresh, err := b.issuePair(acc.user.ID)
	if err != nil {
		panic(err)
	}
	b.refreshTokens[refresh] = acc.user.ID
	return access, refresh
}

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

// Record every request before it is handled
func (b *Backend) recordMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		b.mu.Lock()
		b.requests = append(b.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			RawQuery:      r.URL.RawQuery,
			Body:          string(body),
			RequestID:     r.Header.Get("X-Request-Id"),
			Authorization: r.Header.Get("Authorization"),
		})
		b.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

type userIDKey struct{}

func (b *Backend) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		access := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

		b.mu.Lock()
		rejected := b.rejectAll || b.revoked[access]
		b.mu.Unlock()

		userID, err := b.parseAccess(access)
		if rejected || err != nil {
			renderError(w, "Token inválido ou expirado", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey{}, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (b *Backend) router() http.Handler {
	mux := http.NewServeMux()
	withAuth := func(h http.HandlerFunc) http.Handler {
		return b.authMiddleware(h)
	}

	mux.HandleFunc("POST /auth/login", b.handleLogin)
	mux.HandleFunc("POST /auth/register", b.handleRegister)
	mux.HandleFunc("POST /auth/refresh-token", b.handleRefresh)
	mux.HandleFunc("POST /auth/forgot-password", b.handleNoContent)
	mux.HandleFunc("POST /auth/reset-password", b.handleNoContent)
	mux.Handle("GET /auth/me", withAuth(b.handleMe))

	mux.Handle("PUT /users/profile", withAuth(b.handleUpdateProfile))
	mux.Handle("PUT /users/me/password", withAuth(b.handleNoContent))
	mux.Handle("GET /users", withAuth(b.handleListUsers))
	mux.Handle("PUT /users/{id}", withAuth(b.handleNoContent))
	mux.Handle("DELETE /users/{id}", withAuth(b.handleNoContent))

	mux.Handle("GET /dashboard", withAuth(b.handleDashboard))
	mux.Handle("GET /relatorios/{kind}", withAuth(b.handleReport))

	mux.Handle("GET /pacientes", withAuth(b.handleListPatients))
	mux.Handle("GET /pacientes/recent", withAuth(b.handleRecentPatients))
	mux.Handle("GET /pacientes/{id}", withAuth(b.handleGetPatient))
	mux.Handle("POST /pacientes", withAuth(b.handleCreatePatient))
	mux.Handle("PUT /pacientes/{id}", withAuth(b.handleNoContent))
	mux.Handle("DELETE /pacientes/{id}", withAuth(b.handleNoContent))

	mux.Handle("GET /profissionais", withAuth(b.handleListProfessionals))
	mux.Handle("GET /profissionais/available", withAuth(b.handleAvailableProfessionals))
	mux.Handle("GET /profissionais/{id}", withAuth(b.handleGetProfessional))
	mux.Handle("PUT /profissionais/{id}/reativar", withAuth(b.handleReactivateProfessional))
	mux.Handle("DELETE /profissionais/{id}", withAuth(b.handleNoContent))

	mux.Handle("GET /escalas", withAuth(b.handleSchedulesByDate))
	mux.Handle("GET /escalas/profissional/{id}", withAuth(b.handleSchedulesByProfessional))
	mux.Handle("GET /escalas/{id}", withAuth(b.handleGetSchedule))
	mux.Handle("POST /escalas", withAuth(b.handleCreateSchedule))
	mux.Handle("PUT /escalas/{id}", withAuth(b.handleUpdateSchedule))
	mux.Handle("DELETE /escalas/{id}", withAuth(b.handleDeleteSchedule))

	mux.Handle("GET /agendamentos", withAuth(b.handleAppointmentsByDate))
	mux.Handle("GET /agendamentos/hoje", withAuth(b.handleAppointmentsToday))
	mux.Handle("GET /agendamentos/paciente/{id}", withAuth(b.handleAppointmentsByPatient))

	return chain(mux, b.recordMiddleware)
}
