package authhandlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	authservice "github.com/Black-And-White-Club/curling-club/app/modules/auth/application"
	authdomain "github.com/Black-And-White-Club/curling-club/app/modules/auth/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/time/rate"
)

func newTestHandlers(s *FakeService) Handlers {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tracer := noop.NewTracerProvider().Tracer("test")
	return NewAuthHandlers(s, nil, logger, tracer, false)
}

func TestAuthHandlers_HandleSignUp(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		setupService func(*FakeService)
		wantStatus   int
		wantCookie   bool
	}{
		{
			name:       "created",
			body:       `{"name":"Rocky","email":"rocky@example.com","password":"hammer1"}`,
			wantStatus: http.StatusCreated,
			wantCookie: true,
		},
		{
			name:       "short password rejected before the service",
			body:       `{"name":"Rocky","email":"rocky@example.com","password":"12345"}`,
			wantStatus: http.StatusBadRequest,
			setupService: func(s *FakeService) {
				s.SignUpFunc = func(ctx context.Context, req authservice.SignUpRequest) (*authservice.AuthResponse, error) {
					t.Fatal("service must not be called")
					return nil, nil
				}
			},
		},
		{
			name: "email taken",
			body: `{"name":"Rocky","email":"rocky@example.com","password":"hammer1"}`,
			setupService: func(s *FakeService) {
				s.SignUpFunc = func(ctx context.Context, req authservice.SignUpRequest) (*authservice.AuthResponse, error) {
					return nil, authservice.ErrEmailTaken
				}
			},
			wantStatus: http.StatusConflict,
		},
		{
			name: "backend down",
			body: `{"name":"Rocky","email":"rocky@example.com","password":"hammer1"}`,
			setupService: func(s *FakeService) {
				s.SignUpFunc = func(ctx context.Context, req authservice.SignUpRequest) (*authservice.AuthResponse, error) {
					return nil, errors.New("db gone")
				}
			},
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &FakeService{}
			if tt.setupService != nil {
				tt.setupService(s)
			}
			h := newTestHandlers(s)

			rec := httptest.NewRecorder()
			h.HandleSignUp(rec, httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantStatus, rec.Code)
			cookies := rec.Result().Cookies()
			if tt.wantCookie {
				require.Len(t, cookies, 1)
				assert.Equal(t, SessionCookie, cookies[0].Name)
				assert.Equal(t, "fake-token", cookies[0].Value)
				assert.True(t, cookies[0].HttpOnly)
			} else {
				assert.Empty(t, cookies)
			}
		})
	}
}

func TestAuthHandlers_HandleLogin(t *testing.T) {
	s := &FakeService{
		LoginFunc: func(ctx context.Context, email, password string) (*authservice.AuthResponse, error) {
			if password != "right" {
				return nil, authservice.ErrInvalidCredentials
			}
			return &authservice.AuthResponse{Token: "tok", Duration: 60}, nil
		},
	}
	h := newTestHandlers(s)

	rec := httptest.NewRecorder()
	h.HandleLogin(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co","password":"right"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"token":"tok"`)

	rec = httptest.NewRecorder()
	h.HandleLogin(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co","password":"wrong"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.HandleLogout(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.Len(t, rec.Result().Cookies(), 1)
	assert.Equal(t, -1, rec.Result().Cookies()[0].MaxAge)
}

func TestSessionMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	userID := uuid.New()
	validator := &FakeService{
		ValidateTokenFunc: func(ctx context.Context, token string) (*authdomain.Claims, error) {
			if token != "good" {
				return nil, errors.New("invalid token")
			}
			return &authdomain.Claims{UserID: userID, Role: authdomain.RoleMember, ExpiresAt: time.Now().Add(time.Hour)}, nil
		},
	}

	var seen *authdomain.Session
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = authdomain.SessionFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	public := SessionMiddleware(validator, logger)(inner)
	private := SessionMiddleware(validator, logger)(RequireSession(inner))

	tests := []struct {
		name        string
		handler     http.Handler
		prepare     func(r *http.Request)
		wantStatus  int
		wantSession bool
	}{
		{
			name:        "bearer token",
			handler:     private,
			prepare:     func(r *http.Request) { r.Header.Set("Authorization", "Bearer good") },
			wantStatus:  http.StatusOK,
			wantSession: true,
		},
		{
			name:        "cookie",
			handler:     private,
			prepare:     func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "good"}) },
			wantStatus:  http.StatusOK,
			wantSession: true,
		},
		{
			name:       "invalid token on a public route continues anonymously",
			handler:    public,
			prepare:    func(r *http.Request) { r.Header.Set("Authorization", "Bearer bad") },
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing token on a private route",
			handler:    private,
			prepare:    func(r *http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.prepare(r)
			rec := httptest.NewRecorder()
			tt.handler.ServeHTTP(rec, r)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantSession {
				require.NotNil(t, seen)
				assert.Equal(t, userID, seen.UserID)
			} else {
				assert.Nil(t, seen)
			}
		})
	}
}

func TestThrottle(t *testing.T) {
	limiter := NewClientLimiter(rate.Limit(0), 2)
	h := Throttle(limiter, slog.New(slog.DiscardHandler))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	var last *httptest.ResponseRecorder
	for range 3 {
		last = httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		r.RemoteAddr = "10.0.0.1:5555"
		h.ServeHTTP(last, r)
		codes = append(codes, last.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Contains(t, last.Body.String(), `"rate_limited"`)
	assert.Empty(t, last.Header().Get("Retry-After"), "a zero rate never refills")

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	r.RemoteAddr = "10.0.0.2:5555"
	h.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code, "limits are per client")
}

func TestThrottle_RetryAfter(t *testing.T) {
	now := time.Date(2026, 10, 15, 18, 0, 0, 0, time.UTC)
	limiter := NewClientLimiter(rate.Every(2*time.Second), 1)
	limiter.now = func() time.Time { return now }
	h := Throttle(limiter, slog.New(slog.DiscardHandler))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/auth/signup", nil)
		r.RemoteAddr = "10.0.0.3:4000"
		h.ServeHTTP(rec, r)
		return rec
	}

	require.Equal(t, http.StatusOK, send().Code)
	blocked := send()
	require.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.Equal(t, "2", blocked.Header().Get("Retry-After"))

	now = now.Add(2 * time.Second)
	assert.Equal(t, http.StatusOK, send().Code, "a refused attempt does not use up the refill")
}

func TestClientLimiter_PrunesIdleClients(t *testing.T) {
	now := time.Date(2026, 10, 15, 18, 0, 0, 0, time.UTC)
	limiter := NewClientLimiter(rate.Limit(1), 1)
	limiter.now = func() time.Time { return now }

	for i := range pruneAbove + 1 {
		limiter.Allow("10.1." + strconv.Itoa(i/250) + "." + strconv.Itoa(i%250))
	}
	require.Len(t, limiter.clients, pruneAbove+1)

	now = now.Add(idleClientAge + time.Minute)
	ok, _ := limiter.Allow("10.9.9.9")
	assert.True(t, ok)
	assert.Len(t, limiter.clients, 1)
}

func TestAllowOrigins(t *testing.T) {
	h := AllowOrigins([]string{"https://club.example/"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	tests := []struct {
		name        string
		method      string
		origin      string
		preflight   bool
		wantStatus  int
		wantAllowed string
		wantMethods string
	}{
		{name: "allowed preflight", method: http.MethodOptions, origin: "https://club.example", preflight: true,
			wantStatus: http.StatusNoContent, wantAllowed: "https://club.example", wantMethods: corsMethods},
		{name: "foreign preflight", method: http.MethodOptions, origin: "https://evil.example", preflight: true,
			wantStatus: http.StatusForbidden},
		{name: "allowed request", method: http.MethodGet, origin: "https://club.example",
			wantStatus: http.StatusTeapot, wantAllowed: "https://club.example"},
		{name: "foreign request", method: http.MethodGet, origin: "https://evil.example",
			wantStatus: http.StatusTeapot},
		{name: "plain options", method: http.MethodOptions, origin: "https://club.example",
			wantStatus: http.StatusTeapot, wantAllowed: "https://club.example"},
		{name: "same origin", method: http.MethodGet, wantStatus: http.StatusTeapot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r := httptest.NewRequest(tt.method, "/api/events", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			if tt.preflight {
				r.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			h.ServeHTTP(rec, r)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantAllowed, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantMethods, rec.Header().Get("Access-Control-Allow-Methods"))
			if tt.origin != "" {
				assert.Equal(t, "Origin", rec.Header().Get("Vary"))
			}
		})
	}

	passthrough := AllowOrigins(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodOptions, "/", nil)
	r.Header.Set("Origin", "https://club.example")
	r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	passthrough.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Empty(t, rec.Header().Get("Vary"))
}
