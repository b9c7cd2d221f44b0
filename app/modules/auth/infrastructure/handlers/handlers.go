package authhandlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	authservice "github.com/Black-And-White-Club/curling-club/app/modules/auth/application"
	"github.com/Black-And-White-Club/curling-club/app/shared/attr"
	"github.com/Black-And-White-Club/curling-club/app/shared/httpjson"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/trace"
)

const (
	SessionCookie = "session"
)

// AuthHandlers implements the Handlers interface.
type AuthHandlers struct {
	service       authservice.Service
	validate      *validator.Validate
	logger        *slog.Logger
	tracer        trace.Tracer
	secureCookies bool
}

// NewAuthHandlers creates a new AuthHandlers instance.
func NewAuthHandlers(
	service authservice.Service,
	validate *validator.Validate,
	logger *slog.Logger,
	tracer trace.Tracer,
	secureCookies bool,
) Handlers {
	if validate == nil {
		validate = validator.New()
	}
	return &AuthHandlers{
		service:       service,
		validate:      validate,
		logger:        logger,
		tracer:        tracer,
		secureCookies: secureCookies,
	}
}

type signUpRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandlers) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "AuthHandlers.HandleSignUp")
	defer span.End()

	var req signUpRequest
	if err := httpjson.Decode(r, h.validate, &req); err != nil {
		httpjson.WriteValidation(w, err)
		return
	}

	resp, err := h.service.SignUp(ctx, authservice.SignUpRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, authservice.ErrEmailTaken):
			httpjson.Error(w, http.StatusConflict, "email_taken", err.Error())
		case errors.Is(err, authservice.ErrInvalidSignup):
			httpjson.Error(w, http.StatusBadRequest, "invalid_request", err.Error())
		default:
			h.logger.ErrorContext(ctx, "Sign up failed", attr.Error(err))
			httpjson.Error(w, http.StatusServiceUnavailable, "unavailable", "sign up is unavailable")
		}
		return
	}

	h.setSessionCookie(w, resp)
	httpjson.Write(w, http.StatusCreated, resp)
}

func (h *AuthHandlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "AuthHandlers.HandleLogin")
	defer span.End()

	var req loginRequest
	if err := httpjson.Decode(r, h.validate, &req); err != nil {
		httpjson.WriteValidation(w, err)
		return
	}

	resp, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, authservice.ErrInvalidCredentials) {
			httpjson.Error(w, http.StatusUnauthorized, "invalid_credentials", err.Error())
			return
		}
		h.logger.ErrorContext(ctx, "HTTP Login failed", attr.Error(err))
		httpjson.Error(w, http.StatusServiceUnavailable, "unavailable", "login is unavailable")
		return
	}

	h.setSessionCookie(w, resp)
	httpjson.Write(w, http.StatusOK, resp)
}

func (h *AuthHandlers) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandlers) setSessionCookie(w http.ResponseWriter, resp *authservice.AuthResponse) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    resp.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Now().Add(time.Duration(resp.Duration) * time.Second),
	})
}
