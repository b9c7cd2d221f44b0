package authservice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	authdomain "github.com/Black-And-White-Club/curling-club/app/modules/auth/domain"
	userdb "github.com/Black-And-White-Club/curling-club/app/modules/user/infrastructure/repositories"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(j *FakeJWTProvider, r userdb.Repository) Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tracer := noop.NewTracerProvider().Tracer("test")
	return NewService(j, r, Config{DefaultTTL: time.Hour, BcryptCost: bcrypt.MinCost}, logger, tracer)
}

func TestService_SignUp(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		req       SignUpRequest
		setupMock func(j *FakeJWTProvider, r *userdb.FakeRepository)
		wantErr   error
		verify    func(t *testing.T, resp *AuthResponse, j *FakeJWTProvider, r *userdb.FakeRepository)
	}{
		{
			name: "creates a non-member with two trial practices",
			req:  SignUpRequest{Name: " Rocky ", Email: "Rocky@Example.com", Password: "hammer1"},
			setupMock: func(j *FakeJWTProvider, r *userdb.FakeRepository) {
				r.CreateUserFn = func(ctx context.Context, db bun.IDB, user *userdb.User) error {
					assert.Equal(t, "rocky@example.com", user.Email)
					assert.Equal(t, "Rocky", user.Name)
					assert.False(t, user.Membership)
					assert.False(t, user.IsDriver)
					assert.Equal(t, 2, user.PracticesLeft)
					assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hammer1")))
					user.ID = [16]byte{1}
					return nil
				}
				j.GenerateTokenFunc = func(claims *authdomain.Claims, ttl time.Duration) (string, error) {
					assert.Equal(t, time.Hour, ttl)
					assert.Equal(t, authdomain.RoleMember, claims.Role)
					return "signed", nil
				}
			},
			verify: func(t *testing.T, resp *AuthResponse, j *FakeJWTProvider, r *userdb.FakeRepository) {
				assert.Equal(t, "signed", resp.Token)
				assert.Equal(t, int64(3600), resp.Duration)
				assert.Equal(t, []string{"CreateUser"}, r.Trace())
				assert.Equal(t, []string{"GenerateToken"}, j.Trace())
			},
		},
		{
			name:    "short password",
			req:     SignUpRequest{Name: "Rocky", Email: "rocky@example.com", Password: "12345"},
			wantErr: ErrInvalidSignup,
		},
		{
			name:    "missing email",
			req:     SignUpRequest{Name: "Rocky", Password: "123456"},
			wantErr: ErrInvalidSignup,
		},
		{
			name: "email taken",
			req:  SignUpRequest{Name: "Rocky", Email: "rocky@example.com", Password: "123456"},
			setupMock: func(j *FakeJWTProvider, r *userdb.FakeRepository) {
				r.CreateUserFn = func(ctx context.Context, db bun.IDB, user *userdb.User) error {
					return userdb.ErrEmailTaken
				}
			},
			wantErr: ErrEmailTaken,
		},
		{
			name: "token failure",
			req:  SignUpRequest{Name: "Rocky", Email: "rocky@example.com", Password: "123456"},
			setupMock: func(j *FakeJWTProvider, r *userdb.FakeRepository) {
				j.GenerateTokenFunc = func(claims *authdomain.Claims, ttl time.Duration) (string, error) {
					return "", errors.New("no key")
				}
			},
			wantErr: ErrGenerateToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := &FakeJWTProvider{}
			r := userdb.NewFakeRepository()
			if tt.setupMock != nil {
				tt.setupMock(j, r)
			}

			resp, err := newTestService(j, r).SignUp(ctx, tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.verify != nil {
				tt.verify(t, resp, j, r)
			}
		})
	}
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	repo := userdb.NewMemoryRepository()
	svc := newTestService(&FakeJWTProvider{}, repo)

	email := gofakeit.Email()
	_, err := svc.SignUp(ctx, SignUpRequest{Name: gofakeit.Name(), Email: email, Password: "pebble-ice"})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, email, "pebble-ice")
	require.NoError(t, err)
	assert.Equal(t, "fake-token", resp.Token)
	assert.Equal(t, userdb.NormalizeEmail(email), resp.Email)

	_, err = svc.Login(ctx, email, "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "pebble-ice")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.SignUp(ctx, SignUpRequest{Name: "Again", Email: email, Password: "pebble-ice"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestService_ValidateToken(t *testing.T) {
	j := &FakeJWTProvider{}
	svc := newTestService(j, userdb.NewFakeRepository())

	claims, err := svc.ValidateToken(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, authdomain.RoleMember, claims.Role)
	assert.Equal(t, []string{"ValidateToken"}, j.Trace())
}
