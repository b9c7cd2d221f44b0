package authhandlers

import (
	"context"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	authdomain "github.com/Black-And-White-Club/curling-club/app/modules/auth/domain"
	"github.com/Black-And-White-Club/curling-club/app/shared/attr"
	"github.com/Black-And-White-Club/curling-club/app/shared/httpjson"
	"golang.org/x/time/rate"
)

// Sign-in attempts are counted per client address. The table is pruned of
// clients idle for idleClientAge once it holds more than pruneAbove entries.
const (
	pruneAbove    = 500
	idleClientAge = 10 * time.Minute
)

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ClientLimiter throttles sign-in, sign-up and logout calls per client.
type ClientLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientBucket
	every   rate.Limit
	burst   int
	now     func() time.Time
}

// NewClientLimiter allows burst attempts at once and every more per second
// after that.
func NewClientLimiter(every rate.Limit, burst int) *ClientLimiter {
	return &ClientLimiter{
		clients: make(map[string]*clientBucket),
		every:   every,
		burst:   burst,
		now:     time.Now,
	}
}

// Allow spends one attempt for client. When none is left it reports how long
// the client has to wait; zero means the client is blocked outright.
func (l *ClientLimiter) Allow(client string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if len(l.clients) > pruneAbove {
		cutoff := now.Add(-idleClientAge)
		for k, b := range l.clients {
			if b.lastSeen.Before(cutoff) {
				delete(l.clients, k)
			}
		}
	}

	b, ok := l.clients[client]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(l.every, l.burst)}
		l.clients[client] = b
	}
	b.lastSeen = now

	res := b.limiter.ReserveN(now, 1)
	if !res.OK() {
		return false, 0
	}
	if wait := res.DelayFrom(now); wait > 0 {
		res.CancelAt(now)
		return false, wait
	}
	return true, 0
}

// Throttle answers 429 with a Retry-After hint once a client has used up its
// attempts. The client is the request's remote host, which RealIP has
// already resolved upstream.
func Throttle(limiter *ClientLimiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				client = r.RemoteAddr
			}

			ok, wait := limiter.Allow(client)
			if !ok {
				logger.WarnContext(r.Context(), "Too many auth attempts",
					attr.ExtractCorrelationID(r.Context()),
					attr.String("client", client),
					attr.String("path", r.URL.Path),
				)
				if wait > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				}
				httpjson.Error(w, http.StatusTooManyRequests, "rate_limited", "too many attempts, try again later")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Browsers may call the API from the club site's own origins only.
const (
	corsMethods = "GET, POST, DELETE"
	corsHeaders = "Content-Type, Authorization"
	corsMaxAge  = "600"
)

// AllowOrigins lets the configured club site origins call the API with
// cookies. Preflights from them get 204; preflights from anywhere else get
// 403. With no origins configured every request passes through untouched.
func AllowOrigins(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[strings.TrimSuffix(o, "/")] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		if len(allowed) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Add("Vary", "Origin")

			_, ok := allowed[origin]
			preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""

			if ok {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}
			if !preflight {
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				httpjson.Error(w, http.StatusForbidden, "origin_not_allowed", "origin is not allowed")
				return
			}

			w.Header().Set("Access-Control-Allow-Methods", corsMethods)
			w.Header().Set("Access-Control-Allow-Headers", corsHeaders)
			w.Header().Set("Access-Control-Max-Age", corsMaxAge)
			w.WriteHeader(http.StatusNoContent)
		})
	}
}

// TokenValidator checks a session token.
type TokenValidator interface {
	ValidateToken(ctx context.Context, tokenString string) (*authdomain.Claims, error)
}

// SessionMiddleware attaches the session carried by a Bearer token or the
// session cookie. Requests without a valid token continue anonymously.
func SessionMiddleware(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				if cookie, err := r.Cookie(SessionCookie); err == nil {
					token = cookie.Value
				}
			}
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := validator.ValidateToken(r.Context(), token)
			if err != nil {
				logger.DebugContext(r.Context(), "Ignoring invalid session token", attr.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			ctx := authdomain.WithSession(r.Context(), claims.Session())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession rejects requests without a valid session.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := authdomain.RequireSession(r.Context()); err != nil {
			httpjson.Error(w, http.StatusUnauthorized, "unauthenticated", "sign in required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
