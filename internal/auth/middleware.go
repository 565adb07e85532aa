package auth

import (
	"context"
	"net/http"
	"strings"

	"reelhouse/internal/core"
)

// Context key for the request identity
type contextKey string

const identityContextKey = contextKey("identity")

// Middleware provides identity middleware for the API
type Middleware struct {
	service *Service
	logger  *core.Logger
}

// NewMiddleware creates new identity middleware
func NewMiddleware(service *Service, logger *core.Logger) *Middleware {
	return &Middleware{
		service: service,
		logger:  logger,
	}
}

// Identify resolves the username header into an Identity on the request context
func (m *Middleware) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", HeaderUsername)

		username := strings.TrimSpace(r.Header.Get(HeaderUsername))
		if username == "" {
			next.ServeHTTP(w, contextSetIdentity(r, AnonymousIdentity))
			return
		}

		user, err := m.service.Resolve(r.Context(), username)
		if err != nil {
			m.logger.WithContext(r.Context()).Error("Identity lookup failed", "username", username, "error", err)
			m.serverErrorResponse(w, r)
			return
		}

		next.ServeHTTP(w, contextSetIdentity(r, &Identity{Username: username, User: user}))
	})
}

// RequireUser rejects requests without a username header
func (m *Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetIdentity(r.Context()).IsAnonymous() {
			m.authenticationRequiredResponse(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects anonymous callers with 401 and callers that are
// unknown or not administrators with 403
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	fn := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := GetIdentity(r.Context())
		if !identity.IsAdmin() {
			m.logger.WithContext(r.Context()).Warn("Admin access denied", "username", identity.Username)
			m.notPermittedResponse(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})

	return m.RequireUser(fn)
}

// Context management
func contextSetIdentity(r *http.Request, identity *Identity) *http.Request {
	return r.WithContext(WithIdentity(r.Context(), identity))
}

// WithIdentity returns ctx carrying identity
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// GetIdentity returns the identity stored by Identify, or AnonymousIdentity
func GetIdentity(ctx context.Context) *Identity {
	identity, ok := ctx.Value(identityContextKey).(*Identity)
	if !ok || identity == nil {
		return AnonymousIdentity
	}
	return identity
}

// Response helpers
func (m *Middleware) authenticationRequiredResponse(w http.ResponseWriter, r *http.Request) {
	core.WriteErrorResponse(w, http.StatusUnauthorized, core.NewUnauthorizedError("Authentication required", nil))
}

func (m *Middleware) notPermittedResponse(w http.ResponseWriter, r *http.Request) {
	core.WriteErrorResponse(w, http.StatusForbidden, core.NewForbiddenError("Admin access required", nil))
}

func (m *Middleware) serverErrorResponse(w http.ResponseWriter, r *http.Request) {
	core.WriteErrorResponse(w, http.StatusInternalServerError, core.NewInternalError("Internal server error", nil))
}
