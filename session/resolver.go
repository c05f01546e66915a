package session

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/upb/studio-dashboard/services"
	"go.uber.org/zap"
)

// Resolver derives the session for a request.
// A request without a session yields (nil, nil); errors mean the lookup itself failed.
type Resolver interface {
	Resolve(ctx context.Context, r *http.Request) (*Session, error)
}

// ResolverFunc adapts a function to Resolver
type ResolverFunc func(ctx context.Context, r *http.Request) (*Session, error)

// Resolve calls f
func (f ResolverFunc) Resolve(ctx context.Context, r *http.Request) (*Session, error) {
	return f(ctx, r)
}

// Verifier validates access tokens
type Verifier interface {
	ValidateToken(ctx context.Context, token string) (*Claims, error)
}

// ProfileLookup finds the dashboard role stored for a subject when the token
// does not carry one
type ProfileLookup interface {
	RoleBySubject(ctx context.Context, subject uuid.UUID) (string, error)
}

// CookieResolver resolves sessions from the auth cookie
type CookieResolver struct {
	cookieName string
	verifier   Verifier
	profiles   ProfileLookup
	cache      Cache
	cacheTTL   time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// CookieResolverConfig configures a CookieResolver. Profiles and Cache are optional.
type CookieResolverConfig struct {
	CookieName string
	Verifier   Verifier
	Profiles   ProfileLookup
	Cache      Cache
	CacheTTL   time.Duration
}

// NewCookieResolver creates a new CookieResolver
func NewCookieResolver(cfg CookieResolverConfig, logger *zap.Logger) *CookieResolver {
	return &CookieResolver{
		cookieName: cfg.CookieName,
		verifier:   cfg.Verifier,
		profiles:   cfg.Profiles,
		cache:      cfg.Cache,
		cacheTTL:   cfg.CacheTTL,
		logger:     logger,
		now:        time.Now,
	}
}

// CookieName returns the name of the auth cookie this resolver reads
func (cr *CookieResolver) CookieName() string {
	return cr.cookieName
}

// Resolve implements Resolver
func (cr *CookieResolver) Resolve(ctx context.Context, r *http.Request) (*Session, error) {
	token := TokenFromRequest(r, cr.cookieName)
	if token == "" {
		return nil, nil
	}
	return cr.ResolveToken(ctx, token)
}

// ResolveToken builds the session for an access token
func (cr *CookieResolver) ResolveToken(ctx context.Context, token string) (*Session, error) {
	key := CacheKey(token)
	now := cr.now()

	if cr.cache != nil {
		if cached, ok := cr.cache.Get(ctx, key); ok && !cached.Expired(now) {
			cached.AccessToken = token
			return cached, nil
		}
	}

	claims, err := cr.verifier.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}

	subject, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid sub: %v", ErrInvalidToken, err)
	}

	roleName := claims.RoleClaim()
	if roleName == "" && cr.profiles != nil {
		roleName, err = cr.profiles.RoleBySubject(ctx, subject)
		if err != nil && !services.IsNotFoundError(err) {
			return nil, fmt.Errorf("profile role lookup: %w", err)
		}
	}

	s := &Session{
		Subject:     subject,
		Email:       claims.Email,
		AccessToken: token,
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}

	if roleName != "" {
		role, err := ParseRole(roleName)
		if err != nil {
			cr.logger.Warn("session carries unknown role",
				zap.String("sub", subject.String()),
				zap.String("role", roleName))
		} else {
			s.Role = role
		}
	}

	if cr.cache != nil {
		ttl := cr.cacheTTL
		if !s.ExpiresAt.IsZero() {
			if remaining := s.ExpiresAt.Sub(now); remaining < ttl {
				ttl = remaining
			}
		}
		cr.cache.Set(ctx, key, s, ttl)
	}

	return s, nil
}

// Forget drops any cached session for token
func (cr *CookieResolver) Forget(ctx context.Context, token string) {
	if cr.cache != nil && token != "" {
		cr.cache.Delete(ctx, CacheKey(token))
	}
}
