package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/upb/studio-dashboard/session"
	"go.uber.org/zap"
)

// EdgeFilterConfig configures an EdgeFilter
type EdgeFilterConfig struct {
	// Matcher selects the paths that skip the filter entirely
	Matcher *PathMatcher

	// EnforceAuth redirects unauthenticated requests for non-public paths to LoginPath
	EnforceAuth bool
	LoginPath   string

	// PublicPaths are reachable without a session when EnforceAuth is on.
	// LoginPath is always public.
	PublicPaths []string
}

// EdgeFilter runs on every request ahead of routing. It resolves the session
// from cookies, logs the path with whether the request is authenticated, and
// forwards the request with the session attached to its context.
type EdgeFilter struct {
	resolver session.Resolver
	cfg      EdgeFilterConfig
	public   map[string]struct{}
	logger   *zap.Logger
}

// NewEdgeFilter creates a new EdgeFilter
func NewEdgeFilter(resolver session.Resolver, cfg EdgeFilterConfig, logger *zap.Logger) *EdgeFilter {
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/login"
	}
	public := make(map[string]struct{}, len(cfg.PublicPaths)+1)
	public[cfg.LoginPath] = struct{}{}
	for _, p := range cfg.PublicPaths {
		public[p] = struct{}{}
	}
	return &EdgeFilter{
		resolver: resolver,
		cfg:      cfg,
		public:   public,
		logger:   logger,
	}
}

// Handler wraps next with the edge filter
func (f *EdgeFilter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if f.cfg.Matcher.Excluded(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		requestID := GetRequestIDFromContext(ctx)

		s, err := f.resolver.Resolve(ctx, r)
		if err != nil {
			f.logger.Warn("session lookup failed",
				zap.String("request_id", requestID),
				zap.String("path", r.URL.Path),
				zap.Error(err))
			s = nil
		}
		authenticated := s != nil

		f.logger.Info("edge filter",
			zap.String("path", r.URL.Path),
			zap.Bool("authenticated", authenticated),
			zap.String("request_id", requestID))

		if f.cfg.EnforceAuth && !authenticated && !f.isPublic(r.URL.Path) {
			http.Redirect(w, r, LoginRedirect(f.cfg.LoginPath, r.URL), http.StatusFound)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSession(ctx, s)))
	})
}

func (f *EdgeFilter) isPublic(p string) bool {
	_, ok := f.public[p]
	return ok
}

// LoginRedirect builds the login URL that returns the user to u afterwards
func LoginRedirect(loginPath string, u *url.URL) string {
	next := u.EscapedPath()
	if u.RawQuery != "" {
		next += "?" + u.RawQuery
	}
	if next == "" || next == loginPath || strings.HasPrefix(next, loginPath+"?") {
		return loginPath
	}
	return loginPath + "?next=" + url.QueryEscape(next)
}
