package middleware

import (
	"net/http"
	"strings"

	"github.com/upb/studio-dashboard/access"
	"github.com/upb/studio-dashboard/session"
	"github.com/upb/studio-dashboard/utils"
	"go.uber.org/zap"
)

// Decision is the state of a role guard evaluation
type Decision int

const (
	// DecisionLoading means the session has not been resolved yet
	DecisionLoading Decision = iota
	DecisionAllowed
	DecisionDenied
)

func (d Decision) String() string {
	switch d {
	case DecisionLoading:
		return "loading"
	case DecisionAllowed:
		return "allowed"
	case DecisionDenied:
		return "denied"
	default:
		return "unknown"
	}
}

// Verdict is the outcome of a guard evaluation
type Verdict struct {
	Decision Decision
	Session  *session.Session
}

// RoleGuardConfig configures a RoleGuard
type RoleGuardConfig struct {
	// Name identifies the guarded subtree in logs
	Name  string
	Allow access.AllowList

	// Resolver is used when no earlier middleware attached a session
	Resolver  session.Resolver
	LoginPath string

	// Forbidden renders the page shown to signed-in users whose role is not
	// allowed. Defaults to a plain 403.
	Forbidden http.Handler
}

// RoleGuard serves a route subtree only to sessions whose role is in its allow-list
type RoleGuard struct {
	cfg    RoleGuardConfig
	logger *zap.Logger
}

// NewRoleGuard creates a new RoleGuard
func NewRoleGuard(cfg RoleGuardConfig, logger *zap.Logger) *RoleGuard {
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/login"
	}
	if cfg.Forbidden == nil {
		cfg.Forbidden = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
	return &RoleGuard{
		cfg:    cfg,
		logger: logger,
	}
}

// Evaluate resolves the session for r and decides whether it may pass
func (g *RoleGuard) Evaluate(r *http.Request) Verdict {
	v := Verdict{Decision: DecisionLoading}
	ctx := r.Context()

	s, resolved := SessionFromContext(ctx)
	if !resolved && g.cfg.Resolver != nil {
		var err error
		s, err = g.cfg.Resolver.Resolve(ctx, r)
		if err != nil {
			g.logger.Debug("role guard session lookup failed",
				zap.String("request_id", GetRequestIDFromContext(ctx)),
				zap.String("guard", g.cfg.Name),
				zap.Error(err))
			s = nil
		}
	}
	v.Session = s

	if g.cfg.Allow.Allows(s) {
		v.Decision = DecisionAllowed
	} else {
		v.Decision = DecisionDenied
	}
	return v
}

// Handler wraps next with the guard
func (g *RoleGuard) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v := g.Evaluate(r)
		requestID := GetRequestIDFromContext(r.Context())

		if v.Decision == DecisionAllowed {
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), v.Session)))
			return
		}

		if v.Session == nil {
			g.logger.Info("role guard denied: no session",
				zap.String("request_id", requestID),
				zap.String("guard", g.cfg.Name),
				zap.String("path", r.URL.Path))
			if isAPIRequest(r) {
				_ = utils.WriteUnauthorized(w, "Authentication required")
				return
			}
			status := http.StatusFound
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				status = http.StatusSeeOther
			}
			http.Redirect(w, r, LoginRedirect(g.cfg.LoginPath, r.URL), status)
			return
		}

		g.logger.Warn("role guard denied: role not permitted",
			zap.String("request_id", requestID),
			zap.String("guard", g.cfg.Name),
			zap.String("path", r.URL.Path),
			zap.String("role", string(v.Session.Role)),
			zap.Stringer("allowed", g.cfg.Allow))
		if isAPIRequest(r) {
			_ = utils.WriteForbidden(w, "Insufficient permissions")
			return
		}
		g.cfg.Forbidden.ServeHTTP(w, r.WithContext(WithSession(r.Context(), v.Session)))
	})
}

func isAPIRequest(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}
