// Package auth serves the sign-in and sign-out pages.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/upb/studio-dashboard/middleware"
	"github.com/upb/studio-dashboard/session"
	"github.com/upb/studio-dashboard/utils"
	"github.com/upb/studio-dashboard/views"
	"go.uber.org/zap"
)

const (
	// CSRFCookieName is the cookie holding the login form's CSRF token
	CSRFCookieName   = "login_csrf"
	csrfCookieMaxAge = 600

	defaultSessionMaxAge = 3600
)

// SignInProvider exchanges credentials for provider tokens
type SignInProvider interface {
	SignIn(ctx context.Context, email, password string) (*session.TokenResponse, error)
	SignOut(ctx context.Context, accessToken string) error
}

// SessionResolver turns an access token into a session
type SessionResolver interface {
	ResolveToken(ctx context.Context, token string) (*session.Session, error)
	Forget(ctx context.Context, token string)
}

// Config configures the auth handler
type Config struct {
	CookieName   string
	CookieSecure bool
	LoginPath    string
	// HomePath is where users land after signing in without a next parameter
	HomePath string
}

// LoginForm is the posted sign-in form
type LoginForm struct {
	Email     string `form:"email" validate:"required,email,max=254"`
	Password  string `form:"password" validate:"required,min=6,max=128"`
	CSRFToken string `form:"csrf_token" validate:"required"`
	Next      string `form:"next"`
}

// LoginData is the login template payload
type LoginData struct {
	Action    string
	CSRFToken string
	Next      string
	Email     string
	Errors    map[string]string
}

// Handler handles sign-in and sign-out
type Handler struct {
	cfg      Config
	provider SignInProvider
	resolver SessionResolver
	views    *views.Renderer
	logger   *zap.Logger
	now      func() time.Time
}

// NewHandler creates a new auth handler
func NewHandler(cfg Config, provider SignInProvider, resolver SessionResolver, renderer *views.Renderer, logger *zap.Logger) *Handler {
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/login"
	}
	if cfg.HomePath == "" {
		cfg.HomePath = "/dashboard"
	}
	return &Handler{
		cfg:      cfg,
		provider: provider,
		resolver: resolver,
		views:    renderer,
		logger:   logger,
		now:      time.Now,
	}
}

// HandleLoginPage handles GET /login
func (h *Handler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	next := utils.LocalRedirectPath(r.URL.Query().Get("next"), h.cfg.HomePath)

	if s, _ := middleware.SessionFromContext(r.Context()); s != nil {
		http.Redirect(w, r, next, http.StatusFound)
		return
	}

	token, err := generateCSRFToken()
	if err != nil {
		h.logger.Error("failed to generate csrf token", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.setCSRFCookie(w, token, csrfCookieMaxAge)

	h.renderLogin(w, http.StatusOK, "", LoginData{CSRFToken: token, Next: next})
}

// HandleLogin handles POST /login
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Malformed form", http.StatusBadRequest)
		return
	}
	form := LoginForm{
		Email:     strings.TrimSpace(r.PostForm.Get("email")),
		Password:  r.PostForm.Get("password"),
		CSRFToken: r.PostForm.Get("csrf_token"),
		Next:      utils.LocalRedirectPath(r.PostForm.Get("next"), h.cfg.HomePath),
	}
	data := LoginData{CSRFToken: form.CSRFToken, Next: form.Next, Email: form.Email}

	if err := utils.ValidateStruct(&form); err != nil {
		data.Errors = utils.GetValidationFields(err)
		flash := ""
		if _, ok := data.Errors["csrf_token"]; ok {
			flash = "Your sign-in form expired. Please try again."
			data = h.freshForm(w, data)
		}
		h.renderLogin(w, http.StatusBadRequest, flash, data)
		return
	}

	cookie, err := r.Cookie(CSRFCookieName)
	if err != nil || subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(form.CSRFToken)) != 1 {
		h.logger.Warn("login csrf mismatch", zap.String("request_id", requestID))
		h.renderLogin(w, http.StatusBadRequest, "Your sign-in form expired. Please try again.", h.freshForm(w, data))
		return
	}

	tokens, err := h.provider.SignIn(ctx, form.Email, form.Password)
	if err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			h.logger.Info("sign-in rejected", zap.String("request_id", requestID))
			h.renderLogin(w, http.StatusUnauthorized, "Invalid email or password.", h.freshForm(w, data))
			return
		}
		h.logger.Error("sign-in provider failed", zap.String("request_id", requestID), zap.Error(err))
		h.renderLogin(w, http.StatusBadGateway, "Sign-in is temporarily unavailable.", h.freshForm(w, data))
		return
	}

	s, err := h.resolver.ResolveToken(ctx, tokens.AccessToken)
	if err != nil {
		h.logger.Warn("issued token failed verification", zap.String("request_id", requestID), zap.Error(err))
		h.renderLogin(w, http.StatusUnauthorized, "Sign-in could not be verified.", h.freshForm(w, data))
		return
	}

	h.setCSRFCookie(w, "", -1)
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.CookieName,
		Value:    tokens.AccessToken,
		Path:     "/",
		MaxAge:   h.sessionMaxAge(tokens, s),
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	h.logger.Info("signed in",
		zap.String("request_id", requestID),
		zap.String("sub", s.Subject.String()),
		zap.String("role", string(s.Role)))

	http.Redirect(w, r, form.Next, http.StatusSeeOther)
}

// HandleLogout handles POST /logout. The auth cookie is cleared even when
// the provider cannot be reached.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if token := session.TokenFromRequest(r, h.cfg.CookieName); token != "" {
		h.resolver.Forget(ctx, token)
		if err := h.provider.SignOut(ctx, token); err != nil {
			h.logger.Warn("provider sign-out failed",
				zap.String("request_id", middleware.GetRequestIDFromContext(ctx)),
				zap.Error(err))
		}
	}

	for _, c := range r.Cookies() {
		if c.Name == h.cfg.CookieName || strings.HasPrefix(c.Name, h.cfg.CookieName+".") {
			http.SetCookie(w, &http.Cookie{
				Name:     c.Name,
				Value:    "",
				Path:     "/",
				MaxAge:   -1,
				HttpOnly: true,
				Secure:   h.cfg.CookieSecure,
				SameSite: http.SameSiteLaxMode,
			})
		}
	}

	http.Redirect(w, r, h.cfg.LoginPath, http.StatusSeeOther)
}

func (h *Handler) renderLogin(w http.ResponseWriter, status int, flash string, data LoginData) {
	data.Action = h.cfg.LoginPath
	h.views.Render(w, status, views.PageLogin, views.Page{
		Title: "Sign in",
		Flash: flash,
		Data:  data,
	})
}

// freshForm rotates the CSRF token after a failed attempt
func (h *Handler) freshForm(w http.ResponseWriter, data LoginData) LoginData {
	token, err := generateCSRFToken()
	if err != nil {
		h.logger.Error("failed to generate csrf token", zap.Error(err))
		return data
	}
	h.setCSRFCookie(w, token, csrfCookieMaxAge)
	data.CSRFToken = token
	return data
}

func (h *Handler) setCSRFCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    value,
		Path:     h.cfg.LoginPath,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *Handler) sessionMaxAge(tokens *session.TokenResponse, s *session.Session) int {
	if tokens.ExpiresIn > 0 {
		return tokens.ExpiresIn
	}
	if !s.ExpiresAt.IsZero() {
		if remaining := int(s.ExpiresAt.Sub(h.now()).Seconds()); remaining > 0 {
			return remaining
		}
	}
	return defaultSessionMaxAge
}

func generateCSRFToken() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
