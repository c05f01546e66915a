package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/upb/studio-dashboard/access"
	"github.com/upb/studio-dashboard/middleware"
	"github.com/upb/studio-dashboard/models"
	"github.com/upb/studio-dashboard/repositories"
	"github.com/upb/studio-dashboard/services"
	"github.com/upb/studio-dashboard/session"
	"github.com/upb/studio-dashboard/utils"
	"go.uber.org/zap"
)

// MeResponse describes the signed-in user
type MeResponse struct {
	Subject   string          `json:"sub"`
	Email     string          `json:"email"`
	Role      string          `json:"role"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
	Access    map[string]bool `json:"access"`
}

// DesignQuery is the query string accepted by GET /api/v1/designs
type DesignQuery struct {
	Step   string `form:"step" validate:"omitempty,slug"`
	Limit  int    `form:"limit" validate:"omitempty,min=1,max=200"`
	Offset int    `form:"offset" validate:"omitempty,min=0"`
}

// APIHandler serves the JSON API
type APIHandler struct {
	designs repositories.DesignRepository
	policy  *access.Policy
	logger  *zap.Logger
}

// NewAPIHandler creates a new APIHandler
func NewAPIHandler(designs repositories.DesignRepository, policy *access.Policy, logger *zap.Logger) *APIHandler {
	return &APIHandler{
		designs: designs,
		policy:  policy,
		logger:  logger,
	}
}

// HandleMe handles GET /api/v1/me
func (h *APIHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	s, _ := middleware.SessionFromContext(r.Context())
	if s == nil {
		HandleServiceError(w, services.ErrUnauthorized, h.logger)
		return
	}

	resp := MeResponse{
		Subject: s.Subject.String(),
		Email:   s.Email,
		Role:    string(s.Role),
		Access:  make(map[string]bool),
	}
	if !s.ExpiresAt.IsZero() {
		exp := s.ExpiresAt.UTC()
		resp.ExpiresAt = &exp
	}
	for _, route := range h.policy.Routes() {
		allow, _ := h.policy.For(route)
		resp.Access[route] = allow.Allows(s)
	}

	if err := utils.WriteOK(w, resp); err != nil {
		h.logger.Error("failed to write me response", zap.Error(err))
	}
}

// ListDesigns handles GET /api/v1/designs. Designers only see their own designs.
func (h *APIHandler) ListDesigns(w http.ResponseWriter, r *http.Request) {
	s, _ := middleware.SessionFromContext(r.Context())
	if s == nil {
		HandleServiceError(w, services.ErrUnauthorized, h.logger)
		return
	}

	q, err := parseDesignQuery(r)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	filter := models.DesignFilter{Step: q.Step, Limit: q.Limit, Offset: q.Offset}
	if s.HasAnyRole(session.RoleDesigner) {
		owner := s.Subject
		filter.OwnerID = &owner
	}

	designs, err := h.designs.List(r.Context(), filter)
	if err != nil {
		HandleServiceError(w, services.WrapError(services.ErrorTypeInternal, "list designs", err), h.logger)
		return
	}
	if designs == nil {
		designs = []*models.Design{}
	}
	if err := utils.WriteOK(w, designs); err != nil {
		h.logger.Error("failed to write designs response", zap.Error(err))
	}
}

// GetDesign handles GET /api/v1/designs/{id}
func (h *APIHandler) GetDesign(w http.ResponseWriter, r *http.Request) {
	s, _ := middleware.SessionFromContext(r.Context())
	if s == nil {
		HandleServiceError(w, services.ErrUnauthorized, h.logger)
		return
	}

	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		HandleServiceError(w, services.ErrInvalidDesignID.WithDetail("id", raw), h.logger)
		return
	}

	design, err := h.designs.GetByID(r.Context(), id)
	if err != nil {
		if !services.IsNotFoundError(err) {
			err = services.WrapError(services.ErrorTypeInternal, "get design", err)
		}
		HandleServiceError(w, err, h.logger)
		return
	}
	if s.HasAnyRole(session.RoleDesigner) && design.OwnerID != s.Subject {
		HandleServiceError(w, services.ErrNotDesignOwner.WithDetail("id", id.String()), h.logger)
		return
	}

	if err := utils.WriteOK(w, design); err != nil {
		h.logger.Error("failed to write design response", zap.Error(err))
	}
}

func parseDesignQuery(r *http.Request) (*DesignQuery, error) {
	values := r.URL.Query()
	q := &DesignQuery{Step: values.Get("step")}

	badNumbers := make(map[string]string)
	for key, dst := range map[string]*int{"limit": &q.Limit, "offset": &q.Offset} {
		raw := values.Get(key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			badNumbers[key] = key + " must be a number"
			continue
		}
		*dst = n
	}
	if len(badNumbers) > 0 {
		return nil, &utils.ValidationError{Message: "Validation failed", Fields: badNumbers}
	}

	if err := utils.ValidateStruct(q); err != nil {
		return nil, err
	}
	return q, nil
}
