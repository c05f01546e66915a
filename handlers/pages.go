package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/upb/studio-dashboard/access"
	"github.com/upb/studio-dashboard/middleware"
	"github.com/upb/studio-dashboard/models"
	"github.com/upb/studio-dashboard/repositories"
	"github.com/upb/studio-dashboard/services"
	"github.com/upb/studio-dashboard/session"
	"github.com/upb/studio-dashboard/utils"
	"github.com/upb/studio-dashboard/views"
	"go.uber.org/zap"
)

type navEntry struct {
	label string
	path  string
	route string
}

var navigation = []navEntry{
	{"Dashboard", "/dashboard", access.RouteDashboard},
	{"Designer flow", "/designer-flow", access.RouteDesignerFlow},
	{"Price structure", "/price-structure", access.RouteDashboard},
	{"Profiles", "/profiles", access.RouteDashboard},
	{"Tables", "/tables", access.RouteDashboard},
	{"Notifications", "/notifications", access.RouteDashboard},
}

// PageHandler renders the dashboard pages
type PageHandler struct {
	repos  *repositories.Repositories
	policy *access.Policy
	views  *views.Renderer
	logger *zap.Logger
}

// NewPageHandler creates a new PageHandler
func NewPageHandler(repos *repositories.Repositories, policy *access.Policy, renderer *views.Renderer, logger *zap.Logger) *PageHandler {
	return &PageHandler{
		repos:  repos,
		policy: policy,
		views:  renderer,
		logger: logger,
	}
}

// DashboardData is the dashboard template payload
type DashboardData struct {
	Name string
}

// DesignerFlowData is the designer flow template payload
type DesignerFlowData struct {
	Step    string
	Steps   []string
	Designs []*models.Design
}

// PriceStructureData is the price structure template payload
type PriceStructureData struct {
	Tiers []*models.PriceTier
}

// Dashboard handles GET /dashboard
func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	page := h.page(r, "Dashboard")
	data := DashboardData{}

	if page.Session != nil {
		data.Name = page.Session.Email
		profile, err := h.repos.Profiles.GetByID(r.Context(), page.Session.Subject)
		switch {
		case err == nil:
			data.Name = profile.DisplayName()
		case services.IsNotFoundError(err):
			// no profile row yet, keep the email
		default:
			h.logger.Warn("failed to load profile",
				zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
				zap.Error(err))
		}
	}

	page.Data = data
	h.views.Render(w, http.StatusOK, views.PageDashboard, page)
}

// DesignerFlow handles GET /designer-flow and GET /designer-flow/{step}.
// Designers see their own designs; admins see everyone's.
func (h *PageHandler) DesignerFlow(w http.ResponseWriter, r *http.Request) {
	step := chi.URLParam(r, "step")
	if step != "" && !utils.IsSlug(step) {
		h.NotFound(w, r)
		return
	}

	page := h.page(r, "Designer flow")
	filter := models.DesignFilter{Step: step}
	if page.Session.HasAnyRole(session.RoleDesigner) {
		owner := page.Session.Subject
		filter.OwnerID = &owner
	}

	designs, err := h.repos.Designs.List(r.Context(), filter)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	steps, err := h.repos.Designs.Steps(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	page.Data = DesignerFlowData{Step: step, Steps: steps, Designs: designs}
	h.views.Render(w, http.StatusOK, views.PageDesignerFlow, page)
}

// PriceStructure handles GET /price-structure
func (h *PageHandler) PriceStructure(w http.ResponseWriter, r *http.Request) {
	tiers, err := h.repos.PriceTiers.List(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	page := h.page(r, "Price structure")
	page.Data = PriceStructureData{Tiers: tiers}
	h.views.Render(w, http.StatusOK, views.PagePriceStructure, page)
}

// ComingSoon returns a handler for a page that only renders placeholder markup
func (h *PageHandler) ComingSoon(title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.views.Render(w, http.StatusOK, views.PageComingSoon, h.page(r, title))
	}
}

// Forbidden renders the fallback shown when a role guard denies a signed-in user
func (h *PageHandler) Forbidden(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, http.StatusForbidden, views.PageForbidden, h.page(r, "Not available"))
}

// NotFound renders the 404 page
func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, http.StatusNotFound, views.PageNotFound, h.page(r, "Page not found"))
}

func (h *PageHandler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("page data load failed",
		zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	h.views.Render(w, http.StatusInternalServerError, views.PageError, h.page(r, "Error"))
}

// page builds the common template data for r
func (h *PageHandler) page(r *http.Request, title string) views.Page {
	s, _ := middleware.SessionFromContext(r.Context())
	return views.Page{
		Title:   title,
		Session: s,
		Nav:     h.nav(s, r.URL.Path),
	}
}

// nav lists the sections the session's role may open
func (h *PageHandler) nav(s *session.Session, current string) []views.NavItem {
	if s == nil {
		return nil
	}
	items := make([]views.NavItem, 0, len(navigation))
	for _, entry := range navigation {
		allow, ok := h.policy.For(entry.route)
		if !ok || !allow.Allows(s) {
			continue
		}
		items = append(items, views.NavItem{
			Label:  entry.label,
			Path:   entry.path,
			Active: current == entry.path || strings.HasPrefix(current, entry.path+"/"),
		})
	}
	return items
}
