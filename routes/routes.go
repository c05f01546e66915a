package routes

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/upb/studio-dashboard/access"
	"github.com/upb/studio-dashboard/app"
	"github.com/upb/studio-dashboard/middleware"
	"github.com/upb/studio-dashboard/utils"
	"github.com/upb/studio-dashboard/views"
)

// publicPaths stay reachable without a session when edge enforcement is on
var publicPaths = []string{"/healthz", "/readyz", "/logout"}

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	cfg := deps.Config
	logger := deps.Logger
	loginPath := cfg.Edge.LoginPath

	edge := middleware.NewEdgeFilter(deps.Resolver, middleware.EdgeFilterConfig{
		Matcher:     middleware.NewPathMatcher(cfg.Edge.ExcludePrefixes, middleware.DefaultExcludedExtensions),
		EnforceAuth: cfg.Edge.EnforceAuth,
		LoginPath:   loginPath,
		PublicPaths: publicPaths,
	}, logger)

	dashboardGuard := middleware.NewRoleGuard(middleware.RoleGuardConfig{
		Name:      access.RouteDashboard,
		Allow:     deps.Policy.MustFor(access.RouteDashboard),
		Resolver:  deps.Resolver,
		LoginPath: loginPath,
		Forbidden: http.HandlerFunc(deps.Pages.Forbidden),
	}, logger)

	designerGuard := middleware.NewRoleGuard(middleware.RoleGuardConfig{
		Name:      access.RouteDesignerFlow,
		Allow:     deps.Policy.MustFor(access.RouteDesignerFlow),
		Resolver:  deps.Resolver,
		LoginPath: loginPath,
		Forbidden: http.HandlerFunc(deps.Pages.Forbidden),
	}, logger)

	r := chi.NewRouter()

	// Core middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(edge.Handler)
	r.Use(chimw.Timeout(cfg.Server.RequestTimeout))

	// Health check endpoints
	r.Get("/healthz", deps.Health.HandleHealth)
	r.Get("/readyz", deps.Health.HandleReadiness)

	r.Handle("/static/*", views.StaticHandler("/static/"))

	// Sign in and out
	r.Get(loginPath, deps.AuthHandler.HandleLoginPage)
	r.Post(loginPath, deps.AuthHandler.HandleLogin)
	r.Post("/logout", deps.AuthHandler.HandleLogout)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
	})

	// Dashboard pages
	r.Group(func(r chi.Router) {
		r.Use(dashboardGuard.Handler)

		r.Get("/dashboard", deps.Pages.Dashboard)
		r.Get("/price-structure", deps.Pages.PriceStructure)
		r.Get("/profiles", deps.Pages.ComingSoon("Profiles"))
		r.Get("/tables", deps.Pages.ComingSoon("Tables"))
		r.Get("/notifications", deps.Pages.ComingSoon("Notifications"))

		// Designer flow is nested: both allow-lists must admit the role
		r.Route("/designer-flow", func(r chi.Router) {
			r.Use(designerGuard.Handler)
			r.Get("/", deps.Pages.DesignerFlow)
			r.Get("/{step}", deps.Pages.DesignerFlow)
		})
	})

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowOriginFunc:  exactOrigins(cfg.Server.CORSOrigins),
			AllowedMethods:   []string{"GET", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
		r.Use(dashboardGuard.Handler)

		r.Get("/me", deps.API.HandleMe)

		r.Group(func(r chi.Router) {
			r.Use(designerGuard.Handler)
			r.Get("/designs", deps.API.ListDesigns)
			r.Get("/designs/{id}", deps.API.GetDesign)
		})
	})

	r.NotFound(deps.Pages.NotFound)
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
	})

	return r
}

// exactOrigins admits only the configured origins. An empty list admits none.
func exactOrigins(origins []string) func(*http.Request, string) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[strings.ToLower(strings.TrimSuffix(o, "/"))] = struct{}{}
	}
	return func(_ *http.Request, origin string) bool {
		_, ok := allowed[strings.ToLower(origin)]
		return ok
	}
}
