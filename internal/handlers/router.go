package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes constructs the chi router containing all API endpoints.
func (a *API) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(a.requestLogger)

	allowed := a.cfg.AllowedOrigins
	if len(allowed) == 0 {
		allowed = []string{a.cfg.FrontendURL}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowed,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           int((10 * time.Minute).Seconds()),
	}))

	r.Get("/", a.handleWelcome)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", a.handleReady)
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(httprate.Limit(100, 15*time.Minute))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", a.handleRegister)
			r.Post("/login", a.handleLogin)
			r.Group(func(r chi.Router) {
				r.Use(a.authenticate)
				r.Get("/profile", a.handleGetProfile)
				r.Put("/profile", a.handleUpdateProfile)
				r.Delete("/delete", a.handleDeleteAccount)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(a.authenticate)
			r.Get("/dashboard", a.handleDashboard)
		})

		r.Route("/projects", func(r chi.Router) {
			// Invitation preview must work before the invitee has an account.
			r.Get("/invitations/{token}", a.handleInspectInvitation)

			r.Group(func(r chi.Router) {
				r.Use(a.authenticate)
				r.Post("/", a.handleCreateProject)
				r.Get("/", a.handleListProjects)
				r.Post("/accept-invitation", a.handleAcceptInvitation)

				r.Route("/{projectID}", func(r chi.Router) {
					r.Use(a.requireProjectMember)
					r.Get("/", a.handleGetProject)
					r.Put("/", a.handleUpdateProject)
					r.Delete("/", a.handleDeleteProject)
					r.Put("/members/role", a.handleUpdateMemberRole)
					r.Delete("/members", a.handleRemoveMember)

					r.Group(func(r chi.Router) {
						r.Use(a.requireProjectAdmin)
						r.Post("/invite", a.handleInviteUser)
					})
				})
			})
		})

		r.Route("/uploads", func(r chi.Router) {
			r.Use(a.authenticate)
			r.With(a.requireProjectMember).Post("/{projectID}", a.handleUploadFile)
			r.With(a.requireProjectMember).Get("/{projectID}", a.handleListUploads)
			r.Get("/file/{uploadID}", a.handleGetUpload)
			r.Delete("/file/{uploadID}", a.handleDeleteUpload)
		})

		r.Route("/charts", func(r chi.Router) {
			r.Use(a.authenticate)
			r.Post("/upload/{uploadID}", a.handleCreateChart)
			r.Get("/upload/{uploadID}", a.handleListCharts)
			r.Get("/{chartID}", a.handleGetChart)
			r.Put("/{chartID}", a.handleUpdateChart)
			r.Delete("/{chartID}", a.handleDeleteChart)
		})
	})

	return r
}

func (a *API) handleWelcome(w http.ResponseWriter, _ *http.Request) {
	respondSuccess(w, http.StatusOK, "Welcome to the Excel Analytics API", map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	sqlDB, err := a.db.DB()
	if err != nil || sqlDB.PingContext(ctx) != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (a *API) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		a.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
