package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"qc-console/internal/config"
	"qc-console/internal/handler"
	"qc-console/internal/middleware"
	"qc-console/internal/model"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth          *handler.AuthHandler
	Rejection     *handler.RejectionHandler
	RejectionForm *handler.RejectionFormHandler
	Scrap         *handler.ScrapHandler
	ScrapForm     *handler.ScrapFormHandler
	Clients       *handler.ReferenceHandler
	Defects       *handler.ReferenceHandler
	Lines         *handler.ReferenceHandler
	Conditions    *handler.ConditionHandler
	Users         *handler.UsersHandler
}

func New(cfg *config.Config, sessionMiddleware *middleware.SessionMiddleware, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	requireSession := sessionMiddleware.RequireSession
	adminOnly := sessionMiddleware.RequireRoles(model.RoleAdmin)
	scrapRoles := sessionMiddleware.RequireRoles(model.RoleAdmin, model.RoleEngineer)

	r.Route("/api", func(api chi.Router) {
		// The spreadsheet relay streams; http.TimeoutHandler would buffer
		// it, so it sits outside the timeout group.
		api.With(middleware.StreamingTimeout(5*time.Minute, 30*time.Second), requireSession).
			Get("/reports/rejections", h.Rejection.DownloadExcel)

		api.Group(func(api chi.Router) {
			api.Use(middleware.Timeout(cfg.RequestTimeout))

			api.Route("/auth", func(auth chi.Router) {
				auth.Post("/login", h.Auth.Login)
				auth.With(requireSession).Post("/logout", h.Auth.Logout)
				auth.With(requireSession).Get("/me", h.Auth.Me)
				auth.With(requireSession, adminOnly).Post("/register", h.Auth.Register)
				auth.With(requireSession, adminOnly).Get("/roles", h.Auth.Roles)
			})

			// Rejection capture is open to every signed-in role.
			api.Route("/rejections", func(rej chi.Router) {
				rej.Use(requireSession)
				rej.Get("/", h.Rejection.List)
				rej.Delete("/{id}", h.Rejection.Delete)
			})

			api.Route("/forms", func(forms chi.Router) {
				forms.Use(requireSession)

				forms.Get("/check-number", handler.CheckNumber)

				forms.Route("/rejections", func(fr chi.Router) {
					fr.Post("/", h.RejectionForm.Create)
					fr.Get("/{draftID}", h.RejectionForm.Snapshot)
					fr.Put("/{draftID}/fields", h.RejectionForm.SetFields)
					fr.Post("/{draftID}/select", h.RejectionForm.Select)
					fr.Post("/{draftID}/photos", h.RejectionForm.AddPhotos)
					fr.Put("/{draftID}/signature", h.RejectionForm.SetSignature)
					fr.Post("/{draftID}/submit", h.RejectionForm.Submit)
					fr.Delete("/{draftID}", h.RejectionForm.Discard)
				})

				forms.Route("/scrap", func(fs chi.Router) {
					fs.Use(scrapRoles)
					fs.Post("/", h.ScrapForm.Create)
					fs.Get("/{draftID}", h.ScrapForm.Snapshot)
					fs.Put("/{draftID}/fields", h.ScrapForm.SetFields)
					fs.Post("/{draftID}/select", h.ScrapForm.Select)
					fs.Post("/{draftID}/submit", h.ScrapForm.Submit)
					fs.Delete("/{draftID}", h.ScrapForm.Discard)
				})
			})

			api.With(requireSession, scrapRoles).Get("/scrap", h.Scrap.List)

			api.Route("/admin", func(admin chi.Router) {
				admin.Use(requireSession, adminOnly)

				mountReference := func(path string, rh *handler.ReferenceHandler) {
					admin.Route(path, func(ref chi.Router) {
						ref.Get("/", rh.List)
						ref.Get("/{id}", rh.Get)
						ref.Post("/", rh.Create)
						ref.Put("/{id}", rh.Update)
						ref.Delete("/{id}", rh.Delete)
					})
				}

				mountReference("/clients", h.Clients)
				mountReference("/defects", h.Defects)
				mountReference("/lines", h.Lines)

				admin.Route("/conditions", func(cond chi.Router) {
					cond.Get("/", h.Conditions.List)
					cond.Post("/", h.Conditions.Create)
					cond.Put("/{id}", h.Conditions.Update)
					cond.Delete("/{id}", h.Conditions.Delete)
				})

				admin.Route("/users", func(users chi.Router) {
					users.Get("/", h.Users.List)
					users.Delete("/{id}", h.Users.Delete)
				})
			})
		})
	})

	return r
}
