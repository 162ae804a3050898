package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

func NewRouter(apiHandler *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  logrus.StandardLogger(),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Route("/api", func(r chi.Router) {
		// Public widget routes
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		})
		r.Get("/widget/config", apiHandler.WidgetConfigHandler)
		r.Post("/ajax", apiHandler.AjaxHandler)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", apiHandler.AdminLoginHandler)

			r.Group(func(r chi.Router) {
				r.Use(apiHandler.JWTAuthMiddleware)

				r.Get("/leads", apiHandler.ListLeadsHandler)
				r.Get("/leads/{leadID}", apiHandler.GetLeadHandler)
				r.Put("/leads/{leadID}/status", apiHandler.UpdateLeadStatusHandler)
				r.Get("/stats", apiHandler.StatsHandler)
			})
		})
	})

	return r
}
