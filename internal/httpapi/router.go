package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"slidecast/internal/httpapi/handlers"
	"slidecast/internal/httpkit"
	"slidecast/internal/pkg/middleware"
)

// Deps are the handler dependencies plus router-level settings.
type Deps struct {
	handlers.Deps
	CORSOrigins []string
}

func NewRouter(d Deps) http.Handler {
	h := handlers.New(d.Deps)
	log := h.Log()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(log))
	r.Use(middleware.Recovery(log))
	r.Use(httpkit.CORS(httpkit.CORSOptions{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAgeSeconds:    600,
	}))

	// ---- HEALTH ----
	r.Get("/health", h.Health)

	// ---- RENDER ----
	r.Post("/render", middleware.WrapHandler(log, h.PostRender))

	// ---- JOBS ----
	r.Post("/jobs", middleware.WrapHandler(log, h.PostJob))
	r.Get("/jobs", middleware.WrapHandler(log, h.ListJobs))
	r.Get("/jobs/{jobId}", middleware.WrapHandler(log, h.GetJob))

	return r
}
