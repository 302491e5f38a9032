package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"pebblely/internal/http/handlers"
	"pebblely/internal/infra"
	"pebblely/internal/middleware"
)

type Options struct {
	Logger             *infra.Logger
	CORSAllowedOrigins []string
	RateLimitPerMin    int
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(*logger),
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(*logger),
		middleware.CORS(opts.CORSAllowedOrigins),
	)

	r.Get("/healthz", app.Health)

	r.Get("/", app.Index)
	r.Get("/credits", app.CheckCredits)
	r.Get("/themes", app.Themes)
	r.Get("/files/{subdirectory}/*", app.ServeFile)
	r.Get("/archive/{subdirectory}", app.Archive)

	// Every processing call spends vendor credits.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
		r.Post("/upscale", app.Upscale)
		r.Post("/remove-background", app.RemoveBackground)
		r.Post("/create-background", app.CreateBackground)
		r.Post("/inpaint", app.Inpaint)
	})

	return r
}
