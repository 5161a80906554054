package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/attendance-review/internal/config"
	"github.com/cmlabs-hris/attendance-review/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-review/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(app config.AppConfig, JWTService jwt.Service, reviewHandler ReviewHandler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(!app.IsDevelopment())
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "attendance-review"),
		slog.String("version", "v1.0.0"),
		slog.String("env", app.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{app.FrontendURL},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1/attendance-review", func(r chi.Router) {
		// Stream tokens are validated by the handler itself
		r.Get("/stream", reviewHandler.Stream)

		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))
			r.Use(middleware.RequireManager)
			r.Use(chiMiddleware.AllowContentType("application/json", "multipart/form-data"))

			r.Route("/sessions", func(r chi.Router) {
				r.Post("/", reviewHandler.OpenSession)

				r.Route("/{sessionID}", func(r chi.Router) {
					r.Delete("/", reviewHandler.CloseSession)
					r.Get("/rows", reviewHandler.ListRows)
					r.Get("/rows/{date}", reviewHandler.GetRow)
					r.Post("/edits", reviewHandler.SubmitEdit)
				})
			})

			r.Get("/comparison", reviewHandler.Compare)
			r.Post("/raw-imports", reviewHandler.ImportRaw)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not found", http.StatusNotFound)
	})

	return r
}
