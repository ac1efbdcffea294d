package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	appLogger "github.com/FACorreiaa/devconnector-api/app/logger"
	_ "github.com/FACorreiaa/devconnector-api/docs"
	"github.com/FACorreiaa/devconnector-api/internal/api/auth"
	"github.com/FACorreiaa/devconnector-api/internal/api/github"
	"github.com/FACorreiaa/devconnector-api/internal/api/posts"
	"github.com/FACorreiaa/devconnector-api/internal/api/profiles"
)

// Config contains dependencies needed for the router setup
type Config struct {
	Logger                 *slog.Logger
	AuthHandler            *auth.AuthHandler
	PostHandler            *posts.PostHandler
	ProfileHandler         profiles.Handler
	GithubHandler          *github.Handler
	AuthenticateMiddleware func(http.Handler) http.Handler
	AllowedOrigins         []string
	Timeout                time.Duration
}

// SetupRouter builds the application router with the server-wide
// middleware stack applied.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(appLogger.StructuredLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	if cfg.Timeout > 0 {
		r.Use(middleware.Timeout(cfg.Timeout))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", auth.TokenHeader},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any major browsers
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/api", func(r chi.Router) {
		// --- Public Routes ---
		r.Group(func(r chi.Router) {
			r.Post("/users", cfg.AuthHandler.Register)
			r.Post("/auth", cfg.AuthHandler.Login)

			r.Get("/profile", cfg.ProfileHandler.ListProfiles)
			r.Get("/profile/user/{id}", cfg.ProfileHandler.GetProfileByUser)
			r.Get("/profile/github/{username}", cfg.GithubHandler.GetRepos)
		})

		// --- Protected Routes ---
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)

			r.Get("/auth", cfg.AuthHandler.CurrentUser)

			r.Get("/profile/me", cfg.ProfileHandler.GetMyProfile)
			r.Post("/profile", cfg.ProfileHandler.UpsertProfile)
			r.Delete("/profile", cfg.ProfileHandler.DeleteAccount)
			r.Put("/profile/experience", cfg.ProfileHandler.AddExperience)
			r.Delete("/profile/experience/{id}", cfg.ProfileHandler.RemoveExperience)
			r.Put("/profile/education", cfg.ProfileHandler.AddEducation)
			r.Delete("/profile/education/{id}", cfg.ProfileHandler.RemoveEducation)

			r.Route("/posts", func(r chi.Router) {
				r.Post("/", cfg.PostHandler.CreatePost)
				r.Get("/", cfg.PostHandler.ListPosts)
				r.Get("/{id}", cfg.PostHandler.GetPost)
				r.Delete("/{id}", cfg.PostHandler.DeletePost)
				r.Put("/like/{id}", cfg.PostHandler.LikePost)
				r.Put("/unlike/{id}", cfg.PostHandler.UnlikePost)
				r.Post("/comment/{id}", cfg.PostHandler.AddComment)
				r.Delete("/{id}/{commentId}", cfg.PostHandler.RemoveComment)
			})
		})
	})

	return r
}
