package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hugh/recipe-api/internal/api/handlers"
	"github.com/hugh/recipe-api/internal/api/middleware"
	"github.com/hugh/recipe-api/internal/auth"
	"github.com/hugh/recipe-api/internal/recipes"
	"github.com/hugh/recipe-api/internal/storage"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Router struct {
	chi.Router
	limiters []*middleware.RateLimiter
}

type RouterConfig struct {
	DB             *gorm.DB
	Redis          *redis.Client // optional
	Logger         *slog.Logger
	JWTService     *auth.JWTService
	AuthService    *auth.Service
	RecipeService  *recipes.Service
	Storage        storage.Storage
	MediaURL       string   // mount point for local media, e.g. /media/
	AllowedOrigins []string // CORS allowed origins
	RateLimitReqs  int      // Rate limit requests per window
	RateLimitSecs  int      // Rate limit window in seconds
	MaxUploadBytes int64
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()
	router := &Router{Router: r}

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(chimw.StripSlashes)

	// Rate limiting - applied globally to prevent abuse
	if cfg.RateLimitReqs > 0 {
		ipLimiter := middleware.NewRateLimiter(cfg.RateLimitReqs, time.Duration(cfg.RateLimitSecs)*time.Second)
		router.limiters = append(router.limiters, ipLimiter)
		r.Use(middleware.RateLimit(ipLimiter))
	}

	// CORS - restrict to configured origins, or allow all in development
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		// Default to localhost for development - configure in production
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	authHandler := handlers.NewAuthHandler(cfg.AuthService)
	labelHandler := handlers.NewLabelHandler(cfg.RecipeService)
	recipeHandler := handlers.NewRecipeHandler(cfg.RecipeService, cfg.MaxUploadBytes)

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	r.Route("/api/user", func(r chi.Router) {
		r.Post("/create", authHandler.Create)
		r.Post("/token", authHandler.Token)

		r.Group(func(r chi.Router) {
			router.protect(r, cfg)
			r.Get("/me", authHandler.Me)
			r.Put("/me", authHandler.UpdateMe)
			r.Patch("/me", authHandler.UpdateMe)
		})
	})

	r.Route("/api/recipe", func(r chi.Router) {
		router.protect(r, cfg)

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", labelHandler.ListTags)
			r.Post("/", labelHandler.CreateTag)
		})

		r.Route("/ingredients", func(r chi.Router) {
			r.Get("/", labelHandler.ListIngredients)
			r.Post("/", labelHandler.CreateIngredient)
		})

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", recipeHandler.List)
			r.Post("/", recipeHandler.Create)
			r.Get("/{id}", recipeHandler.Get)
			r.Put("/{id}", recipeHandler.Update)
			r.Patch("/{id}", recipeHandler.PartialUpdate)
			r.Delete("/{id}", recipeHandler.Delete)
			r.Post("/{id}/upload-image", recipeHandler.UploadImage)
			r.Delete("/{id}/upload-image", recipeHandler.DeleteImage)
		})
	})

	// Media files, only when they live on local disk
	if local, ok := cfg.Storage.(*storage.Local); ok && strings.HasPrefix(cfg.MediaURL, "/") {
		prefix := strings.TrimSuffix(cfg.MediaURL, "/") + "/"
		fileServer := http.StripPrefix(prefix, http.FileServer(http.Dir(local.Root())))
		r.Handle(prefix+"*", noDirListing(fileServer))
	}

	return router
}

// protect adds authentication and per-user rate limiting to r.
func (rt *Router) protect(r chi.Router, cfg RouterConfig) {
	r.Use(middleware.Auth(cfg.JWTService, cfg.AuthService))
	if cfg.RateLimitReqs > 0 {
		userLimiter := middleware.NewRateLimiter(cfg.RateLimitReqs, time.Duration(cfg.RateLimitSecs)*time.Second)
		rt.limiters = append(rt.limiters, userLimiter)
		r.Use(middleware.RateLimitByUser(userLimiter))
	}
}

// Close stops the rate limiters' background cleanup.
func (rt *Router) Close() {
	for _, l := range rt.limiters {
		l.Stop()
	}
}

func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
