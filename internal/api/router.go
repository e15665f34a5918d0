package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/postboard/postboard-be/internal/api/handlers"
	"github.com/postboard/postboard-be/internal/database"
	"github.com/postboard/postboard-be/internal/models"
	"github.com/postboard/postboard-be/internal/monitoring"
	"github.com/postboard/postboard-be/internal/services"
	"github.com/postboard/postboard-be/internal/websocket"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(
	allowedOrigins []string,
	hub *websocket.Hub,
	userService services.ResourceServiceProvider[models.User],
	postService services.ResourceServiceProvider[models.Post],
	health *monitoring.HealthMonitor,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Initialize handlers
	userHandler := handlers.NewResourceHandler("User", userService)
	postHandler := handlers.NewResourceHandler("Post", postService)
	healthHandler := handlers.NewHealthHandler(health)
	wsHandler := handlers.NewWebSocketHandler(hub, database.UsersCollection, database.PostsCollection)

	// The first iteration of the service listed users at the root.
	r.Get("/", userHandler.GetAll)
	r.Get("/healthz", healthHandler.Get)

	r.Get("/ws", wsHandler.Serve)
	r.Get("/ws/{topic}", wsHandler.Serve)

	r.Route("/users", func(r chi.Router) {
		r.Get("/", userHandler.GetAll)
		r.Post("/", userHandler.Create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", userHandler.Get)
			r.Put("/", userHandler.Update)
			r.Delete("/", userHandler.Delete)
		})
	})

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", postHandler.GetAll)
		r.Post("/", postHandler.Create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", postHandler.Get)
			r.Put("/", postHandler.Update)
			r.Delete("/", postHandler.Delete)
		})
	})

	return r
}
