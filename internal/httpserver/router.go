package httpserver

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chatapi/internal/authz"
	"chatapi/internal/config"
	"chatapi/internal/security"
	"chatapi/internal/service"
	"chatapi/internal/store/sqlite"
)

// NewRouter constructs the main HTTP router and wires routes, services, and
// middleware.
func NewRouter(cfg *config.Config, db *sql.DB, tokenSvc *security.TokenService, passwordHasher *security.PasswordHasher) http.Handler {
	r := chi.NewRouter()

	// Middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(MetricsMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Repositories
	userRepo := sqlite.NewUserRepo(db)
	convRepo := sqlite.NewConversationRepo(db)
	msgRepo := sqlite.NewMessageRepo(db)
	partRepo := sqlite.NewParticipantRepo(db)

	// Services
	authorizer := authz.New(partRepo)
	authSvc := service.NewAuthService(userRepo, tokenSvc, passwordHasher)
	userSvc := service.NewUserService(userRepo)
	convSvc := service.NewConversationService(convRepo, partRepo, userRepo, authorizer)
	msgSvc := service.NewMessageService(msgRepo, convRepo, authorizer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Token issuance (no auth required)
	r.Post("/register", handleRegister(authSvc))
	r.Post("/token", handleToken(authSvc))
	r.Post("/token/refresh", handleTokenRefresh(authSvc))

	// Protected resources
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(tokenSvc, userRepo))

		r.Get("/me", handleMe())

		r.Route("/users", func(r chi.Router) {
			r.Get("/", handleListUsers(userSvc))
			r.Get("/{userID}", handleGetUser(userSvc))
		})

		r.Route("/conversations", func(r chi.Router) {
			r.Get("/", handleListConversations(convSvc))
			r.Post("/", handleCreateConversation(convSvc))
			r.Get("/{conversationID}", handleGetConversation(convSvc))
			r.Put("/{conversationID}", handleUpdateConversation(convSvc))
			r.Patch("/{conversationID}", handleUpdateConversation(convSvc))
			r.Post("/{conversationID}/participants", handleAddParticipant(convSvc))
		})

		r.Route("/messages", func(r chi.Router) {
			r.Get("/", handleListMessages(msgSvc))
			r.Post("/", handleCreateMessage(msgSvc))
			r.Get("/{messageID}", handleGetMessage(msgSvc))
			r.Put("/{messageID}", handleUpdateMessage(msgSvc))
			r.Patch("/{messageID}", handleUpdateMessage(msgSvc))
			r.Delete("/{messageID}", handleDeleteMessage(msgSvc))
		})
	})

	return r
}

// writeJSON is a small helper to send JSON responses.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}
