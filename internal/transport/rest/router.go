package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"vocabbattle/internal/cache"
	"vocabbattle/internal/service"
	"vocabbattle/internal/transport/rest/handler"
	"vocabbattle/internal/transport/rest/middleware"
	"vocabbattle/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService   *service.AuthService
	BattleService *service.BattleService
	RoomCache     cache.RoomCache
	Leaderboard   cache.LeaderboardCache
	StatsCache    cache.StatsCache
	SessionCache  cache.SessionCache
	WSHub         *ws.Hub
	CORSOrigins   string
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	battleHandler := handler.NewBattleHandler(c.RoomCache, c.Leaderboard, c.StatsCache)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.BattleService)
	if c.SessionCache != nil {
		wsHandler.SetSessionCache(c.SessionCache)
	}

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.CORSOrigins))

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// WebSocket route (token in query param or Authorization header)
	v1.HandleFunc("/ws/battle", wsHandler.BattleWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Battle routes (require user auth)
	battleRoutes := v1.PathPrefix("/battles").Subrouter()
	battleRoutes.Use(authMW.RequireUser)

	battleRoutes.HandleFunc("/rooms/{roomId}", battleHandler.GetRoom).Methods("GET", "OPTIONS")
	battleRoutes.HandleFunc("/leaderboard", battleHandler.Leaderboard).Methods("GET", "OPTIONS")
	battleRoutes.HandleFunc("/stats", battleHandler.Stats).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(allowedOrigins string) mux.MiddlewareFunc {
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}

	allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
	if allowedMethods == "" {
		allowedMethods = "GET, OPTIONS"
	}

	allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
	if allowedHeaders == "" {
		allowedHeaders = "Content-Type, Authorization"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
			w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
