package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/livrex-com/livrexgo/internal/config"
	"github.com/livrex-com/livrexgo/internal/health"
	"github.com/livrex-com/livrexgo/internal/manager"
	"github.com/livrex-com/livrexgo/internal/middleware"
	"github.com/livrex-com/livrexgo/internal/models"
	"github.com/livrex-com/livrexgo/internal/repair"
	"github.com/livrex-com/livrexgo/internal/services/data"
	"github.com/livrex-com/livrexgo/internal/store"
	syncpkg "github.com/livrex-com/livrexgo/internal/sync"
	"github.com/livrex-com/livrexgo/internal/websocket"
)

// Deps bundles everything the HTTP surface needs
type Deps struct {
	Cfg     *config.Config
	Store   *store.Store
	KV      *store.KV
	Data    *data.Service
	Engine  *syncpkg.Engine
	Conn    *syncpkg.Connectivity
	Monitor *health.Monitor
	Repair  *repair.Engine
	Manager *manager.Manager
	Hub     *websocket.Hub
}

// Router wraps the mux router and its collaborators
type Router struct {
	*mux.Router
	deps Deps
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(deps Deps) *Router {
	r := &Router{
		Router: mux.NewRouter(),
		deps:   deps,
	}

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")

	// Auth routes
	auth := r.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/login", r.login).Methods("POST")

	// Event stream
	r.HandleFunc("/ws", func(w http.ResponseWriter, req *http.Request) {
		websocket.ServeWs(deps.Hub, w, req)
	})

	// Data routes (protected)
	authn := middleware.NewAuthMiddleware(deps.Cfg.JWTSecret)
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authn)

	r.registerEntityRoutes(api, "commandes", syncpkg.EntityTypeCommandes)
	r.registerEntityRoutes(api, "livreurs", syncpkg.EntityTypeLivreurs)
	r.registerEntityRoutes(api, "magasins", syncpkg.EntityTypeMagasins)
	r.registerEntityRoutes(api, "cessions", syncpkg.EntityTypeCessions)
	api.HandleFunc("/commandes/{id}/label", r.commandeLabel).Methods("GET")

	// Sync control
	api.HandleFunc("/sync/status", r.syncStatus).Methods("GET")
	api.HandleFunc("/sync/trigger", r.triggerSync).Methods("POST")
	api.HandleFunc("/sync/pending", r.listPending).Methods("GET")
	api.HandleFunc("/sync/offline-mode", r.setOfflineMode).Methods("POST")

	// Diagnostics and recovery (admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireRole(string(models.RoleAdmin)))
	admin.HandleFunc("/health", r.healthReport).Methods("GET")
	admin.HandleFunc("/health/history", r.healthHistory).Methods("GET")
	admin.HandleFunc("/health/clear", r.clearHealthWarning).Methods("POST")
	admin.HandleFunc("/repair", r.runRepair).Methods("POST")
	admin.HandleFunc("/repair/relations", r.runRelationRepair).Methods("POST")
	admin.HandleFunc("/cleanup", r.runCleanup).Methods("POST")
	admin.HandleFunc("/export/{table}", r.exportTable).Methods("GET")
	admin.HandleFunc("/reset", r.resetDatabases).Methods("POST")

	return r
}

// healthCheck returns the liveness of the local service itself
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"server":  "local",
		"online":  r.deps.Conn.IsOnline(),
		"pending": r.deps.Data.PendingCount(),
	})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
