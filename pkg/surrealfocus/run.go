package surrealfocus

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router returns the HTTP routes of the application.
//
// Health:
//
//	GET    /api/health                  - Service health status
//
// Session:
//
//	POST   /api/session                 - Sign a user in {user_id}
//	DELETE /api/session                 - Sign out
//	POST   /api/session/visibility      - The view became visible again
//	PUT    /api/route                   - Current view {path}
//
// Environment:
//
//	GET    /api/environment/status      - What every store holds
//	PUT    /api/environment             - Save {environment}
//	POST   /api/environment/preview     - Preview {environment}
//	DELETE /api/environment/preview     - End the preview
//	POST   /api/environment/sync        - Force sync
//	POST   /api/environment/check       - Run the automatic check now
//	GET    /api/notifications           - Take pending notifications
//	GET    /api/events                  - Websocket event stream
//
// Administration:
//
//	POST   /api/admin/read-only         - Toggle read-only mode {read_only}
//	GET    /debug/environment           - Text debug panel
//	GET    /metrics                     - Prometheus metrics
func (a *App) Router() http.Handler {
	router := mux.NewRouter()

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", a.handleHealth).Methods("GET")

	api.HandleFunc("/session", a.handleStartSession).Methods("POST")
	api.HandleFunc("/session", a.handleEndSession).Methods("DELETE")
	api.HandleFunc("/session/visibility", a.handleVisibility).Methods("POST")
	api.HandleFunc("/route", a.handleRoute).Methods("PUT")

	api.HandleFunc("/environment/status", a.handleStatus).Methods("GET")
	api.HandleFunc("/environment", a.handleSaveEnvironment).Methods("PUT")
	api.HandleFunc("/environment/preview", a.handlePreview).Methods("POST")
	api.HandleFunc("/environment/preview", a.handleResetPreview).Methods("DELETE")
	api.HandleFunc("/environment/sync", a.handleForceSync).Methods("POST")
	api.HandleFunc("/environment/check", a.handleCheck).Methods("POST")
	api.HandleFunc("/notifications", a.handleNotifications).Methods("GET")
	api.HandleFunc("/events", a.handleEvents).Methods("GET")

	api.HandleFunc("/admin/read-only", a.handleReadOnly).Methods("POST")

	router.HandleFunc("/health", a.handleHealth).Methods("GET")
	router.HandleFunc("/debug/environment", a.handleDebugPanel).Methods("GET")
	router.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})).Methods("GET")

	return router
}

// Run serves the HTTP API until ctx is cancelled, then shuts down
// gracefully, allowing ShutdownTimeout for in-flight requests.
func (a *App) Run(ctx context.Context, cmd *RunCommand) error {
	addr := fmt.Sprintf(":%s", a.config.ServerPort)
	a.log.Info().Str("addr", addr).Str("remote", a.config.Remote).Msg("starting surrealfocus server")

	server := &http.Server{
		Addr:              addr,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info().Msg("shutting down server")
		timeout := a.config.ShutdownTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		a.EndSession()
		return server.Shutdown(shutdownCtx)
	case err := <-serverErr:
		return err
	}
}
