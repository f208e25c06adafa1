package surrealfocus

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/models"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/observer"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/reconciler"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/store"
)

// maxBodyBytes bounds request bodies. Every request here is a tiny object.
const maxBodyBytes = 1 << 12

type sessionRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
}

type routeRequest struct {
	Path string `json:"path" validate:"required,startswith=/"`
}

type environmentRequest struct {
	Environment string `json:"environment" validate:"required"`
}

type readOnlyRequest struct {
	ReadOnly *bool `json:"read_only" validate:"required"`
}

type environmentResponse struct {
	UserID      models.UserID      `json:"user_id"`
	Environment models.Environment `json:"environment"`
}

type statusResponse struct {
	models.SyncStatus
	Route      string `json:"route"`
	Themed     bool   `json:"themed"`
	Previewing bool   `json:"previewing"`
}

type checkResponse struct {
	Outcome   reconciler.Outcome `json:"outcome"`
	Heal      bool               `json:"heal"`
	Target    models.Environment `json:"target,omitempty"`
	Reason    string             `json:"reason,omitempty"`
	AllInSync bool               `json:"all_in_sync"`
}

// decode reads a JSON body into dst and validates it. On failure it writes
// the error response and returns false.
func (a *App) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	if err := a.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, strings.ToLower(fe.Field())+" failed "+fe.Tag())
			}
			respondError(w, http.StatusBadRequest, "Invalid request: "+strings.Join(fields, ", "))
			return false
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// statusFor maps an operation error to an HTTP status.
func statusFor(err error) int {
	var dbErr *reconciler.DatabaseError
	switch {
	case errors.Is(err, ErrNoSession), errors.Is(err, reconciler.ErrNoUserID):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrInvalidEnvironment):
		return http.StatusBadRequest
	case errors.Is(err, observer.ErrSyncInFlight), errors.Is(err, store.ErrStaleWrite):
		return http.StatusConflict
	case errors.Is(err, store.ErrReadOnly):
		return http.StatusServiceUnavailable
	case errors.As(err, &dbErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"remote":    a.config.Remote,
		"read_only": a.IsReadOnly(),
		"session":   !a.session.UserID().IsZero(),
		"time":      time.Now().Unix(),
	})
}

// handleStartSession signs a user in.
//
// HTTP Method: POST
// Endpoint: /api/session
//
//	{"user_id": "6f1c2a4e-..."}
func (a *App) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !a.decode(w, r, &req) {
		return
	}
	userID, err := models.ParseUserID(req.UserID)
	if err != nil || userID.IsZero() {
		respondError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	env, err := a.StartSession(r.Context(), userID)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, environmentResponse{UserID: userID, Environment: env})
}

func (a *App) handleEndSession(w http.ResponseWriter, r *http.Request) {
	a.EndSession()
	w.WriteHeader(http.StatusNoContent)
}

// handleVisibility triggers a check because the view became visible again.
func (a *App) handleVisibility(w http.ResponseWriter, r *http.Request) {
	if _, err := a.activeUser(); err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	a.checker.VisibilityRegained()
	w.WriteHeader(http.StatusAccepted)
}

// handleRoute records the current view.
//
// HTTP Method: PUT
// Endpoint: /api/route
//
//	{"path": "/dashboard"}
func (a *App) handleRoute(w http.ResponseWriter, r *http.Request) {
	var req routeRequest
	if !a.decode(w, r, &req) {
		return
	}
	themed := a.Navigate(req.Path)
	respondJSON(w, http.StatusOK, map[string]any{"path": req.Path, "themed": themed})
}

// handleStatus returns what every store holds. Read failures still answer
// 200; they show up in error_detail.
func (a *App) handleStatus(w http.ResponseWriter, r *http.Request) {
	if _, err := a.activeUser(); err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	status, err := a.panel.Status(r.Context())
	if err != nil {
		a.log.Warn().Err(err).Msg("status read incomplete")
	}
	respondJSON(w, http.StatusOK, statusResponse{
		SyncStatus: status,
		Route:      a.marker.Route(),
		Themed:     a.marker.Themed(),
		Previewing: a.reconciler.HasPreviewedOnly(),
	})
}

// handleSaveEnvironment commits an environment for the signed-in user.
//
// HTTP Method: PUT
// Endpoint: /api/environment
//
//	{"environment": "library"}
//
// Response:
//   - 200 OK: saved to every store
//   - 400 Bad Request: unknown environment
//   - 401 Unauthorized: no session
//   - 502 Bad Gateway: a remote table rejected the write
//   - 503 Service Unavailable: read-only mode
func (a *App) handleSaveEnvironment(w http.ResponseWriter, r *http.Request) {
	var req environmentRequest
	if !a.decode(w, r, &req) {
		return
	}
	env, err := models.ParseEnvironment(req.Environment)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	userID, err := a.activeUser()
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	if err := a.reconciler.SaveEnvironment(r.Context(), userID, env); err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, environmentResponse{UserID: userID, Environment: env})
}

func (a *App) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req environmentRequest
	if !a.decode(w, r, &req) {
		return
	}
	env, err := models.ParseEnvironment(req.Environment)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !a.reconciler.PreviewEnvironment(env) {
		respondError(w, http.StatusConflict, "Current view does not support themed visuals")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"environment": env, "previewing": true})
}

func (a *App) handleResetPreview(w http.ResponseWriter, r *http.Request) {
	a.reconciler.ResetPreview()
	w.WriteHeader(http.StatusNoContent)
}

// handleForceSync is the debug panel's force-sync button. The outcome is
// also queued as a notification.
func (a *App) handleForceSync(w http.ResponseWriter, r *http.Request) {
	userID, err := a.activeUser()
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	env, err := a.panel.ForceSync(r.Context())
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, environmentResponse{UserID: userID, Environment: env})
}

// handleCheck runs the automatic check on demand. It always answers 200;
// the outcome tells what happened.
func (a *App) handleCheck(w http.ResponseWriter, r *http.Request) {
	userID, err := a.activeUser()
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	res := a.reconciler.CheckAndFixEnvironment(r.Context(), userID)
	respondJSON(w, http.StatusOK, checkResponse{
		Outcome:   res.Outcome,
		Heal:      res.Action.Heal,
		Target:    res.Action.Target,
		Reason:    res.Action.Reason,
		AllInSync: res.Status.AllInSync,
	})
}

func (a *App) handleNotifications(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, a.notes.Take())
}

// handleReadOnly toggles rejection of remote writes. Unsecured, like every
// other endpoint of this server.
func (a *App) handleReadOnly(w http.ResponseWriter, r *http.Request) {
	var req readOnlyRequest
	if !a.decode(w, r, &req) {
		return
	}
	a.SetReadOnly(*req.ReadOnly)
	respondJSON(w, http.StatusOK, map[string]bool{"read_only": a.IsReadOnly()})
}

// handleDebugPanel renders the debug panel as text.
func (a *App) handleDebugPanel(w http.ResponseWriter, r *http.Request) {
	if _, err := a.activeUser(); err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	status, _ := a.panel.Status(r.Context())
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := observer.Render(w, status); err != nil {
		a.log.Warn().Err(err).Msg("debug panel not rendered")
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_, _ = w.Write(response)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
