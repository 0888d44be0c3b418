package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/livrex-com/livrexgo/internal/models"
	"github.com/livrex-com/livrexgo/internal/store"
)

// syncStatus reports the engine state for the status pill in the UI
func (r *Router) syncStatus(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, r.deps.Engine.Status())
}

// triggerSync queues an explicit synchronization cycle
func (r *Router) triggerSync(w http.ResponseWriter, req *http.Request) {
	if !r.deps.Conn.ShouldMakeAPICall() {
		respondJSON(w, http.StatusAccepted, map[string]interface{}{
			"queued":  false,
			"state":   r.deps.Engine.State(),
			"message": "Hors ligne, les modifications restent en file d'attente",
		})
		return
	}

	r.deps.Engine.RequestSync()
	respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"queued": true,
		"state":  r.deps.Engine.State(),
	})
}

// listPending exposes the replay queue for the diagnostic panel
func (r *Router) listPending(w http.ResponseWriter, req *http.Request) {
	pending := store.GetAll[models.PendingChange](r.deps.Store, store.TablePendingChanges)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(pending),
		"data":  pending,
	})
}

// setOfflineMode flips the user-controlled forced-offline override
func (r *Router) setOfflineMode(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Forced bool `json:"forced"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	r.deps.Conn.SetForcedOffline(body.Forced)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"forced_offline": body.Forced,
		"state":          r.deps.Engine.State(),
	})
}
