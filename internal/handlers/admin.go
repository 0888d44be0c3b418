package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/livrex-com/livrexgo/internal/repair"
	"github.com/livrex-com/livrexgo/internal/store"
	"github.com/livrex-com/livrexgo/internal/utils"
)

// healthReport runs a full health analysis on demand
func (r *Router) healthReport(w http.ResponseWriter, req *http.Request) {
	report := r.deps.Monitor.AnalyzeHealth(r.deps.Store)
	respondJSON(w, http.StatusOK, report)
}

// healthHistory exposes the rolling operation history
func (r *Router) healthHistory(w http.ResponseWriter, req *http.Request) {
	history := r.deps.Monitor.History()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(history),
		"data":  history,
	})
}

// clearHealthWarning acknowledges the current storage warning
func (r *Router) clearHealthWarning(w http.ResponseWriter, req *http.Request) {
	r.deps.Monitor.ClearWarning()
	respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// runRepair triggers a check-and-repair pass over the local store
func (r *Router) runRepair(w http.ResponseWriter, req *http.Request) {
	result := r.deps.Repair.CheckAndRepair()

	status := http.StatusOK
	if !result.Success {
		status = http.StatusInternalServerError
	}
	respondJSON(w, status, result)
}

// runRelationRepair reconciles denormalized user/magasin fields
func (r *Router) runRelationRepair(w http.ResponseWriter, req *http.Request) {
	report := r.deps.Repair.RepairRelations(repair.NewStoreRelations(r.deps.Store))
	respondJSON(w, http.StatusOK, report)
}

// runCleanup sweeps expired temporary data immediately
func (r *Router) runCleanup(w http.ResponseWriter, req *http.Request) {
	report := r.deps.Manager.CleanupTempData()
	respondJSON(w, http.StatusOK, report)
}

// exportTable dumps one local table as JSON for offline diagnosis
func (r *Router) exportTable(w http.ResponseWriter, req *http.Request) {
	table := store.Table(mux.Vars(req)["table"])

	rows, err := store.ExportRows(r.deps.Store, table)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Table inconnue: "+string(table))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"table": table,
		"count": len(rows),
		"data":  rows,
	})
}

// resetDatabases destroys and rebuilds the local store. Pending
// changes are lost, so the admin password is required on top of the
// admin role.
func (r *Router) resetDatabases(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if r.deps.Cfg.AdminPasswordHash == "" ||
		!utils.CheckPasswordHash(body.Password, r.deps.Cfg.AdminPasswordHash) {
		respondError(w, http.StatusForbidden, "Mot de passe administrateur invalide")
		return
	}

	if err := r.deps.Manager.ResetAllDatabases(); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "reset",
		"message": "Données locales réinitialisées",
	})
}
