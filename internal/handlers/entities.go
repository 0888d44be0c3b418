package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/livrex-com/livrexgo/internal/api"
	"github.com/livrex-com/livrexgo/internal/models"
	"github.com/livrex-com/livrexgo/internal/services/labels"
	"github.com/livrex-com/livrexgo/internal/store"
	syncpkg "github.com/livrex-com/livrexgo/internal/sync"
)

// registerEntityRoutes mounts the standard CRUD surface for one
// entity collection. Every handler goes through the data façade, so
// the online/offline branching lives in exactly one place.
func (r *Router) registerEntityRoutes(router *mux.Router, prefix string, entityType syncpkg.EntityType) {
	router.HandleFunc("/"+prefix, r.listEntities(entityType)).Methods("GET")
	router.HandleFunc("/"+prefix, r.createEntity(entityType)).Methods("POST")
	router.HandleFunc("/"+prefix+"/{id}", r.getEntity(entityType)).Methods("GET")
	router.HandleFunc("/"+prefix+"/{id}", r.updateEntity(entityType)).Methods("PATCH", "PUT")
	router.HandleFunc("/"+prefix+"/{id}", r.deleteEntity(entityType)).Methods("DELETE")
}

func (r *Router) listEntities(entityType syncpkg.EntityType) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		rows, err := r.deps.Data.List(entityType, req.URL.Query())
		if err != nil {
			respondDataError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"data": rows})
	}
}

func (r *Router) getEntity(entityType syncpkg.EntityType) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		id := mux.Vars(req)["id"]
		row, err := r.deps.Data.Get(entityType, id)
		if err != nil {
			respondDataError(w, err)
			return
		}
		if row == nil {
			respondError(w, http.StatusNotFound, "Not found")
			return
		}
		respondJSON(w, http.StatusOK, row)
	}
}

func (r *Router) createEntity(entityType syncpkg.EntityType) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		payload := map[string]interface{}{}
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		row, err := r.deps.Data.Create(entityType, payload)
		if err != nil {
			respondDataError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, row)
	}
}

func (r *Router) updateEntity(entityType syncpkg.EntityType) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		id := mux.Vars(req)["id"]

		partial := map[string]interface{}{}
		if err := json.NewDecoder(req.Body).Decode(&partial); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		row, err := r.deps.Data.Update(entityType, id, partial)
		if err != nil {
			respondDataError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, row)
	}
}

func (r *Router) deleteEntity(entityType syncpkg.EntityType) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		id := mux.Vars(req)["id"]
		if err := r.deps.Data.Delete(entityType, id); err != nil {
			respondDataError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// commandeLabel renders the printable PDF label for one order
func (r *Router) commandeLabel(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]

	commande := store.GetByID[models.Commande](r.deps.Store, store.TableCommandes, id)
	if commande == nil {
		respondError(w, http.StatusNotFound, "Commande introuvable")
		return
	}

	pdf, err := labels.GenerateDeliveryLabel(commande)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "inline; filename=\""+commande.NumeroCommande+".pdf\"")
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

// respondDataError maps façade errors onto HTTP statuses. Storage
// exhaustion gets its own status so the UI can tell the user to free
// space instead of retrying.
func respondDataError(w http.ResponseWriter, err error) {
	if errors.Is(err, api.ErrStorageQuota) {
		respondError(w, http.StatusInsufficientStorage, "Stockage local saturé. Libérez de l'espace puis réessayez.")
		return
	}

	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		respondError(w, apiErr.StatusCode, apiErr.Message)
		return
	}

	respondError(w, http.StatusInternalServerError, err.Error())
}
