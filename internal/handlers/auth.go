package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/livrex-com/livrexgo/internal/models"
	"github.com/livrex-com/livrexgo/internal/store"
	"github.com/livrex-com/livrexgo/internal/utils"
)

// login authenticates against the locally mirrored user table, so a
// previously synced user can sign in with no network at all.
func (r *Router) login(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.Email == "" || body.Password == "" {
		respondError(w, http.StatusBadRequest, "Email and password required")
		return
	}

	user := store.QueryByIndex[models.UserAccount](r.deps.Store, store.TableUsers, "email", body.Email)
	if user == nil || !utils.CheckPasswordHash(body.Password, user.PasswordHash) {
		respondError(w, http.StatusUnauthorized, "Identifiants invalides")
		return
	}

	accessToken, refreshToken, err := utils.GenerateTokens(user, r.deps.Cfg.JWTSecret)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to generate tokens")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"user":          user,
	})
}
