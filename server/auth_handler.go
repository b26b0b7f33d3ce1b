package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"soundcrate/core/auth"
	"soundcrate/logger"
	"soundcrate/model"
	"soundcrate/repository"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// RegisterHandler creates a user account and issues a token.
func (h *APIHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		respondError(w, http.StatusBadRequest, "A valid email is required")
		return
	}
	if len(req.Password) < 6 {
		respondError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		logger.Error("[Register] failed to hash password", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	user := &model.User{Email: req.Email, PasswordHash: hash}
	id, err := h.userRepo.CreateUser(user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			respondError(w, http.StatusConflict, "Email is already registered")
			return
		}
		logger.Error("[Register] failed to create user", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	user.ID = id

	token, err := auth.GenerateToken(user.ID, user.Email)
	if err != nil {
		logger.Error("[Register] failed to generate token", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	logger.Info("[Register] account created",
		logger.Int64("userId", user.ID),
		logger.String("email", user.Email))
	respondJSON(w, http.StatusCreated, sessionResponse{Token: token, User: user})
}

// LoginHandler verifies credentials and issues a token.
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.userRepo.GetUserByEmail(req.Email)
	if err != nil {
		logger.Error("[Login] failed to query user", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if user == nil || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		logger.Warn("[Login] rejected credentials", logger.String("email", req.Email))
		respondError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Email)
	if err != nil {
		logger.Error("[Login] failed to generate token", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	logger.Info("[Login] session opened", logger.Int64("userId", user.ID))
	respondJSON(w, http.StatusOK, sessionResponse{Token: token, User: user})
}

// LogoutHandler drops the caller's playlist snapshot. Tokens are stateless
// and simply expire.
func (h *APIHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if h.playlists != nil {
		if err := h.playlists.Clear(r.Context(), userID); err != nil {
			logger.Warn("[Logout] playlist snapshot clear failed",
				logger.Int64("userId", userID),
				logger.ErrorField(err))
		}
	}

	logger.Info("[Logout] session closed", logger.Int64("userId", userID))
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
