package server

import (
	"encoding/json"
	"net/http"

	"soundcrate/logger"
)

type deleteAccountRequest struct {
	UserID int64 `json:"userId"`
}

// DeleteAccountHandler removes the caller's account and everything it
// owns. The body must name the caller's own id.
func (h *APIHandler) DeleteAccountHandler(w http.ResponseWriter, r *http.Request) {
	sessionUserID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req deleteAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == 0 {
		respondError(w, http.StatusBadRequest, "userId is required")
		return
	}

	if req.UserID != sessionUserID {
		logger.Warn("[DeleteAccount] id mismatch",
			logger.Int64("sessionUserId", sessionUserID),
			logger.Int64("requestedUserId", req.UserID))
		respondError(w, http.StatusForbidden, "Cannot delete another user's account")
		return
	}

	if err := h.trackService.DeleteAccount(r.Context(), sessionUserID); err != nil {
		logger.Error("[DeleteAccount] failed",
			logger.Int64("userId", sessionUserID),
			logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Account deletion failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
