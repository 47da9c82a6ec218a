package handler

import (
	"log/slog"
	"net/http"
)

// ProfileHandler serves the authenticated profile.
type ProfileHandler struct {
	identity Identity
	logger   *slog.Logger
}

// NewProfileHandler creates a ProfileHandler.
func NewProfileHandler(identity Identity, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{identity: identity, logger: logHandler(logger, "profile")}
}

// GetProfile returns the session's account profile. The bearer token never
// leaves the process; the struct's json tags exclude it.
// GET /api/profile
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.identity.Profile()
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
