package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"jobcard-backend/internal/middleware"
	"jobcard-backend/internal/models"
	"jobcard-backend/internal/services"
)

type AuthHandler struct {
	Service *services.UserService
}

func NewAuthHandler(s *services.UserService) *AuthHandler {
	return &AuthHandler{Service: s}
}

// Login handles user authentication
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	resp, err := h.Service.Login(r.Context(), &req)
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			writeError(w, r, err)
			return
		}
		log.Printf("[Auth] Failed login for %s from %s", req.Email, r.RemoteAddr)
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Me returns whoever the request is acting as.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.GetUserIDFromContext(r.Context())
	email, _ := middleware.GetEmailFromContext(r.Context())
	role, _ := middleware.GetRoleFromContext(r.Context())
	writeJSON(w, http.StatusOK, models.UserProfile{
		ID:    id,
		Name:  middleware.Operator(r.Context()),
		Email: email,
		Role:  role,
	})
}
