package handlers

import (
	"net/http"

	"github.com/sjbaraho/app-places-backend/middleware"
	"github.com/sjbaraho/app-places-backend/models"
	"github.com/sjbaraho/app-places-backend/services"
)

type UserHandler struct {
	userService *services.UserService
}

type UsersResponse struct {
	Users []models.User `json:"users"`
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListUsers(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}

	writeJSON(w, http.StatusOK, UsersResponse{Users: users})
}
