package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sjbaraho/app-places-backend/middleware"
	"github.com/sjbaraho/app-places-backend/services"
	"github.com/sjbaraho/app-places-backend/utils/errors"
)

type AuthHandler struct {
	userService *services.UserService
	assets      services.AssetStore
}

func NewAuthHandler(userService *services.UserService, assets services.AssetStore) *AuthHandler {
	return &AuthHandler{userService: userService, assets: assets}
}

// Signup expects a multipart form with name, email, password and an image.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := parseImageForm(w, r); err != nil {
		middleware.WriteError(w, err)
		return
	}
	name := r.FormValue("name")
	email := r.FormValue("email")
	password := r.FormValue("password")
	if !notEmpty(name) || !validEmail(email) || len(password) < minPasswordLength {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	image, err := saveImage(r.Context(), r, h.assets)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	result, err := h.userService.Signup(r.Context(), services.SignupRequest{
		Name:     name,
		Email:    email,
		Password: password,
		Image:    image,
	})
	if err != nil {
		discardImage(r.Context(), h.assets, image)
		middleware.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.Wrap(err, errors.ErrInvalidInput))
		return
	}

	result, err := h.userService.Login(r.Context(), input.Email, input.Password)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
