package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sjbaraho/app-places-backend/middleware"
	"github.com/sjbaraho/app-places-backend/models"
	"github.com/sjbaraho/app-places-backend/services"
	"github.com/sjbaraho/app-places-backend/utils/errors"
)

type PlaceHandler struct {
	placeService *services.PlaceService
	assets       services.AssetStore
}

type PlaceResponse struct {
	Place *models.Place `json:"place"`
}

type PlacesResponse struct {
	Places []models.Place `json:"places"`
}

type NearbyPlacesResponse struct {
	Places []models.Place `json:"places"`
	Count  int            `json:"count"`
	Lat    float64        `json:"lat"`
	Lng    float64        `json:"lng"`
	Radius float64        `json:"radius"`
}

func NewPlaceHandler(placeService *services.PlaceService, assets services.AssetStore) *PlaceHandler {
	return &PlaceHandler{placeService: placeService, assets: assets}
}

func (h *PlaceHandler) GetPlace(w http.ResponseWriter, r *http.Request) {
	place, err := h.placeService.GetPlaceByID(r.Context(), mux.Vars(r)["pid"])
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, PlaceResponse{Place: place})
}

func (h *PlaceHandler) GetPlacesByUser(w http.ResponseWriter, r *http.Request) {
	places, err := h.placeService.GetPlacesByUserID(r.Context(), mux.Vars(r)["uid"])
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, PlacesResponse{Places: places})
}

func (h *PlaceHandler) GetNearbyPlaces(w http.ResponseWriter, r *http.Request) {
	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}
	lng, err := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}
	var radius float64
	if raw := r.URL.Query().Get("radius"); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			middleware.WriteError(w, errors.ErrInvalidInput)
			return
		}
	}

	places, err := h.placeService.NearbyPlaces(r.Context(), models.Location{Lat: lat, Lng: lng}, radius)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if places == nil {
		places = []models.Place{}
	}

	writeJSON(w, http.StatusOK, NearbyPlacesResponse{
		Places: places,
		Count:  len(places),
		Lat:    lat,
		Lng:    lng,
		Radius: services.NearbyRadius(radius),
	})
}

// CreatePlace expects a multipart form with title, description, address and
// an image. The creator is always the authenticated caller.
func (h *PlaceHandler) CreatePlace(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, errors.ErrUnauthenticated)
		return
	}
	if err := parseImageForm(w, r); err != nil {
		middleware.WriteError(w, err)
		return
	}
	title := r.FormValue("title")
	description := r.FormValue("description")
	address := r.FormValue("address")
	if !validPlaceText(title, description) || !notEmpty(address) {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	image, err := saveImage(r.Context(), r, h.assets)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	place, err := h.placeService.CreatePlace(r.Context(), services.CreatePlaceRequest{
		Title:       title,
		Description: description,
		Address:     address,
		CreatorID:   userID,
		Image:       image,
	})
	if err != nil {
		discardImage(r.Context(), h.assets, image)
		middleware.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, PlaceResponse{Place: place})
}

func (h *PlaceHandler) UpdatePlace(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, errors.ErrUnauthenticated)
		return
	}
	var input struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.Wrap(err, errors.ErrInvalidInput))
		return
	}
	if !validPlaceText(input.Title, input.Description) {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	place, err := h.placeService.UpdatePlace(r.Context(), mux.Vars(r)["pid"], userID, input.Title, input.Description)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, PlaceResponse{Place: place})
}

func (h *PlaceHandler) DeletePlace(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, errors.ErrUnauthenticated)
		return
	}

	if err := h.placeService.DeletePlace(r.Context(), mux.Vars(r)["pid"], userID); err != nil {
		middleware.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Place deleted."})
}
