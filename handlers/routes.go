package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sjbaraho/app-places-backend/middleware"
)

type RouterConfig struct {
	Auth           *AuthHandler
	Users          *UserHandler
	Places         *PlaceHandler
	Tokens         middleware.TokenVerifier
	AllowedOrigins []string
	// UploadDir is served under /uploads/images/ when set.
	UploadDir string
}

func NewRouter(cfg RouterConfig) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.ErrorMiddleware())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	r.NotFoundHandler = middleware.CORSMiddleware(cfg.AllowedOrigins)(middleware.NotFoundHandler())

	api := r.PathPrefix("/api").Subrouter()

	// User routes
	userRouter := api.PathPrefix("/users").Subrouter()
	userRouter.HandleFunc("", cfg.Users.ListUsers).Methods("GET", "OPTIONS")
	userRouter.HandleFunc("/signup", cfg.Auth.Signup).Methods("POST", "OPTIONS")
	userRouter.HandleFunc("/login", cfg.Auth.Login).Methods("POST", "OPTIONS")

	// Place routes; the literal paths go before {pid}
	placeRouter := api.PathPrefix("/places").Subrouter()
	placeRouter.HandleFunc("/nearby", cfg.Places.GetNearbyPlaces).Methods("GET", "OPTIONS")
	placeRouter.HandleFunc("/user/{uid}", cfg.Places.GetPlacesByUser).Methods("GET", "OPTIONS")
	placeRouter.HandleFunc("/{pid}", cfg.Places.GetPlace).Methods("GET", "OPTIONS")

	authed := api.PathPrefix("/places").Subrouter()
	authed.Use(middleware.JWTMiddleware(cfg.Tokens))
	authed.HandleFunc("", cfg.Places.CreatePlace).Methods("POST", "OPTIONS")
	authed.HandleFunc("/{pid}", cfg.Places.UpdatePlace).Methods("PATCH", "OPTIONS")
	authed.HandleFunc("/{pid}", cfg.Places.DeletePlace).Methods("DELETE", "OPTIONS")

	if cfg.UploadDir != "" {
		r.PathPrefix("/uploads/images/").Handler(
			http.StripPrefix("/uploads/images/", http.FileServer(http.Dir(cfg.UploadDir))),
		).Methods("GET")
	}

	return r
}
