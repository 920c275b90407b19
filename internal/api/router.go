// Package api exposes folder operations over HTTP.
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// NewRouter configures all routes
func NewRouter(folders FolderService, editability EditabilityChecker, logger zerolog.Logger) *chi.Mux {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)

	folderHandler := NewFolderHandler(folders, editability)

	router.Get("/health", Health)

	router.Route("/v2/folder/{namespace}/{name}", func(r chi.Router) {
		r.Post("/create", folderHandler.Create)
		r.Post("/create/*", folderHandler.Create)
		r.Post("/delete/*", folderHandler.Delete)
		r.Get("/editable", folderHandler.Editable)
	})

	return router
}
