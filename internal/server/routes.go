package server

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	v1 "github.com/stewardhq/steward/internal/api/v1"
	"github.com/stewardhq/steward/internal/api/ws"
	"github.com/stewardhq/steward/internal/core"
	stewardslack "github.com/stewardhq/steward/internal/messenger/slack"
)

func registerAPIRoutes(api huma.API, pipeline *core.Service) {
	v1.RegisterTaskRoutes(api, pipeline)
	v1.RegisterChangeRoutes(api, pipeline)
}

func registerWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/tasks", hub.ServeTasks)
}

func registerSlackRoutes(r chi.Router, handler *stewardslack.Handler) {
	r.Post("/events", handler.HandleEvents)
	r.Post("/interactions", handler.HandleInteractions)
}
