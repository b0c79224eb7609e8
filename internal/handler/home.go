package handler

import (
	"log/slog"
	"net/http"

	"github.com/DukeRupert/rackmate/internal/templ/pages/home"
	"github.com/DukeRupert/rackmate/internal/templ/shared"
)

// HomeHandler serves the landing page.
type HomeHandler struct {
	logger *slog.Logger
}

// NewHomeHandler creates a new HomeHandler.
func NewHomeHandler(logger *slog.Logger) *HomeHandler {
	return &HomeHandler{logger: logger}
}

// RegisterRoutes registers the landing page and the catch-all 404.
func (h *HomeHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.ShowHome)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		NotFoundResponse(w, r, h.logger)
	})
}

// ShowHome renders the landing page. ?registered=1 adds a confirmation flash.
func (h *HomeHandler) ShowHome(w http.ResponseWriter, r *http.Request) {
	data := home.PageData{SignUpPath: "/signup"}
	if r.URL.Query().Get("registered") == "1" {
		data.Flash = &shared.Flash{
			Type:    shared.FlashSuccess,
			Message: "Your account has been created. You can sign in now.",
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := home.Page(data).Render(r.Context(), w); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render home page", "error", err)
	}
}
