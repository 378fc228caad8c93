package activity

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/milletflow/milletflow/internal/platform/httpx"
	"github.com/milletflow/milletflow/internal/shared"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.Recent)
	r.Get("/location/{name}", h.RecentForLocation)
}

func (h *Handler) Recent(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.Recent(r.Context())
	if err != nil {
		h.logger.Error("recent activity failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"activities": entries})
}

func (h *Handler) RecentForLocation(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		httpx.RespondError(w, shared.Invalid("location name is required"))
		return
	}

	entries, err := h.service.RecentForLocation(r.Context(), name)
	if err != nil {
		h.logger.Error("location activity failed", "error", err, "location", name)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"activities": entries})
}
