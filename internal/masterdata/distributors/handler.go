package distributors

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/milletflow/milletflow/internal/platform/httpx"
	"github.com/milletflow/milletflow/internal/shared"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Show)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if warehouseIDStr := r.URL.Query().Get("warehouse_id"); warehouseIDStr != "" {
		warehouseID, err := strconv.ParseInt(warehouseIDStr, 10, 64)
		if err != nil {
			httpx.RespondError(w, shared.Invalid("invalid warehouse ID"))
			return
		}
		list, err := h.service.ListByWarehouse(r.Context(), warehouseID)
		if err != nil {
			h.logger.Error("list distributors failed", "error", err)
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"distributors": list})
		return
	}

	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list distributors failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"distributors": list})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.Invalid("invalid distributor ID"))
		return
	}

	distributor, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, distributor)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateDistributorRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.Invalid("malformed request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	created, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logger.Error("create distributor failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}
