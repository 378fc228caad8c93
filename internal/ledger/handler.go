package ledger

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
	r.Post("/add", h.AddStock)
	r.Get("/warehouse/{id}", h.WarehouseInventory)
	r.Get("/distributor/{id}", h.DistributorStock)
}

func (h *Handler) AddStock(w http.ResponseWriter, r *http.Request) {
	var req AddStockRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.Invalid("malformed request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	if err := h.service.AddStock(r.Context(), req); err != nil {
		h.logger.Error("add stock failed", "error", err, "warehouse_id", req.WarehouseID, "sku", req.SKU)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "stock added"})
}

func (h *Handler) WarehouseInventory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.Invalid("invalid warehouse ID"))
		return
	}

	inventory, err := h.service.WarehouseInventory(r.Context(), id)
	if err != nil {
		h.logger.Error("warehouse inventory failed", "error", err, "warehouse_id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"inventory": inventory})
}

func (h *Handler) DistributorStock(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.Invalid("invalid distributor ID"))
		return
	}

	stock, err := h.service.DistributorStock(r.Context(), id)
	if err != nil {
		h.logger.Error("distributor stock failed", "error", err, "distributor_id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"stock": stock})
}
