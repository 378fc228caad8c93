package sales

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
	r.Post("/", h.RecordSale)
	r.Get("/summary", h.Summary)
	r.Get("/distributor/{id}", h.ListByDistributor)
	r.Post("/purchase", h.RecordPurchase)
	r.Get("/purchase/warehouse/{id}", h.RecentPurchases)
}

func (h *Handler) RecordSale(w http.ResponseWriter, r *http.Request) {
	var req RecordSaleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.Invalid("malformed request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	id, err := h.service.RecordSale(r.Context(), req)
	if err != nil {
		h.logger.Error("record sale failed", "error", err, "distributor_id", req.DistributorID)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"sale_id": id})
}

func (h *Handler) RecordPurchase(w http.ResponseWriter, r *http.Request) {
	var req RecordPurchaseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.Invalid("malformed request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	id, err := h.service.RecordPurchase(r.Context(), req)
	if err != nil {
		h.logger.Error("record purchase failed", "error", err, "warehouse_id", req.WarehouseID)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"purchase_id": id})
}

func (h *Handler) ListByDistributor(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.Invalid("invalid distributor ID"))
		return
	}

	list, err := h.service.DistributorSales(r.Context(), id)
	if err != nil {
		h.logger.Error("distributor sales failed", "error", err, "distributor_id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"sales": list})
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.Summary(r.Context())
	if err != nil {
		h.logger.Error("sales summary failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"summary": rows})
}

func (h *Handler) RecentPurchases(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.Invalid("invalid warehouse ID"))
		return
	}

	list, err := h.service.RecentPurchases(r.Context(), id)
	if err != nil {
		h.logger.Error("recent purchases failed", "error", err, "warehouse_id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"purchases": list})
}
