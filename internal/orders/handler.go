package orders

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
	r.Post("/", h.Place)
	r.Get("/recent", h.Recent)
	r.Get("/warehouse/{id}", h.ListByWarehouse)
	r.Get("/distributor/{id}", h.ListByDistributor)
	r.Get("/{id}", h.Show)
	r.Get("/{id}/history", h.History)
	r.Post("/{id}/dispatch", h.Dispatch)
	r.Post("/{id}/confirm-delivery", h.ConfirmDelivery)
	r.Put("/{id}/status", h.SetStatus)
}

func (h *Handler) Place(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.Invalid("malformed request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	id, err := h.service.PlaceOrder(r.Context(), req)
	if err != nil {
		h.logger.Error("place order failed", "error", err, "distributor_id", req.DistributorID)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"order_id": id, "status": StatusPending})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	order, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	entries, err := h.service.History(r.Context(), id)
	if err != nil {
		h.logger.Error("order history failed", "error", err, "order_id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"history": entries})
}

func (h *Handler) Dispatch(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	if err := h.service.Dispatch(r.Context(), id); err != nil {
		h.logger.Error("dispatch failed", "error", err, "order_id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"order_id": id, "status": StatusShipped})
}

func (h *Handler) ConfirmDelivery(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	if err := h.service.ConfirmDelivery(r.Context(), id); err != nil {
		h.logger.Error("confirm delivery failed", "error", err, "order_id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"order_id": id, "status": StatusDelivered})
}

func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	var req SetStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.Invalid("malformed request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	if err := h.service.SetOrderStatus(r.Context(), id, req.Status); err != nil {
		h.logger.Error("set order status failed", "error", err, "order_id", id, "status", req.Status)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"order_id": id, "status": req.Status})
}

func (h *Handler) ListByWarehouse(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.Invalid("invalid warehouse ID"))
		return
	}

	filters := ListFilters{}
	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		status := Status(statusStr)
		filters.Status = &status
	}

	list, summary, err := h.service.WarehouseOrders(r.Context(), id, filters)
	if err != nil {
		h.logger.Error("warehouse orders failed", "error", err, "warehouse_id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"orders": list, "summary": summary})
}

func (h *Handler) ListByDistributor(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.Invalid("invalid distributor ID"))
		return
	}

	list, err := h.service.DistributorOrders(r.Context(), id)
	if err != nil {
		h.logger.Error("distributor orders failed", "error", err, "distributor_id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"orders": list})
}

func (h *Handler) Recent(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.RecentOrders(r.Context())
	if err != nil {
		h.logger.Error("recent orders failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"orders": list})
}

func orderID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, shared.Invalid("invalid order ID")
	}
	return id, nil
}
