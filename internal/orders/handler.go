package orders

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/lnhoang/fumarket/internal/domain"
)

// Handler exposes the buyer-facing order endpoints. Authentication is a
// collaborator's job: the principal arrives as the X-User-ID header set by
// the edge.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

type placeOrderRequest struct {
	Note        string                 `json:"note"`
	ShipAddress string                 `json:"ship_address"`
	Items       []domain.RequestedItem `json:"items"`
}

func (h *Handler) HandlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.principal(w, r)
	if !ok {
		return
	}

	shopID, err := strconv.ParseInt(r.PathValue("shopId"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid shop id")
		return
	}

	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.svc.PlaceOrder(r.Context(), shopID, userID, PlaceOrderRequest{
		Note:        req.Note,
		ShipAddress: req.ShipAddress,
		Items:       req.Items,
	})
	if err != nil {
		h.writeDomainError(w, err, "failed to place order", "shop_id", shopID, "user_id", userID)
		return
	}

	h.logger.Info("order placed", "order_id", order.ID, "shop_id", shopID, "user_id", userID)
	h.writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) HandleGetOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.principal(w, r)
	if !ok {
		return
	}
	orderID, ok := h.orderID(w, r)
	if !ok {
		return
	}

	order, err := h.svc.GetOrder(r.Context(), orderID, userID)
	if err != nil {
		h.writeDomainError(w, err, "failed to get order", "order_id", orderID)
		return
	}

	h.writeJSON(w, http.StatusOK, order)
}

type updateOrderRequest struct {
	Note        *string `json:"note"`
	ShipAddress *string `json:"ship_address"`
}

func (h *Handler) HandleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.principal(w, r)
	if !ok {
		return
	}
	orderID, ok := h.orderID(w, r)
	if !ok {
		return
	}

	var req updateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.svc.UpdateOrder(r.Context(), orderID, userID, UpdateParams{
		Note:        req.Note,
		ShipAddress: req.ShipAddress,
	})
	if err != nil {
		h.writeDomainError(w, err, "failed to update order", "order_id", orderID)
		return
	}

	h.logger.Info("order updated", "order_id", order.ID)
	h.writeJSON(w, http.StatusOK, order)
}

func (h *Handler) HandleCancelOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.principal(w, r)
	if !ok {
		return
	}
	orderID, ok := h.orderID(w, r)
	if !ok {
		return
	}

	order, err := h.svc.CancelOrder(r.Context(), orderID, userID)
	if err != nil {
		h.writeDomainError(w, err, "failed to cancel order", "order_id", orderID)
		return
	}

	h.logger.Info("order cancelled", "order_id", order.ID)
	h.writeJSON(w, http.StatusOK, order)
}

type rateOrderRequest struct {
	Rate    int    `json:"rate"`
	Comment string `json:"comment"`
}

func (h *Handler) HandleRateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.principal(w, r)
	if !ok {
		return
	}
	orderID, ok := h.orderID(w, r)
	if !ok {
		return
	}

	var req rateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.svc.RateOrder(r.Context(), orderID, userID, domain.Rating{Rate: req.Rate, Comment: req.Comment})
	if err != nil {
		h.writeDomainError(w, err, "failed to rate order", "order_id", orderID)
		return
	}

	h.logger.Info("order rated", "order_id", order.ID, "rate", req.Rate)
	h.writeJSON(w, http.StatusOK, order)
}

type openTicketRequest struct {
	UserNote string `json:"user_note"`
}

func (h *Handler) HandleOpenTicket(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.principal(w, r)
	if !ok {
		return
	}
	orderID, ok := h.orderID(w, r)
	if !ok {
		return
	}

	var req openTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ticket, err := h.svc.OpenTicket(r.Context(), orderID, userID, req.UserNote)
	if err != nil {
		h.writeDomainError(w, err, "failed to open ticket", "order_id", orderID)
		return
	}

	h.logger.Info("ticket opened", "ticket_id", ticket.ID, "order_id", orderID)
	h.writeJSON(w, http.StatusCreated, ticket)
}

func (h *Handler) HandleListOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.principal(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	filter, err := ParseListFilter(query.Get("type"), query.Get("status"), query.Get("size"), query.Get("page"))
	if err != nil {
		h.writeDomainError(w, err, "invalid listing query")
		return
	}

	orders, err := h.svc.ListOrders(r.Context(), userID, filter)
	if err != nil {
		h.writeDomainError(w, err, "failed to list orders", "user_id", userID)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (h *Handler) principal(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, err := strconv.ParseInt(r.Header.Get("X-User-ID"), 10, 64)
	if err != nil || userID <= 0 {
		h.writeError(w, http.StatusBadRequest, "missing user identity")
		return 0, false
	}
	return userID, true
}

func (h *Handler) orderID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	orderID, err := strconv.ParseInt(r.PathValue("orderId"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid order id")
		return 0, false
	}
	return orderID, true
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error, msg string, args ...any) {
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		h.writeError(w, http.StatusNotFound, domain.MessageOf(err))
	case domain.KindForbidden:
		h.writeError(w, http.StatusForbidden, domain.MessageOf(err))
	case domain.KindValidation:
		h.writeError(w, http.StatusBadRequest, domain.MessageOf(err))
	default:
		h.logger.Error(msg, append([]any{"error", err}, args...)...)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
