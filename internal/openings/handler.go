package openings

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/lnhoang/fumarket/internal/domain"
	"github.com/lnhoang/fumarket/internal/listing"
)

type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// Handler exposes the admin review surface for shop opening requests.
type Handler struct {
	repo     *OpeningRepository
	producer EventPublisher
	logger   *slog.Logger
}

func NewHandler(repo *OpeningRepository, producer EventPublisher, logger *slog.Logger) *Handler {
	return &Handler{repo: repo, producer: producer, logger: logger}
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := listing.ParsePage(query.Get("size"), query.Get("page"))
	showAll := query.Get("showAll") != ""

	requests, err := h.repo.List(r.Context(), showAll, page.Limit, page.Offset)
	if err != nil {
		h.logger.Error("failed to list shop opening requests", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"shop_opening_requests": requests})
}

type decisionRequest struct {
	Message string `json:"message"`
}

func (h *Handler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.repo.Accept)
}

func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.repo.Reject)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, requestID int64, adminMessage string) (*domain.ShopOpeningRequest, error)) {
	requestID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "missing id of shop opening request")
		return
	}

	var body decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := apply(r.Context(), requestID, body.Message)
	if err != nil {
		h.writeDomainError(w, err, "failed to decide shop opening request", "request_id", requestID)
		return
	}

	if h.producer != nil {
		event := domain.OpeningDecidedEvent{
			EventID:   uuid.New().String(),
			RequestID: req.ID,
			UserID:    req.UserID,
			Status:    req.Status,
			Timestamp: time.Now().UTC(),
		}
		if err := h.producer.Publish(r.Context(), event.EventID, event); err != nil {
			h.logger.Error("failed to publish opening decided event", "error", err, "request_id", req.ID)
		}
	}

	h.logger.Info("shop opening request decided", "request_id", req.ID, "status", req.Status)
	h.writeJSON(w, http.StatusOK, req)
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
