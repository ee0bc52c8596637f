package shops

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/lnhoang/fumarket/internal/domain"
)

type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// Handler exposes the admin shop surface: listing, inspection and
// destruction. Destruction publishes a shop.deleted event so the cleanup
// worker can remove uploaded images outside the transaction.
type Handler struct {
	repo     *ShopRepository
	producer EventPublisher
	logger   *slog.Logger
}

func NewHandler(repo *ShopRepository, producer EventPublisher, logger *slog.Logger) *Handler {
	return &Handler{repo: repo, producer: producer, logger: logger}
}

func (h *Handler) HandleListShops(w http.ResponseWriter, r *http.Request) {
	shops, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list shops", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"shops": shops})
}

func (h *Handler) HandleGetShop(w http.ResponseWriter, r *http.Request) {
	shopID, ok := h.shopID(w, r)
	if !ok {
		return
	}

	shop, err := h.repo.GetByID(r.Context(), shopID)
	if err != nil {
		h.writeDomainError(w, err, "failed to get shop", "shop_id", shopID)
		return
	}

	h.writeJSON(w, http.StatusOK, shop)
}

func (h *Handler) HandleDeleteShop(w http.ResponseWriter, r *http.Request) {
	shopID, ok := h.shopID(w, r)
	if !ok {
		return
	}

	avatar, cover, err := h.repo.Destroy(r.Context(), shopID)
	if err != nil {
		h.writeDomainError(w, err, "failed to destroy shop", "shop_id", shopID)
		return
	}

	if h.producer != nil && (avatar != nil || cover != nil) {
		event := domain.ShopDeletedEvent{
			EventID:   uuid.New().String(),
			ShopID:    shopID,
			Timestamp: time.Now().UTC(),
		}
		if avatar != nil {
			event.AvatarVersions = avatar.Versions
		}
		if cover != nil {
			event.CoverVersions = cover.Versions
		}
		if err := h.producer.Publish(r.Context(), event.EventID, event); err != nil {
			h.logger.Error("failed to publish shop deleted event", "error", err, "shop_id", shopID)
		}
	}

	h.logger.Info("shop destroyed", "shop_id", shopID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) shopID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	shopID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid shop id")
		return 0, false
	}
	return shopID, true
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
