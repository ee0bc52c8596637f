package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/lnhoang/fumarket/internal/domain"
)

type AssetDeleter interface {
	DeleteVersions(ctx context.Context, versions []domain.AssetVersion) error
}

// CleanupHandler consumes shop.deleted events and removes the destroyed
// shop's uploaded images. Cleanup is best effort: failures are logged and
// the event is still committed, never replayed against the destroy.
type CleanupHandler struct {
	assets AssetDeleter
	logger *slog.Logger
}

func NewCleanupHandler(assets AssetDeleter, logger *slog.Logger) *CleanupHandler {
	return &CleanupHandler{assets: assets, logger: logger}
}

func (h *CleanupHandler) Handle(ctx context.Context, payload []byte) error {
	var event domain.ShopDeletedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal shop deleted event: %w", err)
	}

	h.logger.Info("cleaning up shop assets", "shop_id", event.ShopID,
		"avatar_versions", len(event.AvatarVersions), "cover_versions", len(event.CoverVersions))

	if len(event.AvatarVersions) > 0 {
		if err := h.assets.DeleteVersions(ctx, event.AvatarVersions); err != nil {
			h.logger.Error("failed to delete avatar versions", "error", err, "shop_id", event.ShopID)
		}
	}

	if len(event.CoverVersions) > 0 {
		if err := h.assets.DeleteVersions(ctx, event.CoverVersions); err != nil {
			h.logger.Error("failed to delete cover versions", "error", err, "shop_id", event.ShopID)
		}
	}

	return nil
}
