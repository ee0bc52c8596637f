package domain

import "time"

// OrderPlacedEvent is published after a placement transaction commits.
type OrderPlacedEvent struct {
	EventID   string      `json:"event_id"`
	OrderID   int64       `json:"order_id"`
	ShopID    int64       `json:"shop_id"`
	UserID    int64       `json:"user_id"`
	Lines     []OrderLine `json:"order_lines"`
	Timestamp time.Time   `json:"timestamp"`
}

// ShopDeletedEvent carries the uploaded asset versions of a destroyed shop
// so the cleanup worker can delete them best effort, outside the destroy
// transaction.
type ShopDeletedEvent struct {
	EventID        string         `json:"event_id"`
	ShopID         int64          `json:"shop_id"`
	AvatarVersions []AssetVersion `json:"avatar_versions,omitempty"`
	CoverVersions  []AssetVersion `json:"cover_versions,omitempty"`
	Timestamp      time.Time      `json:"timestamp"`
}

// OpeningDecidedEvent is published when an admin accepts or rejects a shop
// opening request.
type OpeningDecidedEvent struct {
	EventID   string        `json:"event_id"`
	RequestID int64         `json:"request_id"`
	UserID    int64         `json:"user_id"`
	Status    OpeningStatus `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
}
