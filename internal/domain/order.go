package domain

import "time"

type OrderStatus string

const (
	OrderStatusNew       OrderStatus = "new"
	OrderStatusAccepted  OrderStatus = "accepted"
	OrderStatusShipping  OrderStatus = "shipping"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusDisputed  OrderStatus = "disputed"
)

// KnownOrderStatus reports whether s names a status the listing filter
// vocabulary accepts.
func KnownOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusNew, OrderStatusAccepted, OrderStatusShipping,
		OrderStatusCompleted, OrderStatusCancelled, OrderStatusDisputed:
		return true
	}
	return false
}

// ActiveOrderStatuses is the expansion of the `type=active` listing filter.
var ActiveOrderStatuses = []OrderStatus{
	OrderStatusNew,
	OrderStatusAccepted,
	OrderStatusShipping,
}

// OrderLine is an immutable snapshot of one purchased item, captured at
// placement time. Later changes to the live item never alter it.
type OrderLine struct {
	ID              int64  `json:"id"`
	OrderID         int64  `json:"order_id"`
	ItemID          int64  `json:"item_id"`
	ItemName        string `json:"item_name"`
	ItemDescription string `json:"item_description"`
	ItemPrice       int64  `json:"item_price"`
	Quantity        int    `json:"quantity"`
	Note            string `json:"note"`
}

type Rating struct {
	Rate    int    `json:"rate"`
	Comment string `json:"comment"`
}

type Order struct {
	ID          int64       `json:"id"`
	UserID      int64       `json:"user_id"`
	ShopID      int64       `json:"shop_id"`
	ShopName    string      `json:"shop_name,omitempty"`
	Note        string      `json:"note"`
	ShipAddress string      `json:"ship_address"`
	Status      OrderStatus `json:"status"`
	Rating      *Rating     `json:"rating,omitempty"`
	Lines       []OrderLine `json:"order_lines"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// RequestedItem is one entry of a placement request. A zero or negative
// quantity means "use the configured default".
type RequestedItem struct {
	ItemID   int64  `json:"item_id"`
	Quantity int    `json:"quantity"`
	Note     string `json:"note"`
}

// Ticket is a buyer-opened support ticket attached to an order.
type Ticket struct {
	ID        int64     `json:"id"`
	OrderID   int64     `json:"order_id"`
	UserNote  string    `json:"user_note"`
	CreatedAt time.Time `json:"created_at"`
}
