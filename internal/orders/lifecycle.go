package orders

import "github.com/lnhoang/fumarket/internal/domain"

// Event is a lifecycle action requested against an order.
type Event string

const (
	EventAccept   Event = "accept"
	EventShip     Event = "ship"
	EventComplete Event = "complete"
	EventCancel   Event = "cancel"
	EventDispute  Event = "dispute"
)

// transitions is the single source of truth for legal status changes.
// Handlers and repositories consult it instead of checking statuses inline.
var transitions = map[domain.OrderStatus]map[Event]domain.OrderStatus{
	domain.OrderStatusNew: {
		EventAccept: domain.OrderStatusAccepted,
		EventCancel: domain.OrderStatusCancelled,
	},
	domain.OrderStatusAccepted: {
		EventShip:   domain.OrderStatusShipping,
		EventCancel: domain.OrderStatusCancelled,
	},
	domain.OrderStatusShipping: {
		EventComplete: domain.OrderStatusCompleted,
		EventDispute:  domain.OrderStatusDisputed,
		EventCancel:   domain.OrderStatusCancelled,
	},
}

// Next returns the status an order in state from moves to on event, and
// whether that transition is legal at all.
func Next(from domain.OrderStatus, event Event) (domain.OrderStatus, bool) {
	to, ok := transitions[from][event]
	return to, ok
}

// CanTransition reports whether event is legal for an order in state from.
func CanTransition(from domain.OrderStatus, event Event) bool {
	_, ok := Next(from, event)
	return ok
}

// CanUpdate reports whether the buyer may still edit the order's note and
// ship address. Only unaccepted orders are editable.
func CanUpdate(status domain.OrderStatus) bool {
	return status == domain.OrderStatusNew
}

// CanRate reports whether the order has reached a state where rating is
// meaningful. Ratings are only accepted once the order is terminal.
func CanRate(status domain.OrderStatus) bool {
	switch status {
	case domain.OrderStatusCompleted, domain.OrderStatusCancelled, domain.OrderStatusDisputed:
		return true
	}
	return false
}
