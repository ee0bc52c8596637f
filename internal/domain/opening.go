package domain

import "time"

type OpeningStatus string

const (
	OpeningStatusPending  OpeningStatus = "pending"
	OpeningStatusAccepted OpeningStatus = "accepted"
	OpeningStatusRejected OpeningStatus = "rejected"
)

// SellerSummary is the shaped view of the requesting user attached to each
// listed opening request. It deliberately exposes a subset of the user row.
type SellerSummary struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// ShopOpeningRequest is a user's application to open a shop. Once an admin
// accepts or rejects it the status is terminal and the admin message is
// frozen with it.
type ShopOpeningRequest struct {
	ID           int64         `json:"id"`
	UserID       int64         `json:"user_id"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	Address      string        `json:"address"`
	Phone        string        `json:"phone"`
	Status       OpeningStatus `json:"status"`
	AdminMessage string        `json:"admin_message,omitempty"`
	Seller       *SellerSummary `json:"seller,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}
