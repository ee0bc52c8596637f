package domain

import "time"

type ShopStatus string

const (
	ShopStatusPublished   ShopStatus = "published"
	ShopStatusUnpublished ShopStatus = "unpublished"
)

type ItemStatus string

const (
	ItemStatusForSell    ItemStatus = "for_sell"
	ItemStatusNotForSale ItemStatus = "not_for_sale"
)

// AssetFile describes an uploaded image and the stored versions derived
// from it (thumbnails, resized copies). Versions are what the cleanup
// worker deletes when the shop goes away.
type AssetFile struct {
	Versions []AssetVersion `json:"versions"`
}

type AssetVersion struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type ShipPlace struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Shop struct {
	ID          int64       `json:"id"`
	OwnerID     int64       `json:"owner_id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Address     string      `json:"address"`
	Avatar      string      `json:"avatar,omitempty"`
	Cover       string      `json:"cover,omitempty"`
	AvatarFile  *AssetFile  `json:"-"`
	CoverFile   *AssetFile  `json:"-"`
	Banned      bool        `json:"banned"`
	Opening     bool        `json:"opening"`
	Status      ShopStatus  `json:"status"`
	ShipPlaces  []ShipPlace `json:"ship_places,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type Item struct {
	ID          int64      `json:"id"`
	ShopID      int64      `json:"shop_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Price       int64      `json:"price"`
	Status      ItemStatus `json:"status"`
}
