package shops

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/lib/pq"

	"github.com/lnhoang/fumarket/internal/domain"
)

type ShopRepository struct {
	db *sql.DB
}

func NewShopRepository(db *sql.DB) *ShopRepository {
	return &ShopRepository{db: db}
}

// FindOrderable resolves a shop that may receive orders. Banned shops are
// filtered out here, so to the placement engine they look exactly like
// missing ones.
func (r *ShopRepository) FindOrderable(ctx context.Context, shopID int64) (*domain.Shop, error) {
	shop, err := r.scanShop(ctx, `
		SELECT id, owner_id, name, description, address, avatar, cover,
		       avatar_file, cover_file, banned, opening, status, created_at, updated_at
		FROM shops
		WHERE id = $1 AND banned = FALSE
	`, shopID)
	if err != nil {
		return nil, err
	}
	return shop, nil
}

// GetByID returns one shop with its ship places.
func (r *ShopRepository) GetByID(ctx context.Context, shopID int64) (*domain.Shop, error) {
	shop, err := r.scanShop(ctx, `
		SELECT id, owner_id, name, description, address, avatar, cover,
		       avatar_file, cover_file, banned, opening, status, created_at, updated_at
		FROM shops
		WHERE id = $1
	`, shopID)
	if err != nil {
		return nil, err
	}

	places, err := r.loadShipPlaces(ctx, []int64{shop.ID})
	if err != nil {
		return nil, err
	}
	shop.ShipPlaces = places[shop.ID]

	return shop, nil
}

// List returns every shop with its ship places attached.
func (r *ShopRepository) List(ctx context.Context) ([]domain.Shop, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_id, name, description, address, avatar, cover,
		       avatar_file, cover_file, banned, opening, status, created_at, updated_at
		FROM shops
		ORDER BY id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	shopMap := make(map[int64]*domain.Shop)
	var shopIDs []int64

	for rows.Next() {
		shop, err := scanShopRow(rows)
		if err != nil {
			return nil, err
		}
		shopMap[shop.ID] = shop
		shopIDs = append(shopIDs, shop.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(shopIDs) == 0 {
		return []domain.Shop{}, nil
	}

	places, err := r.loadShipPlaces(ctx, shopIDs)
	if err != nil {
		return nil, err
	}
	for shopID, sp := range places {
		shopMap[shopID].ShipPlaces = sp
	}

	shops := make([]domain.Shop, 0, len(shopIDs))
	for _, id := range shopIDs {
		shops = append(shops, *shopMap[id])
	}

	return shops, nil
}

// Destroy removes the shop row and its ship-place links and returns the
// asset files that were attached, so the caller can schedule their
// deletion. Orders keep their shop reference; they are not cascaded.
func (r *ShopRepository) Destroy(ctx context.Context, shopID int64) (avatar, cover *domain.AssetFile, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var avatarRaw, coverRaw []byte
	err = tx.QueryRowContext(ctx, `
		SELECT avatar_file, cover_file FROM shops WHERE id = $1 FOR UPDATE
	`, shopID).Scan(&avatarRaw, &coverRaw)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, domain.NotFound("shop does not exist")
		}
		return nil, nil, err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM shop_ship_places WHERE shop_id = $1`, shopID); err != nil {
		return nil, nil, err
	}
	// Order lines carry item snapshots, so the items can go with the shop.
	if _, err = tx.ExecContext(ctx, `DELETE FROM items WHERE shop_id = $1`, shopID); err != nil {
		return nil, nil, err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM shops WHERE id = $1`, shopID); err != nil {
		return nil, nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, nil, err
	}

	return decodeAssetFile(avatarRaw), decodeAssetFile(coverRaw), nil
}

func (r *ShopRepository) scanShop(ctx context.Context, query string, shopID int64) (*domain.Shop, error) {
	shop, err := scanShopRow(r.db.QueryRowContext(ctx, query, shopID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NotFound("shop does not exist")
		}
		return nil, err
	}
	return shop, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShopRow(row rowScanner) (*domain.Shop, error) {
	shop := &domain.Shop{}
	var avatar, cover sql.NullString
	var avatarRaw, coverRaw []byte

	err := row.Scan(
		&shop.ID, &shop.OwnerID, &shop.Name, &shop.Description, &shop.Address,
		&avatar, &cover, &avatarRaw, &coverRaw,
		&shop.Banned, &shop.Opening, &shop.Status, &shop.CreatedAt, &shop.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	shop.Avatar = avatar.String
	shop.Cover = cover.String
	shop.AvatarFile = decodeAssetFile(avatarRaw)
	shop.CoverFile = decodeAssetFile(coverRaw)

	return shop, nil
}

func decodeAssetFile(raw []byte) *domain.AssetFile {
	if len(raw) == 0 {
		return nil
	}
	var file domain.AssetFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil
	}
	return &file
}

func (r *ShopRepository) loadShipPlaces(ctx context.Context, shopIDs []int64) (map[int64][]domain.ShipPlace, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ssp.shop_id, sp.id, sp.name
		FROM shop_ship_places ssp
		JOIN ship_places sp ON sp.id = ssp.ship_place_id
		WHERE ssp.shop_id = ANY($1)
		ORDER BY sp.id
	`, pq.Array(shopIDs))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	places := make(map[int64][]domain.ShipPlace)
	for rows.Next() {
		var shopID int64
		var place domain.ShipPlace
		if err := rows.Scan(&shopID, &place.ID, &place.Name); err != nil {
			return nil, err
		}
		places[shopID] = append(places[shopID], place)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return places, nil
}
