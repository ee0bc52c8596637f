package orders

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/lib/pq"

	"github.com/lnhoang/fumarket/internal/domain"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Place runs the whole placement as one transaction: eligible-item lookup,
// order insert, order-line inserts. Any failure rolls everything back; a
// partial order is never observable. The item-status filter is evaluated
// inside the transaction, not read earlier and trusted.
func (r *OrderRepository) Place(ctx context.Context, shopID, userID int64, note, shipAddress string, requested []domain.RequestedItem, strict bool) (*domain.Order, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	itemIDs := make([]int64, 0, len(requested))
	byItem := make(map[int64]domain.RequestedItem, len(requested))
	for _, req := range requested {
		itemIDs = append(itemIDs, req.ItemID)
		byItem[req.ItemID] = req
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT id, name, description, price
		FROM items
		WHERE shop_id = $1 AND status = $2 AND id = ANY($3)
	`, shopID, domain.ItemStatusForSell, pq.Array(itemIDs))
	if err != nil {
		return nil, err
	}

	var items []domain.Item
	for rows.Next() {
		var item domain.Item
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.Price); err != nil {
			_ = rows.Close()
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	if len(items) == 0 {
		return nil, domain.Invalid("no sellable items matched")
	}
	// byItem holds one entry per distinct id, so duplicates in the request
	// don't count as shortfall.
	if strict && len(items) < len(byItem) {
		return nil, domain.Invalid("some requested items are not for sale")
	}

	order := &domain.Order{
		UserID:      userID,
		ShopID:      shopID,
		Note:        note,
		ShipAddress: shipAddress,
		Status:      domain.OrderStatusNew,
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (user_id, shop_id, note, ship_address, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, order.UserID, order.ShopID, order.Note, order.ShipAddress, order.Status).
		Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, err
	}

	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	for _, item := range items {
		req := byItem[item.ID]
		if req.Quantity <= 0 {
			return nil, domain.Invalid(fmt.Sprintf("invalid quantity for item %d", item.ID))
		}
		line := domain.OrderLine{
			OrderID:         order.ID,
			ItemID:          item.ID,
			ItemName:        item.Name,
			ItemDescription: item.Description,
			ItemPrice:       item.Price,
			Quantity:        req.Quantity,
			Note:            req.Note,
		}
		err = tx.QueryRowContext(ctx, `
			INSERT INTO order_lines (order_id, item_id, item_name, item_description, item_price, quantity, note)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id
		`, line.OrderID, line.ItemID, line.ItemName, line.ItemDescription, line.ItemPrice, line.Quantity, line.Note).
			Scan(&line.ID)
		if err != nil {
			return nil, err
		}
		order.Lines = append(order.Lines, line)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return order, nil
}

// GetByOwner loads an order scoped to its owning buyer. A mismatch on
// either id fails as not-found so non-owners cannot probe for existence.
func (r *OrderRepository) GetByOwner(ctx context.Context, orderID, userID int64) (*domain.Order, error) {
	order, err := r.getByOwner(ctx, r.db, orderID, userID)
	if err != nil {
		return nil, err
	}

	lines, err := r.loadLines(ctx, []int64{order.ID})
	if err != nil {
		return nil, err
	}
	order.Lines = lines[order.ID]

	return order, nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *OrderRepository) getByOwner(ctx context.Context, q querier, orderID, userID int64) (*domain.Order, error) {
	order := &domain.Order{}
	var shopName sql.NullString
	var rate sql.NullInt64
	var comment sql.NullString

	// LEFT JOIN: orders outlive their shop, the name is best effort.
	err := q.QueryRowContext(ctx, `
		SELECT o.id, o.user_id, o.shop_id, s.name, o.note, o.ship_address, o.status,
		       o.rate, o.rating_comment, o.created_at, o.updated_at
		FROM orders o
		LEFT JOIN shops s ON s.id = o.shop_id
		WHERE o.id = $1 AND o.user_id = $2
	`, orderID, userID).Scan(
		&order.ID, &order.UserID, &order.ShopID, &shopName, &order.Note,
		&order.ShipAddress, &order.Status, &rate, &comment,
		&order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NotFound("order does not exist")
		}
		return nil, err
	}

	order.ShopName = shopName.String
	if rate.Valid {
		order.Rating = &domain.Rating{Rate: int(rate.Int64), Comment: comment.String}
	}

	return order, nil
}

// UpdateParams carries the buyer-editable fields. A nil field is left
// untouched.
type UpdateParams struct {
	Note        *string
	ShipAddress *string
}

// Update edits note and ship address, legal only while the order is new.
func (r *OrderRepository) Update(ctx context.Context, orderID, userID int64, params UpdateParams) (*domain.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	status, err := r.lockStatus(ctx, tx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if !CanUpdate(status) {
		return nil, domain.Forbidden("cannot update accepted order")
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE orders
		SET note = COALESCE($1, note), ship_address = COALESCE($2, ship_address), updated_at = NOW()
		WHERE id = $3 AND user_id = $4
	`, params.Note, params.ShipAddress, orderID, userID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return r.GetByOwner(ctx, orderID, userID)
}

// Transition applies a lifecycle event under the transition table. The
// status is re-read with a row lock so concurrent transitions serialize.
func (r *OrderRepository) Transition(ctx context.Context, orderID, userID int64, event Event) (*domain.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	status, err := r.lockStatus(ctx, tx, orderID, userID)
	if err != nil {
		return nil, err
	}

	next, ok := Next(status, event)
	if !ok {
		return nil, domain.Forbidden(fmt.Sprintf("cannot %s %s order", event, status))
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
	`, next, orderID, userID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return r.GetByOwner(ctx, orderID, userID)
}

// Rate persists the buyer's rating onto a terminal order.
func (r *OrderRepository) Rate(ctx context.Context, orderID, userID int64, rating domain.Rating) (*domain.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	status, err := r.lockStatus(ctx, tx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if !CanRate(status) {
		return nil, domain.Forbidden(fmt.Sprintf("cannot rate %s order", status))
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE orders SET rate = $1, rating_comment = $2, updated_at = NOW()
		WHERE id = $3 AND user_id = $4
	`, rating.Rate, rating.Comment, orderID, userID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return r.GetByOwner(ctx, orderID, userID)
}

// CreateTicket opens a support ticket on the buyer's order. Any order
// status is acceptable.
func (r *OrderRepository) CreateTicket(ctx context.Context, orderID, userID int64, userNote string) (*domain.Ticket, error) {
	if _, err := r.getByOwner(ctx, r.db, orderID, userID); err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{OrderID: orderID, UserNote: userNote}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO tickets (order_id, user_note)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, orderID, userNote).Scan(&ticket.ID, &ticket.CreatedAt)
	if err != nil {
		return nil, err
	}

	return ticket, nil
}

// ListFilter narrows a buyer's order listing. An empty status set means no
// status filtering.
type ListFilter struct {
	Statuses []domain.OrderStatus
	Limit    int
	Offset   int
}

// List returns the buyer's orders, newest first, each with its lines and
// the shop name.
func (r *OrderRepository) List(ctx context.Context, userID int64, filter ListFilter) ([]domain.Order, error) {
	query := `
		SELECT o.id, o.user_id, o.shop_id, s.name, o.note, o.ship_address, o.status,
		       o.rate, o.rating_comment, o.created_at, o.updated_at
		FROM orders o
		LEFT JOIN shops s ON s.id = o.shop_id
		WHERE o.user_id = $1
	`
	args := []any{userID}

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		query += ` AND o.status = ANY($2) ORDER BY o.id DESC LIMIT $3 OFFSET $4`
		args = append(args, pq.Array(statuses), filter.Limit, filter.Offset)
	} else {
		query += ` ORDER BY o.id DESC LIMIT $2 OFFSET $3`
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	orderMap := make(map[int64]*domain.Order)
	var orderIDs []int64

	for rows.Next() {
		var order domain.Order
		var shopName sql.NullString
		var rate sql.NullInt64
		var comment sql.NullString
		if err := rows.Scan(
			&order.ID, &order.UserID, &order.ShopID, &shopName, &order.Note,
			&order.ShipAddress, &order.Status, &rate, &comment,
			&order.CreatedAt, &order.UpdatedAt,
		); err != nil {
			return nil, err
		}
		order.ShopName = shopName.String
		if rate.Valid {
			order.Rating = &domain.Rating{Rate: int(rate.Int64), Comment: comment.String}
		}
		order.Lines = []domain.OrderLine{}
		orderMap[order.ID] = &order
		orderIDs = append(orderIDs, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(orderIDs) == 0 {
		return []domain.Order{}, nil
	}

	lines, err := r.loadLines(ctx, orderIDs)
	if err != nil {
		return nil, err
	}
	for orderID, ls := range lines {
		orderMap[orderID].Lines = ls
	}

	orders := make([]domain.Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		orders = append(orders, *orderMap[id])
	}

	return orders, nil
}

// loadLines fetches the lines of all given orders in one round trip,
// sorted by the snapshot item id.
func (r *OrderRepository) loadLines(ctx context.Context, orderIDs []int64) (map[int64][]domain.OrderLine, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, item_id, item_name, item_description, item_price, quantity, note
		FROM order_lines
		WHERE order_id = ANY($1)
		ORDER BY item_id
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	lines := make(map[int64][]domain.OrderLine)
	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(
			&line.ID, &line.OrderID, &line.ItemID, &line.ItemName,
			&line.ItemDescription, &line.ItemPrice, &line.Quantity, &line.Note,
		); err != nil {
			return nil, err
		}
		lines[line.OrderID] = append(lines[line.OrderID], line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return lines, nil
}

func (r *OrderRepository) lockStatus(ctx context.Context, tx *sql.Tx, orderID, userID int64) (domain.OrderStatus, error) {
	var status domain.OrderStatus
	err := tx.QueryRowContext(ctx, `
		SELECT status FROM orders WHERE id = $1 AND user_id = $2 FOR UPDATE
	`, orderID, userID).Scan(&status)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", domain.NotFound("order does not exist")
		}
		return "", err
	}
	return status, nil
}
