package openings

import (
	"context"
	"database/sql"

	"github.com/lnhoang/fumarket/internal/domain"
)

type OpeningRepository struct {
	db *sql.DB
}

func NewOpeningRepository(db *sql.DB) *OpeningRepository {
	return &OpeningRepository{db: db}
}

// Accept moves a pending request to accepted and creates the requester's
// published shop in the same transaction. The shop creation is part of the
// decision, not a separately retriable step.
func (r *OpeningRepository) Accept(ctx context.Context, requestID int64, adminMessage string) (*domain.ShopOpeningRequest, error) {
	return r.decide(ctx, requestID, adminMessage, domain.OpeningStatusAccepted)
}

// Reject moves a pending request to rejected, recording the admin message.
func (r *OpeningRepository) Reject(ctx context.Context, requestID int64, adminMessage string) (*domain.ShopOpeningRequest, error) {
	return r.decide(ctx, requestID, adminMessage, domain.OpeningStatusRejected)
}

func (r *OpeningRepository) decide(ctx context.Context, requestID int64, adminMessage string, to domain.OpeningStatus) (*domain.ShopOpeningRequest, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	req := &domain.ShopOpeningRequest{ID: requestID}
	err = tx.QueryRowContext(ctx, `
		SELECT user_id, name, description, address, phone, status, created_at
		FROM shop_opening_requests
		WHERE id = $1
		FOR UPDATE
	`, requestID).Scan(&req.UserID, &req.Name, &req.Description, &req.Address, &req.Phone, &req.Status, &req.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NotFound("shop opening request not found")
		}
		return nil, err
	}

	if req.Status != domain.OpeningStatusPending {
		return nil, domain.Forbidden("not a pending request")
	}

	err = tx.QueryRowContext(ctx, `
		UPDATE shop_opening_requests
		SET status = $1, admin_message = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING updated_at
	`, to, adminMessage, requestID).Scan(&req.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if to == domain.OpeningStatusAccepted {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO shops (owner_id, name, description, address, status)
			VALUES ($1, $2, $3, $4, $5)
		`, req.UserID, req.Name, req.Description, req.Address, domain.ShopStatusPublished)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	req.Status = to
	req.AdminMessage = adminMessage
	return req, nil
}

// List returns opening requests newest first, each projected with a shaped
// seller summary from the requesting user. By default only pending
// requests are returned.
func (r *OpeningRepository) List(ctx context.Context, showAll bool, limit, offset int) ([]domain.ShopOpeningRequest, error) {
	query := `
		SELECT sor.id, sor.user_id, sor.name, sor.description, sor.address, sor.phone,
		       sor.status, sor.admin_message, sor.created_at, sor.updated_at,
		       u.id, u.full_name, u.email, u.phone
		FROM shop_opening_requests sor
		JOIN users u ON u.id = sor.user_id
	`
	args := []any{}
	if !showAll {
		query += ` WHERE sor.status = $1 ORDER BY sor.id DESC LIMIT $2 OFFSET $3`
		args = append(args, domain.OpeningStatusPending, limit, offset)
	} else {
		query += ` ORDER BY sor.id DESC LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	requests := []domain.ShopOpeningRequest{}
	for rows.Next() {
		var req domain.ShopOpeningRequest
		var adminMessage sql.NullString
		seller := &domain.SellerSummary{}
		if err := rows.Scan(
			&req.ID, &req.UserID, &req.Name, &req.Description, &req.Address, &req.Phone,
			&req.Status, &adminMessage, &req.CreatedAt, &req.UpdatedAt,
			&seller.ID, &seller.FullName, &seller.Email, &seller.Phone,
		); err != nil {
			return nil, err
		}
		req.AdminMessage = adminMessage.String
		req.Seller = seller
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return requests, nil
}
