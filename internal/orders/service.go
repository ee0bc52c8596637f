package orders

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/lnhoang/fumarket/internal/domain"
)

// MatchPolicy decides what happens to requested item ids that do not match
// any sellable item: best-effort drops them silently, strict fails the
// whole placement.
type MatchPolicy string

const (
	MatchBestEffort MatchPolicy = "best-effort"
	MatchStrict     MatchPolicy = "strict"
)

type Config struct {
	DefaultQuantity int
	MatchPolicy     MatchPolicy
}

func (c Config) withDefaults() Config {
	if c.DefaultQuantity <= 0 {
		c.DefaultQuantity = 1
	}
	if c.MatchPolicy == "" {
		c.MatchPolicy = MatchBestEffort
	}
	return c
}

// ShopFinder resolves a shop that can receive orders. Banned shops are
// reported as not-found, same as missing ones.
type ShopFinder interface {
	FindOrderable(ctx context.Context, shopID int64) (*domain.Shop, error)
}

type OrderStore interface {
	Place(ctx context.Context, shopID, userID int64, note, shipAddress string, requested []domain.RequestedItem, strict bool) (*domain.Order, error)
	GetByOwner(ctx context.Context, orderID, userID int64) (*domain.Order, error)
	Update(ctx context.Context, orderID, userID int64, params UpdateParams) (*domain.Order, error)
	Transition(ctx context.Context, orderID, userID int64, event Event) (*domain.Order, error)
	Rate(ctx context.Context, orderID, userID int64, rating domain.Rating) (*domain.Order, error)
	CreateTicket(ctx context.Context, orderID, userID int64, userNote string) (*domain.Ticket, error)
	List(ctx context.Context, userID int64, filter ListFilter) ([]domain.Order, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

type Service struct {
	store    OrderStore
	shops    ShopFinder
	producer EventPublisher
	cfg      Config
	logger   *slog.Logger
	placed   metric.Int64Counter
}

func NewService(store OrderStore, shops ShopFinder, producer EventPublisher, cfg Config, logger *slog.Logger) (*Service, error) {
	placed, err := otel.Meter("orders").Int64Counter("orders.placed",
		metric.WithDescription("Orders successfully placed"),
	)
	if err != nil {
		return nil, err
	}

	return &Service{
		store:    store,
		shops:    shops,
		producer: producer,
		cfg:      cfg.withDefaults(),
		logger:   logger,
		placed:   placed,
	}, nil
}

type PlaceOrderRequest struct {
	Note        string
	ShipAddress string
	Items       []domain.RequestedItem
}

// PlaceOrder validates the target shop and the buyer, then hands the
// normalized request to the store for the atomic transaction.
func (s *Service) PlaceOrder(ctx context.Context, shopID, userID int64, req PlaceOrderRequest) (*domain.Order, error) {
	if len(req.Items) == 0 {
		return nil, domain.Invalid("no items requested")
	}

	shop, err := s.shops.FindOrderable(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if shop.OwnerID == userID {
		return nil, domain.Forbidden("you cannot order on your own shop")
	}

	items := make([]domain.RequestedItem, len(req.Items))
	copy(items, req.Items)
	for i := range items {
		if items[i].Quantity <= 0 {
			items[i].Quantity = s.cfg.DefaultQuantity
		}
	}

	order, err := s.store.Place(ctx, shop.ID, userID, req.Note, req.ShipAddress, items, s.cfg.MatchPolicy == MatchStrict)
	if err != nil {
		return nil, err
	}

	s.placed.Add(ctx, 1, metric.WithAttributes(attribute.Int64("shop.id", shop.ID)))

	if s.producer != nil {
		event := domain.OrderPlacedEvent{
			EventID:   uuid.New().String(),
			OrderID:   order.ID,
			ShopID:    order.ShopID,
			UserID:    order.UserID,
			Lines:     order.Lines,
			Timestamp: time.Now().UTC(),
		}
		if err := s.producer.Publish(ctx, event.EventID, event); err != nil {
			s.logger.Error("failed to publish order placed event", "error", err, "order_id", order.ID)
		}
	}

	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, orderID, userID int64) (*domain.Order, error) {
	return s.store.GetByOwner(ctx, orderID, userID)
}

func (s *Service) UpdateOrder(ctx context.Context, orderID, userID int64, params UpdateParams) (*domain.Order, error) {
	return s.store.Update(ctx, orderID, userID, params)
}

func (s *Service) CancelOrder(ctx context.Context, orderID, userID int64) (*domain.Order, error) {
	return s.store.Transition(ctx, orderID, userID, EventCancel)
}

func (s *Service) RateOrder(ctx context.Context, orderID, userID int64, rating domain.Rating) (*domain.Order, error) {
	if rating.Rate < 1 || rating.Rate > 5 {
		return nil, domain.Invalid("rate must be between 1 and 5")
	}
	return s.store.Rate(ctx, orderID, userID, rating)
}

func (s *Service) OpenTicket(ctx context.Context, orderID, userID int64, userNote string) (*domain.Ticket, error) {
	return s.store.CreateTicket(ctx, orderID, userID, userNote)
}

func (s *Service) ListOrders(ctx context.Context, userID int64, filter ListFilter) ([]domain.Order, error) {
	return s.store.List(ctx, userID, filter)
}
