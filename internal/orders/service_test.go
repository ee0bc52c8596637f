package orders

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/lnhoang/fumarket/internal/domain"
)

type fakeShopFinder struct {
	shop *domain.Shop
	err  error
}

func (f *fakeShopFinder) FindOrderable(ctx context.Context, shopID int64) (*domain.Shop, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.shop, nil
}

type fakeOrderStore struct {
	OrderStore

	placedShopID int64
	placedUserID int64
	placedItems  []domain.RequestedItem
	placedStrict bool
	placeErr     error
}

func (f *fakeOrderStore) Place(ctx context.Context, shopID, userID int64, note, shipAddress string, requested []domain.RequestedItem, strict bool) (*domain.Order, error) {
	f.placedShopID = shopID
	f.placedUserID = userID
	f.placedItems = requested
	f.placedStrict = strict
	if f.placeErr != nil {
		return nil, f.placeErr
	}
	return &domain.Order{ID: 1, ShopID: shopID, UserID: userID, Status: domain.OrderStatusNew}, nil
}

type fakePublisher struct {
	published []any
	err       error
}

func (f *fakePublisher) Publish(ctx context.Context, key string, event any) error {
	f.published = append(f.published, event)
	return f.err
}

func newTestService(t *testing.T, store OrderStore, shops ShopFinder, producer EventPublisher, cfg Config) *Service {
	t.Helper()
	svc, err := NewService(store, shops, producer, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return svc
}

func TestService_PlaceOrder(t *testing.T) {
	ctx := context.Background()
	shop := &domain.Shop{ID: 7, OwnerID: 42}

	t.Run("rejects empty item list", func(t *testing.T) {
		svc := newTestService(t, &fakeOrderStore{}, &fakeShopFinder{shop: shop}, nil, Config{})

		_, err := svc.PlaceOrder(ctx, 7, 1, PlaceOrderRequest{})
		if domain.KindOf(err) != domain.KindValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("propagates missing shop as not found", func(t *testing.T) {
		finder := &fakeShopFinder{err: domain.NotFound("shop does not exist")}
		svc := newTestService(t, &fakeOrderStore{}, finder, nil, Config{})

		_, err := svc.PlaceOrder(ctx, 99, 1, PlaceOrderRequest{Items: []domain.RequestedItem{{ItemID: 1}}})
		if domain.KindOf(err) != domain.KindNotFound {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("owner cannot order own shop", func(t *testing.T) {
		store := &fakeOrderStore{}
		svc := newTestService(t, store, &fakeShopFinder{shop: shop}, nil, Config{})

		_, err := svc.PlaceOrder(ctx, 7, 42, PlaceOrderRequest{Items: []domain.RequestedItem{{ItemID: 1, Quantity: 2}}})
		if domain.KindOf(err) != domain.KindForbidden {
			t.Fatalf("expected forbidden, got %v", err)
		}
		if store.placedItems != nil {
			t.Error("store must not be reached for a self-order")
		}
	})

	t.Run("zero quantity takes the configured default", func(t *testing.T) {
		store := &fakeOrderStore{}
		svc := newTestService(t, store, &fakeShopFinder{shop: shop}, nil, Config{DefaultQuantity: 3})

		_, err := svc.PlaceOrder(ctx, 7, 1, PlaceOrderRequest{
			Items: []domain.RequestedItem{{ItemID: 10}, {ItemID: 11, Quantity: 2}},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if store.placedItems[0].Quantity != 3 {
			t.Errorf("expected default quantity 3, got %d", store.placedItems[0].Quantity)
		}
		if store.placedItems[1].Quantity != 2 {
			t.Errorf("expected quantity 2 untouched, got %d", store.placedItems[1].Quantity)
		}
	})

	t.Run("caller request is not mutated by normalization", func(t *testing.T) {
		svc := newTestService(t, &fakeOrderStore{}, &fakeShopFinder{shop: shop}, nil, Config{})

		req := PlaceOrderRequest{Items: []domain.RequestedItem{{ItemID: 10}}}
		if _, err := svc.PlaceOrder(ctx, 7, 1, req); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if req.Items[0].Quantity != 0 {
			t.Errorf("caller slice mutated: quantity=%d", req.Items[0].Quantity)
		}
	})

	t.Run("match policy controls strict flag", func(t *testing.T) {
		store := &fakeOrderStore{}
		svc := newTestService(t, store, &fakeShopFinder{shop: shop}, nil, Config{MatchPolicy: MatchStrict})

		if _, err := svc.PlaceOrder(ctx, 7, 1, PlaceOrderRequest{Items: []domain.RequestedItem{{ItemID: 1, Quantity: 1}}}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !store.placedStrict {
			t.Error("expected strict matching to be requested")
		}
	})

	t.Run("publishes event after placement", func(t *testing.T) {
		producer := &fakePublisher{}
		svc := newTestService(t, &fakeOrderStore{}, &fakeShopFinder{shop: shop}, producer, Config{})

		if _, err := svc.PlaceOrder(ctx, 7, 1, PlaceOrderRequest{Items: []domain.RequestedItem{{ItemID: 1, Quantity: 1}}}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(producer.published) != 1 {
			t.Fatalf("expected 1 event, got %d", len(producer.published))
		}
		event, ok := producer.published[0].(domain.OrderPlacedEvent)
		if !ok {
			t.Fatalf("unexpected event type %T", producer.published[0])
		}
		if event.OrderID != 1 || event.EventID == "" {
			t.Errorf("incomplete event: %+v", event)
		}
	})

	t.Run("publish failure does not fail the placement", func(t *testing.T) {
		producer := &fakePublisher{err: context.DeadlineExceeded}
		svc := newTestService(t, &fakeOrderStore{}, &fakeShopFinder{shop: shop}, producer, Config{})

		order, err := svc.PlaceOrder(ctx, 7, 1, PlaceOrderRequest{Items: []domain.RequestedItem{{ItemID: 1, Quantity: 1}}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if order == nil {
			t.Fatal("expected the placed order back")
		}
	})
}

func TestService_RateOrder(t *testing.T) {
	svc := newTestService(t, &fakeOrderStore{}, &fakeShopFinder{}, nil, Config{})

	for _, rate := range []int{0, -1, 6} {
		_, err := svc.RateOrder(context.Background(), 1, 1, domain.Rating{Rate: rate})
		if domain.KindOf(err) != domain.KindValidation {
			t.Errorf("rate %d: expected validation error, got %v", rate, err)
		}
	}
}
