package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/lnhoang/fumarket/internal/domain"
)

type fakeDeleter struct {
	calls [][]domain.AssetVersion
	err   error
}

func (f *fakeDeleter) DeleteVersions(ctx context.Context, versions []domain.AssetVersion) error {
	f.calls = append(f.calls, versions)
	return f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCleanupHandler_Handle(t *testing.T) {
	t.Run("deletes avatar and cover versions", func(t *testing.T) {
		deleter := &fakeDeleter{}
		handler := NewCleanupHandler(deleter, discardLogger())

		payload, _ := json.Marshal(domain.ShopDeletedEvent{
			EventID: "evt-1",
			ShopID:  7,
			AvatarVersions: []domain.AssetVersion{
				{Key: "avatar/full.jpg"},
				{Key: "avatar/thumb.jpg"},
			},
			CoverVersions: []domain.AssetVersion{
				{Key: "cover/full.jpg"},
			},
		})

		if err := handler.Handle(context.Background(), payload); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(deleter.calls) != 2 {
			t.Fatalf("expected 2 delete calls, got %d", len(deleter.calls))
		}
		if len(deleter.calls[0]) != 2 || len(deleter.calls[1]) != 1 {
			t.Errorf("unexpected version batches: %v", deleter.calls)
		}
	})

	t.Run("deletion failures are swallowed", func(t *testing.T) {
		deleter := &fakeDeleter{err: errors.New("image service down")}
		handler := NewCleanupHandler(deleter, discardLogger())

		payload, _ := json.Marshal(domain.ShopDeletedEvent{
			ShopID:         7,
			AvatarVersions: []domain.AssetVersion{{Key: "avatar/full.jpg"}},
		})

		if err := handler.Handle(context.Background(), payload); err != nil {
			t.Fatalf("cleanup must be best effort, got error: %v", err)
		}
	})

	t.Run("skips events without assets", func(t *testing.T) {
		deleter := &fakeDeleter{}
		handler := NewCleanupHandler(deleter, discardLogger())

		payload, _ := json.Marshal(domain.ShopDeletedEvent{ShopID: 7})

		if err := handler.Handle(context.Background(), payload); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(deleter.calls) != 0 {
			t.Errorf("expected no delete calls, got %d", len(deleter.calls))
		}
	})

	t.Run("malformed payload is an error", func(t *testing.T) {
		handler := NewCleanupHandler(&fakeDeleter{}, discardLogger())

		if err := handler.Handle(context.Background(), []byte("{not json")); err == nil {
			t.Fatal("expected an unmarshal error")
		}
	})
}
