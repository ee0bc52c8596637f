package orders

import (
	"testing"

	"github.com/lnhoang/fumarket/internal/domain"
)

func TestParseListFilter(t *testing.T) {
	t.Run("no filters", func(t *testing.T) {
		filter, err := ParseListFilter("", "", "", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(filter.Statuses) != 0 {
			t.Errorf("expected no status filter, got %v", filter.Statuses)
		}
		if filter.Limit != 10 || filter.Offset != 0 {
			t.Errorf("expected default pagination, got limit=%d offset=%d", filter.Limit, filter.Offset)
		}
	})

	t.Run("type=active expands to non-terminal statuses", func(t *testing.T) {
		filter, err := ParseListFilter("active", "", "", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []domain.OrderStatus{
			domain.OrderStatusNew,
			domain.OrderStatusAccepted,
			domain.OrderStatusShipping,
		}
		if len(filter.Statuses) != len(want) {
			t.Fatalf("expected %d statuses, got %d", len(want), len(filter.Statuses))
		}
		for i, s := range want {
			if filter.Statuses[i] != s {
				t.Errorf("expected %s at %d, got %s", s, i, filter.Statuses[i])
			}
		}
	})

	t.Run("type takes precedence over status", func(t *testing.T) {
		filter, err := ParseListFilter("active", "cancelled", "", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, s := range filter.Statuses {
			if s == domain.OrderStatusCancelled {
				t.Error("status filter must be ignored when type is set")
			}
		}
	})

	t.Run("unknown type rejected", func(t *testing.T) {
		_, err := ParseListFilter("finished", "", "", "")
		if domain.KindOf(err) != domain.KindValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("valid status", func(t *testing.T) {
		filter, err := ParseListFilter("", "shipping", "", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(filter.Statuses) != 1 || filter.Statuses[0] != domain.OrderStatusShipping {
			t.Errorf("expected [shipping], got %v", filter.Statuses)
		}
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		_, err := ParseListFilter("", "sleeping", "", "")
		if domain.KindOf(err) != domain.KindValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("pagination forwarded", func(t *testing.T) {
		filter, err := ParseListFilter("", "", "5", "2")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if filter.Limit != 5 || filter.Offset != 5 {
			t.Errorf("expected limit=5 offset=5, got limit=%d offset=%d", filter.Limit, filter.Offset)
		}
	})
}
