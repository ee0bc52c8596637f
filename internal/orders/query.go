package orders

import (
	"github.com/lnhoang/fumarket/internal/domain"
	"github.com/lnhoang/fumarket/internal/listing"
)

// ParseListFilter interprets the listing query vocabulary. `type` and
// `status` are mutually exclusive; `type` is checked first. The only
// recognized type is "active", expanding to the non-terminal statuses.
func ParseListFilter(typ, status, size, page string) (ListFilter, error) {
	pg := listing.ParsePage(size, page)
	filter := ListFilter{Limit: pg.Limit, Offset: pg.Offset}

	switch {
	case typ != "":
		if typ != "active" {
			return ListFilter{}, domain.Invalid("invalid type query")
		}
		filter.Statuses = domain.ActiveOrderStatuses
	case status != "":
		s := domain.OrderStatus(status)
		if !domain.KnownOrderStatus(s) {
			return ListFilter{}, domain.Invalid("invalid status query")
		}
		filter.Statuses = []domain.OrderStatus{s}
	}

	return filter, nil
}
