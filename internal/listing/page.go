// Package listing holds the pagination vocabulary shared by the order and
// shop-opening-request listing endpoints.
package listing

import "strconv"

const DefaultPageSize = 10

type Page struct {
	Limit  int
	Offset int
}

// ParsePage interprets the `size` and `page` query values. Non-numeric or
// non-positive values fall back to the defaults: size 10, first page.
// Pages are 1-based.
func ParsePage(sizeStr, pageStr string) Page {
	size, _ := strconv.Atoi(sizeStr)
	page, _ := strconv.Atoi(pageStr)

	limit := DefaultPageSize
	if size > 0 {
		limit = size
	}

	offset := 0
	if page > 0 {
		offset = (page - 1) * limit
	}

	return Page{Limit: limit, Offset: offset}
}
