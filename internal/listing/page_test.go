package listing

import "testing"

func TestParsePage(t *testing.T) {
	tests := []struct {
		name       string
		size, page string
		wantLimit  int
		wantOffset int
	}{
		{"defaults when empty", "", "", 10, 0},
		{"explicit size and page", "5", "3", 5, 10},
		{"first page", "20", "1", 20, 0},
		{"zero size falls back", "0", "2", 10, 10},
		{"negative values fall back", "-5", "-1", 10, 0},
		{"non-numeric values fall back", "abc", "xyz", 10, 0},
		{"page without size", "", "4", 10, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePage(tt.size, tt.page)
			if got.Limit != tt.wantLimit {
				t.Errorf("limit: expected %d, got %d", tt.wantLimit, got.Limit)
			}
			if got.Offset != tt.wantOffset {
				t.Errorf("offset: expected %d, got %d", tt.wantOffset, got.Offset)
			}
		})
	}
}
