package usecase

import (
	"testing"

	"github.com/fliplens/backend/internal/domain"
)

func TestDedupe(t *testing.T) {
	e := newTestExtractor()

	tests := []struct {
		name     string
		payloads []string
		want     int
	}{
		{
			name: "duplicate ids collapse, first kept",
			payloads: []string{
				`{"itemId": "1", "title": "A"}`,
				`{"itemId": "2", "title": "B"}`,
				`{"itemId": "1", "title": "A again"}`,
			},
			want: 2,
		},
		{
			name: "identical links collapse without ids",
			payloads: []string{
				`{"product_url": "https://www.aliexpress.com/item/9.html", "salePrice": "$2.99"}`,
				`{"product_url": "https://www.aliexpress.com/item/9.html", "SalePrice": "$2.99"}`,
			},
			want: 1,
		},
		{
			name: "link normalization unifies keys",
			payloads: []string{
				`{"product_url": "//www.aliexpress.com/item/7.html"}`,
				`{"product_url": "https://www.aliexpress.com/item/7.html"}`,
			},
			want: 1,
		},
		{
			name: "title+price composite key",
			payloads: []string{
				`{"title": "USB Hub", "price": 9.99}`,
				`{"title": "USB Hub", "price": 9.99}`,
				`{"title": "USB Hub", "price": 19.99}`,
			},
			want: 2,
		},
		{
			name: "keyless items dropped",
			payloads: []string{
				`{"description": "no identity at all"}`,
				`{"itemId": "5"}`,
			},
			want: 1,
		},
		{
			name:     "empty input",
			payloads: nil,
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := make([]domain.RawItem, 0, len(tt.payloads))
			for _, p := range tt.payloads {
				items = append(items, decodeItem(t, p))
			}

			got := e.Dedupe(items)
			if len(got) != tt.want {
				t.Errorf("Dedupe() kept %d items, want %d", len(got), tt.want)
			}
		})
	}
}

func TestDedupe_PreservesFirstSeenOrder(t *testing.T) {
	e := newTestExtractor()

	items := []domain.RawItem{
		decodeItem(t, `{"itemId": "c", "title": "third dup"}`),
		decodeItem(t, `{"itemId": "a", "title": "first"}`),
		decodeItem(t, `{"itemId": "c", "title": "dup of head"}`),
		decodeItem(t, `{"itemId": "b", "title": "second"}`),
	}

	got := e.Dedupe(items)

	wantIDs := []string{"c", "a", "b"}
	if len(got) != len(wantIDs) {
		t.Fatalf("Dedupe() kept %d items, want %d", len(got), len(wantIDs))
	}
	for i, item := range got {
		if id := e.ID(item); id != wantIDs[i] {
			t.Errorf("output[%d] id = %q, want %q", i, id, wantIDs[i])
		}
	}
}

func TestDedupe_NoOutputKeyConflicts(t *testing.T) {
	e := newTestExtractor()

	items := []domain.RawItem{
		decodeItem(t, `{"itemId": "x"}`),
		decodeItem(t, `{"product_url": "https://www.aliexpress.com/item/1.html"}`),
		decodeItem(t, `{"title": "Widget", "price": 5}`),
		decodeItem(t, `{"itemId": "x", "extra": true}`),
		decodeItem(t, `{"title": "Widget", "price": 5, "color": "red"}`),
	}

	got := e.Dedupe(items)

	seen := make(map[string]bool)
	for _, item := range got {
		key := e.dedupeKey(item)
		if key == "" {
			t.Errorf("output contains keyless item %v", item)
		}
		if seen[key] {
			t.Errorf("duplicate key %q in output", key)
		}
		seen[key] = true
	}
}
