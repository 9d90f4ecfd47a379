package domain_test

import (
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/northwind/internal/domain"
)

func TestOrderListOptionsNormalize_Defaults(t *testing.T) {
	opts, err := domain.OrderListOptions{}.Normalize()
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}

	if opts.Page != domain.DefaultPage {
		t.Errorf("expected page %d, got %d", domain.DefaultPage, opts.Page)
	}
	if opts.PerPage != domain.DefaultPerPage {
		t.Errorf("expected per_page %d, got %d", domain.DefaultPerPage, opts.PerPage)
	}
	if opts.Sort != domain.DefaultSort {
		t.Errorf("expected sort %q, got %q", domain.DefaultSort, opts.Sort)
	}
	if opts.Order != domain.DefaultOrder {
		t.Errorf("expected order %q, got %q", domain.DefaultOrder, opts.Order)
	}
}

func TestOrderListOptionsNormalize_KeepsExplicitValues(t *testing.T) {
	in := domain.OrderListOptions{
		Page:       3,
		PerPage:    50,
		Sort:       "freight",
		Order:      domain.SortDesc,
		CustomerID: "ALFKI",
	}

	opts, err := in.Normalize()
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if opts != in {
		t.Fatalf("explicit options changed: %+v -> %+v", in, opts)
	}
}

func TestOrderListOptionsNormalize_Rejections(t *testing.T) {
	tests := []struct {
		name string
		opts domain.OrderListOptions
		want error
	}{
		{
			name: "negative page",
			opts: domain.OrderListOptions{Page: -1},
			want: domain.ErrInvalidPage,
		},
		{
			name: "negative per_page",
			opts: domain.OrderListOptions{PerPage: -5},
			want: domain.ErrInvalidPerPage,
		},
		{
			name: "unknown sort column",
			opts: domain.OrderListOptions{Sort: "password"},
			want: domain.ErrInvalidSortColumn,
		},
		{
			name: "sql in sort column",
			opts: domain.OrderListOptions{Sort: "id; DROP TABLE orders"},
			want: domain.ErrInvalidSortColumn,
		},
		{
			name: "unknown order",
			opts: domain.OrderListOptions{Order: "sideways"},
			want: domain.ErrInvalidSortOrder,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.opts.Normalize()
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSortableColumn(t *testing.T) {
	for _, name := range []string{"id", "shippeddate", "companyname", "lastname"} {
		if !domain.SortableColumn(name) {
			t.Errorf("expected %q to be sortable", name)
		}
	}
	for _, name := range []string{"", "ID", "ship_city", "orders.id"} {
		if domain.SortableColumn(name) {
			t.Errorf("expected %q to be rejected", name)
		}
	}
}

func TestOrderListOptionsOffset(t *testing.T) {
	tests := []struct {
		page    int
		perPage int
		want    int
	}{
		{page: 1, perPage: 20, want: 0},
		{page: 2, perPage: 10, want: 10},
		{page: 5, perPage: 25, want: 100},
	}

	for _, tt := range tests {
		opts := domain.OrderListOptions{Page: tt.page, PerPage: tt.perPage}
		if got := opts.Offset(); got != tt.want {
			t.Errorf("Offset(page=%d, perPage=%d) = %d, want %d", tt.page, tt.perPage, got, tt.want)
		}
	}
}
