package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/northwind/internal/domain"
)

func TestDetailID(t *testing.T) {
	tests := []struct {
		orderID   int64
		productID int64
		want      string
	}{
		{orderID: 5, productID: 3, want: "5/3"},
		{orderID: 10248, productID: 11, want: "10248/11"},
		{orderID: 1, productID: 1, want: "1/1"},
	}

	for _, tt := range tests {
		if got := domain.DetailID(tt.orderID, tt.productID); got != tt.want {
			t.Errorf("DetailID(%d, %d) = %q, want %q", tt.orderID, tt.productID, got, tt.want)
		}
	}
}

func TestOrderDetailSubtotal(t *testing.T) {
	d := domain.OrderDetail{
		UnitPrice: decimal.NewFromInt(10),
		Quantity:  2,
		Discount:  0.1,
	}
	if !d.LinePrice().Equal(decimal.NewFromInt(20)) {
		t.Fatalf("expected line price 20, got %s", d.LinePrice())
	}
	if !d.Subtotal().Equal(decimal.NewFromInt(18)) {
		t.Fatalf("expected subtotal 18, got %s", d.Subtotal())
	}
}

func TestSubtotalOf(t *testing.T) {
	details := []domain.OrderDetail{
		{UnitPrice: decimal.NewFromInt(10), Quantity: 2, Discount: 0.1},
		{UnitPrice: decimal.NewFromInt(5), Quantity: 1, Discount: 0},
	}
	// 10*2*0.9 + 5*1 = 23
	if got := domain.SubtotalOf(details); !got.Equal(decimal.NewFromInt(23)) {
		t.Fatalf("expected subtotal 23, got %s", got)
	}

	if got := domain.SubtotalOf(nil); !got.IsZero() {
		t.Fatalf("expected zero subtotal for empty slice, got %s", got)
	}
}

func TestOrderDetailValidateInvariants(t *testing.T) {
	valid := domain.OrderDetail{
		ProductID: 1,
		UnitPrice: decimal.NewFromInt(10),
		Quantity:  1,
		Discount:  0.25,
	}
	if errs := valid.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no violations, got %v", errs)
	}

	tests := []struct {
		name   string
		detail domain.OrderDetail
		want   error
	}{
		{
			name:   "missing product",
			detail: domain.OrderDetail{UnitPrice: decimal.NewFromInt(1), Quantity: 1},
			want:   domain.ErrDetailProductRequired,
		},
		{
			name:   "zero quantity",
			detail: domain.OrderDetail{ProductID: 1, UnitPrice: decimal.NewFromInt(1)},
			want:   domain.ErrDetailQtyInvalid,
		},
		{
			name:   "negative price",
			detail: domain.OrderDetail{ProductID: 1, UnitPrice: decimal.NewFromInt(-1), Quantity: 1},
			want:   domain.ErrDetailPriceInvalid,
		},
		{
			name:   "discount above one",
			detail: domain.OrderDetail{ProductID: 1, UnitPrice: decimal.NewFromInt(1), Quantity: 1, Discount: 1.5},
			want:   domain.ErrDetailDiscountInvalid,
		},
		{
			name:   "negative discount",
			detail: domain.OrderDetail{ProductID: 1, UnitPrice: decimal.NewFromInt(1), Quantity: 1, Discount: -0.1},
			want:   domain.ErrDetailDiscountInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := tt.detail.ValidateInvariants()
			if len(errs) == 0 {
				t.Fatal("expected violations, got none")
			}
			found := false
			for _, err := range errs {
				if errors.Is(err, tt.want) {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected %v among %v", tt.want, errs)
			}
		})
	}
}

func TestOrderPatchIsEmpty(t *testing.T) {
	if !(domain.OrderPatch{}).IsEmpty() {
		t.Fatal("zero patch must be empty")
	}

	city := "Berlin"
	if (domain.OrderPatch{ShipCity: &city}).IsEmpty() {
		t.Fatal("patch with a field must not be empty")
	}
}

func TestOrderPatchApply(t *testing.T) {
	customer := "ALFKI"
	employee := int64(3)
	order := domain.Order{
		ID:           10,
		CustomerID:   &customer,
		EmployeeID:   &employee,
		RequiredDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Freight:      decimal.NewFromInt(5),
		ShipCity:     "Berlin",
		ShipCountry:  "Germany",
	}

	shipped := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	freight := decimal.NewFromFloat(7.25)
	city := "Hamburg"
	patch := domain.OrderPatch{
		ShippedDate: &shipped,
		Freight:     &freight,
		ShipCity:    &city,
	}

	patch.Apply(&order)

	if order.ID != 10 {
		t.Fatalf("order id must not change, got %d", order.ID)
	}
	if order.ShippedDate == nil || !order.ShippedDate.Equal(shipped) {
		t.Fatalf("expected shipped date %v, got %v", shipped, order.ShippedDate)
	}
	if !order.Freight.Equal(freight) {
		t.Fatalf("expected freight %s, got %s", freight, order.Freight)
	}
	if order.ShipCity != "Hamburg" {
		t.Fatalf("expected ship city Hamburg, got %q", order.ShipCity)
	}
	// Незаполненные поля patch не трогают заказ.
	if order.CustomerID == nil || *order.CustomerID != "ALFKI" {
		t.Fatalf("customer id changed unexpectedly: %v", order.CustomerID)
	}
	if order.ShipCountry != "Germany" {
		t.Fatalf("ship country changed unexpectedly: %q", order.ShipCountry)
	}
}
