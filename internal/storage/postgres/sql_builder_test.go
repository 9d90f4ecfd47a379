package postgres

import (
	"errors"
	"strings"
	"testing"

	"github.com/vladislavdragonenkov/northwind/internal/domain"
)

func TestColumnList(t *testing.T) {
	got := columnList([]string{"id", "customer_id", "freight"})
	if got != "id, customer_id, freight" {
		t.Fatalf("unexpected column list: %q", got)
	}
}

func TestPlaceholders(t *testing.T) {
	tests := []struct {
		start int
		count int
		want  string
	}{
		{start: 1, count: 1, want: "$1"},
		{start: 1, count: 3, want: "$1, $2, $3"},
		{start: 4, count: 2, want: "$4, $5"},
		{start: 1, count: 0, want: ""},
	}

	for _, tt := range tests {
		if got := placeholders(tt.start, tt.count); got != tt.want {
			t.Errorf("placeholders(%d, %d) = %q, want %q", tt.start, tt.count, got, tt.want)
		}
	}
}

func TestWhereEqual(t *testing.T) {
	if got := whereEqual("o.customer_id", 1); got != "WHERE o.customer_id = $1" {
		t.Fatalf("unexpected where fragment: %q", got)
	}
	if got := whereEqual("", 1); got != "" {
		t.Fatalf("expected empty fragment for empty column, got %q", got)
	}
}

func TestOrderBy(t *testing.T) {
	got, err := orderBy("shippeddate", domain.SortDesc)
	if err != nil {
		t.Fatalf("orderBy failed: %v", err)
	}
	if got != "ORDER BY o.shipped_date DESC" {
		t.Fatalf("unexpected order by fragment: %q", got)
	}

	got, err = orderBy("companyname", domain.SortAsc)
	if err != nil {
		t.Fatalf("orderBy failed: %v", err)
	}
	if got != "ORDER BY c.company_name ASC" {
		t.Fatalf("unexpected order by fragment: %q", got)
	}

	if _, err := orderBy("id; DROP TABLE orders", domain.SortAsc); !errors.Is(err, domain.ErrInvalidSortColumn) {
		t.Fatalf("expected ErrInvalidSortColumn, got %v", err)
	}
}

// Каждому разрешённому в domain ключу сортировки обязано соответствовать
// SQL-выражение, иначе провалидированный запрос упадёт при построении.
func TestSortColumnsCoverAllowList(t *testing.T) {
	for key := range sortColumns {
		if !domain.SortableColumn(key) {
			t.Errorf("sort column %q is not in the domain allow-list", key)
		}
	}
	for _, key := range []string{
		"id", "customerid", "employeeid", "orderdate", "requireddate",
		"shippeddate", "freight", "shipname", "shipcity", "shipcountry",
		"companyname", "lastname",
	} {
		if _, ok := sortColumns[key]; !ok {
			t.Errorf("allow-listed key %q has no SQL mapping", key)
		}
	}
}

func TestSetClause(t *testing.T) {
	var clause setClause
	if !clause.Empty() {
		t.Fatal("new clause must be empty")
	}

	clause.Set("ship_city", "Hamburg")
	clause.Set("freight", 7.25)

	if clause.Empty() {
		t.Fatal("clause with assignments must not be empty")
	}
	if got := clause.SQL(1); got != "SET ship_city = $1, freight = $2" {
		t.Fatalf("unexpected set fragment: %q", got)
	}
	if got := clause.SQL(3); got != "SET ship_city = $3, freight = $4" {
		t.Fatalf("unexpected set fragment with offset: %q", got)
	}
	args := clause.Args()
	if len(args) != 2 || args[0] != "Hamburg" || args[1] != 7.25 {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestBuildListQuery_Defaults(t *testing.T) {
	opts, err := domain.OrderListOptions{}.Normalize()
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}

	query, args, err := buildListQuery(opts)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if strings.Contains(query, "WHERE") {
		t.Fatalf("unfiltered query must not contain WHERE: %q", query)
	}
	if !strings.Contains(query, "ORDER BY o.id ASC") {
		t.Fatalf("expected default sort, got %q", query)
	}
	if !strings.HasSuffix(query, "LIMIT $1 OFFSET $2") {
		t.Fatalf("expected bound limit/offset, got %q", query)
	}
	if len(args) != 2 || args[0] != 20 || args[1] != 0 {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestBuildListQuery_CustomerFilter(t *testing.T) {
	opts, err := domain.OrderListOptions{
		Page:       2,
		PerPage:    10,
		Sort:       domain.SortShippedDate,
		Order:      domain.SortDesc,
		CustomerID: "ALFKI",
	}.Normalize()
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}

	query, args, err := buildListQuery(opts)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if !strings.Contains(query, "WHERE o.customer_id = $1") {
		t.Fatalf("expected customer filter, got %q", query)
	}
	if !strings.Contains(query, "ORDER BY o.shipped_date DESC") {
		t.Fatalf("expected shipped date sort, got %q", query)
	}
	if !strings.HasSuffix(query, "LIMIT $2 OFFSET $3") {
		t.Fatalf("expected bound limit/offset, got %q", query)
	}
	if len(args) != 3 || args[0] != "ALFKI" || args[1] != 10 || args[2] != 10 {
		t.Fatalf("unexpected args: %v", args)
	}

	// Значения вызывающего не должны попадать в текст запроса.
	if strings.Contains(query, "ALFKI") {
		t.Fatalf("argument leaked into query text: %q", query)
	}
}
