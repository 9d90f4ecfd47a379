package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/vladislavdragonenkov/northwind/internal/domain"
)

// Фиксированная проекция постраничной выборки заказов.
var listColumns = []string{
	"o.id", "o.customer_id", "o.employee_id", "o.order_date", "o.required_date",
	"o.shipped_date", "o.freight", "o.ship_name", "o.ship_address", "o.ship_city",
	"o.ship_region", "o.ship_postal_code", "o.ship_country",
	"c.company_name", "e.last_name",
}

type orderQuery struct {
	db *sql.DB
}

// NewOrderQuery создаёт PostgreSQL-реализацию постраничной выборки заказов.
func NewOrderQuery(store *Store) domain.OrderQuery {
	return &orderQuery{db: store.DB()}
}

func (q *orderQuery) ListOrders(ctx context.Context, opts domain.OrderListOptions) ([]domain.OrderListItem, error) {
	opts, err := opts.Normalize()
	if err != nil {
		return nil, err
	}

	query, args, err := buildListQuery(opts)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	items := make([]domain.OrderListItem, 0, opts.PerPage)
	for rows.Next() {
		var item domain.OrderListItem
		if err := rows.Scan(
			&item.ID, &item.CustomerID, &item.EmployeeID, &item.OrderDate, &item.RequiredDate,
			&item.ShippedDate, &item.Freight, &item.ShipName, &item.ShipAddress, &item.ShipCity,
			&item.ShipRegion, &item.ShipPostalCode, &item.ShipCountry,
			&item.CustomerCompany, &item.EmployeeLastName,
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	return items, nil
}

// ListCustomerOrders фиксирует фильтр по клиенту; сортировка по умолчанию —
// дата отгрузки по возрастанию, явные опции вызывающего имеют приоритет.
func (q *orderQuery) ListCustomerOrders(ctx context.Context, customerID string, opts domain.OrderListOptions) ([]domain.OrderListItem, error) {
	opts.CustomerID = customerID
	if opts.Sort == "" {
		opts.Sort = domain.SortShippedDate
	}
	return q.ListOrders(ctx, opts)
}

// buildListQuery собирает текст выборки из провалидированных опций.
// Значения вызывающего привязываются только через $N.
func buildListQuery(opts domain.OrderListOptions) (string, []any, error) {
	var (
		parts []string
		args  []any
	)

	parts = append(parts, `SELECT `+columnList(listColumns)+`
		FROM orders o
		LEFT JOIN customers c ON c.id = o.customer_id
		LEFT JOIN employees e ON e.id = o.employee_id`)

	if opts.CustomerID != "" {
		args = append(args, opts.CustomerID)
		parts = append(parts, whereEqual("o.customer_id", len(args)))
	}

	sort, err := orderBy(opts.Sort, opts.Order)
	if err != nil {
		return "", nil, err
	}
	parts = append(parts, sort)

	args = append(args, opts.PerPage, opts.Offset())
	parts = append(parts, fmt.Sprintf("LIMIT $%d OFFSET $%d", len(args)-1, len(args)))

	return strings.Join(parts, " "), args, nil
}

var _ domain.OrderQuery = (*orderQuery)(nil)
