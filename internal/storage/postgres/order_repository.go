package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/northwind/internal/domain"
)

const (
	opTimeout = 5 * time.Second
)

// Колонки заказа, заполняемые при вставке; id выдаёт база.
var orderInsertColumns = []string{
	"customer_id", "employee_id", "order_date", "required_date", "shipped_date",
	"freight", "ship_name", "ship_address", "ship_city", "ship_region",
	"ship_postal_code", "ship_country",
}

// Колонки позиции заказа при вставке.
var detailInsertColumns = []string{
	"id", "order_id", "product_id", "unit_price", "quantity", "discount",
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{db: store.DB()}
}

func (r *orderRepository) GetOrder(ctx context.Context, id int64) (domain.OrderInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var info domain.OrderInfo

	err := r.db.QueryRowContext(ctx, `
		SELECT o.id, o.customer_id, o.employee_id, o.order_date, o.required_date,
		       o.shipped_date, o.freight, o.ship_name, o.ship_address, o.ship_city,
		       o.ship_region, o.ship_postal_code, o.ship_country,
		       c.company_name,
		       e.first_name || ' ' || e.last_name,
		       COALESCE(SUM(d.unit_price * d.quantity * (1 - d.discount)), 0)
		FROM orders o
		LEFT JOIN customers c ON c.id = o.customer_id
		LEFT JOIN employees e ON e.id = o.employee_id
		LEFT JOIN order_details d ON d.order_id = o.id
		WHERE o.id = $1
		GROUP BY o.id, c.company_name, e.first_name, e.last_name
	`, id).Scan(
		&info.ID, &info.CustomerID, &info.EmployeeID, &info.OrderDate, &info.RequiredDate,
		&info.ShippedDate, &info.Freight, &info.ShipName, &info.ShipAddress, &info.ShipCity,
		&info.ShipRegion, &info.ShipPostalCode, &info.ShipCountry,
		&info.CustomerName,
		&info.EmployeeName,
		&info.Subtotal,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.OrderInfo{}, domain.ErrOrderNotFound
		}
		return domain.OrderInfo{}, fmt.Errorf("select order: %w", err)
	}

	return info, nil
}

func (r *orderRepository) GetOrderDetails(ctx context.Context, id int64) ([]domain.OrderDetailInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT d.id, d.order_id, d.product_id, d.unit_price, d.quantity, d.discount,
		       p.product_name,
		       d.unit_price * d.quantity
		FROM order_details d
		LEFT JOIN products p ON p.id = d.product_id
		WHERE d.order_id = $1
		ORDER BY d.product_id ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("select order details: %w", err)
	}
	defer rows.Close()

	details := make([]domain.OrderDetailInfo, 0)
	for rows.Next() {
		var d domain.OrderDetailInfo
		if err := rows.Scan(
			&d.ID, &d.OrderID, &d.ProductID, &d.UnitPrice, &d.Quantity, &d.Discount,
			&d.ProductName,
			&d.LineTotal,
		); err != nil {
			return nil, fmt.Errorf("scan order detail: %w", err)
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order details: %w", err)
	}

	return details, nil
}

// GetOrderWithDetails — составная выборка из двух независимых чтений.
func (r *orderRepository) GetOrderWithDetails(ctx context.Context, id int64) (domain.OrderWithDetails, error) {
	order, err := r.GetOrder(ctx, id)
	if err != nil {
		return domain.OrderWithDetails{}, err
	}

	details, err := r.GetOrderDetails(ctx, id)
	if err != nil {
		return domain.OrderWithDetails{}, err
	}

	return domain.OrderWithDetails{Order: order, Details: details}, nil
}

func (r *orderRepository) CreateOrder(ctx context.Context, order domain.Order, details []domain.OrderDetail) (int64, error) {
	// Инварианты позиций проверяются до открытия транзакции.
	for _, d := range details {
		if errs := d.ValidateInvariants(); len(errs) > 0 {
			return 0, errs[0]
		}
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	insertOrder := `INSERT INTO orders (` + columnList(orderInsertColumns) + `)
		VALUES (` + placeholders(1, len(orderInsertColumns)) + `)
		RETURNING id`

	var newID int64
	err = tx.QueryRowContext(ctx, insertOrder,
		order.CustomerID, order.EmployeeID, order.OrderDate, order.RequiredDate,
		order.ShippedDate, order.Freight, order.ShipName, order.ShipAddress,
		order.ShipCity, order.ShipRegion, order.ShipPostalCode, order.ShipCountry,
	).Scan(&newID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, domain.ErrInvalidReference
		}
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrOrderCreateFailed
		}
		return 0, fmt.Errorf("insert order: %w", err)
	}
	if newID == 0 {
		err = domain.ErrOrderCreateFailed
		return 0, err
	}

	insertDetail := `INSERT INTO order_details (` + columnList(detailInsertColumns) + `)
		VALUES (` + placeholders(1, len(detailInsertColumns)) + `)`

	for _, d := range details {
		if _, err = tx.ExecContext(ctx, insertDetail,
			domain.DetailID(newID, d.ProductID), newID, d.ProductID,
			d.UnitPrice, d.Quantity, d.Discount,
		); err != nil {
			if isForeignKeyViolation(err) {
				return 0, domain.ErrInvalidReference
			}
			if isUniqueViolation(err) {
				return 0, domain.ErrDuplicateDetail
			}
			return 0, fmt.Errorf("insert order detail: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit create order: %w", err)
	}

	return newID, nil
}

func (r *orderRepository) UpdateOrder(ctx context.Context, id int64, patch domain.OrderPatch, details []domain.OrderDetail) error {
	if patch.IsEmpty() {
		return domain.ErrEmptyOrderPatch
	}
	for _, d := range details {
		if errs := d.ValidateInvariants(); len(errs) > 0 {
			return errs[0]
		}
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	set := patchSetClause(patch)
	update := `UPDATE orders ` + set.SQL(1) +
		fmt.Sprintf(` WHERE id = $%d`, len(set.Args())+1)

	res, err := tx.ExecContext(ctx, update, append(set.Args(), id)...)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrInvalidReference
		}
		return fmt.Errorf("update order: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		err = domain.ErrOrderNotFound
		return err
	}

	for _, d := range details {
		res, err = tx.ExecContext(ctx, `
			UPDATE order_details
			SET unit_price = $1,
			    quantity = $2,
			    discount = $3
			WHERE id = $4
			  AND order_id = $5
		`, d.UnitPrice, d.Quantity, d.Discount, d.ID, id)
		if err != nil {
			return fmt.Errorf("update order detail: %w", err)
		}
		affected, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("detail rows affected: %w", err)
		}
		if affected == 0 {
			err = fmt.Errorf("detail %s: %w", d.ID, domain.ErrOrderUpdateFailed)
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update order: %w", err)
	}

	return nil
}

// DeleteOrder удаляет заказ каскадно: сначала позиции, затем шапку,
// в одной транзакции, чтобы не оставлять осиротевших строк.
func (r *orderRepository) DeleteOrder(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM order_details WHERE order_id = $1`, id); err != nil {
		return fmt.Errorf("delete order details: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		err = domain.ErrOrderNotFound
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete order: %w", err)
	}

	return nil
}

// patchSetClause переводит заполненные поля patch в присваивания с
// фиксированными именами колонок.
func patchSetClause(p domain.OrderPatch) *setClause {
	var set setClause
	if p.CustomerID != nil {
		set.Set("customer_id", *p.CustomerID)
	}
	if p.EmployeeID != nil {
		set.Set("employee_id", *p.EmployeeID)
	}
	if p.OrderDate != nil {
		set.Set("order_date", *p.OrderDate)
	}
	if p.RequiredDate != nil {
		set.Set("required_date", *p.RequiredDate)
	}
	if p.ShippedDate != nil {
		set.Set("shipped_date", *p.ShippedDate)
	}
	if p.Freight != nil {
		set.Set("freight", *p.Freight)
	}
	if p.ShipName != nil {
		set.Set("ship_name", *p.ShipName)
	}
	if p.ShipAddress != nil {
		set.Set("ship_address", *p.ShipAddress)
	}
	if p.ShipCity != nil {
		set.Set("ship_city", *p.ShipCity)
	}
	if p.ShipRegion != nil {
		set.Set("ship_region", *p.ShipRegion)
	}
	if p.ShipPostalCode != nil {
		set.Set("ship_postal_code", *p.ShipPostalCode)
	}
	if p.ShipCountry != nil {
		set.Set("ship_country", *p.ShipCountry)
	}
	return &set
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}

var _ domain.OrderRepository = (*orderRepository)(nil)
