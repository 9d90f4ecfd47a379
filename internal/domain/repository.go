package domain

import "context"

// OrderRepository описывает требования к хранилищу агрегата заказа.
type OrderRepository interface {
	// GetOrder возвращает заказ, обогащённый именами клиента и сотрудника
	// и суммой позиций, или ErrOrderNotFound.
	GetOrder(ctx context.Context, id int64) (OrderInfo, error)
	// GetOrderDetails возвращает позиции заказа в стабильном порядке;
	// пустой срез, если позиций нет.
	GetOrderDetails(ctx context.Context, id int64) ([]OrderDetailInfo, error)
	// GetOrderWithDetails объединяет оба чтения; взаимная согласованность
	// под конкурентной записью не гарантируется.
	GetOrderWithDetails(ctx context.Context, id int64) (OrderWithDetails, error)
	// CreateOrder атомарно вставляет заказ и все его позиции, возвращая
	// выданный хранилищем идентификатор. Любой сбой откатывает весь пакет.
	CreateOrder(ctx context.Context, order Order, details []OrderDetail) (int64, error)
	// UpdateOrder атомарно применяет patch к заказу и обновляет переданные
	// позиции по их составным ключам. Пустой patch отклоняется.
	UpdateOrder(ctx context.Context, id int64, patch OrderPatch, details []OrderDetail) error
	// DeleteOrder удаляет заказ вместе с его позициями в одной транзакции.
	DeleteOrder(ctx context.Context, id int64) error
}

// OrderQuery описывает постраничную выборку заказов со связанными сущностями.
type OrderQuery interface {
	// ListOrders возвращает страницу заказов, присоединяя название компании
	// клиента и фамилию сотрудника.
	ListOrders(ctx context.Context, opts OrderListOptions) ([]OrderListItem, error)
	// ListCustomerOrders сужает выборку до одного клиента; сортировка по
	// умолчанию — дата отгрузки по возрастанию, переопределения допустимы.
	ListCustomerOrders(ctx context.Context, customerID string, opts OrderListOptions) ([]OrderListItem, error)
}

// OrderListItem — строка постраничной выборки заказов.
type OrderListItem struct {
	Order
	CustomerCompany  *string
	EmployeeLastName *string
}
