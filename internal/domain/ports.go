package domain

// EventPublisher публикует события жизненного цикла заказа наружу.
// Публикация выполняется после успешного коммита и не влияет на результат
// самой операции.
type EventPublisher interface {
	OrderCreated(orderID int64, customerID *string)
	OrderUpdated(orderID int64)
	OrderDeleted(orderID int64)
}
