package orders

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/northwind/internal/domain"
	"github.com/vladislavdragonenkov/northwind/internal/metrics"
)

// Service — прикладной слой над репозиторием заказов: логирование, метрики
// и публикация событий вокруг операций хранилища.
type Service struct {
	repo      domain.OrderRepository
	query     domain.OrderQuery
	publisher domain.EventPublisher
	metrics   *metrics.OrderMetrics
	logger    *log.Entry
}

// NewService собирает Service. publisher может быть nil, тогда события
// не публикуются.
func NewService(
	repo domain.OrderRepository,
	query domain.OrderQuery,
	publisher domain.EventPublisher,
	m *metrics.OrderMetrics,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.WithField("component", "orders-service")
	}
	return &Service{
		repo:      repo,
		query:     query,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

// GetOrder возвращает обогащённый заказ по идентификатору.
func (s *Service) GetOrder(ctx context.Context, id int64) (domain.OrderInfo, error) {
	start := time.Now()
	info, err := s.repo.GetOrder(ctx, id)
	s.record("get_order", start, err)
	if err != nil {
		if !domain.IsNotFound(err) {
			s.logger.WithError(err).WithField("order_id", id).Error("get order failed")
		}
		return domain.OrderInfo{}, err
	}
	return info, nil
}

// GetOrderDetails возвращает позиции заказа.
func (s *Service) GetOrderDetails(ctx context.Context, id int64) ([]domain.OrderDetailInfo, error) {
	start := time.Now()
	details, err := s.repo.GetOrderDetails(ctx, id)
	s.record("get_order_details", start, err)
	if err != nil {
		s.logger.WithError(err).WithField("order_id", id).Error("get order details failed")
		return nil, err
	}
	return details, nil
}

// GetOrderWithDetails возвращает заказ вместе с позициями.
func (s *Service) GetOrderWithDetails(ctx context.Context, id int64) (domain.OrderWithDetails, error) {
	start := time.Now()
	result, err := s.repo.GetOrderWithDetails(ctx, id)
	s.record("get_order_with_details", start, err)
	if err != nil {
		if !domain.IsNotFound(err) {
			s.logger.WithError(err).WithField("order_id", id).Error("get order with details failed")
		}
		return domain.OrderWithDetails{}, err
	}
	return result, nil
}

// CreateOrder создаёт заказ с позициями и публикует событие о создании.
func (s *Service) CreateOrder(ctx context.Context, order domain.Order, details []domain.OrderDetail) (int64, error) {
	start := time.Now()
	id, err := s.repo.CreateOrder(ctx, order, details)
	s.record("create_order", start, err)
	if err != nil {
		if s.metrics != nil && !domain.IsValidation(err) {
			s.metrics.RecordRollback()
		}
		s.logger.WithError(err).Warn("create order failed")
		return 0, err
	}

	s.logger.WithFields(log.Fields{
		"order_id": id,
		"details":  len(details),
	}).Info("order created")

	if s.publisher != nil {
		s.publisher.OrderCreated(id, order.CustomerID)
	}
	return id, nil
}

// UpdateOrder применяет patch и обновления позиций одним пакетом.
func (s *Service) UpdateOrder(ctx context.Context, id int64, patch domain.OrderPatch, details []domain.OrderDetail) error {
	start := time.Now()
	err := s.repo.UpdateOrder(ctx, id, patch, details)
	s.record("update_order", start, err)
	if err != nil {
		if s.metrics != nil && !domain.IsValidation(err) && !domain.IsNotFound(err) {
			s.metrics.RecordRollback()
		}
		s.logger.WithError(err).WithField("order_id", id).Warn("update order failed")
		return err
	}

	s.logger.WithField("order_id", id).Info("order updated")

	if s.publisher != nil {
		s.publisher.OrderUpdated(id)
	}
	return nil
}

// DeleteOrder удаляет заказ вместе с позициями.
func (s *Service) DeleteOrder(ctx context.Context, id int64) error {
	start := time.Now()
	err := s.repo.DeleteOrder(ctx, id)
	s.record("delete_order", start, err)
	if err != nil {
		if !domain.IsNotFound(err) {
			s.logger.WithError(err).WithField("order_id", id).Error("delete order failed")
		}
		return err
	}

	s.logger.WithField("order_id", id).Info("order deleted")

	if s.publisher != nil {
		s.publisher.OrderDeleted(id)
	}
	return nil
}

// ListOrders возвращает страницу заказов.
func (s *Service) ListOrders(ctx context.Context, opts domain.OrderListOptions) ([]domain.OrderListItem, error) {
	start := time.Now()
	items, err := s.query.ListOrders(ctx, opts)
	s.record("list_orders", start, err)
	if err != nil {
		if !domain.IsValidation(err) {
			s.logger.WithError(err).Error("list orders failed")
		}
		return nil, err
	}
	return items, nil
}

// ListCustomerOrders возвращает страницу заказов одного клиента.
func (s *Service) ListCustomerOrders(ctx context.Context, customerID string, opts domain.OrderListOptions) ([]domain.OrderListItem, error) {
	start := time.Now()
	items, err := s.query.ListCustomerOrders(ctx, customerID, opts)
	s.record("list_customer_orders", start, err)
	if err != nil {
		if !domain.IsValidation(err) {
			s.logger.WithError(err).WithField("customer_id", customerID).Error("list customer orders failed")
		}
		return nil, err
	}
	return items, nil
}

func (s *Service) record(op string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordOp(op, time.Since(start), err)
}
