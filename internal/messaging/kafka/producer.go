package kafka

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/northwind/internal/domain"
)

// Producer публикует события заказов в Kafka. Публикация выполняется после
// успешного коммита и никогда не влияет на результат операции.
type Producer struct {
	producer sarama.SyncProducer
	logger   *log.Entry
}

// NewProducer создаёт идемпотентный sync-producer.
func NewProducer(brokers []string) (*Producer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Idempotent = true
	// Идемпотентность требует не более одного запроса в полёте.
	config.Net.MaxOpenRequests = 1

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	return &Producer{
		producer: producer,
		logger:   log.WithField("component", "kafka-producer"),
	}, nil
}

// OrderCreated публикует событие создания заказа.
func (p *Producer) OrderCreated(orderID int64, customerID *string) {
	p.publish(OrderEvent{
		EventID:    uuid.NewString(),
		EventType:  EventTypeOrderCreated,
		OrderID:    orderID,
		CustomerID: customerID,
		Timestamp:  time.Now().UTC(),
	})
}

// OrderUpdated публикует событие обновления заказа.
func (p *Producer) OrderUpdated(orderID int64) {
	p.publish(OrderEvent{
		EventID:   uuid.NewString(),
		EventType: EventTypeOrderUpdated,
		OrderID:   orderID,
		Timestamp: time.Now().UTC(),
	})
}

// OrderDeleted публикует событие удаления заказа.
func (p *Producer) OrderDeleted(orderID int64) {
	p.publish(OrderEvent{
		EventID:   uuid.NewString(),
		EventType: EventTypeOrderDeleted,
		OrderID:   orderID,
		Timestamp: time.Now().UTC(),
	})
}

func (p *Producer) publish(event OrderEvent) {
	eventData, err := json.Marshal(event)
	if err != nil {
		p.logger.WithError(err).Error("failed to marshal order event")
		return
	}

	msg := &sarama.ProducerMessage{
		Topic:     TopicOrderEvents,
		Key:       sarama.StringEncoder(strconv.FormatInt(event.OrderID, 10)),
		Value:     sarama.ByteEncoder(eventData),
		Timestamp: event.Timestamp,
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.WithError(err).WithFields(log.Fields{
			"event_type": event.EventType,
			"order_id":   event.OrderID,
		}).Error("failed to send order event to kafka")
		return
	}

	p.logger.WithFields(log.Fields{
		"event_type": event.EventType,
		"order_id":   event.OrderID,
		"partition":  partition,
		"offset":     offset,
	}).Debug("order event sent to kafka")
}

// Close закрывает producer.
func (p *Producer) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("close kafka producer: %w", err)
	}
	return nil
}

var _ domain.EventPublisher = (*Producer)(nil)
