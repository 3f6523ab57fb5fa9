package services

import (
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/smartcanteen/canteen-app/models"
	"github.com/smartcanteen/canteen-app/utils"
)

const (
	EventOrderPlaced        = "order_placed"
	EventOrderStatusChanged = "order_status_changed"
)

type OrderEvent struct {
	OrderID   uint               `json:"order_id"`
	StudentID uint               `json:"student_id"`
	Type      string             `json:"type"`
	Status    models.OrderStatus `json:"status"`
	Total     float64            `json:"total"`
	Occurred  time.Time          `json:"occurred"`
}

// OrderEventPublisher feeds the staff dashboard's event stream. The broker
// is optional infrastructure: without one the process runs with the no-op
// publisher and students simply poll.
type OrderEventPublisher interface {
	PublishOrderEvent(event OrderEvent) error
	Close()
}

type NoopPublisher struct{}

func (NoopPublisher) PublishOrderEvent(OrderEvent) error { return nil }
func (NoopPublisher) Close()                             {}

type AMQPPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

func NewAMQPPublisher(url, queue string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &AMQPPublisher{conn: conn, channel: ch, queue: queue}, nil
}

func (p *AMQPPublisher) PublishOrderEvent(event OrderEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		ContentType:  "application/json",
		Body:         body,
	}

	return p.channel.Publish(
		"",      // default exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		msg,
	)
}

func (p *AMQPPublisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

// PublishAsync publishes without blocking the request. A publish failure
// only costs an event, never the order, so it is logged and dropped.
func PublishAsync(pub OrderEventPublisher, event OrderEvent) {
	go func() {
		if err := pub.PublishOrderEvent(event); err != nil {
			utils.ErrorLogger.Printf("failed to publish order event %s for order %d: %v",
				event.Type, event.OrderID, err)
		}
	}()
}
