package queue

import (
	"fmt"
	"log"

	"github.com/streadway/amqp"
)

// maxDeliveryRetries bounds broker-side requeues per message.
const maxDeliveryRetries = 3

// AmqpQueue implements Queue on RabbitMQ with durable queues and
// manual acks.
type AmqpQueue struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewAmqpQueue dials the broker and opens a channel
func NewAmqpQueue(url string) (*AmqpQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	return &AmqpQueue{conn: conn, ch: ch}, nil
}

// Close tears down the channel and connection
func (q *AmqpQueue) Close() {
	q.ch.Close()
	q.conn.Close()
}

func (q *AmqpQueue) declare(topic string) error {
	_, err := q.ch.QueueDeclare(
		topic,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	return err
}

func (q *AmqpQueue) Publish(topic string, payload []byte) error {
	if err := q.declare(topic); err != nil {
		return err
	}
	return q.ch.Publish(
		"",    // default exchange
		topic, // routing key
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         payload,
		})
}

func (q *AmqpQueue) Subscribe(topic string, handler func(payload []byte) error) error {
	if err := q.declare(topic); err != nil {
		return err
	}

	msgs, err := q.ch.Consume(
		topic,
		"",
		false, // autoAck off for reliability
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		for d := range msgs {
			if err := handler(d.Body); err != nil {
				var retryCount int32
				if v, ok := d.Headers["x-retry-count"].(int32); ok {
					retryCount = v
				}
				if retryCount < maxDeliveryRetries {
					log.Printf("[AmqpQueue] handler failed on %s, requeueing: %v", topic, err)
					d.Nack(false, true)
					continue
				}
				log.Printf("[AmqpQueue] dropping message on %s after %d retries: %v", topic, retryCount, err)
			}
			d.Ack(false)
		}
	}()
	return nil
}
