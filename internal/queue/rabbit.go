package queue

import (
	"context"
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// SweepJob asks a worker to sweep one user's integration.
type SweepJob struct {
	UserID string `json:"user_id"`
}

type Client interface {
	Publish(ctx context.Context, job SweepJob) error
	Consume(ctx context.Context) (<-chan SweepJob, error)
	Close() error
}

type rabbitClient struct {
	conn *amqp.Connection
	q    amqp.Queue
}

// NewRabbitClient connects to RabbitMQ and declares a durable queue with the
// given name.
func NewRabbitClient(url string, queueName string) (Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	q, err := ch.QueueDeclare(
		queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	// close channel; we'll open new channels for publish/consume
	ch.Close()
	return &rabbitClient{conn: conn, q: q}, nil
}

func (r *rabbitClient) Publish(ctx context.Context, job SweepJob) error {
	ch, err := r.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()
	body, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return ch.PublishWithContext(ctx,
		"", r.q.Name, false, false,
		amqp.Publishing{ContentType: "application/json", Body: body},
	)
}

func (r *rabbitClient) Consume(ctx context.Context) (<-chan SweepJob, error) {
	ch, err := r.conn.Channel()
	if err != nil {
		return nil, err
	}
	msgs, err := ch.Consume(r.q.Name, "", false, false, false, false, nil)
	if err != nil {
		ch.Close()
		return nil, err
	}
	out := make(chan SweepJob)
	go func() {
		defer ch.Close()
		defer close(out)
		for d := range msgs {
			var job SweepJob
			if err := json.Unmarshal(d.Body, &job); err != nil {
				log.Printf("queue: dropping malformed sweep job: %v", err)
				d.Nack(false, false)
				continue
			}
			select {
			case out <- job:
				d.Ack(false)
			case <-ctx.Done():
				d.Nack(false, true)
				return
			}
		}
	}()
	return out, nil
}

func (r *rabbitClient) Close() error {
	if r.conn == nil {
		return nil
	}
	return r.conn.Close()
}
