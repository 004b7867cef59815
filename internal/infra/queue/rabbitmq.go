package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"promo-planner/internal/domain"
	"promo-planner/internal/infra/metrics"
)

const defaultPollInterval = time.Second

// RabbitPlanQueue реализует очередь задач планирования поверх AMQP.
type RabbitPlanQueue struct {
	conn         *amqp.Connection
	channel      *amqp.Channel
	queue        string
	pollInterval time.Duration
}

// NewRabbitPlanQueue подключается к брокеру и объявляет устойчивую очередь.
func NewRabbitPlanQueue(amqpURL, queue string) (*RabbitPlanQueue, error) {
	if amqpURL == "" {
		return nil, errors.New("amqp url is empty")
	}
	if queue == "" {
		return nil, errors.New("queue name is empty")
	}
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := channel.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	return &RabbitPlanQueue{
		conn:         conn,
		channel:      channel,
		queue:        queue,
		pollInterval: defaultPollInterval,
	}, nil
}

// Enqueue публикует задачу в очередь.
func (q *RabbitPlanQueue) Enqueue(ctx context.Context, job domain.PlanJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	start := time.Now()
	err = q.channel.PublishWithContext(ctx, "", q.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    job.ID,
		Body:         payload,
	})
	metrics.ObserveNetworkRequest("rabbitmq", "publish", q.queue, start, err)
	if err != nil {
		return fmt.Errorf("publish job: %w", err)
	}
	return nil
}

// Pop блокирующе читает задачу из очереди.
func (q *RabbitPlanQueue) Pop(ctx context.Context) (domain.PlanJob, error) {
	for {
		if err := ctx.Err(); err != nil {
			return domain.PlanJob{}, err
		}
		start := time.Now()
		delivery, ok, err := q.channel.Get(q.queue, true)
		metrics.ObserveNetworkRequest("rabbitmq", "get", q.queue, start, err)
		if err != nil {
			return domain.PlanJob{}, fmt.Errorf("fetch message: %w", err)
		}
		if !ok {
			select {
			case <-ctx.Done():
				return domain.PlanJob{}, ctx.Err()
			case <-time.After(q.pollInterval):
			}
			continue
		}
		var job domain.PlanJob
		if err := json.Unmarshal(delivery.Body, &job); err != nil {
			return domain.PlanJob{}, fmt.Errorf("decode job: %w", err)
		}
		return job, nil
	}
}

// Close закрывает канал и подключение.
func (q *RabbitPlanQueue) Close() error {
	if err := q.channel.Close(); err != nil {
		_ = q.conn.Close()
		return err
	}
	return q.conn.Close()
}
