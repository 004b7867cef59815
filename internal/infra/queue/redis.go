package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"promo-planner/internal/domain"
)

// RedisPlanQueue реализует очередь задач планирования на базе Redis lists.
type RedisPlanQueue struct {
	client *redis.Client
	key    string
}

// NewRedisPlanQueue создаёт очередь по указанному ключу.
func NewRedisPlanQueue(client *redis.Client, key string) *RedisPlanQueue {
	return &RedisPlanQueue{client: client, key: key}
}

// Enqueue публикует задачу в очередь.
func (q *RedisPlanQueue) Enqueue(ctx context.Context, job domain.PlanJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("push job: %w", err)
	}
	return nil
}

// Pop блокирующе читает задачу из очереди.
func (q *RedisPlanQueue) Pop(ctx context.Context) (domain.PlanJob, error) {
	for {
		if err := ctx.Err(); err != nil {
			return domain.PlanJob{}, err
		}

		res, err := q.client.BRPop(ctx, time.Second, q.key).Result()
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				if ctx.Err() != nil {
					return domain.PlanJob{}, ctx.Err()
				}
				continue
			}
			if errors.Is(err, redis.Nil) {
				continue
			}
			return domain.PlanJob{}, err
		}
		if len(res) != 2 {
			return domain.PlanJob{}, errors.New("redis queue: unexpected response")
		}
		var job domain.PlanJob
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			return domain.PlanJob{}, fmt.Errorf("decode job: %w", err)
		}
		return job, nil
	}
}
