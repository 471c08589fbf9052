package queue

import (
	"context"

	"github.com/redis/go-redis/v9"
)

type Producer interface {
	Enqueue(ctx context.Context, job Job) error
}

type RedisProducer struct {
	Redis redis.UniversalClient
}

func NewProducer(redis redis.UniversalClient) Producer {
	return &RedisProducer{Redis: redis}
}

// Enqueue schedules job on the sorted set, scored by the unix time it
// becomes due.
func (p *RedisProducer) Enqueue(ctx context.Context, job Job) error {
	jobBytes, err := json.Marshal(job)
	if err != nil {
		return err
	}

	return p.Redis.ZAdd(ctx, PriorityQueueKey, redis.Z{
		Score:  float64(job.RunAt),
		Member: jobBytes,
	}).Err()
}
