// Package scheduler runs delayed work through asynq on Redis. The API
// process enqueues tasks with Client; a separate worker process drains
// them.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"carforsales_backend/platform/config"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

type Client struct {
	client *asynq.Client
	queue  string
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	queue := cfg.GetQueueName()
	if queue == "" {
		queue = "default"
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queue,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// ScheduleLeadFollowUp enqueues a follow-up for delivery at the given
// time and returns the task id.
func (c *Client) ScheduleLeadFollowUp(ctx context.Context, followUpID, leadID uuid.UUID, at time.Time) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("scheduler not configured")
	}

	task, err := NewLeadFollowUpTask(LeadFollowUpPayload{
		FollowUpID: followUpID.String(),
		LeadID:     leadID.String(),
	})
	if err != nil {
		return "", err
	}

	info, err := c.client.EnqueueContext(ctx, task, asynq.ProcessAt(at), asynq.Queue(c.queue))
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

func redisClientOpt(redisURL string) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}
