package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	platformredis "pulseboard/internal/platform/redis"
)

const (
	queueName = "kpi-processing"
	jobName   = "calculate-kpi"
	attempts  = 3
)

// RedisEnqueuer pushes jobs onto the BullMQ wait list consumed by the KPI
// worker. Payload shape and list key follow BullMQ's conventions; the worker
// deduplicates retried submissions by jobId.
type RedisEnqueuer struct {
	client *platformredis.Client
}

func NewRedisEnqueuer(client *platformredis.Client) *RedisEnqueuer {
	return &RedisEnqueuer{client: client}
}

type bullJob struct {
	Name string   `json:"name"`
	Data bullData `json:"data"`
	Opts bullOpts `json:"opts"`
}

type bullData struct {
	Sector  string `json:"sector"`
	Action  string `json:"action"`
	DataID  string `json:"dataId"`
	DateRef string `json:"dateRef,omitempty"`
	UserID  string `json:"userId"`
}

type bullOpts struct {
	JobID    string `json:"jobId"`
	Attempts int    `json:"attempts"`
}

func (e *RedisEnqueuer) Enqueue(ctx context.Context, job Job) error {
	payload := bullJob{
		Name: jobName,
		Data: bullData{
			Sector:  job.Sector,
			Action:  job.Action,
			DataID:  job.RecordID.String(),
			DateRef: job.DateRef,
			UserID:  job.UserID.String(),
		},
		Opts: bullOpts{
			JobID:    fmt.Sprintf("%s-%s-%s", job.Sector, job.Action, job.RecordID),
			Attempts: attempts,
		},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal recompute job: %w", err)
	}
	key := fmt.Sprintf("bull:%s:wait", queueName)
	if err := e.client.LPush(ctx, key, raw).Err(); err != nil {
		return fmt.Errorf("enqueue recompute job: %w", err)
	}
	return nil
}
