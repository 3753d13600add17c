//go:build integration

package jobs_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"pulseboard/internal/jobs"
	"pulseboard/internal/platform/config"
	platformredis "pulseboard/internal/platform/redis"
	"pulseboard/pkg/testutil/containers"
)

type RedisEnqueuerSuite struct {
	suite.Suite
	redis    *containers.RedisContainer
	client   *platformredis.Client
	enqueuer *jobs.RedisEnqueuer
}

func TestRedisEnqueuerSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisEnqueuerSuite))
}

func (s *RedisEnqueuerSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())

	client, err := platformredis.New(config.RedisConfig{URL: s.redis.Addr, PoolSize: 4})
	s.Require().NoError(err)
	s.client = client
	s.enqueuer = jobs.NewRedisEnqueuer(client)
}

func (s *RedisEnqueuerSuite) TearDownSuite() {
	if s.client != nil {
		s.Require().NoError(s.client.Close())
	}
}

func (s *RedisEnqueuerSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

// TestEnqueueWritesBullPayload checks the wait-list key and the job envelope
// the downstream BullMQ worker expects.
func (s *RedisEnqueuerSuite) TestEnqueueWritesBullPayload() {
	ctx := context.Background()
	job := jobs.Job{
		Sector:   "marketing",
		Action:   "CREATE",
		RecordID: uuid.New(),
		DateRef:  "2026-03-01",
		UserID:   uuid.New(),
	}

	s.Require().NoError(s.enqueuer.Enqueue(ctx, job))

	raw, err := s.redis.Client.RPop(ctx, "bull:kpi-processing:wait").Result()
	s.Require().NoError(err)

	var payload struct {
		Name string `json:"name"`
		Data struct {
			Sector  string `json:"sector"`
			Action  string `json:"action"`
			DataID  string `json:"dataId"`
			DateRef string `json:"dateRef"`
			UserID  string `json:"userId"`
		} `json:"data"`
		Opts struct {
			JobID    string `json:"jobId"`
			Attempts int    `json:"attempts"`
		} `json:"opts"`
	}
	s.Require().NoError(json.Unmarshal([]byte(raw), &payload))

	s.Equal("calculate-kpi", payload.Name)
	s.Equal("marketing", payload.Data.Sector)
	s.Equal("CREATE", payload.Data.Action)
	s.Equal(job.RecordID.String(), payload.Data.DataID)
	s.Equal("2026-03-01", payload.Data.DateRef)
	s.Equal(job.UserID.String(), payload.Data.UserID)
	s.Equal("marketing-CREATE-"+job.RecordID.String(), payload.Opts.JobID)
	s.Equal(3, payload.Opts.Attempts)
}

func (s *RedisEnqueuerSuite) TestEnqueueOrderIsFIFOForWorker() {
	ctx := context.Background()
	first := jobs.Job{Sector: "sales", Action: "CREATE", RecordID: uuid.New(), UserID: uuid.New()}
	second := jobs.Job{Sector: "sales", Action: "UPDATE", RecordID: uuid.New(), UserID: uuid.New()}

	s.Require().NoError(s.enqueuer.Enqueue(ctx, first))
	s.Require().NoError(s.enqueuer.Enqueue(ctx, second))

	// BullMQ consumes with RPOP, so the first job enqueued pops first.
	raw, err := s.redis.Client.RPop(ctx, "bull:kpi-processing:wait").Result()
	s.Require().NoError(err)
	s.Contains(raw, first.RecordID.String())

	raw, err = s.redis.Client.RPop(ctx, "bull:kpi-processing:wait").Result()
	s.Require().NoError(err)
	s.Contains(raw, second.RecordID.String())
}
