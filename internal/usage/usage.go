package usage

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/edvm/autoblogger/config"
	"github.com/edvm/autoblogger/internal/workflow"
)

// Recorder keeps per-user generation counters in Redis so quota checks and
// dashboards never need a Postgres scan.
type Recorder struct {
	rdb    *redis.Client
	logger *log.Logger
}

// Totals is a snapshot of one user's generation activity.
type Totals struct {
	Total     int64 `json:"total"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
}

// NewRecorder connects to Redis and verifies the connection.
func NewRecorder(cfg config.RedisConfig) (*Recorder, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: timeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Recorder{
		rdb:    rdb,
		logger: log.New(log.Writer(), "[USAGE] ", log.LstdFlags),
	}, nil
}

func userKey(userID int64, field string) string {
	return fmt.Sprintf("usage:user:%d:%s", userID, field)
}

// Record bumps the user's counters for one finished run and remembers which
// user owns the run. All writes go through one pipeline round trip.
func (r *Recorder) Record(ctx context.Context, userID int64, runID string, status workflow.Status) error {
	pipe := r.rdb.TxPipeline()
	pipe.Incr(ctx, userKey(userID, "total"))
	pipe.Incr(ctx, userKey(userID, string(status)))
	pipe.Set(ctx, fmt.Sprintf("usage:run:%s:user", runID), userID, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("recording usage for user %d: %w", userID, err)
	}
	r.logger.Printf("user %d run %s recorded as %s", userID, runID, status)
	return nil
}

// Totals reads the user's counters. Missing keys read as zero.
func (r *Recorder) Totals(ctx context.Context, userID int64) (Totals, error) {
	pipe := r.rdb.Pipeline()
	total := pipe.Get(ctx, userKey(userID, "total"))
	completed := pipe.Get(ctx, userKey(userID, string(workflow.StatusCompleted)))
	failed := pipe.Get(ctx, userKey(userID, string(workflow.StatusFailed)))
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return Totals{}, fmt.Errorf("reading usage for user %d: %w", userID, err)
	}

	t := Totals{}
	t.Total, _ = total.Int64()
	t.Completed, _ = completed.Int64()
	t.Failed, _ = failed.Int64()
	return t, nil
}

// Close releases the Redis connection.
func (r *Recorder) Close() error {
	return r.rdb.Close()
}
