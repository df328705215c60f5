package queue

import (
	"context"
	"log/slog"
	"time"

	"github.com/surpriselly/authsvc/internal/jobs"
	"github.com/surpriselly/authsvc/internal/queue/redisclient"
)

// OTPEmailQueue is the redis list the API produces to and the mail worker
// consumes from.
const OTPEmailQueue = "authsvc:jobs:otp_email"

// Enqueuer is what the forgot-password handler sees. The handler never waits
// on delivery; Enqueue must return as soon as the job is accepted.
type Enqueuer interface {
	Enqueue(ctx context.Context, j jobs.Job) error
}

// RedisProducer pushes jobs onto the shared redis list.
type RedisProducer struct {
	client *redisclient.Client
	queue  string
}

func NewRedisProducer(client *redisclient.Client) *RedisProducer {
	return &RedisProducer{client: client, queue: OTPEmailQueue}
}

func (p *RedisProducer) Enqueue(ctx context.Context, j jobs.Job) error {
	b, err := jobs.Encode(j)

	if err != nil {
		return err
	}

	return p.client.Push(ctx, p.queue, b)
}

// Handler executes one job.
type Handler func(ctx context.Context, j jobs.Job) error

// InProcessDispatcher runs jobs on a background goroutine inside the API
// process. Fallback for deployments without redis; delivery still never
// blocks the request path.
type InProcessDispatcher struct {
	ch      chan jobs.Job
	handler Handler
	log     *slog.Logger
}

func NewInProcessDispatcher(handler Handler, log *slog.Logger) *InProcessDispatcher {
	return &InProcessDispatcher{
		ch:      make(chan jobs.Job, 64),
		handler: handler,
		log:     log,
	}
}

func (d *InProcessDispatcher) Enqueue(_ context.Context, j jobs.Job) error {
	select {
	case d.ch <- j:
		return nil
	default:
		// a full buffer means the notifier is badly stuck; dropping with a
		// log line is better than stalling forgot-password responses
		d.log.Error("dispatch buffer full, dropping job", "job_id", j.ID, "type", j.Type)
		return nil
	}
}

// Run consumes until ctx is done. Call in a goroutine from main.
func (d *InProcessDispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case j := <-d.ch:
			execCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			err := d.handler(execCtx, j)
			cancel()

			if err != nil {
				d.log.Error("in-process job failed", "job_id", j.ID, "type", j.Type, "err", err)
			}
		}
	}
}
