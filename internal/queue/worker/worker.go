package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/surpriselly/authsvc/internal/jobs"
	"github.com/surpriselly/authsvc/internal/observability"
	"github.com/surpriselly/authsvc/internal/queue"
	"github.com/surpriselly/authsvc/internal/queue/redisclient"
)

type Config struct {
	Queue         string
	PopTimeout    time.Duration
	Concurrency   int
	ShutdownGrace time.Duration
}

// Worker drains the OTP email queue and hands each job to the handler.
// Failed jobs are re-queued with a backoff delay until MaxTries is spent.
type Worker struct {
	cfg     Config
	client  *redisclient.Client
	handler queue.Handler
	log     *slog.Logger
	prom    *observability.Prom
}

func New(cfg Config, client *redisclient.Client, handler queue.Handler, log *slog.Logger, prom *observability.Prom) *Worker {
	if cfg.Queue == "" {
		cfg.Queue = queue.OTPEmailQueue
	}
	if cfg.PopTimeout <= 0 {
		cfg.PopTimeout = 2 * time.Second
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 2
	}
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = 10 * time.Second
	}

	return &Worker{
		cfg:     cfg,
		client:  client,
		handler: handler,
		log:     log,
		prom:    prom,
	}
}

func (w *Worker) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	for i := 0; i < w.cfg.Concurrency; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()
			w.loop(ctx)
		}()
	}

	<-ctx.Done()
	w.log.Info("worker received shutdown signal")

	done := make(chan struct{})

	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(w.cfg.ShutdownGrace):
		w.log.Error("worker shutdown grace exceeded")
		return nil
	}
}

func (w *Worker) loop(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		processed, err := w.ProcessOne(ctx)

		if err != nil {
			w.log.Error("pop error", "err", err)

			// avoid a hot loop when redis is down
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		_ = processed
	}
}

// ProcessOne pops and executes a single job. Returns false when the pop
// timed out empty.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	b, ok, err := w.client.Pop(ctx, w.cfg.Queue, w.cfg.PopTimeout)

	if err != nil {
		if ctx.Err() != nil {
			return false, nil
		}
		return false, err
	}

	if !ok {
		return false, nil
	}

	j, err := jobs.Decode(b)

	if err != nil {
		// undecodable jobs can never succeed, drop them
		w.log.Error("dropping undecodable job", "err", err)
		w.observe("failed", 0)
		return true, nil
	}

	start := time.Now()

	execCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = w.handler(execCtx, j)
	cancel()

	if err != nil {
		w.handleFailure(ctx, j, err)
		w.observe("retry", time.Since(start))
		return true, nil
	}

	w.observe("sent", time.Since(start))
	return true, nil
}

func (w *Worker) handleFailure(ctx context.Context, j jobs.Job, cause error) {
	j.Attempts++

	if j.Attempts >= j.MaxTries {
		w.log.Error("job failed permanently", "job_id", j.ID, "type", j.Type, "attempts", j.Attempts, "err", cause)
		w.observe("failed", 0)
		return
	}

	delay := ExponentialBackoff(j.Attempts - 1)

	w.log.Warn("job failed, will retry", "job_id", j.ID, "type", j.Type, "attempt", j.Attempts, "delay", delay.String(), "err", cause)

	select {
	case <-ctx.Done():
		// push straight back so the job survives shutdown
	case <-time.After(delay):
	}

	b, err := jobs.Encode(j)

	if err != nil {
		w.log.Error("re-encode failed", "job_id", j.ID, "err", err)
		return
	}

	pushCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := w.client.Push(pushCtx, w.cfg.Queue, b); err != nil {
		w.log.Error("requeue failed, job lost", "job_id", j.ID, "err", err)
	}
}

func (w *Worker) observe(result string, d time.Duration) {
	if w.prom != nil {
		w.prom.ObserveDelivery(result, d)
	}
}
