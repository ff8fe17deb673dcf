package commerce

import (
	"context"
	"sync"

	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"
)

type WorkRequest struct {
	Event *stripe.Event
	Ctx   context.Context
}

// WorkerPool processes verified webhook events off the request path so the
// endpoint can acknowledge Stripe quickly.
type WorkerPool struct {
	jobs     chan WorkRequest
	workers  int
	commerce *StripeCommerce
	logger   *zap.Logger
	wg       sync.WaitGroup
	once     sync.Once
}

func NewWorkerPool(workers, queueSize int, commerce *StripeCommerce, logger *zap.Logger) *WorkerPool {
	return &WorkerPool{
		jobs:     make(chan WorkRequest, queueSize),
		workers:  workers,
		commerce: commerce,
		logger:   logger,
	}
}

func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.run(i + 1)
	}
}

func (wp *WorkerPool) run(id int) {
	defer wp.wg.Done()

	for job := range wp.jobs {
		wp.logger.Info("processing webhook event",
			zap.Int("worker_id", id),
			zap.String("event_type", string(job.Event.Type)),
			zap.String("event_id", job.Event.ID))

		err := wp.commerce.processEvent(job.Ctx, job.Event)
		wp.commerce.webhookLog.SetOutcome(job.Event.ID, err)

		if err != nil {
			wp.logger.Error("failed to process webhook event",
				zap.Error(err),
				zap.String("event_type", string(job.Event.Type)),
				zap.String("event_id", job.Event.ID))
		}
	}
}

// Submit enqueues an event, dropping it when the queue is full; Stripe retries
// deliveries that were not acknowledged as processed.
func (wp *WorkerPool) Submit(ctx context.Context, event *stripe.Event) bool {
	select {
	case wp.jobs <- WorkRequest{Event: event, Ctx: ctx}:
		return true
	default:
		wp.logger.Warn("webhook queue full, dropping event",
			zap.String("event_type", string(event.Type)),
			zap.String("event_id", event.ID))
		return false
	}
}

// Stop drains the queue and waits for in-flight events to finish.
func (wp *WorkerPool) Stop() {
	wp.once.Do(func() {
		close(wp.jobs)
	})
	wp.wg.Wait()
}
