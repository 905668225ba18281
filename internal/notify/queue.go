package notify

import (
	"context"
	"sync"
	"time"

	"oxigo-server/internal/logging"
)

// Recorder receives delivery outcomes, typically Prometheus counters.
type Recorder interface {
	NotificationSent(kind string)
	NotificationFailed(kind string)
	NotificationDropped(kind string)
}

type noopRecorder struct{}

func (noopRecorder) NotificationSent(string)    {}
func (noopRecorder) NotificationFailed(string)  {}
func (noopRecorder) NotificationDropped(string) {}

type QueueOptions struct {
	Workers     int
	Size        int
	MaxAttempts int
	RetryDelay  time.Duration
	Recorder    Recorder
}

// Queue is a bounded in-process outbox drained by worker goroutines.
// Enqueue never blocks: a full or closed queue drops the message.
type Queue struct {
	dispatcher Dispatcher
	log        logging.Logger
	opts       QueueOptions

	mu     sync.RWMutex
	closed bool
	ch     chan Message

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewQueue(d Dispatcher, log logging.Logger, opts QueueOptions) *Queue {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Size < 1 {
		opts.Size = 1
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.Recorder == nil {
		opts.Recorder = noopRecorder{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		dispatcher: d,
		log:        log,
		opts:       opts,
		ch:         make(chan Message, opts.Size),
		ctx:        ctx,
		cancel:     cancel,
	}
	for i := 0; i < opts.Workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	return q
}

func (q *Queue) Enqueue(msg Message) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.log.Warn(q.ctx, "notification dropped, queue closed", "kind", msg.Kind, "key", msg.Key())
		q.opts.Recorder.NotificationDropped(string(msg.Kind))
		return false
	}
	select {
	case q.ch <- msg:
		return true
	default:
		q.log.Warn(q.ctx, "notification dropped, queue full", "kind", msg.Kind, "key", msg.Key())
		q.opts.Recorder.NotificationDropped(string(msg.Kind))
		return false
	}
}

// Close stops accepting messages and waits for pending ones until ctx is
// done, after which in-flight retries are abandoned.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.cancel()
		return nil
	case <-ctx.Done():
		q.cancel()
		<-done
		return ctx.Err()
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for msg := range q.ch {
		q.deliver(msg)
	}
}

func (q *Queue) deliver(msg Message) {
	kind := string(msg.Kind)
	for attempt := 1; attempt <= q.opts.MaxAttempts; attempt++ {
		if q.dispatcher.Send(q.ctx, msg) {
			q.opts.Recorder.NotificationSent(kind)
			return
		}
		q.log.Warn(q.ctx, "notification delivery failed", "kind", kind, "key", msg.Key(), "attempt", attempt)
		if attempt == q.opts.MaxAttempts {
			break
		}
		select {
		case <-time.After(q.opts.RetryDelay * time.Duration(attempt)):
		case <-q.ctx.Done():
			q.opts.Recorder.NotificationFailed(kind)
			return
		}
	}
	q.log.Error(q.ctx, "notification abandoned", "kind", kind, "key", msg.Key(), "attempts", q.opts.MaxAttempts)
	q.opts.Recorder.NotificationFailed(kind)
}
