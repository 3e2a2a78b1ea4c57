package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"GatePass/internal/models"
)

const (
	workQueue = "gatepass.dispatch"
	waitQueue = "gatepass.dispatch.wait"
)

// AMQP is the broker-backed Queue used in production. Delayed delivery uses
// a wait queue whose messages carry a per-message TTL and dead-letter into
// the work queue once expired, so the broker keeps jobs across restarts.
type AMQP struct {
	retry RetryPolicy
	conn  *amqp.Connection

	pubMu sync.Mutex
	pub   *amqp.Channel

	deliveries <-chan amqp.Delivery

	inflightMu sync.Mutex
	inflight   map[string]amqp.Delivery

	done      chan struct{}
	closeOnce sync.Once
}

func NewAMQP(url string, retry RetryPolicy, prefetch int) (*AMQP, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}

	pub, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp publish channel: %w", err)
	}

	consume, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp consume channel: %w", err)
	}

	if _, err := pub.QueueDeclare(workQueue, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare work queue: %w", err)
	}

	// The broker only expires the message at the head of the wait queue, so
	// a short retry published behind a longer-delayed job dead-letters once
	// that job's TTL runs out. Delays can stretch but never shorten.
	if _, err := pub.QueueDeclare(waitQueue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": workQueue,
	}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare wait queue: %w", err)
	}

	if prefetch <= 0 {
		prefetch = 1
	}
	if err := consume.Qos(prefetch, 0, false); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}

	deliveries, err := consume.Consume(workQueue, "", false, false, false, false, nil)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("consume work queue: %w", err)
	}

	return &AMQP{
		retry:      retry,
		conn:       conn,
		pub:        pub,
		deliveries: deliveries,
		inflight:   make(map[string]amqp.Delivery),
		done:       make(chan struct{}),
	}, nil
}

func (q *AMQP) Enqueue(ctx context.Context, job models.DispatchJob, delay time.Duration) error {
	job.EligibleAt = time.Now().Add(delay)
	if job.MaxAttempts == 0 {
		job.MaxAttempts = q.retry.MaxAttempts
	}

	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    job.ID,
		Body:         body,
	}

	target := workQueue
	if delay > 0 {
		target = waitQueue
		pub.Expiration = strconv.FormatInt(delay.Milliseconds(), 10)
	}

	q.pubMu.Lock()
	defer q.pubMu.Unlock()
	if err := q.pub.Publish("", target, false, false, pub); err != nil {
		return fmt.Errorf("publish job %s: %w", job.ID, err)
	}
	return nil
}

func (q *AMQP) Claim(ctx context.Context) (models.DispatchJob, error) {
	for {
		select {
		case d, ok := <-q.deliveries:
			if !ok {
				return models.DispatchJob{}, ErrClosed
			}

			var job models.DispatchJob
			if err := json.Unmarshal(d.Body, &job); err != nil {
				// Unparseable payloads can never succeed; drop them.
				d.Ack(false)
				continue
			}

			q.inflightMu.Lock()
			q.inflight[job.ID] = d
			q.inflightMu.Unlock()
			return job, nil
		case <-ctx.Done():
			return models.DispatchJob{}, ctx.Err()
		case <-q.done:
			return models.DispatchJob{}, ErrClosed
		}
	}
}

func (q *AMQP) Complete(ctx context.Context, job models.DispatchJob) error {
	return q.settle(job)
}

func (q *AMQP) Fail(ctx context.Context, job models.DispatchJob, cause error) (bool, error) {
	job.Attempt++
	if !q.retry.Retryable(job, cause) {
		return false, q.settle(job)
	}
	if err := q.Enqueue(ctx, job, q.retry.NextDelay(job.Attempt)); err != nil {
		return false, err
	}
	return true, q.settle(job)
}

// settle acks the broker delivery backing an in-flight job.
func (q *AMQP) settle(job models.DispatchJob) error {
	q.inflightMu.Lock()
	d, ok := q.inflight[job.ID]
	delete(q.inflight, job.ID)
	q.inflightMu.Unlock()

	if !ok {
		return nil
	}
	return d.Ack(false)
}

func (q *AMQP) Close() error {
	var err error
	q.closeOnce.Do(func() {
		close(q.done)
		err = q.conn.Close()
	})
	return err
}
