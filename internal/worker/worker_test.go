package worker

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"thot/internal/amqp"
	"thot/internal/log"
)

type countingJob struct {
	calls atomic.Int32
	err   error
}

func (j *countingJob) Send(ctx context.Context) error {
	j.calls.Add(1)
	return j.err
}

func quietLogger() *log.Logger {
	return log.New(log.Config{Output: &bytes.Buffer{}})
}

func TestNewSchedulerRejectsBadSpec(t *testing.T) {
	if _, err := NewScheduler("every month", &countingJob{}, quietLogger()); err == nil {
		t.Fatal("expected error for invalid cron spec")
	}
	if _, err := NewScheduler("0 8 1 * * *", &countingJob{}, quietLogger()); err == nil {
		t.Fatal("six-field specs are not accepted")
	}
}

func TestSchedulerLifecycle(t *testing.T) {
	job := &countingJob{}
	s, err := NewScheduler("0 8 1 * *", job, quietLogger())
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}

	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := s.Start(ctx); err == nil {
		t.Error("second Start should fail")
	}

	next := s.Next()
	if next.Day() != 1 || next.Hour() != 8 || next.Location() != time.UTC {
		t.Errorf("Next() = %v, want the 1st at 08:00 UTC", next)
	}

	s.run()
	if job.calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", job.calls.Load())
	}

	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := s.Stop(ctx); err != nil {
		t.Errorf("second Stop should be a no-op, got %v", err)
	}
}

func TestSchedulerRunLogsFailures(t *testing.T) {
	var buf bytes.Buffer
	job := &countingJob{err: errors.New("smtp down")}
	s, err := NewScheduler("@monthly", job, log.New(log.Config{Output: &buf}))
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}

	s.run()

	if job.calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", job.calls.Load())
	}
	if !strings.Contains(buf.String(), "Scheduled digest failed") || !strings.Contains(buf.String(), "smtp down") {
		t.Errorf("failure not logged: %q", buf.String())
	}
}

type blockingConsumer struct {
	started chan struct{}
	err     error
}

func (c *blockingConsumer) Consume(ctx context.Context, handler amqp.Handler) error {
	close(c.started)
	if c.err != nil {
		return c.err
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestWorkerRunStopsOnCancel(t *testing.T) {
	s, err := NewScheduler("0 8 1 * *", &countingJob{}, quietLogger())
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}
	consumer := &blockingConsumer{started: make(chan struct{})}
	w := New(consumer, func(context.Context, *amqp.ExpenseRecordedMessage) error { return nil }, s, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	<-consumer.started
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestWorkerRunReturnsConsumerError(t *testing.T) {
	s, err := NewScheduler("0 8 1 * *", &countingJob{}, quietLogger())
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}
	consumer := &blockingConsumer{started: make(chan struct{}), err: errors.New("access refused")}
	w := New(consumer, nil, s, quietLogger())

	if err := w.Run(context.Background()); err == nil || !strings.Contains(err.Error(), "access refused") {
		t.Fatalf("expected consumer error, got %v", err)
	}
}
