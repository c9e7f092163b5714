package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeService struct {
	name     string
	startErr error
	stopped  bool
}

func (f *fakeService) Name() string { return f.name }

func (f *fakeService) Start(ctx context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeService) Stop(ctx context.Context) error {
	f.stopped = true
	return nil
}

func TestRunnerStopsAllWhenOneFails(t *testing.T) {
	failing := &fakeService{name: "failing", startErr: errors.New("boom")}
	blocking := &fakeService{name: "blocking"}
	runner := NewRunner(failing, blocking)

	err := runner.Run(context.Background(), time.Second, zap.NewNop().Sugar())
	if err == nil || err.Error() != "boom" {
		t.Fatalf("run should surface the service error, got %v", err)
	}
	if !failing.stopped || !blocking.stopped {
		t.Fatalf("all services should be stopped, failing=%v blocking=%v", failing.stopped, blocking.stopped)
	}
}

func TestRunnerCancelIsCleanShutdown(t *testing.T) {
	blocking := &fakeService{name: "blocking"}
	runner := NewRunner(blocking)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	if err := runner.Run(ctx, time.Second, zap.NewNop().Sugar()); err != nil {
		t.Fatalf("cancelled run should return nil, got %v", err)
	}
	if !blocking.stopped {
		t.Fatalf("service should be stopped after cancel")
	}
}

func TestRunnerRequiresServices(t *testing.T) {
	if err := NewRunner().Run(context.Background(), time.Second, zap.NewNop().Sugar()); err == nil {
		t.Fatalf("empty runner should error")
	}
}
