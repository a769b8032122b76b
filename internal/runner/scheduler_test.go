package runner

import (
	"context"
	"testing"
	"time"
)

func TestIntervalScheduler_FiresJob(t *testing.T) {
	s := NewIntervalScheduler(10 * time.Millisecond)
	fired := make(chan time.Time, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx, func(tm time.Time) {
		select {
		case fired <- tm:
		default:
		}
	}); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer func() { _ = s.Stop(context.Background()) }()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler never fired")
	}
}

func TestIntervalScheduler_ZeroIntervalIsDisabled(t *testing.T) {
	s := NewIntervalScheduler(0)
	if err := s.Start(context.Background(), func(time.Time) {
		t.Error("disabled scheduler must not fire")
	}); err != nil {
		t.Fatalf("start: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	_ = s.Stop(context.Background())
}

func TestIntervalScheduler_StopIsIdempotent(t *testing.T) {
	s := NewIntervalScheduler(time.Hour)
	if err := s.Start(context.Background(), func(time.Time) {}); err != nil {
		t.Fatal(err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatal(err)
	}
}
