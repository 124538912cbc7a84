package scheduler

import (
	"context"
	"testing"

	"clr-site/internal/core"
)

func TestAddRejectsBadJobs(t *testing.T) {
	s := New(context.Background(), core.NewDiscardLogger())
	defer s.Stop()

	if err := s.Add(Job{Name: "broken", Spec: "not a spec", Run: func(context.Context) error { return nil }}); err == nil {
		t.Error("Expected invalid cron spec to be rejected")
	}
	if err := s.Add(Job{Name: "empty", Spec: "@hourly"}); err == nil {
		t.Error("Expected job without run function to be rejected")
	}
	if err := s.Add(Job{Name: "feed-sync", Spec: "0 * * * *", Run: func(context.Context) error { return nil }}); err != nil {
		t.Errorf("Add() error = %v", err)
	}
}

func TestRunSkipsAfterStop(t *testing.T) {
	s := New(context.Background(), core.NewDiscardLogger())
	s.Start()
	s.Stop()

	ran := false
	s.run(Job{Name: "late", Run: func(context.Context) error {
		ran = true
		return nil
	}}, defaultJobTimeout)

	if ran {
		t.Error("Expected jobs not to run once the scheduler is stopped")
	}
}

func TestRunPassesLiveContext(t *testing.T) {
	s := New(context.Background(), core.NewDiscardLogger())
	defer s.Stop()

	var deadlineSet bool
	s.run(Job{Name: "dispatch", Run: func(ctx context.Context) error {
		_, deadlineSet = ctx.Deadline()
		return ctx.Err()
	}}, defaultJobTimeout)

	if !deadlineSet {
		t.Error("Expected job context to carry the job timeout")
	}
}
