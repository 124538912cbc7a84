package core

import (
	"context"
	"errors"
	"testing"
)

type orderFeature struct {
	*BaseFeature
	log     *[]string
	initErr error
}

func (f *orderFeature) Init(ctx context.Context) error {
	*f.log = append(*f.log, "init "+f.Name())
	return f.initErr
}

func (f *orderFeature) Shutdown(ctx context.Context) error {
	*f.log = append(*f.log, "stop "+f.Name())
	return errors.New("ignored")
}

func TestRegistryLifecycleOrder(t *testing.T) {
	logger := NewDiscardLogger()
	r := NewRegistry(logger)
	var log []string

	for _, f := range []*orderFeature{
		{BaseFeature: NewBaseFeature("content", "", true, logger), log: &log},
		{BaseFeature: NewBaseFeature("pricing", "", false, logger), log: &log},
		{BaseFeature: NewBaseFeature("admin", "", true, logger), log: &log},
	} {
		if err := r.Register(f); err != nil {
			t.Fatalf("Register(%s) error = %v", f.Name(), err)
		}
	}

	if err := r.InitAll(context.Background()); err != nil {
		t.Fatalf("InitAll() error = %v", err)
	}
	r.ShutdownAll(context.Background())

	want := []string{"init content", "init admin", "stop admin", "stop content"}
	if len(log) != len(want) {
		t.Fatalf("Expected %v, got %v", want, log)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("Step %d = %q, want %q", i, log[i], want[i])
		}
	}

	if status := r.GetFeatureStatus(); len(status) != 3 || status[1].Enabled {
		t.Errorf("Unexpected status %+v", status)
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	logger := NewDiscardLogger()
	r := NewRegistry(logger)

	if err := r.Register(NewBaseFeature("events", "", true, logger)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := r.Register(NewBaseFeature("events", "", true, logger)); err == nil {
		t.Error("Expected duplicate registration to fail")
	}
}

func TestInitAllStopsAtFailure(t *testing.T) {
	logger := NewDiscardLogger()
	r := NewRegistry(logger)
	var log []string

	r.Register(&orderFeature{BaseFeature: NewBaseFeature("content", "", true, logger), log: &log, initErr: errors.New("boom")})
	r.Register(&orderFeature{BaseFeature: NewBaseFeature("admin", "", true, logger), log: &log})

	if err := r.InitAll(context.Background()); err == nil {
		t.Fatal("Expected init failure")
	}
	if len(log) != 1 {
		t.Errorf("Expected init to stop after the failing feature, got %v", log)
	}
}
