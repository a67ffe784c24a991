package metrics

import (
	"context"
	"fmt"
	"testing"
)

type captureSink struct {
	initialized int
	flushed     int
	shutdowns   int
	gauges      map[string]float64
	counters    map[string]uint64
	err         error
}

func newCaptureSink() *captureSink {
	return &captureSink{
		gauges:   make(map[string]float64),
		counters: make(map[string]uint64),
	}
}

func (s *captureSink) Initialize(ctx context.Context) error { s.initialized++; return s.err }
func (s *captureSink) Flush(ctx context.Context) error      { s.flushed++; return s.err }
func (s *captureSink) Shutdown(ctx context.Context) error   { s.shutdowns++; return s.err }

func (s *captureSink) UpdateGauge(ctx context.Context, name string, value float64) error {
	s.gauges[name] = value
	return s.err
}

func (s *captureSink) IncrementCounter(ctx context.Context, name string, value uint64) error {
	s.counters[name] += value
	return s.err
}

func (s *captureSink) RecordHistogram(ctx context.Context, name string, value float64) error {
	return s.err
}

func TestCollectionDelegatesToAllSinks(t *testing.T) {
	ctx := context.Background()
	first := newCaptureSink()
	second := newCaptureSink()

	c := NewCollection(first, second)
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}

	if err := c.Initialize(ctx); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := c.IncrementCounter(ctx, MetricSwapsSettled, 3); err != nil {
		t.Fatalf("IncrementCounter failed: %v", err)
	}
	if err := c.UpdateGauge(ctx, MetricReserveBalanceA, 42); err != nil {
		t.Fatalf("UpdateGauge failed: %v", err)
	}
	if err := c.Flush(ctx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if err := c.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	for i, sink := range []*captureSink{first, second} {
		if sink.initialized != 1 || sink.flushed != 1 || sink.shutdowns != 1 {
			t.Errorf("sink %d lifecycle = init %d flush %d shutdown %d, want 1/1/1",
				i, sink.initialized, sink.flushed, sink.shutdowns)
		}
		if sink.counters[MetricSwapsSettled] != 3 {
			t.Errorf("sink %d counter = %d, want 3", i, sink.counters[MetricSwapsSettled])
		}
		if sink.gauges[MetricReserveBalanceA] != 42 {
			t.Errorf("sink %d gauge = %v, want 42", i, sink.gauges[MetricReserveBalanceA])
		}
	}
}

func TestCollectionAdd(t *testing.T) {
	ctx := context.Background()

	c := NewCollection()
	if c.Len() != 0 {
		t.Fatalf("Len = %d, want 0", c.Len())
	}

	sink := newCaptureSink()
	c.Add(sink)
	if c.Len() != 1 {
		t.Fatalf("Len after Add = %d, want 1", c.Len())
	}

	if err := c.IncrementCounter(ctx, MetricSwapVolume, 7); err != nil {
		t.Fatalf("IncrementCounter failed: %v", err)
	}
	if sink.counters[MetricSwapVolume] != 7 {
		t.Errorf("added sink counter = %d, want 7", sink.counters[MetricSwapVolume])
	}
}

func TestCollectionSurfacesSinkError(t *testing.T) {
	ctx := context.Background()
	failing := newCaptureSink()
	failing.err = fmt.Errorf("sink unavailable")

	c := NewCollection(failing, newCaptureSink())
	if err := c.IncrementCounter(ctx, MetricSwapsRejected, 1); err == nil {
		t.Error("IncrementCounter swallowed a sink error")
	}
	if err := c.Initialize(ctx); err == nil {
		t.Error("Initialize swallowed a sink error")
	}
}

func TestLogMetricsAccumulatesCounters(t *testing.T) {
	ctx := context.Background()
	m := NewLogMetrics(nil)

	for i := 0; i < 3; i++ {
		if err := m.IncrementCounter(ctx, MetricSwapsSettled, 2); err != nil {
			t.Fatalf("IncrementCounter failed: %v", err)
		}
	}
	if err := m.UpdateGauge(ctx, MetricReserveBalanceB, 9); err != nil {
		t.Fatalf("UpdateGauge failed: %v", err)
	}

	if m.counters[MetricSwapsSettled] != 6 {
		t.Errorf("counter = %d, want 6", m.counters[MetricSwapsSettled])
	}
	if m.gauges[MetricReserveBalanceB] != 9 {
		t.Errorf("gauge = %v, want 9", m.gauges[MetricReserveBalanceB])
	}
}
