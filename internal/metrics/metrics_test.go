package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestInitIsIdempotent(t *testing.T) {
	Init()
	Init()

	if err := prometheus.Register(PersistFailuresTotal); err == nil {
		t.Error("expected collector to already be registered")
	}
}

func TestCountersIncrement(t *testing.T) {
	c := PredictorFallbackTotal.WithLabelValues("cost")
	before := counterValue(t, c)
	c.Add(3)
	if got := counterValue(t, c); got != before+3 {
		t.Errorf("expected %f, got %f", before+3, got)
	}
}
