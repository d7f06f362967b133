package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewCaixaMetricsWithRegisterer(t *testing.T) {
	metrics := NewCaixaMetricsWithRegisterer(prometheus.NewRegistry())

	if metrics == nil {
		t.Fatal("NewCaixaMetricsWithRegisterer should not return nil")
	}
	if metrics.cartMutations == nil {
		t.Error("cartMutations counter vec should not be nil")
	}
	if metrics.submits == nil {
		t.Error("submits counter vec should not be nil")
	}
	if metrics.submitDuration == nil {
		t.Error("submitDuration histogram should not be nil")
	}
	if metrics.cartLines == nil {
		t.Error("cartLines gauge should not be nil")
	}
	if metrics.mirrorWrites == nil {
		t.Error("mirrorWrites counter vec should not be nil")
	}
	if metrics.kitchenPolls == nil {
		t.Error("kitchenPolls counter vec should not be nil")
	}
}

func TestNewCaixaMetrics_DoubleRegistrationReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()

	first := NewCaixaMetricsWithRegisterer(reg)
	second := NewCaixaMetricsWithRegisterer(reg)

	// Повторная регистрация возвращает существующие коллекторы, а не паникует.
	first.RecordCartMutation("add")
	second.RecordCartMutation("add")

	counter := first.cartMutations.WithLabelValues("add")
	metric := &dto.Metric{}
	if err := counter.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 2.0 {
		t.Errorf("expected shared counter value 2.0, got %f", metric.Counter.GetValue())
	}
}

func TestRecordCartMutation(t *testing.T) {
	metrics := NewCaixaMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordCartMutation("add")
	metrics.RecordCartMutation("add")
	metrics.RecordCartMutation("remove")

	metric := &dto.Metric{}
	if err := metrics.cartMutations.WithLabelValues("add").Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 2.0 {
		t.Errorf("expected add counter 2.0, got %f", metric.Counter.GetValue())
	}

	metric = &dto.Metric{}
	if err := metrics.cartMutations.WithLabelValues("remove").Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 1.0 {
		t.Errorf("expected remove counter 1.0, got %f", metric.Counter.GetValue())
	}
}

func TestRecordSubmitAndDuration(t *testing.T) {
	metrics := NewCaixaMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordSubmit("success")
	metrics.RecordSubmitDuration(150 * time.Millisecond)

	metric := &dto.Metric{}
	if err := metrics.submits.WithLabelValues("success").Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 1.0 {
		t.Errorf("expected submit counter 1.0, got %f", metric.Counter.GetValue())
	}

	histMetric := &dto.Metric{}
	if err := metrics.submitDuration.Write(histMetric); err != nil {
		t.Fatalf("failed to write histogram: %v", err)
	}
	if histMetric.Histogram.GetSampleCount() != 1 {
		t.Errorf("expected 1 histogram sample, got %d", histMetric.Histogram.GetSampleCount())
	}
}

func TestSetCartLines(t *testing.T) {
	metrics := NewCaixaMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.SetCartLines(3)

	metric := &dto.Metric{}
	if err := metrics.cartLines.Write(metric); err != nil {
		t.Fatalf("failed to write gauge: %v", err)
	}
	if metric.Gauge.GetValue() != 3.0 {
		t.Errorf("expected gauge 3.0, got %f", metric.Gauge.GetValue())
	}

	metrics.SetCartLines(0)
	metric = &dto.Metric{}
	if err := metrics.cartLines.Write(metric); err != nil {
		t.Fatalf("failed to write gauge: %v", err)
	}
	if metric.Gauge.GetValue() != 0.0 {
		t.Errorf("expected gauge 0.0, got %f", metric.Gauge.GetValue())
	}
}
