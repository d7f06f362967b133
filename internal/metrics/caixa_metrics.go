package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CaixaMetrics содержит метрики терминала кассы.
type CaixaMetrics struct {
	// Счётчики мутаций корзины по операциям (add/remove/change_qty/reset)
	cartMutations *prometheus.CounterVec

	// Счётчики отправки заказа по результату (success/rejected/unavailable/validation)
	submits *prometheus.CounterVec

	// Гистограмма времени отправки заказа
	submitDuration prometheus.Histogram

	// Gauge числа позиций в корзине
	cartLines prometheus.Gauge

	// Счётчик записей зеркала (write/delete)
	mirrorWrites *prometheus.CounterVec

	// Счётчик опросов кухни по результату
	kitchenPolls *prometheus.CounterVec
}

// NewCaixaMetrics создаёт метрики на DefaultRegisterer.
func NewCaixaMetrics() *CaixaMetrics {
	return NewCaixaMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewCaixaMetricsWithRegisterer создаёт метрики на переданном Registerer
// (тесты используют приватный, чтобы не конфликтовать между собой).
func NewCaixaMetricsWithRegisterer(registerer prometheus.Registerer) *CaixaMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &CaixaMetrics{
		cartMutations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "caixa_cart_mutations_total",
			Help: "Total number of cart mutations grouped by operation",
		}, []string{"op"}),
		submits: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "caixa_order_submits_total",
			Help: "Total number of order submissions grouped by result",
		}, []string{"result"}),
		submitDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "caixa_order_submit_duration_seconds",
			Help:    "Duration of order submission requests in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		cartLines: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "caixa_cart_lines",
			Help: "Number of distinct lines currently in the cart",
		}),
		mirrorWrites: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "caixa_mirror_writes_total",
			Help: "Total number of cart mirror store operations grouped by kind",
		}, []string{"kind"}),
		kitchenPolls: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "caixa_kitchen_polls_total",
			Help: "Total number of kitchen feed polls grouped by result",
		}, []string{"result"}),
	}
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordCartMutation увеличивает счётчик мутаций корзины.
func (m *CaixaMetrics) RecordCartMutation(op string) {
	m.cartMutations.WithLabelValues(op).Inc()
}

// RecordSubmit увеличивает счётчик отправок с данным результатом.
func (m *CaixaMetrics) RecordSubmit(result string) {
	m.submits.WithLabelValues(result).Inc()
}

// RecordSubmitDuration записывает длительность отправки заказа.
func (m *CaixaMetrics) RecordSubmitDuration(duration time.Duration) {
	m.submitDuration.Observe(duration.Seconds())
}

// SetCartLines обновляет gauge числа позиций.
func (m *CaixaMetrics) SetCartLines(n int) {
	m.cartLines.Set(float64(n))
}

// RecordMirrorWrite увеличивает счётчик операций зеркала (write/delete).
func (m *CaixaMetrics) RecordMirrorWrite(kind string) {
	m.mirrorWrites.WithLabelValues(kind).Inc()
}

// RecordKitchenPoll увеличивает счётчик опросов кухни.
func (m *CaixaMetrics) RecordKitchenPoll(result string) {
	m.kitchenPolls.WithLabelValues(result).Inc()
}
