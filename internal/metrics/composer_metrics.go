package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ComposerMetrics содержит метрики добавления позиций в заказ.
type ComposerMetrics struct {
	// Счётчики исходов композиции
	composeStarted   prometheus.Counter
	composeSucceeded prometheus.Counter
	composeRejected  prometheus.Counter
	composeFailed    prometheus.Counter

	// Гистограммы времени выполнения
	composeDuration prometheus.Histogram
	stepDuration    *prometheus.HistogramVec

	// Счётчик поставленных в outbox событий
	outboxEvents prometheus.Counter

	// Gauge для операций в полёте
	activeComposes prometheus.Gauge
}

// NewComposerMetrics создаёт новый экземпляр метрик композитора.
func NewComposerMetrics() *ComposerMetrics {
	return newComposerMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newComposerMetricsWithRegisterer(registerer prometheus.Registerer) *ComposerMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &ComposerMetrics{
		composeStarted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "cafe_compose_started_total",
			Help: "Total number of add-item operations started",
		}),
		composeSucceeded: registerCounter(registerer, prometheus.CounterOpts{
			Name: "cafe_compose_succeeded_total",
			Help: "Total number of add-item operations completed successfully",
		}),
		composeRejected: registerCounter(registerer, prometheus.CounterOpts{
			Name: "cafe_compose_rejected_total",
			Help: "Total number of add-item operations rejected before any write",
		}),
		composeFailed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "cafe_compose_failed_total",
			Help: "Total number of add-item operations failed on infrastructure",
		}),
		composeDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "cafe_compose_duration_seconds",
			Help:    "Duration of add-item operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		stepDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "cafe_compose_step_duration_seconds",
			Help:    "Duration of individual add-item steps in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"step"}),
		outboxEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "cafe_outbox_enqueued_total",
			Help: "Total number of events enqueued into the transactional outbox",
		}),
		activeComposes: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "cafe_active_composes",
			Help: "Number of add-item operations currently in flight",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
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

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordComposeStarted увеличивает счётчик запущенных операций.
func (m *ComposerMetrics) RecordComposeStarted() {
	m.composeStarted.Inc()
	m.activeComposes.Inc()
}

// RecordComposeSucceeded увеличивает счётчик успешных операций.
func (m *ComposerMetrics) RecordComposeSucceeded() {
	m.composeSucceeded.Inc()
}

// RecordComposeRejected увеличивает счётчик отклонённых операций
// (невалидное количество, недоступное блюдо).
func (m *ComposerMetrics) RecordComposeRejected() {
	m.composeRejected.Inc()
}

// RecordComposeFailed увеличивает счётчик инфраструктурных сбоев.
func (m *ComposerMetrics) RecordComposeFailed() {
	m.composeFailed.Inc()
}

// RecordComposeFinished уменьшает количество операций в полёте.
func (m *ComposerMetrics) RecordComposeFinished() {
	m.activeComposes.Dec()
}

// RecordComposeDuration записывает время выполнения операции.
func (m *ComposerMetrics) RecordComposeDuration(duration time.Duration) {
	m.composeDuration.Observe(duration.Seconds())
}

// RecordStepDuration записывает время выполнения шага операции.
func (m *ComposerMetrics) RecordStepDuration(step string, duration time.Duration) {
	m.stepDuration.WithLabelValues(step).Observe(duration.Seconds())
}

// RecordOutboxEvent увеличивает счётчик событий outbox.
func (m *ComposerMetrics) RecordOutboxEvent() {
	m.outboxEvents.Inc()
}
