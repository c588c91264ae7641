package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/agbru/mullo/internal/natmul"
)

const namespace = "mullo"

// DispatchCollector counts low products by the strategy the dispatcher
// selected and records their operand sizes. It implements natmul.Observer.
//
// The limb width is a constant label, so collectors for 32-bit and 64-bit
// multipliers can share one registry.
type DispatchCollector struct {
	calls    *prometheus.CounterVec
	sizes    prometheus.Histogram
	observed map[natmul.Strategy]prometheus.Counter
}

var _ natmul.Observer = (*DispatchCollector)(nil)

// NewDispatchCollector creates a collector for multipliers over limbs of
// the given width and registers it on reg. A nil reg leaves the collector
// unregistered. When reg already holds a collector for the same width,
// that collector is returned so that multipliers of one width share their
// series.
func NewDispatchCollector(reg prometheus.Registerer, width int) (*DispatchCollector, error) {
	labels := prometheus.Labels{"width": strconv.Itoa(width)}
	c := &DispatchCollector{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "low_product",
			Name:        "calls_total",
			Help:        "Count of low-half products by dispatch strategy and limb width",
			ConstLabels: labels,
		}, []string{"strategy"}),
		sizes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "low_product",
			Name:        "operand_limbs",
			Help:        "Operand size in limbs of low-half products",
			Buckets:     prometheus.ExponentialBuckets(1, 4, 10),
			ConstLabels: labels,
		}),
	}

	// One pre-resolved counter per known strategy.
	c.observed = make(map[natmul.Strategy]prometheus.Counter, 4)
	for _, s := range []natmul.Strategy{
		natmul.StrategyBasecaseFull,
		natmul.StrategyBasecase,
		natmul.StrategyDivideAndConquer,
		natmul.StrategyLarge,
	} {
		c.observed[s] = c.calls.WithLabelValues(s.String())
	}

	if reg == nil {
		return c, nil
	}
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*DispatchCollector); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return c, nil
}

// ObserveLowProduct implements natmul.Observer.
func (c *DispatchCollector) ObserveLowProduct(strategy natmul.Strategy, n int) {
	if counter, ok := c.observed[strategy]; ok {
		counter.Inc()
	} else {
		c.calls.WithLabelValues(strategy.String()).Inc()
	}
	c.sizes.Observe(float64(n))
}

// Describe implements prometheus.Collector.
func (c *DispatchCollector) Describe(ch chan<- *prometheus.Desc) {
	c.calls.Describe(ch)
	c.sizes.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *DispatchCollector) Collect(ch chan<- prometheus.Metric) {
	c.calls.Collect(ch)
	c.sizes.Collect(ch)
}
