package promutil

import (
	"github.com/prometheus/client_golang/prometheus"
)

type wrappingFactory struct {
	r *Registry
	// id identifies the owner of the factory. It's used to unregister all
	// collectors of the owner at once.
	id string
	// prefix is added to the metric namespace, e.g. $prefix_$namespace_$subsystem_$name
	prefix string
	// constLabels is added to every metric to tell owners apart
	constLabels prometheus.Labels
}

// NewCounter works like the function of the same name in the prometheus
// package, but it automatically registers the Counter with the Factory's
// Registerer. Panic if it can't register successfully. Thread-safe.
func (f *wrappingFactory) NewCounter(opts prometheus.CounterOpts) prometheus.Counter {
	c := prometheus.NewCounter(*wrapCounterOpts(f.prefix, f.constLabels, &opts))
	f.r.MustRegister(f.id, c)
	return c
}

// NewCounterVec works like the function of the same name in the
// prometheus, package but it automatically registers the CounterVec with
// the Factory's Registerer. Panic if it can't register successfully.Thread-safe.
func (f *wrappingFactory) NewCounterVec(opts prometheus.CounterOpts, labelNames []string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(*wrapCounterOpts(f.prefix, f.constLabels, &opts), labelNames)
	f.r.MustRegister(f.id, c)
	return c
}

// NewGauge works like the function of the same name in the prometheus
// package, but it automatically registers the Gauge with the Factory's
// Registerer. Panic if it can't register successfully.Thread-safe.
func (f *wrappingFactory) NewGauge(opts prometheus.GaugeOpts) prometheus.Gauge {
	c := prometheus.NewGauge(*wrapGaugeOpts(f.prefix, f.constLabels, &opts))
	f.r.MustRegister(f.id, c)
	return c
}

// NewGaugeVec works like the function of the same name in the prometheus
// package but it automatically registers the GaugeVec with the Factory's
// Registerer. Panic if it can't register successfully.Thread-safe.
func (f *wrappingFactory) NewGaugeVec(opts prometheus.GaugeOpts, labelNames []string) *prometheus.GaugeVec {
	c := prometheus.NewGaugeVec(*wrapGaugeOpts(f.prefix, f.constLabels, &opts), labelNames)
	f.r.MustRegister(f.id, c)
	return c
}

// NewHistogram works like the function of the same name in the prometheus
// package but it automatically registers the Histogram with the Factory's
// Registerer. Panic if it can't register successfully.Thread-safe.
func (f *wrappingFactory) NewHistogram(opts prometheus.HistogramOpts) prometheus.Histogram {
	c := prometheus.NewHistogram(*wrapHistogramOpts(f.prefix, f.constLabels, &opts))
	f.r.MustRegister(f.id, c)
	return c
}

// NewHistogramVec works like the function of the same name in the
// prometheus package but it automatically registers the HistogramVec
// with the Factory's Registerer. Panic if it can't register successfully.Thread-safe.
func (f *wrappingFactory) NewHistogramVec(opts prometheus.HistogramOpts, labelNames []string) *prometheus.HistogramVec {
	c := prometheus.NewHistogramVec(*wrapHistogramOpts(f.prefix, f.constLabels, &opts), labelNames)
	f.r.MustRegister(f.id, c)
	return c
}

func wrapNamespace(prefix, namespace string) string {
	switch {
	case prefix == "":
		return namespace
	case namespace == "":
		return prefix
	default:
		return prefix + "_" + namespace
	}
}

func mergeConstLabels(dst, src prometheus.Labels) prometheus.Labels {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(prometheus.Labels, len(src))
	}
	for name, value := range src {
		if _, exists := dst[name]; exists {
			panic("duplicate label name")
		}
		dst[name] = value
	}
	return dst
}

func wrapCounterOpts(prefix string, constLabels prometheus.Labels, opts *prometheus.CounterOpts) *prometheus.CounterOpts {
	opts.Namespace = wrapNamespace(prefix, opts.Namespace)
	opts.ConstLabels = mergeConstLabels(opts.ConstLabels, constLabels)
	return opts
}

func wrapGaugeOpts(prefix string, constLabels prometheus.Labels, opts *prometheus.GaugeOpts) *prometheus.GaugeOpts {
	opts.Namespace = wrapNamespace(prefix, opts.Namespace)
	opts.ConstLabels = mergeConstLabels(opts.ConstLabels, constLabels)
	return opts
}

func wrapHistogramOpts(prefix string, constLabels prometheus.Labels, opts *prometheus.HistogramOpts) *prometheus.HistogramOpts {
	opts.Namespace = wrapNamespace(prefix, opts.Namespace)
	opts.ConstLabels = mergeConstLabels(opts.ConstLabels, constLabels)
	return opts
}
