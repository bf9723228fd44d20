package metrics

import "github.com/prometheus/client_golang/prometheus"

// Option configures a Manager before its collectors are registered.
type Option func(*Manager)

// WithName sets the namespace and subsystem prefixed to every metric name.
// Empty parts keep their defaults.
func WithName(namespace, subsystem string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
		if subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithLatencyBuckets sets the millisecond buckets shared by every latency
// histogram. Buckets that are empty or not strictly increasing are ignored.
func WithLatencyBuckets(buckets ...float64) Option {
	return func(m *Manager) {
		if increasing(buckets) {
			m.latencyBuckets = buckets
		}
	}
}

// WithIterationBuckets sets the buckets of the PageRank iteration histogram.
func WithIterationBuckets(buckets ...float64) Option {
	return func(m *Manager) {
		if increasing(buckets) {
			m.iterationBuckets = buckets
		}
	}
}

// WithRegisterer registers collectors with reg instead of the default
// Prometheus registerer.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(m *Manager) {
		if reg != nil {
			m.registry = reg
		}
	}
}

func increasing(buckets []float64) bool {
	if len(buckets) == 0 {
		return false
	}
	for i := 1; i < len(buckets); i++ {
		if buckets[i] <= buckets[i-1] {
			return false
		}
	}
	return true
}
