// Package metric provides Prometheus metrics registration for ircbot components.
package metric

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/c360/ircbot/errors"
)

// Registry wraps a Prometheus registry with namespaced registration so that
// multiple bot instances can register metrics without collisions.
type Registry struct {
	mu         sync.Mutex
	registry   *prometheus.Registry
	core       *CoreMetrics
	registered map[string]prometheus.Collector
}

// NewRegistry creates a metrics registry with Go runtime and process collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		registry:   reg,
		registered: make(map[string]prometheus.Collector),
	}
	r.core = newCoreMetrics()
	r.core.register(r)
	return r
}

// PrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) PrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// Core returns the shared framework metrics
func (r *Registry) Core() *CoreMetrics {
	return r.core
}

// Handler returns an HTTP handler serving the registry in the Prometheus
// exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Register registers a collector under instance/name. Registering the same
// key twice replaces the previous collector.
func (r *Registry) Register(instance, name string, c prometheus.Collector) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := fmt.Sprintf("%s/%s", instance, name)
	if prev, ok := r.registered[key]; ok {
		r.registry.Unregister(prev)
	}
	if err := r.registry.Register(c); err != nil {
		return errors.Wrap(err, "Registry", "Register", fmt.Sprintf("register %s", key))
	}
	r.registered[key] = c
	return nil
}

// Unregister removes a previously registered collector
func (r *Registry) Unregister(instance, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := fmt.Sprintf("%s/%s", instance, name)
	c, ok := r.registered[key]
	if !ok {
		return false
	}
	delete(r.registered, key)
	return r.registry.Unregister(c)
}
