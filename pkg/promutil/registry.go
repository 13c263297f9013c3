package promutil

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// NOTICE: we don't use prometheus.DefaultRegistry so that an embedding
// application keeps control of what it exposes.
var globalMetricRegistry = NewRegistry()

func init() {
	globalMetricRegistry.MustRegister(systemID, collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	globalMetricRegistry.MustRegister(systemID, collectors.NewGoCollector())
}

// Registry is used for registering metric
type Registry struct {
	sync.Mutex
	*prometheus.Registry

	// collectorByOwner is for cleaning all collectors of a reader once it
	// is closed.
	collectorByOwner map[string][]prometheus.Collector
}

// NewRegistry new a Registry
func NewRegistry() *Registry {
	return &Registry{
		Registry:         prometheus.NewRegistry(),
		collectorByOwner: make(map[string][]prometheus.Collector),
	}
}

// MustRegister registers the provided Collector of the specified owner
func (r *Registry) MustRegister(ownerID string, c prometheus.Collector) {
	if c == nil {
		return
	}
	r.Lock()
	defer r.Unlock()

	r.Registry.MustRegister(c)
	r.collectorByOwner[ownerID] = append(r.collectorByOwner[ownerID], c)
}

// Unregister unregisters all Collectors of the specified owner
func (r *Registry) Unregister(ownerID string) {
	r.Lock()
	defer r.Unlock()

	cls, exists := r.collectorByOwner[ownerID]
	if exists {
		for _, collector := range cls {
			r.Registry.Unregister(collector)
		}
		delete(r.collectorByOwner, ownerID)
	}
}
