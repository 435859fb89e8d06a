// Package metrics provides prometheus counters for playlist activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Collector counts playlist activity on its own registry.
// It implements playback.Observer and playlist.Observer.
type Collector struct {
	registry *prometheus.Registry

	itemsLoaded     prometheus.Counter
	autoAdvances    prometheus.Counter
	sourcesDetached prometheus.Counter
	itemsRejected   prometheus.Counter
}

// New creates a collector with its counters registered.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		itemsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "playlistbox_items_loaded_total",
			Help: "Total number of playlist items loaded into the player",
		}),
		autoAdvances: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "playlistbox_auto_advances_total",
			Help: "Total number of automatic advances to the next item",
		}),
		sourcesDetached: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "playlistbox_sources_detached_total",
			Help: "Total number of sources loaded from outside the playlist",
		}),
		itemsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "playlistbox_items_rejected_total",
			Help: "Total number of items rejected by validation",
		}),
	}
	c.registry.MustRegister(c.itemsLoaded, c.autoAdvances, c.sourcesDetached, c.itemsRejected)
	return c
}

// Registry returns the registry holding the counters.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ItemLoaded counts a loaded item.
func (c *Collector) ItemLoaded() {
	c.itemsLoaded.Inc()
}

// AutoAdvanced counts an automatic advance.
func (c *Collector) AutoAdvanced() {
	c.autoAdvances.Inc()
}

// SourceDetached counts a source loaded from outside the playlist.
func (c *Collector) SourceDetached() {
	c.sourcesDetached.Inc()
}

// ItemsRejected counts items rejected by validation.
func (c *Collector) ItemsRejected(n int) {
	c.itemsRejected.Add(float64(n))
}

// Totals returns the current value of every counter keyed by metric name.
func (c *Collector) Totals() (map[string]float64, error) {
	families, err := c.registry.Gather()
	if err != nil {
		return nil, err
	}
	totals := make(map[string]float64, len(families))
	for _, mf := range families {
		totals[mf.GetName()] = sum(mf.GetMetric())
	}
	return totals, nil
}

func sum(ms []*dto.Metric) float64 {
	var total float64
	for _, m := range ms {
		if c := m.GetCounter(); c != nil {
			total += c.GetValue()
		}
	}
	return total
}
