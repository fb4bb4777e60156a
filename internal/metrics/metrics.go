package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus instruments.
type Metrics struct {
	PreviewsServed     *prometheus.CounterVec
	CustomizeExchanges *prometheus.CounterVec
	Generations        *prometheus.CounterVec
	PreviewAssembly    prometheus.Histogram
}

// New registers the instruments on the given registerer. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in
// tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PreviewsServed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sitegen_previews_served_total",
			Help: "Preview documents served, by outcome.",
		}, []string{"status"}),
		CustomizeExchanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sitegen_customize_exchanges_total",
			Help: "Customization exchanges, by result.",
		}, []string{"result"}),
		Generations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sitegen_generations_total",
			Help: "Website generations, by result.",
		}, []string{"result"}),
		PreviewAssembly: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "sitegen_preview_assembly_seconds",
			Help:    "Time spent sanitizing and assembling a preview document.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
