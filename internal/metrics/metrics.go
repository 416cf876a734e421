package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the product pipeline.
//
// Each Metrics owns its registry so tests can build as many as they like.
// All observe methods are safe on a nil receiver.
//
// Metrics:
//   - grocery_image_probes_total{result} - HEAD probes by valid/invalid/error
//   - grocery_image_resolutions_total{outcome} - resolved to image or placeholder
//   - grocery_catalog_requests_total{endpoint,status} - upstream catalog calls
//   - grocery_catalog_request_duration_seconds{endpoint} - upstream latency
//   - grocery_product_lookups_total{source} - lookups by cache/catalog/not_found/error
type Metrics struct {
	registry *prometheus.Registry

	ImageProbesTotal       *prometheus.CounterVec
	ImageResolutionsTotal  *prometheus.CounterVec
	CatalogRequestsTotal   *prometheus.CounterVec
	CatalogRequestDuration *prometheus.HistogramVec
	ProductLookupsTotal    *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ImageProbesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grocery_image_probes_total",
				Help: "Total number of image existence probes",
			},
			[]string{"result"},
		),
		ImageResolutionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grocery_image_resolutions_total",
				Help: "Total number of image resolutions by outcome",
			},
			[]string{"outcome"},
		),
		CatalogRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grocery_catalog_requests_total",
				Help: "Total number of requests sent to the product catalog",
			},
			[]string{"endpoint", "status"},
		),
		CatalogRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "grocery_catalog_request_duration_seconds",
				Help:    "Product catalog request latency",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"endpoint"},
		),
		ProductLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grocery_product_lookups_total",
				Help: "Total number of product lookups by source",
			},
			[]string{"source"},
		),
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

func (m *Metrics) ObserveProbe(result string) {
	if m == nil {
		return
	}
	m.ImageProbesTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveResolution(outcome string) {
	if m == nil {
		return
	}
	m.ImageResolutionsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveCatalogRequest(endpoint, status string, seconds float64) {
	if m == nil {
		return
	}
	m.CatalogRequestsTotal.WithLabelValues(endpoint, status).Inc()
	m.CatalogRequestDuration.WithLabelValues(endpoint).Observe(seconds)
}

func (m *Metrics) ObserveLookup(source string) {
	if m == nil {
		return
	}
	m.ProductLookupsTotal.WithLabelValues(source).Inc()
}
