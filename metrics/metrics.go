package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
)

var (
	InsertsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cityquad_inserts_total",
		Help: "Total number of insertions by result",
	}, []string{"result"})
	QueriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cityquad_queries_total",
		Help: "Total number of queries by kind",
	}, []string{"kind"})
	DeletesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cityquad_deletes_total",
		Help: "Total number of deletions by result",
	}, []string{"result"})
	QueryDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cityquad_query_duration_ms",
		Help:    "Query duration in milliseconds",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50, 100},
	}, []string{"kind"})
	Entities = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cityquad_entities",
		Help: "Number of cities currently stored",
	})
)

func init() {
	prometheus.MustRegister(InsertsTotal)
	prometheus.MustRegister(QueriesTotal)
	prometheus.MustRegister(DeletesTotal)
	prometheus.MustRegister(QueryDurationMs)
	prometheus.MustRegister(Entities)
}

func resultLabel(success bool, successLabel string, failureLabel string) string {
	if success {
		return successLabel
	}
	return failureLabel
}

func ObserveInsert(inserted bool) {
	InsertsTotal.WithLabelValues(resultLabel(inserted, "inserted", "dropped")).Inc()
}

func ObserveDelete(deleted bool) {
	DeletesTotal.WithLabelValues(resultLabel(deleted, "deleted", "missing")).Inc()
}

// ObserveQuery counts a query of the given kind ("search", "nearest", "radius") and records its duration.
func ObserveQuery(kind string, durationMs float64) {
	QueriesTotal.WithLabelValues(kind).Inc()
	QueryDurationMs.WithLabelValues(kind).Observe(durationMs)
}

func SetEntities(count int) {
	Entities.Set(float64(count))
}

// Handler exposes all registered metrics for scraping.
func Handler() http.Handler { return promhttp.Handler() }
