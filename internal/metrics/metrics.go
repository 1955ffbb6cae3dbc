// Package metrics exposes engine activity as Prometheus metrics.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jonathan/keyword-portfolio/internal/types"
)

var activeKeywordsDesc = prometheus.NewDesc(
	"portfolio_active_keywords",
	"Active keywords per project, read from the store on each scrape",
	[]string{"project_id"},
	nil,
)

// Metrics holds the engine's collectors on a private registry.
type Metrics struct {
	registry      *prometheus.Registry
	cycles        *prometheus.CounterVec
	swaps         *prometheus.CounterVec
	cycleDuration *prometheus.HistogramVec
	directives    *prometheus.CounterVec
}

// New creates and registers the engine metrics.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portfolio_cycles_total",
			Help: "Decision cycles run, by kind and final status",
		}, []string{"kind", "status"}),
		swaps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portfolio_swaps_total",
			Help: "Swap arbiter decisions, by outcome",
		}, []string{"outcome"}),
		cycleDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portfolio_cycle_duration_seconds",
			Help:    "Wall time of decision cycles",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
		directives: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portfolio_directives_total",
			Help: "Directives handed to collaborators, by kind",
		}, []string{"kind"}),
	}
	m.registry.MustRegister(m.cycles, m.swaps, m.cycleDuration, m.directives)
	return m
}

// ObserveCycle records one finished cycle.
func (m *Metrics) ObserveCycle(kind types.CycleKind, status types.CycleStatus, d time.Duration) {
	if m == nil {
		return
	}
	m.cycles.WithLabelValues(string(kind), string(status)).Inc()
	m.cycleDuration.WithLabelValues(string(kind)).Observe(d.Seconds())
}

// ObserveSwap records a swap arbiter outcome.
func (m *Metrics) ObserveSwap(outcome types.SwapOutcome) {
	if m == nil {
		return
	}
	m.swaps.WithLabelValues(string(outcome)).Inc()
}

// ObserveDirective records a directive of the given kind, e.g. "redirect" or a gap type.
func (m *Metrics) ObserveDirective(kind string) {
	if m == nil {
		return
	}
	m.directives.WithLabelValues(kind).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// PortfolioReader is the store surface the portfolio collector needs.
type PortfolioReader interface {
	ListActiveProjects(ctx context.Context) ([]types.Project, error)
	ListKeywords(ctx context.Context, projectID uuid.UUID, status types.KeywordStatus) ([]types.ActiveKeyword, error)
}

// PortfolioCollector reports portfolio sizes from the store on each scrape.
type PortfolioCollector struct {
	store  PortfolioReader
	logger *zap.Logger
}

// Describe sends the metric descriptor to the channel.
func (c *PortfolioCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- activeKeywordsDesc
}

// Collect queries the store for every active project and emits its portfolio size.
func (c *PortfolioCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	projects, err := c.store.ListActiveProjects(ctx)
	if err != nil {
		c.logger.Error("failed to collect portfolio metrics", zap.Error(err))
		return
	}
	for _, p := range projects {
		active, err := c.store.ListKeywords(ctx, p.ID, types.StatusActive)
		if err != nil {
			c.logger.Error("failed to collect portfolio metrics",
				zap.String("project_id", p.ID.String()), zap.Error(err))
			continue
		}
		ch <- prometheus.MustNewConstMetric(
			activeKeywordsDesc,
			prometheus.GaugeValue,
			float64(len(active)),
			p.ID.String(),
		)
	}
}

// RegisterPortfolio adds the store-backed portfolio collector.
func (m *Metrics) RegisterPortfolio(store PortfolioReader, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	return m.registry.Register(&PortfolioCollector{store: store, logger: logger})
}
