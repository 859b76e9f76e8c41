package collectors

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/liftedinit/roadchain/internal/chain"
)

const namespace = "roadchain"

const reloadTimeout = 30 * time.Second

// ChainSource is the chain a ChainCollector reports on. Reload refreshes it
// from storage.
type ChainSource interface {
	Reload(ctx context.Context) error
	Len() int
	Verify() chain.Result
}

// ChainCollector reloads and verifies the chain on every scrape and reports
// its length and integrity.
type ChainCollector struct {
	source       ChainSource
	length       *prometheus.Desc
	valid        *prometheus.Desc
	firstInvalid *prometheus.Desc
}

func NewChainCollector(source ChainSource) *ChainCollector {
	return &ChainCollector{
		source: source,
		length: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "chain", "length"),
			"Number of blocks in the chain",
			nil, nil,
		),
		valid: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "chain", "valid"),
			"1 if the chain verifies, 0 otherwise",
			nil, nil,
		),
		firstInvalid: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "chain", "first_invalid_index"),
			"Index of the first block failing verification, -1 for a valid chain",
			nil, nil,
		),
	}
}

func (c *ChainCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.length
	ch <- c.valid
	ch <- c.firstInvalid
}

func (c *ChainCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
	defer cancel()
	if err := c.source.Reload(ctx); err != nil {
		slog.Error("Failed to reload chain", "error", err)
		ch <- prometheus.NewInvalidMetric(c.valid, err)
		return
	}

	r := c.source.Verify()
	valid := 0.0
	if r.Valid {
		valid = 1
	}

	ch <- prometheus.MustNewConstMetric(c.length, prometheus.GaugeValue, float64(c.source.Len()))
	ch <- prometheus.MustNewConstMetric(c.valid, prometheus.GaugeValue, valid)
	ch <- prometheus.MustNewConstMetric(c.firstInvalid, prometheus.GaugeValue, float64(r.FirstInvalid))
}
