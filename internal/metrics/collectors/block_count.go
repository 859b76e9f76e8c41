package collectors

import (
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/liftedinit/roadchain/internal/store/postgresql"
)

// BlockCountCollector reports the number of blocks stored in PostgreSQL
type BlockCountCollector struct {
	db         *sql.DB
	blockCount *prometheus.Desc
}

func NewBlockCountCollector(db *sql.DB) *BlockCountCollector {
	return &BlockCountCollector{
		db: db,
		blockCount: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "blocks", "total_count"),
			"Total stored block count",
			nil,
			prometheus.Labels{"source": "postgres"},
		),
	}
}

func (c *BlockCountCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.blockCount
}

func (c *BlockCountCollector) Collect(ch chan<- prometheus.Metric) {
	var count int64
	err := c.db.QueryRow(postgresql.BlockCountQuery).Scan(&count)
	if err != nil {
		ch <- prometheus.NewInvalidMetric(c.blockCount, err)
		return
	}

	ch <- prometheus.MustNewConstMetric(c.blockCount, prometheus.CounterValue, float64(count))
}

func init() {
	RegisterCollectorFactory(func(db *sql.DB, extraParams ...interface{}) (prometheus.Collector, error) {
		return NewBlockCountCollector(db), nil
	})
}
