package pagepool

import "github.com/prometheus/client_golang/prometheus"

// Collector exports the counters of one pool as Prometheus metrics.
type Collector struct {
	pool *Pool

	pageIns      *prometheus.Desc
	pageOuts     *prometheus.Desc
	evictions    *prometheus.Desc
	bytesRead    *prometheus.Desc
	bytesWritten *prometheus.Desc
	resident     *prometheus.Desc
	maxPages     *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector returns a collector for p. constLabels distinguishes pools
// registered in the same registry.
func NewCollector(p *Pool, constLabels prometheus.Labels) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName("infovis", "pagepool", name), help, nil, constLabels)
	}
	return &Collector{
		pool:         p,
		pageIns:      desc("page_ins_total", "Pages read back from the page file"),
		pageOuts:     desc("page_outs_total", "Dirty pages written to the page file"),
		evictions:    desc("evictions_total", "Pages evicted from memory"),
		bytesRead:    desc("read_bytes_total", "Bytes read from the page file"),
		bytesWritten: desc("written_bytes_total", "Bytes written to the page file"),
		resident:     desc("resident_pages", "Pages currently in memory"),
		maxPages:     desc("max_pages", "Page budget of the pool"),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.pageIns
	ch <- c.pageOuts
	ch <- c.evictions
	ch <- c.bytesRead
	ch <- c.bytesWritten
	ch <- c.resident
	ch <- c.maxPages
}

// Collect reads only the atomic counters, so it may run concurrently with
// pool operations.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := &c.pool.stats
	ch <- prometheus.MustNewConstMetric(c.pageIns, prometheus.CounterValue, float64(s.pageIns.Load()))
	ch <- prometheus.MustNewConstMetric(c.pageOuts, prometheus.CounterValue, float64(s.pageOuts.Load()))
	ch <- prometheus.MustNewConstMetric(c.evictions, prometheus.CounterValue, float64(s.evictions.Load()))
	ch <- prometheus.MustNewConstMetric(c.bytesRead, prometheus.CounterValue, float64(s.bytesRead.Load()))
	ch <- prometheus.MustNewConstMetric(c.bytesWritten, prometheus.CounterValue, float64(s.bytesWritten.Load()))
	ch <- prometheus.MustNewConstMetric(c.resident, prometheus.GaugeValue, float64(s.resident.Load()))
	ch <- prometheus.MustNewConstMetric(c.maxPages, prometheus.GaugeValue, float64(s.maxPages.Load()))
}
