package malloc

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	freePagesDesc = prometheus.NewDesc(
		"threadmalloc_central_free_pages",
		"Number of pages currently free in the central heap, by size class.",
		[]string{"class"}, nil,
	)
	pagesMappedDesc = prometheus.NewDesc(
		"threadmalloc_central_pages_mapped_total",
		"Total pages ever mapped from the OS into the central heap, by size class.",
		[]string{"class"}, nil,
	)
)

// Describe implements prometheus.Collector.
func (c *CentralHeap) Describe(ch chan<- *prometheus.Desc) {
	ch <- freePagesDesc
	ch <- pagesMappedDesc
}

// Collect implements prometheus.Collector. It takes the central heap's
// mutex once per size class via GetStats; callers scraping at a normal
// interval will never contend with the allocation hot path in practice.
func (c *CentralHeap) Collect(ch chan<- prometheus.Metric) {
	for i := 0; i < NumSizeClasses; i++ {
		label := strconv.Itoa(i)
		stats := c.GetStats(i)
		ch <- prometheus.MustNewConstMetric(freePagesDesc, prometheus.GaugeValue, float64(stats.FreePageCount), label)
		ch <- prometheus.MustNewConstMetric(pagesMappedDesc, prometheus.CounterValue, float64(c.pagesMappedTotal(i)), label)
	}
}
