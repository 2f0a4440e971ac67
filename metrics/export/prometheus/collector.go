package prometheus

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	goCred "github.com/MrEthical07/goCred"
	"github.com/MrEthical07/goCred/metrics/export/internaldefs"
)

var ErrNilSource = errors.New("nil metrics source")

// Collector adapts engine snapshots to a client_golang registry. Every
// Collect takes one fresh snapshot.
type Collector struct {
	source       metricsSource
	counters     []counterDesc
	histograms   []histogramDesc
	auditDropped *prometheus.Desc
}

type counterDesc struct {
	id   goCred.MetricID
	desc *prometheus.Desc
}

type histogramDesc struct {
	id   goCred.MetricID
	desc *prometheus.Desc
}

func NewCollector(engine *goCred.Engine) *Collector {
	return newCollector(engine)
}

func NewCollectorFromSource(source metricsSource) (*Collector, error) {
	if source == nil {
		return nil, ErrNilSource
	}
	return newCollector(source), nil
}

// Register adds a collector for source to reg.
func Register(reg prometheus.Registerer, source metricsSource) (*Collector, error) {
	c, err := NewCollectorFromSource(source)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if err := reg.Register(c); err != nil {
		return nil, err
	}
	return c, nil
}

func newCollector(source metricsSource) *Collector {
	c := &Collector{
		source:       source,
		counters:     make([]counterDesc, 0, len(internaldefs.CounterDefs)),
		histograms:   make([]histogramDesc, 0, len(internaldefs.HistogramDefs)),
		auditDropped: prometheus.NewDesc(auditDroppedName, auditDroppedHelp, nil, nil),
	}
	for _, def := range internaldefs.CounterDefs {
		c.counters = append(c.counters, counterDesc{
			id:   def.ID,
			desc: prometheus.NewDesc(def.Name, def.Help, nil, nil),
		})
	}
	for _, def := range internaldefs.HistogramDefs {
		c.histograms = append(c.histograms, histogramDesc{
			id:   def.ID,
			desc: prometheus.NewDesc(def.Name, def.Help, nil, nil),
		})
	}
	return c
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, cd := range c.counters {
		ch <- cd.desc
	}
	for _, hd := range c.histograms {
		ch <- hd.desc
	}
	ch <- c.auditDropped
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snapshot := c.source.MetricsSnapshot()

	if len(snapshot.Counters) > 0 {
		for _, cd := range c.counters {
			ch <- prometheus.MustNewConstMetric(cd.desc, prometheus.CounterValue, float64(snapshot.Counters[cd.id]))
		}
	}

	for _, hd := range c.histograms {
		raw, ok := snapshot.Histograms[hd.id]
		if !ok {
			continue
		}
		cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(raw))
		buckets := make(map[float64]uint64, len(internaldefs.HistogramBoundValues))
		for i, le := range internaldefs.HistogramBoundValues {
			buckets[le] = cumulative[i]
		}
		ch <- prometheus.MustNewConstHistogram(hd.desc, cumulative[len(cumulative)-1], 0, buckets)
	}

	ch <- prometheus.MustNewConstMetric(c.auditDropped, prometheus.CounterValue, float64(c.source.AuditDropped()))
}
