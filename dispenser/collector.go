package dispenser

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricNamespace = "efd_dispenser"

// Collector exports the TransactionMetrics of every dispenser in a Group.
// Dispensers added to or removed from the group are picked up on the next
// scrape.
type Collector struct {
	group *Group

	transactions   *prometheus.Desc
	outcomes       *prometheus.Desc
	transportErrs  *prometheus.Desc
	validationErrs *prometheus.Desc
	open           *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a collector for g. Register it with a
// prometheus.Registerer.
func NewCollector(g *Group) *Collector {
	return &Collector{
		group: g,
		transactions: prometheus.NewDesc(
			prometheus.BuildFQName(metricNamespace, "", "transactions_started_total"),
			"Number of transactions started.",
			[]string{"dispenser"}, nil,
		),
		outcomes: prometheus.NewDesc(
			prometheus.BuildFQName(metricNamespace, "", "transactions_total"),
			"Number of completed transactions by outcome.",
			[]string{"dispenser", "outcome"}, nil,
		),
		transportErrs: prometheus.NewDesc(
			prometheus.BuildFQName(metricNamespace, "", "transport_errors_total"),
			"Number of transactions aborted by a transport failure.",
			[]string{"dispenser"}, nil,
		),
		validationErrs: prometheus.NewDesc(
			prometheus.BuildFQName(metricNamespace, "", "validation_errors_total"),
			"Number of commands rejected before any I/O.",
			[]string{"dispenser"}, nil,
		),
		open: prometheus.NewDesc(
			prometheus.BuildFQName(metricNamespace, "", "open"),
			"1 if the dispenser is open.",
			[]string{"dispenser"}, nil,
		),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.transactions
	ch <- c.outcomes
	ch <- c.transportErrs
	ch <- c.validationErrs
	ch <- c.open
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.group.Range(func(d *Dispenser) bool {
		name := d.Name()
		m := d.GetMetrics()

		counter := func(desc *prometheus.Desc, v uint64, labels ...string) {
			ch <- prometheus.MustNewConstMetric(desc, prometheus.CounterValue, float64(v), labels...)
		}

		counter(c.transactions, m.TransactionCount.Load(), name)
		counter(c.outcomes, m.SucceededCount.Load(), name, Succeeded.String())
		counter(c.outcomes, m.DeviceErrorCount.Load(), name, DeviceError.String())
		counter(c.outcomes, m.UnexpectedReplyCount.Load(), name, UnexpectedReply.String())
		counter(c.outcomes, m.NotAcknowledgedCount.Load(), name, NotAcknowledged.String())
		counter(c.transportErrs, m.TransportErrCount.Load(), name)
		counter(c.validationErrs, m.ValidationErrCount.Load(), name)

		var open float64
		if d.IsOpen() {
			open = 1
		}
		ch <- prometheus.MustNewConstMetric(c.open, prometheus.GaugeValue, open, name)

		return true
	})
}
