// Package btreemetrics wires tree and page-file events to Prometheus,
// grounded on the teacher's pkg/api.Metrics: one CounterVec per family
// of related events, registered at construction via promauto rather
// than a hand-rolled registry.
package btreemetrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ssargent/kvbtree/pkg/btree"
	"github.com/ssargent/kvbtree/pkg/pagestore"
)

const (
	statusFound    = "found"
	statusNotFound = "not_found"
	resultHit      = "hit"
	resultMiss     = "miss"
)

// Metrics implements btree.Hooks and pagestore.Hooks, counting tree
// operations and page-file activity for one tree instance.
type Metrics struct {
	findsTotal   *prometheus.CounterVec
	insertsTotal *prometheus.CounterVec
	removesTotal *prometheus.CounterVec
	splitsTotal  prometheus.Counter
	borrowsTotal prometheus.Counter
	mergesTotal  prometheus.Counter

	pageReadsTotal  *prometheus.CounterVec
	pageWritesTotal prometheus.Counter
	pageEvictsTotal prometheus.Counter
}

// New creates and registers the Prometheus collectors for one tree.
// name distinguishes metrics from multiple trees sharing a process
// (e.g. "orders", "sessions") via a constant label.
func New(name string) *Metrics {
	labels := prometheus.Labels{"tree": name}

	return &Metrics{
		findsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "btree_finds_total",
				Help:        "Total number of Find calls, by whether the key was present.",
				ConstLabels: labels,
			},
			[]string{"result"},
		),
		insertsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "btree_inserts_total",
				Help:        "Total number of Add calls, by outcome status.",
				ConstLabels: labels,
			},
			[]string{"status"},
		),
		removesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "btree_removes_total",
				Help:        "Total number of Remove calls, by outcome status.",
				ConstLabels: labels,
			},
			[]string{"status"},
		),
		splitsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "btree_node_splits_total",
			Help:        "Total number of node splits performed during insert.",
			ConstLabels: labels,
		}),
		borrowsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "btree_rebalance_borrows_total",
			Help:        "Total number of sibling-borrow rebalances performed during remove.",
			ConstLabels: labels,
		}),
		mergesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "btree_rebalance_merges_total",
			Help:        "Total number of sibling-merge rebalances performed during remove.",
			ConstLabels: labels,
		}),
		pageReadsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "btree_page_reads_total",
				Help:        "Total number of page reads through the paged accessor, by cache result.",
				ConstLabels: labels,
			},
			[]string{"result"},
		),
		pageWritesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "btree_page_writes_total",
			Help:        "Total number of physical page writes through the paged accessor.",
			ConstLabels: labels,
		}),
		pageEvictsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name:        "btree_page_cache_evictions_total",
			Help:        "Total number of page cache evictions.",
			ConstLabels: labels,
		}),
	}
}

// OnFind implements btree.Hooks.
func (m *Metrics) OnFind(found bool) {
	if found {
		m.findsTotal.WithLabelValues(statusFound).Inc()
		return
	}
	m.findsTotal.WithLabelValues(statusNotFound).Inc()
}

// OnInsert implements btree.Hooks.
func (m *Metrics) OnInsert(status btree.Status) {
	m.insertsTotal.WithLabelValues(status.String()).Inc()
}

// OnRemove implements btree.Hooks.
func (m *Metrics) OnRemove(status btree.Status) {
	m.removesTotal.WithLabelValues(status.String()).Inc()
}

// OnSplit implements btree.Hooks.
func (m *Metrics) OnSplit() { m.splitsTotal.Inc() }

// OnBorrow implements btree.Hooks.
func (m *Metrics) OnBorrow() { m.borrowsTotal.Inc() }

// OnMerge implements btree.Hooks.
func (m *Metrics) OnMerge() { m.mergesTotal.Inc() }

// OnPageRead implements pagestore.Hooks.
func (m *Metrics) OnPageRead(hit bool) {
	if hit {
		m.pageReadsTotal.WithLabelValues(resultHit).Inc()
		return
	}
	m.pageReadsTotal.WithLabelValues(resultMiss).Inc()
}

// OnPageWrite implements pagestore.Hooks.
func (m *Metrics) OnPageWrite() { m.pageWritesTotal.Inc() }

// OnPageEvict implements pagestore.Hooks.
func (m *Metrics) OnPageEvict() { m.pageEvictsTotal.Inc() }

var (
	_ btree.Hooks     = (*Metrics)(nil)
	_ pagestore.Hooks = (*Metrics)(nil)
)
