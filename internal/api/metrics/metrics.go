// Package metrics defines and registers all custom Prometheus metrics for the
// inspection API. It is the single source of truth for metric names, labels,
// and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "prevencar"

// InspectionsSavedTotal counts fiche writes.
// Labels:
//   - operation: "create" or "update"
//   - status: the workflow status after the write
var InspectionsSavedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "inspections_saved_total",
		Help:      "Total number of inspection fiches saved.",
	},
	[]string{"operation", "status"},
)

// PaymentsFinalizedTotal counts fiches that reached Concluída.
// Label:
//   - method: payment method (Pix, Crédito, Débito, Dinheiro)
var PaymentsFinalizedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payments_finalized_total",
		Help:      "Total number of fiches with payment finalized, by method.",
	},
	[]string{"method"},
)

// BulkItemsTotal counts per-item outcomes of bulk updates.
// Labels:
//   - operation: "payment" or "status"
//   - result: "ok" or "error"
var BulkItemsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bulk_items_total",
		Help:      "Total number of items processed by bulk updates, by outcome.",
	},
	[]string{"operation", "result"},
)

// ClosureTransitionsTotal counts monthly closure state transitions.
// Label:
//   - action: fechamento, aprovacao, reprovacao, reabertura
var ClosureTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "closure_transitions_total",
		Help:      "Total number of monthly closure transitions, by action.",
	},
	[]string{"action"},
)

// CEPLookupsTotal counts address lookups against ViaCEP.
// Label:
//   - result: "hit", "miss" or "error"
var CEPLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cep_lookups_total",
		Help:      "Total number of ViaCEP lookups, by result.",
	},
	[]string{"result"},
)
