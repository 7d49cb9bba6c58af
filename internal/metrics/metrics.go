// Package metrics registers the service's Prometheus counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MessagesStored counts broker deliveries durably recorded in the inbox.
	MessagesStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mailing_inbox_messages_stored_total",
		Help: "The total number of broker messages written to the inbox",
	})

	// MessagesRejected counts broker deliveries that failed to decode or persist.
	MessagesRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mailing_inbox_messages_rejected_total",
		Help: "The total number of broker messages left unacked for redelivery",
	})

	// RecordsProcessed counts inbox records successfully notified and marked processed.
	RecordsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mailing_dispatch_records_processed_total",
		Help: "The total number of inbox records dispatched as emails",
	})

	// RecordsFailed counts record-scoped dispatch failures; failed records stay pending.
	RecordsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mailing_dispatch_records_failed_total",
		Help: "The total number of inbox records that failed dispatch and remain pending",
	})

	// DispatchCycles counts completed dispatch cycles.
	DispatchCycles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mailing_dispatch_cycles_total",
		Help: "The total number of completed dispatch cycles",
	})
)
