package worker

import "github.com/prometheus/client_golang/prometheus"

var (
	jobsProcessed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chat_gateway",
		Subsystem: "worker",
		Name:      "jobs_total",
		Help:      "Background jobs handled, by type and outcome",
	}, []string{"type", "outcome"})

	dlqArchived = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chat_gateway",
		Subsystem: "worker",
		Name:      "dlq_archived_total",
		Help:      "Dead letter jobs taken off the DLQ list, by archive result",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(jobsProcessed, dlqArchived)
}
