package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	EmailsSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "emails_sent_total",
			Help: "Total emails sent",
		},
	)

	EmailsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "emails_failed_total",
			Help: "Total emails with a terminal failed outcome",
		},
	)

	JobRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_job_retries_total",
			Help: "Total dispatch job retries",
		},
	)

	JobsEnqueued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_jobs_enqueued_total",
			Help: "Total dispatch jobs enqueued",
		},
	)
)

func Init() {
	prometheus.MustRegister(EmailsSent)
	prometheus.MustRegister(EmailsFailed)
	prometheus.MustRegister(JobRetries)
	prometheus.MustRegister(JobsEnqueued)
}
