package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FeesGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classbill_fees_generated_total",
		Help: "Monthly fees created by the invoice generator.",
	})

	FeesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classbill_fees_skipped_total",
		Help: "Generation attempts skipped because the fee already existed.",
	})

	GenerationErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classbill_generation_errors_total",
		Help: "Per-student generation failures (isolated, batch continues).",
	})

	PaymentsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classbill_payments_recorded_total",
		Help: "Payments appended to the ledger.",
	})

	SchedulerTicks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classbill_scheduler_ticks_total",
		Help: "Completed scheduler passes.",
	})

	SchedulerTickFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classbill_scheduler_tick_failures_total",
		Help: "Scheduler passes aborted by a storage failure.",
	})
)
