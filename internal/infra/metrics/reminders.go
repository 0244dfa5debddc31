package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		remindersScheduledTotal,
		remindersFinishedTotal,
		remindersPending,
		reminderFireDriftSeconds,
	)
}

var (
	remindersScheduledTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reminders_scheduled_total",
			Help: "Total number of reminders accepted by the scheduler.",
		},
	)

	remindersFinishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminders_finished_total",
			Help: "Reminders that left the pending set, labeled by outcome.",
		},
		[]string{"outcome"}, // 'delivered', 'failed', 'cancelled'
	)

	remindersPending = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "reminders_pending",
			Help: "Number of reminders currently waiting on a timer.",
		},
	)

	reminderFireDriftSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reminder_fire_drift_seconds",
			Help:    "Delay between the requested fire time and actual delivery.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 300},
		},
	)
)

func IncReminderScheduled() {
	remindersScheduledTotal.Inc()
}

func IncReminderFinished(outcome string) {
	remindersFinishedTotal.WithLabelValues(norm(outcome)).Inc()
}

func SetRemindersPending(n int) {
	remindersPending.Set(float64(n))
}

func ObserveFireDrift(seconds float64) {
	if seconds < 0 {
		seconds = 0
	}
	reminderFireDriftSeconds.Observe(seconds)
}
