// Package metrics экспортирует Prometheus-счётчики периодических задач.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager хранит метрики планировщика и диспетчера. Nil-менеджер допустим:
// все методы в этом случае ничего не делают, что упрощает тесты.
type Manager struct {
	dispatchCycles      prometheus.Counter
	triggersFired       *prometheus.CounterVec
	notificationsSent   prometheus.Counter
	notificationsFailed prometheus.Counter
	eventsCreated       prometheus.Counter
	ratingUpdates       prometheus.Counter
}

func New(namespace string) *Manager {
	return &Manager{
		dispatchCycles: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_cycles_total",
			Help:      "Number of dispatch poll cycles completed.",
		}),
		triggersFired: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "triggers_fired_total",
			Help:      "Number of event triggers fired, by trigger type.",
		}, []string{"type"}),
		notificationsSent: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_sent_total",
			Help:      "Number of push notifications delivered.",
		}),
		notificationsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_failed_total",
			Help:      "Number of push deliveries that failed.",
		}),
		eventsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_created_total",
			Help:      "Number of events materialized by the scheduler.",
		}),
		ratingUpdates: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rating_updates_total",
			Help:      "Number of player rating writes.",
		}),
	}
}

// Handler отдаёт стандартный экспортер Prometheus.
func Handler() http.Handler {
	return promhttp.Handler()
}

func (m *Manager) DispatchCycleRan() {
	if m == nil {
		return
	}
	m.dispatchCycles.Inc()
}

func (m *Manager) TriggerFired(triggerType string) {
	if m == nil {
		return
	}
	m.triggersFired.WithLabelValues(triggerType).Inc()
}

func (m *Manager) NotificationSent() {
	if m == nil {
		return
	}
	m.notificationsSent.Inc()
}

func (m *Manager) NotificationFailed() {
	if m == nil {
		return
	}
	m.notificationsFailed.Inc()
}

func (m *Manager) EventCreated() {
	if m == nil {
		return
	}
	m.eventsCreated.Inc()
}

func (m *Manager) RatingUpdated(players int) {
	if m == nil {
		return
	}
	m.ratingUpdates.Add(float64(players))
}
