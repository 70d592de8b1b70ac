package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// PaymentInitTotal counts payment initiation outcomes.
	PaymentInitTotal *prometheus.CounterVec
	// WebhookEventsTotal counts inbound gateway webhook outcomes.
	WebhookEventsTotal *prometheus.CounterVec
	// NotificationDispatchTotal counts confirmation email dispatch outcomes.
	NotificationDispatchTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		PaymentInitTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_init_total",
			Help:      "Count of payment initiation outcomes.",
		}, []string{"result"})
		WebhookEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_events_total",
			Help:      "Count of processed gateway webhooks by outcome.",
		}, []string{"result"})
		NotificationDispatchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_dispatch_total",
			Help:      "Count of confirmation email dispatch outcomes.",
		}, []string{"result"})

		mustRegisterCollector(reg, PaymentInitTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				PaymentInitTotal = v
			}
		})
		mustRegisterCollector(reg, WebhookEventsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				WebhookEventsTotal = v
			}
		})
		mustRegisterCollector(reg, NotificationDispatchTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				NotificationDispatchTotal = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, c prometheus.Collector, replace func(prometheus.Collector)) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			replace(are.ExistingCollector)
			return
		}
		panic(fmt.Errorf("register collector: %w", err))
	}
}
