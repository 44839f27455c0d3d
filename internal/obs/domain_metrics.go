package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// QuotesComputed counts preview quotes served, labelled by pricing mode.
	QuotesComputed *prometheus.CounterVec
	// CartItemsBuilt counts cart items admitted by the builder, labelled by pricing mode.
	CartItemsBuilt *prometheus.CounterVec
	// CartItemsRejected counts builder rejections, labelled by rejection code.
	CartItemsRejected *prometheus.CounterVec
	// OrdersCommitted counts finalized orders, labelled by payment status.
	OrdersCommitted *prometheus.CounterVec
	// OrdersRejected counts finalization rejections, labelled by rejection code.
	OrdersRejected *prometheus.CounterVec
	// ChannelIntake counts external channel submissions by mode and outcome.
	ChannelIntake *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers the POS domain
// collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		QuotesComputed = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_computed_total",
			Help:      "Count of live price previews served, by pricing mode.",
		}, []string{"mode"})
		CartItemsBuilt = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_items_built_total",
			Help:      "Count of cart items that passed the validation gate, by pricing mode.",
		}, []string{"mode"})
		CartItemsRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_items_rejected_total",
			Help:      "Count of cart item rejections, by rejection code.",
		}, []string{"code"})
		OrdersCommitted = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_committed_total",
			Help:      "Count of committed orders, by payment status.",
		}, []string{"status"})
		OrdersRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_rejected_total",
			Help:      "Count of order finalization rejections, by rejection code.",
		}, []string{"code"})
		ChannelIntake = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "channel_intake_total",
			Help:      "Count of external channel submissions, by pricing mode and outcome.",
		}, []string{"mode", "result"})

		for _, c := range []**prometheus.CounterVec{
			&QuotesComputed, &CartItemsBuilt, &CartItemsRejected,
			&OrdersCommitted, &OrdersRejected, &ChannelIntake,
		} {
			mustRegisterCounterVec(reg, c)
		}
	})
}

func mustRegisterCounterVec(reg prometheus.Registerer, counter **prometheus.CounterVec) {
	if err := reg.Register(*counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				*counter = existing
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
