package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		paymentsTotal,
		payoutsTotal,
		payoutAmountTotal,
	)
}

var (
	paymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_total",
			Help: "Checkout sessions by status (initiated/failed).",
		},
		[]string{"status"},
	)

	payoutsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payouts_total",
			Help: "Payout requests by channel (mobile_money/bank_transfer) and status (initiated/failed).",
		},
		[]string{"channel", "status"},
	)

	payoutAmountTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payouts_amount_total",
			Help: "The total value of accepted payout requests, labeled by channel.",
		},
		[]string{"channel"},
	)
)

func IncPayment(status string) {
	paymentsTotal.WithLabelValues(norm(status)).Inc()
}

func IncPayout(channel, status string) {
	payoutsTotal.WithLabelValues(norm(channel), norm(status)).Inc()
}

func AddPayoutAmount(channel string, amount float64) {
	payoutAmountTotal.WithLabelValues(norm(channel)).Add(amount)
}
