package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "shareit"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by service, route and status code.",
		},
		[]string{"service", "route", "code"},
	)

	bookingTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_transitions_total",
			Help:      "Bookings entering a status.",
		},
		[]string{"status"},
	)

	commentsAdded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comments_added_total",
			Help:      "Comments accepted on items.",
		},
	)

	gatewayRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_rejections_total",
			Help:      "Requests refused by the gateway before forwarding.",
		},
		[]string{"reason"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingTransitions, commentsAdded, gatewayRejections)
	})
}

func IncHTTP(service, route string, code int) {
	httpRequests.WithLabelValues(service, route, strconv.Itoa(code)).Inc()
}

func IncBookingTransition(status string) {
	bookingTransitions.WithLabelValues(status).Inc()
}

func IncComment() {
	commentsAdded.Inc()
}

func IncGatewayRejection(reason string) {
	gatewayRejections.WithLabelValues(reason).Inc()
}
