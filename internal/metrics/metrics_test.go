package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	// Register should be safe to call multiple times
	Register()
	Register()

	before := testutil.ToFloat64(bookingTransitions.WithLabelValues("APPROVED"))
	IncBookingTransition("APPROVED")
	assert.Equal(t, before+1, testutil.ToFloat64(bookingTransitions.WithLabelValues("APPROVED")))

	beforeHTTP := testutil.ToFloat64(httpRequests.WithLabelValues("server", "GET /users", "200"))
	IncHTTP("server", "GET /users", 200)
	assert.Equal(t, beforeHTTP+1, testutil.ToFloat64(httpRequests.WithLabelValues("server", "GET /users", "200")))

	assert.NotPanics(t, func() {
		IncComment()
		IncGatewayRejection("validation")
	})
}
