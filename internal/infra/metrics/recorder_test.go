package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	anonbot "github.com/NEO-KLIZZERX/Anon-Messages-Bot"
	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/internal/domain"
)

func TestRecorder(t *testing.T) {
	r := NewRecorder(prometheus.NewRegistry())

	r.Observe("deliver", domain.Delivered(1, 2, 3, anonbot.Photo{FileID: "f"}))
	r.Observe("deliver", domain.RateLimited(domain.RateDecision{Reason: domain.RateReasonCooldown, RetryAfter: 3}))
	r.Observe("deliver", domain.RateLimited(domain.RateDecision{Reason: domain.RateReasonCooldown, RetryAfter: 1}))
	r.Observe("initiate", domain.Reject(domain.OutcomeInvalidLink))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.outcomes.WithLabelValues("deliver", "delivered")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.outcomes.WithLabelValues("deliver", "rate_limited")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.outcomes.WithLabelValues("initiate", "invalid_link")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.rateLimited.WithLabelValues("cooldown")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.delivered.WithLabelValues("photo")))
}
