package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementUsersCreated()
	m.IncrementUsersCreated()
	m.IncrementValidationFailure("email")
	m.IncrementNotificationFailures()

	assert.InDelta(t, 2, testutil.ToFloat64(m.UsersCreated), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ValidationFailures.WithLabelValues("email")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m.ValidationFailures.WithLabelValues("username")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.NotificationFailures), 0)
}

func TestNewOnSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}

func TestObserveRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveRegistration(time.Now().Add(-50 * time.Millisecond))

	count, err := testutil.GatherAndCount(reg, "signup_registration_duration_seconds")
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}
