package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestBusinessCounters(t *testing.T) {
	m := NewMetricsRegistry(prometheus.NewRegistry())

	m.Registration("candidate", "success")
	m.Registration("candidate", "success")
	m.OTPEvent("volunteer", "issued")
	m.PaymentTransition("approve", "approved")
	m.WriteConflict("payment_approve")
	m.CacheLookup("job_roles", true)
	m.CacheLookup("job_roles", false)

	if got := testutil.ToFloat64(m.RegistrationsTotal.WithLabelValues("candidate", "success")); got != 2 {
		t.Errorf("registrations = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.OTPEventsTotal.WithLabelValues("volunteer", "issued")); got != 1 {
		t.Errorf("otp events = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.CacheMissesTotal.WithLabelValues("job_roles")); got != 1 {
		t.Errorf("cache misses = %v, want 1", got)
	}
}

func TestNilRegistryIsSafe(t *testing.T) {
	var m *MetricsRegistry
	m.Registration("candidate", "success")
	m.OTPEvent("candidate", "issued")
	m.PaymentTransition("reject", "rejected")
	m.WriteConflict("x")
	m.EmailFailure("otp")
	m.CacheLookup("x", true)
}

func TestSeparateRegistriesDoNotCollide(t *testing.T) {
	NewMetricsRegistry(prometheus.NewRegistry())
	NewMetricsRegistry(prometheus.NewRegistry())
}
