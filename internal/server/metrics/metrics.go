// Package metrics provides Prometheus instrumentation for the zkpauth server:
// proof outcomes, registrations, store sizes and gRPC request metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace is the Prometheus namespace for all zkpauth metrics
	Namespace = "zkpauth"

	// Label names
	LabelProofSystem = "proof_system"
	LabelOutcome     = "outcome"
	LabelMethod      = "method"
	LabelStatusCode  = "status_code"

	// Proof systems
	ProofGroup      = "group"
	ProofCommitment = "commitment"

	// Outcomes
	OutcomeSuccess         = "success"
	OutcomeRejected        = "rejected"
	OutcomeUnauthenticated = "unauthenticated"
	OutcomeNotFound        = "not_found"
	OutcomeMalformed       = "malformed"
	OutcomeError           = "error"

	// Registration results
	RegistrationCreated  = "created"
	RegistrationExisting = "existing"
)

var (
	// RegistrationsTotal counts Register calls by whether a new user was created.
	RegistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "registrations_total",
			Help:      "Total number of registrations by result",
		},
		[]string{LabelOutcome},
	)

	// RoundsTotal counts challenges and commitments issued per proof system.
	RoundsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "rounds_total",
			Help:      "Total number of proof rounds opened by proof system",
		},
		[]string{LabelProofSystem},
	)

	// VerificationsTotal counts verify and open calls by proof system and outcome.
	VerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "verifications_total",
			Help:      "Total number of proof verifications by proof system and outcome",
		},
		[]string{LabelProofSystem, LabelOutcome},
	)

	// Users is the number of registered users held in memory.
	Users = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "users",
			Help:      "Number of registered users",
		},
	)

	// AuthIDs is the number of live auth_id bindings.
	AuthIDs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "auth_ids",
			Help:      "Number of live auth_id bindings",
		},
	)

	// AuthIDsExpiredTotal counts bindings removed by the sweeper.
	AuthIDsExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "auth_ids_expired_total",
			Help:      "Total number of expired auth_id bindings removed by the sweeper",
		},
	)

	// GRPCRequestsTotal tracks the total number of gRPC requests by method and status code.
	GRPCRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "grpc",
			Name:      "requests_total",
			Help:      "Total number of gRPC requests by method and status code",
		},
		[]string{LabelMethod, LabelStatusCode},
	)

	// GRPCRequestDuration tracks the duration of gRPC requests in seconds.
	GRPCRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "grpc",
			Name:      "request_duration_seconds",
			Help:      "Duration of gRPC requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{LabelMethod},
	)

	// RateLimitedTotal counts requests rejected by the rate limiter.
	RateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "grpc",
			Name:      "rate_limited_total",
			Help:      "Total number of gRPC requests rejected by the rate limiter",
		},
		[]string{LabelMethod},
	)
)

func RecordRegistration(created bool) {
	if created {
		RegistrationsTotal.WithLabelValues(RegistrationCreated).Inc()
		return
	}
	RegistrationsTotal.WithLabelValues(RegistrationExisting).Inc()
}

func RecordRound(proofSystem string) {
	RoundsTotal.WithLabelValues(proofSystem).Inc()
}

func RecordVerification(proofSystem, outcome string) {
	VerificationsTotal.WithLabelValues(proofSystem, outcome).Inc()
}

// SetStoreSizes updates the user and binding gauges.
func SetStoreSizes(users, authIDs int) {
	Users.Set(float64(users))
	AuthIDs.Set(float64(authIDs))
}

func RecordExpired(n int) {
	AuthIDsExpiredTotal.Add(float64(n))
}

// RecordGRPCRequest records a finished unary call.
func RecordGRPCRequest(method, statusCode string, duration float64) {
	GRPCRequestsTotal.WithLabelValues(method, statusCode).Inc()
	GRPCRequestDuration.WithLabelValues(method).Observe(duration)
}

func RecordRateLimited(method string) {
	RateLimitedTotal.WithLabelValues(method).Inc()
}
