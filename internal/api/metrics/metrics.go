// Package metrics defines the request-path Prometheus metrics for the
// election service; delivery metrics live with the notification dispatcher.
// Metrics register themselves with the default registry via promauto at
// package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "election"

// ── Enrollment metrics ────────────────────────────────────────────────────────

// EnrollmentsTotal counts enrollment attempts by outcome.
// Labels:
//   - outcome: "success", or the rejection reason ("conflict", "no_face",
//     "multiple_faces", "not_verified", "invalid", "error")
var EnrollmentsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "enrollments_total",
		Help:      "Total number of enrollment attempts, by outcome.",
	},
	[]string{"outcome"},
)

// ── One-time-code metrics ─────────────────────────────────────────────────────

// CodesIssuedTotal counts one-time codes issued per channel.
var CodesIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "codes_issued_total",
		Help:      "Total number of one-time codes issued, by channel.",
	},
	[]string{"channel"},
)

// CodesVerifiedTotal counts verification attempts per channel and result.
// Labels:
//   - channel: "email" or "mobile"
//   - result: "verified", "invalid", "expired"
var CodesVerifiedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "codes_verified_total",
		Help:      "Total number of one-time-code verification attempts, by channel and result.",
	},
	[]string{"channel", "result"},
)

// ── Face verification metrics ─────────────────────────────────────────────────

// FaceVerificationsTotal counts face verification calls by result.
// Label:
//   - result: "match", "no_match", "no_face", "not_enrolled", "error"
var FaceVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "face_verifications_total",
		Help:      "Total number of face verification attempts, by result.",
	},
	[]string{"result"},
)

// FaceMatchDistance observes the best embedding distance per verification.
// The 0.6 acceptance threshold sits in the middle of the bucket range so both
// sides of the decision boundary are visible.
var FaceMatchDistance = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "face_match_distance",
		Help:      "Best Euclidean distance between live capture and enrolled embedding.",
		Buckets:   []float64{0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 1.0, 1.2},
	},
)

// ── Ballot metrics ────────────────────────────────────────────────────────────

// VotesCastTotal counts ballot casting attempts by outcome.
// Label:
//   - outcome: "accepted", "already_voted", "not_found", "error"
var VotesCastTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "votes_cast_total",
		Help:      "Total number of vote casting attempts, by outcome.",
	},
	[]string{"outcome"},
)
