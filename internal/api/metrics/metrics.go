// Package metrics defines the custom Prometheus metrics of the catalog API.
// HTTP request metrics come from the echoprometheus middleware; the metrics
// here describe domain outcomes. All are registered with the default registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "catalog"

// AuthAttemptsTotal counts registration and login attempts.
// Labels:
//   - operation: "register", "register_admin" or "login"
//   - result: "success", "conflict", "unknown_user", "bad_secret", "forbidden", "invalid", "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of registration and login attempts, by outcome.",
	},
	[]string{"operation", "result"},
)

// PartMutationsTotal counts successful part mutations.
// Label:
//   - operation: "create", "update" or "toggle"
var PartMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "part_mutations_total",
		Help:      "Total number of successful part mutations, by operation.",
	},
	[]string{"operation"},
)

// ImageUploadsTotal counts image upload outcomes.
// Label:
//   - result: "stored", "too_large", "error", "discarded" or "orphaned"
var ImageUploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "image_uploads_total",
		Help:      "Total number of part image uploads, by result.",
	},
	[]string{"result"},
)
