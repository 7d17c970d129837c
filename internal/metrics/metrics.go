// Package metrics registers the service's Prometheus collectors. The
// counters track the concurrency-control outcomes that matter
// operationally: how often edits collide on locks or versions, and how
// many records are created.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recordsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "registry_records_created_total",
		Help: "Total records created, labeled by entity kind.",
	}, []string{"entity"})

	lockConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "registry_lock_conflicts_total",
		Help: "Total requests rejected because another user held the soft lock.",
	})

	versionConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "registry_version_conflicts_total",
		Help: "Total updates rejected because the presented version was stale.",
	})
)

// RecordCreated increments the created-records counter for one entity kind.
func RecordCreated(entity string) { recordsCreated.WithLabelValues(entity).Inc() }

// LockConflict increments the lock-conflict counter.
func LockConflict() { lockConflicts.Inc() }

// VersionConflict increments the version-conflict counter.
func VersionConflict() { versionConflicts.Inc() }
