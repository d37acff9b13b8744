package checker

import (
	"time"

	"probe-relay/models"
)

// Classify maps a probe outcome to a Status. An unreachable replica is dead
// whatever its latency; a reachable one is sick once latency reaches sickAt.
func Classify(reachable bool, latency, sickAt time.Duration) models.Status {
	if !reachable {
		return models.StatusDead
	}
	if latency >= sickAt {
		return models.StatusSick
	}
	return models.StatusHealthy
}
