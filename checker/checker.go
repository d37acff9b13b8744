package checker

import (
	"context"
	"net"
	"net/http"
	"time"

	"probe-relay/logger"
	"probe-relay/models"
	"probe-relay/retry"
)

// RetryReplicaDelay is the pause between two attempts on a dead replica.
const RetryReplicaDelay = 200 * time.Millisecond

// Resolver looks up every address of a host. *net.Resolver satisfies it.
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// Checker probes replicas and classifies them. Zero-value fields other than
// the exported seams are not usable; build one with New.
type Checker struct {
	Resolver Resolver
	Pinger   Pinger
	Sleep    func(time.Duration)
	Now      func() time.Time

	metrics   models.Metrics
	userAgent string
	client    *http.Client
	log       *logger.Logger
}

func New(metrics models.Metrics, userAgent string, log *logger.Logger) *Checker {
	return &Checker{
		Resolver:  net.DefaultResolver,
		Pinger:    ICMPPinger{Privileged: metrics.PollICMPPrivileged},
		Sleep:     time.Sleep,
		Now:       time.Now,
		metrics:   metrics,
		userAgent: userAgent,
		client:    newHTTPClient(metrics.DeadTimeout()),
		log:       log,
	}
}

// Probe checks a replica, retrying after RetryReplicaDelay while it comes out
// dead, up to the configured poll_retry extra attempts. Healthy and sick
// results are returned straight away.
func (c *Checker) Probe(serviceID, nodeID string, replica models.Replica) models.Status {
	policy := retry.Policy{
		Retries: int(c.metrics.PollRetry),
		Delay:   RetryReplicaDelay,
		Sleep:   c.Sleep,
		OnRetry: func(attempt int) {
			c.log.Warn("poll replica scan attempt #%d failed on #%s:#%s:[%s], will retry",
				attempt, serviceID, nodeID, replica)
		},
	}

	status, attempt := retry.Do(policy,
		func(attempt int) models.Status {
			c.log.Info("running poll replica scan attempt #%d on #%s:#%s:[%s]",
				attempt, serviceID, nodeID, replica)
			return c.Check(replica)
		},
		func(s models.Status) bool { return s != models.StatusDead },
	)

	c.log.Debug("poll replica #%s:#%s:[%s] is %s after attempt #%d",
		serviceID, nodeID, replica, status, attempt)
	return status
}

// Check runs a single probe. When the prober does not measure latency
// itself, the wall-clock time of the whole check is used, connection setup
// included.
func (c *Checker) Check(replica models.Replica) models.Status {
	c.log.Debug("scanning poll replica: [%s]", replica)

	start := c.Now()
	var (
		reachable bool
		latency   time.Duration
	)

	switch replica.Scheme {
	case models.SchemeICMP:
		reachable, latency = c.checkICMP(replica.Host)
	case models.SchemeTCP:
		reachable = c.checkTCP(replica.Host, replica.Port)
		latency = c.Now().Sub(start)
	case models.SchemeHTTP, models.SchemeHTTPS:
		reachable = c.checkHTTP(replica.URL)
		latency = c.Now().Sub(start)
	default:
		c.log.Error("cannot scan replica with unknown scheme: [%s]", replica)
		return models.StatusDead
	}

	return Classify(reachable, latency, c.metrics.SickLatency())
}

func (c *Checker) lookup(host string) ([]net.IPAddr, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.metrics.DeadTimeout())
	defer cancel()
	return c.Resolver.LookupIPAddr(ctx, host)
}
