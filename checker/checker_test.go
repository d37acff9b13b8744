package checker

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"probe-relay/logger"
	"probe-relay/models"
)

type sleepRecorder struct {
	delays []time.Duration
}

func (s *sleepRecorder) Sleep(d time.Duration) {
	s.delays = append(s.delays, d)
}

func testMetrics() models.Metrics {
	return models.DefaultConfig().Metrics
}

func newTestChecker(metrics models.Metrics) (*Checker, *sleepRecorder) {
	rec := &sleepRecorder{}
	c := New(metrics, "probe-relay/test", logger.Discard())
	c.Sleep = rec.Sleep
	return c, rec
}

// steppingClock advances by step every time it is read.
func steppingClock(step time.Duration) func() time.Time {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		current := now
		now = now.Add(step)
		return current
	}
}

type staticResolver struct {
	addrs []net.IPAddr
	err   error
}

func (r staticResolver) LookupIPAddr(context.Context, string) ([]net.IPAddr, error) {
	return r.addrs, r.err
}

var errNoReply = errors.New("no reply")

type scriptedPinger struct {
	rtts    map[string]time.Duration
	fail    map[string]bool
	pinged  []string
	timeout time.Duration
}

func (p *scriptedPinger) Ping(addr net.IPAddr, timeout time.Duration) (time.Duration, error) {
	p.pinged = append(p.pinged, addr.String())
	p.timeout = timeout
	if p.fail[addr.String()] {
		return 0, errNoReply
	}
	return p.rtts[addr.String()], nil
}

func ipAddrs(ips ...string) []net.IPAddr {
	out := make([]net.IPAddr, 0, len(ips))
	for _, ip := range ips {
		out = append(out, net.IPAddr{IP: net.ParseIP(ip)})
	}
	return out
}

func mustReplica(t *testing.T, raw string) models.Replica {
	t.Helper()
	r, err := models.ParseReplica(raw)
	if err != nil {
		t.Fatalf("parse %s: %v", raw, err)
	}
	return r
}
