package checker

import (
	"fmt"
	"net"
	"time"

	probing "github.com/prometheus-community/pro-bing"
)

// ICMPTimeout caps the wait for a single echo reply. A lower dead timeout wins.
const ICMPTimeout = 1000 * time.Millisecond

// Pinger sends one ICMP echo request and returns its round-trip time.
type Pinger interface {
	Ping(addr net.IPAddr, timeout time.Duration) (time.Duration, error)
}

// ICMPPinger pings with pro-bing. Privileged selects raw ICMP sockets over
// unprivileged datagram sockets.
type ICMPPinger struct {
	Privileged bool
}

func (p ICMPPinger) Ping(addr net.IPAddr, timeout time.Duration) (time.Duration, error) {
	pinger, err := probing.NewPinger(addr.String())
	if err != nil {
		return 0, fmt.Errorf("create pinger for %s: %w", addr.String(), err)
	}
	pinger.Count = 1
	pinger.Timeout = timeout
	pinger.SetPrivileged(p.Privileged)

	if err := pinger.Run(); err != nil {
		return 0, fmt.Errorf("ping %s: %w", addr.String(), err)
	}

	stats := pinger.Statistics()
	if stats.PacketsRecv == 0 {
		return 0, fmt.Errorf("no echo reply from %s within %s", addr.String(), timeout)
	}
	return stats.MaxRtt, nil
}

// checkICMP pings every address the host resolves to, in order. The replica
// is up only if all of them answer; the first failure stops the check. The
// reported latency is the slowest round trip seen.
func (c *Checker) checkICMP(host string) (bool, time.Duration) {
	addrs, err := c.lookup(host)
	if err != nil {
		c.log.Error("prober poll address for icmp replica is invalid: %s (error: %v)", host, err)
		return false, 0
	}
	if len(addrs) == 0 {
		c.log.Debug("prober poll did not resolve any address for icmp replica: %s", host)
		return false, 0
	}

	c.log.Debug("prober poll will fire for icmp host: %s (%d targets)", host, len(addrs))

	timeout := min(ICMPTimeout, c.metrics.DeadTimeout())

	var maxRTT time.Duration
	for _, addr := range addrs {
		rtt, err := c.Pinger.Ping(addr, timeout)
		if err != nil {
			c.log.Debug("prober poll error for icmp target: %s from host: %s (error: %v)", addr.String(), host, err)
			return false, 0
		}
		c.log.Debug("got prober poll response for icmp target: %s from host: %s", addr.String(), host)
		if rtt > maxRTT {
			maxRTT = rtt
		}
	}
	return true, maxRTT
}
