package checker

import (
	"net"
	"strconv"
)

// checkTCP resolves host and tries a single connection to its first address.
// Latency is left to the caller.
func (c *Checker) checkTCP(host string, port uint16) bool {
	addrs, err := c.lookup(host)
	if err != nil || len(addrs) == 0 {
		c.log.Debug("prober poll did not resolve any address for tcp replica: %s (error: %v)", host, err)
		return false
	}

	addr := net.JoinHostPort(addrs[0].String(), strconv.Itoa(int(port)))
	c.log.Debug("prober poll will fire for tcp target: %s", addr)

	conn, err := net.DialTimeout("tcp", addr, c.metrics.DeadTimeout())
	if err != nil {
		c.log.Debug("prober poll could not connect to tcp target: %s (error: %v)", addr, err)
		return false
	}
	conn.Close()
	return true
}
