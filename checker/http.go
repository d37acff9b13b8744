package checker

import (
	"net"
	"net/http"
	"time"
)

func newHTTPClient(timeout time.Duration) *http.Client {
	// No Proxy: replicas are always dialed directly.
	transport := &http.Transport{
		DialContext:           (&net.Dialer{Timeout: timeout}).DialContext,
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
		DisableKeepAlives:     true,
	}
	return &http.Client{
		Transport: transport,
		// 3xx answers are judged against the healthy range like any other code.
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// checkHTTP sends a HEAD request and reports whether the status code falls
// in [poll_http_status_healthy_above, poll_http_status_healthy_below).
func (c *Checker) checkHTTP(url string) bool {
	c.log.Debug("prober poll will fire for http target: %s", url)

	req, err := http.NewRequest(http.MethodHead, url, nil)
	if err != nil {
		c.log.Error("invalid replica request url: %s (error: %v)", url, err)
		return false
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Debug("prober poll result was not received for url: %s (error: %v)", url, err)
		return false
	}
	defer resp.Body.Close()

	code := resp.StatusCode
	c.log.Debug("prober poll result received for url: %s with status: %d", url, code)

	return code >= int(c.metrics.PollHTTPStatusHealthyAbove) &&
		code < int(c.metrics.PollHTTPStatusHealthyBelow)
}
