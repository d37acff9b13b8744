package notifier

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"probe-relay/logger"
	"probe-relay/models"
	"probe-relay/retry"
)

const (
	ReportTimeout    = 10 * time.Second
	RetryStatusTimes = 2
	RetryStatusDelay = 3 * time.Second
)

// ErrReportStatus is returned when the endpoint answers with a non-2xx code.
var ErrReportStatus = errors.New("report rejected by endpoint")

type reportPayload struct {
	Replica  string `json:"replica"`
	Health   string `json:"health"`
	Interval uint64 `json:"interval"`
}

// Reporter posts replica statuses to the monitoring endpoint.
type Reporter struct {
	Sleep func(time.Duration)

	endpoint      string
	authorization string
	userAgent     string
	client        *http.Client
	log           *logger.Logger
}

func NewReporter(report models.Report, userAgent string, log *logger.Logger) *Reporter {
	return &Reporter{
		Sleep:         time.Sleep,
		endpoint:      strings.TrimRight(report.Endpoint, "/"),
		authorization: "Basic " + base64.StdEncoding.EncodeToString([]byte(":"+report.Token)),
		userAgent:     userAgent,
		client:        &http.Client{Timeout: ReportTimeout},
		log:           log,
	}
}

// ReportURL returns the endpoint a node's statuses are posted to.
func (r *Reporter) ReportURL(serviceID, nodeID string) string {
	return fmt.Sprintf("%s/reporter/%s/%s/", r.endpoint, url.PathEscape(serviceID), url.PathEscape(nodeID))
}

// Report sends one status, retrying RetryStatusTimes times RetryStatusDelay
// apart on failure. The error of the last attempt is returned once the budget
// is spent; callers log it and move on.
func (r *Reporter) Report(serviceID, nodeID, replica string, status models.Status, interval time.Duration) error {
	policy := retry.Policy{
		Retries: RetryStatusTimes,
		Delay:   RetryStatusDelay,
		Sleep:   r.Sleep,
		OnRetry: func(attempt int) {
			r.log.Warn("status report attempt #%d failed on #%s:#%s:[%s], will retry",
				attempt, serviceID, nodeID, replica)
		},
	}

	lastErr, attempt := retry.Do(policy,
		func(attempt int) error {
			r.log.Info("running status report attempt #%d on #%s:#%s:[%s]",
				attempt, serviceID, nodeID, replica)
			return r.send(serviceID, nodeID, replica, status, interval)
		},
		func(err error) bool { return err == nil },
	)

	if lastErr != nil {
		r.log.Debug("status report #%s:#%s:[%s] gave up after attempt #%d",
			serviceID, nodeID, replica, attempt)
		return lastErr
	}
	r.log.Debug("status report #%s:#%s:[%s] is %s after attempt #%d",
		serviceID, nodeID, replica, status, attempt)
	return nil
}

func (r *Reporter) send(serviceID, nodeID, replica string, status models.Status, interval time.Duration) error {
	reportURL := r.ReportURL(serviceID, nodeID)
	r.log.Debug("generated report url: %s", reportURL)

	payloadBytes, err := json.Marshal(reportPayload{
		Replica:  replica,
		Health:   status.String(),
		Interval: uint64(interval / time.Second),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal report payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, reportURL, bytes.NewReader(payloadBytes))
	if err != nil {
		return fmt.Errorf("failed to create report request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Authorization", r.authorization)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		r.log.Warn("failed reporting to probe url: %s because: %v", reportURL, err)
		return fmt.Errorf("failed to post report: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		r.log.Debug("could not report to probe url: %s (got status code: %d)", reportURL, resp.StatusCode)
		return fmt.Errorf("%w: %s", ErrReportStatus, resp.Status)
	}

	r.log.Debug("reported to probe url: %s", reportURL)
	return nil
}
