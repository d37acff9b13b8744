package notifier

import (
	"bytes"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"probe-relay/logger"
	"probe-relay/models"
)

type capturedRequest struct {
	method        string
	path          string
	header        http.Header
	body          string
	contentLength int64
}

type reportServer struct {
	*httptest.Server
	mu       sync.Mutex
	requests []capturedRequest
}

func newReportServer(t *testing.T, codes ...int) *reportServer {
	t.Helper()
	rs := &reportServer{}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rs.mu.Lock()
		rs.requests = append(rs.requests, capturedRequest{
			method:        r.Method,
			path:          r.URL.Path,
			header:        r.Header.Clone(),
			body:          string(body),
			contentLength: r.ContentLength,
		})
		n := len(rs.requests)
		rs.mu.Unlock()

		code := codes[len(codes)-1]
		if n <= len(codes) {
			code = codes[n-1]
		}
		w.WriteHeader(code)
	}))
	t.Cleanup(rs.Close)
	return rs
}

func (rs *reportServer) captured() []capturedRequest {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return append([]capturedRequest(nil), rs.requests...)
}

type sleepRecorder struct {
	delays []time.Duration
}

func (s *sleepRecorder) Sleep(d time.Duration) {
	s.delays = append(s.delays, d)
}

func newTestReporter(endpoint string) (*Reporter, *sleepRecorder) {
	rec := &sleepRecorder{}
	r := NewReporter(models.Report{Endpoint: endpoint, Token: "s3cr3t"}, "probe-relay/test", logger.Discard())
	r.Sleep = rec.Sleep
	return r, rec
}

func TestReportWireFormat(t *testing.T) {
	rs := newReportServer(t, http.StatusOK)
	r, rec := newTestReporter(rs.URL + "/")

	if err := r.Report("web", "router", "icmp://10.0.0.1", models.StatusSick, 120*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reqs := rs.captured()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(reqs))
	}
	req := reqs[0]

	if req.method != http.MethodPost || req.path != "/reporter/web/router/" {
		t.Fatalf("unexpected request line: %s %s", req.method, req.path)
	}
	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte(":s3cr3t"))
	if got := req.header.Get("Authorization"); got != wantAuth {
		t.Fatalf("got authorization %q want %q", got, wantAuth)
	}
	if got := req.header.Get("Content-Type"); got != "application/json" {
		t.Fatalf("unexpected content type %q", got)
	}
	if got := req.header.Get("User-Agent"); got != "probe-relay/test" {
		t.Fatalf("unexpected user agent %q", got)
	}
	wantBody := `{"replica":"icmp://10.0.0.1","health":"sick","interval":120}`
	if req.body != wantBody {
		t.Fatalf("got body %s want %s", req.body, wantBody)
	}
	if req.contentLength != int64(len(wantBody)) {
		t.Fatalf("got content length %d want %d", req.contentLength, len(wantBody))
	}
	if len(rec.delays) != 0 {
		t.Fatalf("expected no retries, got %v", rec.delays)
	}
}

func TestReportAcceptsAny2xx(t *testing.T) {
	rs := newReportServer(t, http.StatusNoContent)
	r, _ := newTestReporter(rs.URL)

	if err := r.Report("web", "router", "0", models.StatusHealthy, time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReportRetriesServerErrors(t *testing.T) {
	rs := newReportServer(t, http.StatusInternalServerError)
	r, rec := newTestReporter(rs.URL)

	err := r.Report("web", "router", "tcp://db:5432", models.StatusDead, 120*time.Second)
	if !errors.Is(err, ErrReportStatus) {
		t.Fatalf("expected ErrReportStatus, got %v", err)
	}
	if n := len(rs.captured()); n != 3 {
		t.Fatalf("expected 3 attempts, got %d", n)
	}
	if len(rec.delays) != 2 || rec.delays[0] != 3*time.Second || rec.delays[1] != 3*time.Second {
		t.Fatalf("unexpected retry delays: %v", rec.delays)
	}
}

func TestReportRecoversOnRetry(t *testing.T) {
	rs := newReportServer(t, http.StatusBadGateway, http.StatusOK)
	r, rec := newTestReporter(rs.URL)

	if err := r.Report("web", "router", "0", models.StatusHealthy, time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := len(rs.captured()); n != 2 {
		t.Fatalf("expected 2 attempts, got %d", n)
	}
	if len(rec.delays) != 1 {
		t.Fatalf("expected 1 retry, got %v", rec.delays)
	}
}

func TestReportLogsFinalAttempt(t *testing.T) {
	rs := newReportServer(t, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusNoContent)
	r, _ := newTestReporter(rs.URL)
	var out bytes.Buffer
	r.log = logger.New(logger.LevelDebug, &out)

	if err := r.Report("web", "router", "0", models.StatusSick, time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "status report #web:#router:[0] is sick after attempt #2") {
		t.Fatalf("final attempt not logged:\n%s", out.String())
	}

	failing := newReportServer(t, http.StatusInternalServerError)
	r, _ = newTestReporter(failing.URL)
	out.Reset()
	r.log = logger.New(logger.LevelDebug, &out)

	if err := r.Report("web", "router", "0", models.StatusDead, time.Minute); err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(out.String(), "status report #web:#router:[0] gave up after attempt #2") {
		t.Fatalf("exhausted budget not logged:\n%s", out.String())
	}
}

func TestReportTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := server.URL
	server.Close()

	r, rec := newTestReporter(endpoint)

	err := r.Report("web", "router", "0", models.StatusHealthy, time.Minute)
	if err == nil || errors.Is(err, ErrReportStatus) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if len(rec.delays) != 2 {
		t.Fatalf("expected 2 retries, got %v", rec.delays)
	}
}

func TestReportURL(t *testing.T) {
	r, _ := newTestReporter("https://status.example.com//")

	if got := r.ReportURL("web", "edge node"); got != "https://status.example.com/reporter/web/edge%20node/" {
		t.Fatalf("unexpected url %q", got)
	}
}
