package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"
	"golang.org/x/sync/errgroup"

	"github.com/kitahub/parent-portal/internal/observability/statsd"
)

// Status classifies a service's health.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// severity orders statuses so the aggregate can take the most severe.
func (s Status) severity() int {
	switch s {
	case StatusUnhealthy:
		return 2
	case StatusDegraded:
		return 1
	default:
		return 0
	}
}

// worst returns the more severe of two statuses.
func worst(a, b Status) Status {
	if b.severity() > a.severity() {
		return b
	}
	return a
}

// CheckResult is one downstream probe's outcome. Constructed fresh per
// invocation and immutable once returned.
type CheckResult struct {
	Status    Status `json:"status"`
	Connected bool   `json:"connected"`
	// ResponseTime is wall-clock milliseconds around the probe, recorded on
	// every outcome including failures.
	ResponseTime int64  `json:"responseTime"`
	Error        string `json:"error,omitempty"`
	// Details carries the upstream's own health payload verbatim. The
	// upstream's self-reported status never downgrades this probe; only
	// transport-level success or failure does.
	Details json.RawMessage `json:"details,omitempty"`
	// ReportedStatus surfaces the upstream's self-reported status extracted
	// from Details. Diagnostic only.
	ReportedStatus string `json:"reportedStatus,omitempty"`

	// Exactly one of these identifies the probed endpoint, matching the
	// per-service field name in the wire format.
	APIURL    string `json:"apiUrl,omitempty"`
	GibbonURL string `json:"gibbonUrl,omitempty"`
}

// HealthChecks groups the per-dependency results.
type HealthChecks struct {
	AIService CheckResult `json:"aiService"`
	Gibbon    CheckResult `json:"gibbon"`
}

// HealthReport is the aggregated health of the portal and its dependencies.
type HealthReport struct {
	Status    Status       `json:"status"`
	Timestamp string       `json:"timestamp"`
	Service   string       `json:"service"`
	Version   string       `json:"version"`
	Checks    HealthChecks `json:"checks"`
}

// HTTPStatus maps the overall status to the aggregate response code.
// Degraded still answers 200: the portal itself is up for load-balancer
// purposes even when a dependency is limping.
func (r *HealthReport) HTTPStatus() int {
	if r.Status == StatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

// ServiceName is the fixed identity reported by the health endpoint.
const ServiceName = "parent-portal"

// DefaultProbeTimeout bounds each downstream health probe.
const DefaultProbeTimeout = 5 * time.Second

// HealthServiceOptions groups dependencies for HealthService.
type HealthServiceOptions struct {
	AIServiceURL string
	GibbonURL    string
	Version      string
	ProbeTimeout time.Duration
	// StatusExpr is a JMESPath expression evaluated against a healthy
	// probe's JSON body to surface the upstream's self-reported status.
	// Empty disables extraction.
	StatusExpr string
	HTTPClient *http.Client
	Metrics    statsd.Sink
	Logger     *slog.Logger
}

// HealthService probes the two downstream dependencies concurrently and
// reduces their statuses into one aggregate.
type HealthService struct {
	aiServiceURL string
	gibbonURL    string
	version      string
	probeTimeout time.Duration
	statusExpr   jmespath.JMESPath
	client       *http.Client
	metrics      statsd.Sink
	logger       *slog.Logger
}

// NewHealthService constructs a HealthService. An invalid StatusExpr is
// logged and disabled rather than failing startup.
func NewHealthService(opts HealthServiceOptions) *HealthService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	timeout := opts.ProbeTimeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}

	var expr jmespath.JMESPath
	if opts.StatusExpr != "" {
		compiled, err := jmespath.Compile(opts.StatusExpr)
		if err != nil {
			logger.Warn("invalid health status expression, disabling extraction",
				"expr", opts.StatusExpr, "error", err)
		} else {
			expr = compiled
		}
	}

	return &HealthService{
		aiServiceURL: opts.AIServiceURL,
		gibbonURL:    opts.GibbonURL,
		version:      opts.Version,
		probeTimeout: timeout,
		statusExpr:   expr,
		client:       client,
		metrics:      opts.Metrics,
		logger:       logger,
	}
}

// CheckService probes one URL within the configured timeout.
// Classification is transport-level only:
//   - request error or timeout: unhealthy, not connected
//   - non-2xx: degraded, not connected, error holds code and status text
//   - 2xx: healthy, connected, details holds the parsed body
//
// No retries; the timeout expiring is indistinguishable from any other
// network failure.
func (s *HealthService) CheckService(ctx context.Context, url string) CheckResult {
	probeCtx, cancel := context.WithTimeout(ctx, s.probeTimeout)
	defer cancel()

	start := time.Now()
	result := s.probe(probeCtx, url)
	elapsed := time.Since(start)
	result.ResponseTime = elapsed.Milliseconds()

	if s.metrics != nil {
		s.metrics.Timing("health.probe", elapsed, map[string]string{
			"url":    url,
			"status": string(result.Status),
		})
	}
	return result
}

func (s *HealthService) probe(ctx context.Context, url string) CheckResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: err.Error()}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return CheckResult{
			Status: StatusDegraded,
			Error:  fmt.Sprintf("HTTP %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		}
	}

	result := CheckResult{Status: StatusHealthy, Connected: true}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil || len(raw) == 0 || !json.Valid(raw) {
		return result
	}
	result.Details = json.RawMessage(raw)
	result.ReportedStatus = s.reportedStatus(raw)
	return result
}

// reportedStatus evaluates the configured JMESPath expression against the
// upstream body. Failures are silent: this field is diagnostic only.
func (s *HealthService) reportedStatus(raw []byte) string {
	if s.statusExpr == nil {
		return ""
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return ""
	}
	value, err := s.statusExpr.Search(data)
	if err != nil {
		return ""
	}
	if str, ok := value.(string); ok {
		return str
	}
	return ""
}

// Aggregate probes both dependencies concurrently and reduces their
// statuses: any unhealthy wins, then any degraded, else healthy.
func (s *HealthService) Aggregate(ctx context.Context) *HealthReport {
	var aiResult, gibbonResult CheckResult

	g, probeCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		aiResult = s.CheckService(probeCtx, s.aiServiceURL)
		return nil
	})
	g.Go(func() error {
		gibbonResult = s.CheckService(probeCtx, s.gibbonURL)
		return nil
	})
	// Probes classify their own failures; the group never carries an error.
	_ = g.Wait()

	aiResult.APIURL = s.aiServiceURL
	gibbonResult.GibbonURL = s.gibbonURL

	overall := worst(aiResult.Status, gibbonResult.Status)
	if s.metrics != nil {
		s.metrics.Count("health.aggregate", 1, map[string]string{"status": string(overall)})
	}

	return &HealthReport{
		Status:    overall,
		Timestamp: isoTimestamp(time.Now()),
		Service:   ServiceName,
		Version:   s.version,
		Checks: HealthChecks{
			AIService: aiResult,
			Gibbon:    gibbonResult,
		},
	}
}

// UnhealthyFallback is the minimal report used when aggregation itself
// fails unexpectedly. Service identity fields stay populated.
func (s *HealthService) UnhealthyFallback() *HealthReport {
	return &HealthReport{
		Status:    StatusUnhealthy,
		Timestamp: isoTimestamp(time.Now()),
		Service:   ServiceName,
		Version:   s.version,
	}
}

// isoTimestamp renders ISO-8601 with millisecond precision.
func isoTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
