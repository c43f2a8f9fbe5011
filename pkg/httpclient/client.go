package httpclient

import (
	"net/http"
	"strconv"
	"time"

	"github.com/getmentor/mentorship-api/pkg/logger"
	"github.com/getmentor/mentorship-api/pkg/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

// Client is what outbound callers (notification triggers, the API client) need.
// Tests substitute their own implementation.
type Client interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option configures a client built by New
type Option func(*http.Client)

// WithTimeout sets the overall per-request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *http.Client) {
		c.Timeout = timeout
	}
}

// WithTransport replaces the round tripper
func WithTransport(rt http.RoundTripper) Option {
	return func(c *http.Client) {
		c.Transport = rt
	}
}

type instrumentedClient struct {
	target string
	client *http.Client
}

// New creates a client whose calls are timed under target in
// mentorship_outbound_http_request_duration_seconds and carry the caller's
// trace context.
func New(target string, opts ...Option) Client {
	c := &http.Client{Timeout: defaultTimeout}
	for _, opt := range opts {
		opt(c)
	}
	return &instrumentedClient{target: target, client: c}
}

func (c *instrumentedClient) Do(req *http.Request) (*http.Response, error) {
	otel.GetTextMapPropagator().Inject(req.Context(), propagation.HeaderCarrier(req.Header))

	start := time.Now()
	resp, err := c.client.Do(req)
	metrics.OutboundRequestDuration.
		WithLabelValues(c.target, req.Method, statusLabel(resp, err)).
		Observe(metrics.MeasureDuration(start))

	if err != nil {
		logger.Debug("Outbound request failed",
			zap.String("target", c.target),
			zap.String("method", req.Method),
			zap.String("host", req.URL.Host),
			zap.Error(err))
	}
	return resp, err
}

// statusLabel buckets the response into 2xx/4xx/... to keep label cardinality flat
func statusLabel(resp *http.Response, err error) string {
	if err != nil || resp == nil {
		return "error"
	}
	return strconv.Itoa(resp.StatusCode/100) + "xx"
}
