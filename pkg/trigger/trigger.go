package trigger

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/getmentor/mentorship-api/pkg/httpclient"
	"github.com/getmentor/mentorship-api/pkg/logger"
	"github.com/getmentor/mentorship-api/pkg/metrics"
	"go.uber.org/zap"
)

// Event is the body posted to a notification trigger URL
type Event struct {
	Type     string            `json:"type"`
	RecordID string            `json:"record_id"`
	Data     map[string]string `json:"data,omitempty"`
}

// Notifier fires notification webhooks. Delivery is best effort: failures are
// logged and counted but never reach the caller.
type Notifier struct {
	httpClient httpclient.Client
	wg         sync.WaitGroup
}

// NewNotifier creates a notifier using the given HTTP client
func NewNotifier(httpClient httpclient.Client) *Notifier {
	return &Notifier{httpClient: httpClient}
}

// CallAsync posts the event to triggerURL in the background.
// An empty URL disables the trigger.
func (n *Notifier) CallAsync(triggerURL string, event Event) {
	if n == nil || triggerURL == "" {
		return
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.call(triggerURL, event)
	}()
}

// Wait blocks until in-flight triggers finish (used on shutdown and in tests)
func (n *Notifier) Wait() {
	if n != nil {
		n.wg.Wait()
	}
}

func (n *Notifier) call(triggerURL string, event Event) {
	body, err := json.Marshal(event)
	if err != nil {
		metrics.NotificationTriggers.WithLabelValues(event.Type, "error").Inc()
		logger.Error("Failed to encode trigger event", zap.Error(err), zap.String("event", event.Type))
		return
	}

	logger.Info("Calling trigger URL",
		zap.String("url", triggerURL),
		zap.String("event", event.Type),
		zap.String("record_id", event.RecordID))

	// runs detached from the request that fired it; the client timeout bounds it
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, triggerURL, bytes.NewReader(body))
	if err != nil {
		metrics.NotificationTriggers.WithLabelValues(event.Type, "error").Inc()
		logger.Error("Invalid trigger URL", zap.Error(err), zap.String("url", triggerURL))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		metrics.NotificationTriggers.WithLabelValues(event.Type, "error").Inc()
		logger.Error("Failed to call trigger URL",
			zap.Error(err),
			zap.String("url", triggerURL),
			zap.String("record_id", event.RecordID))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		metrics.NotificationTriggers.WithLabelValues(event.Type, "success").Inc()
		logger.Info("Trigger URL called successfully",
			zap.String("url", triggerURL),
			zap.String("record_id", event.RecordID),
			zap.Int("status_code", resp.StatusCode))
		return
	}

	metrics.NotificationTriggers.WithLabelValues(event.Type, "error").Inc()
	logger.Warn("Trigger URL returned non-success status",
		zap.String("url", triggerURL),
		zap.String("record_id", event.RecordID),
		zap.Int("status_code", resp.StatusCode))
}
