package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/getmentor/mentorship-api/pkg/logger"
	"github.com/getmentor/mentorship-api/pkg/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	errorCodeKey   = "error_code"
	unmatchedRoute = "unmatched"
)

// query parameters never written to logs
var sensitiveQueryParams = map[string]bool{
	"token": true, "password": true, "secret": true, "key": true,
	"auth": true, "api_key": true, "apikey": true,
}

// SetErrorCode records the error taxonomy code of a failed request for the request log
func SetErrorCode(c *gin.Context, code string) {
	c.Set(errorCodeKey, code)
}

// ObservabilityMiddleware records request metrics under the route template and
// writes one log line per request. Mount it before SessionMiddleware; the actor
// and error code are read once the handler has run.
func ObservabilityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		// route is unknown until after routing, so in-flight is per method only
		metrics.ActiveRequests.WithLabelValues(method).Inc()
		defer metrics.ActiveRequests.WithLabelValues(method).Dec()

		c.Next()

		route := routeLabel(c)
		status := c.Writer.Status()
		duration := metrics.MeasureDuration(start)
		statusLabel := strconv.Itoa(status)

		metrics.HTTPRequestDuration.WithLabelValues(method, route, statusLabel).Observe(duration)
		metrics.HTTPRequestTotal.WithLabelValues(method, route, statusLabel).Inc()

		logger.LogHTTPRequest(c.Request.Context(), method, c.Request.URL.Path, status, duration, requestFields(c, route, status)...)
	}
}

// routeLabel is the matched template ("/api/v1/reviews/:id"), never the raw
// path, so review and request ids do not become label values
func routeLabel(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return unmatchedRoute
}

func requestFields(c *gin.Context, route string, status int) []zap.Field {
	fields := []zap.Field{
		zap.String("route", route),
		zap.String("client_ip", c.ClientIP()),
		zap.String("user_agent", c.Request.UserAgent()),
		zap.Int("response_size", c.Writer.Size()),
	}
	if session, err := GetSession(c); err == nil {
		fields = append(fields, zap.String("user_id", session.UserID))
	}
	if status < 400 {
		return fields
	}

	if code := c.GetString(errorCodeKey); code != "" {
		fields = append(fields, zap.String("error_code", code))
	}
	for _, p := range c.Params {
		// :id is a review or request id depending on the route
		fields = append(fields, zap.String("param_"+p.Key, p.Value))
	}
	if query := sanitizedQuery(c); len(query) > 0 {
		fields = append(fields, zap.Any("query_params", query))
	}
	if len(c.Errors) > 0 {
		fields = append(fields, zap.String("error", c.Errors.String()))
	}
	return fields
}

func sanitizedQuery(c *gin.Context) map[string]string {
	query := c.Request.URL.Query()
	if len(query) == 0 {
		return nil
	}
	out := make(map[string]string, len(query))
	for k, v := range query {
		if len(v) > 0 && !sensitiveQueryParams[strings.ToLower(k)] {
			out[k] = v[0]
		}
	}
	return out
}
