package observability

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// PrometheusHandler returns a Gin handler for Prometheus metrics
func PrometheusHandler(handler http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if handler != nil {
			handler.ServeHTTP(c.Writer, c.Request)
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "metrics handler not initialized",
			})
		}
	}
}

// AuthMetrics counts login and refresh attempts by outcome.
type AuthMetrics struct {
	logins    otelmetric.Int64Counter
	refreshes otelmetric.Int64Counter
}

// NewAuthMetrics registers the auth counters on meter. A nil meter yields no-op counters.
func NewAuthMetrics(meter otelmetric.Meter) (*AuthMetrics, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter("auth")
	}

	logins, err := meter.Int64Counter("auth.login.attempts",
		otelmetric.WithDescription("Social login attempts by provider, outcome and failing stage"))
	if err != nil {
		return nil, err
	}

	refreshes, err := meter.Int64Counter("auth.refresh.attempts",
		otelmetric.WithDescription("Access token refresh attempts by outcome"))
	if err != nil {
		return nil, err
	}

	return &AuthMetrics{logins: logins, refreshes: refreshes}, nil
}

// LoginAttempt records one login. stage is empty on success.
func (m *AuthMetrics) LoginAttempt(ctx context.Context, provider, outcome, stage string) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("provider", provider),
		attribute.String("outcome", outcome),
	}
	if stage != "" {
		attrs = append(attrs, attribute.String("stage", stage))
	}
	m.logins.Add(ctx, 1, otelmetric.WithAttributes(attrs...))
}

func (m *AuthMetrics) RefreshAttempt(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.refreshes.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("outcome", outcome)))
}
