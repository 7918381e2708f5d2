package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collectSums(t *testing.T, reader *metric.ManualReader) map[string]metricdata.Sum[int64] {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	sums := make(map[string]metricdata.Sum[int64])
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				sums[m.Name] = sum
			}
		}
	}
	return sums
}

func TestAuthMetrics(t *testing.T) {
	reader := metric.NewManualReader()
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := NewAuthMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.LoginAttempt(ctx, "kakao", OutcomeSuccess, "")
	m.LoginAttempt(ctx, "kakao", OutcomeFailure, "code_received")
	m.LoginAttempt(ctx, "kakao", OutcomeFailure, "code_received")
	m.RefreshAttempt(ctx, OutcomeSuccess)

	sums := collectSums(t, reader)

	logins := sums["auth.login.attempts"]
	require.Len(t, logins.DataPoints, 2)
	for _, dp := range logins.DataPoints {
		outcome, _ := dp.Attributes.Value(attribute.Key("outcome"))
		switch outcome.AsString() {
		case OutcomeSuccess:
			assert.Equal(t, int64(1), dp.Value)
			assert.False(t, dp.Attributes.HasValue(attribute.Key("stage")))
		case OutcomeFailure:
			assert.Equal(t, int64(2), dp.Value)
			stage, _ := dp.Attributes.Value(attribute.Key("stage"))
			assert.Equal(t, "code_received", stage.AsString())
		default:
			t.Fatalf("unexpected outcome %q", outcome.AsString())
		}
	}

	refreshes := sums["auth.refresh.attempts"]
	require.Len(t, refreshes.DataPoints, 1)
	assert.Equal(t, int64(1), refreshes.DataPoints[0].Value)
}

func TestAuthMetrics_NilSafe(t *testing.T) {
	var m *AuthMetrics
	assert.NotPanics(t, func() {
		m.LoginAttempt(context.Background(), "naver", OutcomeFailure, "code_received")
		m.RefreshAttempt(context.Background(), OutcomeFailure)
	})

	noop, err := NewAuthMetrics(nil)
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		noop.RefreshAttempt(context.Background(), OutcomeSuccess)
	})
}
