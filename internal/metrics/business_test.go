package metrics

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertBizMetricLine checks that the Prometheus output contains a metric
// matching the given name, partial label pattern, and value. The regex
// tolerates the extra OTel scope labels injected by the exporter.
func assertBizMetricLine(t *testing.T, output, name, labels, value string) {
	t.Helper()
	pattern := name + `\{[^}]*` + labels + `[^}]*\} ` + value
	assert.Regexp(t, pattern, output)
}

func gatherText(t *testing.T, provider *Provider) string {
	t.Helper()
	families, err := provider.Gatherer().Gather()
	require.NoError(t, err)

	var sb strings.Builder
	for _, mf := range families {
		_, err := expfmt.MetricFamilyToText(&sb, mf)
		require.NoError(t, err)
	}
	return sb.String()
}

func TestBusinessMetrics(t *testing.T) {
	provider, err := NewProvider()
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "cptest")
	require.NoError(t, err)

	ctx := context.Background()
	bm.RecordOperation(ctx, "installer", "install", "success")
	bm.RecordOperation(ctx, "installer", "install", "success")
	bm.RecordOperation(ctx, "installer", "install", "error")
	bm.RecordOperation(ctx, "installer", "remove", "success")
	bm.RecordDuration(ctx, "installer", "install", 120*time.Millisecond, "success")
	bm.RecordDuration(ctx, "installer", "install", 80*time.Millisecond, "success")
	bm.RecordDuration(ctx, "installer", "remove", 40*time.Millisecond, "success")

	output := gatherText(t, provider)

	assertBizMetricLine(t, output,
		`cptest_operations_total`,
		`domain="installer".*operation="install".*status="success"`,
		`2`,
	)
	assertBizMetricLine(t, output,
		`cptest_operations_total`,
		`domain="installer".*operation="install".*status="error"`,
		`1`,
	)
	assertBizMetricLine(t, output,
		`cptest_operations_total`,
		`domain="installer".*operation="remove".*status="success"`,
		`1`,
	)
	assertBizMetricLine(t, output,
		`cptest_operation_duration_seconds_count`,
		`domain="installer".*operation="install".*status="success"`,
		`2`,
	)
}

func TestNoOpBusinessMetrics(t *testing.T) {
	noOp := NewNoOpBusinessMetrics()
	assert.IsType(t, &NoOpBusinessMetrics{}, noOp)

	assert.NotPanics(t, func() {
		noOp.RecordOperation(context.Background(), "installer", "install", "success")
		noOp.RecordDuration(context.Background(), "installer", "install", time.Second, "error")
	})
}
