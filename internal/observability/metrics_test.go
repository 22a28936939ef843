package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordersIncrementLabelledSeries(t *testing.T) {
	before := testutil.ToFloat64(anchorFallbacksTotal.WithLabelValues("card"))
	RecordAnchorFallback("card")
	RecordAnchorFallback("card")
	assert.Equal(t, before+2, testutil.ToFloat64(anchorFallbacksTotal.WithLabelValues("card")))

	RecordSessionClosed("inactivity")
	assert.GreaterOrEqual(t, testutil.ToFloat64(sessionsClosedTotal.WithLabelValues("inactivity")), 1.0)
}
