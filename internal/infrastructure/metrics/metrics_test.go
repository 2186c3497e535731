package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordCacheLookup(t *testing.T) {
	before := testutil.ToFloat64(CacheLookupsTotal.WithLabelValues("weather", "hit"))
	RecordCacheLookup("weather", true)
	RecordCacheLookup("weather", false)
	assert.Equal(t, before+1, testutil.ToFloat64(CacheLookupsTotal.WithLabelValues("weather", "hit")))
}

func TestRecordRunBalancesActiveGauge(t *testing.T) {
	before := testutil.ToFloat64(ActiveRuns)
	RunStarted()
	assert.Equal(t, before+1, testutil.ToFloat64(ActiveRuns))
	RecordRun("completed", 1.5)
	assert.Equal(t, before, testutil.ToFloat64(ActiveRuns))
}

func TestRecordReapedRunsIgnoresZero(t *testing.T) {
	before := testutil.ToFloat64(ReapedRunsTotal)
	RecordReapedRuns(0)
	RecordReapedRuns(3)
	assert.Equal(t, before+3, testutil.ToFloat64(ReapedRunsTotal))
}
