package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHelpers(t *testing.T) {
	before := testutil.ToFloat64(StageTotal.WithLabelValues("search", "ok"))
	RecordStage("search", "ok", 150*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(StageTotal.WithLabelValues("search", "ok")))

	before = testutil.ToFloat64(VerdictTotal.WithLabelValues("Unclear", "true"))
	RecordVerdict("Unclear", true)
	assert.Equal(t, before+1, testutil.ToFloat64(VerdictTotal.WithLabelValues("Unclear", "true")))

	before = testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("/fact-check", "404"))
	RecordHTTPRequest("/fact-check", 404)
	assert.Equal(t, before+1, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("/fact-check", "404")))

	before = testutil.ToFloat64(PageFetchTotal.WithLabelValues("cached"))
	RecordPageFetch("cached")
	assert.Equal(t, before+1, testutil.ToFloat64(PageFetchTotal.WithLabelValues("cached")))

	before = testutil.ToFloat64(SummarySourceTotal.WithLabelValues("metadata"))
	RecordSummarySource("metadata")
	assert.Equal(t, before+1, testutil.ToFloat64(SummarySourceTotal.WithLabelValues("metadata")))
}
