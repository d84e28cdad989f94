package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordOperation(t *testing.T) {
	before := testutil.ToFloat64(OperationsTotal.WithLabelValues(OpCombine, StatusError))
	RecordOperation(OpCombine, time.Now(), errors.New("boom"))
	assert.Equal(t, before+1, testutil.ToFloat64(OperationsTotal.WithLabelValues(OpCombine, StatusError)))

	before = testutil.ToFloat64(OperationsTotal.WithLabelValues(OpSplit, StatusSuccess))
	RecordOperation(OpSplit, time.Now(), nil)
	assert.Equal(t, before+1, testutil.ToFloat64(OperationsTotal.WithLabelValues(OpSplit, StatusSuccess)))
}

func TestRecordSubmission(t *testing.T) {
	before := testutil.ToFloat64(ShardSubmissionsTotal.WithLabelValues("accepted"))
	RecordSubmission("accepted")
	assert.Equal(t, before+1, testutil.ToFloat64(ShardSubmissionsTotal.WithLabelValues("accepted")))
}

func TestMetricsServer_Handler(t *testing.T) {
	srv, err := New("github.com/ruteri/sskr-service", "127.0.0.1:0")
	require.NoError(t, err)

	RecordOperation(OpInspect, time.Now(), nil)

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "sskr_operations_total")
	assert.Contains(t, string(body), `sskr_build_info{package="github.com/ruteri/sskr-service"} 1`)
}
