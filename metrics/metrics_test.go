package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_ExposesCollectors(t *testing.T) {
	Writes.WithLabelValues("test", StatusOK).Inc()

	srv := httptest.NewServer(Handler(""))
	defer srv.Close()

	res, err := srv.Client().Get(srv.URL + DefaultPath)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `furrystore_writes_total{backend="test",status="ok"}`)
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(Fallbacks.WithLabelValues("test", ReasonMalformed))
	Fallbacks.WithLabelValues("test", ReasonMalformed).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(Fallbacks.WithLabelValues("test", ReasonMalformed)))
}
