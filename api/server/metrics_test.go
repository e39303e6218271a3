// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/luxfi/metric"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistrationFailure(t *testing.T) {
	require := require.New(t)

	reg := metric.NewRegistry()

	metrics1, err := newMetrics(reg)
	require.NoError(err)
	require.NotNil(metrics1)

	// Second registration should fail due to duplicate metrics
	metrics2, err := newMetrics(reg)
	require.Error(err)
	require.Nil(metrics2)
}

func TestMetricsWrapHandler(t *testing.T) {
	require := require.New(t)

	metrics, err := newMetrics(metric.NewRegistry())
	require.NoError(err)

	handler := metrics.wrapHandler("rollup", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		require.Equal(float64(1), testutil.ToFloat64(metrics.inflight))
		w.WriteHeader(http.StatusNoContent)
	}))
	for range 3 {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
		require.Equal(http.StatusNoContent, w.Code)
	}

	require.Equal(float64(3), testutil.ToFloat64(metrics.requests.WithLabelValues(http.MethodPost, "rollup")))
	require.Zero(testutil.ToFloat64(metrics.requests.WithLabelValues(http.MethodGet, "rollup")))
	require.Zero(testutil.ToFloat64(metrics.inflight))
	require.Equal(1, testutil.CollectAndCount(metrics.duration))
}
