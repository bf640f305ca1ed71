package server

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/tStore/lib/store"
	"github.com/ValentinKolb/tStore/rpc/common"
	"github.com/VictoriaMetrics/metrics"
)

// Request metrics are registered in the default VictoriaMetrics set,
// the http transport exposes them on /metrics.

// observeRequest records one handled request
func observeRequest(msgType common.MessageType, code store.RetCode, start time.Time) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`tstore_rpc_requests_total{type=%q}`, msgType)).Inc()
	metrics.GetOrCreateHistogram(fmt.Sprintf(`tstore_rpc_request_duration_seconds{type=%q}`, msgType)).UpdateDuration(start)
	if code != store.RetCSuccess {
		metrics.GetOrCreateCounter(fmt.Sprintf(`tstore_rpc_errors_total{type=%q,code=%q}`, msgType, code)).Inc()
	}
}

// observeDecodeFailure records a request that could not be deserialized
func observeDecodeFailure() {
	metrics.GetOrCreateCounter(`tstore_rpc_decode_errors_total`).Inc()
}

// gaugeStore is the store reported by the store gauges
var gaugeStore atomic.Pointer[storeRef]

type storeRef struct{ store store.ITableStore }

// registerStoreGauges exposes table and row counts of the store.
// Gauges are global, a later call replaces the reported store.
func registerStoreGauges(s store.ITableStore) {
	gaugeStore.Store(&storeRef{store: s})
	metrics.GetOrCreateGauge(`tstore_tables`, func() float64 {
		return currentStats(func(st store.Stats) int { return st.Tables })
	})
	metrics.GetOrCreateGauge(`tstore_rows`, func() float64 {
		return currentStats(func(st store.Stats) int { return st.Rows })
	})
}

func currentStats(field func(store.Stats) int) float64 {
	ref := gaugeStore.Load()
	if ref == nil {
		return 0
	}
	stats, err := ref.store.Stats()
	if err != nil {
		return 0
	}
	return float64(field(stats))
}
