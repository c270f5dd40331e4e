package pushflow

import (
	"os"
	"sync/atomic"
	"time"
)

// Stats stores metrics
type Stats struct {
	Pid             int   `json:"pid"`
	Uptime          int64 `json:"uptime"`
	StartAt         int64 `json:"start_at"`
	SentCount       int64 `json:"sent_count"`
	DeliveredCount  int64 `json:"delivered_count"`
	GoneCount       int64 `json:"gone_count"`
	RejectedCount   int64 `json:"rejected_count"`
	TransportErrors int64 `json:"transport_err_count"`
	CredentialErrs  int64 `json:"credential_err_count"`
	ValidationErrs  int64 `json:"validation_err_count"`
	HookCount       int64 `json:"hook_count"`
	HookErrCount    int64 `json:"hook_err_count"`
}

// NewStats initialize Stats
func NewStats() Stats {
	return Stats{
		Pid:     os.Getpid(),
		StartAt: time.Now().Unix(),
	}
}

// Snapshot returns a copy of the counters with the uptime filled in.
func (st *Stats) Snapshot() Stats {
	return Stats{
		Pid:             st.Pid,
		Uptime:          time.Now().Unix() - st.StartAt,
		StartAt:         st.StartAt,
		SentCount:       atomic.LoadInt64(&st.SentCount),
		DeliveredCount:  atomic.LoadInt64(&st.DeliveredCount),
		GoneCount:       atomic.LoadInt64(&st.GoneCount),
		RejectedCount:   atomic.LoadInt64(&st.RejectedCount),
		TransportErrors: atomic.LoadInt64(&st.TransportErrors),
		CredentialErrs:  atomic.LoadInt64(&st.CredentialErrs),
		ValidationErrs:  atomic.LoadInt64(&st.ValidationErrs),
		HookCount:       atomic.LoadInt64(&st.HookCount),
		HookErrCount:    atomic.LoadInt64(&st.HookErrCount),
	}
}
