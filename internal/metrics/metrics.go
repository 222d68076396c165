package metrics

import (
	"log/slog"
	"net/http"
	"sync/atomic"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// Rejection reasons for the pindrop_submits_rejected_total counter.
const (
	ReasonTooLarge   = "too_large"
	ReasonNotFound   = "not_found"
	ReasonBadPayload = "bad_payload"
)

// Registry holds the service counters and renders them in Prometheus text
// exposition format. Counters are plain atomics — no sampling, no histogram
// buckets — because every operation in the core is a single in-memory step.
type Registry struct {
	PinsIssued    atomic.Int64
	IssueFailures atomic.Int64
	Polls         atomic.Int64
	PollHits      atomic.Int64
	PollReissues  atomic.Int64
	Submits       atomic.Int64
	Evicted       atomic.Int64

	RejectedTooLarge   atomic.Int64
	RejectedNotFound   atomic.Int64
	RejectedBadPayload atomic.Int64

	// entries reports current store occupancy, sampled at scrape time.
	entries func() int
}

// New creates a Registry. entries supplies the live entry count for the
// pin_entries gauge; nil disables the gauge.
func New(entries func() int) *Registry {
	return &Registry{entries: entries}
}

// ServeHTTP renders all metric families as Prometheus text format.
func (r *Registry) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", string(expfmt.NewFormat(expfmt.TypeTextPlain)))
	for _, mf := range r.gather() {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			slog.Error("metrics: encode failed", "family", mf.GetName(), "err", err)
			return
		}
	}
}

// gather assembles the current counter values into metric families.
func (r *Registry) gather() []*dto.MetricFamily {
	families := []*dto.MetricFamily{
		counter("pindrop_pins_issued_total",
			"Pins successfully issued.", r.PinsIssued.Load()),
		counter("pindrop_issue_failures_total",
			"Issue attempts that exhausted the pin retry budget.", r.IssueFailures.Load()),
		counter("pindrop_polls_total",
			"Poll requests received.", r.Polls.Load()),
		counter("pindrop_poll_hits_total",
			"Polls that delivered a result and consumed the entry.", r.PollHits.Load()),
		counter("pindrop_poll_reissues_total",
			"Polls for unknown pins that fell back to issuing a fresh one.", r.PollReissues.Load()),
		counter("pindrop_submits_total",
			"Results accepted and stored.", r.Submits.Load()),
		counter("pindrop_entries_evicted_total",
			"Entries removed by the staleness sweeper.", r.Evicted.Load()),
		rejected(
			r.RejectedTooLarge.Load(),
			r.RejectedNotFound.Load(),
			r.RejectedBadPayload.Load(),
		),
	}
	if r.entries != nil {
		families = append(families, gauge("pindrop_pin_entries",
			"Live entries currently held in the store.", int64(r.entries())))
	}
	return families
}

// --- family constructors ----------------------------------------------------

func counter(name, help string, v int64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name: str(name),
		Help: str(help),
		Type: dto.MetricType_COUNTER.Enum(),
		Metric: []*dto.Metric{
			{Counter: &dto.Counter{Value: f64(float64(v))}},
		},
	}
}

func gauge(name, help string, v int64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name: str(name),
		Help: str(help),
		Type: dto.MetricType_GAUGE.Enum(),
		Metric: []*dto.Metric{
			{Gauge: &dto.Gauge{Value: f64(float64(v))}},
		},
	}
}

func rejected(tooLarge, notFound, badPayload int64) *dto.MetricFamily {
	m := func(reason string, v int64) *dto.Metric {
		return &dto.Metric{
			Label:   []*dto.LabelPair{{Name: str("reason"), Value: str(reason)}},
			Counter: &dto.Counter{Value: f64(float64(v))},
		}
	}
	return &dto.MetricFamily{
		Name: str("pindrop_submits_rejected_total"),
		Help: str("Submissions rejected before touching the store, by reason."),
		Type: dto.MetricType_COUNTER.Enum(),
		Metric: []*dto.Metric{
			m(ReasonTooLarge, tooLarge),
			m(ReasonNotFound, notFound),
			m(ReasonBadPayload, badPayload),
		},
	}
}

func str(s string) *string   { return &s }
func f64(v float64) *float64 { return &v }
