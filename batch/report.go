package batch

import (
	"sort"
	"time"

	"github.com/kbukum/jsonflow/errors"
	"github.com/kbukum/jsonflow/flow"
)

// Report summarizes a run.
type Report struct {
	Total        int
	Succeeded    int
	Failed       int
	PeakInFlight int
	Duration     time.Duration
	ByKind       map[errors.ErrorCode]int
	// Failures holds the failed outcomes in completion order.
	Failures []flow.Outcome
}

func (r *Report) add(o flow.Outcome) {
	r.Total++
	if o.OK() {
		r.Succeeded++
		return
	}
	r.Failed++
	if r.ByKind == nil {
		r.ByKind = make(map[errors.ErrorCode]int)
	}
	r.ByKind[o.Kind()]++
	r.Failures = append(r.Failures, o)
}

// HasFailures reports whether any record failed.
func (r Report) HasFailures() bool { return r.Failed > 0 }

// FailedIDs returns the ids of failed records sorted by input index.
func (r Report) FailedIDs() []string {
	failures := make([]flow.Outcome, len(r.Failures))
	copy(failures, r.Failures)
	sort.Slice(failures, func(i, j int) bool { return failures[i].Index < failures[j].Index })

	ids := make([]string, len(failures))
	for i, f := range failures {
		ids[i] = f.ID
	}
	return ids
}

// Fields renders the report for a summary log line.
func (r Report) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		"total":          r.Total,
		"succeeded":      r.Succeeded,
		"failed":         r.Failed,
		"peak_in_flight": r.PeakInFlight,
		"duration_ms":    r.Duration.Milliseconds(),
	}
	for kind, n := range r.ByKind {
		fields["failed_"+string(kind)] = n
	}
	return fields
}
