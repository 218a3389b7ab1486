package importer

import (
	"fmt"
	"strings"
)

// summaryErrorLimit caps how many error details the summary shows.
const summaryErrorLimit = 10

// Stats aggregates the outcome of one import run. Success counts only rows
// whose batch committed; every skipped, failed, or rolled-back row counts as
// an error.
type Stats struct {
	Total        int
	Success      int
	Errors       int
	ErrorDetails []string
}

// RecordError appends one error description. Details beyond the summary cap
// are kept so callers can inspect the full list.
func (s *Stats) RecordError(detail string) {
	s.Errors++
	s.ErrorDetails = append(s.ErrorDetails, detail)
}

// RecordBatchError counts a whole failed batch of n rows under a single
// aggregated description.
func (s *Stats) RecordBatchError(n int, detail string) {
	s.Errors += n
	s.ErrorDetails = append(s.ErrorDetails, detail)
}

// SuccessRate returns the committed fraction of all input rows, 0 when no
// rows were seen.
func (s *Stats) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Success) / float64(s.Total)
}

// OK reports whether the run completed without a single error. Callers that
// want to know how much data actually landed must look at the counts, not
// just this flag.
func (s *Stats) OK() bool {
	return s.Errors == 0
}

// Summary renders the human-readable run report.
func (s *Stats) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Rows processed: %d\n", s.Total)
	fmt.Fprintf(&b, "Succeeded:      %d\n", s.Success)
	fmt.Fprintf(&b, "Failed:         %d\n", s.Errors)
	if s.Total > 0 {
		fmt.Fprintf(&b, "Success rate:   %.2f%%\n", s.SuccessRate()*100)
	}
	if len(s.ErrorDetails) > 0 {
		fmt.Fprintf(&b, "First %d errors:\n", min(len(s.ErrorDetails), summaryErrorLimit))
		for i, d := range s.ErrorDetails {
			if i == summaryErrorLimit {
				break
			}
			fmt.Fprintf(&b, "  %s\n", d)
		}
	}
	return b.String()
}
