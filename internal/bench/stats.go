package bench

import (
	"fmt"
	"io"
	"time"
)

// Summary aggregates the durations of repeated fetches of one test case.
type Summary struct {
	Label string
	Runs  int
	Rows  int
	Total time.Duration
	Min   time.Duration
	Max   time.Duration
}

func (s *Summary) Add(d time.Duration, rows int) {
	if s.Runs == 0 || d < s.Min {
		s.Min = d
	}
	if d > s.Max {
		s.Max = d
	}
	s.Runs++
	s.Total += d
	s.Rows += rows
}

func (s *Summary) Avg() time.Duration {
	if s.Runs == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Runs)
}

func PrintSummary(w io.Writer, s Summary) {
	fmt.Fprintf(w, "\n┌─────────────────────────────────────────┐\n")
	fmt.Fprintf(w, "│  %-39s│\n", s.Label)
	fmt.Fprintf(w, "├─────────────────────────────────────────┤\n")
	fmt.Fprintf(w, "│  Runs:         %-25d│\n", s.Runs)
	fmt.Fprintf(w, "│  Total:        %-25s│\n", FmtDur(s.Total))
	fmt.Fprintf(w, "│  Avg:          %-25s│\n", FmtDur(s.Avg()))
	fmt.Fprintf(w, "│  Min:          %-25s│\n", FmtDur(s.Min))
	fmt.Fprintf(w, "│  Max:          %-25s│\n", FmtDur(s.Max))
	fmt.Fprintf(w, "└─────────────────────────────────────────┘\n")
}
