package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"odbcperf/internal/bench"
	"odbcperf/internal/core"
	"odbcperf/internal/logger"
	"odbcperf/internal/profiler"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// Test case names, matched case-insensitively. A leading "test-" is accepted.
const (
	TestFetchAll    = "fetch-all"
	TestSQLType     = "sql-type-"
	TestAllSQLTypes = "all-sql-types"
)

var TestCases = []string{TestFetchAll, TestSQLType + "<type>", TestAllSQLTypes}

// Runner dispatches test cases against one connector.
type Runner struct {
	connector core.Connector
	ec        *core.ExecutionContext
	out       io.Writer
	repeat    int
	probe     string
	profiler  *profiler.CallableProfiler
	history   core.RunRepository
	runID     string
	clock     bench.Clock
}

type Option func(*Runner)

func WithOutput(w io.Writer) Option {
	return func(r *Runner) { r.out = w }
}

// WithRepeat runs every fetch n times on the same connection.
func WithRepeat(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.repeat = n
		}
	}
}

// WithSessionProbe prints the result of probe before and after each test case.
func WithSessionProbe(probe string) Option {
	return func(r *Runner) { r.probe = strings.TrimSpace(probe) }
}

func WithProfiler(p *profiler.CallableProfiler) Option {
	return func(r *Runner) { r.profiler = p }
}

func WithHistory(repo core.RunRepository) Option {
	return func(r *Runner) { r.history = repo }
}

func WithClock(c bench.Clock) Option {
	return func(r *Runner) { r.clock = c }
}

func NewRunner(c core.Connector, ec *core.ExecutionContext, opts ...Option) *Runner {
	r := &Runner{
		connector: c,
		ec:        ec,
		out:       os.Stdout,
		repeat:    1,
		runID:     uuid.NewString(),
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) RunID() string {
	return r.runID
}

// Run dispatches testCase.
func (r *Runner) Run(ctx context.Context, testCase string) error {
	name := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(testCase)), "test-")

	switch {
	case name == TestFetchAll:
		return r.FetchAll(ctx, testCase)
	case name == TestAllSQLTypes:
		return r.AllSQLTypes(ctx, testCase)
	case strings.HasPrefix(name, TestSQLType):
		return r.SQLType(ctx, testCase, strings.TrimPrefix(name, TestSQLType))
	default:
		return core.InvalidValue("test-case", testCase, TestCases...)
	}
}

// SQLType points the connector at the canned query for typeName and runs fetch-all.
func (r *Runner) SQLType(ctx context.Context, label, typeName string) error {
	query, err := LookupTypeQuery(typeName, r.ec.Test.FixtureSchema, r.ec.Test.FixtureTable)
	if err != nil {
		return err
	}
	r.connector.SetSQLQuery(query)
	return r.FetchAll(ctx, label)
}

// AllSQLTypes runs every single-column type query in table order and stops
// at the first failure.
func (r *Runner) AllSQLTypes(ctx context.Context, label string) error {
	for _, q := range TypeQueries(r.ec.Test.FixtureSchema, r.ec.Test.FixtureTable) {
		if q.Type == AllColumns {
			continue
		}
		r.connector.SetSQLQuery(q.SQL)
		if err := r.FetchAll(ctx, label+"-"+strings.ToLower(q.Type)); err != nil {
			return err
		}
	}
	return nil
}

// FetchAll times the connector's FetchAll with the current query.
func (r *Runner) FetchAll(ctx context.Context, label string) error {
	fmt.Fprintf(r.out, "%s starting...\n", label)
	if err := r.printSession(ctx, label); err != nil {
		return err
	}

	summary := bench.Summary{Label: label}
	for i := 0; i < r.repeat; i++ {
		tag := label
		if r.repeat > 1 {
			tag = fmt.Sprintf("%s [%d/%d]", label, i+1, r.repeat)
		}

		rows, elapsed, err := r.timedFetch(ctx, label)
		if err != nil {
			fmt.Fprintf(r.out, "%s failed after %.6f seconds\n", tag, elapsed.Seconds())
			return err
		}
		summary.Add(elapsed, rows)
		fmt.Fprintf(r.out, "%s finished in %.6f seconds (%s rows)\n", tag, elapsed.Seconds(), humanize.Comma(int64(rows)))
	}

	if r.repeat > 1 {
		bench.PrintSummary(r.out, summary)
	}
	return r.printSession(ctx, label)
}

func (r *Runner) timedFetch(ctx context.Context, label string) (int, time.Duration, error) {
	var rs *core.ResultSet
	fetch := func() error {
		var err error
		rs, err = r.connector.FetchAll(ctx)
		return err
	}

	sw := bench.NewStopwatch(r.clock)
	started := sw.Start()
	var err error
	if r.profiler != nil {
		err = r.profiler.ProfileSingle(label, fetch)
	} else {
		err = fetch()
	}
	elapsed := sw.Elapsed()

	r.record(label, started, elapsed, rs.RowCount(), err)
	return rs.RowCount(), elapsed, err
}

func (r *Runner) printSession(ctx context.Context, label string) error {
	if r.probe == "" {
		return nil
	}
	id, err := r.connector.SessionID(ctx, r.probe)
	if err != nil {
		return fmt.Errorf("session probe: %w", err)
	}
	fmt.Fprintf(r.out, "%s session: %s\n", label, id)
	return nil
}

func (r *Runner) record(label string, started time.Time, elapsed time.Duration, rows int, fetchErr error) {
	if r.history == nil {
		return
	}

	run := &core.RunRecord{
		RunID:      r.runID,
		StartedAt:  started,
		Library:    r.connector.Library(),
		SQLDriver:  r.ec.Connection.DriverName(),
		TestCase:   label,
		SQLText:    r.ec.Test.SQLQuery,
		RowCount:   int64(rows),
		DurationMs: elapsed.Milliseconds(),
		Status:     "SUCCESS",
	}
	if fetchErr != nil {
		run.Status = "ERROR"
		run.ErrorMsg = fetchErr.Error()
	}

	if err := r.history.Create(run); err != nil {
		logger.Error.Printf("Failed to record run %s: %v", r.runID, err)
	}
}
