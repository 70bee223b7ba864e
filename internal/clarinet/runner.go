package clarinet

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

// Session is a fresh chain plus the accounts known to it.
type Session struct {
	Chain    Chain
	Accounts AccountMap

	// Close releases the chain. Optional.
	Close func() error
}

// SessionFactory creates a new, independent session for the named test.
type SessionFactory func(ctx context.Context, testName string) (*Session, error)

// TestResult is the outcome of one test.
type TestResult struct {
	Name     string        `json:"name"`
	Pass     bool          `json:"pass"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`

	Err error `json:"-"`
}

// Report summarizes a run.
type Report struct {
	Results []TestResult `json:"results"`
	Passed  int          `json:"passed"`
	Failed  int          `json:"failed"`
}

// OK reports whether every test passed.
func (r *Report) OK() bool { return r.Failed == 0 }

// Runner executes tests sequentially, each against its own session.
type Runner struct {
	newSession SessionFactory
	filter     string
	logger     *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the runner's logger.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = l }
}

// WithFilter runs only tests whose name contains substr.
func WithFilter(substr string) RunnerOption {
	return func(r *Runner) { r.filter = substr }
}

// NewRunner creates a runner that obtains a fresh session per test.
func NewRunner(factory SessionFactory, opts ...RunnerOption) *Runner {
	r := &Runner{
		newSession: factory,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes tests in order. It stops early, returning the partial
// report and ctx.Err(), if ctx is cancelled between tests.
func (r *Runner) Run(ctx context.Context, tests []Options) (*Report, error) {
	report := &Report{}
	for _, test := range tests {
		if r.filter != "" && !strings.Contains(test.Name, r.filter) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		res := r.RunTest(ctx, test)
		report.Results = append(report.Results, res)
		if res.Pass {
			report.Passed++
		} else {
			report.Failed++
		}
	}
	return report, nil
}

// RunTest executes a single test against a fresh session.
func (r *Runner) RunTest(ctx context.Context, test Options) (res TestResult) {
	res.Name = test.Name
	start := time.Now()
	defer func() {
		res.Duration = time.Since(start)
		if res.Err != nil {
			res.Error = res.Err.Error()
			r.logger.Info("test failed", "name", test.Name, "error", res.Err)
		} else {
			res.Pass = true
			r.logger.Info("test passed", "name", test.Name)
		}
	}()

	session, err := r.newSession(ctx, test.Name)
	if err != nil {
		res.Err = fmt.Errorf("create session: %w", err)
		return res
	}
	if session.Close != nil {
		defer func() {
			if closeErr := session.Close(); closeErr != nil {
				r.logger.Warn("closing session", "name", test.Name, "error", closeErr)
			}
		}()
	}

	r.logger.Debug("running test", "name", test.Name)
	res.Err = runGuarded(ctx, test.Fn, session)
	return res
}

func runGuarded(ctx context.Context, fn TestFunc, session *Session) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("test panicked: %v", p)
		}
	}()
	return fn(ctx, session.Chain, session.Accounts)
}
