package transcript

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const (
	// DefaultAggregatorFile is the run-wide transcript file name.
	DefaultAggregatorFile = "aggregator.txt"
	// PageLogExt is appended to a page name to form its transcript file.
	PageLogExt = ".out"
)

// ErrScopeActive is returned by Begin while another page scope is open.
var ErrScopeActive = errors.New("a page scope is already active")

// Scope is an output target: a pair of writers for normal and error output.
type Scope struct {
	Name string
	Out  Sink
	Err  Sink

	rec *Recorder
	log *fileSink
}

// Printf writes formatted text to the scope's output channel.
func (s *Scope) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.Out, format, args...)
}

// Println writes a line to the scope's output channel.
func (s *Scope) Println(args ...any) {
	_, _ = fmt.Fprintln(s.Out, args...)
}

// Errorf writes formatted text to the scope's error channel.
func (s *Scope) Errorf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.Err, format, args...)
}

// End flushes and closes the page log and hands the recorder back to its
// console target. Calling End more than once is harmless.
func (s *Scope) End() error {
	if s.rec == nil {
		return nil
	}
	err := errors.Join(s.Out.Flush(), s.Err.Flush())
	if s.log != nil {
		err = errors.Join(err, s.log.Close())
		s.log = nil
	}
	if s.rec.active == s {
		s.rec.active = nil
	}
	s.rec = nil
	return err
}

// Recorder owns the aggregator log and hands out one page scope at a time.
// It is not safe for concurrent use; pages are recorded sequentially.
type Recorder struct {
	dir     string
	console *Scope
	agg     *fileSink
	aggPath string
	active  *Scope
}

// Option configures a Recorder.
type Option func(*recorderOptions)

type recorderOptions struct {
	aggregatorFile string
}

// WithAggregatorFile overrides the aggregator file name.
func WithAggregatorFile(name string) Option {
	return func(o *recorderOptions) {
		if name != "" {
			o.aggregatorFile = name
		}
	}
}

// Open creates dir if needed and truncates the aggregator log inside it.
// stdout and stderr form the console target.
func Open(dir string, stdout, stderr io.Writer, opts ...Option) (*Recorder, error) {
	o := recorderOptions{aggregatorFile: DefaultAggregatorFile}
	for _, opt := range opts {
		opt(&o)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	aggPath := filepath.Join(dir, o.aggregatorFile)
	agg, err := createFile(aggPath, true)
	if err != nil {
		return nil, fmt.Errorf("open aggregator log: %w", err)
	}
	return &Recorder{
		dir:     dir,
		console: &Scope{Name: "console", Out: Writer(stdout), Err: Writer(stderr)},
		agg:     agg,
		aggPath: aggPath,
	}, nil
}

// Dir returns the output directory.
func (r *Recorder) Dir() string { return r.dir }

// AggregatorPath returns the path of the run-wide log.
func (r *Recorder) AggregatorPath() string { return r.aggPath }

// PageLogPath returns the transcript path for a page.
func (r *Recorder) PageLogPath(page string) string {
	return filepath.Join(r.dir, page+PageLogExt)
}

// Console returns the idle target, which writes to the console only.
func (r *Recorder) Console() *Scope { return r.console }

// Active returns the open page scope, or the console target when idle.
func (r *Recorder) Active() *Scope {
	if r.active != nil {
		return r.active
	}
	return r.console
}

// Begin opens a fresh transcript for page and returns a scope that writes to
// the console, the aggregator and that transcript. The caller must End it.
func (r *Recorder) Begin(page string) (*Scope, error) {
	if r.active != nil {
		return nil, fmt.Errorf("%w: %s", ErrScopeActive, r.active.Name)
	}
	log, err := createFile(r.PageLogPath(page), true)
	if err != nil {
		return nil, fmt.Errorf("open page log: %w", err)
	}
	s := &Scope{
		Name: page,
		Out:  Tee(Tee(r.console.Out, r.agg), log),
		Err:  Tee(Tee(r.console.Err, r.agg), log),
		rec:  r,
		log:  log,
	}
	r.active = s
	return s, nil
}

// Close ends any open scope and closes the aggregator log.
func (r *Recorder) Close() error {
	var err error
	if r.active != nil {
		err = r.active.End()
	}
	if r.agg != nil {
		err = errors.Join(err, r.console.Out.Flush(), r.agg.Close())
		r.agg = nil
	}
	return err
}
