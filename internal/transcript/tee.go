// Package transcript fans textual run output out to the console, a per-page
// log and a run-wide aggregator log.
package transcript

import (
	"bufio"
	"errors"
	"io"
	"os"
)

// Sink is a text destination that can be flushed.
type Sink interface {
	io.Writer
	Flush() error
}

type tee struct {
	a, b Sink
}

// Tee returns a Sink that forwards every write and flush to a and then b.
// A failing sink does not keep output from the other; the errors of both
// are joined. Wider fan-outs are built by nesting.
func Tee(a, b Sink) Sink {
	return &tee{a: a, b: b}
}

func (t *tee) Write(p []byte) (int, error) {
	if err := errors.Join(writeAll(t.a, p), writeAll(t.b, p)); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (t *tee) Flush() error {
	return errors.Join(t.a.Flush(), t.b.Flush())
}

func writeAll(w io.Writer, p []byte) error {
	n, err := w.Write(p)
	if err != nil {
		return err
	}
	if n != len(p) {
		return io.ErrShortWrite
	}
	return nil
}

type flusher interface {
	Flush() error
}

type plain struct {
	io.Writer
}

func (p plain) Flush() error {
	if f, ok := p.Writer.(flusher); ok {
		return f.Flush()
	}
	return nil
}

// Writer adapts w to a Sink. Writers that already have a Flush method keep it.
func Writer(w io.Writer) Sink {
	if s, ok := w.(Sink); ok {
		return s
	}
	return plain{Writer: w}
}

// Discard is a Sink that drops everything.
var Discard Sink = plain{Writer: io.Discard}

// fileSink buffers writes to a file. With autoFlush set every write reaches
// the file before Write returns.
type fileSink struct {
	f         *os.File
	w         *bufio.Writer
	autoFlush bool
}

func createFile(path string, autoFlush bool) (*fileSink, error) {
	f, err := os.Create(path) //nolint:gosec // G304: path built from configured output directory
	if err != nil {
		return nil, err
	}
	return &fileSink{f: f, w: bufio.NewWriter(f), autoFlush: autoFlush}, nil
}

func (s *fileSink) Write(p []byte) (int, error) {
	n, err := s.w.Write(p)
	if err != nil {
		return n, err
	}
	if s.autoFlush {
		return n, s.w.Flush()
	}
	return n, nil
}

func (s *fileSink) Flush() error { return s.w.Flush() }

func (s *fileSink) Close() error {
	return errors.Join(s.w.Flush(), s.f.Close())
}
