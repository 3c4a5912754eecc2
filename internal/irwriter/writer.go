// Package irwriter renders an ir.Module as textual IR in one of the
// supported dialects.
package irwriter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"irforge/internal/ir"
)

// SinkError reports a failure of the output destination. It is never
// returned for problems in the module itself.
type SinkError struct {
	Path string // empty for plain io.Writer sinks
	Op   string
	Err  error
}

func (e *SinkError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("irwriter: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("irwriter: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *SinkError) Unwrap() error {
	return e.Err
}

// lineWriter flushes after every line and keeps the first error.
type lineWriter struct {
	w   *bufio.Writer
	err error
}

func newLineWriter(w io.Writer) *lineWriter {
	return &lineWriter{w: bufio.NewWriter(w)}
}

func (lw *lineWriter) line(s string) {
	if lw.err != nil {
		return
	}
	if _, err := lw.w.WriteString(s); err != nil {
		lw.err = err
		return
	}
	if err := lw.w.WriteByte('\n'); err != nil {
		lw.err = err
		return
	}
	lw.err = lw.w.Flush()
}

func (lw *lineWriter) blank() {
	lw.line("")
}

// Write renders m to w. The sink is owned by the caller.
func Write(w io.Writer, m *ir.Module, d Dialect) error {
	if m == nil {
		return errors.New("irwriter: nil module")
	}
	out := newLineWriter(w)
	e := newEmitter(m, d, out)
	e.emitModule()
	if out.err != nil {
		return &SinkError{Op: "write", Err: out.err}
	}
	return nil
}

// Text renders m into a string.
func Text(m *ir.Module, d Dialect) (string, error) {
	var sb strings.Builder
	if err := Write(&sb, m, d); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// WriteFile creates (or truncates) path and renders m into it.
func WriteFile(path string, m *ir.Module, d Dialect) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return &SinkError{Path: path, Op: "create", Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &SinkError{Path: path, Op: "close", Err: cerr}
		}
	}()
	if err := Write(f, m, d); err != nil {
		var se *SinkError
		if errors.As(err, &se) {
			se.Path = path
		}
		return err
	}
	return nil
}
