package forge

import (
	"context"
	"errors"
	"fmt"
	"io"

	"irforge/internal/fixtures"
	"irforge/internal/irwriter"
	"irforge/internal/trace"
)

// ErrUnknownCase is returned when a requested file is not part of a suite.
var ErrUnknownCase = errors.New("unknown fixture file")

// Emit prints every case of suite to w, each preceded by a comment line
// naming its file. file, when non-empty, restricts output to that case.
func Emit(ctx context.Context, w io.Writer, suite fixtures.Suite, d irwriter.Dialect, file string) error {
	ctx, span := trace.Start(ctx, trace.ScopeSuite, "emit:"+suite.Name)
	defer span.End("")

	found := false
	for _, c := range suite.Cases() {
		if file != "" && c.File != file {
			continue
		}
		found = true
		if err := ctx.Err(); err != nil {
			return err
		}
		m, err := c.Build()
		if err != nil {
			return fmt.Errorf("%s/%s: %w", suite.Name, c.File, err)
		}
		if _, err := fmt.Fprintf(w, "; ---- %s/%s\n", suite.Dir, c.File); err != nil {
			return &irwriter.SinkError{Op: "write", Err: err}
		}
		if err := irwriter.Write(w, m, d); err != nil {
			return err
		}
	}
	if !found {
		return fmt.Errorf("%w: %s has no file %q", ErrUnknownCase, suite.Name, file)
	}
	return nil
}

// EmitFile writes the case named file to path.
func EmitFile(suite fixtures.Suite, file, path string, d irwriter.Dialect) error {
	for _, c := range suite.Cases() {
		if c.File != file {
			continue
		}
		m, err := c.Build()
		if err != nil {
			return fmt.Errorf("%s/%s: %w", suite.Name, c.File, err)
		}
		return irwriter.WriteFile(path, m, d)
	}
	return fmt.Errorf("%w: %s has no file %q", ErrUnknownCase, suite.Name, file)
}
