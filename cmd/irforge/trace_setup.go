package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"irforge/internal/trace"
)

type traceSetup struct {
	tracer trace.Tracer
	// toStderr is set when a stream tracer writes to the terminal.
	toStderr bool
}

// setupTracing reads the trace flags, attaches a tracer to the command
// context and returns it with a cleanup function.
func setupTracing(cmd *cobra.Command) (traceSetup, func(), error) {
	flags := cmd.Root().PersistentFlags()
	output, err := flags.GetString("trace")
	if err != nil {
		return traceSetup{}, nil, fmt.Errorf("failed to get trace flag: %w", err)
	}
	levelStr, err := flags.GetString("trace-level")
	if err != nil {
		return traceSetup{}, nil, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	formatStr, err := flags.GetString("trace-format")
	if err != nil {
		return traceSetup{}, nil, fmt.Errorf("failed to get trace-format flag: %w", err)
	}
	modeStr, err := flags.GetString("trace-mode")
	if err != nil {
		return traceSetup{}, nil, fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	ringSize, err := flags.GetInt("trace-ring-size")
	if err != nil {
		return traceSetup{}, nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return traceSetup{}, nil, err
	}
	// --trace alone implies the phase level.
	if level == trace.LevelOff && output != "" {
		level = trace.LevelPhase
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return traceSetup{tracer: trace.Nop}, func() {}, nil
	}
	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return traceSetup{}, nil, err
	}
	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return traceSetup{}, nil, err
	}
	if level == trace.LevelError {
		mode = trace.ModeRing
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: output,
		RingSize:   ringSize,
	})
	if err != nil {
		return traceSetup{}, nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))

	cleanup := func() {
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}
	toStderr := mode != trace.ModeRing && (output == "" || output == "-")
	return traceSetup{tracer: tracer, toStderr: toStderr}, cleanup, nil
}

// dumpRing writes the ring buffer to stderr after a failed run.
func dumpRing(t trace.Tracer) {
	ring, ok := trace.Ring(t)
	if !ok {
		return
	}
	fmt.Fprintln(os.Stderr, "trace: last events before the failure:")
	if err := ring.Dump(os.Stderr, trace.FormatText); err != nil {
		fmt.Fprintf(os.Stderr, "trace: dump error: %v\n", err)
	}
}
