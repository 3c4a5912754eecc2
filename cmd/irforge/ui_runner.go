package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"irforge/internal/forge"
	"irforge/internal/ui"
)

type generateOutcome struct {
	results []forge.SuiteResult
	err     error
}

// runGenerateWithUI runs forge.Generate while a Bubble Tea program
// renders its progress events.
func runGenerateWithUI(ctx context.Context, title string, opts forge.Options) ([]forge.SuiteResult, error) {
	events := make(chan ui.Event, 256)
	outcomeCh := make(chan generateOutcome, 1)

	names := make([]string, len(opts.Suites))
	for i, s := range opts.Suites {
		names[i] = s.Name
	}

	go func() {
		opts.Progress = events
		res, err := forge.Generate(ctx, opts)
		outcomeCh <- generateOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, names, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	if uiErr != nil {
		// keep draining so the generator never blocks on a full channel
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
