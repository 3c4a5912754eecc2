// Package forge drives fixture generation: it builds the selected suites
// in parallel, prints every module in the requested dialect and writes the
// files that changed since the last run.
package forge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"irforge/internal/fixcache"
	"irforge/internal/fixtures"
	"irforge/internal/irwriter"
	"irforge/internal/observ"
	"irforge/internal/trace"
	"irforge/internal/ui"
)

// ErrVerify is wrapped by errors reported when a written file does not
// read back with the contents that were rendered.
var ErrVerify = errors.New("verification failed")

// Options configures Generate.
type Options struct {
	Dir     string
	Dialect irwriter.Dialect
	Suites  []fixtures.Suite
	Jobs    int // <= 0 means GOMAXPROCS

	// Cache skips files whose rendered digest has not changed. nil
	// rewrites everything.
	Cache *fixcache.Cache
	// Verify reads every written file back and compares digests.
	Verify bool

	Progress chan<- ui.Event // optional
	Timer    *observ.Timer   // optional
	Counters *observ.Counters
}

// FileResult describes one fixture file.
type FileResult struct {
	Path    string // relative to Options.Dir
	Bytes   int
	Written bool // false when the cache found it unchanged
	Err     error
}

// SuiteResult collects the files of one suite in case order.
type SuiteResult struct {
	Suite string
	Files []FileResult
}

// Failed counts files with an error.
func (r SuiteResult) Failed() int {
	n := 0
	for _, f := range r.Files {
		if f.Err != nil {
			n++
		}
	}
	return n
}

// Generate writes every case of every selected suite below opts.Dir.
// A failing case does not stop the others; all failures are joined into
// the returned error. Results are in suite order.
func Generate(ctx context.Context, opts Options) ([]SuiteResult, error) {
	if opts.Dir == "" {
		return nil, errors.New("forge: no output directory")
	}
	if opts.Counters == nil {
		opts.Counters = &observ.Counters{}
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	ctx, span := trace.Start(ctx, trace.ScopeDriver, "generate")
	span.WithExtra("dialect", opts.Dialect.String()).WithExtra("jobs", strconv.Itoa(jobs))

	results := make([]SuiteResult, len(opts.Suites))
	var (
		mu   sync.Mutex
		errs []error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(opts.Suites))))
	for i, suite := range opts.Suites {
		opts.report(ui.Event{Suite: suite.Name, Status: ui.StatusQueued})
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := generateSuite(gctx, &opts, suite)
			results[i] = res
			for _, f := range res.Files {
				if f.Err != nil {
					mu.Lock()
					errs = append(errs, fmt.Errorf("%s/%s: %w", suite.Name, filepath.Base(f.Path), f.Err))
					mu.Unlock()
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		errs = append(errs, err)
	}

	if opts.Cache != nil {
		if err := opts.Cache.Save(); err != nil {
			errs = append(errs, fmt.Errorf("save cache: %w", err))
		}
	}
	err := errors.Join(errs...)
	detail := opts.Counters.String()
	if err != nil {
		detail = "failed: " + detail
	}
	span.End(detail)
	return results, err
}

func (o *Options) report(ev ui.Event) {
	if o.Progress != nil {
		o.Progress <- ev
	}
}

func (o *Options) begin(name string) int {
	if o.Timer == nil {
		return -1
	}
	return o.Timer.Begin(name)
}

func (o *Options) end(idx int, note string) {
	if o.Timer != nil {
		o.Timer.End(idx, note)
	}
}

func generateSuite(ctx context.Context, opts *Options, suite fixtures.Suite) SuiteResult {
	ctx, span := trace.Start(ctx, trace.ScopeSuite, "suite:"+suite.Name)
	phase := opts.begin("suite:" + suite.Name)

	cases := suite.Cases()
	res := SuiteResult{Suite: suite.Name, Files: make([]FileResult, 0, len(cases))}
	dir := filepath.Join(opts.Dir, filepath.FromSlash(suite.Dir))
	mkdirErr := os.MkdirAll(dir, 0o755)

	written := 0
	for i, c := range cases {
		if err := ctx.Err(); err != nil {
			res.Files = append(res.Files, FileResult{Path: c.File, Err: err})
			continue
		}
		opts.report(ui.Event{Suite: suite.Name, Status: ui.StatusBuilding, Files: i, Total: len(cases), Note: c.File})
		rel := filepath.Join(filepath.FromSlash(suite.Dir), c.File)
		var fr FileResult
		if mkdirErr != nil {
			fr = FileResult{Path: rel, Err: mkdirErr}
		} else {
			fr = generateCase(ctx, opts, rel, c)
		}
		if fr.Err != nil {
			opts.Counters.Failed.Add(1)
		} else if fr.Written {
			written++
		}
		res.Files = append(res.Files, fr)
	}

	failed := res.Failed()
	note := fmt.Sprintf("%d files, %d written", len(cases), written)
	if failed > 0 {
		note += fmt.Sprintf(", %d failed", failed)
	}
	status := ui.StatusDone
	if failed > 0 {
		status = ui.StatusError
	}
	opts.report(ui.Event{Suite: suite.Name, Status: status, Files: len(cases), Total: len(cases), Note: note})
	opts.end(phase, note)
	span.End(note)
	return res
}

func generateCase(ctx context.Context, opts *Options, rel string, c fixtures.Case) FileResult {
	ctx, span := trace.Start(ctx, trace.ScopeCase, "case:"+c.File)
	fr := FileResult{Path: rel}
	defer func() {
		if fr.Err != nil {
			span.End("error: " + fr.Err.Error())
			return
		}
		span.WithExtra("bytes", strconv.Itoa(fr.Bytes)).WithExtra("written", strconv.FormatBool(fr.Written))
		span.End("")
	}()

	m, err := c.Build()
	if err != nil {
		fr.Err = err
		return fr
	}
	opts.Counters.Built.Add(1)

	var buf bytes.Buffer
	if err := irwriter.Write(&buf, m, opts.Dialect); err != nil {
		fr.Err = err
		return fr
	}
	data := buf.Bytes()
	fr.Bytes = len(data)
	digest := fixcache.Sum(data)
	dialect := opts.Dialect.String()
	if opts.Cache.Unchanged(rel, dialect, digest) {
		opts.Counters.Skipped.Add(1)
		return fr
	}

	_, wspan := trace.Start(ctx, trace.ScopeWrite, "write:"+c.File)
	path := filepath.Join(opts.Dir, rel)
	err = writeFile(path, data)
	if err == nil && opts.Verify {
		err = verify(path, digest)
	}
	wspan.End("")
	if err != nil {
		fr.Err = err
		return fr
	}
	fr.Written = true
	opts.Counters.Written.Add(1)
	opts.Counters.Bytes.Add(int64(len(data)))
	opts.Cache.Record(rel, dialect, digest, int64(len(data)))
	return fr
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &irwriter.SinkError{Path: path, Op: "write", Err: err}
	}
	return nil
}

func verify(path string, want fixcache.Digest) error {
	got, err := os.ReadFile(path)
	if err != nil {
		return &irwriter.SinkError{Path: path, Op: "read", Err: err}
	}
	if fixcache.Sum(got) != want {
		return fmt.Errorf("%w: %s does not match the rendered module", ErrVerify, path)
	}
	return nil
}
