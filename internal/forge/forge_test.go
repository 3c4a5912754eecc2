package forge

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"irforge/internal/fixcache"
	"irforge/internal/fixtures"
	"irforge/internal/irwriter"
	"irforge/internal/observ"
	"irforge/internal/trace"
	"irforge/internal/ui"
)

func selectSuites(t *testing.T, names ...string) []fixtures.Suite {
	t.Helper()
	suites, err := fixtures.Select(names)
	if err != nil {
		t.Fatal(err)
	}
	return suites
}

func TestGenerateWritesAndCaches(t *testing.T) {
	dir := t.TempDir()
	suites := selectSuites(t, "phi", "vector-loop")

	run := func() ([]SuiteResult, *observ.Counters) {
		cache, err := fixcache.Open(dir)
		if err != nil {
			t.Fatal(err)
		}
		counters := &observ.Counters{}
		res, err := Generate(context.Background(), Options{
			Dir:      dir,
			Dialect:  irwriter.V38,
			Suites:   suites,
			Jobs:     2,
			Cache:    cache,
			Verify:   true,
			Counters: counters,
		})
		if err != nil {
			t.Fatal(err)
		}
		return res, counters
	}

	res, counters := run()
	if len(res) != 2 || res[0].Suite != "phi" || res[1].Suite != "vector-loop" {
		t.Fatalf("results out of order: %+v", res)
	}
	if counters.Written.Load() != 2 || counters.Skipped.Load() != 0 {
		t.Fatalf("first run: %s", counters)
	}
	data, err := os.ReadFile(filepath.Join(dir, "performance", "vector", "test_vector_loop.ll"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "define i32 @main()") {
		t.Fatalf("unexpected file:\n%s", data)
	}

	_, counters = run()
	if counters.Written.Load() != 0 || counters.Skipped.Load() != 2 {
		t.Fatalf("second run: %s", counters)
	}
}

func TestGenerateDialectChangeRewrites(t *testing.T) {
	dir := t.TempDir()
	suites := selectSuites(t, "phi")
	for i, d := range []irwriter.Dialect{irwriter.V32, irwriter.V38} {
		cache, err := fixcache.Open(dir)
		if err != nil {
			t.Fatal(err)
		}
		counters := &observ.Counters{}
		if _, err := Generate(context.Background(), Options{Dir: dir, Dialect: d, Suites: suites, Cache: cache, Counters: counters}); err != nil {
			t.Fatal(err)
		}
		if counters.Written.Load() != 1 {
			t.Fatalf("run %d (%s): %s", i, d, counters)
		}
	}
}

func TestGenerateReportsProgressAndTrace(t *testing.T) {
	events := make(chan ui.Event, 64)
	var buf bytes.Buffer
	tr := trace.NewStreamTracer(&buf, trace.LevelDebug, trace.FormatText)
	ctx := trace.WithTracer(context.Background(), tr)
	timer := observ.NewTimer()

	_, err := Generate(ctx, Options{
		Dir:      t.TempDir(),
		Dialect:  irwriter.V32,
		Suites:   selectSuites(t, "fibonacci"),
		Progress: events,
		Timer:    timer,
	})
	close(events)
	if err != nil {
		t.Fatal(err)
	}

	var statuses []ui.Status
	for ev := range events {
		statuses = append(statuses, ev.Status)
	}
	if len(statuses) < 3 || statuses[0] != ui.StatusQueued || statuses[len(statuses)-1] != ui.StatusDone {
		t.Fatalf("statuses = %v", statuses)
	}
	out := buf.String()
	for _, want := range []string{"→ generate", "→ suite:fibonacci", "case:test_fibonacci.ll", "write:test_fibonacci.ll"} {
		if !strings.Contains(out, want) {
			t.Errorf("trace missing %q:\n%s", want, out)
		}
	}
	if r := timer.Report(); len(r.Phases) != 1 || r.Phases[0].Name != "suite:fibonacci" {
		t.Fatalf("timer = %+v", r)
	}
}

func TestGenerateCollectsWriteErrors(t *testing.T) {
	dir := t.TempDir()
	// A file where the suite directory should be makes every case fail.
	if err := os.WriteFile(filepath.Join(dir, "phi"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	counters := &observ.Counters{}
	res, err := Generate(context.Background(), Options{
		Dir:      dir,
		Dialect:  irwriter.V38,
		Suites:   selectSuites(t, "phi", "fibonacci"),
		Counters: counters,
	})
	if err == nil || !strings.Contains(err.Error(), "phi/test_phi.ll") {
		t.Fatalf("err = %v", err)
	}
	failed := make(map[string]int, len(res))
	for _, r := range res {
		failed[r.Suite] = r.Failed()
	}
	if len(failed) != 2 || failed["phi"] != 1 || failed["fibonacci"] != 0 {
		t.Fatalf("failures = %v", failed)
	}
	if counters.Failed.Load() != 1 || counters.Written.Load() != 1 {
		t.Fatalf("counters: %s", counters)
	}
}

func TestGenerateNeedsDir(t *testing.T) {
	if _, err := Generate(context.Background(), Options{}); err == nil {
		t.Fatal("expected an error without an output directory")
	}
}

func TestEmit(t *testing.T) {
	suite, ok := fixtures.Lookup("polymorphic-call")
	if !ok {
		t.Fatal("polymorphic-call not registered")
	}
	var buf bytes.Buffer
	if err := Emit(context.Background(), &buf, suite, irwriter.V38, "test_polymorphic_call_3_i32.ll"); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Count(out, "; ---- ") != 1 || !strings.Contains(out, "@impl_3") {
		t.Fatalf("unexpected output:\n%s", out)
	}

	buf.Reset()
	if err := Emit(context.Background(), &buf, suite, irwriter.V32, ""); err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(buf.String(), "; ---- "); got != len(suite.Cases()) {
		t.Fatalf("emitted %d modules, want %d", got, len(suite.Cases()))
	}

	err := Emit(context.Background(), &buf, suite, irwriter.V32, "missing.ll")
	if !errors.Is(err, ErrUnknownCase) {
		t.Fatalf("err = %v", err)
	}
}

func TestEmitFile(t *testing.T) {
	suite, _ := fixtures.Lookup("phi")
	path := filepath.Join(t.TempDir(), "out.ll")
	if err := EmitFile(suite, "test_phi.ll", path, irwriter.V32); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}
	if err := EmitFile(suite, "nope.ll", path, irwriter.V32); !errors.Is(err, ErrUnknownCase) {
		t.Fatalf("err = %v", err)
	}
}
