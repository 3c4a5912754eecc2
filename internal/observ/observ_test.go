package observ

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestTimerConcurrent(t *testing.T) {
	tm := NewTimer()
	var wg sync.WaitGroup
	for _, name := range []string{"suite:phi", "suite:vararg", "suite:fibonacci"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			idx := tm.Begin(name)
			time.Sleep(time.Millisecond)
			tm.End(idx, "ok")
		}()
	}
	wg.Wait()

	r := tm.Report()
	if len(r.Phases) != 3 {
		t.Fatalf("got %d phases", len(r.Phases))
	}
	for _, p := range r.Phases {
		if p.DurationMS <= 0 || p.Note != "ok" {
			t.Errorf("phase %+v not finished", p)
		}
		if r.WallMS < p.DurationMS {
			t.Errorf("wall %.3f shorter than phase %s %.3f", r.WallMS, p.Name, p.DurationMS)
		}
	}
	if s := tm.Summary(); !strings.Contains(s, "suite:vararg") || !strings.Contains(s, "wall") {
		t.Errorf("summary:\n%s", s)
	}
}

func TestTimerOutOfRange(t *testing.T) {
	tm := NewTimer()
	tm.End(3, "ignored")
	if r := tm.Report(); len(r.Phases) != 0 || r.WallMS != 0 {
		t.Fatalf("empty report = %+v", r)
	}
}

func TestCounters(t *testing.T) {
	var c Counters
	c.Built.Add(3)
	c.Written.Add(2)
	c.Skipped.Add(1)
	c.Bytes.Add(640)
	want := "3 built, 2 written, 1 unchanged, 0 failed (640 bytes)"
	if got := c.String(); got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}
