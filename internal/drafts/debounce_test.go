package drafts

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerFiresOnceAfterQuietPeriod(t *testing.T) {
	var calls atomic.Int32
	d := NewDebouncer(30*time.Millisecond, func() { calls.Add(1) })

	// A burst of edits collapses into one flush.
	d.Trigger()
	d.Trigger()
	d.Trigger()

	time.Sleep(150 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("expected exactly 1 flush, got %d", got)
	}
}

func TestDebouncerResetsOnTrigger(t *testing.T) {
	var calls atomic.Int32
	d := NewDebouncer(60*time.Millisecond, func() { calls.Add(1) })

	d.Trigger()
	time.Sleep(30 * time.Millisecond)
	// Still inside the quiet period: this resets the clock.
	d.Trigger()
	time.Sleep(30 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Fatalf("flush fired before the quiet period elapsed (%d calls)", got)
	}

	time.Sleep(100 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("expected 1 flush after quiet period, got %d", got)
	}
}

func TestDebouncerCancel(t *testing.T) {
	var calls atomic.Int32
	d := NewDebouncer(30*time.Millisecond, func() { calls.Add(1) })

	d.Trigger()
	d.Cancel()

	time.Sleep(100 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Errorf("cancelled flush still fired %d times", got)
	}
}

func TestDebouncerExplicitFlush(t *testing.T) {
	var calls atomic.Int32
	d := NewDebouncer(time.Hour, func() { calls.Add(1) })

	d.Trigger()
	d.Flush()
	if got := calls.Load(); got != 1 {
		t.Fatalf("explicit flush did not run (%d calls)", got)
	}

	// Nothing pending: Flush is a no-op.
	d.Flush()
	if got := calls.Load(); got != 1 {
		t.Errorf("flush without pending work ran anyway (%d calls)", got)
	}
}
