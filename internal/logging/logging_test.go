package logging

import "testing"

func TestNew(t *testing.T) {
	for _, verbose := range []bool{false, true} {
		l, err := New(verbose)
		if err != nil {
			t.Fatalf("New(%v) failed: %v", verbose, err)
		}
		if l == nil {
			t.Fatalf("New(%v) returned nil logger", verbose)
		}
		if got := l.Desugar().Core().Enabled(-1); got != verbose {
			t.Errorf("New(%v): debug enabled = %v, want %v", verbose, got, verbose)
		}
	}
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	l.Infow("discarded", "key", "value")
	if l.Desugar().Core().Enabled(2) {
		t.Error("expected nop logger to drop everything")
	}
}
