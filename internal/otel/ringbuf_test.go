package otel

import (
	"sync"
	"testing"
)

func counts(evs []Event) []int {
	out := make([]int, len(evs))
	for i, e := range evs {
		out[i] = e.Count
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRingBuffer(t *testing.T) {
	tests := []struct {
		name     string
		size     int
		pushes   int
		last     int
		wantSnap []int
		wantLast []int
	}{
		{"empty", 4, 0, 2, nil, nil},
		{"partial", 8, 5, 3, []int{0, 1, 2, 3, 4}, []int{2, 3, 4}},
		{"exactly full", 4, 4, 2, []int{0, 1, 2, 3}, []int{2, 3}},
		{"wrapped", 4, 10, 3, []int{6, 7, 8, 9}, []int{7, 8, 9}},
		{"last beyond count", 8, 3, 20, []int{0, 1, 2}, []int{0, 1, 2}},
		{"last zero", 4, 3, 0, []int{0, 1, 2}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRingBuffer(tt.size)
			for i := 0; i < tt.pushes; i++ {
				r.Push(Event{Kind: KindRetrieveStart, Count: i})
			}
			if got := counts(r.Snapshot()); !equalInts(got, tt.wantSnap) {
				t.Errorf("Snapshot() = %v, want %v", got, tt.wantSnap)
			}
			if got := counts(r.Last(tt.last)); !equalInts(got, tt.wantLast) {
				t.Errorf("Last(%d) = %v, want %v", tt.last, got, tt.wantLast)
			}
			if r.Len() != len(tt.wantSnap) {
				t.Errorf("Len() = %d, want %d", r.Len(), len(tt.wantSnap))
			}
		})
	}
}

func TestRingDefaultSize(t *testing.T) {
	if c := NewRingBuffer(0).Cap(); c != DefaultRingSize {
		t.Errorf("Cap() = %d, want %d", c, DefaultRingSize)
	}
}

func TestRingStats(t *testing.T) {
	r := NewRingBuffer(4)
	r.Push(Event{Kind: KindSubmit})
	r.Push(Event{Kind: KindRetrieveStart})
	r.Push(Event{Kind: KindRetrieveStart})
	r.Push(Event{Kind: KindRetrieveComplete})
	r.Push(Event{Kind: KindRetrieveStart}) // evicts the submit

	stats := r.Stats()
	if stats[KindSubmit] != 0 {
		t.Errorf("evicted kind still counted: %v", stats)
	}
	if stats[KindRetrieveStart] != 3 || stats[KindRetrieveComplete] != 1 {
		t.Errorf("Stats() = %v", stats)
	}
}

func TestRingCopiesExtra(t *testing.T) {
	r := NewRingBuffer(2)
	extra := map[string]any{"mode": "navigate"}
	r.Push(Event{Kind: KindSubmit, Extra: extra})
	extra["mode"] = "replace"

	if got := r.Last(1)[0].Extra["mode"]; got != "navigate" {
		t.Errorf("Extra aliased caller map: %v", got)
	}
}

func TestRingConcurrent(t *testing.T) {
	r := NewRingBuffer(64)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Push(Event{Kind: KindRetrieveStart})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = r.Snapshot()
				_ = r.Stats()
			}
		}()
	}
	wg.Wait()

	if r.Len() != 64 {
		t.Errorf("Len() = %d, want 64", r.Len())
	}
}
