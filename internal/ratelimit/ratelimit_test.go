package ratelimit

import (
	"sync"
	"testing"
)

func TestCheckExhaustsBurst(t *testing.T) {
	g := New(5)

	for i := 0; i < 5; i++ {
		if !g.Check() {
			t.Fatalf("request %d within the burst should pass", i+1)
		}
	}
	if g.Check() {
		t.Error("request beyond the burst should be rejected")
	}
}

func TestNewClampsRate(t *testing.T) {
	tests := []struct {
		name string
		rps  int
		want int
	}{
		{name: "zero clamps to one", rps: 0, want: 1},
		{name: "negative clamps to one", rps: -5, want: 1},
		{name: "positive passes through", rps: 42, want: 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New(tt.rps).Limit(); got != tt.want {
				t.Errorf("Limit() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPresets(t *testing.T) {
	if got := Permissive().Limit(); got != 1000 {
		t.Errorf("permissive = %d", got)
	}
	if got := Moderate().Limit(); got != 100 {
		t.Errorf("moderate = %d", got)
	}
	if got := Strict().Limit(); got != 10 {
		t.Errorf("strict = %d", got)
	}
}

func TestConcurrentCheckAdmitsAtMostBurst(t *testing.T) {
	g := New(50)

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0

	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.Check() {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// A little slack for tokens refilled while the goroutines run.
	if admitted == 0 || admitted > 60 {
		t.Errorf("admitted %d requests, want roughly the burst", admitted)
	}
}
