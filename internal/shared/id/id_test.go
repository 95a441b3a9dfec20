package id

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestGenerateUnique(t *testing.T) {
	gen := NewGenerator()

	id1 := gen.Generate()
	id2 := gen.Generate()

	if id1.String() == id2.String() {
		t.Error("Generated IDs should be unique")
	}
}

func TestNewRequestID(t *testing.T) {
	id := NewRequestID()

	if !strings.HasPrefix(id.String(), "req_") {
		t.Errorf("ID should start with 'req_', got: %s", id)
	}
	if !IsValidRequestID(id.String()) {
		t.Errorf("ID should be valid: %s", id)
	}
}

func TestIsValidRequestID(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{NewRequestID().String(), true},
		{"req_not-a-ulid", false},
		{"app_01ARZ3NDEKTSV4RRFFQ69G5FAV", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsValidRequestID(tt.input); got != tt.want {
			t.Errorf("IsValidRequestID(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestRequestIDTimestamp(t *testing.T) {
	before := time.Now().Add(-time.Second)
	id := NewRequestID()

	ts, err := id.Timestamp()
	if err != nil {
		t.Fatalf("Timestamp() error = %v", err)
	}
	if ts.Before(before) || ts.After(time.Now().Add(time.Second)) {
		t.Errorf("Timestamp %v out of range", ts)
	}

	if _, err := RequestID("bogus").Timestamp(); err == nil {
		t.Error("expected error for unprefixed ID")
	}
}

func TestConcurrentGeneration(t *testing.T) {
	const n = 200
	var (
		mu   sync.Mutex
		seen = make(map[RequestID]bool, n)
		wg   sync.WaitGroup
	)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := NewRequestID()
			mu.Lock()
			seen[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(seen) != n {
		t.Errorf("expected %d unique IDs, got %d", n, len(seen))
	}
}
