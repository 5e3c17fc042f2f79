package loader

import (
	"errors"
	"testing"
)

func TestHandleResolvesOnce(t *testing.T) {
	calls := 0
	h := NewHandle("mod", "Lfoo/Bar;", func(base, jts string) (*int, error) {
		calls++
		v := 42
		return &v, nil
	})
	v1, err := h.Get()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v2, _ := h.Get()
	if v1 != v2 {
		t.Errorf("expected same pointer across calls")
	}
	if calls != 1 {
		t.Errorf("resolve called %d times, want 1", calls)
	}
	if !h.Resolved() {
		t.Error("expected Resolved() true after Get")
	}
}

func TestHandleCachesError(t *testing.T) {
	calls := 0
	sentinel := errors.New("boom")
	h := NewHandle("mod", "Lfoo/Bar;", func(base, jts string) (*int, error) {
		calls++
		return nil, sentinel
	})
	_, err1 := h.Get()
	_, err2 := h.Get()
	if !errors.Is(err1, sentinel) || !errors.Is(err2, sentinel) {
		t.Errorf("expected wrapped sentinel error, got %v / %v", err1, err2)
	}
	if calls != 1 {
		t.Errorf("resolve called %d times, want 1", calls)
	}
}
