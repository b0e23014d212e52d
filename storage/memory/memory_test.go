package memory

import (
	"testing"

	"revelare.io/fractal/storage"
	"revelare.io/fractal/storage/testkit"
)

func TestMemory_Conformance(t *testing.T) {
	testkit.RunCASConformance(t, func(t *testing.T) storage.CAS {
		t.Helper()
		return New()
	})
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	cas := New()
	id, err := cas.Put([]byte("immutable"))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := cas.Get(id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	got[0] = 'X'

	again, err := cas.Get(id)
	if err != nil {
		t.Fatalf("Get(2) failed: %v", err)
	}
	if string(again) != "immutable" {
		t.Fatalf("stored bytes mutated through Get result: %q", again)
	}
}

func TestMemory_Len(t *testing.T) {
	cas := New()
	if cas.Len() != 0 {
		t.Fatalf("Len on empty store: got %d", cas.Len())
	}
	if _, err := cas.Put([]byte("a")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if _, err := cas.Put([]byte("a")); err != nil {
		t.Fatalf("Put(dup) failed: %v", err)
	}
	if cas.Len() != 1 {
		t.Fatalf("Len after duplicate Put: got %d want 1", cas.Len())
	}
}
