package memocache

import (
	"testing"
	"time"
)

func TestStoreGetSet(t *testing.T) {
	s := New()

	if _, ok := s.Get("missing"); ok {
		t.Error("miss expected for unknown key")
	}

	s.Set("k", 42, time.Minute)
	v, ok := s.Get("k")
	if !ok || v.(int) != 42 {
		t.Errorf("got %v, %v", v, ok)
	}
}

func TestStoreExpiry(t *testing.T) {
	s := New()
	s.Set("k", "v", -time.Second) // already expired
	if _, ok := s.Get("k"); ok {
		t.Error("expired entry should miss")
	}
}

func TestStoreDeleteClear(t *testing.T) {
	s := New()
	s.Set("a", 1, time.Minute)
	s.Set("b", 2, time.Minute)

	s.Delete("a")
	if _, ok := s.Get("a"); ok {
		t.Error("deleted entry should miss")
	}

	s.Clear()
	if _, ok := s.Get("b"); ok {
		t.Error("cleared entry should miss")
	}
}
