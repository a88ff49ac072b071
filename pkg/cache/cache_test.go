package cache

import (
	"testing"
	"time"
)

func TestSetGet(t *testing.T) {
	c := New()
	c.Set("portfolio:u1", 42, time.Minute)

	v, ok := c.Get("portfolio:u1")
	if !ok {
		t.Fatal("expected hit")
	}
	if v.(int) != 42 {
		t.Fatalf("expected 42, got %v", v)
	}
}

func TestExpiry(t *testing.T) {
	c := New()
	c.Set("k", "v", 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Fatal("expected expired entry to miss")
	}
}

func TestInvalidatePrefix(t *testing.T) {
	c := New()
	c.Set("portfolio:u1", 1, time.Minute)
	c.Set("portfolio:u2", 2, time.Minute)
	c.Set("other:u1", 3, time.Minute)

	c.Invalidate("portfolio:")

	if _, ok := c.Get("portfolio:u1"); ok {
		t.Fatal("expected portfolio:u1 invalidated")
	}
	if _, ok := c.Get("portfolio:u2"); ok {
		t.Fatal("expected portfolio:u2 invalidated")
	}
	if _, ok := c.Get("other:u1"); !ok {
		t.Fatal("expected other:u1 to survive")
	}
}

func TestDeleteAndClear(t *testing.T) {
	c := New()
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected a deleted")
	}

	c.Clear()
	if _, ok := c.Get("b"); ok {
		t.Fatal("expected b cleared")
	}
}
