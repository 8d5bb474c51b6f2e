package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestMemory_GetWithoutPut(t *testing.T) {
	c := NewMemory()

	if _, err := c.Get(context.Background(), "health"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get() error = %v, want ErrCacheMiss", err)
	}
}

func TestMemory_PutThenGet(t *testing.T) {
	clock := newFakeClock()
	c := NewMemory(WithClock(clock.Now))
	ctx := context.Background()

	if err := c.Put(ctx, "health", []byte(`{"status":"ok"}`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// Advance to 0s, 1m, 3m and 4m59s after the Put.
	for _, step := range []time.Duration{0, time.Minute, 2 * time.Minute, time.Minute + 59*time.Second} {
		clock.Advance(step)

		got, err := c.Get(ctx, "health")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if string(got) != `{"status":"ok"}` {
			t.Errorf("Get = %s, want {\"status\":\"ok\"}", got)
		}
	}
}

func TestMemory_Expiry(t *testing.T) {
	clock := newFakeClock()
	c := NewMemory(WithClock(clock.Now))
	ctx := context.Background()

	if err := c.Put(ctx, "health", []byte(`{"status":"ok"}`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	clock.Advance(DefaultTTL - time.Nanosecond)
	if _, err := c.Get(ctx, "health"); err != nil {
		t.Errorf("Get just before TTL failed: %v", err)
	}

	clock.Advance(time.Nanosecond)
	if _, err := c.Get(ctx, "health"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get at TTL error = %v, want ErrCacheMiss", err)
	}

	// Lazy expiry: the entry is still held, only treated as absent.
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestMemory_RefreshAfterExpiry(t *testing.T) {
	clock := newFakeClock()
	c := NewMemory(WithClock(clock.Now))
	ctx := context.Background()

	_ = c.Put(ctx, "health", []byte("old"))
	clock.Advance(10 * time.Minute)
	_ = c.Put(ctx, "health", []byte("new"))

	got, err := c.Get(ctx, "health")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "new" {
		t.Errorf("Get = %s, want new", got)
	}
}

func TestMemory_LastWriteWins(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	_ = c.Put(ctx, "health", []byte("first"))
	_ = c.Put(ctx, "health", []byte("second"))

	got, err := c.Get(ctx, "health")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "second" {
		t.Errorf("Get = %s, want second", got)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestMemory_CustomTTL(t *testing.T) {
	clock := newFakeClock()
	c := NewMemory(WithClock(clock.Now), WithTTL(time.Second))
	ctx := context.Background()

	if c.TTL() != time.Second {
		t.Errorf("TTL() = %v, want 1s", c.TTL())
	}

	_ = c.Put(ctx, "k", []byte("v"))
	clock.Advance(time.Second)
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get error = %v, want ErrCacheMiss", err)
	}
}

func TestMemory_ValuesAreCopied(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	value := []byte("original")
	_ = c.Put(ctx, "k", value)
	value[0] = 'X'

	got, _ := c.Get(ctx, "k")
	if string(got) != "original" {
		t.Errorf("Get = %s after caller mutation, want original", got)
	}

	got[0] = 'Y'
	again, _ := c.Get(ctx, "k")
	if string(again) != "original" {
		t.Errorf("Get = %s after result mutation, want original", again)
	}
}

func TestMemory_IndependentInstances(t *testing.T) {
	a := NewMemory()
	b := NewMemory()
	ctx := context.Background()

	_ = a.Put(ctx, "health", []byte("a"))

	if _, err := b.Get(ctx, "health"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("second cache Get error = %v, want ErrCacheMiss", err)
	}
}

func TestMemory_Concurrent(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", i%4)
			for j := 0; j < 100; j++ {
				_ = c.Put(ctx, key, []byte(fmt.Sprintf("%d-%d", i, j)))
				_, _ = c.Get(ctx, key)
			}
		}(i)
	}
	wg.Wait()

	if c.Len() != 4 {
		t.Errorf("Len() = %d, want 4", c.Len())
	}
}
