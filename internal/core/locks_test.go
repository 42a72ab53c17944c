package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	k := newKeyedMutex()
	ctx := context.Background()

	unlock, err := k.Lock(ctx, "a")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	other, err := k.Lock(ctx, "b")
	if err != nil {
		t.Fatalf("independent key blocked: %v", err)
	}
	other()

	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if _, err := k.Lock(waitCtx, "a"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	acquired := make(chan func())
	go func() {
		u, err := k.Lock(ctx, "a")
		if err != nil {
			close(acquired)
			return
		}
		acquired <- u
	}()
	unlock()
	u, ok := <-acquired
	if !ok {
		t.Fatalf("waiter failed to acquire")
	}
	u()
	if k.size() != 0 {
		t.Fatalf("expected empty lock table, got %d", k.size())
	}
}
