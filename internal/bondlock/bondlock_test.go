package bondlock

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestGuard(t *testing.T) {
	t.Run("serializes_same_bond", func(t *testing.T) {
		g := NewGuard()
		ctx := context.Background()

		const workers = 8
		counter := 0
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := g.Acquire(ctx, "bond-a"); err != nil {
					t.Errorf("acquire failed: %v", err)
					return
				}
				defer g.Release("bond-a")
				// Non-atomic increment; only safe when fully serialized.
				v := counter
				time.Sleep(time.Millisecond)
				counter = v + 1
			}()
		}
		wg.Wait()

		if counter != workers {
			t.Errorf("expected counter %d, got %d", workers, counter)
		}
	})

	t.Run("different_bonds_do_not_block", func(t *testing.T) {
		g := NewGuard()
		ctx := context.Background()

		if err := g.Acquire(ctx, "bond-a"); err != nil {
			t.Fatalf("acquire bond-a: %v", err)
		}
		defer g.Release("bond-a")

		done := make(chan struct{})
		go func() {
			if err := g.Acquire(ctx, "bond-b"); err != nil {
				t.Errorf("acquire bond-b: %v", err)
			} else {
				g.Release("bond-b")
			}
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("bond-b acquisition blocked behind bond-a")
		}
	})

	t.Run("acquire_respects_context_deadline", func(t *testing.T) {
		g := NewGuard()
		if err := g.Acquire(context.Background(), "bond-a"); err != nil {
			t.Fatalf("acquire: %v", err)
		}
		defer g.Release("bond-a")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		if err := g.Acquire(ctx, "bond-a"); err == nil {
			t.Fatal("expected deadline error acquiring a held lock")
		}
	})

	t.Run("release_allows_reacquire", func(t *testing.T) {
		g := NewGuard()
		ctx := context.Background()
		for i := 0; i < 3; i++ {
			if err := g.Acquire(ctx, "bond-a"); err != nil {
				t.Fatalf("acquire %d: %v", i, err)
			}
			g.Release("bond-a")
		}
	})
}
