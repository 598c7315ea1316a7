package ledger

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryReserveAndHas(t *testing.T) {
	led := NewMemory()
	ctx := context.Background()

	used, err := led.Has(ctx, "chain:sig1")
	if err != nil {
		t.Fatalf("Has: %v", err)
	}
	if used {
		t.Fatal("fresh key reported as used")
	}

	ok, err := led.Reserve(ctx, "chain:sig1", time.Hour)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if !ok {
		t.Fatal("first reservation failed")
	}

	used, err = led.Has(ctx, "chain:sig1")
	if err != nil {
		t.Fatalf("Has: %v", err)
	}
	if !used {
		t.Fatal("reserved key not reported as used")
	}

	ok, err = led.Reserve(ctx, "chain:sig1", time.Hour)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if ok {
		t.Fatal("second reservation succeeded")
	}
}

func TestMemoryNamespacesDoNotCollide(t *testing.T) {
	led := NewMemory()
	ctx := context.Background()

	if ok, _ := led.Reserve(ctx, "chain:dup", time.Hour); !ok {
		t.Fatal("chain reservation failed")
	}
	if ok, _ := led.Reserve(ctx, "processor:dup", time.Hour); !ok {
		t.Fatal("processor key collided with chain key of the same value")
	}
}

func TestMemoryExpiry(t *testing.T) {
	led := NewMemory()
	ctx := context.Background()

	if ok, _ := led.Reserve(ctx, "chain:short", 5*time.Millisecond); !ok {
		t.Fatal("reservation failed")
	}

	time.Sleep(20 * time.Millisecond)

	if used, _ := led.Has(ctx, "chain:short"); used {
		t.Fatal("expired key still reported as used")
	}
	if ok, _ := led.Reserve(ctx, "chain:short", time.Hour); !ok {
		t.Fatal("expired key not reservable again")
	}
}

func TestMemoryConcurrentReserve(t *testing.T) {
	led := NewMemory()
	ctx := context.Background()

	const goroutines = 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := led.Reserve(ctx, "chain:contested", time.Hour)
			if err != nil {
				t.Errorf("Reserve: %v", err)
				return
			}
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("expected exactly one winning reservation, got %d", wins)
	}
}
