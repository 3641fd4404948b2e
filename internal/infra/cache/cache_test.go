package cache_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/boddenberg/retail-ledger-go/internal/infra/cache"
)

func TestCache_Expiration(t *testing.T) {
	c := cache.New[string](50 * time.Millisecond)
	defer c.Close()

	if !c.SetIfAbsent("key1", "value1") {
		t.Fatal("first SetIfAbsent should store")
	}
	time.Sleep(100 * time.Millisecond)

	if !c.SetIfAbsent("key1", "value2") {
		t.Error("expired entry should not block SetIfAbsent")
	}
}

func TestCache_SetIfAbsent(t *testing.T) {
	c := cache.New[int](time.Minute)
	defer c.Close()

	if !c.SetIfAbsent("k", 1) {
		t.Fatal("first SetIfAbsent should store")
	}
	if c.SetIfAbsent("k", 2) {
		t.Fatal("second SetIfAbsent should not store")
	}

	c.Delete("k")
	if !c.SetIfAbsent("k", 3) {
		t.Error("deleted key should be storable again")
	}
}

func TestCache_CloseIsIdempotent(t *testing.T) {
	c := cache.New[int](time.Minute)
	c.Close()
	c.Close()
}

func TestIdempotency_ClaimOnce(t *testing.T) {
	idem := cache.NewIdempotency(time.Minute)
	defer idem.Close()

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if idem.Claim("deposit:abc") {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("expected exactly one claim, got %d", wins)
	}

	idem.Release("deposit:abc")
	if !idem.Claim("deposit:abc") {
		t.Error("released key should be claimable")
	}
}
