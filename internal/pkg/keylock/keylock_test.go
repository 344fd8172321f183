package keylock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestKeyedMutex_MutualExclusion(t *testing.T) {
	km := New(0)

	var counter int
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.Lock("thumb:42")
			counter++
			km.Unlock("thumb:42")
		}()
	}
	wg.Wait()

	require.Equal(t, 100, counter)
}

func TestKeyedMutex_DistinctKeysDoNotBlock(t *testing.T) {
	km := New(256)

	km.Lock("a")
	defer km.Unlock("a")

	done := make(chan struct{})
	go func() {
		km.Lock("b")
		km.Unlock("b")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a distinct key blocked")
	}
}

func TestKeyedMutex_Reentry(t *testing.T) {
	km := New(4)

	km.Lock("k")
	km.Unlock("k")
	km.Lock("k")
	km.Unlock("k")
}
