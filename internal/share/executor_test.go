package share

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMainLoopRunsInOrderOnOneGoroutine(t *testing.T) {
	l := NewMainLoop()

	var mu sync.Mutex
	var got []int
	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		require.NoError(t, l.Run(func() {
			defer wg.Done()
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		}))
	}
	wg.Wait()
	l.Close()

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got)
}

func TestMainLoopClose(t *testing.T) {
	l := NewMainLoop()

	ran := make(chan struct{}, 1)
	require.NoError(t, l.Run(func() { ran <- struct{}{} }))
	l.Close()
	l.Close()

	select {
	case <-ran:
	default:
		t.Fatal("queued call dropped on close")
	}
	assert.ErrorIs(t, l.Run(func() {}), ErrClosed)
}

func TestInline(t *testing.T) {
	ran := false
	require.NoError(t, Inline{}.Run(func() { ran = true }))
	assert.True(t, ran)
}
