package scenario

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkerPoolWaitIsABarrier(t *testing.T) {
	pool := NewWorkerPool(4)
	pool.Start()

	var done int64
	for i := 0; i < 50; i++ {
		pool.Submit(func(workerID int) error {
			atomic.AddInt64(&done, 1)
			return nil
		})
	}
	pool.Wait()
	assert.Equal(t, int64(50), atomic.LoadInt64(&done), "Wait returned before all tasks finished")
	pool.Stop()
}

func TestWorkerPoolCollectsFirstError(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Start()

	boom := errors.New("boom")
	for i := 0; i < 10; i++ {
		i := i
		pool.Submit(func(workerID int) error {
			if i == 3 {
				return boom
			}
			return nil
		})
	}
	pool.Wait()
	pool.Stop()

	assert.ErrorIs(t, pool.FirstErr(), boom)
}

func TestWorkerPoolTasksRunConcurrently(t *testing.T) {
	pool := NewWorkerPool(3)
	pool.Start()

	var mu sync.Mutex
	workers := map[int]bool{}
	for i := 0; i < 30; i++ {
		pool.Submit(func(workerID int) error {
			mu.Lock()
			workers[workerID] = true
			mu.Unlock()
			return nil
		})
	}
	pool.Wait()
	pool.Stop()

	assert.NoError(t, pool.FirstErr())
	assert.NotEmpty(t, workers)
}
