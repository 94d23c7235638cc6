package calculator

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutorSplit(t *testing.T) {
	e := newExecutor(3)
	for _, n := range []int{1, 5, 6, 7, 100} {
		tasks := e.split(n)
		require.NotEmpty(t, tasks)
		assert.LessOrEqual(t, len(tasks), 6)
		assert.Equal(t, 0, tasks[0].start)
		assert.Equal(t, n, tasks[len(tasks)-1].end)
		for i := 1; i < len(tasks); i++ {
			assert.Equal(t, tasks[i-1].end, tasks[i].start)
			assert.LessOrEqual(t, tasks[i-1].end-tasks[i-1].start-(tasks[i].end-tasks[i].start), 1)
		}
	}
	assert.Nil(t, e.split(0))
}

func TestExecutorRunCoversEveryIndex(t *testing.T) {
	const n = 1000
	hits := make([]int32, n)
	err := newExecutor(4).run(context.Background(), n, func(i int) error {
		atomic.AddInt32(&hits[i], 1)
		return nil
	})
	require.NoError(t, err)
	for i, h := range hits {
		assert.Equal(t, int32(1), h, "index %d", i)
	}
}

func TestExecutorRunError(t *testing.T) {
	boom := errors.New("boom")
	var calls int32
	err := newExecutor(2).run(context.Background(), 10000, func(i int) error {
		atomic.AddInt32(&calls, 1)
		if i == 3 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Less(t, atomic.LoadInt32(&calls), int32(10000))
}

func TestExecutorRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var calls int32
	err := newExecutor(4).run(ctx, 100, func(i int) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), calls)
}

func TestExecutorRunCanceledMidway(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var calls int32
	err := newExecutor(1).run(ctx, 100, func(i int) error {
		if atomic.AddInt32(&calls, 1) == 10 {
			cancel()
		}
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(10), atomic.LoadInt32(&calls))
}

func TestNewExecutorDefaultsWorkers(t *testing.T) {
	assert.Greater(t, newExecutor(0).workers, 0)
}
