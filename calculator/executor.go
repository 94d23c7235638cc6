package calculator

import (
	"context"
	"runtime"
	"sync"
)

// 基于下标区间的任务分配：[0, n) 切分成 task，由固定数量的 worker 处理，
// 全部完成后 run 才返回（隐式屏障）。
type executor struct {
	workers int
}

type task struct {
	start int
	end   int
}

func newExecutor(workers int) *executor {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &executor{workers: workers}
}

// split 每个 worker 大约分到两个 task，余数摊到前面的 task
func (e *executor) split(n int) []task {
	if n <= 0 {
		return nil
	}
	count := e.workers * 2
	if count > n {
		count = n
	}
	taskLen, remainder := n/count, n%count
	tasks := make([]task, 0, count)
	start := 0
	for i := 0; i < count; i++ {
		end := start + taskLen
		if i < remainder {
			end++
		}
		tasks = append(tasks, task{start: start, end: end})
		start = end
	}
	return tasks
}

// run calls f for every i in [0, n) on the worker pool. ctx is polled once per
// index; the first error from f or from ctx stops the remaining work and is returned.
func (e *executor) run(ctx context.Context, n int, f func(i int) error) error {
	tasks := e.split(n)
	dispatchChan := make(chan task, len(tasks))
	for _, t := range tasks {
		dispatchChan <- t
	}
	close(dispatchChan)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	workers := e.workers
	if workers > len(tasks) {
		workers = len(tasks)
	}
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for t := range dispatchChan {
				for i := t.start; i < t.end; i++ {
					if err := ctx.Err(); err != nil {
						fail(err)
						return
					}
					if err := f(i); err != nil {
						fail(err)
						return
					}
				}
			}
		}()
	}
	wg.Wait()
	return firstErr
}
