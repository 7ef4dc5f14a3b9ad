package runner

import (
	"context"
	"sync"

	"github.com/hairizuanbinnoorazman/uiscript/logger"
)

// WorkerPool runs indexed tasks on a fixed number of goroutines.
type WorkerPool struct {
	Work       chan int
	maxWorkers int
	logger     logger.Logger
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(maxWorkers int, log logger.Logger) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &WorkerPool{
		Work:       make(chan int, maxWorkers),
		maxWorkers: maxWorkers,
		logger:     log,
	}
}

// Run feeds task indexes 0..n-1 to the workers and waits for them to
// drain. Once ctx is done no further task is started. A pool runs once.
func (p *WorkerPool) Run(ctx context.Context, n int, task func(ctx context.Context, i int)) {
	workers := p.maxWorkers
	if n < workers {
		workers = n
	}

	p.logger.Debug(ctx, "starting worker pool", map[string]interface{}{
		"max_workers": workers,
		"tasks":       n,
	})

	var wg sync.WaitGroup
	for id := 0; id < workers; id++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			p.worker(ctx, id, task)
		}(id)
	}

feed:
	for i := 0; i < n; i++ {
		select {
		case p.Work <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(p.Work)
	wg.Wait()
}

func (p *WorkerPool) worker(ctx context.Context, id int, task func(ctx context.Context, i int)) {
	for {
		select {
		case i, ok := <-p.Work:
			if !ok {
				return
			}
			if ctx.Err() != nil {
				continue
			}
			p.logger.Debug(ctx, "worker picked up task", map[string]interface{}{
				"worker_id": id,
				"task":      i,
			})
			task(ctx, i)
		case <-ctx.Done():
			p.logger.Debug(ctx, "worker stopping", map[string]interface{}{
				"worker_id": id,
			})
			return
		}
	}
}
