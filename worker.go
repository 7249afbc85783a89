package qfield

import "sync"

// rowPool shards interior grid rows across persistent worker goroutines.
// dispatch blocks until every worker has finished the step, so the caller
// can rotate buffers immediately after.
type rowPool struct {
	mu      sync.Mutex
	cond    *sync.Cond
	workers int
	step    int
	pending int
	rows    int
	run     func(y int)
	stopped bool
}

// newRowPool launches the worker goroutines.
func newRowPool(workers int) *rowPool {
	if workers < 1 {
		workers = 1
	}
	p := &rowPool{workers: workers}
	p.cond = sync.NewCond(&p.mu)
	for i := 0; i < workers; i++ {
		go p.loop(i)
	}
	return p
}

// loop processes this worker's share of rows each step. Rows are assigned
// round robin so uneven per-row cost still balances.
func (p *rowPool) loop(index int) {
	last := 0
	p.mu.Lock()
	for {
		for p.step == last && !p.stopped {
			p.cond.Wait()
		}
		if p.stopped {
			p.mu.Unlock()
			return
		}
		last = p.step
		rows, run := p.rows, p.run
		p.mu.Unlock()

		for y := 1 + index; y < rows-1; y += p.workers {
			run(y)
		}

		p.mu.Lock()
		p.pending--
		if p.pending == 0 {
			p.cond.Broadcast()
		}
	}
}

// dispatch runs fn for every interior row (1 .. rows-2) across the pool and
// waits for completion.
func (p *rowPool) dispatch(rows int, fn func(y int)) {
	p.mu.Lock()
	p.rows = rows
	p.run = fn
	p.pending = p.workers
	p.step++
	p.cond.Broadcast()
	for p.pending > 0 {
		p.cond.Wait()
	}
	p.mu.Unlock()
}

// close stops all workers. In-flight steps finish first because dispatch
// holds the caller until pending reaches zero.
func (p *rowPool) close() {
	p.mu.Lock()
	p.stopped = true
	p.cond.Broadcast()
	p.mu.Unlock()
}
