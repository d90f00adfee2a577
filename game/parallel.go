package game

import (
	"runtime"
	"sync"

	"github.com/pthm-cable/homestead/config"
	"github.com/pthm-cable/homestead/systems"
)

// workChunk represents a range of snapshots for a worker to score.
type workChunk struct {
	start, end int
}

// parallelState holds resources for parallel decision scoring.
type parallelState struct {
	snapshots  []systems.AgentSnapshot
	decisions  []systems.Decision
	numWorkers int
	threshold  int // minimum living population for the worker pool

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

func newParallelState(cfg config.PerformanceConfig) *parallelState {
	numWorkers := cfg.Workers
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	return &parallelState{
		numWorkers: numWorkers,
		threshold:  cfg.ParallelThreshold,
		snapshots:  make([]systems.AgentSnapshot, 0, 512),
		decisions:  make([]systems.Decision, 0, 512),
	}
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers(d *systems.Decider) {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(d)
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *parallelState) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, scoring chunks until stopped.
func (p *parallelState) worker(d *systems.Decider) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			p.scoreChunk(d, chunk.start, chunk.end)
			p.doneChan <- struct{}{}
		}
	}
}

// score fills decisions for every snapshot, on the worker pool when the
// population is at least the threshold. Each decision slot is written by
// exactly one goroutine.
func (p *parallelState) score(d *systems.Decider) {
	n := len(p.snapshots)
	if cap(p.decisions) < n {
		p.decisions = make([]systems.Decision, n)
	}
	p.decisions = p.decisions[:n]
	if n == 0 {
		return
	}

	if n < p.threshold || p.numWorkers == 1 {
		p.scoreChunk(d, 0, n)
		return
	}

	if !p.running {
		p.startWorkers(d)
	}

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers

	// Dispatch chunks to workers
	chunksDispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}

		p.workChan <- workChunk{start: start, end: end}
		chunksDispatched++
	}

	// Wait for all chunks to complete
	for i := 0; i < chunksDispatched; i++ {
		<-p.doneChan
	}
}

// scoreChunk scores snapshots [i0, i1).
func (p *parallelState) scoreChunk(d *systems.Decider, i0, i1 int) {
	for i := i0; i < i1; i++ {
		p.decisions[i] = d.Decide(&p.snapshots[i])
	}
}
