package calculation

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/finsim/retirement-simulator/internal/domain"
)

// ProgressEvent is a batch-level snapshot of a running simulation.
// Year counts simulated years cleared by every path (the slowest
// path's frontier); Completed counts fully finished paths.
type ProgressEvent struct {
	Year       int `json:"year"`
	TotalYears int `json:"total_years"`
	Completed  int `json:"completed_paths"`
	Total      int `json:"total_paths"`
}

// yearFrontier tracks the greatest year index that every path has
// cleared. Early-terminated paths are credited with their untouched
// remaining years so the frontier keeps moving.
type yearFrontier struct {
	mu      sync.Mutex
	pending []int
	done    int
}

func newYearFrontier(paths, years int) *yearFrontier {
	pending := make([]int, years)
	for i := range pending {
		pending[i] = paths
	}
	return &yearFrontier{pending: pending}
}

// clear marks year y done for one path and returns the frontier if it
// moved, -1 otherwise.
func (f *yearFrontier) clear(y int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending[y]--
	return f.advance()
}

// clearFrom marks years from..end done for one path.
func (f *yearFrontier) clearFrom(from int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	for y := from; y < len(f.pending); y++ {
		f.pending[y]--
	}
	return f.advance()
}

func (f *yearFrontier) advance() int {
	moved := false
	for f.done < len(f.pending) && f.pending[f.done] == 0 {
		f.done++
		moved = true
	}
	if !moved {
		return -1
	}
	return f.done
}

// Frontier reads the current fully-cleared year count.
func (f *yearFrontier) Frontier() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.done
}

// Runner fans one run's paths out over a worker pool and collects the
// raw results. A Runner is good for a single Run call.
type Runner struct {
	sim      *PathSimulator
	workers  int
	log      Logger
	progress chan ProgressEvent

	mu   sync.Mutex
	last ProgressEvent
}

// NewRunner sizes the pool; workers <= 0 means one per CPU.
func NewRunner(sim *PathSimulator, workers int, log Logger) *Runner {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if log == nil {
		log = NopLogger{}
	}
	return &Runner{
		sim:      sim,
		workers:  workers,
		log:      log,
		progress: make(chan ProgressEvent, 1),
	}
}

// Progress returns the event channel. Events coalesce: the channel
// always holds the newest snapshot, and slow consumers skip
// intermediate states rather than stalling workers. The channel closes
// when Run returns.
func (r *Runner) Progress() <-chan ProgressEvent {
	return r.progress
}

// notify publishes without blocking, replacing an unread older event.
// Concurrent snapshots can arrive out of order, so stale fields are
// rolled forward and exact duplicates dropped; the published stream
// never regresses.
func (r *Runner) notify(ev ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ev.Year < r.last.Year {
		ev.Year = r.last.Year
	}
	if ev.Completed < r.last.Completed {
		ev.Completed = r.last.Completed
	}
	if ev == r.last {
		return
	}
	r.last = ev

	select {
	case r.progress <- ev:
		return
	default:
	}
	select {
	case <-r.progress:
	default:
	}
	select {
	case r.progress <- ev:
	default:
	}
}

// Run executes n paths under the master seed and returns their results
// ordered by path index. The first tax-service failure or a canceled
// context aborts the run; partial results are discarded, never
// partially aggregated.
func (r *Runner) Run(ctx context.Context, masterSeed int64, n int) ([]domain.PathResult, error) {
	years := r.sim.in.Years()
	frontier := newYearFrontier(n, years)
	results := make([]domain.PathResult, n)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer close(r.progress)

	var completed atomic.Int64
	r.sim.OnYearComplete = func(y int) {
		if moved := frontier.clear(y); moved >= 0 {
			r.notify(ProgressEvent{Year: moved, TotalYears: years, Completed: int(completed.Load()), Total: n})
		}
	}

	indices := make(chan int)
	go func() {
		defer close(indices)
		for i := 0; i < n; i++ {
			select {
			case indices <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indices {
				res, err := r.sim.RunPath(ctx, masterSeed, idx)
				if err != nil {
					errOnce.Do(func() {
						firstErr = err
						cancel()
					})
					return
				}
				results[idx] = res
				frontier.clearFrom(len(res.Breakdowns))
				done := int(completed.Add(1))
				r.notify(ProgressEvent{Year: frontier.Frontier(), TotalYears: years, Completed: done, Total: n})
			}
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.notify(ProgressEvent{Year: years, TotalYears: years, Completed: n, Total: n})
	return results, nil
}
