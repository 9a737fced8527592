// Package scheduler fans file search out over a worker pool. Each
// worker owns one searcher and one matcher for its lifetime, reused
// across every file it processes; results carry sequence numbers so the
// writer can restore deterministic order.
package scheduler

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/dl/linegrep/internal/input"
	"github.com/dl/linegrep/internal/matcher"
	"github.com/dl/linegrep/internal/output"
	"github.com/dl/linegrep/internal/searcher"
	"github.com/dl/linegrep/internal/walker"
)

// SearcherFactory builds one searcher per worker. A searcher owns its
// buffers exclusively, so sharing one across workers is not allowed.
type SearcherFactory func() (*searcher.Searcher, error)

// MatcherFactory builds one matcher per worker. Matcher implementations
// are not required to be safe for concurrent use.
type MatcherFactory func() (matcher.Matcher, error)

// Scheduler manages the worker pool.
type Scheduler struct {
	workers     int
	newSearcher SearcherFactory
	newMatcher  MatcherFactory
	opener      input.Opener
	skipBinary  bool
}

// New creates a Scheduler. workers <= 0 defaults to twice NumCPU, the
// sweet spot for mixed I/O and matching work. skipBinary drops files
// whose head looks binary before searching them.
func New(workers int, sf SearcherFactory, mf MatcherFactory, o input.Opener, skipBinary bool) *Scheduler {
	if workers <= 0 {
		workers = runtime.NumCPU() * 2
	}
	return &Scheduler{
		workers:     workers,
		newSearcher: sf,
		newMatcher:  mf,
		opener:      o,
		skipBinary:  skipBinary,
	}
}

// Run consumes file entries and produces one result per file. The
// result channel closes when all workers have drained the input.
func (s *Scheduler) Run(files <-chan walker.FileEntry) <-chan *output.Result {
	resultCh := make(chan *output.Result, s.workers*2)
	var seq atomic.Int64

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			srch, err := s.newSearcher()
			if err != nil {
				drainWithError(files, &seq, resultCh, err)
				return
			}
			m, err := s.newMatcher()
			if err != nil {
				drainWithError(files, &seq, resultCh, err)
				return
			}
			for entry := range files {
				seqNum := int(seq.Add(1))
				resultCh <- s.processFile(srch, m, entry, seqNum)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	return resultCh
}

func (s *Scheduler) processFile(srch *searcher.Searcher, m matcher.Matcher, entry walker.FileEntry, seq int) *output.Result {
	collector := output.NewCollector(entry.Path, seq, m)
	result := collector.Result()

	region, err := s.opener.Open(entry.Path)
	if err != nil {
		result.Err = err
		return result
	}
	defer region.Close()

	if region.Data == nil {
		return result
	}
	if s.skipBinary && walker.IsBinary(region.Data) {
		return result
	}
	if err := srch.SearchSlice(m, region.Data, collector); err != nil {
		result.Err = err
	}
	return result
}

// drainWithError keeps sequence numbers dense when a worker cannot
// start: every entry it would have handled still produces a result.
func drainWithError(files <-chan walker.FileEntry, seq *atomic.Int64, resultCh chan<- *output.Result, err error) {
	for entry := range files {
		resultCh <- &output.Result{Path: entry.Path, Seq: int(seq.Add(1)), Err: err}
	}
}
