package service

import "sync"

// jobLocks hands out one mutex per job name. Entries are dropped when unused.
type jobLocks struct {
	mu    sync.Mutex
	locks map[string]*jobLock
}

type jobLock struct {
	mu   sync.Mutex
	refs int
}

func newJobLocks() *jobLocks {
	return &jobLocks{locks: make(map[string]*jobLock)}
}

// Lock blocks until job is exclusively held and returns its release func.
func (l *jobLocks) Lock(job string) func() {
	l.mu.Lock()
	jl, ok := l.locks[job]
	if !ok {
		jl = &jobLock{}
		l.locks[job] = jl
	}
	jl.refs++
	l.mu.Unlock()

	jl.mu.Lock()
	return func() {
		jl.mu.Unlock()
		l.mu.Lock()
		jl.refs--
		if jl.refs == 0 {
			delete(l.locks, job)
		}
		l.mu.Unlock()
	}
}

func (l *jobLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
