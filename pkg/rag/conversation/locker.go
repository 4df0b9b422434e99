package conversation

import (
	"context"
	"sync"
)

// Locker serialises turns within one session. Different sessions never block each other.
type Locker interface {
	Lock(ctx context.Context, sessionID string) (unlock func(), err error)
}

// LocalLocker is an in-process Locker. Entries are dropped once nobody holds
// or waits on them, so the map stays bounded by in-flight sessions.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	sem  chan struct{}
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*lockEntry)}
}

func (l *LocalLocker) Lock(ctx context.Context, sessionID string) (func(), error) {
	l.mu.Lock()
	e, ok := l.locks[sessionID]
	if !ok {
		e = &lockEntry{sem: make(chan struct{}, 1)}
		l.locks[sessionID] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(sessionID, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			l.release(sessionID, e)
		})
	}, nil
}

func (l *LocalLocker) release(sessionID string, e *lockEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.locks, sessionID)
	}
}
