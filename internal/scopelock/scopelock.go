// Package scopelock provides refcounted per-key mutexes. The dispatcher
// serializes command execution per (server, user) with one Locker; the
// ledger holds a second Locker for account pairs touched by transfers.
package scopelock

import "sync"

type entry struct {
	mu   sync.Mutex
	refs int
}

// Locker hands out exclusive locks keyed by string. Entries are created
// on demand and dropped once the last holder releases them, so an idle
// Locker holds no memory proportional to past keys.
type Locker struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// New creates an empty Locker.
func New() *Locker {
	return &Locker{entries: make(map[string]*entry)}
}

// Lock acquires the exclusive lock for key, blocking until available.
func (l *Locker) Lock(key string) {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
}

// Unlock releases the lock for key. Unlocking a key that is not held
// panics, same as sync.Mutex.
func (l *Locker) Unlock(key string) {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		l.mu.Unlock()
		panic("scopelock: unlock of unheld key " + key)
	}
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
	l.mu.Unlock()

	e.mu.Unlock()
}

// LockPair acquires both keys in lexicographic order so that two
// concurrent opposite-direction pair acquisitions cannot deadlock.
// Equal keys collapse to a single lock.
func (l *Locker) LockPair(a, b string) {
	if a == b {
		l.Lock(a)
		return
	}
	if b < a {
		a, b = b, a
	}
	l.Lock(a)
	l.Lock(b)
}

// UnlockPair releases both keys acquired by LockPair.
func (l *Locker) UnlockPair(a, b string) {
	if a == b {
		l.Unlock(a)
		return
	}
	if b < a {
		a, b = b, a
	}
	l.Unlock(b)
	l.Unlock(a)
}

// Size reports the number of currently tracked keys. Used by tests to
// verify entries are reclaimed.
func (l *Locker) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
