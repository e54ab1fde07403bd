package keylock

import "sync"

// KeyLock serializes operations per key without sharing a lock between
// unrelated keys. Entries are released once no goroutine holds or waits
// on them.
type KeyLock struct {
	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func New() *KeyLock {
	return &KeyLock{entries: make(map[string]*entry)}
}

func (kl *KeyLock) Lock(key string) {
	kl.mu.Lock()
	e, ok := kl.entries[key]
	if !ok {
		e = &entry{}
		kl.entries[key] = e
	}
	e.refs++
	kl.mu.Unlock()

	e.mu.Lock()
}

func (kl *KeyLock) Unlock(key string) {
	kl.mu.Lock()
	e, ok := kl.entries[key]
	if !ok {
		kl.mu.Unlock()
		panic("keylock: unlock of unheld key " + key)
	}
	e.refs--
	if e.refs == 0 {
		delete(kl.entries, key)
	}
	kl.mu.Unlock()

	e.mu.Unlock()
}
