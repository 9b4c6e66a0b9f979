package breakout

import "sync"

// keyedMutex serializes work per meeting. Entries are never removed; a
// removed mutex could still be held by a caller that loaded it earlier.
type keyedMutex struct {
	locks sync.Map // map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	l, _ := k.locks.LoadOrStore(key, &sync.Mutex{})
	mu := l.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
