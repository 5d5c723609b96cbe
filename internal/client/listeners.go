package client

import (
	"sync"

	"quickDeliver/internal/storefront"
)

type sessionListeners struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(*storefront.Session)
}

func (l *sessionListeners) add(fn func(*storefront.Session)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = make(map[int]func(*storefront.Session))
	}
	id := l.next
	l.next++
	l.fns[id] = fn
	return func() {
		l.mu.Lock()
		delete(l.fns, id)
		l.mu.Unlock()
	}
}

func (l *sessionListeners) emit(s *storefront.Session) {
	l.mu.Lock()
	fns := make([]func(*storefront.Session), 0, len(l.fns))
	for _, fn := range l.fns {
		fns = append(fns, fn)
	}
	l.mu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}
