package store

import "sync"

// keyWriter serializes writes for one store key. Saves land in a pending
// slot that a single flusher goroutine drains, so a delayed earlier save
// can never clobber a later one and bursts coalesce to the newest value.
type keyWriter struct {
	mu      sync.Mutex
	pending string
	dirty   bool
	running bool
}

func (s *Store) writer(key string) *keyWriter {
	s.writersMu.Lock()
	defer s.writersMu.Unlock()
	w, ok := s.writers[key]
	if !ok {
		w = &keyWriter{}
		s.writers[key] = w
	}
	return w
}

// enqueue queues a value for a key and makes sure a flusher is draining
// it. It never blocks on I/O.
func (s *Store) enqueue(key, value string) {
	w := s.writer(key)
	w.mu.Lock()
	w.pending = value
	w.dirty = true
	start := !w.running
	if start {
		w.running = true
		s.flushers.Add(1)
	}
	w.mu.Unlock()

	if start {
		go s.drain(key, w)
	}
}

func (s *Store) drain(key string, w *keyWriter) {
	defer s.flushers.Done()
	for {
		w.mu.Lock()
		if !w.dirty {
			w.running = false
			w.mu.Unlock()
			return
		}
		value := w.pending
		w.dirty = false
		w.mu.Unlock()

		if err := s.blobs.Set(key, value); err != nil {
			s.logger.Error("persist failed", "key", key, "error", err)
		}
	}
}
