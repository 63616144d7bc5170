package queue

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/maqibg/BaYin-sub000/domain"
)

// Rand is the random source used for shuffle picks. math/rand.Rand
// satisfies it; tests inject a deterministic implementation.
type Rand interface {
	Intn(n int) int
}

// Queue owns the ordered track-id sequence, the current position and the
// play mode. It never touches the transport; advancing is split into a
// pure next-index computation and an explicit commit so the caller can
// confirm a track is playable before the position moves.
type Queue struct {
	ids     []string
	current int
	mode    domain.PlayMode
	rng     Rand
	mux     sync.RWMutex
}

// New creates an empty queue in sequence mode.
func New() *Queue {
	return NewWithRand(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewWithRand creates an empty queue using the given random source for
// shuffle picks.
func NewWithRand(rng Rand) *Queue {
	return &Queue{
		current: -1,
		mode:    domain.ModeSequence,
		rng:     rng,
	}
}

// SetQueue replaces the sequence. If startID is non-empty and present the
// current position points at its first occurrence, otherwise at the head,
// or -1 when the new sequence is empty.
func (q *Queue) SetQueue(trackIDs []string, startID string) {
	q.mux.Lock()
	defer q.mux.Unlock()

	q.ids = append([]string(nil), trackIDs...)
	q.current = -1
	if len(q.ids) == 0 {
		return
	}
	q.current = 0
	if startID == "" {
		return
	}
	for i, id := range q.ids {
		if id == startID {
			q.current = i
			return
		}
	}
}

// Append adds track ids to the end of the sequence. Appending to an empty
// queue anchors the current position to the head.
func (q *Queue) Append(trackIDs ...string) {
	q.mux.Lock()
	defer q.mux.Unlock()

	wasEmpty := len(q.ids) == 0
	q.ids = append(q.ids, trackIDs...)
	if wasEmpty && len(q.ids) > 0 {
		q.current = 0
	}
}

// Len returns the number of entries (thread-safe).
func (q *Queue) Len() int {
	q.mux.RLock()
	defer q.mux.RUnlock()
	return len(q.ids)
}

// Snapshot returns a copy of the sequence (thread-safe).
func (q *Queue) Snapshot() []string {
	q.mux.RLock()
	defer q.mux.RUnlock()
	return append([]string(nil), q.ids...)
}

// CurrentIndex returns the current position, -1 when unset.
func (q *Queue) CurrentIndex() int {
	q.mux.RLock()
	defer q.mux.RUnlock()
	return q.current
}

// CurrentID returns the track id at the current position.
func (q *Queue) CurrentID() (string, bool) {
	q.mux.RLock()
	defer q.mux.RUnlock()
	if q.current < 0 || q.current >= len(q.ids) {
		return "", false
	}
	return q.ids[q.current], true
}

// IDAt returns the track id at an arbitrary position.
func (q *Queue) IDAt(index int) (string, bool) {
	q.mux.RLock()
	defer q.mux.RUnlock()
	if index < 0 || index >= len(q.ids) {
		return "", false
	}
	return q.ids[index], true
}

// SetCurrentIndex commits a new current position. Out-of-range positions
// are rejected so a stale caller cannot corrupt the queue.
func (q *Queue) SetCurrentIndex(index int) error {
	q.mux.Lock()
	defer q.mux.Unlock()
	if index < 0 || index >= len(q.ids) {
		return fmt.Errorf("queue index %d out of range [0,%d)", index, len(q.ids))
	}
	q.current = index
	return nil
}

// Mode returns the active play mode.
func (q *Queue) Mode() domain.PlayMode {
	q.mux.RLock()
	defer q.mux.RUnlock()
	return q.mode
}

// SetMode switches the play mode. The current position is unaffected.
func (q *Queue) SetMode(mode domain.PlayMode) {
	q.mux.Lock()
	defer q.mux.Unlock()
	q.mode = mode
}

// NextIndex computes where advance would land without moving the current
// position. Single-entry and empty queues stay put, repeat-one stays put,
// shuffle draws until it lands on a different position, sequence wraps.
func (q *Queue) NextIndex() int {
	q.mux.RLock()
	defer q.mux.RUnlock()
	return nextIndex(len(q.ids), q.current, q.mode, q.rng)
}

// PrevIndex computes where retreat would land without moving the current
// position. Previous is always one step back with wraparound, in every
// play mode.
func (q *Queue) PrevIndex() int {
	q.mux.RLock()
	defer q.mux.RUnlock()
	return prevIndex(len(q.ids), q.current)
}

func nextIndex(length, current int, mode domain.PlayMode, rng Rand) int {
	if length <= 1 {
		return current
	}
	switch mode {
	case domain.ModeRepeatOne:
		return current
	case domain.ModeShuffle:
		for {
			candidate := rng.Intn(length)
			if candidate != current {
				return candidate
			}
		}
	default:
		return (current + 1) % length
	}
}

func prevIndex(length, current int) int {
	if length <= 1 {
		return current
	}
	return (current - 1 + length) % length
}

// Remove drops every occurrence of a track id. It reports whether the
// entry at the current position was removed; the caller decides whether
// to start the new head or stop playback. When the current entry is
// removed the position falls back to the head, or -1 if nothing remains.
func (q *Queue) Remove(trackID string) (removedCurrent bool) {
	q.mux.Lock()
	defer q.mux.Unlock()

	kept := make([]string, 0, len(q.ids))
	newCurrent := -1
	for i, id := range q.ids {
		if id == trackID {
			if i == q.current {
				removedCurrent = true
			}
			continue
		}
		if i == q.current {
			newCurrent = len(kept)
		}
		kept = append(kept, id)
	}
	q.ids = kept

	switch {
	case newCurrent >= 0:
		q.current = newCurrent
	case len(q.ids) > 0:
		q.current = 0
	default:
		q.current = -1
	}
	return removedCurrent
}

// Reconcile filters the sequence to ids present in the live catalog
// snapshot, preserving relative order. The current entry stays current
// when it survives; otherwise the position falls back to the first
// surviving occurrence of its id, then to the head, then to -1. It
// reports whether the current track id changed.
func (q *Queue) Reconcile(liveIDs map[string]bool) (currentChanged bool) {
	q.mux.Lock()
	defer q.mux.Unlock()

	prevID := ""
	if q.current >= 0 && q.current < len(q.ids) {
		prevID = q.ids[q.current]
	}

	kept := make([]string, 0, len(q.ids))
	newCurrent := -1
	for i, id := range q.ids {
		if !liveIDs[id] {
			continue
		}
		if i == q.current {
			newCurrent = len(kept)
		}
		kept = append(kept, id)
	}
	q.ids = kept

	if newCurrent < 0 && prevID != "" {
		for i, id := range q.ids {
			if id == prevID {
				newCurrent = i
				break
			}
		}
	}

	switch {
	case newCurrent >= 0:
		q.current = newCurrent
	case len(q.ids) > 0:
		q.current = 0
	default:
		q.current = -1
	}

	newID := ""
	if q.current >= 0 {
		newID = q.ids[q.current]
	}
	return newID != prevID
}
