// Package store — s3fifo.go
//
// s3fifoLedger wraps the bbolt ledger with an in-memory S3-FIFO eviction
// layer, bounding both the hot in-memory footprint and the on-disk store
// size across very large corpora.
//
// S3-FIFO uses two FIFO queues and a bounded ghost set: all new keys enter
// the small probationary queue S (~10% of capacity); keys accessed at
// least once are promoted to the main queue M on S-eviction; keys evicted
// cold from S are remembered in the ghost ring G (2× the S target) and
// bypass S straight into M if they return. Per-entry state is a saturating
// frequency counter (max 3), incremented on Get hits and reset on
// promotion.
//
// Items evicted from either queue are deleted from the backing store so
// on-disk size stays bounded. On restart the in-memory layer is cold;
// reads fall back to bbolt and re-warm the hot set organically.
//
// All public methods take a single mutex for in-memory state; bbolt I/O
// (which has its own locking) happens without holding it.
package store

import (
	"container/list"
	"sync"

	"github.com/sdrasco/freedact/internal/logger"
)

// s3fifoEntry holds the in-memory state for a single ledger entry.
type s3fifoEntry struct {
	value string
	freq  uint8         // saturating counter in [0, 3]
	elem  *list.Element // back-pointer into small or main
	inM   bool          // true → lives in main, false → small
}

type s3fifoLedger struct {
	mu sync.Mutex

	capacity int // small + main max entries
	sTarget  int // desired small-queue size (~10%)
	ghostCap int // maximum ghost ring cardinality

	entries map[string]*s3fifoEntry

	// FIFO queues; each element Value is a string key.
	small *list.List
	main  *list.List

	// Ghost: bounded circular buffer.
	ghostBuf   []string
	ghostSet   map[string]struct{}
	ghostHead  int
	ghostCount int

	backing Ledger
}

// newS3FIFO returns a Ledger applying S3-FIFO eviction in front of the
// given backing store. capacity values < 2 are clamped to 2.
func newS3FIFO(backing Ledger, capacity int, log *logger.Logger) Ledger {
	if capacity < 2 {
		capacity = 2
	}
	sTarget := capacity / 10
	if sTarget < 1 {
		sTarget = 1
	}
	ghostCap := 2 * sTarget
	if ghostCap < 4 {
		ghostCap = 4
	}
	log.Debugf("ledger_cache", "S3-FIFO layer capacity=%d sTarget=%d ghostCap=%d", capacity, sTarget, ghostCap)
	return &s3fifoLedger{
		capacity: capacity,
		sTarget:  sTarget,
		ghostCap: ghostCap,
		entries:  make(map[string]*s3fifoEntry, capacity),
		small:    list.New(),
		main:     list.New(),
		ghostBuf: make([]string, ghostCap),
		ghostSet: make(map[string]struct{}, ghostCap),
		backing:  backing,
	}
}

// ── Ledger ──────────────────────────────────────────────────────────────────

// Get returns the surrogate for key. A memory hit bumps the frequency
// counter; a memory miss consults the backing store and re-warms.
func (l *s3fifoLedger) Get(key string) (string, bool) {
	l.mu.Lock()
	if e, ok := l.entries[key]; ok {
		if e.freq < 3 {
			e.freq++
		}
		v := e.value
		l.mu.Unlock()
		return v, true
	}
	l.mu.Unlock()

	// Cold path: check bbolt without holding the mutex.
	value, ok := l.backing.Get(key)
	if !ok {
		return "", false
	}
	l.insert(key, value)
	return value, true
}

// Set stores key → value in memory and in the backing store.
func (l *s3fifoLedger) Set(key, value string) {
	l.insert(key, value)
	l.backing.Set(key, value)
}

// Delete removes key from memory and from the backing store.
func (l *s3fifoLedger) Delete(key string) {
	l.mu.Lock()
	l.removeFromMemory(key)
	l.mu.Unlock()
	l.backing.Delete(key)
}

// Close closes the backing store. In-memory state is discarded.
func (l *s3fifoLedger) Close() error {
	return l.backing.Close()
}

// ── Internal ────────────────────────────────────────────────────────────────

// insert performs the in-memory S3-FIFO insert/update.
func (l *s3fifoLedger) insert(key, value string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Update existing entry in-place; queue position unchanged.
	if e, ok := l.entries[key]; ok {
		e.value = value
		return
	}

	// New key: insert into main if key is in ghost, small otherwise.
	inM := l.ghostContains(key)
	var elem *list.Element
	if inM {
		elem = l.main.PushBack(key)
	} else {
		elem = l.small.PushBack(key)
	}
	l.entries[key] = &s3fifoEntry{value: value, elem: elem, inM: inM}

	for l.small.Len()+l.main.Len() > l.capacity {
		l.evictOne()
	}
}

// evictOne removes one entry, following the S3-FIFO policy.
// Must be called with l.mu held.
func (l *s3fifoLedger) evictOne() {
	if l.small.Len() > 0 {
		l.evictFromSmall()
		return
	}
	l.evictFromMain()
}

// evictFromSmall pops the oldest small-queue entry and either promotes it
// to main or evicts it fully. Must be called with l.mu held.
func (l *s3fifoLedger) evictFromSmall() {
	front := l.small.Front()
	if front == nil {
		return
	}
	key, ok := front.Value.(string)
	if !ok {
		l.small.Remove(front)
		return
	}
	l.small.Remove(front)

	e, ok := l.entries[key]
	if !ok {
		return // stale element; skip
	}

	if e.freq > 0 {
		// Promote: reset freq, move to main.
		e.freq = 0
		e.inM = true
		e.elem = l.main.PushBack(key)
		if l.main.Len() > l.capacity-l.sTarget {
			l.evictFromMain()
		}
	} else {
		// Full eviction: remember in ghost, delete from disk.
		delete(l.entries, key)
		l.ghostAdd(key)
		go l.backing.Delete(key) // async: keep the hot path unblocked
	}
}

// evictFromMain pops the oldest main-queue entry and evicts it fully.
// Must be called with l.mu held.
func (l *s3fifoLedger) evictFromMain() {
	front := l.main.Front()
	if front == nil {
		return
	}
	key, ok := front.Value.(string)
	if !ok {
		l.main.Remove(front)
		return
	}
	l.main.Remove(front)
	delete(l.entries, key)
	go l.backing.Delete(key) // async: keep the hot path unblocked
}

// removeFromMemory removes key from whichever queue it lives in.
// A no-op if the key is not resident. Must be called with l.mu held.
func (l *s3fifoLedger) removeFromMemory(key string) {
	e, ok := l.entries[key]
	if !ok {
		return
	}
	if e.inM {
		l.main.Remove(e.elem)
	} else {
		l.small.Remove(e.elem)
	}
	delete(l.entries, key)
}

// ghostContains reports whether key is in the ghost set.
// Must be called with l.mu held.
func (l *s3fifoLedger) ghostContains(key string) bool {
	_, ok := l.ghostSet[key]
	return ok
}

// ghostAdd inserts key into the bounded circular ghost buffer, evicting
// the oldest ghost when full. Must be called with l.mu held.
func (l *s3fifoLedger) ghostAdd(key string) {
	if _, exists := l.ghostSet[key]; exists {
		return
	}

	if l.ghostCount == l.ghostCap {
		oldest := l.ghostBuf[l.ghostHead]
		delete(l.ghostSet, oldest)
		l.ghostHead = (l.ghostHead + 1) % l.ghostCap
		l.ghostCount--
	}

	writeIdx := (l.ghostHead + l.ghostCount) % l.ghostCap
	l.ghostBuf[writeIdx] = key
	l.ghostSet[key] = struct{}{}
	l.ghostCount++
}
