// Package highscore keeps the best finish times across races.
package highscore

import (
	"log"
	"math"
	"sort"
	"sync"

	"sprintrace/pkg/caster"
)

const (
	MaxEntries = 8
	// StorageKey names the blob the ledger reads and writes.
	StorageKey = "sprintrace_highscores_v1"
)

// Store persists opaque blobs by key. Load returns an empty blob when nothing is stored.
type Store interface {
	Load(key string) (string, error)
	Save(key, blob string) error
}

type Ledger struct {
	mu    sync.Mutex
	store Store
	codec caster.Caster[[]any]
}

func NewLedger(store Store) *Ledger {
	return &Ledger{
		store: store,
		codec: caster.JSON[[]any]{},
	}
}

// List returns the stored times, ascending. Missing or corrupt data reads as no times.
func (l *Ledger) List() []float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.load()
}

// Best returns the fastest stored time.
func (l *Ledger) Best() (float64, bool) {
	scores := l.List()
	if len(scores) == 0 {
		return 0, false
	}
	return scores[0], true
}

// Record adds a finish time and returns the updated list. Times that are not positive
// and finite are ignored.
func (l *Ledger) Record(seconds float64) []float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	scores := l.load()
	if !valid(seconds) {
		log.Printf("highscore: ignoring invalid time %v\n", seconds)
		return scores
	}
	scores = append(scores, seconds)
	sort.Float64s(scores)
	if len(scores) > MaxEntries {
		scores = scores[:MaxEntries]
	}

	values := make([]any, len(scores))
	for i, s := range scores {
		values[i] = s
	}
	blob, err := l.codec.To(values)
	if err != nil {
		log.Printf("highscore: error encoding scores: %s\n", err)
		return scores
	}
	if err := l.store.Save(StorageKey, blob); err != nil {
		log.Printf("highscore: error saving scores: %s\n", err)
	}
	return scores
}

func (l *Ledger) load() []float64 {
	scores := []float64{}

	blob, err := l.store.Load(StorageKey)
	if err != nil {
		log.Printf("highscore: error loading scores: %s\n", err)
		return scores
	}
	if blob == "" {
		return scores
	}
	values, err := l.codec.From(blob)
	if err != nil {
		log.Printf("highscore: discarding unreadable scores: %s\n", err)
		return scores
	}
	for _, v := range values {
		if f, ok := v.(float64); ok && valid(f) {
			scores = append(scores, f)
		}
	}
	sort.Float64s(scores)
	if len(scores) > MaxEntries {
		scores = scores[:MaxEntries]
	}
	return scores
}

func valid(seconds float64) bool {
	return seconds > 0 && !math.IsInf(seconds, 0) && !math.IsNaN(seconds)
}

// MemoryStore keeps blobs in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	blobs map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		blobs: make(map[string]string),
	}
}

func (m *MemoryStore) Load(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.blobs[key], nil
}

func (m *MemoryStore) Save(key, blob string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = blob
	return nil
}
