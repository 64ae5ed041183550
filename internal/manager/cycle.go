package manager

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// CycleIDGenerator names reload cycles. Report.CycleID is unique per Apply
// and the store keys recorded reloads on it.
type CycleIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 cycle ids, so recorded
// reloads order by creation time. It is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// SequenceGenerator returns prefix-1, prefix-2, ... in order. Scenario runs
// use it so reports are reproducible.
type SequenceGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceGenerator returns a generator starting at prefix-1.
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	return &SequenceGenerator{prefix: prefix}
}

// Generate returns the next id.
func (g *SequenceGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}

// FixedGenerator returns predetermined ids for tests. It panics once every
// id has been used.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator returns a generator that yields ids in order.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next predetermined id.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all cycle ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}

// WithCycleIDs sets the cycle id generator. The default is UUIDv7Generator.
func WithCycleIDs(gen CycleIDGenerator) Option {
	return func(m *Manager) {
		m.ids = gen
	}
}

// WithClock sets the time source for Report.AppliedAt. The default is
// time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}
