package faction

import (
	"sort"
	"sync"
)

// Resolver answers friend/foe questions. Table is the only implementation;
// perception code depends on this interface so tests can stub it.
type Resolver interface {
	Relation(a, b ID) Relation
}

// Entry is one unordered pair in the table.
type Entry struct {
	A        ID       `yaml:"a"`
	B        ID       `yaml:"b"`
	Relation Relation `yaml:"relation"`
}

type pair struct {
	lo, hi ID
}

func makePair(a, b ID) pair {
	if b < a {
		a, b = b, a
	}
	return pair{lo: a, hi: b}
}

type write struct {
	replace bool
	entry   Entry
	entries []Entry
}

// Table is the shared faction relation table. Reads are symmetric and
// missing pairs are Neutral. While frozen, writes queue up and land on Thaw,
// so a tick never observes a half-applied change.
type Table struct {
	mu      sync.RWMutex
	entries map[pair]Relation
	frozen  bool
	pending []write
}

// NewTable builds a table from entries. Later duplicates win.
func NewTable(entries ...Entry) *Table {
	t := &Table{entries: make(map[pair]Relation, len(entries))}
	for _, e := range entries {
		t.apply(e)
	}
	return t
}

// Relation returns Friend for a == b regardless of table contents.
func (t *Table) Relation(a, b ID) Relation {
	if a == b {
		return Friend
	}
	if t == nil {
		return Neutral
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	r, ok := t.entries[makePair(a, b)]
	if !ok {
		return Neutral
	}
	return r
}

// SetRelation records r for the unordered pair {a, b}. Setting a faction's
// relation to itself is ignored.
func (t *Table) SetRelation(a, b ID, r Relation) {
	if t == nil || a == b {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	e := Entry{A: a, B: b, Relation: r}
	if t.frozen {
		t.pending = append(t.pending, write{entry: e})
		return
	}
	t.apply(e)
}

// Replace swaps the whole table, used by hot reload.
func (t *Table) Replace(entries []Entry) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	copied := append([]Entry(nil), entries...)
	if t.frozen {
		t.pending = append(t.pending, write{replace: true, entries: copied})
		return
	}
	t.replace(copied)
}

// Freeze starts a tick: writes from now until Thaw are deferred.
func (t *Table) Freeze() {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.frozen = true
	t.mu.Unlock()
}

// Thaw ends a tick and applies deferred writes in request order. It returns
// the number of writes applied.
func (t *Table) Thaw() int {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frozen = false
	n := len(t.pending)
	for _, w := range t.pending {
		if w.replace {
			t.replace(w.entries)
			continue
		}
		t.apply(w.entry)
	}
	t.pending = nil
	return n
}

// Pending reports how many writes are waiting for Thaw.
func (t *Table) Pending() int {
	if t == nil {
		return 0
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.pending)
}

// Entries returns the non-neutral pairs sorted by (A, B) with A < B.
func (t *Table) Entries() []Entry {
	if t == nil {
		return nil
	}
	t.mu.RLock()
	out := make([]Entry, 0, len(t.entries))
	for p, r := range t.entries {
		out = append(out, Entry{A: p.lo, B: p.hi, Relation: r})
	}
	t.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}

func (t *Table) apply(e Entry) {
	if e.A == e.B {
		return
	}
	if t.entries == nil {
		t.entries = make(map[pair]Relation)
	}
	p := makePair(e.A, e.B)
	if e.Relation == Neutral {
		delete(t.entries, p)
		return
	}
	t.entries[p] = e.Relation
}

func (t *Table) replace(entries []Entry) {
	t.entries = make(map[pair]Relation, len(entries))
	for _, e := range entries {
		t.apply(e)
	}
}
