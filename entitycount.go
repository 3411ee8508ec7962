package wdmigrate

import (
	"fmt"
	"io"
)

// CountStore accumulates per-entity occurrence counts. The in-memory map
// implementation below is the default; the leveldb sub-package provides a
// disk-backed one for entity sets that outgrow RAM.
type CountStore interface {
	Incr(entity string) error
	// Each visits every (entity, count) pair in unspecified order.
	Each(fn func(entity string, count uint64) error) error
	Close() error
}

// MapCountStore is the in-memory CountStore.
type MapCountStore map[string]uint64

// Incr implements CountStore.
func (m MapCountStore) Incr(entity string) error {
	m[entity]++
	return nil
}

// Each implements CountStore.
func (m MapCountStore) Each(fn func(entity string, count uint64) error) error {
	for entity, count := range m {
		if err := fn(entity, count); err != nil {
			return err
		}
	}
	return nil
}

// Close implements CountStore.
func (m MapCountStore) Close() error { return nil }

// edgeCountTargets are the degree thresholds the summary buckets by.
var edgeCountTargets = []uint64{1, 2, 3, 4, 5, 10, 100, 1000}

// EntityCount tracks how often each entity occurs: once per parsed row for
// the row's subject entity, and once more for the target entity of a
// parsed entity-id value. Only meaningful on streams whose schema binds
// entity_id, i.e. claims.
type EntityCount struct {
	SkipMeta

	out   io.Writer
	store CountStore
}

// NewEntityCount returns an EntityCount over store, writing its summary to
// out. A nil store gets a fresh MapCountStore.
func NewEntityCount(out io.Writer, store CountStore) *EntityCount {
	if store == nil {
		store = MapCountStore{}
	}
	return &EntityCount{out: out, store: store}
}

// Handle implements Handler; NoValue and Invalid deliveries are skipped.
func (e *EntityCount) Handle(cols *Columns, v Value) error {
	if IsMeta(v) {
		return e.SkipMeta.Handle(cols, v)
	}
	if err := e.store.Incr(cols.EntityID); err != nil {
		return err
	}
	if entity, ok := v.(EntityID); ok {
		if err := e.store.Incr(entity.Value); err != nil {
			return err
		}
	}
	return nil
}

// Summary implements Handler, reporting the distinct entity count and how
// many entities fall at or under each degree threshold, then closing the
// store.
func (e *EntityCount) Summary() error {
	var entities uint64
	buckets := make([]uint64, len(edgeCountTargets))
	err := e.store.Each(func(entity string, count uint64) error {
		entities++
		for i, limit := range edgeCountTargets {
			if count <= limit {
				buckets[i]++
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "# entities: %d\n", entities)
	for i, limit := range edgeCountTargets {
		fmt.Fprintf(e.out, "  edge_count(%d): %d\n", limit, buckets[i])
	}
	return e.store.Close()
}
