// Package store holds the session-merged record set: an immutable base
// layer parsed from the source workbook plus a session override layer of
// runtime-added records. Nothing here touches disk; the override layer
// lives and dies with the process.
package store

import (
	"sort"
	"strings"
	"sync"

	"khata/internal/core"
)

// Store merges a fixed base layer with replace-by-key overrides. One store
// serves one session; concurrent sessions each get their own instance.
type Store struct {
	mu        sync.Mutex
	base      []core.CategoryRecord
	overrides map[core.RecordKey]core.CategoryRecord
}

// New builds a store over the given base layer. Base records sharing a
// merge key are deduplicated up front, last one winning, so the layer has
// at most one record per (month, category, kind) from the start.
func New(base []core.CategoryRecord) *Store {
	idx := make(map[core.RecordKey]int, len(base))
	deduped := make([]core.CategoryRecord, 0, len(base))
	for _, r := range base {
		k := r.Key()
		if i, ok := idx[k]; ok {
			deduped[i] = r
			continue
		}
		idx[k] = len(deduped)
		deduped = append(deduped, r)
	}
	return &Store{
		base:      deduped,
		overrides: make(map[core.RecordKey]core.CategoryRecord),
	}
}

// AddOrReplace merges records into the override layer. A record with the
// same key as an existing one replaces it; adding the same record twice is
// the same as adding it once. The base layer is never touched.
func (s *Store) AddOrReplace(recs ...core.CategoryRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range recs {
		s.overrides[r.Key()] = r
	}
}

// Combined returns the merged view: base records overlaid with overrides,
// deduplicated by key, in a canonical (month, category, kind) order. The
// result is recomputed on every call and owned by the caller.
func (s *Store) Combined() []core.CategoryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := make(map[core.RecordKey]core.CategoryRecord, len(s.base)+len(s.overrides))
	for _, r := range s.base {
		merged[r.Key()] = r
	}
	for k, r := range s.overrides {
		merged[k] = r
	}

	out := make([]core.CategoryRecord, 0, len(merged))
	for _, r := range merged {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Month != b.Month {
			return a.Month.Before(b.Month)
		}
		if c := strings.Compare(strings.ToLower(a.Category), strings.ToLower(b.Category)); c != 0 {
			return c < 0
		}
		return a.Kind < b.Kind
	})
	return out
}

// Base returns a copy of the immutable base layer.
func (s *Store) Base() []core.CategoryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.CategoryRecord(nil), s.base...)
}

// OverrideCount reports how many keys the session has added or replaced.
func (s *Store) OverrideCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.overrides)
}
