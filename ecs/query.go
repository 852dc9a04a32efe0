package ecs

import "sort"

// intersect returns ids present in every set, iterating the smallest.
func intersect(sets ...*SparseSet) []entityID {
	if len(sets) == 0 {
		return nil
	}
	smallest := sets[0]
	for _, s := range sets {
		if s == nil {
			return nil
		}
		if s.Len() < smallest.Len() {
			smallest = s
		}
	}
	out := make([]entityID, 0, smallest.Len())
	for _, id := range smallest.Entities() {
		all := true
		for _, s := range sets {
			if !s.Has(id) {
				all = false
				break
			}
		}
		if all {
			out = append(out, id)
		}
	}
	return out
}

// inSpawnOrder sorts ids by creation order so iteration is reproducible
// regardless of sparse-set swaps.
func (w *World) inSpawnOrder(ids []entityID) []Entity {
	sort.Slice(ids, func(i, j int) bool {
		return w.entities.spawnSeq(ids[i]) < w.entities.spawnSeq(ids[j])
	})
	out := make([]Entity, 0, len(ids))
	for _, id := range ids {
		if e, ok := w.entities.handle(id); ok {
			out = append(out, e)
		}
	}
	return out
}
