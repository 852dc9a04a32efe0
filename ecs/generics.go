package ecs

import "github.com/milk9111/npcsense/ecs/component"

// Add attaches value to e, replacing any previous component of that kind.
func Add[T any](w *World, e Entity, kind component.ComponentKind[T], value *T) error {
	if !kind.Valid() {
		return component.ErrInvalidComponentKind
	}
	if value == nil {
		return component.ErrNilComponent
	}
	if !IsAlive(w, e) {
		return component.ErrEntityNotAlive
	}
	w.store(kind.ID(), true).Set(e.ID(), value)
	return nil
}

func Remove[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	if !IsAlive(w, e) {
		return false
	}
	return w.store(kind.ID(), false).Remove(e.ID())
}

func Has[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	if !IsAlive(w, e) {
		return false
	}
	return w.store(kind.ID(), false).Has(e.ID())
}

// Get returns the stored pointer, so callers may mutate in place.
func Get[T any](w *World, e Entity, kind component.ComponentKind[T]) (*T, bool) {
	if !IsAlive(w, e) {
		return nil, false
	}
	v, ok := w.store(kind.ID(), false).Get(e.ID()).(*T)
	return v, ok
}

// Query lists live entities holding kind, in spawn order.
func Query[T any](w *World, kind component.ComponentKind[T]) []Entity {
	s := w.store(kind.ID(), false)
	if s == nil {
		return nil
	}
	return w.inSpawnOrder(intersect(s))
}

// ForEach visits entities holding kind in spawn order.
func ForEach[T any](w *World, kind component.ComponentKind[T], fn func(Entity, *T)) {
	for _, e := range Query(w, kind) {
		if a, ok := Get(w, e, kind); ok {
			fn(e, a)
		}
	}
}

// ForEach2 visits entities holding both kinds in spawn order.
func ForEach2[A, B any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], fn func(Entity, *A, *B)) {
	ids := intersect(w.store(ka.ID(), false), w.store(kb.ID(), false))
	for _, e := range w.inSpawnOrder(ids) {
		a, okA := Get(w, e, ka)
		b, okB := Get(w, e, kb)
		if okA && okB {
			fn(e, a, b)
		}
	}
}

// ForEach3 visits entities holding all three kinds in spawn order.
func ForEach3[A, B, C any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], kc component.ComponentKind[C], fn func(Entity, *A, *B, *C)) {
	ids := intersect(w.store(ka.ID(), false), w.store(kb.ID(), false), w.store(kc.ID(), false))
	for _, e := range w.inSpawnOrder(ids) {
		a, okA := Get(w, e, ka)
		b, okB := Get(w, e, kb)
		c, okC := Get(w, e, kc)
		if okA && okB && okC {
			fn(e, a, b, c)
		}
	}
}
