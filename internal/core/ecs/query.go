package ecs

// Each2 iterates over entities that have both component A and B.
// It walks the smaller store and looks entities up in the larger one.
func Each2[A, B any](sa *Store[A], sb *Store[B], fn func(Entity, *A, *B)) {
	if sa.Len() <= sb.Len() {
		sa.Each(func(e Entity, a *A) {
			if b, ok := sb.Get(e); ok {
				fn(e, a, b)
			}
		})
		return
	}
	sb.Each(func(e Entity, b *B) {
		if a, ok := sa.Get(e); ok {
			fn(e, a, b)
		}
	})
}
