package session

// dedupeRing remembers the most recent action ids so re-sent actions from an
// at-least-once channel are applied exactly once. Bounded: old ids fall out,
// which is fine because a guest only ever retries its latest action.
type dedupeRing struct {
	ids   []string
	index map[string]struct{}
	next  int
}

func newDedupeRing(size int) *dedupeRing {
	return &dedupeRing{
		ids:   make([]string, size),
		index: make(map[string]struct{}, size),
	}
}

func (that *dedupeRing) Seen(id string) bool {
	_, ok := that.index[id]
	return ok
}

func (that *dedupeRing) Add(id string) {
	if that.Seen(id) {
		return
	}

	if old := that.ids[that.next]; old != "" {
		delete(that.index, old)
	}

	that.ids[that.next] = id
	that.index[id] = struct{}{}
	that.next = (that.next + 1) % len(that.ids)
}
