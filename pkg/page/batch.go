package page

// KeySet partitions a deduplicated key list into fixed-size batches
// behind an explicit index cursor. Duplicate keys are dropped up
// front, keeping the first occurrence's position.
type KeySet struct {
	name string
	keys []string
	size int
	pos  int
}

// NewKeySet creates a key set named after the query parameter it
// feeds (e.g. "id", "login"). size <= 0 selects DefaultPageSize.
func NewKeySet(name string, keys []string, size int) *KeySet {
	if size <= 0 {
		size = DefaultPageSize
	}
	seen := make(map[string]struct{}, len(keys))
	deduped := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		deduped = append(deduped, k)
	}
	return &KeySet{name: name, keys: deduped, size: size}
}

// Name returns the query parameter name this set feeds.
func (s *KeySet) Name() string {
	return s.name
}

// Len returns the number of unique keys.
func (s *KeySet) Len() int {
	return len(s.keys)
}

// Exhausted reports whether all batches have been consumed.
func (s *KeySet) Exhausted() bool {
	return s.pos >= len(s.keys)
}

// NextBatch advances the cursor and returns the next batch, or nil
// when the set is exhausted. override > 0 replaces the batch size for
// this round only.
func (s *KeySet) NextBatch(override int) []string {
	if s.Exhausted() {
		return nil
	}
	n := s.size
	if override > 0 {
		n = override
	}
	end := s.pos + n
	if end > len(s.keys) {
		end = len(s.keys)
	}
	batch := s.keys[s.pos:end]
	s.pos = end
	return batch
}

// mark returns the current cursor position for later rewind.
func (s *KeySet) mark() int {
	return s.pos
}

// rewind restores a position captured by mark. Used to undo batch
// consumption when a fetch fails, so the caller can retry.
func (s *KeySet) rewind(pos int) {
	s.pos = pos
}
