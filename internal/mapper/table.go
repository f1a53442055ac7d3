package mapper

// Table is a name-keyed collection that remembers insertion order.
type Table[T any] struct {
	keys  []string
	items map[string]T
}

// NewTable creates an empty table.
func NewTable[T any]() *Table[T] {
	return &Table[T]{items: make(map[string]T)}
}

// Add inserts value under key. It reports false and leaves the table
// untouched when key is already present.
func (t *Table[T]) Add(key string, value T) bool {
	if _, ok := t.items[key]; ok {
		return false
	}
	t.keys = append(t.keys, key)
	t.items[key] = value
	return true
}

// Get returns the value stored under key.
func (t *Table[T]) Get(key string) (T, bool) {
	v, ok := t.items[key]
	return v, ok
}

// Has reports whether key is present.
func (t *Table[T]) Has(key string) bool {
	_, ok := t.items[key]
	return ok
}

// Keys returns the keys in insertion order.
func (t *Table[T]) Keys() []string {
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

// Values returns the values in insertion order.
func (t *Table[T]) Values() []T {
	out := make([]T, 0, len(t.keys))
	for _, k := range t.keys {
		out = append(out, t.items[k])
	}
	return out
}

// Len returns the number of entries.
func (t *Table[T]) Len() int {
	return len(t.keys)
}
