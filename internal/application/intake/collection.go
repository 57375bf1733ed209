package intake

// Editable is a sub-record whose fields can be set by name.
type Editable interface {
	Set(field, value string)
}

// Collection is an ordered list of sub-record drafts. Out-of-range indexes
// are ignored by every mutating operation.
type Collection[T any, P interface {
	*T
	Editable
}] struct {
	items []T
}

// NewCollection seeds a collection with existing rows.
func NewCollection[T any, P interface {
	*T
	Editable
}](items ...T) *Collection[T, P] {
	c := &Collection[T, P]{}
	c.items = append(c.items, items...)
	return c
}

// Append adds a blank record at the end.
func (c *Collection[T, P]) Append() {
	var blank T
	c.items = append(c.items, blank)
}

// Update sets one field of the record at index.
func (c *Collection[T, P]) Update(index int, field, value string) {
	if index < 0 || index >= len(c.items) {
		return
	}
	P(&c.items[index]).Set(field, value)
}

// Remove deletes the record at index, shifting later records down.
func (c *Collection[T, P]) Remove(index int) {
	if index < 0 || index >= len(c.items) {
		return
	}
	c.items = append(c.items[:index], c.items[index+1:]...)
}

// Items returns a copy of the records.
func (c *Collection[T, P]) Items() []T {
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Collection[T, P]) Len() int {
	return len(c.items)
}
