package models

// Cursor walks a generated list one item at a time and records the user's
// answer for each position. It is owned by the client; the services keep no
// session state.
type Cursor[T any] struct {
	Items   []T      `json:"items"`
	Index   int      `json:"current_index"`
	Answers []string `json:"answers"`
}

func NewCursor[T any](items []T) *Cursor[T] {
	return &Cursor[T]{
		Items:   items,
		Answers: make([]string, len(items)),
	}
}

// Current returns the item under the cursor, or false once every item has
// been visited.
func (c *Cursor[T]) Current() (T, bool) {
	var zero T
	if c.Done() {
		return zero, false
	}
	return c.Items[c.Index], true
}

// Answer stores text for the current item. It is a no-op when Done.
func (c *Cursor[T]) Answer(text string) {
	if c.Done() {
		return
	}
	c.Answers[c.Index] = text
}

// Next advances the cursor and reports whether an item remains.
func (c *Cursor[T]) Next() bool {
	if c.Index < len(c.Items) {
		c.Index++
	}
	return !c.Done()
}

func (c *Cursor[T]) Done() bool {
	return c.Index >= len(c.Items)
}

// Position is the 1-based position of the current item, for display.
func (c *Cursor[T]) Position() int {
	return c.Index + 1
}
