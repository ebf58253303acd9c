package components

// List is a scrollable cursor list whose rows can be marked for a
// multi-select.
type List struct {
	Items    []string
	Cursor   int
	Offset   int
	PageSize int

	marked map[int]bool
}

// NewList creates a list with the given page size.
func NewList(pageSize int) *List {
	return &List{PageSize: pageSize}
}

// SetItems replaces items and resets the cursor and marks.
func (l *List) SetItems(items []string) {
	l.Items = items
	l.Cursor = 0
	l.Offset = 0
	l.marked = nil
}

// Down moves the cursor down.
func (l *List) Down() {
	if l.Cursor < len(l.Items)-1 {
		l.Cursor++
		if l.Cursor >= l.Offset+l.PageSize {
			l.Offset++
		}
	}
}

// Up moves the cursor up.
func (l *List) Up() {
	if l.Cursor > 0 {
		l.Cursor--
		if l.Cursor < l.Offset {
			l.Offset--
		}
	}
}

// Visible returns the items on the current page.
func (l *List) Visible() []string {
	if len(l.Items) == 0 {
		return nil
	}
	end := l.Offset + l.PageSize
	if end > len(l.Items) {
		end = len(l.Items)
	}
	return l.Items[l.Offset:end]
}

// Selected returns the cursor index.
func (l *List) Selected() int {
	return l.Cursor
}

// IsSelected reports whether absIdx is under the cursor.
func (l *List) IsSelected(absIdx int) bool {
	return absIdx == l.Cursor
}

// RelToAbs converts a visible index to an absolute one.
func (l *List) RelToAbs(relIdx int) int {
	return l.Offset + relIdx
}

// Toggle flips the mark on absIdx.
func (l *List) Toggle(absIdx int) {
	if absIdx < 0 || absIdx >= len(l.Items) {
		return
	}
	if l.marked == nil {
		l.marked = map[int]bool{}
	}
	if l.marked[absIdx] {
		delete(l.marked, absIdx)
		return
	}
	l.marked[absIdx] = true
}

// Mark sets the mark on absIdx.
func (l *List) Mark(absIdx int) {
	if absIdx < 0 || absIdx >= len(l.Items) {
		return
	}
	if l.marked == nil {
		l.marked = map[int]bool{}
	}
	l.marked[absIdx] = true
}

// IsMarked reports whether absIdx is marked.
func (l *List) IsMarked(absIdx int) bool {
	return l.marked[absIdx]
}

// Marked returns the marked indexes in ascending order.
func (l *List) Marked() []int {
	out := make([]int, 0, len(l.marked))
	for i := range l.Items {
		if l.marked[i] {
			out = append(out, i)
		}
	}
	return out
}

// ClearMarks unmarks every row.
func (l *List) ClearMarks() {
	l.marked = nil
}
