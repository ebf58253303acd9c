package components

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func zoneEntries() []string {
	return []string{"orders.json", "people.json", "raw/", "events.json", "readme.txt"}
}

func TestListNewList(t *testing.T) {
	list := NewList(10)
	assert.Equal(t, 10, list.PageSize)
	assert.Equal(t, 0, list.Cursor)
	assert.Nil(t, list.Items)
	assert.Empty(t, list.Marked())
}

func TestListDownScrollsPastPage(t *testing.T) {
	list := NewList(3)
	list.SetItems(zoneEntries())

	list.Down()
	list.Down()
	assert.Equal(t, 2, list.Cursor)
	assert.Equal(t, 0, list.Offset)

	list.Down()
	assert.Equal(t, 3, list.Cursor)
	assert.Equal(t, 1, list.Offset)

	list.Down()
	list.Down()
	assert.Equal(t, 4, list.Cursor)
	assert.Equal(t, 2, list.Offset)
}

func TestListUpScrollsBackToTop(t *testing.T) {
	list := NewList(3)
	list.SetItems(zoneEntries())
	list.Cursor = 4
	list.Offset = 2

	list.Up()
	list.Up()
	assert.Equal(t, 2, list.Cursor)
	assert.Equal(t, 2, list.Offset)

	list.Up()
	assert.Equal(t, 1, list.Cursor)
	assert.Equal(t, 1, list.Offset)

	list.Up()
	list.Up()
	assert.Equal(t, 0, list.Cursor)
	assert.Equal(t, 0, list.Offset)
}

func TestListVisiblePages(t *testing.T) {
	list := NewList(3)
	list.SetItems(zoneEntries())
	assert.Equal(t, []string{"orders.json", "people.json", "raw/"}, list.Visible())

	list.Offset = 3
	assert.Equal(t, []string{"events.json", "readme.txt"}, list.Visible())
	assert.Equal(t, 4, list.RelToAbs(1))

	list.SetItems(nil)
	assert.Nil(t, list.Visible())
}

func TestListToggleMarksInOrder(t *testing.T) {
	list := NewList(5)
	list.SetItems(zoneEntries())

	list.Toggle(3)
	list.Toggle(0)
	list.Toggle(9)
	assert.Equal(t, []int{0, 3}, list.Marked())
	assert.True(t, list.IsMarked(3))

	list.Toggle(3)
	assert.Equal(t, []int{0}, list.Marked())
	assert.False(t, list.IsMarked(3))
}

func TestListSetItemsClearsMarks(t *testing.T) {
	list := NewList(5)
	list.SetItems(zoneEntries())
	list.Mark(1)
	list.Mark(4)
	list.Cursor = 4

	list.SetItems([]string{"a.json"})
	assert.Empty(t, list.Marked())
	assert.Equal(t, 0, list.Selected())
}

func TestListClearMarks(t *testing.T) {
	list := NewList(5)
	list.SetItems(zoneEntries())
	list.Mark(2)
	list.ClearMarks()
	assert.False(t, list.IsMarked(2))
}
