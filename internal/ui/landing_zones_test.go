package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravitrone/sprayctl/internal/api"
	"github.com/gravitrone/sprayctl/internal/ui/components"
)

func loadedZones(t *testing.T) (LandingZonesModel, *fakeESP) {
	t.Helper()
	esp := newFakeESP()
	_, client := testClient(t, esp)
	m := NewLandingZonesModel(client)
	require.True(t, m.loading)
	for _, msg := range runCmd(t, m.Init()) {
		m, _ = m.Update(msg)
	}
	require.False(t, m.loading)
	return m, esp
}

func zoneKeys(m LandingZonesModel, keys ...tea.KeyMsg) (LandingZonesModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		m, cmd = m.Update(k)
	}
	return m, cmd
}

func typeFilter(m LandingZonesModel, text string) LandingZonesModel {
	for _, r := range text {
		m, _ = m.Update(keyRunes(string(r)))
	}
	return m
}

func TestLandingZonesInitListsDirectoriesFirst(t *testing.T) {
	m, esp := loadedZones(t)

	assert.Equal(t, 1, esp.count("DropZoneFiles"))
	require.Len(t, m.items, 4)
	assert.Equal(t, "archive", m.items[0].Name)
	assert.True(t, m.items[0].IsDir)

	view := components.SanitizeText(m.View())
	assert.Contains(t, view, "Landing Zones")
	assert.Contains(t, view, "mydropzone · 10.0.0.5 · /var/lib/HPCCSystems/mydropzone/")
	assert.Contains(t, view, "archive/")
	assert.Contains(t, view, "2.0 KB")
	assert.Contains(t, view, "4 entries")
}

func TestLandingZonesWithoutClient(t *testing.T) {
	m := NewLandingZonesModel(nil)
	assert.Nil(t, m.Init())
	assert.Contains(t, components.SanitizeText(m.View()), "No landing zones found.")
}

func TestLandingZonesMarkAndOpenImport(t *testing.T) {
	m, _ := loadedZones(t)

	m, _ = zoneKeys(m,
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeySpace},
		tea.KeyMsg{Type: tea.KeySpace},
	)
	assert.Equal(t, []int{1, 2}, m.list.Marked())
	assert.Contains(t, components.SanitizeText(m.View()), "2 marked")

	m, cmd := m.Update(keyRunes("i"))
	require.NotNil(t, cmd)
	msg, ok := cmd().(openImportMsg)
	require.True(t, ok)
	require.Len(t, msg.selection, 2)
	assert.Equal(t, "people.json", msg.selection[0].Name)
	assert.Equal(t, "/var/lib/HPCCSystems/mydropzone/people.json", msg.selection[0].FullPath)
	assert.Equal(t, "10.0.0.5", msg.selection[0].NetAddress)
	assert.Equal(t, "orders.json", msg.selection[1].Name)

	m, _ = m.Update(keyRunes("x"))
	assert.Empty(t, m.list.Marked())
}

func TestLandingZonesMarkAllSkipsDirectories(t *testing.T) {
	m, _ := loadedZones(t)

	m, _ = m.Update(keyRunes("a"))
	assert.Equal(t, []int{1, 2, 3}, m.list.Marked())

	// Space on a directory is ignored.
	m, _ = m.Update(keyRunes("x"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace})
	assert.Empty(t, m.list.Marked())
}

func TestLandingZonesImportNeedsAFile(t *testing.T) {
	m, _ := loadedZones(t)

	m, cmd := m.Update(keyRunes("i"))
	assert.Nil(t, cmd)
	assert.Contains(t, components.SanitizeText(m.View()), "Mark files with space, then press i")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Empty(t, m.notice)
	m, cmd = m.Update(keyRunes("i"))
	require.NotNil(t, cmd)
	msg := cmd().(openImportMsg)
	require.Len(t, msg.selection, 1)
	assert.Equal(t, "people.json", msg.selection[0].Name)
}

func TestLandingZonesGlobFilter(t *testing.T) {
	m, _ := loadedZones(t)

	m, _ = m.Update(keyRunes("/"))
	require.True(t, m.filtering)
	m = typeFilter(m, "*.json")
	assert.Contains(t, components.SanitizeText(m.View()), "Filter (glob)")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.filtering)
	assert.Equal(t, "*.json", m.filter)
	require.Len(t, m.items, 3)
	assert.True(t, m.items[0].IsDir)
	assert.Contains(t, components.SanitizeText(m.View()), "filter: *.json")

	m, _ = m.Update(keyRunes("/"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Empty(t, m.filter)
	assert.Len(t, m.items, 4)
}

func TestLandingZonesRejectsInvalidPattern(t *testing.T) {
	m, _ := loadedZones(t)

	m, _ = m.Update(keyRunes("/"))
	m = typeFilter(m, "[a-")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.True(t, m.filtering)
	assert.Contains(t, components.SanitizeText(m.View()), `invalid pattern "[a-"`)
	assert.Len(t, m.items, 4)
}

func TestLandingZonesDescendAndAscend(t *testing.T) {
	m, esp := loadedZones(t)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, "archive", m.dir)
	assert.True(t, m.loading)

	msg := cmd()
	listed, ok := msg.(zoneListedMsg)
	require.True(t, ok)
	assert.Equal(t, "archive", listed.dir)
	m, _ = m.Update(msg)
	assert.Equal(t, 1, esp.count("FileList"))
	require.Len(t, m.items, 1)
	assert.Contains(t, components.SanitizeText(m.View()), "/var/lib/HPCCSystems/mydropzone/archive/")

	sel := m.Selection()
	require.Len(t, sel, 1)
	assert.Equal(t, "/var/lib/HPCCSystems/mydropzone/archive/old.json", sel[0].FullPath)

	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	require.NotNil(t, cmd)
	assert.Empty(t, m.dir)
}

func TestLandingZonesDropsStaleListing(t *testing.T) {
	m, _ := loadedZones(t)

	m, _ = m.Update(zoneListedMsg{zone: "mydropzone", dir: "elsewhere", files: []api.PhysicalFile{{Name: "x.json"}}})
	assert.Len(t, m.items, 4)
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "12 B", formatFileSize(12))
	assert.Equal(t, "2.0 KB", formatFileSize(2048))
	assert.Equal(t, "1.5 MB", formatFileSize(1536*1024))
}
