package ui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gravitrone/sprayctl/internal/api"
	"github.com/gravitrone/sprayctl/internal/spray"
	"github.com/gravitrone/sprayctl/internal/ui/components"
)

// --- Messages ---

type zonesLoadedMsg struct {
	zones []api.DropZone
	files []api.PhysicalFile
}

type zoneListedMsg struct {
	zone  string
	dir   string
	files []api.PhysicalFile
}

type openImportMsg struct {
	selection []spray.LandingZoneFile
}

// --- Landing Zones Model ---

// LandingZonesModel browses landing-zone directories and builds the file
// selection handed to the Import JSON dialog.
type LandingZonesModel struct {
	client  *api.Client
	zones   []api.DropZone
	zoneIdx int
	dir     string

	all   []api.PhysicalFile
	items []api.PhysicalFile
	list  *components.List

	filter    string
	filtering bool
	filterBuf string

	loading bool
	notice  string
	width   int
	height  int
}

func NewLandingZonesModel(client *api.Client) LandingZonesModel {
	return LandingZonesModel{
		client:  client,
		list:    components.NewList(15),
		loading: client != nil,
	}
}

func (m LandingZonesModel) Init() tea.Cmd {
	if m.client == nil {
		return nil
	}
	return m.loadZones
}

func (m LandingZonesModel) Update(msg tea.Msg) (LandingZonesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case zonesLoadedMsg:
		m.loading = false
		m.zones = msg.zones
		m.zoneIdx = 0
		m.dir = ""
		m.all = msg.files
		m.applyFilter()
		return m, nil
	case zoneListedMsg:
		zone, ok := m.zone()
		if !ok || zone.Name != msg.zone || m.dir != msg.dir {
			return m, nil
		}
		m.loading = false
		m.all = msg.files
		m.applyFilter()
		return m, nil
	case tea.KeyMsg:
		if m.filtering {
			return m.handleFilterKeys(msg)
		}
		return m.handleListKeys(msg)
	}
	return m, nil
}

func (m LandingZonesModel) View() string {
	if m.filtering {
		dialog := components.InputDialogWithHint("Filter (glob)", m.filterBuf, "enter: apply | esc: clear")
		if m.notice != "" {
			dialog += "\n" + WarningStyle.Render(m.notice)
		}
		return components.Indent(dialog, 1)
	}
	if m.loading && len(m.zones) == 0 {
		return components.Indent(components.CenterLine(MutedStyle.Render("Loading landing zones..."), m.width), 1)
	}
	if len(m.zones) == 0 {
		return components.Indent(components.Box(MutedStyle.Render("No landing zones found."), m.width), 1)
	}
	return components.Indent(m.renderList(), 1)
}

// --- Loading ---

func (m LandingZonesModel) loadZones() tea.Msg {
	listing, err := m.client.DropZoneFiles(context.Background(), "", "")
	if err != nil {
		return errMsg{fmt.Errorf("load landing zones: %w", err)}
	}
	return zonesLoadedMsg{zones: listing.DropZones, files: listing.Files}
}

func (m LandingZonesModel) listDir() tea.Cmd {
	zone, ok := m.zone()
	if !ok || m.client == nil {
		return nil
	}
	dir := m.dir
	client := m.client
	return func() tea.Msg {
		files, err := client.FileList(context.Background(), zone, zoneDirPath(zone, dir), "")
		if err != nil {
			return errMsg{fmt.Errorf("list %s: %w", zoneDirPath(zone, dir), err)}
		}
		return zoneListedMsg{zone: zone.Name, dir: dir, files: files}
	}
}

func (m LandingZonesModel) zone() (api.DropZone, bool) {
	if m.zoneIdx < 0 || m.zoneIdx >= len(m.zones) {
		return api.DropZone{}, false
	}
	return m.zones[m.zoneIdx], true
}

// zoneDirPath is the absolute directory of dir (relative, "/"-separated)
// inside zone, with a trailing separator.
func zoneDirPath(zone api.DropZone, dir string) string {
	sep := zone.PathSeparator()
	full := strings.TrimSuffix(zone.Path, sep) + sep
	if dir != "" {
		full += strings.ReplaceAll(dir, "/", sep) + sep
	}
	return full
}

// applyFilter rebuilds the visible entries. Directories are always listed
// first; files must match the glob filter.
func (m *LandingZonesModel) applyFilter() {
	items := make([]api.PhysicalFile, 0, len(m.all))
	for _, f := range m.all {
		if f.IsDir || m.filter == "" {
			items = append(items, f)
			continue
		}
		if ok, _ := doublestar.Match(m.filter, f.Name); ok {
			items = append(items, f)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].IsDir && !items[j].IsDir
	})
	m.items = items

	labels := make([]string, len(items))
	for i, f := range items {
		labels[i] = f.Name
	}
	m.list.SetItems(labels)
}

// Selection returns the marked files, or the file under the cursor when
// nothing is marked.
func (m LandingZonesModel) Selection() []spray.LandingZoneFile {
	zone, ok := m.zone()
	if !ok {
		return nil
	}
	dir := strings.ReplaceAll(m.dir, "/", zone.PathSeparator())
	marked := m.list.Marked()
	if len(marked) == 0 {
		idx := m.list.Selected()
		if idx < len(m.items) && !m.items[idx].IsDir {
			marked = []int{idx}
		}
	}
	out := make([]spray.LandingZoneFile, 0, len(marked))
	for _, idx := range marked {
		out = append(out, spray.FileFromListing(zone, dir, m.items[idx]))
	}
	return out
}

// --- Keys ---

func (m LandingZonesModel) handleListKeys(msg tea.KeyMsg) (LandingZonesModel, tea.Cmd) {
	m.notice = ""
	switch {
	case isDown(msg):
		m.list.Down()
	case isUp(msg):
		m.list.Up()
	case isSpace(msg):
		if idx := m.list.Selected(); idx < len(m.items) && !m.items[idx].IsDir {
			m.list.Toggle(idx)
			m.list.Down()
		}
	case isKey(msg, "a"):
		for i, f := range m.items {
			if !f.IsDir {
				m.list.Mark(i)
			}
		}
	case isKey(msg, "x"):
		m.list.ClearMarks()
	case isEnter(msg):
		idx := m.list.Selected()
		if idx < len(m.items) && m.items[idx].IsDir {
			m.dir = strings.TrimPrefix(m.dir+"/"+m.items[idx].Name, "/")
			m.loading = true
			return m, m.listDir()
		}
	case isErase(msg):
		if m.dir != "" {
			if i := strings.LastIndex(m.dir, "/"); i >= 0 {
				m.dir = m.dir[:i]
			} else {
				m.dir = ""
			}
			m.loading = true
			return m, m.listDir()
		}
	case isKey(msg, "z"):
		if len(m.zones) > 1 {
			m.zoneIdx = (m.zoneIdx + 1) % len(m.zones)
			m.dir = ""
			m.loading = true
			return m, m.listDir()
		}
	case isKey(msg, "r"):
		m.loading = m.client != nil
		if len(m.zones) == 0 {
			return m, m.Init()
		}
		return m, m.listDir()
	case isKey(msg, "/"):
		m.filtering = true
		m.filterBuf = m.filter
	case isKey(msg, "i"):
		selection := m.Selection()
		if len(selection) == 0 {
			m.notice = "Mark files with space, then press i"
			return m, nil
		}
		return m, func() tea.Msg { return openImportMsg{selection: selection} }
	}
	return m, nil
}

func (m LandingZonesModel) handleFilterKeys(msg tea.KeyMsg) (LandingZonesModel, tea.Cmd) {
	switch {
	case isBack(msg):
		m.filtering = false
		m.filterBuf = ""
		m.filter = ""
		m.applyFilter()
	case isEnter(msg):
		pattern := strings.TrimSpace(m.filterBuf)
		if pattern != "" && !doublestar.ValidatePattern(pattern) {
			m.notice = fmt.Sprintf("invalid pattern %q", pattern)
			return m, nil
		}
		m.filtering = false
		m.filter = pattern
		m.notice = ""
		m.applyFilter()
	case isErase(msg):
		m.filterBuf = dropLastRune(m.filterBuf)
	default:
		m.filterBuf += typedRune(msg)
	}
	return m, nil
}

// --- Render ---

func (m LandingZonesModel) renderList() string {
	zone, _ := m.zone()
	header := fmt.Sprintf("%s · %s · %s", zone.Name, zone.NetAddress, zoneDirPath(zone, m.dir))
	meta := []string{fmt.Sprintf("%d entries", len(m.items))}
	if n := len(m.list.Marked()); n > 0 {
		meta = append(meta, fmt.Sprintf("%d marked", n))
	}
	if m.filter != "" {
		meta = append(meta, "filter: "+m.filter)
	}
	if len(m.zones) > 1 {
		meta = append(meta, fmt.Sprintf("zone %d/%d", m.zoneIdx+1, len(m.zones)))
	}

	var b strings.Builder
	b.WriteString(NormalStyle.Render(components.SanitizeOneLine(header)) + "\n")
	b.WriteString(MutedStyle.Render(strings.Join(meta, " · ")) + "\n\n")

	if m.loading {
		b.WriteString(MutedStyle.Render("Loading..."))
	} else if len(m.items) == 0 {
		b.WriteString(MutedStyle.Render("Empty directory."))
	} else {
		b.WriteString(m.renderTable())
	}
	if m.notice != "" {
		b.WriteString("\n\n" + WarningStyle.Render(m.notice))
	}
	return components.TitledBox("Landing Zones", b.String(), m.width)
}

func (m LandingZonesModel) renderTable() string {
	width := components.BoxContentWidth(m.width)
	if width <= 0 {
		width = 72
	}
	cols := []components.TableColumn{
		{Header: "", Width: 3},
		{Header: "Name", Width: width / 2},
		{Header: "Size", Width: 9, Align: lipgloss.Right},
		{Header: "Modified", Width: 19},
	}
	visible := m.list.Visible()
	rows := make([][]string, 0, len(visible))
	active := -1
	for i := range visible {
		idx := m.list.RelToAbs(i)
		f := m.items[idx]
		mark := ""
		if m.list.IsMarked(idx) {
			mark = "[x]"
		}
		name, size := f.Name, formatFileSize(f.FileSize)
		if f.IsDir {
			name, size = f.Name+"/", ""
		}
		rows = append(rows, []string{mark, name, size, f.ModifiedTime})
		if m.list.IsSelected(idx) {
			active = i
		}
	}
	return components.TableGridWithActiveRow(cols, rows, width, active)
}

func formatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
