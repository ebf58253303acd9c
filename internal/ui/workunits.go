package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gravitrone/sprayctl/internal/api"
	"github.com/gravitrone/sprayctl/internal/spray"
	"github.com/gravitrone/sprayctl/internal/ui/components"
)

const defaultPollInterval = 2 * time.Second

// --- Messages ---

type workunitLoadedMsg struct {
	wuid string
	wu   *api.DFUWorkunit
}

type workunitPollMsg struct {
	wuid string
}

// --- Workunits Model ---

// WorkunitsModel shows the DFU workunits opened this session. The detail
// view polls until the workunit reaches a terminal state.
type WorkunitsModel struct {
	client *api.Client
	poll   time.Duration

	ids     []string
	list    *components.List
	current string
	detail  *api.DFUWorkunit
	loading bool

	opening bool
	openBuf string

	width  int
	height int
}

func NewWorkunitsModel(client *api.Client) WorkunitsModel {
	return WorkunitsModel{
		client: client,
		poll:   defaultPollInterval,
		list:   components.NewList(12),
	}
}

func (m WorkunitsModel) Init() tea.Cmd {
	if m.current != "" {
		return m.fetch(m.current)
	}
	return nil
}

// Open makes wuid the current workunit and starts loading it.
func (m *WorkunitsModel) Open(wuid string) tea.Cmd {
	wuid = strings.TrimSpace(wuid)
	if wuid == "" {
		return nil
	}
	ids := []string{wuid}
	for _, id := range m.ids {
		if id != wuid {
			ids = append(ids, id)
		}
	}
	m.ids = ids
	m.list.SetItems(ids)
	m.current = wuid
	m.detail = nil
	m.loading = true
	return m.fetch(wuid)
}

func (m WorkunitsModel) fetch(wuid string) tea.Cmd {
	if m.client == nil {
		return nil
	}
	client := m.client
	return func() tea.Msg {
		wu, err := client.GetDFUWorkunit(context.Background(), wuid)
		if err != nil {
			return errMsg{fmt.Errorf("workunit %s: %w", wuid, err)}
		}
		return workunitLoadedMsg{wuid: wuid, wu: wu}
	}
}

func (m WorkunitsModel) Update(msg tea.Msg) (WorkunitsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case workunitLoadedMsg:
		if msg.wuid != m.current {
			return m, nil
		}
		m.loading = false
		m.detail = msg.wu
		if msg.wu.Finished() || m.poll <= 0 {
			return m, nil
		}
		wuid := msg.wuid
		return m, tea.Tick(m.poll, func(time.Time) tea.Msg {
			return workunitPollMsg{wuid: wuid}
		})
	case workunitPollMsg:
		if msg.wuid != m.current {
			return m, nil
		}
		return m, m.fetch(msg.wuid)
	case tea.KeyMsg:
		if m.opening {
			return m.handleOpenKeys(msg)
		}
		if m.current != "" {
			return m.handleDetailKeys(msg)
		}
		return m.handleListKeys(msg)
	}
	return m, nil
}

func (m WorkunitsModel) View() string {
	if m.opening {
		return components.Indent(components.InputDialog("Open Workunit", m.openBuf), 1)
	}
	if m.current != "" {
		return components.Indent(m.renderDetail(), 1)
	}
	return components.Indent(m.renderList(), 1)
}

// --- Keys ---

func (m WorkunitsModel) handleListKeys(msg tea.KeyMsg) (WorkunitsModel, tea.Cmd) {
	switch {
	case isDown(msg):
		m.list.Down()
	case isUp(msg):
		m.list.Up()
	case isEnter(msg):
		if idx := m.list.Selected(); idx < len(m.ids) {
			cmd := m.Open(m.ids[idx])
			return m, cmd
		}
	case isKey(msg, "o"):
		m.opening = true
		m.openBuf = ""
	}
	return m, nil
}

func (m WorkunitsModel) handleDetailKeys(msg tea.KeyMsg) (WorkunitsModel, tea.Cmd) {
	switch {
	case isBack(msg):
		m.current = ""
		m.detail = nil
		m.loading = false
	case isKey(msg, "r"):
		m.loading = true
		return m, m.fetch(m.current)
	case isKey(msg, "o"):
		m.opening = true
		m.openBuf = ""
	}
	return m, nil
}

func (m WorkunitsModel) handleOpenKeys(msg tea.KeyMsg) (WorkunitsModel, tea.Cmd) {
	switch {
	case isBack(msg):
		m.opening = false
		m.openBuf = ""
	case isEnter(msg):
		m.opening = false
		wuid := strings.TrimSpace(m.openBuf)
		m.openBuf = ""
		cmd := m.Open(wuid)
		return m, cmd
	case isErase(msg):
		m.openBuf = dropLastRune(m.openBuf)
	default:
		m.openBuf += typedRune(msg)
	}
	return m, nil
}

// --- Render ---

func (m WorkunitsModel) renderList() string {
	if len(m.ids) == 0 {
		body := MutedStyle.Render("No workunits yet. Import files from Landing Zones, or press o to open one by id.")
		return components.TitledBox("Workunits", body, m.width)
	}
	var rows strings.Builder
	visible := m.list.Visible()
	for i, id := range visible {
		if m.list.IsSelected(m.list.RelToAbs(i)) {
			rows.WriteString(SelectedStyle.Render("  > " + id))
		} else {
			rows.WriteString(NormalStyle.Render("    " + id))
		}
		if i < len(visible)-1 {
			rows.WriteString("\n")
		}
	}
	count := MutedStyle.Render(fmt.Sprintf("%d opened this session", len(m.ids)))
	return components.TitledBox("Workunits", count+"\n\n"+rows.String(), m.width)
}

func (m WorkunitsModel) renderDetail() string {
	url := spray.WorkunitURL(m.baseURL(), m.current)
	if m.detail == nil {
		body := MutedStyle.Render("Loading " + m.current + "...")
		return components.TitledBox(spray.WorkunitPath(m.current), body, m.width)
	}
	wu := m.detail
	state := wu.StateMessage
	stateStyle := StateStyle(state)
	progress := fmt.Sprintf("%d%%", wu.PercentDone)
	if msg := strings.TrimSpace(wu.ProgressMessage); msg != "" {
		progress += " · " + msg
	}
	rows := []components.TableRow{
		{Label: "ID", Value: m.current},
		{Label: "Job", Value: wu.JobName},
		{Label: "State", Value: state, Style: &stateStyle},
		{Label: "Progress", Value: progress},
		{Label: "Source", Value: wu.SourceLogicalName},
		{Label: "Target", Value: wu.DestLogicalName},
		{Label: "Group", Value: wu.DestGroupName},
		{Label: "Queue", Value: wu.Queue},
		{Label: "User", Value: wu.User},
		{Label: "Started", Value: wu.TimeStarted},
		{Label: "Stopped", Value: wu.TimeStopped},
	}
	sections := []string{components.Table(spray.WorkunitPath(m.current), rows, m.width)}
	if summary := strings.TrimSpace(wu.SummaryMessage); summary != "" {
		sections = append(sections, components.TitledBox("Summary", NormalStyle.Render(components.SanitizeText(summary)), m.width))
	}
	footer := MutedStyle.Render(url)
	if !wu.Finished() && m.poll > 0 {
		footer += "\n" + MutedStyle.Render(fmt.Sprintf("refreshing every %s", m.poll))
	}
	sections = append(sections, footer)
	return strings.Join(sections, "\n\n")
}

func (m WorkunitsModel) baseURL() string {
	if m.client == nil {
		return ""
	}
	return m.client.BaseURL()
}
