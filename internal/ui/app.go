package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/gravitrone/sprayctl/internal/api"
	"github.com/gravitrone/sprayctl/internal/config"
	"github.com/gravitrone/sprayctl/internal/spray"
	"github.com/gravitrone/sprayctl/internal/ui/components"
)

// --- Tab Constants ---

const (
	tabZones     = 0
	tabWorkunits = 1
	tabCount     = 2
)

var tabNames = []string{"Landing Zones", "Workunits"}

// --- Messages ---

type errMsg struct{ err error }
type clearToastMsg struct{}
type routeMsg struct{ path string }

type appToast struct {
	level string
	text  string
}

// routeNavigator hands workunit routes from dispatcher goroutines to the
// program loop. Only the most recent pending route is kept.
type routeNavigator struct {
	routes chan string
}

func newRouteNavigator() routeNavigator {
	return routeNavigator{routes: make(chan string, 1)}
}

func (n routeNavigator) Navigate(path string) {
	for {
		select {
		case n.routes <- path:
			return
		default:
		}
		select {
		case <-n.routes:
		default:
		}
	}
}

func (n routeNavigator) next() tea.Cmd {
	return func() tea.Msg {
		return routeMsg{path: <-n.routes}
	}
}

// --- App Model ---

// App is the root TUI model that routes between tabs and hosts the Import
// JSON dialog.
type App struct {
	client *api.Client
	config *config.Config
	log    zerolog.Logger
	nav    routeNavigator

	tab         int
	tabNav      bool
	width       int
	height      int
	err         string
	helpOpen    bool
	quitConfirm bool
	toast       *appToast

	importOpen bool

	zones     LandingZonesModel
	workunits WorkunitsModel
	importer  ImportJSONModel
}

// NewApp creates the root application model.
func NewApp(client *api.Client, cfg *config.Config, log zerolog.Logger) App {
	nav := newRouteNavigator()
	dispatcher := spray.NewDispatcher(client, nav, log)
	return App{
		client:    client,
		config:    cfg,
		log:       log,
		nav:       nav,
		tab:       tabZones,
		tabNav:    true,
		zones:     NewLandingZonesModel(client),
		workunits: NewWorkunitsModel(client),
		importer:  NewImportJSONModel(client, dispatcher, cfg),
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.zones.Init(), a.nav.next())
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.zones.width = msg.Width
		a.zones.height = msg.Height
		a.workunits.width = msg.Width
		a.workunits.height = msg.Height
		a.importer.width = msg.Width
		a.importer.height = msg.Height
		return a, nil

	case errMsg:
		a.err = msg.err.Error()
		a.zones.loading = false
		a.workunits.loading = false
		a.log.Error().Err(msg.err).Msg("ui error")
		return a, nil
	case clearToastMsg:
		a.toast = nil
		return a, nil

	case openImportMsg:
		a.importOpen = true
		if a.importer.Running() {
			// A hidden batch is still reporting; show it instead of a new form.
			a.importer.closed = false
			return a, nil
		}
		cmd := a.importer.Open(msg.selection)
		return a, cmd
	case importLookupsMsg:
		var cmd tea.Cmd
		a.importer, cmd = a.importer.Update(msg)
		return a, cmd
	case sprayOutcomeMsg:
		var cmd tea.Cmd
		a.importer, cmd = a.importer.Update(msg)
		return a, cmd
	case sprayBatchDoneMsg:
		var cmd tea.Cmd
		a.importer, cmd = a.importer.Update(msg)
		if a.importOpen {
			return a, cmd
		}
		level := "success"
		if a.importer.Failures() > 0 {
			level = "warning"
		}
		toast := a.setToast(level, a.importer.Summary())
		return a, tea.Batch(cmd, toast)
	case routeMsg:
		return a.route(msg.path)

	case workunitLoadedMsg, workunitPollMsg:
		var cmd tea.Cmd
		a.workunits, cmd = a.workunits.Update(msg)
		return a, cmd
	case zonesLoadedMsg, zoneListedMsg:
		var cmd tea.Cmd
		a.zones, cmd = a.zones.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		if a.importOpen {
			var cmd tea.Cmd
			a.importer, cmd = a.importer.Update(msg)
			if a.importer.closed {
				a.importOpen = false
			}
			return a, cmd
		}
		if a.quitConfirm {
			switch {
			case isKey(msg, "y"):
				return a, tea.Quit
			case isKey(msg, "n"), isBack(msg):
				a.quitConfirm = false
			}
			return a, nil
		}
		if a.helpOpen {
			if isBack(msg) || isKey(msg, "?") {
				a.helpOpen = false
			}
			return a, nil
		}
		if a.err != "" {
			a.err = ""
		}
		if a.capturesText() {
			break
		}

		// Global keys
		if isKey(msg, "?") {
			a.helpOpen = true
			return a, nil
		}
		if isQuit(msg) {
			if a.importer.Running() {
				a.quitConfirm = true
				return a, nil
			}
			return a, tea.Quit
		}
		if idx, ok := tabIndexForKey(msg.String()); ok {
			return a.switchTab(idx)
		}

		// Arrow tab navigation until the user moves into the content.
		if a.tabNav {
			switch {
			case isLeft(msg):
				return a.switchTab((a.tab - 1 + tabCount) % tabCount)
			case isRight(msg):
				return a.switchTab((a.tab + 1) % tabCount)
			case isDown(msg):
				a.tabNav = false
				return a, nil
			}
			a.tabNav = false
		} else if isUp(msg) && a.canExitToTabNav() {
			a.tabNav = true
			return a, nil
		}
	}

	var cmd tea.Cmd
	switch a.tab {
	case tabZones:
		a.zones, cmd = a.zones.Update(msg)
	case tabWorkunits:
		a.workunits, cmd = a.workunits.Update(msg)
	}
	return a, cmd
}

// route applies a navigation path produced by the dispatcher and re-arms
// the route listener.
func (a App) route(path string) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{a.nav.next()}
	wuid, ok := strings.CutPrefix(path, spray.WorkunitPath(""))
	if !ok || wuid == "" {
		a.log.Warn().Str("path", path).Msg("unknown route")
		return a, tea.Batch(cmds...)
	}
	a.tab = tabWorkunits
	a.tabNav = false
	cmds = append(cmds, a.workunits.Open(wuid))
	if !a.importOpen {
		cmds = append(cmds, a.setToast("info", "Opened workunit "+wuid))
	}
	return a, tea.Batch(cmds...)
}

func (a App) View() string {
	banner := centerBlockUniform(RenderBanner(), a.width)
	tabs := centerBlockUniform(a.renderTabs(), a.width)

	var content string
	switch {
	case a.quitConfirm:
		content = components.Indent(components.ConfirmDialog("Quit", "Sprays are still being submitted. Quit anyway?"), 1)
	case a.helpOpen:
		content = a.renderHelp()
	case a.importOpen:
		content = a.importer.View()
	case a.tab == tabWorkunits:
		content = a.workunits.View()
	default:
		content = a.zones.View()
	}
	content = centerBlockUniform(content, a.width)

	hints := components.StatusBar(a.statusHints(), a.width)

	feedback := ""
	if a.err != "" {
		feedback = "\n\n" + centerBlockUniform(components.ErrorBox("Error", a.err, a.width), a.width)
	} else if a.toast != nil {
		feedback = "\n\n" + centerBlockUniform(a.renderToast(), a.width)
	}

	return fmt.Sprintf("%s\n%s\n\n%s\n\n\n%s%s", banner, tabs, content, hints, feedback)
}

func (a *App) switchTab(newTab int) (App, tea.Cmd) {
	oldTab := a.tab
	a.tab = newTab
	if oldTab != newTab {
		return *a, a.initTab(newTab)
	}
	return *a, nil
}

func (a App) initTab(tab int) tea.Cmd {
	switch tab {
	case tabZones:
		if len(a.zones.zones) == 0 {
			return a.zones.Init()
		}
	case tabWorkunits:
		return a.workunits.Init()
	}
	return nil
}

// capturesText reports whether the active tab is collecting typed text, so
// global single-letter keys must pass through.
func (a App) capturesText() bool {
	switch a.tab {
	case tabZones:
		return a.zones.filtering
	case tabWorkunits:
		return a.workunits.opening
	}
	return false
}

func (a App) canExitToTabNav() bool {
	switch a.tab {
	case tabZones:
		return a.zones.list.Selected() == 0
	case tabWorkunits:
		return a.workunits.current == "" && a.workunits.list.Selected() == 0
	}
	return false
}

func (a App) renderTabs() string {
	segments := make([]string, 0, len(tabNames))
	for i, name := range tabNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if i == a.tab {
			segments = append(segments, TabActiveStyle.Render(label))
		} else {
			segments = append(segments, TabInactiveStyle.Render(label))
		}
	}
	line := lipgloss.JoinHorizontal(lipgloss.Top, segments...)
	if a.tabNav {
		return SelectedStyle.Render("› ") + line
	}
	return line
}

func (a App) statusHints() []string {
	if a.quitConfirm {
		return []string{
			components.Hint("y", "Confirm"),
			components.Hint("n", "Cancel"),
		}
	}
	if a.helpOpen {
		return []string{components.Hint("esc", "Back")}
	}
	if a.importOpen {
		switch a.importer.step {
		case importStepRunning:
			return []string{components.Hint("esc", "Hide")}
		case importStepResult:
			return []string{components.Hint("enter", "Close")}
		}
		return []string{
			components.Hint("tab", "Next"),
			components.Hint("←/→", "Choose"),
			components.Hint("space", "Toggle"),
			components.Hint("ctrl+s", "Import"),
			components.Hint("esc", "Cancel"),
		}
	}
	return a.statusHintsForTab()
}

func (a App) statusHintsForTab() []string {
	base := []string{
		components.Hint("1-2", "Tabs"),
		components.Hint("?", "Help"),
		components.Hint("q", "Quit"),
	}
	switch a.tab {
	case tabZones:
		if a.zones.filtering {
			return []string{
				components.Hint("enter", "Apply"),
				components.Hint("esc", "Clear"),
			}
		}
		return append(base,
			components.Hint("space", "Mark"),
			components.Hint("a", "Mark All"),
			components.Hint("enter", "Open Dir"),
			components.Hint("backspace", "Up"),
			components.Hint("/", "Filter"),
			components.Hint("z", "Zone"),
			components.Hint("i", "Import JSON"),
		)
	case tabWorkunits:
		if a.workunits.opening {
			return []string{
				components.Hint("enter", "Open"),
				components.Hint("esc", "Cancel"),
			}
		}
		if a.workunits.current != "" {
			return append(base,
				components.Hint("r", "Refresh"),
				components.Hint("o", "Open"),
				components.Hint("esc", "Back"),
			)
		}
		return append(base,
			components.Hint("enter", "View"),
			components.Hint("o", "Open"),
		)
	}
	return base
}

func (a App) renderHelp() string {
	hints := a.statusHintsForTab()
	lines := make([]string, 0, len(hints)+2)
	lines = append(lines, MutedStyle.Render("esc to close"), "")
	for _, hint := range hints {
		lines = append(lines, "  "+hint)
	}
	return components.Indent(components.TitledBox("Help", strings.Join(lines, "\n"), a.width), 1)
}

func (a *App) setToast(level, text string) tea.Cmd {
	a.toast = &appToast{
		level: level,
		text:  components.SanitizeOneLine(text),
	}
	return tea.Tick(2500*time.Millisecond, func(time.Time) tea.Msg {
		return clearToastMsg{}
	})
}

func (a App) renderToast() string {
	if a.toast == nil {
		return ""
	}
	title := "Info"
	switch a.toast.level {
	case "success":
		title = "Success"
	case "warning":
		title = "Warning"
	case "error":
		return components.ErrorBox("Error", a.toast.text, a.width)
	}
	return components.TitledBox(title, a.toast.text, a.width)
}

func centerBlockUniform(s string, width int) string {
	if width <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	maxWidth := 0
	for _, line := range lines {
		if w := lipgloss.Width(line); w > maxWidth {
			maxWidth = w
		}
	}
	if maxWidth <= 0 || maxWidth >= width {
		return s
	}
	prefix := strings.Repeat(" ", (width-maxWidth)/2)
	for i := range lines {
		if lines[i] != "" {
			lines[i] = prefix + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}
