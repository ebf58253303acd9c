package ui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/gravitrone/sprayctl/internal/api"
	"github.com/gravitrone/sprayctl/internal/config"
	"github.com/gravitrone/sprayctl/internal/spray"
	"github.com/gravitrone/sprayctl/internal/ui/components"
)

type importStep int

const (
	importStepForm importStep = iota
	importStepRunning
	importStepResult
)

type importFieldKind int

const (
	importFieldGroup importFieldKind = iota
	importFieldQueue
	importFieldPrefix
	importFieldTarget
	importFieldRowPath
	importFieldFormat
	importFieldMaxRecord
	importFieldFlag
	importFieldExpire
	importFieldSubmit
)

type importField struct {
	kind importFieldKind
	row  int
	flag string
}

var flagLabels = map[string]string{
	spray.FlagOverwrite:          "Overwrite",
	spray.FlagReplicate:          "Replicate",
	spray.FlagNoSplit:            "No Split",
	spray.FlagNoCommon:           "No Common",
	spray.FlagCompress:           "Compress",
	spray.FlagFailIfNoSourceFile: "Fail If No Source File",
	spray.FlagDelayedReplication: "Delayed Replication",
}

// --- Messages ---

type importLookupsMsg struct {
	groups []string
	queues []string
	err    error
}

type sprayOutcomeMsg struct {
	batch   uuid.UUID
	outcome spray.Outcome
}

type sprayBatchDoneMsg struct {
	batch uuid.UUID
}

// --- Import JSON Model ---

// ImportJSONModel is the modal that turns a landing-zone selection into one
// spray request per file.
type ImportJSONModel struct {
	client     *api.Client
	dispatcher *spray.Dispatcher
	form       *spray.Form

	defaultGroup string
	defaultQueue string

	groups    []string
	queues    []string
	loading   bool
	lookupErr string

	fields []importField
	focus  int

	step     importStep
	batch    *spray.Batch
	outcomes []spray.Outcome
	errText  string
	closed   bool

	width  int
	height int
}

func NewImportJSONModel(client *api.Client, dispatcher *spray.Dispatcher, cfg *config.Config) ImportJSONModel {
	m := ImportJSONModel{
		client:     client,
		dispatcher: dispatcher,
	}
	if cfg != nil {
		m.defaultGroup = strings.TrimSpace(cfg.DefaultGroup)
		m.defaultQueue = strings.TrimSpace(cfg.DefaultQueue)
	}
	return m
}

// Open starts a fresh dialog session for selection. Any edits from an
// earlier session are discarded.
func (m *ImportJSONModel) Open(selection []spray.LandingZoneFile) tea.Cmd {
	m.step = importStepForm
	m.batch = nil
	m.outcomes = nil
	m.errText = ""
	m.closed = false
	m.focus = 0

	form, err := spray.NewForm(selection)
	if err != nil {
		m.errText = err.Error()
		form, _ = spray.NewForm(nil)
	}
	m.form = form
	m.buildFields()

	if m.client == nil {
		m.applyDefaults(false)
		return nil
	}
	m.loading = true
	m.lookupErr = ""
	return m.loadLookups
}

// Running reports whether submitted sprays are still outstanding.
func (m ImportJSONModel) Running() bool {
	return m.step == importStepRunning
}

// Failures counts files whose spray request failed.
func (m ImportJSONModel) Failures() int {
	failed := 0
	for _, o := range m.outcomes {
		if !o.OK() {
			failed++
		}
	}
	return failed
}

// Summary describes the finished batch in one line.
func (m ImportJSONModel) Summary() string {
	total := len(m.outcomes)
	if m.batch != nil {
		total = m.batch.Len()
	}
	ok := len(m.outcomes) - m.Failures()
	if ok == total {
		return fmt.Sprintf("Import submitted: %d of %d file(s)", ok, total)
	}
	return fmt.Sprintf("Import finished with failures: %d of %d file(s) submitted", ok, total)
}

func (m ImportJSONModel) Update(msg tea.Msg) (ImportJSONModel, tea.Cmd) {
	switch msg := msg.(type) {
	case importLookupsMsg:
		m.loading = false
		if msg.err != nil {
			m.lookupErr = msg.err.Error()
			m.applyDefaults(false)
			return m, nil
		}
		m.groups = msg.groups
		m.queues = msg.queues
		m.applyDefaults(true)
		return m, nil
	case sprayOutcomeMsg:
		if m.batch == nil || msg.batch != m.batch.ID {
			return m, nil
		}
		m.outcomes = append(m.outcomes, msg.outcome)
		return m, waitForOutcome(m.batch)
	case sprayBatchDoneMsg:
		if m.batch == nil || msg.batch != m.batch.ID {
			return m, nil
		}
		sort.Slice(m.outcomes, func(i, j int) bool {
			return m.outcomes[i].Index < m.outcomes[j].Index
		})
		m.step = importStepResult
		return m, nil
	case tea.KeyMsg:
		switch m.step {
		case importStepForm:
			return m.handleFormKeys(msg)
		case importStepRunning:
			if isBack(msg) {
				m.closed = true
			}
		case importStepResult:
			if isBack(msg) || isEnter(msg) {
				m.closed = true
			}
		}
	}
	return m, nil
}

func (m ImportJSONModel) View() string {
	switch m.step {
	case importStepRunning:
		body := MutedStyle.Render(fmt.Sprintf("Submitting %d file(s)... %d done", m.batch.Len(), len(m.outcomes)))
		if lines := m.renderOutcomes(); lines != "" {
			body += "\n\n" + lines
		}
		body += "\n\n" + MutedStyle.Render("esc: hide (sprays keep running)")
		return components.Indent(components.TitledBox("Import JSON", body, m.width), 1)
	case importStepResult:
		body := m.Summary() + "\n\n" + m.renderOutcomes() + "\n\n" + MutedStyle.Render("enter: close")
		return components.Indent(components.TitledBox("Import Results", body, m.width), 1)
	}
	if m.form == nil {
		return ""
	}
	return components.Indent(components.TitledBox("Import JSON", m.renderForm(), m.width), 1)
}

// --- Lookups ---

func (m ImportJSONModel) loadLookups() tea.Msg {
	var (
		groups []api.TargetGroup
		queues []api.DFUServer
	)
	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		var err error
		groups, err = m.client.TargetGroups(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		queues, err = m.client.SprayQueues(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return importLookupsMsg{err: err}
	}

	msg := importLookupsMsg{}
	for _, grp := range groups {
		msg.groups = append(msg.groups, grp.Name)
	}
	for _, q := range queues {
		msg.queues = append(msg.queues, q.Queue)
	}
	return msg
}

// applyDefaults preselects the configured group and queue. With checked set
// a default is only used when the cluster reported it.
func (m *ImportJSONModel) applyDefaults(checked bool) {
	if m.form == nil {
		return
	}
	v := m.form.Values()
	if v.DestGroup == "" && m.defaultGroup != "" && (!checked || indexOf(m.groups, m.defaultGroup) >= 0) {
		m.form.SetDestGroup(m.defaultGroup)
	}
	if v.DFUServerQueue == "" && m.defaultQueue != "" && (!checked || indexOf(m.queues, m.defaultQueue) >= 0) {
		m.form.SetQueue(m.defaultQueue)
	}
}

// --- Fields ---

func (m *ImportJSONModel) buildFields() {
	fields := []importField{
		{kind: importFieldGroup},
		{kind: importFieldQueue},
		{kind: importFieldPrefix},
	}
	for i := 0; i < m.form.Len(); i++ {
		fields = append(fields,
			importField{kind: importFieldTarget, row: i},
			importField{kind: importFieldRowPath, row: i},
		)
	}
	fields = append(fields,
		importField{kind: importFieldFormat},
		importField{kind: importFieldMaxRecord},
	)
	for _, name := range spray.Flags() {
		fields = append(fields, importField{kind: importFieldFlag, flag: name})
	}
	fields = append(fields,
		importField{kind: importFieldExpire},
		importField{kind: importFieldSubmit},
	)
	m.fields = fields
}

func fieldKey(f importField) string {
	switch f.kind {
	case importFieldGroup:
		return spray.FieldDestGroup
	case importFieldQueue:
		return spray.FieldDFUServerQueue
	case importFieldPrefix:
		return spray.FieldNamePrefix
	case importFieldTarget:
		return spray.TargetNameField(f.row)
	case importFieldRowPath:
		return spray.RowPathField(f.row)
	case importFieldFormat:
		return spray.FieldSourceFormat
	case importFieldMaxRecord:
		return spray.FieldSourceMaxRecordSize
	case importFieldExpire:
		return spray.FieldExpireDays
	}
	return ""
}

func (m ImportJSONModel) fieldLabel(f importField) string {
	switch f.kind {
	case importFieldGroup:
		return "Target Group"
	case importFieldQueue:
		return "Queue"
	case importFieldPrefix:
		return "Name Prefix"
	case importFieldTarget:
		return fmt.Sprintf("Target Name #%d", f.row+1)
	case importFieldRowPath:
		return fmt.Sprintf("Row Path #%d", f.row+1)
	case importFieldFormat:
		return "Format"
	case importFieldMaxRecord:
		return "Max Record Size"
	case importFieldFlag:
		return flagLabels[f.flag]
	case importFieldExpire:
		return "Expire Days"
	}
	return ""
}

func (m *ImportJSONModel) focusField(key string) {
	for i, f := range m.fields {
		if fieldKey(f) == key {
			m.focus = i
			return
		}
	}
}

// --- Keys ---

func (m ImportJSONModel) handleFormKeys(msg tea.KeyMsg) (ImportJSONModel, tea.Cmd) {
	if len(m.fields) == 0 {
		if isBack(msg) {
			m.closed = true
		}
		return m, nil
	}
	field := m.fields[m.focus]
	switch {
	case isBack(msg):
		m.closed = true
	case isSubmit(msg):
		return m.submit()
	case isNextField(msg):
		m.focus = (m.focus + 1) % len(m.fields)
	case isPrevField(msg):
		m.focus = (m.focus - 1 + len(m.fields)) % len(m.fields)
	case isLeft(msg):
		m.cycle(field, -1)
	case isRight(msg):
		m.cycle(field, 1)
	case isEnter(msg):
		switch field.kind {
		case importFieldSubmit:
			return m.submit()
		case importFieldFlag:
			m.toggleFlag(field.flag)
		default:
			m.focus = (m.focus + 1) % len(m.fields)
		}
	case isSpace(msg) && field.kind == importFieldFlag:
		m.toggleFlag(field.flag)
	case isErase(msg):
		m.editText(field, dropLastRune)
	default:
		if text := typedRune(msg); text != "" {
			m.editText(field, func(s string) string { return s + text })
		}
	}
	return m, nil
}

func (m *ImportJSONModel) cycle(f importField, dir int) {
	v := m.form.Values()
	switch f.kind {
	case importFieldGroup:
		if next, ok := cycleOption(m.groups, v.DestGroup, dir); ok {
			m.form.SetDestGroup(next)
		}
	case importFieldQueue:
		if next, ok := cycleOption(m.queues, v.DFUServerQueue, dir); ok {
			m.form.SetQueue(next)
		}
	case importFieldFormat:
		formats := spray.SourceFormats()
		idx := int(v.SourceFormat) - 1
		switch {
		case idx < 0 && dir < 0:
			idx = len(formats) - 1
		case idx < 0:
			idx = 0
		default:
			idx = (idx + dir + len(formats)) % len(formats)
		}
		m.form.SetSourceFormat(formats[idx])
	case importFieldFlag:
		m.toggleFlag(f.flag)
	}
}

func cycleOption(options []string, current string, dir int) (string, bool) {
	if len(options) == 0 {
		return "", false
	}
	idx := indexOf(options, current)
	switch {
	case idx < 0 && dir < 0:
		idx = len(options) - 1
	case idx < 0:
		idx = 0
	default:
		idx = (idx + dir + len(options)) % len(options)
	}
	return options[idx], true
}

func indexOf(options []string, value string) int {
	for i, opt := range options {
		if opt == value {
			return i
		}
	}
	return -1
}

func (m *ImportJSONModel) toggleFlag(name string) {
	on, err := m.form.Flag(name)
	if err != nil {
		return
	}
	if err := m.form.SetFlag(name, !on); errors.Is(err, spray.ErrReadOnlyField) {
		m.errText = flagLabels[name] + " is always on"
		return
	}
	m.errText = ""
}

func (m *ImportJSONModel) editText(f importField, edit func(string) string) {
	v := m.form.Values()
	switch f.kind {
	case importFieldGroup:
		if len(m.groups) == 0 {
			m.form.SetDestGroup(edit(v.DestGroup))
		}
	case importFieldQueue:
		if len(m.queues) == 0 {
			m.form.SetQueue(edit(v.DFUServerQueue))
		}
	case importFieldPrefix:
		m.form.SetNamePrefix(edit(v.NamePrefix))
	case importFieldTarget:
		_ = m.form.SetTargetName(f.row, edit(v.SelectedFiles[f.row].TargetName))
	case importFieldRowPath:
		_ = m.form.SetRowPath(f.row, edit(v.SelectedFiles[f.row].TargetRowPath))
	case importFieldMaxRecord:
		m.form.SetMaxRecordSize(edit(v.SourceMaxRecordSize))
	case importFieldExpire:
		m.form.SetExpireDays(edit(v.ExpireDays))
	}
}

// --- Submit ---

// submit hands the form to the dispatcher. Sprays run on a background
// context so hiding the dialog does not cancel them.
func (m ImportJSONModel) submit() (ImportJSONModel, tea.Cmd) {
	batch, err := m.dispatcher.Submit(context.Background(), m.form)
	if err != nil {
		var verr *spray.ValidationError
		switch {
		case errors.As(err, &verr):
			m.errText = fmt.Sprintf("%d field(s) need attention", len(verr.Fields))
			m.focusField(verr.Fields[0].Field)
		case errors.Is(err, spray.ErrNoFiles):
			m.errText = "Select at least one file to import"
		default:
			m.errText = err.Error()
		}
		return m, nil
	}
	m.errText = ""
	m.batch = batch
	m.outcomes = nil
	m.step = importStepRunning
	return m, waitForOutcome(batch)
}

func waitForOutcome(batch *spray.Batch) tea.Cmd {
	return func() tea.Msg {
		o, ok := batch.Next()
		if !ok {
			return sprayBatchDoneMsg{batch: batch.ID}
		}
		return sprayOutcomeMsg{batch: batch.ID, outcome: o}
	}
}

// --- Render ---

func (m ImportJSONModel) renderForm() string {
	v := m.form.Values()
	var b strings.Builder

	if m.loading {
		b.WriteString(MutedStyle.Render("Loading groups and queues...") + "\n\n")
	} else if m.lookupErr != "" {
		b.WriteString(WarningStyle.Render("Lookup failed, type values instead: "+components.SanitizeOneLine(m.lookupErr)) + "\n\n")
	}

	section := ""
	for i, f := range m.fields {
		if s := fieldSection(f); s != section {
			if section != "" {
				b.WriteString("\n")
			}
			section = s
			b.WriteString(SectionStyle.Render(s) + "\n")
			if f.kind == importFieldTarget {
				b.WriteString(m.renderRows(v) + "\n")
			}
		}
		b.WriteString(m.renderField(i, f, v) + "\n")
	}
	if m.form.Len() == 0 {
		b.WriteString("\n" + MutedStyle.Render("No files selected."))
	}
	if m.errText != "" {
		b.WriteString("\n" + ErrorStyle.Render(components.SanitizeOneLine(m.errText)))
	}
	b.WriteString("\n" + MutedStyle.Render("tab/↑↓: field | ←/→: choose | space: toggle | ctrl+s: import | esc: cancel"))
	return b.String()
}

func fieldSection(f importField) string {
	switch f.kind {
	case importFieldGroup, importFieldQueue, importFieldPrefix:
		return "Destination"
	case importFieldTarget, importFieldRowPath:
		return "Files"
	}
	return "Options"
}

func (m ImportJSONModel) renderRows(v spray.FormValues) string {
	width := components.BoxContentWidth(m.width)
	if width <= 0 {
		width = 72
	}
	cols := []components.TableColumn{
		{Header: "#", Width: 3, Align: lipgloss.Right},
		{Header: "Source", Width: width / 3},
		{Header: "Target", Width: width / 4},
		{Header: "Row Path", Width: 8},
	}
	rows := make([][]string, 0, len(v.SelectedFiles))
	for i, r := range v.SelectedFiles {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			r.SourceIP + ":" + r.SourceFile,
			spray.JoinLogicalName(v.NamePrefix, r.TargetName),
			r.TargetRowPath,
		})
	}
	active := -1
	if f := m.fields[m.focus]; f.kind == importFieldTarget || f.kind == importFieldRowPath {
		active = f.row
	}
	return components.TableGridWithActiveRow(cols, rows, width, active)
}

func (m ImportJSONModel) renderField(i int, f importField, v spray.FormValues) string {
	focused := i == m.focus
	prefix := "  "
	labelStyle := MutedStyle
	if focused {
		prefix = "> "
		labelStyle = SelectedStyle
	}

	if f.kind == importFieldSubmit {
		label := fmt.Sprintf("[ Import %d file(s) ]", m.form.Len())
		if m.form.Len() == 0 {
			return prefix + DisabledStyle.Render(label)
		}
		if focused {
			return prefix + SelectedStyle.Render(label)
		}
		return prefix + NormalStyle.Render(label)
	}
	if f.kind == importFieldFlag {
		on, _ := m.form.Flag(f.flag)
		box := "[ ]"
		if on {
			box = "[x]"
		}
		if f.flag == spray.FlagDelayedReplication {
			return prefix + DisabledStyle.Render(box+" "+flagLabels[f.flag]+" (fixed)")
		}
		return prefix + labelStyle.Render(box+" "+flagLabels[f.flag])
	}

	var value string
	switch f.kind {
	case importFieldGroup:
		value = renderChoice(v.DestGroup, m.groups, focused)
	case importFieldQueue:
		value = renderChoice(v.DFUServerQueue, m.queues, focused)
	case importFieldPrefix:
		value = renderInput(v.NamePrefix, focused)
	case importFieldTarget:
		value = renderInput(v.SelectedFiles[f.row].TargetName, focused)
	case importFieldRowPath:
		value = renderInput(v.SelectedFiles[f.row].TargetRowPath, focused)
	case importFieldFormat:
		value = NormalStyle.Render("‹ " + v.SourceFormat.String() + " ›")
	case importFieldMaxRecord:
		value = renderInput(v.SourceMaxRecordSize, focused)
	case importFieldExpire:
		value = renderInput(v.ExpireDays, focused)
	}

	line := prefix + labelStyle.Render(fmt.Sprintf("%-18s", m.fieldLabel(f))) + value
	if msg := m.form.Error(fieldKey(f)); msg != "" {
		line += "\n    " + ErrorStyle.Render(msg)
	}
	return line
}

func renderChoice(value string, options []string, focused bool) string {
	if len(options) == 0 {
		return renderInput(value, focused)
	}
	if value == "" {
		return MutedStyle.Render("‹ select ›")
	}
	return NormalStyle.Render("‹ " + components.SanitizeOneLine(value) + " ›")
}

func renderInput(value string, focused bool) string {
	value = components.SanitizeOneLine(value)
	if focused {
		return NormalStyle.Render(value) + AccentStyle.Render("█")
	}
	if value == "" {
		return MutedStyle.Render("-")
	}
	return NormalStyle.Render(value)
}

func (m ImportJSONModel) renderOutcomes() string {
	lines := make([]string, 0, len(m.outcomes))
	for _, o := range m.outcomes {
		src := components.SanitizeOneLine(o.Request.SourcePath)
		target := components.SanitizeOneLine(o.Request.DestLogicalName)
		switch {
		case o.Err != nil:
			lines = append(lines, ErrorStyle.Render("✗ "+src)+MutedStyle.Render(": ")+
				NormalStyle.Render(components.SanitizeOneLine(o.Err.Error())))
		case o.WUID == "":
			lines = append(lines, WarningStyle.Render("• "+src+" → "+target+" (no workunit returned)"))
		default:
			lines = append(lines, SuccessStyle.Render("✓ "+src+" → "+target)+"  "+AccentStyle.Render(o.WUID))
		}
	}
	return strings.Join(lines, "\n")
}
