// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Thermoquad/pedalsync/pkg/pedal"
)

//////////////////////////////////////////////////////////////
// Constants
//////////////////////////////////////////////////////////////

const (
	maxLogEntries = 100
	logHeight     = 8
	listWidth     = 34
)

// Modes
const (
	modeBrowse = iota
	modeEditSlot
	modeRenameBank
	modeConfirmDelete
)

// Slot form fields
const (
	fieldName = iota
	fieldType
	fieldValue1
	fieldValue2
	fieldHoldType
	fieldHoldValue1
	fieldHoldValue2
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Name", "Type", "Value 1", "Value 2", "Hold type", "Hold value 1", "Hold value 2",
}

//////////////////////////////////////////////////////////////
// Types
//////////////////////////////////////////////////////////////

// slotItem is one row of the slot list: a footswitch of the current bank
// or a global slot
type slotItem struct {
	global   bool
	index    int // position within the bank, or global id
	slot     pedal.Slot
	reported bool
}

// Implement list.Item interface
func (s slotItem) Title() string {
	label := fmt.Sprintf("Switch %d", s.index+1)
	if s.global {
		label = fmt.Sprintf("Global %d", s.index)
	}
	if !s.reported {
		return label + ": (not loaded)"
	}
	return fmt.Sprintf("%s: %s", label, strings.TrimSpace(s.slot.Name))
}

func (s slotItem) Description() string {
	if !s.reported {
		return ""
	}
	desc := pedal.DescribeAction(s.slot.Type, s.slot.Value1, s.slot.Value2)
	lp := s.slot.LongPress
	if !s.global && lp.Type != pedal.ActionNone && lp.Type != 0 {
		desc += " | hold: " + pedal.DescribeAction(lp.Type, lp.Value1, lp.Value2)
	}
	return desc
}

func (s slotItem) FilterValue() string { return s.slot.Name }

type logEntry struct {
	timestamp time.Time
	message   string
	isError   bool
}

// editModel is the Bubble Tea model for the edit TUI
type editModel struct {
	connMgr  *connectionManager
	store    *pedal.Store
	connInfo string

	slotList list.Model
	spinner  spinner.Model

	mode       int
	form       [fieldCount]textinput.Model
	formField  int
	formTarget slotItem
	formBank   int
	bankInput  textinput.Model

	eventLog []logEntry

	width          int
	height         int
	loading        bool
	quitting       bool
	connectionLost bool
}

//////////////////////////////////////////////////////////////
// Messages
//////////////////////////////////////////////////////////////

type editTickMsg time.Time

type storeChangedMsg struct{}

type noticeMsg pedal.Notice

type syncDoneMsg pedal.SyncResult

type commandDoneMsg struct {
	action string
	err    error
}

type connectionLostMsg struct {
	err error
}

type reconnectedMsg struct {
	connInfo string
}

//////////////////////////////////////////////////////////////
// Model Initialization
//////////////////////////////////////////////////////////////

func initialEditModel(connMgr *connectionManager) editModel {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	delegate.SetHeight(2)
	slotList := list.New([]list.Item{}, delegate, listWidth, 14)
	slotList.Title = "Slots"
	slotList.SetShowStatusBar(false)
	slotList.SetShowHelp(false)
	slotList.SetFilteringEnabled(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	var form [fieldCount]textinput.Model
	for i := range form {
		ti := textinput.New()
		ti.Width = 12
		ti.CharLimit = 4
		form[i] = ti
	}
	form[fieldName].Placeholder = "NAME"
	form[fieldType].Placeholder = "P"
	form[fieldType].CharLimit = 1
	form[fieldHoldType].Placeholder = "N"
	form[fieldHoldType].CharLimit = 1
	for _, f := range []int{fieldValue1, fieldValue2, fieldHoldValue1, fieldHoldValue2} {
		form[f].Placeholder = "0"
		form[f].CharLimit = 5
	}

	bankInput := textinput.New()
	bankInput.Placeholder = "NAME"
	bankInput.CharLimit = pedal.BankNameWidth
	bankInput.Width = 12

	m := editModel{
		connMgr:   connMgr,
		store:     connMgr.store,
		connInfo:  connMgr.getConnInfo(),
		slotList:  slotList,
		spinner:   sp,
		form:      form,
		bankInput: bankInput,
		eventLog:  make([]logEntry, 0),
		width:     80,
		height:    24,
	}
	m.refreshSlots()
	return m
}

//////////////////////////////////////////////////////////////
// Bubble Tea Interface
//////////////////////////////////////////////////////////////

func (m editModel) Init() tea.Cmd {
	return tea.Batch(editTickCmd(), m.spinner.Tick, m.startCmd())
}

func editTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return editTickMsg(t)
	})
}

// startCmd greets the controller and loads the configuration
func (m editModel) startCmd() tea.Cmd {
	s := m.connMgr.getSession()
	return func() tea.Msg {
		if err := s.Hello(); err != nil {
			return commandDoneMsg{action: "HELLO", err: err}
		}
		s.Load()
		return nil
	}
}

func (m editModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.slotList.SetSize(listWidth, max(6, m.height-logHeight-10))

	case editTickMsg:
		return m, editTickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case storeChangedMsg:
		m.loading = m.connMgr.getSession().Loading()
		m.refreshSlots()

	case noticeMsg:
		m.addLogEntry(msg.Text, msg.Level == pedal.NoticeError)

	case syncDoneMsg:
		m.loading = false
		m.refreshSlots()

	case commandDoneMsg:
		if msg.err != nil {
			m.addLogEntry(fmt.Sprintf("%s failed: %v", msg.action, msg.err), true)
		}

	case connectionLostMsg:
		m.connectionLost = true
		m.loading = false
		m.addLogEntry(fmt.Sprintf("Connection lost (%v) - reconnecting...", msg.err), true)

	case reconnectedMsg:
		m.connectionLost = false
		m.connInfo = msg.connInfo
		m.addLogEntry("Reconnected - reloading", false)
	}

	if m.mode == modeBrowse {
		var cmd tea.Cmd
		m.slotList, cmd = m.slotList.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m editModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.mode {
	case modeEditSlot:
		return m.handleFormKey(msg)
	case modeRenameBank:
		return m.handleRenameKey(msg)
	case modeConfirmDelete:
		return m.handleConfirmKey(msg)
	}

	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "left", "h":
		m.store.Previous()
		m.refreshSlots()
		return m, nil

	case "right", "l":
		m.store.Next()
		m.refreshSlots()
		return m, nil

	case "r":
		return m.reload()

	case "a":
		if !m.canSend() {
			return m, nil
		}
		if m.store.ActiveBanks() >= pedal.MaxBanks {
			m.addLogEntry(fmt.Sprintf("Bank limit reached (%d)", pedal.MaxBanks), true)
			return m, nil
		}
		s := m.connMgr.getSession()
		return m, runCommand("ADDBANK", s.AddBank)

	case "d":
		if !m.canSend() {
			return m, nil
		}
		if m.store.ActiveBanks() <= 1 {
			m.addLogEntry("Cannot delete the last bank", true)
			return m, nil
		}
		m.mode = modeConfirmDelete
		return m, nil

	case "n":
		if !m.canSend() || m.store.ActiveBanks() == 0 {
			return m, nil
		}
		name, _ := m.store.BankName(m.store.CurrentBank())
		m.bankInput.SetValue(strings.TrimSpace(name))
		m.mode = modeRenameBank
		return m, m.bankInput.Focus()

	case "enter":
		item, ok := m.slotList.SelectedItem().(slotItem)
		if !ok || !m.canSend() {
			return m, nil
		}
		return m.openForm(item)
	}

	var cmd tea.Cmd
	m.slotList, cmd = m.slotList.Update(msg)
	return m, cmd
}

func (m editModel) reload() (tea.Model, tea.Cmd) {
	if m.connectionLost {
		m.addLogEntry("Cannot reload: connection lost", true)
		return m, nil
	}
	s := m.connMgr.getSession()
	if s.Loading() {
		m.addLogEntry(pedal.ErrSyncBusy.Error(), true)
		return m, nil
	}
	m.loading = true
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		if !s.Load() {
			return commandDoneMsg{action: "Reload", err: pedal.ErrSyncBusy}
		}
		return nil
	})
}

//////////////////////////////////////////////////////////////
// Slot Form
//////////////////////////////////////////////////////////////

func (m editModel) openForm(item slotItem) (tea.Model, tea.Cmd) {
	slot := item.slot
	if !item.reported {
		slot = pedal.Slot{Type: pedal.ActionPreset, LongPress: pedal.NoLongPress}
	}
	lp := slot.LongPress
	if lp.Type == 0 {
		lp = pedal.NoLongPress
	}

	values := [fieldCount]string{
		strings.TrimSpace(slot.Name),
		slot.Type.String(),
		strconv.Itoa(slot.Value1),
		strconv.Itoa(slot.Value2),
		lp.Type.String(),
		strconv.Itoa(lp.Value1),
		strconv.Itoa(lp.Value2),
	}
	for i := range m.form {
		m.form[i].SetValue(values[i])
		m.form[i].Blur()
	}

	m.formTarget = item
	m.formBank = m.store.CurrentBank()
	m.formField = fieldName
	m.mode = modeEditSlot
	return m, m.form[fieldName].Focus()
}

// formFields is the number of form fields in use; globals have no long press
func (m editModel) formFields() int {
	if m.formTarget.global {
		return fieldHoldType
	}
	return fieldCount
}

func (m editModel) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeForm()
		return m, nil

	case "tab", "down":
		return m, m.focusField((m.formField + 1) % m.formFields())

	case "shift+tab", "up":
		return m, m.focusField((m.formField - 1 + m.formFields()) % m.formFields())

	case "enter":
		return m.submitForm()
	}

	var cmd tea.Cmd
	m.form[m.formField], cmd = m.form[m.formField].Update(msg)
	return m, cmd
}

func (m *editModel) focusField(field int) tea.Cmd {
	m.form[m.formField].Blur()
	m.formField = field
	return m.form[field].Focus()
}

func (m *editModel) closeForm() {
	for i := range m.form {
		m.form[i].Blur()
	}
	m.mode = modeBrowse
}

func (m editModel) submitForm() (tea.Model, tea.Cmd) {
	slot, err := m.formSlot()
	if err != nil {
		m.addLogEntry(err.Error(), true)
		return m, nil
	}

	target := m.formTarget
	bank := m.formBank
	s := m.connMgr.getSession()
	m.closeForm()

	if target.global {
		g := pedal.GlobalSlot{Name: slot.Name, Type: slot.Type, Value1: slot.Value1, Value2: slot.Value2}
		if errs := pedal.ValidateGlobal(g); len(errs) > 0 {
			m.addLogEntry(errs[0].Message, true)
			return m, nil
		}
		return m, runCommand("SAVEGLO", func() error { return s.SaveGlobal(target.index, g) })
	}

	if errs := pedal.ValidateSlot(slot); len(errs) > 0 {
		m.addLogEntry(errs[0].Message, true)
		return m, nil
	}
	return m, runCommand("SAVE", func() error { return s.SaveSlot(bank, target.index, slot) })
}

// formSlot reads the form into a slot
func (m editModel) formSlot() (pedal.Slot, error) {
	var values [fieldCount]int
	for _, f := range []int{fieldValue1, fieldValue2, fieldHoldValue1, fieldHoldValue2} {
		raw := strings.TrimSpace(m.form[f].Value())
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return pedal.Slot{}, fmt.Errorf("%s: %q is not a number", fieldLabels[f], raw)
		}
		values[f] = n
	}

	t, err := parseActionType(m.form[fieldType].Value())
	if err != nil {
		return pedal.Slot{}, err
	}
	slot := pedal.Slot{
		Name:      m.form[fieldName].Value(),
		Type:      t,
		Value1:    values[fieldValue1],
		Value2:    values[fieldValue2],
		LongPress: pedal.NoLongPress,
	}

	if !m.formTarget.global {
		holdType := m.form[fieldHoldType].Value()
		if strings.TrimSpace(holdType) == "" {
			holdType = "N"
		}
		lt, err := parseActionType(holdType)
		if err != nil {
			return pedal.Slot{}, fmt.Errorf("hold: %w", err)
		}
		slot.LongPress = pedal.LongPress{Type: lt, Value1: values[fieldHoldValue1], Value2: values[fieldHoldValue2]}
	}
	return slot, nil
}

//////////////////////////////////////////////////////////////
// Bank Rename and Delete
//////////////////////////////////////////////////////////////

func (m editModel) handleRenameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.bankInput.Blur()
		m.mode = modeBrowse
		return m, nil

	case "enter":
		name := m.bankInput.Value()
		bank := m.store.CurrentBank()
		s := m.connMgr.getSession()
		m.bankInput.Blur()
		m.mode = modeBrowse
		return m, runCommand("SAVEBANK", func() error { return s.RenameBank(bank, name) })
	}

	var cmd tea.Cmd
	m.bankInput, cmd = m.bankInput.Update(msg)
	return m, cmd
}

func (m editModel) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = modeBrowse
	if msg.String() != "y" {
		m.addLogEntry("Delete cancelled", false)
		return m, nil
	}
	bank := m.store.CurrentBank()
	s := m.connMgr.getSession()
	return m, runCommand("DELBANK", func() error { return s.DeleteBank(bank) })
}

//////////////////////////////////////////////////////////////
// Commands
//////////////////////////////////////////////////////////////

// runCommand runs a session call off the program goroutine; session hooks
// send messages to the program and must not be called from Update
func runCommand(action string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		err := fn()
		if errors.Is(err, pedal.ErrNoBanks) {
			err = fmt.Errorf("%w: press r to load", err)
		}
		return commandDoneMsg{action: action, err: err}
	}
}

func (m *editModel) canSend() bool {
	if m.connectionLost {
		m.addLogEntry("Cannot send command: connection lost", true)
		return false
	}
	return true
}

//////////////////////////////////////////////////////////////
// View
//////////////////////////////////////////////////////////////

func (m editModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	var s strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	focusedBoxStyle := boxStyle.
		BorderForeground(lipgloss.Color("12"))

	// Header
	s.WriteString(titleStyle.Render("PEDALSYNC"))
	s.WriteString(" ")
	connStatus := m.connInfo
	if m.connectionLost {
		connStatus = warningStyle.Render("RECONNECTING...")
	}
	s.WriteString(headerStyle.Render(fmt.Sprintf("| %s | %s", connStatus, m.helpText())))
	s.WriteString("\n")
	if device := m.store.Device(); device != "" {
		s.WriteString(fmt.Sprintf(" %s %s", labelStyle.Render("Device:"), valueStyle.Render(device)))
	}
	if m.loading {
		s.WriteString(fmt.Sprintf("  %s %s", m.spinner.View(), warningStyle.Render("Loading configuration...")))
	}
	s.WriteString("\n\n")

	// Bank bar
	s.WriteString(m.renderBankBar(labelStyle, valueStyle, headerStyle, boxStyle))
	s.WriteString("\n")

	// Slot list | detail panel
	listStyle := focusedBoxStyle.Width(listWidth)
	if m.mode != modeBrowse {
		listStyle = boxStyle.Width(listWidth)
	}
	slotPanel := listStyle.Render(m.slotList.View())

	rightWidth := max(30, m.width-listWidth-8)
	detailStyle := boxStyle.Width(rightWidth)
	if m.mode != modeBrowse {
		detailStyle = focusedBoxStyle.Width(rightWidth)
	}
	detailPanel := detailStyle.Render(m.renderDetail(labelStyle, valueStyle, headerStyle, errorStyle))

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, slotPanel, " ", detailPanel))
	s.WriteString("\n")

	s.WriteString(m.renderStatisticsBar(labelStyle, valueStyle, errorStyle, boxStyle))
	s.WriteString("\n")

	s.WriteString(m.renderEventLog(labelStyle, warningStyle, boxStyle))

	return s.String()
}

func (m editModel) helpText() string {
	switch m.mode {
	case modeEditSlot:
		return "Tab=next field Enter=save Esc=cancel"
	case modeRenameBank:
		return "Enter=rename Esc=cancel"
	case modeConfirmDelete:
		return "y=delete any key=cancel"
	}
	return "q=quit ←/→=bank Enter=edit n=rename a=add d=delete r=reload"
}

//////////////////////////////////////////////////////////////
// View Helpers
//////////////////////////////////////////////////////////////

func (m editModel) renderBankBar(labelStyle, valueStyle, headerStyle, boxStyle lipgloss.Style) string {
	banks := m.store.Banks()
	if len(banks) == 0 {
		return boxStyle.Width(m.width - 4).Render(headerStyle.Render("No banks loaded"))
	}

	current := m.store.CurrentBank()
	parts := make([]string, 0, len(banks))
	for _, bank := range banks {
		name := strings.TrimSpace(bank.Name)
		if name == "" {
			name = "?"
		}
		label := fmt.Sprintf("%d %s", bank.Index, name)
		if bank.Index == current {
			parts = append(parts, valueStyle.Render("["+label+"]"))
		} else {
			parts = append(parts, headerStyle.Render(" "+label+" "))
		}
	}

	content := fmt.Sprintf("%s %s  %s",
		labelStyle.Render("BANK"),
		strings.Join(parts, " "),
		headerStyle.Render(fmt.Sprintf("(%d/%d)", len(banks), pedal.MaxBanks)))
	return boxStyle.Width(m.width - 4).Render(content)
}

func (m editModel) renderDetail(labelStyle, valueStyle, headerStyle, errorStyle lipgloss.Style) string {
	var s strings.Builder

	switch m.mode {
	case modeEditSlot:
		title := fmt.Sprintf("Edit bank %d switch %d", m.formBank, m.formTarget.index+1)
		if m.formTarget.global {
			title = fmt.Sprintf("Edit global %d", m.formTarget.index)
		}
		s.WriteString(labelStyle.Render(title))
		s.WriteString("\n\n")
		for i := 0; i < m.formFields(); i++ {
			s.WriteString(fmt.Sprintf("%-13s %s\n", fieldLabels[i]+":", m.form[i].View()))
		}
		s.WriteString("\n")
		s.WriteString(headerStyle.Render("Types: P=program D=effect C=CC (hold) N=none (hold)"))
		return s.String()

	case modeRenameBank:
		s.WriteString(labelStyle.Render(fmt.Sprintf("Rename bank %d", m.store.CurrentBank())))
		s.WriteString("\n\n")
		s.WriteString(m.bankInput.View())
		return s.String()

	case modeConfirmDelete:
		name, _ := m.store.BankName(m.store.CurrentBank())
		s.WriteString(errorStyle.Render(fmt.Sprintf("Delete bank %d (%s)?", m.store.CurrentBank(), strings.TrimSpace(name))))
		s.WriteString("\n\nLater banks move down by one. Press y to confirm.")
		return s.String()
	}

	item, ok := m.slotList.SelectedItem().(slotItem)
	if !ok || !item.reported {
		s.WriteString(headerStyle.Render("No slot selected"))
		return s.String()
	}

	s.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Name:"), valueStyle.Render(strings.TrimSpace(item.slot.Name))))
	s.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Action:"), item.slot.Type.Label()))
	s.WriteString(fmt.Sprintf("  %s\n", pedal.DescribeAction(item.slot.Type, item.slot.Value1, item.slot.Value2)))
	if item.slot.Type == pedal.ActionDictionary {
		if fx, ok := pedal.LookupEffect(item.slot.Value1); ok {
			s.WriteString(fmt.Sprintf("  %s (CC %d)\n", fx.Description, fx.CC))
		}
	}
	if !item.global {
		lp := item.slot.LongPress
		s.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Hold:"), lp.Type.Label()))
		if lp.Type != pedal.ActionNone && lp.Type != 0 {
			s.WriteString(fmt.Sprintf("  %s\n", pedal.DescribeAction(lp.Type, lp.Value1, lp.Value2)))
		}
	}
	if errs := pedal.ValidateSlot(item.slot); len(errs) > 0 {
		s.WriteString("\n")
		s.WriteString(errorStyle.Render(errs[0].Message))
	}
	return s.String()
}

func (m editModel) renderStatisticsBar(labelStyle, valueStyle, errorStyle, boxStyle lipgloss.Style) string {
	stats := m.connMgr.statistics()

	deviceErrors := valueStyle.Render("0")
	if stats.DeviceErrors > 0 {
		deviceErrors = errorStyle.Render(fmt.Sprintf("%d", stats.DeviceErrors))
	}

	content := fmt.Sprintf("%s %s  %s %s  %s %s  %s %s  %s %s",
		labelStyle.Render("Lines:"), valueStyle.Render(fmt.Sprintf("%d", stats.TotalLines)),
		labelStyle.Render("Loads:"), valueStyle.Render(fmt.Sprintf("%d", stats.CompleteSyncs)),
		labelStyle.Render("Acks:"), valueStyle.Render(fmt.Sprintf("%d", stats.Acks)),
		labelStyle.Render("Errors:"), deviceErrors,
		labelStyle.Render("Rate:"), valueStyle.Render(fmt.Sprintf("%.1f lines/s", stats.LineRate)),
	)
	return boxStyle.Width(m.width - 4).Render(content)
}

func (m editModel) renderEventLog(labelStyle, warningStyle, boxStyle lipgloss.Style) string {
	var s strings.Builder

	s.WriteString(labelStyle.Render("EVENTS"))
	s.WriteString("\n")

	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

	if len(m.eventLog) == 0 {
		s.WriteString(headerStyle.Render("  (no events yet)"))
		return boxStyle.Width(m.width - 4).Render(s.String())
	}

	start := max(0, len(m.eventLog)-logHeight)
	for _, entry := range m.eventLog[start:] {
		icon := "i"
		style := warningStyle
		if entry.isError {
			icon = "x"
			style = errorStyle
		}
		s.WriteString(fmt.Sprintf("%s %s %s\n",
			headerStyle.Render(entry.timestamp.Format("15:04:05.000")),
			style.Render(icon),
			entry.message))
	}

	return boxStyle.Width(m.width - 4).Render(s.String())
}

//////////////////////////////////////////////////////////////
// Helpers
//////////////////////////////////////////////////////////////

func (m *editModel) addLogEntry(message string, isError bool) {
	m.eventLog = append(m.eventLog, logEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	})
	if len(m.eventLog) > maxLogEntries {
		m.eventLog = m.eventLog[len(m.eventLog)-maxLogEntries:]
	}
}

// refreshSlots rebuilds the slot list from the store for the current bank
func (m *editModel) refreshSlots() {
	m.slotList.SetItems(slotItems(m.store))
	bank := m.store.CurrentBank()
	name, _ := m.store.BankName(bank)
	if m.store.ActiveBanks() == 0 {
		m.slotList.Title = "Slots"
	} else {
		m.slotList.Title = fmt.Sprintf("Bank %d: %s", bank, strings.TrimSpace(name))
	}
}

// slotItems lists the current bank's switches followed by the global slots
func slotItems(store *pedal.Store) []list.Item {
	items := make([]list.Item, 0, pedal.SlotsPerBank+pedal.GlobalSlotCount)
	if store.ActiveBanks() > 0 {
		bank := store.CurrentBank()
		for p := 0; p < pedal.SlotsPerBank; p++ {
			slot, ok := store.Slot(bank, p)
			items = append(items, slotItem{index: p, slot: slot, reported: ok})
		}
	}
	for id := 0; id < pedal.GlobalSlotCount; id++ {
		g, ok := store.Global(id)
		slot := pedal.Slot{Name: g.Name, Type: g.Type, Value1: g.Value1, Value2: g.Value2}
		items = append(items, slotItem{global: true, index: id, slot: slot, reported: ok})
	}
	return items
}
