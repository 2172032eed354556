// Package tui provides the Bubble Tea transliteration pad and quest board.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/kudlit/internal/ledger"
	"github.com/verte-zerg/kudlit/internal/notify"
	"github.com/verte-zerg/kudlit/internal/quest"
	"github.com/verte-zerg/kudlit/internal/report"
	"github.com/verte-zerg/kudlit/internal/rewards"
	"github.com/verte-zerg/kudlit/internal/script"
	"github.com/verte-zerg/kudlit/internal/store"
)

const (
	tabPad = iota
	tabQuests
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	latinStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

type boardMsg struct {
	board rewards.Board
	err   error
}

type loginMsg struct {
	outcome rewards.LoginOutcome
	err     error
}

type recordedMsg struct {
	err error
}

type claimMsg struct {
	questID string
	outcome rewards.ClaimOutcome
	err     error
}

type eventMsg struct {
	event notify.Event
}

type eventsClosedMsg struct{}

// Model implements the Bubble Tea UI.
type Model struct {
	ctx    context.Context
	svc    *rewards.Service
	boards *rewards.BoardLoader
	events <-chan notify.Event
	uid    string

	width  int
	height int

	tabs      []string
	activeTab int

	input    textinput.Model
	result   script.Result
	warnings []string

	board      rewards.Board
	questTable table.Model

	status string
	errMsg string
}

// NewModel constructs the UI for uid. Events for uid on the channel trigger
// a quest board reload; a nil channel disables that.
func NewModel(ctx context.Context, svc *rewards.Service, events <-chan notify.Event, uid string) *Model {
	input := textinput.New()
	input.Prompt = "ᜊᜌ᜔ᜊᜌᜒᜈ᜔ › "
	input.Placeholder = "type or paste Baybayin"
	input.CharLimit = 0
	input.Focus()

	m := &Model{
		ctx:    ctx,
		svc:    svc,
		boards: svc.NewBoardLoader(),
		events: events,
		uid:    uid,
		tabs:   []string{"Pad", "Quests"},
		input:  input,
		result: script.DecodeDetailed(""),
	}
	m.questTable = buildQuestTable(nil, 0, 1)
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loginCmd(), m.waitEvent())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.boards.Reset()
			return m, tea.Quit
		case "tab", "shift+tab":
			m.switchTab()
			return m, nil
		}
		if m.activeTab == tabQuests {
			return m.updateBoard(msg)
		}
		return m.updatePad(msg)
	case loginMsg:
		if msg.err != nil {
			m.setErr("login", msg.err)
			return m, nil
		}
		if msg.outcome.FirstToday {
			m.status = fmt.Sprintf("Welcome back, streak %d", msg.outcome.Record.LoginStreak)
		}
		return m, m.loadBoardCmd()
	case boardMsg:
		if errors.Is(msg.err, ledger.ErrSuperseded) {
			return m, nil
		}
		if msg.err != nil {
			m.setErr("load quests", msg.err)
			return m, nil
		}
		m.errMsg = ""
		m.board = msg.board
		m.questTable.SetRows(questRows(msg.board.Quests))
		return m, nil
	case recordedMsg:
		if msg.err != nil {
			m.setErr("record transliteration", msg.err)
			return m, nil
		}
		m.status = "Transliteration recorded"
		return m, nil
	case claimMsg:
		switch {
		case errors.Is(msg.err, rewards.ErrQuestNotCompleted):
			m.status = "Quest not completed yet"
		case msg.err != nil:
			m.setErr("claim", msg.err)
		case msg.outcome.Claimed:
			m.status = fmt.Sprintf("Claimed %s: +%d points (total %d)", msg.questID, msg.outcome.Points, msg.outcome.TotalScore)
		default:
			m.status = fmt.Sprintf("%s already claimed", msg.questID)
		}
		return m, m.loadBoardCmd()
	case eventMsg:
		if msg.event.UserID == m.uid {
			return m, tea.Batch(m.loadBoardCmd(), m.waitEvent())
		}
		return m, m.waitEvent()
	case eventsClosedMsg:
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	header := m.renderTabs()
	var body string
	if m.activeTab == tabQuests {
		body = m.questTable.View()
	} else {
		body = m.renderPad()
	}
	footer := m.renderFooter()
	if m.width == 0 || m.height == 0 {
		return strings.Join([]string{header, body, footer}, "\n")
	}
	headerHeight := lipgloss.Height(header)
	bodyHeight := m.height - headerHeight - 1
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	body = lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Top, body)
	return header + "\n" + body + "\n" + footer
}

func (m *Model) updatePad(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.boards.Reset()
		return m, tea.Quit
	case "enter":
		return m, m.submit()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.redecode()
	return m, cmd
}

func (m *Model) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.boards.Reset()
		return m, tea.Quit
	case "c":
		st, ok := m.selectedQuest()
		if !ok {
			return m, nil
		}
		if st.State == quest.Claimed {
			m.status = fmt.Sprintf("%s already claimed", st.Quest.ID)
			return m, nil
		}
		return m, m.claimCmd(st.Quest.ID)
	case "r":
		return m, m.loadBoardCmd()
	}
	var cmd tea.Cmd
	m.questTable, cmd = m.questTable.Update(msg)
	return m, cmd
}

func (m *Model) submit() tea.Cmd {
	normalized, _ := script.Normalize(m.input.Value(), script.ToLatin)
	if !script.ContainsBaybayin(normalized) {
		m.status = "Nothing to transliterate"
		return nil
	}
	m.input.Reset()
	m.status = "Recording…"
	return m.recordCmd()
}

func (m *Model) redecode() {
	normalized, warnings := script.Normalize(m.input.Value(), script.ToLatin)
	m.result = script.DecodeDetailed(normalized)
	m.warnings = warnings
}

func (m *Model) switchTab() {
	m.activeTab = (m.activeTab + 1) % len(m.tabs)
	if m.activeTab == tabQuests {
		m.input.Blur()
		m.questTable.Focus()
	} else {
		m.questTable.Blur()
		m.input.Focus()
	}
}

func (m *Model) selectedQuest() (quest.Status, bool) {
	idx := m.questTable.Cursor()
	if idx < 0 || idx >= len(m.board.Quests) {
		return quest.Status{}, false
	}
	return m.board.Quests[idx], true
}

func (m *Model) setErr(op string, err error) {
	if errors.Is(err, store.ErrStoreUnavailable) {
		m.errMsg = "Progress unavailable, try again later"
		return
	}
	m.errMsg = fmt.Sprintf("Failed to %s: %v", op, err)
}

func (m *Model) layout() {
	m.input.Width = m.contentWidth() - lipgloss.Width(m.input.Prompt) - 1
	headerHeight := lipgloss.Height(m.renderTabs())
	height := m.height - headerHeight - 1
	if height < 2 {
		height = 2
	}
	m.questTable.SetWidth(m.width)
	m.questTable.SetHeight(height - 1)
}

func (m *Model) contentWidth() int {
	w := int(float64(m.width) * 0.70)
	if w < 1 {
		w = 1
	}
	return w
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderPad() string {
	lines := []string{m.input.View(), ""}
	styled := buildStyledRunes(m.result.Text, m.result.Empty())
	if m.width > 0 {
		lines = append(lines, wrapStyledRunes(styled, m.contentWidth()))
	} else {
		lines = append(lines, renderStyledRunes(styled))
	}
	for _, w := range m.warnings {
		lines = append(lines, warnStyle.Render(w))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderFooter() string {
	if m.errMsg != "" {
		return errorStyle.Render(m.errMsg)
	}
	rec := m.board.Snapshot.Record
	segments := []string{
		fmt.Sprintf("Score %d", rec.TotalScore),
		fmt.Sprintf("Streak %d", rec.LoginStreak),
	}
	if m.activeTab == tabQuests {
		segments = append(segments, "c claim · r reload · tab pad")
	} else {
		segments = append(segments, "enter record · tab quests")
	}
	if m.status != "" {
		segments = append(segments, m.status)
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) loginCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.svc.Login(m.ctx, m.uid)
		return loginMsg{outcome: out, err: err}
	}
}

func (m *Model) loadBoardCmd() tea.Cmd {
	return func() tea.Msg {
		board, err := m.boards.Load(m.ctx, m.uid)
		return boardMsg{board: board, err: err}
	}
}

func (m *Model) recordCmd() tea.Cmd {
	return func() tea.Msg {
		_, err := m.svc.Transliterated(m.ctx, m.uid)
		return recordedMsg{err: err}
	}
}

func (m *Model) claimCmd(questID string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.svc.Claim(m.ctx, m.uid, questID)
		return claimMsg{questID: questID, outcome: out, err: err}
	}
}

func (m *Model) waitEvent() tea.Cmd {
	if m.events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg{event: ev}
	}
}

func buildQuestTable(statuses []quest.Status, width, height int) table.Model {
	columns := []table.Column{
		{Title: "Quest", Width: 18},
		{Title: "Period", Width: 7},
		{Title: "Progress", Width: 21},
		{Title: "Points", Width: 6},
		{Title: "State", Width: 11},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(questRows(statuses)),
		table.WithHeight(maxInt(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(questTableStyles())
	return t
}

func questRows(statuses []quest.Status) []table.Row {
	rows := make([]table.Row, 0, len(statuses))
	for _, st := range statuses {
		rows = append(rows, table.Row{
			st.Quest.Title,
			string(st.Quest.Period),
			fmt.Sprintf("%s %d/%d", report.ProgressBar(st.Progress, st.Quest.Target, 10), st.Progress, st.Quest.Target),
			"+" + strconv.Itoa(st.Quest.Points),
			st.State.String(),
		})
	}
	return rows
}

func questTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
