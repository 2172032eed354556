package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/kudlit/internal/claim"
	"github.com/verte-zerg/kudlit/internal/ledger"
	"github.com/verte-zerg/kudlit/internal/period"
	"github.com/verte-zerg/kudlit/internal/quest"
	"github.com/verte-zerg/kudlit/internal/rewards"
	"github.com/verte-zerg/kudlit/internal/store"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	st := store.NewMemory()
	clock := period.FixedClock{T: time.Date(2025, 3, 5, 8, 0, 0, 0, time.UTC)}
	svc, err := rewards.New(ledger.New(st), claim.New(st), rewards.WithClock(clock))
	if err != nil {
		t.Fatalf("rewards: %v", err)
	}
	return NewModel(context.Background(), svc, nil, "u1")
}

func typeText(m *Model, s string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func TestPadDecodesWhileTyping(t *testing.T) {
	m := newTestModel(t)
	typeText(m, "ᜃᜒᜆ")
	if m.result.Text != "kita" {
		t.Fatalf("decoded %q, want kita", m.result.Text)
	}
	if !strings.Contains(m.View(), "Quests") {
		t.Fatalf("view missing tabs")
	}
}

func TestSubmitRecordsTransliteration(t *testing.T) {
	m := newTestModel(t)
	typeText(m, "ᜃ")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("expected record command")
	}
	msg := cmd()
	if rec, ok := msg.(recordedMsg); !ok || rec.err != nil {
		t.Fatalf("unexpected message %#v", msg)
	}
	if m.input.Value() != "" {
		t.Fatalf("input should be cleared after submit")
	}

	msg = m.loadBoardCmd()()
	m.Update(msg)
	for _, st := range m.board.Quests {
		if st.Quest.ID == "transliterate_3" && st.Progress != 1 {
			t.Fatalf("expected progress 1, got %d", st.Progress)
		}
	}
}

func TestSubmitIgnoresLatinInput(t *testing.T) {
	m := newTestModel(t)
	typeText(m, "hello")
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Fatalf("latin input should not be recorded")
	}
	if m.status != "Nothing to transliterate" {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func TestClaimFromBoard(t *testing.T) {
	m := newTestModel(t)
	m.Update(m.loginCmd()())
	m.Update(m.loadBoardCmd()())
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.activeTab != tabQuests {
		t.Fatalf("tab did not switch")
	}
	st, ok := m.selectedQuest()
	if !ok || st.Quest.ID != "daily_login" || st.State != quest.Completed {
		t.Fatalf("unexpected selection %+v", st)
	}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	if cmd == nil {
		t.Fatalf("expected claim command")
	}
	msg := cmd()
	cm, ok := msg.(claimMsg)
	if !ok || !cm.outcome.Claimed || cm.outcome.Points != 2 {
		t.Fatalf("unexpected claim result %#v", msg)
	}
	m.Update(cm)
	if !strings.Contains(m.status, "+2 points") {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func TestSupersededBoardIsIgnored(t *testing.T) {
	m := newTestModel(t)
	m.Update(boardMsg{err: ledger.ErrSuperseded})
	if m.errMsg != "" {
		t.Fatalf("superseded load must not surface an error")
	}
}

func TestUnavailableStoreMessage(t *testing.T) {
	m := newTestModel(t)
	m.Update(boardMsg{err: store.ErrStoreUnavailable})
	if m.errMsg != "Progress unavailable, try again later" {
		t.Fatalf("unexpected error message %q", m.errMsg)
	}
	if !strings.Contains(m.renderFooter(), "Progress unavailable") {
		t.Fatalf("footer should show the error")
	}
}
