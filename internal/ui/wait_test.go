package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/vws/internal/state"
	"github.com/five82/vws/vws"
)

func TestWaitModel_QuitsWhenStoreIsDone(t *testing.T) {
	var store state.Store
	store.Start("abc")
	store.Observe(1, vws.StatusProcessing)

	m := NewWaitModel(WaitOptions{Store: &store})
	next, cmd := m.Update(snapshotMsg(store.Snapshot()))
	m = next.(WaitModel)
	if cmd != nil {
		t.Fatalf("Update returned a command before the wait finished")
	}
	if view := m.View(); !strings.Contains(view, "processing") || !strings.Contains(view, "poll 1") {
		t.Fatalf("View = %q, want processing poll 1", view)
	}

	store.Observe(2, vws.StatusSuccess)
	store.Finish(&vws.TargetStatusAndRecord{Status: vws.StatusSuccess}, nil)
	next, cmd = m.Update(snapshotMsg(store.Snapshot()))
	m = next.(WaitModel)
	if cmd == nil {
		t.Fatalf("Update returned nil command, want quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("command did not quit")
	}
	if view := m.View(); !strings.Contains(view, "success") || !strings.Contains(view, "after 2 polls") {
		t.Fatalf("View = %q, want success after 2 polls", view)
	}
}

func TestWaitModel_ShowsError(t *testing.T) {
	var store state.Store
	store.Start("abc")
	store.Finish(nil, errors.New("UnknownTarget"))

	m := NewWaitModel(WaitOptions{Store: &store})
	next, _ := m.Update(snapshotMsg(store.Snapshot()))
	if view := next.(WaitModel).View(); !strings.Contains(view, "UnknownTarget") {
		t.Fatalf("View = %q, want error", view)
	}
}

func TestWaitModel_QuitCancels(t *testing.T) {
	cancelled := false
	m := NewWaitModel(WaitOptions{Cancel: func() { cancelled = true }})

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if !cancelled {
		t.Fatalf("cancel was not called")
	}
	if !next.(WaitModel).Cancelled() {
		t.Fatalf("Cancelled() = false after q")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("q did not quit")
	}
}

func TestWaitModel_IgnoresOtherKeys(t *testing.T) {
	m := NewWaitModel(WaitOptions{})
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if cmd != nil || next.(WaitModel).Cancelled() {
		t.Fatalf("unexpected reaction to x")
	}
}
