package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/vws/internal/state"
)

const defaultWaitTick = 100 * time.Millisecond

// WaitOptions configures the processing-wait view.
type WaitOptions struct {
	Store     *state.Store
	ThemeName string
	// Tick is how often the view re-reads the store.
	Tick time.Duration
	// Cancel is called when the user quits before the wait finishes.
	Cancel context.CancelFunc
}

// WaitModel watches a processing wait through a state.Store.
type WaitModel struct {
	store   *state.Store
	cancel  context.CancelFunc
	tick    time.Duration
	theme   Theme
	styles  Styles
	spinner spinner.Model

	snapshot  state.Snapshot
	width     int
	cancelled bool
	done      bool
}

// NewWaitModel creates the view model.
func NewWaitModel(opts WaitOptions) WaitModel {
	tick := opts.Tick
	if tick <= 0 {
		tick = defaultWaitTick
	}
	th := GetTheme(opts.ThemeName)
	styles := th.Styles()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.InfoText

	return WaitModel{
		store:   opts.Store,
		cancel:  opts.Cancel,
		tick:    tick,
		theme:   th,
		styles:  styles,
		spinner: sp,
	}
}

// Init implements tea.Model.
func (m WaitModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, tickCmd(m.tick)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m WaitModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.cancelled = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tickMsg:
		if m.store == nil {
			return m, nil
		}
		return m, tea.Batch(fetchSnapshotCmd(m.store), tickCmd(m.tick))

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		if m.snapshot.Done {
			m.done = true
			return m, tea.Quit
		}
		return m, nil
	}
	return m, nil
}

// View implements tea.Model.
func (m WaitModel) View() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	snap := m.snapshot
	elapsed := snap.Elapsed(time.Now()).Round(100 * time.Millisecond)
	status := string(snap.LastStatus())
	if status == "" {
		status = "waiting"
	}

	switch {
	case m.done && snap.LastError != nil:
		b.WriteString(m.styles.DangerText.Render("✗ "))
		b.WriteString(m.styles.Text.Render(snap.LastError.Error()))
	case m.done:
		b.WriteString(m.styles.SuccessText.Render("✓ "))
		b.WriteString(m.styles.StatusStyle(status).Render(status))
		b.WriteString(m.styles.MutedText.Render(fmt.Sprintf("  after %d polls, %s", snap.Attempts(), elapsed)))
	case m.cancelled:
		b.WriteString(m.styles.WarningText.Render("cancelled"))
	default:
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(m.styles.StatusStyle(status).Render(status))
		b.WriteString(m.styles.MutedText.Render(fmt.Sprintf("  poll %d, %s", snap.Attempts(), elapsed)))
	}
	b.WriteString("\n")
	if !m.done && !m.cancelled {
		b.WriteString(m.styles.Footer.Render("q to stop waiting"))
		b.WriteString("\n")
	}
	return b.String()
}

func (m WaitModel) renderHeader() string {
	bg := NewBgStyle(m.theme.Surface)
	parts := []string{
		bg.Render("vwsctl", m.styles.AccentText),
		bg.Render("wait", m.styles.Text),
	}
	if m.snapshot.TargetID != "" {
		parts = append(parts, bg.Render(m.snapshot.TargetID, m.styles.MutedText))
	}
	line := bg.Join(parts, " · ")
	width := m.width
	if width <= 0 {
		width = lipgloss.Width(line) + 2
	}
	return bg.FillLine(" "+line, width)
}

// Cancelled reports whether the user quit before the wait finished.
func (m WaitModel) Cancelled() bool { return m.cancelled }

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// RunWait starts the wait view and blocks until the wait finishes or the
// user quits. stopped reports that the user quit first.
func RunWait(opts WaitOptions) (stopped bool, err error) {
	p := tea.NewProgram(NewWaitModel(opts))
	final, err := p.Run()
	if err != nil {
		return false, err
	}
	m, ok := final.(WaitModel)
	return ok && m.Cancelled(), nil
}
