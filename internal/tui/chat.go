// Package tui implements the interactive chat interface: a session
// drawer, the conversation transcript and a message input, rendered
// with bubbletea. All store and network work runs in commands so the
// update loop never blocks.
package tui

import (
	"context"
	"errors"
	"fmt"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/roamchat/roam/internal/models"
	"github.com/roamchat/roam/internal/service"
	"github.com/roamchat/roam/internal/session"
)

const drawerWidth = 28

// ChatService is the slice of the chat service the UI drives.
type ChatService interface {
	LoadRemote(ctx context.Context) int
	NewChat(ctx context.Context) string
	Open(ctx context.Context, id string) []models.Message
	Send(ctx context.Context, id, text string) ([]models.Message, error)
	Rename(ctx context.Context, id, title string) error
	Delete(ctx context.Context, id string) error
	Busy(id string) bool
}

type focusArea int

const (
	focusInput focusArea = iota
	focusDrawer
)

// hydratedMsg reports how many remote sessions were loaded.
type hydratedMsg struct {
	count int
}

// turnMsg carries the result of a conversation turn.
type turnMsg struct {
	id       string
	messages []models.Message
	err      error
}

// openedMsg carries the messages of a newly opened session.
type openedMsg struct {
	id       string
	messages []models.Message
}

type chatModel struct {
	ctx   context.Context
	svc   ChatService
	store *session.Store
	theme Theme
	user  string

	vp   viewport.Model
	ta   textarea.Model
	spin spinner.Model

	width  int
	height int

	focus       focusArea
	drawerIndex int
	renaming    bool
	waiting     bool
	status      string
	statusErr   bool
	quitting    bool
}

func newChatModel(ctx context.Context, svc ChatService, store *session.Store, user string) chatModel {
	theme := defaultTheme

	ta := textarea.New()
	ta.Placeholder = "Ask me anything about your trip..."
	ta.Prompt = "┃ "
	ta.ShowLineNumbers = false
	ta.CharLimit = 2000
	ta.SetHeight(3)

	spin := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(theme.titleStyle()),
	)

	return chatModel{
		ctx:   ctx,
		svc:   svc,
		store: store,
		theme: theme,
		user:  user,
		vp:    viewport.New(),
		ta:    ta,
		spin:  spin,
	}
}

func (m chatModel) Init() tea.Cmd {
	return tea.Batch(m.ta.Focus(), m.hydrate())
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.refreshTranscript()
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case hydratedMsg:
		if msg.count > 0 {
			m.status = fmt.Sprintf("Loaded %d saved sessions", msg.count)
		}
		if _, ok := m.store.Current(); !ok {
			if sessions := m.store.Sessions(); len(sessions) > 0 {
				return m, m.open(sessions[0].ID)
			}
			return m, m.newChat()
		}
		m.refreshTranscript()
		return m, nil

	case openedMsg:
		m.drawerIndex = m.indexOf(msg.id)
		m.refreshTranscript()
		m.vp.GotoBottom()
		return m, nil

	case turnMsg:
		m.waiting = false
		if msg.err != nil {
			m.statusErr = true
			switch {
			case errors.Is(msg.err, service.ErrBusy):
				m.status = "Still waiting for the previous reply"
			default:
				m.status = "Reply saved locally only: " + msg.err.Error()
			}
		}
		if cur, ok := m.store.Current(); ok && cur == msg.id {
			m.refreshTranscript()
			m.vp.GotoBottom()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m.updateComponents(msg)
}

func (m chatModel) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "tab":
		if m.renaming {
			break
		}
		if m.focus == focusInput {
			m.focus = focusDrawer
			m.ta.Blur()
			return m, nil
		}
		m.focus = focusInput
		return m, m.ta.Focus()

	case "ctrl+n":
		m.renaming = false
		return m, m.newChat()

	case "esc":
		if m.renaming {
			m.renaming = false
			m.ta.Reset()
			m.ta.Placeholder = "Ask me anything about your trip..."
			m.status = ""
			m.statusErr = false
		}
		return m, nil

	case "enter":
		if m.renaming {
			return m.finishRename()
		}
		if m.focus == focusDrawer {
			if sess, ok := m.drawerSelection(); ok {
				m.focus = focusInput
				return m, tea.Batch(m.ta.Focus(), m.open(sess.ID))
			}
			return m, nil
		}
		return m.submit()
	}

	if m.focus == focusDrawer && !m.renaming {
		switch msg.String() {
		case "up", "k":
			if m.drawerIndex > 0 {
				m.drawerIndex--
			}
			return m, nil
		case "down", "j":
			if m.drawerIndex < m.store.Len()-1 {
				m.drawerIndex++
			}
			return m, nil
		case "r":
			return m.startRename()
		case "d":
			return m.deleteSelected()
		}
		return m, nil
	}

	return m.updateComponents(msg)
}

func (m chatModel) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.ta, cmd = m.ta.Update(msg)
	cmds = append(cmds, cmd)
	m.vp, cmd = m.vp.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m chatModel) submit() (tea.Model, tea.Cmd) {
	id, ok := m.store.Current()
	if !ok {
		return m, m.newChat()
	}
	text := m.ta.Value()
	m.ta.Reset()

	if m.svc.Busy(id) {
		m.status = "Still waiting for the previous reply"
		return m, nil
	}

	m.waiting = true
	m.status = ""
	m.statusErr = false
	m.refreshTranscript()
	m.vp.GotoBottom()
	return m, tea.Batch(m.spin.Tick, m.send(id, text))
}

func (m chatModel) startRename() (tea.Model, tea.Cmd) {
	sess, ok := m.drawerSelection()
	if !ok {
		return m, nil
	}
	m.renaming = true
	m.ta.Reset()
	m.ta.Placeholder = "New title for " + sess.Title
	m.status = "Renaming " + sess.Title + " (enter to save, esc to cancel)"
	m.statusErr = false
	m.focus = focusInput
	return m, m.ta.Focus()
}

func (m chatModel) finishRename() (tea.Model, tea.Cmd) {
	sess, ok := m.drawerSelection()
	if !ok {
		m.renaming = false
		return m, nil
	}
	title := m.ta.Value()
	m.renaming = false
	m.ta.Reset()
	m.ta.Placeholder = "Ask me anything about your trip..."
	m.status = ""
	m.statusErr = false

	return m, func() tea.Msg {
		if err := m.svc.Rename(m.ctx, sess.ID, title); err != nil {
			return turnMsg{id: sess.ID, err: err}
		}
		return openedMsg{id: sess.ID}
	}
}

func (m chatModel) deleteSelected() (tea.Model, tea.Cmd) {
	sess, ok := m.drawerSelection()
	if !ok {
		return m, nil
	}
	if m.svc.Busy(sess.ID) {
		m.status = "Cannot delete while a reply is pending"
		return m, nil
	}
	if err := m.svc.Delete(m.ctx, sess.ID); err != nil {
		m.status = "Delete failed: " + err.Error()
		m.statusErr = true
		return m, nil
	}
	if m.drawerIndex >= m.store.Len() && m.drawerIndex > 0 {
		m.drawerIndex--
	}
	m.refreshTranscript()
	return m, nil
}

func (m *chatModel) resize() {
	transcriptWidth := m.width - drawerWidth - 4
	if transcriptWidth < 20 {
		transcriptWidth = 20
	}
	transcriptHeight := m.height - m.ta.Height() - 4
	if transcriptHeight < 3 {
		transcriptHeight = 3
	}

	m.vp.SetWidth(transcriptWidth)
	m.vp.SetHeight(transcriptHeight)
	m.ta.SetWidth(transcriptWidth)
}

func (m *chatModel) refreshTranscript() {
	id, ok := m.store.Current()
	if !ok {
		m.vp.SetContent("")
		return
	}
	m.vp.SetContent(renderTranscript(m.store.Messages(id), m.vp.Width(), m.theme))
}

func (m chatModel) drawerSelection() (session.Session, bool) {
	sessions := m.store.Sessions()
	if m.drawerIndex < 0 || m.drawerIndex >= len(sessions) {
		return session.Session{}, false
	}
	return sessions[m.drawerIndex], true
}

func (m chatModel) indexOf(id string) int {
	for i, sess := range m.store.Sessions() {
		if sess.ID == id {
			return i
		}
	}
	return 0
}

func (m chatModel) hydrate() tea.Cmd {
	return func() tea.Msg {
		return hydratedMsg{count: m.svc.LoadRemote(m.ctx)}
	}
}

func (m chatModel) newChat() tea.Cmd {
	return func() tea.Msg {
		id := m.svc.NewChat(m.ctx)
		m.svc.Open(m.ctx, id)
		return openedMsg{id: id, messages: m.store.Messages(id)}
	}
}

func (m chatModel) open(id string) tea.Cmd {
	return func() tea.Msg {
		return openedMsg{id: id, messages: m.svc.Open(m.ctx, id)}
	}
}

func (m chatModel) send(id, text string) tea.Cmd {
	return func() tea.Msg {
		messages, err := m.svc.Send(m.ctx, id, text)
		return turnMsg{id: id, messages: messages, err: err}
	}
}

func (m chatModel) View() tea.View {
	if m.quitting {
		v := tea.NewView("")
		v.AltScreen = true
		return v
	}
	v := tea.NewView(m.renderLayout())
	v.AltScreen = true
	return v
}

func (m chatModel) renderLayout() string {
	drawer := m.renderDrawer()

	var waitLine string
	if m.waiting {
		waitLine = m.spin.View() + m.theme.hintStyle().Render(" thinking...")
	}

	statusStyle := m.theme.hintStyle()
	if m.statusErr {
		statusStyle = m.theme.errorStyle()
	}
	statusLine := statusStyle.Render(m.statusText())

	right := lipgloss.JoinVertical(lipgloss.Left,
		m.vp.View(),
		waitLine,
		m.ta.View(),
		statusLine,
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, drawer, " ", right)
}

func (m chatModel) renderDrawer() string {
	header := m.theme.titleStyle().Render("Roam")
	if m.user != "" {
		header += "\n" + m.theme.hintStyle().Render(m.user)
	}

	body := header + "\n\n"
	for i, sess := range m.store.Sessions() {
		title := truncateTitle(sess.Title, drawerWidth-4)
		line := "  " + title
		if cur, ok := m.store.Current(); ok && cur == sess.ID {
			line = m.theme.currentStyle().Render("• " + title)
		}
		if m.focus == focusDrawer && i == m.drawerIndex {
			line = m.theme.titleStyle().Render("> " + title)
		}
		body += line + "\n"
	}

	body += "\n" + m.theme.hintStyle().Render("ctrl+n new · tab drawer\nr rename · d delete")

	height := m.height - 2
	if height < 5 {
		height = 5
	}
	return m.theme.drawerStyle().Width(drawerWidth).Height(height).Render(body)
}

func (m chatModel) statusText() string {
	if m.status != "" {
		return m.status
	}
	if m.focus == focusDrawer {
		return "enter open · r rename · d delete · tab back"
	}
	return "enter send · ctrl+c quit"
}

// Run starts the interactive chat UI and blocks until the user quits.
// Canceling ctx tears the UI down and aborts any in-flight completion.
func Run(ctx context.Context, svc ChatService, store *session.Store, user string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := newChatModel(ctx, svc, store, user)
	p := tea.NewProgram(model, tea.WithContext(ctx))

	if _, err := p.Run(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("chat UI error: %w", err)
	}
	return nil
}
