// Package panel implements the replywatch terminal panel: a live view
// of the daemon's conversations and prompt library, driven by the
// attach channel rather than polling.
package panel

import (
	"context"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"

	"github.com/replywatch/replywatch/pkg/daemon"
	"github.com/replywatch/replywatch/pkg/models"
	projection "github.com/replywatch/replywatch/pkg/panel"
	"github.com/replywatch/replywatch/tui/theme"
)

// attachClientName identifies this surface on the attach channel.
const attachClientName = "sidepanel"

const toastDuration = 3 * time.Second

type tabID int

const (
	tabConversations tabID = iota
	tabPrompts
)

type mode int

const (
	modeList mode = iota
	modeDetail
	modeEditReply
	modePromptForm
)

// Messages

type eventMsg models.Event

type attachedMsg struct {
	events <-chan models.Event
}

type attachClosedMsg struct{}

type promptsLoadedMsg []*models.PromptTemplate

type refreshedMsg []*models.Conversation

type ackMsg struct {
	action string
	id     string
	ack    models.Ack
	err    error
}

type toastExpiredMsg struct{ seq int }

type errMsg struct{ err error }

// Model is the panel's bubbletea model.
type Model struct {
	client    daemon.Client
	projector *projection.Projector
	events    <-chan models.Event

	keys  KeyMap
	seq   *SequenceState
	theme *theme.Theme
	help  help.Model

	tab    tabID
	mode   mode
	cursor map[tabID]int

	prompts []*models.PromptTemplate

	detail       viewport.Model
	detailID     string
	replyInput   textarea.Model
	editID       string
	titleInput   textinput.Model
	promptInput  textarea.Model
	promptEditID string // empty when creating
	formFocus    int    // 0 = title, 1 = content

	soundEnabled bool
	attached     bool
	showHelp     bool

	toast     string
	toastSeq  int
	width     int
	height    int
	ready     bool
}

// Option customizes a Model.
type Option func(*Model)

// WithKeyMap replaces the default keybindings.
func WithKeyMap(km KeyMap) Option {
	return func(m *Model) { m.keys = km }
}

// WithSound controls the audible cue on completed replies.
func WithSound(enabled bool) Option {
	return func(m *Model) { m.soundEnabled = enabled }
}

// New creates a panel model backed by the given daemon client.
func New(client daemon.Client, opts ...Option) *Model {
	ti := textinput.New()
	ti.Placeholder = "Title"
	ti.CharLimit = 120

	ta := textarea.New()
	ta.Placeholder = "Content"

	reply := textarea.New()
	reply.Placeholder = "Edited reply"

	m := &Model{
		client:       client,
		projector:    projection.New(),
		keys:         DefaultKeyMap(),
		seq:          NewSequenceState(),
		theme:        theme.NewTheme(),
		help:         help.New(),
		cursor:       map[tabID]int{tabConversations: 0, tabPrompts: 0},
		titleInput:   ti,
		promptInput:  ta,
		replyInput:   reply,
		soundEnabled: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.attachCmd(), m.loadPromptsCmd())
}

// attachCmd establishes the live event channel. The first message on it
// is the initial snapshot.
func (m *Model) attachCmd() tea.Cmd {
	return func() tea.Msg {
		events, err := m.client.Attach(context.Background(), attachClientName)
		if err != nil {
			return errMsg{err}
		}
		return attachedMsg{events: events}
	}
}

// waitForEvent blocks on the attach channel for the next event.
func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return attachClosedMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *Model) loadPromptsCmd() tea.Cmd {
	return func() tea.Msg {
		prompts, err := m.client.ListPrompts(context.Background())
		if err != nil {
			return errMsg{err}
		}
		return promptsLoadedMsg(prompts)
	}
}

// refreshCmd re-fetches the full snapshot. Used after mutations whose
// results are acked rather than broadcast (delete, edit).
func (m *Model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		conversations, err := m.client.GetConversations(context.Background())
		if err != nil {
			return errMsg{err}
		}
		return refreshedMsg(conversations)
	}
}

func (m *Model) toastCmd(text string) tea.Cmd {
	m.toast = text
	m.toastSeq++
	seq := m.toastSeq
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.detail = viewport.New(msg.Width-4, msg.Height-6)
		m.replyInput.SetWidth(msg.Width - 4)
		m.replyInput.SetHeight(msg.Height - 8)
		m.promptInput.SetWidth(msg.Width - 4)
		m.promptInput.SetHeight(msg.Height - 10)
		m.titleInput.Width = msg.Width - 8
		m.ready = true
		return m, nil

	case attachedMsg:
		m.events = msg.events
		m.attached = true
		return m, m.waitForEvent()

	case eventMsg:
		return m.handleEvent(models.Event(msg))

	case attachClosedMsg:
		m.attached = false
		return m, m.toastCmd("daemon connection lost")

	case promptsLoadedMsg:
		m.prompts = msg
		m.clampCursor()
		return m, nil

	case refreshedMsg:
		m.projector.Apply(models.Event{
			Type:     models.EventInitialSnapshot,
			Snapshot: msg,
		})
		m.clampCursor()
		return m, nil

	case ackMsg:
		return m.handleAck(msg)

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}
		return m, nil

	case errMsg:
		return m, m.toastCmd(fmt.Sprintf("error: %v", msg.err))

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// handleEvent folds one broadcast event into the projector and reacts
// to UI-level cues.
func (m *Model) handleEvent(ev models.Event) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.waitForEvent()}

	switch ev.Type {
	case models.EventPlayNotificationSound:
		if m.soundEnabled {
			// Best effort; a silent terminal is not an error.
			_ = beeep.Beep(beeep.DefaultFreq, beeep.DefaultDuration)
		}
	case models.EventConfigReload:
		cmds = append(cmds, m.toastCmd("configuration reloaded"))
	default:
		m.projector.Apply(ev)
		m.clampCursor()
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleAck(msg ackMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m, m.toastCmd(fmt.Sprintf("%s failed: %v", msg.action, msg.err))
	}
	if !msg.ack.Success {
		return m, m.toastCmd(fmt.Sprintf("%s failed: %s", msg.action, msg.ack.Error))
	}

	switch msg.action {
	case "delete":
		m.projector.RemoveAcknowledged(msg.id)
		m.clampCursor()
		return m, m.toastCmd("conversation deleted")
	case "edit":
		return m, tea.Batch(m.refreshCmd(), m.toastCmd("reply updated"))
	case "restore":
		return m, tea.Batch(m.refreshCmd(), m.toastCmd("original reply restored"))
	case "delete-prompt":
		return m, tea.Batch(m.loadPromptsCmd(), m.toastCmd("prompt deleted"))
	case "pin":
		return m, m.loadPromptsCmd()
	case "save-prompt":
		return m, tea.Batch(m.loadPromptsCmd(), m.toastCmd("prompt saved"))
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeDetail:
		return m.handleDetailKey(msg)
	case modeEditReply:
		return m.handleEditReplyKey(msg)
	case modePromptForm:
		return m.handlePromptFormKey(msg)
	}
	return m.handleListKey(msg)
}

func (m *Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	buffer := m.seq.Update(msg)

	switch {
	case matchesSequence(buffer, m.keys.Delete):
		m.seq.Clear()
		return m.deleteSelected()
	case matchesSequence(buffer, m.keys.Yank):
		m.seq.Clear()
		return m.yankSelected()
	case matchesSequence(buffer, m.keys.Top):
		m.seq.Clear()
		m.cursor[m.tab] = 0
		return m, nil
	case prefixOfSequence(buffer, m.keys.Delete, m.keys.Yank, m.keys.Top):
		// Wait for the rest of the sequence.
		return m, nil
	}
	m.seq.Clear()

	switch {
	case matchesSequence(msg.String(), m.keys.Quit):
		return m, tea.Quit
	case matchesSequence(msg.String(), m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil
	case matchesSequence(msg.String(), m.keys.Up):
		if m.cursor[m.tab] > 0 {
			m.cursor[m.tab]--
		}
		return m, nil
	case matchesSequence(msg.String(), m.keys.Down):
		if m.cursor[m.tab] < m.listLen()-1 {
			m.cursor[m.tab]++
		}
		return m, nil
	case matchesSequence(msg.String(), m.keys.Bottom):
		if n := m.listLen(); n > 0 {
			m.cursor[m.tab] = n - 1
		}
		return m, nil
	case matchesSequence(msg.String(), m.keys.NextTab):
		m.tab = (m.tab + 1) % 2
		return m, nil
	case matchesSequence(msg.String(), m.keys.PrevTab):
		m.tab = (m.tab + 1) % 2
		return m, nil
	case matchesSequence(msg.String(), m.keys.Refresh):
		return m, tea.Batch(m.refreshCmd(), m.loadPromptsCmd())
	case matchesSequence(msg.String(), m.keys.ShowDetail):
		return m.openDetail()
	case matchesSequence(msg.String(), m.keys.Edit):
		return m.openEditor()
	case matchesSequence(msg.String(), m.keys.ClearEdit):
		return m.restoreOriginal()
	case matchesSequence(msg.String(), m.keys.NewPrompt):
		if m.tab == tabPrompts {
			return m.openPromptForm(nil)
		}
		return m, nil
	case matchesSequence(msg.String(), m.keys.TogglePin):
		return m.togglePin()
	}

	return m, nil
}

func (m *Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case matchesSequence(msg.String(), m.keys.Cancel),
		matchesSequence(msg.String(), m.keys.Quit):
		m.mode = modeList
		return m, nil
	case matchesSequence(msg.String(), m.keys.Edit):
		return m.openEditor()
	}
	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m *Model) handleEditReplyKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		m.replyInput.Blur()
		return m, nil
	case "ctrl+s":
		content := m.replyInput.Value()
		id := m.editID
		m.mode = modeList
		m.replyInput.Blur()
		return m, func() tea.Msg {
			ack, err := m.client.SetEditedContent(context.Background(), id, content)
			return ackMsg{action: "edit", id: id, ack: ack, err: err}
		}
	}
	var cmd tea.Cmd
	m.replyInput, cmd = m.replyInput.Update(msg)
	return m, cmd
}

func (m *Model) handlePromptFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		m.titleInput.Blur()
		m.promptInput.Blur()
		return m, nil
	case "tab":
		if m.formFocus == 0 {
			m.formFocus = 1
			m.titleInput.Blur()
			return m, m.promptInput.Focus()
		}
		m.formFocus = 0
		m.promptInput.Blur()
		return m, m.titleInput.Focus()
	case "ctrl+s":
		title := m.titleInput.Value()
		content := m.promptInput.Value()
		if title == "" {
			return m, m.toastCmd("a prompt needs a title")
		}
		id := m.promptEditID
		m.mode = modeList
		m.titleInput.Blur()
		m.promptInput.Blur()
		return m, func() tea.Msg {
			if id == "" {
				_, err := m.client.CreatePrompt(context.Background(), title, content)
				return ackMsg{action: "save-prompt", ack: models.Ack{Success: err == nil}, err: err}
			}
			ack, err := m.client.UpdatePrompt(context.Background(), id, title, content)
			return ackMsg{action: "save-prompt", id: id, ack: ack, err: err}
		}
	}

	var cmd tea.Cmd
	if m.formFocus == 0 {
		m.titleInput, cmd = m.titleInput.Update(msg)
	} else {
		m.promptInput, cmd = m.promptInput.Update(msg)
	}
	return m, cmd
}

// Selection helpers

func (m *Model) listLen() int {
	if m.tab == tabPrompts {
		return len(m.prompts)
	}
	return m.projector.Len()
}

func (m *Model) clampCursor() {
	for tab, cursor := range m.cursor {
		var n int
		if tab == tabPrompts {
			n = len(m.prompts)
		} else {
			n = m.projector.Len()
		}
		if n == 0 {
			m.cursor[tab] = 0
		} else if cursor >= n {
			m.cursor[tab] = n - 1
		}
	}
}

func (m *Model) selectedConversation() *models.Conversation {
	conversations := m.projector.Conversations()
	idx := m.cursor[tabConversations]
	if idx < 0 || idx >= len(conversations) {
		return nil
	}
	return conversations[idx]
}

func (m *Model) selectedPrompt() *models.PromptTemplate {
	idx := m.cursor[tabPrompts]
	if idx < 0 || idx >= len(m.prompts) {
		return nil
	}
	return m.prompts[idx]
}

// Actions

func (m *Model) deleteSelected() (tea.Model, tea.Cmd) {
	if m.tab == tabPrompts {
		prompt := m.selectedPrompt()
		if prompt == nil {
			return m, nil
		}
		id := prompt.ID
		return m, func() tea.Msg {
			ack, err := m.client.DeletePrompt(context.Background(), id)
			return ackMsg{action: "delete-prompt", id: id, ack: ack, err: err}
		}
	}

	conv := m.selectedConversation()
	if conv == nil {
		return m, nil
	}
	id := conv.ID
	return m, func() tea.Msg {
		ack, err := m.client.DeleteConversation(context.Background(), id)
		return ackMsg{action: "delete", id: id, ack: ack, err: err}
	}
}

func (m *Model) yankSelected() (tea.Model, tea.Cmd) {
	var text string
	if m.tab == tabPrompts {
		prompt := m.selectedPrompt()
		if prompt == nil {
			return m, nil
		}
		text = prompt.Content
	} else {
		conv := m.selectedConversation()
		if conv == nil {
			return m, nil
		}
		text = conv.DisplayContent()
	}

	if err := clipboard.WriteAll(text); err != nil {
		return m, m.toastCmd(fmt.Sprintf("copy failed: %v", err))
	}
	return m, m.toastCmd("copied to clipboard")
}

func (m *Model) openDetail() (tea.Model, tea.Cmd) {
	if m.tab == tabPrompts {
		prompt := m.selectedPrompt()
		if prompt == nil {
			return m, nil
		}
		return m.openPromptForm(prompt)
	}

	conv := m.selectedConversation()
	if conv == nil {
		return m, nil
	}
	m.detailID = conv.ID
	m.detail.SetContent(m.renderDetail(conv))
	m.detail.GotoTop()
	m.mode = modeDetail
	return m, nil
}

func (m *Model) openEditor() (tea.Model, tea.Cmd) {
	if m.tab != tabConversations {
		return m, nil
	}
	conv := m.selectedConversation()
	if conv == nil {
		return m, nil
	}
	m.editID = conv.ID
	m.replyInput.SetValue(conv.DisplayContent())
	m.mode = modeEditReply
	return m, m.replyInput.Focus()
}

func (m *Model) restoreOriginal() (tea.Model, tea.Cmd) {
	if m.tab != tabConversations {
		return m, nil
	}
	conv := m.selectedConversation()
	if conv == nil || conv.EditedContent == nil {
		return m, nil
	}
	id := conv.ID
	return m, func() tea.Msg {
		ack, err := m.client.ClearEditedContent(context.Background(), id)
		return ackMsg{action: "restore", id: id, ack: ack, err: err}
	}
}

func (m *Model) openPromptForm(prompt *models.PromptTemplate) (tea.Model, tea.Cmd) {
	if prompt != nil {
		m.promptEditID = prompt.ID
		m.titleInput.SetValue(prompt.Title)
		m.promptInput.SetValue(prompt.Content)
	} else {
		m.promptEditID = ""
		m.titleInput.SetValue("")
		m.promptInput.SetValue("")
	}
	m.formFocus = 0
	m.promptInput.Blur()
	m.mode = modePromptForm
	return m, m.titleInput.Focus()
}

func (m *Model) togglePin() (tea.Model, tea.Cmd) {
	if m.tab != tabPrompts {
		return m, nil
	}
	prompt := m.selectedPrompt()
	if prompt == nil {
		return m, nil
	}
	id := prompt.ID
	return m, func() tea.Msg {
		ack, err := m.client.TogglePromptPin(context.Background(), id)
		return ackMsg{action: "pin", id: id, ack: ack, err: err}
	}
}
