package panel

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/replywatch/replywatch/pkg/models"
	"github.com/replywatch/replywatch/tui/theme"
)

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ready {
		return "loading..."
	}

	switch m.mode {
	case modeDetail:
		return m.viewDetail()
	case modeEditReply:
		return m.viewEditReply()
	case modePromptForm:
		return m.viewPromptForm()
	}
	return m.viewList()
}

func (m *Model) viewList() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	if m.tab == tabPrompts {
		b.WriteString(m.renderPromptRows())
	} else {
		b.WriteString(m.renderConversationRows())
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m *Model) renderHeader() string {
	title := m.theme.Title.Render(theme.IconChat + " replywatch")
	status := m.theme.Success.Render(theme.IconBullet + " attached")
	if !m.attached {
		status = m.theme.Error.Render(theme.IconBullet + " disconnected")
	}
	gap := m.width - lipgloss.Width(title) - lipgloss.Width(status)
	if gap < 1 {
		gap = 1
	}
	return title + strings.Repeat(" ", gap) + status
}

func (m *Model) renderTabs() string {
	names := []string{
		fmt.Sprintf("Conversations (%d)", m.projector.Len()),
		fmt.Sprintf("Prompts (%d)", len(m.prompts)),
	}
	var rendered []string
	for i, name := range names {
		if tabID(i) == m.tab {
			rendered = append(rendered, m.theme.Accent.Render(name))
		} else {
			rendered = append(rendered, m.theme.Muted.Render(name))
		}
	}
	return strings.Join(rendered, m.theme.Muted.Render("  |  "))
}

func (m *Model) renderConversationRows() string {
	conversations := m.projector.Conversations()
	if len(conversations) == 0 {
		return m.theme.Muted.Render("  no conversations yet")
	}

	var b strings.Builder
	for i, conv := range conversations {
		b.WriteString(m.renderConversationRow(conv, i == m.cursor[tabConversations]))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderConversationRow(conv *models.Conversation, selected bool) string {
	icon := m.statusStyle(conv.Status).Render(theme.StatusIcon(string(conv.Status)))

	prompt := truncate(firstLine(conv.Prompt), 40)
	if prompt == "" {
		prompt = m.theme.Muted.Render("(no prompt)")
	}

	preview := truncate(firstLine(conv.DisplayContent()), 60)
	edited := " "
	if conv.EditedContent != nil {
		edited = m.theme.Highlight.Render(theme.IconEdited)
	}

	row := fmt.Sprintf(" %s %s %s  %s  %s",
		icon,
		edited,
		m.theme.Muted.Render(relativeTime(conv.Timestamp)),
		prompt,
		m.theme.Muted.Render(preview),
	)
	if selected {
		return m.theme.SelectedRow.Render(row)
	}
	return row
}

func (m *Model) renderPromptRows() string {
	if len(m.prompts) == 0 {
		return m.theme.Muted.Render("  no prompts saved")
	}

	var b strings.Builder
	for i, prompt := range m.prompts {
		pin := " "
		if prompt.Pinned {
			pin = m.theme.Warning.Render(theme.IconPinned)
		}
		row := fmt.Sprintf(" %s %s %s  %s",
			m.theme.Info.Render(theme.IconPrompt),
			pin,
			prompt.Title,
			m.theme.Muted.Render(truncate(firstLine(prompt.Content), 60)),
		)
		if i == m.cursor[tabPrompts] {
			row = m.theme.SelectedRow.Render(row)
		}
		b.WriteString(row)
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderFooter() string {
	if m.toast != "" {
		return m.theme.Highlight.Render(theme.IconInfo + " " + m.toast)
	}
	return m.help.View(m.keys)
}

func (m *Model) viewDetail() string {
	header := m.theme.Title.Render("Conversation " + m.detailID)
	body := m.theme.DetailsBox.Render(m.detail.View())
	footer := m.theme.Muted.Render("esc back " + theme.IconBullet + " e edit")
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m *Model) renderDetail(conv *models.Conversation) string {
	var b strings.Builder
	b.WriteString(m.theme.Bold.Render("Status: "))
	b.WriteString(m.statusStyle(conv.Status).Render(string(conv.Status)))
	b.WriteString("\n")
	b.WriteString(m.theme.Bold.Render("Host: "))
	b.WriteString(conv.HostContextID)
	b.WriteString("\n")
	b.WriteString(m.theme.Bold.Render("Time: "))
	b.WriteString(conv.Timestamp.Format(time.RFC1123))
	b.WriteString("\n\n")
	if conv.Prompt != "" {
		b.WriteString(m.theme.Accent.Render("Prompt"))
		b.WriteString("\n")
		b.WriteString(conv.Prompt)
		b.WriteString("\n\n")
	}
	label := "Reply"
	if conv.EditedContent != nil {
		label = "Reply (edited)"
	}
	b.WriteString(m.theme.Accent.Render(label))
	b.WriteString("\n")
	b.WriteString(conv.DisplayContent())
	return b.String()
}

func (m *Model) viewEditReply() string {
	header := m.theme.Title.Render("Edit reply " + m.editID)
	footer := m.theme.Muted.Render("ctrl+s save " + theme.IconBullet + " esc cancel")
	return lipgloss.JoinVertical(lipgloss.Left, header, m.replyInput.View(), footer)
}

func (m *Model) viewPromptForm() string {
	title := "New prompt"
	if m.promptEditID != "" {
		title = "Edit prompt"
	}
	header := m.theme.Title.Render(title)
	footer := m.theme.Muted.Render("tab switch field " + theme.IconBullet + " ctrl+s save " + theme.IconBullet + " esc cancel")
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.theme.Bold.Render("Title"),
		m.titleInput.View(),
		"",
		m.theme.Bold.Render("Content"),
		m.promptInput.View(),
		footer,
	)
}

func (m *Model) statusStyle(status models.Status) lipgloss.Style {
	switch status {
	case models.StatusCompleted:
		return m.theme.Success
	case models.StatusInterrupted:
		return m.theme.Error
	default:
		return m.theme.Warning
	}
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

func relativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}
