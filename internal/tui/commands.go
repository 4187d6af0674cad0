package tui

import tea "github.com/charmbracelet/bubbletea"

func (m Model) loginCmd(username, password string) tea.Cmd {
	session, ctx := m.session, m.ctx
	return func() tea.Msg {
		return loginResultMsg{err: session.Login(ctx, username, password)}
	}
}

func (m Model) refreshCmd() tea.Cmd {
	store, ctx := m.store, m.ctx
	return func() tea.Msg {
		return refreshedMsg{err: store.Refresh(ctx)}
	}
}

func (m Model) saveCmd() tea.Cmd {
	controller, ctx := m.controller, m.ctx
	return func() tea.Msg {
		return savedMsg{err: controller.OnSave(ctx)}
	}
}

func (m Model) deleteCmd() tea.Cmd {
	controller, ctx := m.controller, m.ctx
	return func() tea.Msg {
		return deletedMsg{err: controller.OnDelete(ctx)}
	}
}
