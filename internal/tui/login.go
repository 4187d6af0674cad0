package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	loginUsername = iota
	loginPassword
)

// loginForm is the credentials screen shown before the dashboard.
type loginForm struct {
	inputs [2]textinput.Model
	focus  int
	err    string
	busy   bool
}

func newLoginForm(username, password string) loginForm {
	user := newInput("username", 64)
	user.SetValue(username)
	pass := newInput("password", 64)
	pass.SetValue(password)
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'

	f := loginForm{inputs: [2]textinput.Model{user, pass}}
	f.inputs[loginUsername].Focus()
	return f
}

func (f loginForm) credentials() (username, password string) {
	return f.inputs[loginUsername].Value(), f.inputs[loginPassword].Value()
}

func (f *loginForm) move(delta int) {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focus].Focus()
}

func (f loginForm) update(msg tea.Msg) (loginForm, tea.Cmd) {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f loginForm) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Sign in"))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Username") + f.inputs[loginUsername].View() + "\n")
	b.WriteString(labelStyle.Render("Password") + f.inputs[loginPassword].View() + "\n")
	switch {
	case f.busy:
		b.WriteString("\n" + statusStyle.Render("Signing in..."))
	case f.err != "":
		b.WriteString("\n" + errorStyle.Render(f.err))
	}
	return dialogStyle.Render(b.String())
}

// newInput returns a text input with a steady cursor.
func newInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Width = 32
	in.Cursor.SetMode(cursor.CursorStatic)
	return in
}
