// Package tui is the terminal front end of the inventory dashboard.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/abgdnv/invdash/internal/config"
	"github.com/abgdnv/invdash/internal/dashboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/text/language"
)

// Session signs the dashboard in and out of the product service.
type Session interface {
	Login(ctx context.Context, username, password string) error
	Logout()
}

// Deps are the collaborators of the UI. One set per dashboard session.
type Deps struct {
	Session    Session
	Store      *dashboard.ProductStore
	Selection  *dashboard.SelectionModel
	Controller *dashboard.CrudController
	Formatter  *dashboard.PriceFormatter
	// Login prefills the sign-in form.
	Login  config.AuthConfig
	Logger *slog.Logger
}

type screen int

const (
	screenLogin screen = iota
	screenProducts
)

type Model struct {
	ctx        context.Context
	session    Session
	store      *dashboard.ProductStore
	selection  *dashboard.SelectionModel
	controller *dashboard.CrudController
	formatter  *dashboard.PriceFormatter
	prefill    config.AuthConfig
	logger     *slog.Logger

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	screen  screen
	login   loginForm
	table   table.Model

	products   []dashboard.Product
	dialog     productDialog
	dialogOpen bool
	saving     bool
	// busy counts refresh, save and delete commands still running.
	busy   int
	status string
}

// New builds the UI model. ctx bounds every request the UI starts.
func New(ctx context.Context, deps Deps) Model {
	formatter := deps.Formatter
	if formatter == nil {
		formatter = dashboard.NewPriceFormatter(dashboard.DefaultCurrencySymbol, language.English)
	}
	return Model{
		ctx:        ctx,
		session:    deps.Session,
		store:      deps.Store,
		selection:  deps.Selection,
		controller: deps.Controller,
		formatter:  formatter,
		prefill:    deps.Login,
		logger:     deps.Logger.With("component", "tui"),
		keys:       defaultKeyMap(),
		help:       help.New(),
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot)),
		screen:     screenLogin,
		login:      newLoginForm(deps.Login.Username, deps.Login.Password),
		table:      newProductTable(),
	}
}

func newProductTable() table.Model {
	columns := []table.Column{
		{Title: "", Width: 3},
		{Title: "ID", Width: 6},
		{Title: "Name", Width: 32},
		{Title: "Price", Width: 16},
		{Title: "Stock", Width: 8},
	}
	return table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if h := msg.Height - 10; h > 3 {
			m.table.SetHeight(h)
		}
		m.help.Width = msg.Width
		return m, nil

	case loginResultMsg:
		return m.handleLogin(msg)

	case spinner.TickMsg:
		if m.busy == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case refreshedMsg:
		m.busy--
		m.syncRows()
		return m, nil

	case savedMsg:
		m.busy--
		return m.handleSaved(msg)

	case deletedMsg:
		m.busy--
		m.syncRows()
		switch {
		case msg.err == nil:
			m.status = "Product deleted"
		case errors.Is(msg.err, dashboard.ErrNoSelection):
			m.status = "Select a product to delete"
		default:
			m.status = ""
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m, tea.Quit
		}
		if m.screen == screenLogin {
			return m.updateLogin(msg)
		}
		if _, ok := m.controller.Notification(); ok {
			if key.Matches(msg, m.keys.Dismiss) {
				m.controller.DismissNotification()
			}
			return m, nil
		}
		if m.dialogOpen {
			return m.updateDialog(msg)
		}
		return m.updateProducts(msg)
	}
	return m, nil
}

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.login.busy {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Submit):
		m.login.busy = true
		m.login.err = ""
		username, password := m.login.credentials()
		return m, m.loginCmd(username, password)
	case key.Matches(msg, m.keys.Next):
		m.login.move(1)
		return m, nil
	case key.Matches(msg, m.keys.Prev):
		m.login.move(-1)
		return m, nil
	}
	var cmd tea.Cmd
	m.login, cmd = m.login.update(msg)
	return m, cmd
}

func (m Model) handleLogin(msg loginResultMsg) (tea.Model, tea.Cmd) {
	m.login.busy = false
	if msg.err != nil {
		var netErr *dashboard.NetworkError
		if errors.As(msg.err, &netErr) {
			m.login.err = "Product service is unreachable"
		} else {
			m.login.err = "Invalid credentials"
		}
		m.logger.Warn("Login failed", "error", msg.err)
		return m, nil
	}
	m.logger.Info("Logged in")
	m.screen = screenProducts
	m.status = ""
	return m, m.track(m.refreshCmd())
}

func (m Model) updateProducts(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Toggle):
		if p, ok := m.cursorProduct(); ok {
			m.selection.Toggle(p.ID)
			m.syncRows()
		}
		return m, nil
	case key.Matches(msg, m.keys.Add):
		m.controller.OnAdd()
		m.openDialog()
		return m, nil
	case key.Matches(msg, m.keys.Edit):
		if !m.controller.CanEdit() {
			m.status = "Select a product to edit"
			return m, nil
		}
		if !m.controller.OnEdit() {
			m.status = "The selected product is no longer listed"
			return m, nil
		}
		m.openDialog()
		return m, nil
	case key.Matches(msg, m.keys.Delete):
		if !m.controller.CanDelete() {
			m.status = "Select a product to delete"
			return m, nil
		}
		return m, m.track(m.deleteCmd())
	case key.Matches(msg, m.keys.Refresh):
		return m, m.track(m.refreshCmd())
	case key.Matches(msg, m.keys.Logout):
		m.session.Logout()
		m.selection.Clear()
		m.controller.OnCancel()
		m.store.Reset()
		m.syncRows()
		m.status = ""
		m.screen = screenLogin
		m.login = newLoginForm(m.prefill.Username, m.prefill.Password)
		m.logger.Info("Logged out")
		return m, nil
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) openDialog() {
	mode, buf, ok := m.controller.Dialog()
	if !ok {
		return
	}
	m.dialog = newProductDialog(mode, buf)
	m.dialogOpen = true
}

func (m Model) updateDialog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.saving {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.controller.OnCancel()
		m.dialogOpen = false
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		m.saving = true
		m.dialog.err = ""
		return m, m.track(m.saveCmd())
	case key.Matches(msg, m.keys.Next):
		m.dialog.move(1)
		return m, nil
	case key.Matches(msg, m.keys.Prev):
		m.dialog.move(-1)
		return m, nil
	}
	var cmd tea.Cmd
	m.dialog, cmd = m.dialog.update(msg)
	if err := m.controller.SetField(m.dialog.field(), m.dialog.value()); err != nil {
		m.logger.Debug("Dropped form edit", "field", m.dialog.field(), "error", err)
	}
	return m, cmd
}

func (m Model) handleSaved(msg savedMsg) (tea.Model, tea.Cmd) {
	m.saving = false
	var validationErr *dashboard.ValidationError
	if errors.As(msg.err, &validationErr) {
		m.dialog.err = validationErr.Error()
		m.dialog.focusField(dashboard.Field(validationErr.Field))
		return m, nil
	}
	if m.controller.State() == dashboard.StateIdle {
		m.dialogOpen = false
		if msg.err == nil {
			m.status = "Product saved"
		}
	}
	m.syncRows()
	return m, nil
}

// track runs cmd as work that may refresh the store. The spinner ticks while
// any such work is running so the view repaints the store's loading state.
func (m *Model) track(cmd tea.Cmd) tea.Cmd {
	m.busy++
	if m.busy > 1 {
		return cmd
	}
	return tea.Batch(cmd, m.spinner.Tick)
}

func (m Model) cursorProduct() (dashboard.Product, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.products) {
		return dashboard.Product{}, false
	}
	return m.products[i], true
}

// syncRows rebuilds the table from the store and the selection.
func (m *Model) syncRows() {
	m.products = m.store.Products()
	rows := make([]table.Row, len(m.products))
	for i, p := range m.products {
		mark := "[ ]"
		if m.selection.Contains(p.ID) {
			mark = "[x]"
		}
		rows[i] = table.Row{
			mark,
			strconv.FormatInt(p.ID, 10),
			p.Name,
			m.formatter.Format(p.Price),
			strconv.FormatInt(p.Stock, 10),
		}
	}
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}

func (m Model) View() string {
	if m.screen == screenLogin {
		return titleStyle.Render("Inventory Dashboard") + "\n" +
			m.login.view() + "\n" +
			m.help.View(m.keys.loginHelp())
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Inventory Dashboard"))
	b.WriteString("\n")
	if notice, ok := m.controller.Notification(); ok {
		b.WriteString(noticeStyle.Render(notice.Message + "\n\n[enter] dismiss"))
		b.WriteString("\n")
	}
	b.WriteString(m.table.View())
	b.WriteString("\n")
	if m.dialogOpen {
		b.WriteString(m.dialog.view(m.saving))
		b.WriteString("\n")
	}
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	if m.dialogOpen {
		b.WriteString(m.help.View(m.keys.dialogHelp()))
	} else {
		b.WriteString(m.help.View(m.keys.productsHelp()))
	}
	return b.String()
}

func (m Model) statusLine() string {
	parts := []string{fmt.Sprintf("%d products", len(m.products))}
	if n := m.selection.Count(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d selected", n))
	}
	if m.store.Loading() {
		parts = append(parts, m.spinner.View()+" Loading...")
	}
	if err := m.store.LastError(); err != nil {
		parts = append(parts, errorStyle.Render("Could not load products: "+err.Error()))
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	return statusStyle.Render(strings.Join(parts, " | "))
}
