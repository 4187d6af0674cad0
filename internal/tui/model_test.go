package tui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/abgdnv/invdash/internal/config"
	"github.com/abgdnv/invdash/internal/dashboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeSession struct {
	err       error
	logins    int
	loggedOut bool
}

func (s *fakeSession) Login(_ context.Context, _, _ string) error {
	s.logins++
	return s.err
}

func (s *fakeSession) Logout() {
	s.loggedOut = true
}

type fakeBackend struct {
	mu        sync.Mutex
	records   []dashboard.RawRecord
	lists     int
	created   []dashboard.ProductInput
	deleted   []int64
	createErr error
	listErr   error
	// gate, when set, holds every List call until it is closed.
	gate chan struct{}
}

func (b *fakeBackend) List(_ context.Context) ([]dashboard.RawRecord, error) {
	b.mu.Lock()
	gate := b.gate
	b.mu.Unlock()
	if gate != nil {
		<-gate
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lists++
	if b.listErr != nil {
		return nil, b.listErr
	}
	return b.records, nil
}

func (b *fakeBackend) failLists(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listErr = err
}

func (b *fakeBackend) holdLists() chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gate = make(chan struct{})
	return b.gate
}

func (b *fakeBackend) Create(_ context.Context, in dashboard.ProductInput) (dashboard.RawRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.createErr != nil {
		return nil, b.createErr
	}
	b.created = append(b.created, in)
	rec := dashboard.RawRecord{"id": int64(len(b.records) + 1), "name": in.Name, "price": in.Price, "stock": in.Stock}
	b.records = append(b.records, rec)
	return rec, nil
}

func (b *fakeBackend) Update(_ context.Context, _ int64, _ dashboard.ProductInput) (dashboard.RawRecord, error) {
	return dashboard.RawRecord{}, nil
}

func (b *fakeBackend) Delete(_ context.Context, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleted = append(b.deleted, id)
	kept := b.records[:0]
	for _, r := range b.records {
		if dashboard.Normalize(r).ID != id {
			kept = append(kept, r)
		}
	}
	b.records = kept
	return nil
}

type harness struct {
	session   *fakeSession
	backend   *fakeBackend
	store     *dashboard.ProductStore
	selection *dashboard.SelectionModel
	model     tea.Model
}

func newHarness(records ...dashboard.RawRecord) *harness {
	session := &fakeSession{}
	backend := &fakeBackend{records: records}
	store := dashboard.NewProductStore(backend, discardLogger)
	selection := dashboard.NewSelectionModel()
	controller := dashboard.NewCrudController(backend, store, selection, discardLogger)
	m := New(context.Background(), Deps{
		Session:    session,
		Store:      store,
		Selection:  selection,
		Controller: controller,
		Login:      config.AuthConfig{Username: "demo", Password: "password"},
		Logger:     discardLogger,
	})
	return &harness{session: session, backend: backend, store: store, selection: selection, model: m}
}

// send delivers msg and runs every resulting command to completion.
func (h *harness) send(msg tea.Msg) {
	var cmd tea.Cmd
	h.model, cmd = h.model.Update(msg)
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch out := next().(type) {
		case tea.BatchMsg:
			queue = append(queue, out...)
		case tea.QuitMsg:
		default:
			var follow tea.Cmd
			h.model, follow = h.model.Update(out)
			queue = append(queue, follow)
		}
	}
}

func (h *harness) typeText(s string) {
	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func (h *harness) press(t tea.KeyType) {
	h.send(tea.KeyMsg{Type: t})
}

func (h *harness) state() Model {
	return h.model.(Model)
}

func (h *harness) loggedIn(t *testing.T) {
	t.Helper()
	h.press(tea.KeyEnter)
	require.Equal(t, screenProducts, h.state().screen)
}

func Test_Login(t *testing.T) {
	testCases := []struct {
		name          string
		err           error
		expectScreen  screen
		expectMessage string
	}{
		{"success opens the dashboard", nil, screenProducts, ""},
		{"rejected credentials", &dashboard.ServerError{Op: "health", StatusCode: http.StatusUnauthorized}, screenLogin, "Invalid credentials"},
		{"service down", &dashboard.NetworkError{Op: "health", Err: errors.New("connection refused")}, screenLogin, "Product service is unreachable"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			h := newHarness(dashboard.RawRecord{"id": 1, "name": "Pen", "price": 2.5, "stock": 3})
			h.session.err = tc.err

			// when
			h.press(tea.KeyEnter)

			// then
			m := h.state()
			assert.Equal(t, tc.expectScreen, m.screen)
			assert.Equal(t, tc.expectMessage, m.login.err)
			assert.Equal(t, 1, h.session.logins)
			if tc.err == nil {
				assert.Equal(t, 1, h.backend.lists, "dashboard loads once when it opens")
				assert.Len(t, m.products, 1)
				assert.Contains(t, m.View(), "₹2.50")
			} else {
				assert.Zero(t, h.backend.lists)
				assert.Contains(t, m.View(), tc.expectMessage)
			}
		})
	}
}

func Test_Login_PrefillsDemoUser(t *testing.T) {
	h := newHarness()

	username, password := h.state().login.credentials()

	assert.Equal(t, "demo", username)
	assert.Equal(t, "password", password)
}

func Test_AddProduct(t *testing.T) {
	// given
	h := newHarness()
	h.loggedIn(t)

	// when
	h.typeText("a")
	require.True(t, h.state().dialogOpen)
	assert.Contains(t, h.state().View(), "Add Product")
	h.typeText("Pen")
	h.press(tea.KeyTab)
	h.press(tea.KeyBackspace)
	h.typeText("12.5")
	h.press(tea.KeyTab)
	h.press(tea.KeyBackspace)
	h.typeText("4")
	h.press(tea.KeyEnter)

	// then
	m := h.state()
	assert.False(t, m.dialogOpen)
	assert.Equal(t, []dashboard.ProductInput{{Name: "Pen", Price: 12.5, Stock: 4}}, h.backend.created)
	assert.Equal(t, 2, h.backend.lists, "initial load plus one refresh after save")
	assert.Equal(t, "Product saved", m.status)
	require.Len(t, m.products, 1)
	assert.Equal(t, "Pen", m.products[0].Name)
}

func Test_AddProduct_ValidationKeepsDialogOpen(t *testing.T) {
	// given
	h := newHarness()
	h.loggedIn(t)
	h.typeText("a")

	// when
	h.press(tea.KeyEnter)

	// then
	m := h.state()
	assert.True(t, m.dialogOpen)
	assert.Equal(t, "name: is required", m.dialog.err)
	assert.Empty(t, h.backend.created)
	assert.Equal(t, 1, h.backend.lists)
}

func Test_SaveFailure_ShowsBlockingNotice(t *testing.T) {
	// given
	h := newHarness()
	h.loggedIn(t)
	h.backend.createErr = &dashboard.ServerError{Op: "create", StatusCode: http.StatusInternalServerError, Message: "boom"}
	h.typeText("a")
	h.typeText("Pen")

	// when
	h.press(tea.KeyEnter)

	// then
	m := h.state()
	assert.True(t, m.dialogOpen)
	assert.Contains(t, m.View(), "HTTP 500")
	assert.Equal(t, "Pen", m.dialog.inputs[0].Value())

	// keys other than dismiss are ignored while the notice is up
	h.typeText("x")
	assert.Equal(t, "Pen", h.state().dialog.inputs[0].Value())

	h.press(tea.KeyEnter)
	assert.NotContains(t, h.state().View(), "HTTP 500")
	assert.True(t, h.state().dialogOpen)
}

func Test_EditAndDelete_RequireSelection(t *testing.T) {
	testCases := []struct {
		name   string
		key    string
		status string
	}{
		{"edit", "e", "Select a product to edit"},
		{"delete", "d", "Select a product to delete"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			h := newHarness(dashboard.RawRecord{"id": 1, "name": "Pen", "price": 1, "stock": 1})
			h.loggedIn(t)

			// when
			h.typeText(tc.key)

			// then
			assert.Equal(t, tc.status, h.state().status)
			assert.False(t, h.state().dialogOpen)
			assert.Empty(t, h.backend.deleted)
		})
	}
}

func Test_EditSelectedProduct(t *testing.T) {
	// given
	h := newHarness(dashboard.RawRecord{"id": 7, "name": "Pen", "price": 2.5, "stock": 3})
	h.loggedIn(t)
	h.typeText("x")

	// when
	h.typeText("e")

	// then
	m := h.state()
	require.True(t, m.dialogOpen)
	assert.Contains(t, m.View(), "Edit Product")
	assert.Equal(t, "Pen", m.dialog.inputs[0].Value())
	assert.Equal(t, "2.5", m.dialog.inputs[1].Value())
	assert.Equal(t, "3", m.dialog.inputs[2].Value())

	h.press(tea.KeyEscape)
	assert.False(t, h.state().dialogOpen)
}

func Test_DeleteSelectedProduct(t *testing.T) {
	// given
	h := newHarness(
		dashboard.RawRecord{"id": 1, "name": "Pen", "price": 1, "stock": 1},
		dashboard.RawRecord{"id": 2, "name": "Ink", "price": 2, "stock": 2},
	)
	h.loggedIn(t)
	h.typeText("x")
	require.True(t, h.selection.Contains(1))

	// when
	h.typeText("d")

	// then
	m := h.state()
	assert.Equal(t, []int64{1}, h.backend.deleted)
	assert.Equal(t, "Product deleted", m.status)
	require.Len(t, m.products, 1)
	assert.Equal(t, int64(2), m.products[0].ID)
	assert.Zero(t, h.selection.Count())
}

func Test_Logout(t *testing.T) {
	// given
	h := newHarness(dashboard.RawRecord{"id": 1, "name": "Pen"})
	h.loggedIn(t)
	h.typeText("x")

	// when
	h.typeText("o")

	// then
	assert.True(t, h.session.loggedOut)
	assert.Equal(t, screenLogin, h.state().screen)
	assert.Zero(t, h.selection.Count())
	assert.Empty(t, h.state().products)
	assert.Empty(t, h.store.Products())
}

func Test_Logout_NextSessionStartsEmpty(t *testing.T) {
	// given
	h := newHarness(dashboard.RawRecord{"id": 1, "name": "Pen"})
	h.loggedIn(t)
	h.typeText("o")
	gate := h.backend.holdLists()

	// when: log in again and hold the first refresh of the new session
	model, cmd := h.model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model, cmd = model.Update(cmd())
	h.model = model
	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	result := make(chan tea.Msg, 1)
	go func() { result <- batch[0]() }()

	// then
	require.Equal(t, screenProducts, h.state().screen)
	assert.Empty(t, h.state().products)
	assert.NotContains(t, h.state().View(), "Pen")

	close(gate)
	h.send(<-result)
	assert.Contains(t, h.state().View(), "Pen")
}

func Test_SuccessfulSave_ClearsLoadError(t *testing.T) {
	// given
	h := newHarness(dashboard.RawRecord{"id": 1, "name": "Pen", "price": 1, "stock": 1})
	h.loggedIn(t)
	h.backend.failLists(errors.New("boom"))
	h.typeText("r")
	require.Contains(t, h.state().View(), "Could not load products")
	h.backend.failLists(nil)

	// when
	h.typeText("a")
	h.typeText("Cup")
	h.press(tea.KeyEnter)

	// then
	view := h.state().View()
	assert.Equal(t, "Product saved", h.state().status)
	assert.NotContains(t, view, "Could not load products")
	assert.Contains(t, view, "2 products")
}

func Test_SuccessfulDelete_ClearsLoadError(t *testing.T) {
	// given
	h := newHarness(
		dashboard.RawRecord{"id": 1, "name": "Pen", "price": 1, "stock": 1},
		dashboard.RawRecord{"id": 2, "name": "Ink", "price": 2, "stock": 2},
	)
	h.loggedIn(t)
	h.typeText("x")
	h.backend.failLists(errors.New("boom"))
	h.typeText("r")
	require.Contains(t, h.state().View(), "Could not load products")
	h.backend.failLists(nil)

	// when
	h.typeText("d")

	// then
	view := h.state().View()
	assert.NotContains(t, view, "Could not load products")
	assert.Contains(t, view, "1 products")
}

func Test_DeleteRefresh_ShowsLoading(t *testing.T) {
	// given
	h := newHarness(
		dashboard.RawRecord{"id": 1, "name": "Pen", "price": 1, "stock": 1},
		dashboard.RawRecord{"id": 2, "name": "Ink", "price": 2, "stock": 2},
	)
	h.loggedIn(t)
	h.typeText("x")
	gate := h.backend.holdLists()

	// when
	model, cmd := h.model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	h.model = model
	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	result := make(chan tea.Msg, 1)
	go func() { result <- batch[0]() }()

	// then
	require.Eventually(t, h.store.Loading, time.Second, 5*time.Millisecond)
	assert.Contains(t, h.state().View(), "Loading...")

	close(gate)
	h.send(<-result)
	assert.NotContains(t, h.state().View(), "Loading...")
	assert.Equal(t, []int64{1}, h.backend.deleted)
}
