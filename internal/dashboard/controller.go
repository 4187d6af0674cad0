package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
)

// State is the lifecycle state of the add/edit dialog.
type State int

const (
	StateIdle State = iota
	StateDialogOpen
	StateSaving
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDialogOpen:
		return "dialog_open"
	case StateSaving:
		return "saving"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrNoDialog is returned by form operations while no dialog is open.
var ErrNoDialog = errors.New("no dialog open")

// ProductAPI is the write side of the product service.
type ProductAPI interface {
	Create(ctx context.Context, in ProductInput) (RawRecord, error)
	Update(ctx context.Context, id int64, in ProductInput) (RawRecord, error)
	Delete(ctx context.Context, id int64) error
}

// Notice is a blocking message for the user. It stays until dismissed.
type Notice struct {
	Message string
	Err     error
}

// CrudController drives the add, edit, save, cancel and delete lifecycle.
// Methods are safe to call from the UI loop and from background commands;
// no lock is held during network calls.
type CrudController struct {
	api       ProductAPI
	store     *ProductStore
	selection *SelectionModel
	logger    *slog.Logger

	mu     sync.Mutex
	state  State
	form   *DialogFormState
	notice *Notice
}

func NewCrudController(api ProductAPI, store *ProductStore, selection *SelectionModel, logger *slog.Logger) *CrudController {
	return &CrudController{
		api:       api,
		store:     store,
		selection: selection,
		logger:    logger.With("component", "crud_controller"),
		state:     StateIdle,
	}
}

// OnAdd opens the dialog in add mode with default values, replacing any open dialog.
func (c *CrudController) OnAdd() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form = NewAddForm()
	c.state = StateDialogOpen
}

// OnEdit opens the dialog for the active selected product. It reports false
// and changes nothing when the selection is empty or the product is no longer listed.
func (c *CrudController) OnEdit() bool {
	id, ok := c.selection.ActiveID()
	if !ok {
		return false
	}
	p, ok := c.store.Find(id)
	if !ok {
		c.logger.Debug("Selected product is not in the list", "product_id", id)
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form = NewEditForm(p)
	c.state = StateDialogOpen
	return true
}

// OnCancel closes an open dialog and discards its buffer. A save in flight is not cancelled.
func (c *CrudController) OnCancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateDialogOpen {
		return
	}
	c.form = nil
	c.state = StateIdle
}

// SetField edits the open dialog's buffer.
func (c *CrudController) SetField(field Field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateDialogOpen || c.form == nil {
		return ErrNoDialog
	}
	return c.form.Set(field, value)
}

// OnSave validates the buffer and submits it. Validation errors keep the
// dialog open and make no request. A failed request reopens the dialog with
// the same buffer and raises a notice. A successful one refreshes the store
// and closes the dialog.
func (c *CrudController) OnSave(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateDialogOpen || c.form == nil {
		c.mu.Unlock()
		return ErrNoDialog
	}
	form := c.form
	input, err := form.Validate()
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.state = StateSaving
	mode, id := form.Mode, form.ID
	c.mu.Unlock()

	log := c.logger.With("mode", mode.String())
	if mode == ModeEdit {
		log = log.With("product_id", id)
		_, err = c.api.Update(ctx, id, input)
	} else {
		_, err = c.api.Create(ctx, input)
	}
	if err != nil {
		log.WarnContext(ctx, "Save failed", "error", err)
		c.mu.Lock()
		// OnAdd or OnEdit may have started another episode meanwhile.
		if c.form == form {
			c.state = StateDialogOpen
		}
		c.notice = failureNotice("Save failed", err)
		c.mu.Unlock()
		return fmt.Errorf("save product: %w", err)
	}
	log.InfoContext(ctx, "Product saved", "name", input.Name)

	refreshErr := c.store.Refresh(ctx)

	c.mu.Lock()
	if c.form == form {
		c.form = nil
		c.state = StateIdle
	}
	if refreshErr != nil {
		c.notice = failureNotice("Saved, but reloading products failed", refreshErr)
	}
	c.mu.Unlock()

	if refreshErr != nil {
		return fmt.Errorf("reload after save: %w", refreshErr)
	}
	return nil
}

// OnDelete deletes the active selected product and refreshes the store.
// With an empty selection it returns ErrNoSelection and does nothing.
func (c *CrudController) OnDelete(ctx context.Context) error {
	id, ok := c.selection.ActiveID()
	if !ok {
		return ErrNoSelection
	}
	log := c.logger.With("product_id", id)

	if err := c.api.Delete(ctx, id); err != nil {
		log.WarnContext(ctx, "Delete failed", "error", err)
		c.setNotice(failureNotice("Delete failed", err))
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	log.InfoContext(ctx, "Product deleted")
	c.selection.Remove(id)

	if err := c.store.Refresh(ctx); err != nil {
		c.setNotice(failureNotice("Deleted, but reloading products failed", err))
		return fmt.Errorf("reload after delete: %w", err)
	}
	return nil
}

func (c *CrudController) CanEdit() bool {
	return c.selection.Count() > 0
}

func (c *CrudController) CanDelete() bool {
	return c.selection.Count() > 0
}

func (c *CrudController) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Dialog returns the open episode's mode and a copy of its buffer. ok is false in Idle.
func (c *CrudController) Dialog() (mode DialogMode, buf FormBuffer, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.form == nil {
		return 0, FormBuffer{}, false
	}
	return c.form.Mode, c.form.Buffer, true
}

// Notification returns the pending notice, if any.
func (c *CrudController) Notification() (Notice, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.notice == nil {
		return Notice{}, false
	}
	return *c.notice, true
}

func (c *CrudController) DismissNotification() {
	c.mu.Lock()
	c.notice = nil
	c.mu.Unlock()
}

func (c *CrudController) setNotice(n *Notice) {
	c.mu.Lock()
	c.notice = n
	c.mu.Unlock()
}

// failureNotice summarizes err for the user, naming the HTTP status when there is one.
func failureNotice(prefix string, err error) *Notice {
	var serverErr *ServerError
	var netErr *NetworkError
	msg := fmt.Sprintf("%s: %v", prefix, err)
	switch {
	case errors.As(err, &serverErr):
		msg = fmt.Sprintf("%s: HTTP %d %s", prefix, serverErr.StatusCode, http.StatusText(serverErr.StatusCode))
		if serverErr.Message != "" {
			msg += " (" + serverErr.Message + ")"
		}
	case errors.Is(err, context.DeadlineExceeded):
		msg = fmt.Sprintf("%s: request timed out", prefix)
	case errors.As(err, &netErr):
		msg = fmt.Sprintf("%s: service unreachable", prefix)
	}
	return &Notice{Message: msg, Err: err}
}
