package dashboard

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type controllerFixture struct {
	api       *fakeAPI
	fetcher   *fakeFetcher
	store     *ProductStore
	selection *SelectionModel
	ctrl      *CrudController
}

func newFixture(t *testing.T, products ...RawRecord) *controllerFixture {
	t.Helper()
	fetcher := &fakeFetcher{responses: []fetchResult{{raws: products}}}
	store := NewProductStore(fetcher, discardLogger)
	require.NoError(t, store.Refresh(context.Background()))
	api := &fakeAPI{}
	selection := NewSelectionModel()
	return &controllerFixture{
		api:       api,
		fetcher:   fetcher,
		store:     store,
		selection: selection,
		ctrl:      NewCrudController(api, store, selection, discardLogger),
	}
}

// refreshes excludes the refresh done by newFixture.
func (f *controllerFixture) refreshes() int {
	return f.fetcher.callCount() - 1
}

func Test_CrudController_EmptySelection_EditAndDeleteAreNoOps(t *testing.T) {
	// given
	f := newFixture(t, RawRecord{"id": 1, "name": "A"})

	// when
	edited := f.ctrl.OnEdit()
	err := f.ctrl.OnDelete(context.Background())

	// then
	assert.False(t, edited)
	assert.ErrorIs(t, err, ErrNoSelection)
	assert.False(t, f.ctrl.CanEdit())
	assert.False(t, f.ctrl.CanDelete())
	assert.Equal(t, StateIdle, f.ctrl.State())
	assert.Empty(t, f.api.recorded())
	assert.Zero(t, f.refreshes())
	_, hasNotice := f.ctrl.Notification()
	assert.False(t, hasNotice)
}

func Test_CrudController_OnEdit(t *testing.T) {
	testCases := []struct {
		name           string
		selection      []int64
		expectedOK     bool
		expectedBuffer FormBuffer
	}{
		{
			name:           "active id is the first selected",
			selection:      []int64{2, 1},
			expectedOK:     true,
			expectedBuffer: FormBuffer{Name: "B", Price: "20.5", Stock: "4"},
		},
		{
			name:       "selected id no longer listed",
			selection:  []int64{9},
			expectedOK: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			f := newFixture(t,
				RawRecord{"id": 1, "name": "A", "price": 10, "stock": 1},
				RawRecord{"ID": 2, "NAME": "B", "PRICE": "20.5", "STOCK": "4"},
			)
			f.selection.SetSelection(tc.selection)

			// when
			ok := f.ctrl.OnEdit()

			// then
			assert.Equal(t, tc.expectedOK, ok)
			mode, buf, open := f.ctrl.Dialog()
			if !tc.expectedOK {
				assert.False(t, open)
				assert.Equal(t, StateIdle, f.ctrl.State())
				return
			}
			assert.True(t, open)
			assert.Equal(t, ModeEdit, mode)
			assert.Equal(t, tc.expectedBuffer, buf)
			assert.Equal(t, StateDialogOpen, f.ctrl.State())
		})
	}
}

func Test_CrudController_OnSave_ValidationNeverCallsNetwork(t *testing.T) {
	testCases := []struct {
		name          string
		field         Field
		value         string
		expectedField string
	}{
		{name: "blank name", field: FieldName, value: "  ", expectedField: "name"},
		{name: "negative price", field: FieldPrice, value: "-1", expectedField: "price"},
		{name: "negative stock", field: FieldStock, value: "-1", expectedField: "stock"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			f := newFixture(t)
			f.ctrl.OnAdd()
			require.NoError(t, f.ctrl.SetField(FieldName, "Mug"))
			require.NoError(t, f.ctrl.SetField(tc.field, tc.value))
			_, before, _ := f.ctrl.Dialog()

			// when
			err := f.ctrl.OnSave(context.Background())

			// then
			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tc.expectedField, vErr.Field)
			assert.Equal(t, StateDialogOpen, f.ctrl.State())
			_, after, open := f.ctrl.Dialog()
			assert.True(t, open)
			assert.Equal(t, before, after)
			assert.Empty(t, f.api.recorded())
			assert.Zero(t, f.refreshes())
		})
	}
}

func Test_CrudController_OnSave_AddSuccess(t *testing.T) {
	// given
	f := newFixture(t)
	f.fetcher.responses = []fetchResult{{raws: []RawRecord{{"id": 99, "name": "Mug", "price": 4.5, "stock": 9}}}}
	f.ctrl.OnAdd()
	require.NoError(t, f.ctrl.SetField(FieldName, " Mug "))
	require.NoError(t, f.ctrl.SetField(FieldPrice, "4.5"))
	require.NoError(t, f.ctrl.SetField(FieldStock, "9"))

	// when
	err := f.ctrl.OnSave(context.Background())

	// then
	require.NoError(t, err)
	assert.Equal(t, StateIdle, f.ctrl.State())
	_, _, open := f.ctrl.Dialog()
	assert.False(t, open)
	assert.Equal(t, []apiCall{{method: "create", input: ProductInput{Name: "Mug", Price: 4.5, Stock: 9}}}, f.api.recorded())
	assert.Equal(t, 1, f.refreshes(), "exactly one refresh after a successful add")
	assert.Equal(t, []Product{{ID: 99, Name: "Mug", Price: 4.5, Stock: 9}}, f.store.Products())
}

func Test_CrudController_OnSave_EditUsesOriginalID(t *testing.T) {
	// given
	f := newFixture(t, RawRecord{"id": 5, "name": "Old", "price": 1, "stock": 1})
	f.selection.SetSelection([]int64{5})
	require.True(t, f.ctrl.OnEdit())
	require.NoError(t, f.ctrl.SetField(FieldName, "New"))

	// when
	err := f.ctrl.OnSave(context.Background())

	// then
	require.NoError(t, err)
	assert.Equal(t, []apiCall{{method: "update", id: 5, input: ProductInput{Name: "New", Price: 1, Stock: 1}}}, f.api.recorded())
	assert.Equal(t, StateIdle, f.ctrl.State())
	assert.Equal(t, 1, f.refreshes())
}

func Test_CrudController_OnSave_ServerErrorKeepsDialog(t *testing.T) {
	// given
	f := newFixture(t)
	f.api.err = &ServerError{Op: "create", StatusCode: http.StatusInternalServerError, Message: "db down"}
	f.ctrl.OnAdd()
	require.NoError(t, f.ctrl.SetField(FieldName, "Mug"))
	require.NoError(t, f.ctrl.SetField(FieldPrice, "4.5"))
	_, before, _ := f.ctrl.Dialog()

	// when
	err := f.ctrl.OnSave(context.Background())

	// then
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Equal(t, StateDialogOpen, f.ctrl.State())
	mode, after, open := f.ctrl.Dialog()
	assert.True(t, open)
	assert.Equal(t, ModeAdd, mode)
	assert.Equal(t, before, after)
	assert.Zero(t, f.refreshes())

	notice, ok := f.ctrl.Notification()
	require.True(t, ok)
	assert.Contains(t, notice.Message, "500")
	assert.ErrorIs(t, err, notice.Err)

	f.ctrl.DismissNotification()
	_, ok = f.ctrl.Notification()
	assert.False(t, ok)
}

func Test_CrudController_OnSave_NetworkErrorNotice(t *testing.T) {
	testCases := []struct {
		name        string
		err         error
		expectedMsg string
	}{
		{name: "transport failure", err: &NetworkError{Op: "update", Err: errors.New("connection refused")}, expectedMsg: "Save failed: service unreachable"},
		{name: "timeout", err: &NetworkError{Op: "update", Err: context.DeadlineExceeded}, expectedMsg: "Save failed: request timed out"},
		{name: "not found", err: &ServerError{Op: "update", StatusCode: http.StatusNotFound}, expectedMsg: "Save failed: HTTP 404 Not Found"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			f := newFixture(t, RawRecord{"id": 5, "name": "Old"})
			f.selection.SetSelection([]int64{5})
			require.True(t, f.ctrl.OnEdit())
			f.api.err = tc.err

			// when
			err := f.ctrl.OnSave(context.Background())

			// then
			assert.ErrorIs(t, err, tc.err)
			notice, ok := f.ctrl.Notification()
			require.True(t, ok)
			assert.Equal(t, tc.expectedMsg, notice.Message)
			assert.Equal(t, StateDialogOpen, f.ctrl.State())
		})
	}
}

func Test_CrudController_OnSave_RefreshFailureStillCloses(t *testing.T) {
	// given
	f := newFixture(t)
	f.fetcher.responses = []fetchResult{{err: &NetworkError{Op: "list", Err: errors.New("reset")}}}
	f.ctrl.OnAdd()
	require.NoError(t, f.ctrl.SetField(FieldName, "Mug"))

	// when
	err := f.ctrl.OnSave(context.Background())

	// then
	require.Error(t, err)
	assert.Equal(t, StateIdle, f.ctrl.State())
	notice, ok := f.ctrl.Notification()
	require.True(t, ok)
	assert.Contains(t, notice.Message, "reloading products failed")
}

func Test_CrudController_OnCancel(t *testing.T) {
	// given
	f := newFixture(t)
	f.ctrl.OnAdd()
	require.NoError(t, f.ctrl.SetField(FieldName, "draft"))

	// when
	f.ctrl.OnCancel()

	// then
	assert.Equal(t, StateIdle, f.ctrl.State())
	_, _, open := f.ctrl.Dialog()
	assert.False(t, open)
	assert.ErrorIs(t, f.ctrl.SetField(FieldName, "x"), ErrNoDialog)
	assert.ErrorIs(t, f.ctrl.OnSave(context.Background()), ErrNoDialog)

	// and a new add episode starts from defaults
	f.ctrl.OnAdd()
	_, buf, _ := f.ctrl.Dialog()
	assert.Equal(t, FormBuffer{Name: "", Price: "0", Stock: "0"}, buf)
}

func Test_CrudController_OnDelete(t *testing.T) {
	testCases := []struct {
		name              string
		apiErr            error
		expectedRefreshes int
		expectedSelection []int64
		expectedNotice    string
	}{
		{
			name:              "success refreshes and drops id from selection",
			expectedRefreshes: 1,
			expectedSelection: []int64{2},
		},
		{
			name:              "failure surfaces status and keeps list",
			apiErr:            &ServerError{Op: "delete", StatusCode: http.StatusNotFound},
			expectedRefreshes: 0,
			expectedSelection: []int64{1, 2},
			expectedNotice:    "Delete failed: HTTP 404 Not Found",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			f := newFixture(t, RawRecord{"id": 1, "name": "A"}, RawRecord{"id": 2, "name": "B"})
			f.fetcher.responses = []fetchResult{{raws: []RawRecord{{"id": 2, "name": "B"}}}}
			f.api.err = tc.apiErr
			f.selection.SetSelection([]int64{1, 2})
			before := f.store.Products()

			// when
			err := f.ctrl.OnDelete(context.Background())

			// then
			assert.Equal(t, []apiCall{{method: "delete", id: 1}}, f.api.recorded())
			assert.Equal(t, tc.expectedRefreshes, f.refreshes())
			assert.Equal(t, tc.expectedSelection, f.selection.IDs())
			if tc.apiErr == nil {
				require.NoError(t, err)
				assert.Equal(t, []Product{{ID: 2, Name: "B"}}, f.store.Products())
				return
			}
			assert.ErrorIs(t, err, tc.apiErr)
			assert.ErrorIs(t, err, ErrProductNotFound)
			assert.Equal(t, before, f.store.Products())
			notice, ok := f.ctrl.Notification()
			require.True(t, ok)
			assert.Equal(t, tc.expectedNotice, notice.Message)
		})
	}
}

func Test_CrudController_OnAddDuringSaveKeepsNewDialog(t *testing.T) {
	// given
	f := newFixture(t)
	blocking := &blockingAPI{fakeAPI: f.api, release: make(chan struct{}), entered: make(chan struct{})}
	ctrl := NewCrudController(blocking, f.store, f.selection, discardLogger)
	ctrl.OnAdd()
	require.NoError(t, ctrl.SetField(FieldName, "first"))
	done := make(chan error)
	go func() { done <- ctrl.OnSave(context.Background()) }()
	<-blocking.entered
	assert.Equal(t, StateSaving, ctrl.State())

	// when
	ctrl.OnAdd()
	close(blocking.release)
	require.NoError(t, <-done)

	// then
	assert.Equal(t, StateDialogOpen, ctrl.State())
	_, buf, open := ctrl.Dialog()
	assert.True(t, open)
	assert.Equal(t, FormBuffer{Name: "", Price: "0", Stock: "0"}, buf)
}

// blockingAPI holds Create until release is closed.
type blockingAPI struct {
	*fakeAPI
	entered chan struct{}
	release chan struct{}
}

func (b *blockingAPI) Create(ctx context.Context, in ProductInput) (RawRecord, error) {
	close(b.entered)
	<-b.release
	return b.fakeAPI.Create(ctx, in)
}
