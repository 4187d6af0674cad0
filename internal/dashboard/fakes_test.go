package dashboard

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeFetcher returns queued responses in order, then repeats the last one.
type fakeFetcher struct {
	mu        sync.Mutex
	responses []fetchResult
	calls     int
}

type fetchResult struct {
	raws []RawRecord
	err  error
}

func (f *fakeFetcher) List(_ context.Context) ([]RawRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.responses) == 0 {
		return nil, nil
	}
	r := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return r.raws, r.err
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// gatedFetcher blocks each List call until the test sends its result.
type gatedFetcher struct {
	calls chan chan fetchResult
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{calls: make(chan chan fetchResult)}
}

func (f *gatedFetcher) List(ctx context.Context) ([]RawRecord, error) {
	reply := make(chan fetchResult)
	select {
	case f.calls <- reply:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	r := <-reply
	return r.raws, r.err
}

type apiCall struct {
	method string
	id     int64
	input  ProductInput
}

// fakeAPI records every call and answers with err.
type fakeAPI struct {
	mu    sync.Mutex
	calls []apiCall
	err   error
}

func (a *fakeAPI) record(c apiCall) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, c)
	return a.err
}

func (a *fakeAPI) Create(_ context.Context, in ProductInput) (RawRecord, error) {
	if err := a.record(apiCall{method: "create", input: in}); err != nil {
		return nil, err
	}
	return RawRecord{"id": int64(99), "name": in.Name, "price": in.Price, "stock": in.Stock}, nil
}

func (a *fakeAPI) Update(_ context.Context, id int64, in ProductInput) (RawRecord, error) {
	if err := a.record(apiCall{method: "update", id: id, input: in}); err != nil {
		return nil, err
	}
	return RawRecord{"id": id, "name": in.Name, "price": in.Price, "stock": in.Stock}, nil
}

func (a *fakeAPI) Delete(_ context.Context, id int64) error {
	return a.record(apiCall{method: "delete", id: id})
}

func (a *fakeAPI) recorded() []apiCall {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]apiCall, len(a.calls))
	copy(out, a.calls)
	return out
}
