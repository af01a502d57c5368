// Package toggle implements an optimistic on/off control with a counter,
// used for likes, bookmarks and follows on the client side.
//
// Flip applies the change locally before the server answers and rolls it
// back if the request fails. While a request is in flight further flips
// are refused.
package toggle

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"lumigram/internal/client"
)

var ErrInFlight = errors.New("toggle: request already in flight")

type State int

const (
	Off State = iota
	On
	PendingOn
	PendingOff
)

func (s State) String() string {
	switch s {
	case Off:
		return "off"
	case On:
		return "on"
	case PendingOn:
		return "pending-on"
	case PendingOff:
		return "pending-off"
	default:
		return "unknown"
	}
}

// Pending reports whether a request is outstanding.
func (s State) Pending() bool {
	return s == PendingOn || s == PendingOff
}

// Action sends one side of the toggle to the server.
type Action func(ctx context.Context) error

// AlreadyApplied reports whether err means the server already holds the
// target state, for example a 409 on add or a 404 on remove.
type AlreadyApplied func(err error, turningOn bool) bool

type Toggle struct {
	mu    sync.Mutex
	state State
	count int

	add    Action
	remove Action

	alreadyApplied AlreadyApplied
	observer       func(State, int)
}

type Option func(*Toggle)

func WithAlreadyApplied(fn AlreadyApplied) Option {
	return func(t *Toggle) { t.alreadyApplied = fn }
}

// WithObserver registers fn to be called after every state change.
// fn runs without the toggle's lock held.
func WithObserver(fn func(state State, count int)) Option {
	return func(t *Toggle) { t.observer = fn }
}

func New(on bool, count int, add, remove Action, opts ...Option) *Toggle {
	t := &Toggle{
		state:          Off,
		count:          max(count, 0),
		add:            add,
		remove:         remove,
		alreadyApplied: DefaultAlreadyApplied,
	}
	if on {
		t.state = On
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// DefaultAlreadyApplied treats 409 on add and 404 on remove as success.
func DefaultAlreadyApplied(err error, turningOn bool) bool {
	if turningOn {
		return client.IsStatus(err, http.StatusConflict)
	}
	return client.IsStatus(err, http.StatusNotFound)
}

func (t *Toggle) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Toggle) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

// On reports the displayed state, counting a pending change as applied.
func (t *Toggle) On() bool {
	s := t.State()
	return s == On || s == PendingOn
}

// Flip switches the toggle and sends the matching request. On failure the
// previous state and count are restored and the error is returned.
func (t *Toggle) Flip(ctx context.Context) error {
	t.mu.Lock()
	if t.state.Pending() {
		t.mu.Unlock()
		return ErrInFlight
	}

	prevCount := t.count
	turningOn := t.state == Off
	action := t.remove
	if turningOn {
		t.state = PendingOn
		t.count++
		action = t.add
	} else {
		t.state = PendingOff
		t.count = max(t.count-1, 0)
	}
	state, count := t.state, t.count
	t.mu.Unlock()
	t.notify(state, count)

	err := action(ctx)

	t.mu.Lock()
	switch {
	case err == nil:
		t.state = settled(turningOn)
	case t.alreadyApplied != nil && t.alreadyApplied(err, turningOn):
		t.state = settled(turningOn)
		t.count = prevCount
		err = nil
	default:
		t.state = settled(!turningOn)
		t.count = prevCount
	}
	state, count = t.state, t.count
	t.mu.Unlock()
	t.notify(state, count)

	return err
}

// Reconcile replaces local state with a fresh server view. It is ignored
// while a request is in flight.
func (t *Toggle) Reconcile(on bool, count int) bool {
	t.mu.Lock()
	if t.state.Pending() {
		t.mu.Unlock()
		return false
	}
	t.state = settled(on)
	t.count = max(count, 0)
	state, count := t.state, t.count
	t.mu.Unlock()
	t.notify(state, count)
	return true
}

func (t *Toggle) notify(state State, count int) {
	if t.observer != nil {
		t.observer(state, count)
	}
}

func settled(on bool) State {
	if on {
		return On
	}
	return Off
}
