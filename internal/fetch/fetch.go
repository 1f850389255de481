// Package fetch tracks the lifecycle of a single remote call made from a
// TUI screen.
package fetch

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	apperrors "github.com/julianstephens/mealplanner/internal/errors"
)

// State is where a Request is in its lifecycle.
type State int

const (
	Idle State = iota
	Loading
	Success
	Failure
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "idle"
	}
}

// Request holds the state of one call. Fallback is the message shown for
// failures that carry no user-facing text of their own.
type Request[T any] struct {
	Fallback string

	state State
	value T
	err   error
	seq   int
}

// New returns an idle request that shows fallback for failures without a
// message of their own.
func New[T any](fallback string) Request[T] {
	return Request[T]{Fallback: fallback}
}

// Start marks the request as loading and returns a sequence number. A
// result whose sequence does not match the latest Start is stale.
func (r *Request[T]) Start() int {
	r.state = Loading
	r.err = nil
	r.seq++
	return r.seq
}

// Seq returns the sequence number of the latest Start.
func (r *Request[T]) Seq() int { return r.seq }

// Reset returns the request to Idle and drops its value and error. The
// sequence is kept, so results of calls started before Reset stay stale.
func (r *Request[T]) Reset() {
	var zero T
	r.state = Idle
	r.value = zero
	r.err = nil
}

// Resolve records a successful value.
func (r *Request[T]) Resolve(v T) {
	r.state = Success
	r.value = v
	r.err = nil
}

// Fail records an error. The previous value is kept.
func (r *Request[T]) Fail(err error) {
	r.state = Failure
	r.err = err
}

// Apply resolves or fails from a Result.
func (r *Request[T]) Apply(res Result[T]) {
	if res.Err != nil {
		r.Fail(res.Err)
		return
	}
	r.Resolve(res.Value)
}

// State, Loading, Value and Err read the request without changing it.
func (r *Request[T]) State() State  { return r.state }
func (r *Request[T]) Loading() bool { return r.state == Loading }
func (r *Request[T]) Value() T      { return r.value }
func (r *Request[T]) Err() error    { return r.err }

// SessionExpired reports whether the last failure was a missing or expired
// session.
func (r *Request[T]) SessionExpired() bool {
	return r.state == Failure && apperrors.IsSessionInvalid(r.err)
}

// Message is the text to show for the current failure, or "".
func (r *Request[T]) Message() string {
	if r.state != Failure {
		return ""
	}
	return apperrors.UserMessage(r.err, r.Fallback)
}

// Result is the message a Cmd delivers back to Update.
type Result[T any] struct {
	Key   string
	Seq   int
	Value T
	Err   error
}

// Cmd runs fn off the event loop and delivers its outcome as a Result.
func Cmd[T any](ctx context.Context, key string, seq int, fn func(context.Context) (T, error)) tea.Cmd {
	return func() tea.Msg {
		v, err := fn(ctx)
		return Result[T]{Key: key, Seq: seq, Value: v, Err: err}
	}
}
