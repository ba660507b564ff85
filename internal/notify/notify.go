// Package notify is the alert and confirmation queue between the data layer and
// whatever renders it. Nothing here knows about a screen.
package notify

import (
	"context"
	"errors"
	"sync"

	"taskboard/internal/model"
	"taskboard/internal/realtime"
)

// ErrUnknownNotice is returned when resolving a confirmation that is not pending.
var ErrUnknownNotice = errors.New("no pending confirmation with that id")

type Kind string

const (
	KindInfo    Kind = "info"
	KindError   Kind = "error"
	KindConfirm Kind = "confirm"
)

type Notice struct {
	ID      uint64 `json:"id"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// Action runs when a confirmation is accepted.
type Action func(ctx context.Context) error

// Queue delivers notices in order. When the reader falls behind by more than the
// buffer, the oldest undelivered notice is dropped; pending confirmations stay
// resolvable either way.
type Queue struct {
	mu      sync.Mutex
	next    uint64
	notices chan Notice
	pending map[uint64]Action
}

func NewQueue(buffer int) *Queue {
	if buffer < 1 {
		buffer = 1
	}
	return &Queue{
		notices: make(chan Notice, buffer),
		pending: make(map[uint64]Action),
	}
}

func (q *Queue) Notices() <-chan Notice { return q.notices }

func (q *Queue) Info(message string) Notice {
	return q.push(KindInfo, message, nil)
}

// Error posts the user-facing message for err.
func (q *Queue) Error(err error) Notice {
	return q.push(KindError, Message(err), nil)
}

// Confirm asks the user to accept message; action runs only on acceptance.
func (q *Queue) Confirm(message string, action Action) Notice {
	return q.push(KindConfirm, message, action)
}

// Resolve answers a confirmation. A failed action is posted as an error notice and
// returned.
func (q *Queue) Resolve(ctx context.Context, id uint64, accept bool) error {
	q.mu.Lock()
	action, ok := q.pending[id]
	delete(q.pending, id)
	q.mu.Unlock()

	if !ok {
		return ErrUnknownNotice
	}
	if !accept {
		return nil
	}
	if err := action(ctx); err != nil {
		q.Error(err)
		return err
	}
	return nil
}

// Pending returns the number of unanswered confirmations.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *Queue) push(kind Kind, message string, action Action) Notice {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.next++
	n := Notice{ID: q.next, Kind: kind, Message: message}
	if action != nil {
		q.pending[n.ID] = action
	}

	// A reader may empty the buffer between attempts, so neither side blocks.
	for {
		select {
		case q.notices <- n:
			return n
		default:
		}
		select {
		case <-q.notices:
		default:
		}
	}
}

// Message converts any error into the text shown to the user. Raw error text is never
// shown, except validation reasons which are written for users.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var validation *model.ValidationError
	var notFound *realtime.NotFoundError
	var storeErr *realtime.StoreError
	var subErr *realtime.SubscriptionError

	switch {
	case errors.As(err, &validation):
		return validation.Reason
	case errors.As(err, &notFound):
		switch notFound.Resource {
		case "code":
			return "Invalid project code."
		case "task":
			return "Task not found. It may have been deleted."
		default:
			return "Project not found."
		}
	case errors.Is(err, realtime.ErrPermissionDenied):
		return "You are not a member of this project."
	case errors.As(err, &storeErr):
		return "Could not save changes. Please try again."
	case errors.As(err, &subErr):
		return "Live updates stopped. Reload to reconnect."
	default:
		return "Something went wrong. Please try again."
	}
}
