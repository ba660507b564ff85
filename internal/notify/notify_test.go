package notify_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"taskboard/internal/model"
	"taskboard/internal/notify"
	"taskboard/internal/realtime"
	"taskboard/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation", &model.ValidationError{Field: "name", Reason: "All fields are required."}, "All fields are required."},
		{"unknown code", &realtime.NotFoundError{Resource: "code", Key: "ZZZZZZ"}, "Invalid project code."},
		{"missing project", &realtime.NotFoundError{Resource: "project"}, "Project not found."},
		{"missing task", &realtime.NotFoundError{Resource: "task"}, "Task not found. It may have been deleted."},
		{"permission", &realtime.StoreError{Op: "create task", Err: realtime.ErrPermissionDenied}, "You are not a member of this project."},
		{"store", &realtime.StoreError{Op: "create task", Err: store.ErrUnavailable}, "Could not save changes. Please try again."},
		{"subscription", &realtime.SubscriptionError{Err: store.ErrFeedClosed}, "Live updates stopped. Reload to reconnect."},
		{"wrapped", fmt.Errorf("save: %w", &model.ValidationError{Reason: "Start date cannot be after end date."}), "Start date cannot be after end date."},
		{"unknown", errors.New("pq: something internal"), "Something went wrong. Please try again."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, notify.Message(tc.err))
		})
	}
}

func TestQueue_Order(t *testing.T) {
	q := notify.NewQueue(4)

	q.Info("Already a member.")
	q.Error(&realtime.NotFoundError{Resource: "code"})

	first := <-q.Notices()
	assert.Equal(t, notify.KindInfo, first.Kind)
	assert.Equal(t, "Already a member.", first.Message)

	second := <-q.Notices()
	assert.Equal(t, notify.KindError, second.Kind)
	assert.Equal(t, "Invalid project code.", second.Message)
	assert.Greater(t, second.ID, first.ID)
}

func TestQueue_DropsOldestWhenFull(t *testing.T) {
	q := notify.NewQueue(2)

	q.Info("one")
	q.Info("two")
	q.Info("three")

	assert.Equal(t, "two", (<-q.Notices()).Message)
	assert.Equal(t, "three", (<-q.Notices()).Message)
}

func TestQueue_PushWithConcurrentReader(t *testing.T) {
	q := notify.NewQueue(1)
	stop := make(chan struct{})
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			select {
			case <-q.Notices():
			case <-stop:
				return
			}
		}
	}()

	pushed := make(chan struct{})
	go func() {
		defer close(pushed)
		for i := range 10000 {
			q.Info(fmt.Sprintf("notice %d", i))
		}
	}()

	select {
	case <-pushed:
	case <-time.After(5 * time.Second):
		t.Fatal("push blocked while a reader was draining the queue")
	}
	close(stop)
	<-readerDone

	assert.Equal(t, 0, q.Pending(), "queue must still accept calls")
	n := q.Info("after")
	assert.Equal(t, "after", n.Message)
}

func TestQueue_Confirm(t *testing.T) {
	ctx := context.Background()

	t.Run("accept runs the action", func(t *testing.T) {
		q := notify.NewQueue(4)
		ran := false
		n := q.Confirm("Delete this task?", func(context.Context) error { ran = true; return nil })
		assert.Equal(t, notify.KindConfirm, n.Kind)
		assert.Equal(t, 1, q.Pending())

		require.NoError(t, q.Resolve(ctx, n.ID, true))
		assert.True(t, ran)
		assert.Equal(t, 0, q.Pending())
		assert.ErrorIs(t, q.Resolve(ctx, n.ID, true), notify.ErrUnknownNotice)
	})

	t.Run("decline skips the action", func(t *testing.T) {
		q := notify.NewQueue(4)
		n := q.Confirm("Delete this task?", func(context.Context) error {
			t.Fatal("action must not run")
			return nil
		})
		require.NoError(t, q.Resolve(ctx, n.ID, false))
	})

	t.Run("failed action posts an error", func(t *testing.T) {
		q := notify.NewQueue(4)
		n := q.Confirm("Delete this task?", func(context.Context) error {
			return &realtime.StoreError{Op: "delete task", Err: store.ErrUnavailable}
		})
		<-q.Notices()

		assert.Error(t, q.Resolve(ctx, n.ID, true))
		notice := <-q.Notices()
		assert.Equal(t, notify.KindError, notice.Kind)
		assert.Equal(t, "Could not save changes. Please try again.", notice.Message)
	})
}
