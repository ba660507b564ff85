package board_test

import (
	"context"
	"errors"
	"testing"

	"taskboard/internal/board"
	"taskboard/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStatusWriter struct {
	mock.Mock
}

func (m *mockStatusWriter) SetTaskStatus(ctx context.Context, principal model.Principal, projectID, taskID uuid.UUID, status model.Status) error {
	args := m.Called(ctx, principal, projectID, taskID, status)
	return args.Error(0)
}

func TestColumns(t *testing.T) {
	tasks := []model.Task{
		{ID: uuid.New(), Name: "a", Status: model.StatusDone},
		{ID: uuid.New(), Name: "b", Status: model.StatusToDo},
		{ID: uuid.New(), Name: "c", Status: "Archived"},
		{ID: uuid.New(), Name: "d", Status: model.StatusToDo},
	}

	cols := board.Columns(tasks)

	require.Len(t, cols, 3)
	assert.Equal(t, model.StatusToDo, cols[0].Status)
	assert.Equal(t, "To Do", cols[0].Title)
	assert.Equal(t, model.StatusInProgress, cols[1].Status)
	assert.Equal(t, "In Progress", cols[1].Title)
	assert.Equal(t, model.StatusDone, cols[2].Status)

	require.Len(t, cols[0].Tasks, 2)
	assert.Equal(t, "b", cols[0].Tasks[0].Name, "store order is kept")
	assert.Equal(t, "d", cols[0].Tasks[1].Name)
	assert.Empty(t, cols[1].Tasks)
	assert.NotNil(t, cols[1].Tasks)
	assert.Len(t, cols[2].Tasks, 1)
}

func TestColumns_Empty(t *testing.T) {
	cols := board.Columns(nil)
	require.Len(t, cols, 3)
	for _, c := range cols {
		assert.Empty(t, c.Tasks)
	}
}

func TestDrag(t *testing.T) {
	ctx := context.Background()
	projectID := uuid.New()
	task := model.Task{ID: uuid.New(), ProjectID: projectID, Status: model.StatusToDo}

	t.Run("drop writes the target status", func(t *testing.T) {
		writer := new(mockStatusWriter)
		writer.On("SetTaskStatus", ctx, model.Principal("P1"), projectID, task.ID, model.StatusDone).Return(nil)
		drag := board.NewDrag(writer, "P1", projectID)

		drag.PickUp(task)
		id, origin, ok := drag.Picked()
		assert.True(t, ok)
		assert.Equal(t, task.ID, id)
		assert.Equal(t, model.StatusToDo, origin)

		require.NoError(t, drag.Drop(ctx, model.StatusDone))
		writer.AssertExpectations(t)

		_, _, ok = drag.Picked()
		assert.False(t, ok)
	})

	t.Run("drop on origin still writes", func(t *testing.T) {
		writer := new(mockStatusWriter)
		writer.On("SetTaskStatus", ctx, model.Principal("P1"), projectID, task.ID, model.StatusToDo).Return(nil)
		drag := board.NewDrag(writer, "P1", projectID)

		drag.PickUp(task)
		require.NoError(t, drag.Drop(ctx, model.StatusToDo))
		writer.AssertNumberOfCalls(t, "SetTaskStatus", 1)
	})

	t.Run("drop without pick-up", func(t *testing.T) {
		writer := new(mockStatusWriter)
		drag := board.NewDrag(writer, "P1", projectID)

		assert.ErrorIs(t, drag.Drop(ctx, model.StatusDone), board.ErrNothingPickedUp)
		writer.AssertNotCalled(t, "SetTaskStatus")
	})

	t.Run("cancel abandons", func(t *testing.T) {
		writer := new(mockStatusWriter)
		drag := board.NewDrag(writer, "P1", projectID)

		drag.PickUp(task)
		drag.Cancel()
		assert.ErrorIs(t, drag.Drop(ctx, model.StatusDone), board.ErrNothingPickedUp)
		writer.AssertNotCalled(t, "SetTaskStatus")
	})

	t.Run("unknown target keeps the drag", func(t *testing.T) {
		writer := new(mockStatusWriter)
		drag := board.NewDrag(writer, "P1", projectID)

		drag.PickUp(task)
		var vErr *model.ValidationError
		assert.ErrorAs(t, drag.Drop(ctx, "Blocked"), &vErr)
		_, _, ok := drag.Picked()
		assert.True(t, ok)
	})

	t.Run("write failure ends the drag", func(t *testing.T) {
		writer := new(mockStatusWriter)
		writer.On("SetTaskStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(errors.New("offline"))
		drag := board.NewDrag(writer, "P1", projectID)

		drag.PickUp(task)
		assert.Error(t, drag.Drop(ctx, model.StatusInProgress))
		_, _, ok := drag.Picked()
		assert.False(t, ok)
	})
}
