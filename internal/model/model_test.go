package model_test

import (
	"encoding/json"
	"errors"
	"regexp"
	"testing"

	"taskboard/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func validInput() model.TaskInput {
	return model.TaskInput{
		Name:        "Design",
		StartDate:   model.MustParseDate("2024-01-01"),
		EndDate:     model.MustParseDate("2024-01-03"),
		Responsible: "P1",
	}
}

func TestTaskInput_Validate(t *testing.T) {
	t.Run("defaults status and trims fields", func(t *testing.T) {
		in := validInput()
		in.Name = "  Design  "
		in.Phase = strPtr("   ")

		out, err := in.Validate()
		require.NoError(t, err)
		assert.Equal(t, "Design", out.Name)
		assert.Equal(t, model.StatusToDo, out.Status)
		assert.Nil(t, out.Phase)
	})

	t.Run("keeps a real phase trimmed", func(t *testing.T) {
		in := validInput()
		in.Phase = strPtr(" Build ")

		out, err := in.Validate()
		require.NoError(t, err)
		require.NotNil(t, out.Phase)
		assert.Equal(t, "Build", *out.Phase)
	})

	t.Run("same start and end is allowed", func(t *testing.T) {
		in := validInput()
		in.EndDate = in.StartDate

		_, err := in.Validate()
		assert.NoError(t, err)
	})

	cases := []struct {
		name   string
		mutate func(*model.TaskInput)
		field  string
	}{
		{"blank name", func(in *model.TaskInput) { in.Name = "   " }, "name"},
		{"blank responsible", func(in *model.TaskInput) { in.Responsible = "" }, "responsible"},
		{"missing start", func(in *model.TaskInput) { in.StartDate = model.Date{} }, "start_date"},
		{"missing end", func(in *model.TaskInput) { in.EndDate = model.Date{} }, "end_date"},
		{"start after end", func(in *model.TaskInput) { in.StartDate = model.MustParseDate("2024-01-04") }, "start_date"},
		{"unknown status", func(in *model.TaskInput) { in.Status = "Blocked" }, "status"},
		{"start year typo", func(in *model.TaskInput) { in.StartDate = model.MustParseDate("0204-01-01") }, "start_date"},
		{"end too far out", func(in *model.TaskInput) { in.EndDate = model.MustParseDate("2300-01-01") }, "end_date"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)

			_, err := in.Validate()
			var vErr *model.ValidationError
			require.True(t, errors.As(err, &vErr), "expected ValidationError, got %v", err)
			assert.Equal(t, tc.field, vErr.Field)
			assert.NotEmpty(t, vErr.Reason)
		})
	}
}

func TestValidateProjectNameAndCode(t *testing.T) {
	name, err := model.ValidateProjectName("  Launch ")
	require.NoError(t, err)
	assert.Equal(t, "Launch", name)

	_, err = model.ValidateProjectName("  ")
	assert.Error(t, err)

	code, err := model.NormalizeShareCode(" ab12cd ")
	require.NoError(t, err)
	assert.Equal(t, "AB12CD", code)

	_, err = model.NormalizeShareCode("")
	assert.Error(t, err)

	assert.Error(t, model.ValidateStatus("Archived"))
	assert.NoError(t, model.ValidateStatus(model.StatusDone))
}

func TestNewShareCode(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z0-9]{6}$`)
	for range 50 {
		code, err := model.NewShareCode()
		require.NoError(t, err)
		assert.Regexp(t, pattern, code)
	}
}

func TestSortTasks(t *testing.T) {
	tasks := []model.Task{
		{Name: "general-late", StartDate: model.MustParseDate("2024-02-01")},
		{Name: "build-2", Phase: strPtr("Build"), StartDate: model.MustParseDate("2024-01-10")},
		{Name: "general-early", StartDate: model.MustParseDate("2024-01-01")},
		{Name: "analysis", Phase: strPtr("Analysis"), StartDate: model.MustParseDate("2024-03-01")},
		{Name: "build-1", Phase: strPtr("Build"), StartDate: model.MustParseDate("2024-01-05")},
	}

	model.SortTasks(tasks)

	names := make([]string, len(tasks))
	for i, task := range tasks {
		names[i] = task.Name
	}
	assert.Equal(t, []string{"analysis", "build-1", "build-2", "general-early", "general-late"}, names)
}

func TestDate_JSON(t *testing.T) {
	var task model.Task
	err := json.Unmarshal([]byte(`{"start_date":"2024-01-01","end_date":"2024-01-03T15:04:05Z"}`), &task)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", task.StartDate.String())
	assert.Equal(t, "2024-01-03", task.EndDate.String())
	assert.Equal(t, 2, task.StartDate.DaysUntil(task.EndDate))

	out, err := json.Marshal(task.StartDate)
	require.NoError(t, err)
	assert.JSONEq(t, `"2024-01-01"`, string(out))

	err = json.Unmarshal([]byte(`{"start_date":"01/02/2024"}`), &task)
	assert.Error(t, err)
}

func TestDate_DaysUntilAcrossCenturies(t *testing.T) {
	from := model.MustParseDate("1900-01-01")
	to := model.MustParseDate("2300-01-01")

	assert.Equal(t, 146097, from.DaysUntil(to))
	assert.Equal(t, -146097, to.DaysUntil(from))
	assert.Equal(t, to, from.AddDays(from.DaysUntil(to)))
	assert.Equal(t, 366, model.MustParseDate("2024-01-01").DaysUntil(model.MustParseDate("2025-01-01")))
}

func TestProject_Membership(t *testing.T) {
	p := &model.Project{ID: uuid.New(), OwnerID: "P1", Members: []string{"P1"}}

	assert.True(t, p.IsMember("P1"))
	assert.False(t, p.IsMember("P2"))

	next := p.WithMember("P2")
	assert.Equal(t, []string{"P1", "P2"}, next)
	assert.Equal(t, []string{"P1"}, []string(p.Members), "original member list must not change")
}
