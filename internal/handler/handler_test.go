package handler_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"taskboard/internal/auth"
	"taskboard/internal/board"
	"taskboard/internal/handler"
	"taskboard/internal/middleware"
	"taskboard/internal/model"
	"taskboard/internal/realtime"
	"taskboard/internal/store"
	"taskboard/internal/store/memory"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const principalHeader = "X-Test-Principal"

type fixture struct {
	router   *gin.Engine
	engine   *realtime.Engine
	projects *memory.ProjectStore
	feed     *memory.Feed
}

// fakeAuth stands in for AuthMiddleware so tests can act as any principal.
func fakeAuth(c *gin.Context) {
	if p := c.GetHeader(principalHeader); p != "" {
		c.Set(middleware.PrincipalKey, model.Principal(p))
	}
	c.Next()
}

func routes(r *gin.Engine, engine *realtime.Engine) {
	projectHandler := handler.NewProjectHandler(engine)
	taskHandler := handler.NewTaskHandler(engine)
	boardHandler := handler.NewBoardHandler(engine)
	streamHandler := handler.NewStreamHandler(engine, 50*time.Millisecond)

	r.Use(fakeAuth)
	r.GET("/projects", projectHandler.List)
	r.POST("/projects", projectHandler.Create)
	r.POST("/projects/join", projectHandler.Join)
	r.GET("/projects/:id", projectHandler.Get)
	r.GET("/projects/:id/tasks", taskHandler.List)
	r.POST("/projects/:id/tasks", taskHandler.Create)
	r.PUT("/projects/:id/tasks/:task_id", taskHandler.Update)
	r.DELETE("/projects/:id/tasks/:task_id", taskHandler.Delete)
	r.PATCH("/projects/:id/tasks/:task_id/status", taskHandler.SetStatus)
	r.GET("/projects/:id/board", boardHandler.Board)
	r.POST("/projects/:id/board/move", boardHandler.Move)
	r.GET("/projects/:id/timeline", boardHandler.Timeline)
	r.GET("/projects/:id/stream", streamHandler.Project)
	r.GET("/me/projects/stream", streamHandler.MemberProjects)
}

func setupTest(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &fixture{projects: memory.NewProjectStore(), feed: memory.NewFeed()}
	f.engine = realtime.NewEngine(f.projects, memory.NewTaskStore(), f.feed)
	f.router = gin.New()
	routes(f.router, f.engine)
	return f
}

func (f *fixture) do(method, path string, principal model.Principal, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if principal != "" {
		req.Header.Set(principalHeader, string(principal))
	}
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)
	return resp
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &v), resp.Body.String())
	return v
}

func errorMessage(t *testing.T, resp *httptest.ResponseRecorder) string {
	return decode[handler.ErrorResponse](t, resp).Error
}

func (f *fixture) createProject(t *testing.T, principal model.Principal, name string) model.Project {
	t.Helper()
	resp := f.do(http.MethodPost, "/projects", principal, handler.CreateProjectRequest{Name: name})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decode[model.Project](t, resp)
}

func designTask() map[string]any {
	return map[string]any{
		"name":        "Design",
		"start_date":  "2024-01-01",
		"end_date":    "2024-01-03",
		"responsible": "P1",
	}
}

func (f *fixture) createTask(t *testing.T, principal model.Principal, projectID uuid.UUID) model.Task {
	t.Helper()
	resp := f.do(http.MethodPost, "/projects/"+projectID.String()+"/tasks", principal, designTask())
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decode[model.Task](t, resp)
}

func TestSession_Create(t *testing.T) {
	gin.SetMode(gin.TestMode)
	issuer := auth.NewIssuer("secret", time.Hour)
	r := gin.New()
	r.POST("/session", handler.NewSessionHandler(issuer).Create)
	r.GET("/healthz", handler.Health)

	req, _ := http.NewRequest(http.MethodPost, "/session", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusCreated, resp.Code)
	session := decode[handler.SessionResponse](t, resp)
	assert.True(t, strings.HasPrefix(string(session.Principal), "anon-"))

	principal, err := issuer.Verify(context.Background(), session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.Principal, principal)

	req, _ = http.NewRequest(http.MethodGet, "/healthz", nil)
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestProjects_CreateAndList(t *testing.T) {
	f := setupTest(t)

	project := f.createProject(t, "P1", "  Launch ")
	assert.Equal(t, "Launch", project.Name)
	assert.Equal(t, model.Principal("P1"), project.OwnerID)
	assert.Equal(t, []string{"P1"}, []string(project.Members))
	assert.Regexp(t, `^[A-Z0-9]{6}$`, project.SharedCode)

	resp := f.do(http.MethodGet, "/projects", "P1", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, decode[[]model.Project](t, resp), 1)

	resp = f.do(http.MethodGet, "/projects", "P2", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, decode[[]model.Project](t, resp))
}

func TestProjects_CreateErrors(t *testing.T) {
	f := setupTest(t)

	resp := f.do(http.MethodPost, "/projects", "P1", handler.CreateProjectRequest{Name: "   "})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "Project name cannot be empty.", errorMessage(t, resp))

	resp = f.do(http.MethodPost, "/projects", "", handler.CreateProjectRequest{Name: "Launch"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestProjects_Join(t *testing.T) {
	f := setupTest(t)
	project := f.createProject(t, "P1", "Launch")

	t.Run("unknown code", func(t *testing.T) {
		resp := f.do(http.MethodPost, "/projects/join", "P2", handler.JoinProjectRequest{Code: "ZZZZZZ"})
		assert.Equal(t, http.StatusNotFound, resp.Code)
		assert.Equal(t, "Invalid project code.", errorMessage(t, resp))
	})

	t.Run("empty code", func(t *testing.T) {
		resp := f.do(http.MethodPost, "/projects/join", "P2", handler.JoinProjectRequest{Code: " "})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("lower-case code joins", func(t *testing.T) {
		resp := f.do(http.MethodPost, "/projects/join", "P2", handler.JoinProjectRequest{Code: strings.ToLower(project.SharedCode)})
		require.Equal(t, http.StatusOK, resp.Code)
		joined := decode[handler.JoinProjectResponse](t, resp)
		assert.False(t, joined.AlreadyMember)
		assert.Equal(t, []string{"P1", "P2"}, []string(joined.Project.Members))
	})

	t.Run("joining twice is not an error", func(t *testing.T) {
		resp := f.do(http.MethodPost, "/projects/join", "P2", handler.JoinProjectRequest{Code: project.SharedCode})
		require.Equal(t, http.StatusOK, resp.Code)
		joined := decode[handler.JoinProjectResponse](t, resp)
		assert.True(t, joined.AlreadyMember)
		assert.Equal(t, "You are already a member of this project.", joined.Message)
		assert.Equal(t, []string{"P1", "P2"}, []string(joined.Project.Members))
	})
}

func TestProjects_Get(t *testing.T) {
	f := setupTest(t)
	project := f.createProject(t, "P1", "Launch")

	resp := f.do(http.MethodGet, "/projects/"+project.ID.String(), "P1", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, project.ID, decode[model.Project](t, resp).ID)

	resp = f.do(http.MethodGet, "/projects/"+project.ID.String(), "P2", nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Equal(t, "You are not a member of this project.", errorMessage(t, resp))

	resp = f.do(http.MethodGet, "/projects/"+uuid.NewString(), "P1", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = f.do(http.MethodGet, "/projects/not-a-uuid", "P1", nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestTasks_Lifecycle(t *testing.T) {
	f := setupTest(t)
	project := f.createProject(t, "P1", "Launch")
	base := "/projects/" + project.ID.String() + "/tasks"

	task := f.createTask(t, "P1", project.ID)
	assert.Equal(t, model.StatusToDo, task.Status, "status defaults to ToDo")
	assert.Equal(t, project.ID, task.ProjectID)

	update := designTask()
	update["name"] = "Design v2"
	update["phase"] = "Planning"
	update["status"] = "InProgress"
	resp := f.do(http.MethodPut, base+"/"+task.ID.String(), "P1", update)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	updated := decode[model.Task](t, resp)
	assert.Equal(t, "Design v2", updated.Name)
	assert.Equal(t, "Planning", updated.PhaseName())

	resp = f.do(http.MethodPatch, base+"/"+task.ID.String()+"/status", "P1", handler.TaskStatusRequest{Status: model.StatusDone})
	require.Equal(t, http.StatusNoContent, resp.Code)

	resp = f.do(http.MethodGet, base, "P1", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	tasks := decode[[]model.Task](t, resp)
	require.Len(t, tasks, 1)
	assert.Equal(t, model.StatusDone, tasks[0].Status)
	assert.Equal(t, "Design v2", tasks[0].Name, "a status write leaves other fields alone")

	resp = f.do(http.MethodDelete, base+"/"+task.ID.String(), "P1", nil)
	require.Equal(t, http.StatusNoContent, resp.Code)

	resp = f.do(http.MethodDelete, base+"/"+task.ID.String(), "P1", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "Task not found. It may have been deleted.", errorMessage(t, resp))
}

func TestTasks_Rejections(t *testing.T) {
	f := setupTest(t)
	project := f.createProject(t, "P1", "Launch")
	base := "/projects/" + project.ID.String() + "/tasks"

	cases := []struct {
		name      string
		principal model.Principal
		body      map[string]any
		status    int
		message   string
	}{
		{
			name:      "start after end",
			principal: "P1",
			body:      map[string]any{"name": "Design", "start_date": "2024-01-05", "end_date": "2024-01-03", "responsible": "P1"},
			status:    http.StatusBadRequest,
			message:   "Start date cannot be after end date.",
		},
		{
			name:      "missing responsible",
			principal: "P1",
			body:      map[string]any{"name": "Design", "start_date": "2024-01-01", "end_date": "2024-01-03", "responsible": "  "},
			status:    http.StatusBadRequest,
			message:   "All fields are required.",
		},
		{
			name:      "non-member",
			principal: "P2",
			body:      designTask(),
			status:    http.StatusForbidden,
			message:   "You are not a member of this project.",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := f.do(http.MethodPost, base, tc.principal, tc.body)
			assert.Equal(t, tc.status, resp.Code)
			assert.Equal(t, tc.message, errorMessage(t, resp))
		})
	}

	t.Run("malformed date", func(t *testing.T) {
		body := designTask()
		body["start_date"] = "01/02/2024"
		resp := f.do(http.MethodPost, base, "P1", body)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("unknown status", func(t *testing.T) {
		task := f.createTask(t, "P1", project.ID)
		resp := f.do(http.MethodPatch, base+"/"+task.ID.String()+"/status", "P1", handler.TaskStatusRequest{Status: "Blocked"})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	resp := f.do(http.MethodGet, base, "P1", nil)
	assert.Len(t, decode[[]model.Task](t, resp), 1, "rejected writes never reach the store")
}

func TestBoard_MoveKeepsDates(t *testing.T) {
	f := setupTest(t)
	project := f.createProject(t, "P1", "Launch")
	base := "/projects/" + project.ID.String()
	task := f.createTask(t, "P1", project.ID)

	resp := f.do(http.MethodGet, base+"/board", "P1", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	columns := decode[[]board.Column](t, resp)
	require.Len(t, columns, 3)
	assert.Equal(t, "To Do", columns[0].Title)
	assert.Len(t, columns[0].Tasks, 1)
	assert.Empty(t, columns[2].Tasks)

	resp = f.do(http.MethodPost, base+"/board/move", "P1", handler.MoveTaskRequest{TaskID: task.ID, Status: model.StatusDone})
	require.Equal(t, http.StatusNoContent, resp.Code, resp.Body.String())

	columns = decode[[]board.Column](t, f.do(http.MethodGet, base+"/board", "P1", nil))
	assert.Empty(t, columns[0].Tasks)
	require.Len(t, columns[2].Tasks, 1)
	assert.Equal(t, task.StartDate, columns[2].Tasks[0].StartDate)
	assert.Equal(t, task.EndDate, columns[2].Tasks[0].EndDate)

	resp = f.do(http.MethodPost, base+"/board/move", "P1", handler.MoveTaskRequest{TaskID: uuid.New(), Status: model.StatusDone})
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = f.do(http.MethodPost, base+"/board/move", "P1", handler.MoveTaskRequest{TaskID: task.ID, Status: "Archived"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestTimeline(t *testing.T) {
	f := setupTest(t)
	project := f.createProject(t, "P1", "Launch")
	f.createTask(t, "P1", project.ID)
	base := "/projects/" + project.ID.String() + "/timeline"

	resp := f.do(http.MethodGet, base+"?now=2024-01-01T09:00:00Z", "P1", nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var grid handler.TimelineResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &grid))
	assert.Equal(t, model.MustParseDate("2024-01-01"), grid.MinDate)
	assert.Equal(t, model.MustParseDate("2024-01-31"), grid.MaxDate)
	require.Len(t, grid.Groups, 1)
	require.Len(t, grid.Groups[0].Bars, 1)
	assert.Equal(t, 0, grid.Groups[0].Bars[0].OffsetDays)
	assert.Equal(t, 3, grid.Groups[0].Bars[0].DurationDays)
	assert.Equal(t, "todo", grid.Groups[0].Bars[0].StyleTag)
	assert.NotEmpty(t, grid.Legend)

	resp = f.do(http.MethodGet, base+"?now=yesterday", "P1", nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

type failingProjectStore struct {
	store.ProjectStore
	mock.Mock
}

func (m *failingProjectStore) ListByMember(ctx context.Context, principal model.Principal) ([]model.Project, error) {
	args := m.Called(ctx, principal)
	projects, _ := args.Get(0).([]model.Project)
	return projects, args.Error(1)
}

func TestStoreFailure_IsServiceUnavailable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	projects := &failingProjectStore{ProjectStore: memory.NewProjectStore()}
	projects.On("ListByMember", mock.Anything, model.Principal("P1")).Return(nil, errors.New("connection refused"))

	f := &fixture{router: gin.New()}
	routes(f.router, realtime.NewEngine(projects, memory.NewTaskStore(), memory.NewFeed()))

	resp := f.do(http.MethodGet, "/projects", "P1", nil)

	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	assert.NotContains(t, resp.Body.String(), "connection refused")
	projects.AssertExpectations(t)
}

type sseEvent struct {
	name string
	data string
}

func readEvent(t *testing.T, r *bufio.Reader) sseEvent {
	t.Helper()
	var ev sseEvent
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "" && ev.name != "":
			return ev
		case strings.HasPrefix(line, "event: "):
			ev.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			ev.data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func openStream(t *testing.T, ctx context.Context, url string, principal model.Principal) *bufio.Reader {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	require.NoError(t, err)
	req.Header.Set(principalHeader, string(principal))

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	return bufio.NewReader(resp.Body)
}

func TestStream_Project(t *testing.T) {
	f := setupTest(t)
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	project := f.createProject(t, "P1", "Launch")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := openStream(t, ctx, srv.URL+"/projects/"+project.ID.String()+"/stream", "P1")

	seen := map[string]string{}
	for len(seen) < 2 {
		ev := readEvent(t, r)
		seen[ev.name] = ev.data
	}
	assert.Contains(t, seen["project"], project.SharedCode)
	assert.Equal(t, "[]", seen["tasks"])

	f.createTask(t, "P1", project.ID)
	for {
		ev := readEvent(t, r)
		if ev.name != "tasks" {
			continue
		}
		assert.Contains(t, ev.data, `"name":"Design"`)
		break
	}

	assert.Equal(t, 1, f.feed.Subscribers(store.ProjectTopic(project.ID)))
	assert.Equal(t, 1, f.feed.Subscribers(store.TasksTopic(project.ID)))

	cancel()
	require.Eventually(t, func() bool {
		return f.feed.Subscribers(store.ProjectTopic(project.ID)) == 0 &&
			f.feed.Subscribers(store.TasksTopic(project.ID)) == 0
	}, 2*time.Second, 10*time.Millisecond, "both subscriptions are released on disconnect")
}

func TestStream_ProjectGone(t *testing.T) {
	f := setupTest(t)
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	project := f.createProject(t, "P1", "Launch")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := openStream(t, ctx, srv.URL+"/projects/"+project.ID.String()+"/stream", "P1")
	readEvent(t, r)

	require.NoError(t, f.projects.Delete(ctx, project.ID))
	for _, change := range store.ProjectChanges(store.ChangeDeleted, project.ID) {
		require.NoError(t, f.feed.Publish(ctx, change))
	}

	for {
		ev := readEvent(t, r)
		if ev.name == "gone" {
			assert.Contains(t, ev.data, project.ID.String())
			return
		}
	}
}

func TestStream_RejectsNonMember(t *testing.T) {
	f := setupTest(t)
	project := f.createProject(t, "P1", "Launch")

	resp := f.do(http.MethodGet, "/projects/"+project.ID.String()+"/stream", "P2", nil)

	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Equal(t, 0, f.feed.Subscribers(store.ProjectTopic(project.ID)))
}

func TestStream_MemberProjects(t *testing.T) {
	f := setupTest(t)
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := openStream(t, ctx, srv.URL+"/me/projects/stream", "P1")

	first := readEvent(t, r)
	assert.Equal(t, "projects", first.name)
	assert.Equal(t, "[]", first.data)

	project := f.createProject(t, "P1", "Launch")
	for {
		ev := readEvent(t, r)
		if ev.name == "projects" && strings.Contains(ev.data, project.ID.String()) {
			break
		}
	}
}
