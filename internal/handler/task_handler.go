package handler

import (
	"net/http"

	"taskboard/internal/model"
	"taskboard/internal/realtime"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	engine *realtime.Engine
}

func NewTaskHandler(engine *realtime.Engine) *TaskHandler {
	return &TaskHandler{engine: engine}
}

// TaskStatusRequest представляет запрос на смену статуса задачи
type TaskStatusRequest struct {
	Status model.Status `json:"status" example:"InProgress"`
}

// List возвращает задачи проекта в порядке расписания
// @Summary      List a project's tasks
// @Description  Tasks in schedule order: by phase (phase-less last), then start date
// @Tags         Tasks
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Project ID"
// @Success      200  {array}   model.Task
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /projects/{id}/tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "id", "project")
	if !ok {
		return
	}

	// Движок сам проверяет, что пользователь участник проекта
	tasks, err := h.engine.Tasks(c.Request.Context(), principal, projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// Create создает новую задачу
// @Summary      Create a task
// @Tags         Tasks
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string           true  "Project ID"
// @Param        task  body      model.TaskInput  true  "Task"
// @Success      201   {object}  model.Task
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      503   {object}  ErrorResponse
// @Router       /projects/{id}/tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "id", "project")
	if !ok {
		return
	}

	// Парсим запрос
	var in model.TaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request"})
		return
	}

	task, err := h.engine.CreateTask(c.Request.Context(), principal, projectID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// Update обновляет все редактируемые поля задачи
// @Summary      Replace a task's fields
// @Description  Every editable field is written; concurrent edits resolve last-write-wins
// @Tags         Tasks
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string           true  "Project ID"
// @Param        task_id  path      string           true  "Task ID"
// @Param        task     body      model.TaskInput  true  "Task"
// @Success      200      {object}  model.Task
// @Failure      400      {object}  ErrorResponse
// @Failure      403      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Failure      503      {object}  ErrorResponse
// @Router       /projects/{id}/tasks/{task_id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "id", "project")
	if !ok {
		return
	}
	taskID, ok := uuidParam(c, "task_id", "task")
	if !ok {
		return
	}

	// Парсим запрос
	var in model.TaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request"})
		return
	}

	task, err := h.engine.UpdateTask(c.Request.Context(), principal, projectID, taskID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Delete удаляет задачу
// @Summary      Delete a task
// @Tags         Tasks
// @Security     BearerAuth
// @Param        id       path  string  true  "Project ID"
// @Param        task_id  path  string  true  "Task ID"
// @Success      204
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      503  {object}  ErrorResponse
// @Router       /projects/{id}/tasks/{task_id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "id", "project")
	if !ok {
		return
	}
	taskID, ok := uuidParam(c, "task_id", "task")
	if !ok {
		return
	}

	if err := h.engine.DeleteTask(c.Request.Context(), principal, projectID, taskID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetStatus меняет только статус задачи
// @Summary      Change a task's status
// @Description  Writes the status field only; dates and other fields are untouched
// @Tags         Tasks
// @Security     BearerAuth
// @Accept       json
// @Param        id       path  string             true  "Project ID"
// @Param        task_id  path  string             true  "Task ID"
// @Param        status   body  TaskStatusRequest  true  "New status"
// @Success      204
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      503  {object}  ErrorResponse
// @Router       /projects/{id}/tasks/{task_id}/status [patch]
func (h *TaskHandler) SetStatus(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "id", "project")
	if !ok {
		return
	}
	taskID, ok := uuidParam(c, "task_id", "task")
	if !ok {
		return
	}

	// Парсим запрос
	var req TaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request"})
		return
	}

	if err := h.engine.SetTaskStatus(c.Request.Context(), principal, projectID, taskID, req.Status); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
