package handler

import (
	"net/http"
	"time"

	"taskboard/internal/board"
	"taskboard/internal/model"
	"taskboard/internal/realtime"
	"taskboard/internal/timeline"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BoardHandler отдает Kanban доску и диаграмму Ганта проекта
type BoardHandler struct {
	engine *realtime.Engine
	now    func() time.Time
}

func NewBoardHandler(engine *realtime.Engine) *BoardHandler {
	return &BoardHandler{engine: engine, now: time.Now}
}

// MoveTaskRequest представляет запрос на перемещение задачи
type MoveTaskRequest struct {
	TaskID uuid.UUID    `json:"task_id"`
	Status model.Status `json:"status" example:"Done"`
}

type TimelineResponse struct {
	timeline.GridSpec
	Legend []timeline.LegendEntry `json:"legend"`
}

// Board возвращает три колонки доски
// @Summary      Kanban columns
// @Description  Always three columns: To Do, In Progress, Done
// @Tags         Board
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Project ID"
// @Success      200  {array}   board.Column
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /projects/{id}/board [get]
func (h *BoardHandler) Board(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "id", "project")
	if !ok {
		return
	}

	tasks, err := h.engine.Tasks(c.Request.Context(), principal, projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, board.Columns(tasks))
}

// Move перетаскивает задачу в другую колонку
// @Summary      Drop a task on a column
// @Description  Picks the task up and drops it on the target status. Dropping on the origin column still writes.
// @Tags         Board
// @Security     BearerAuth
// @Accept       json
// @Param        id    path  string           true  "Project ID"
// @Param        move  body  MoveTaskRequest  true  "Move"
// @Success      204
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      503  {object}  ErrorResponse
// @Router       /projects/{id}/board/move [post]
func (h *BoardHandler) Move(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "id", "project")
	if !ok {
		return
	}

	// Парсим запрос
	var req MoveTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.TaskID == uuid.Nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request"})
		return
	}

	tasks, err := h.engine.Tasks(c.Request.Context(), principal, projectID)
	if err != nil {
		respondError(c, err)
		return
	}

	// Ищем задачу среди задач проекта и берем ее
	drag := board.NewDrag(h.engine, principal, projectID)
	for _, t := range tasks {
		if t.ID == req.TaskID {
			drag.PickUp(t)
			break
		}
	}
	if _, _, picked := drag.Picked(); !picked {
		respondError(c, &realtime.NotFoundError{Resource: "task", Key: req.TaskID.String()})
		return
	}

	if err := drag.Drop(c.Request.Context(), req.Status); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Timeline возвращает раскладку диаграммы Ганта
// @Summary      Gantt layout
// @Description  Date range, day and week headers, and one bar per task grouped by phase
// @Tags         Board
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true   "Project ID"
// @Param        now  query     string  false  "Evaluate styles at this RFC 3339 instant"
// @Success      200  {object}  TimelineResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /projects/{id}/timeline [get]
func (h *BoardHandler) Timeline(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "id", "project")
	if !ok {
		return
	}

	// Момент расчета стилей можно передать явно
	now := h.now()
	if raw := c.Query("now"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "now must be an RFC 3339 timestamp"})
			return
		}
		now = parsed
	}

	tasks, err := h.engine.Tasks(c.Request.Context(), principal, projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, TimelineResponse{
		GridSpec: timeline.Layout(tasks, now),
		Legend:   timeline.Legend(),
	})
}
