package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"taskboard/internal/notify"
	"taskboard/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const defaultKeepAlive = 15 * time.Second

// StreamHandler отправляет живые снимки через server-sent events.
// Все подписки потока закрываются при отключении клиента.
type StreamHandler struct {
	engine    *realtime.Engine
	keepAlive time.Duration
}

func NewStreamHandler(engine *realtime.Engine, keepAlive time.Duration) *StreamHandler {
	if keepAlive <= 0 {
		keepAlive = defaultKeepAlive
	}
	return &StreamHandler{engine: engine, keepAlive: keepAlive}
}

type sseWriter struct {
	c       *gin.Context
	flusher http.Flusher
}

func startStream(c *gin.Context) (*sseWriter, bool) {
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Streaming unsupported"})
		return nil, false
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	flusher.Flush()
	return &sseWriter{c: c, flusher: flusher}, true
}

func (w *sseWriter) event(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w.c.Writer, "event: %s\ndata: %s\n\n", name, data); err != nil {
		return err
	}
	w.flusher.Flush()
	return nil
}

func (w *sseWriter) keepAlive() error {
	if _, err := fmt.Fprint(w.c.Writer, ": keep-alive\n\n"); err != nil {
		return err
	}
	w.flusher.Flush()
	return nil
}

// ended сообщает клиенту о завершенной подписке.
// Если клиент ушел сам, событие не нужно.
func (w *sseWriter) ended(sub *realtime.Subscription) {
	if err := sub.Err(); err != nil {
		zerolog.Ctx(w.c.Request.Context()).Warn().Err(err).Stringer("selector", sub.Selector()).Msg("Stream subscription failed")
		_ = w.event("error", ErrorResponse{Error: notify.Message(err)})
	}
}

// Project транслирует проект и его задачи
// @Summary      Live project stream
// @Description  Server-sent events: "project" with the project document and "tasks" with the full task list, re-sent after every change. "gone" is sent once if the project disappears.
// @Tags         Streams
// @Security     BearerAuth
// @Produce      text/event-stream
// @Param        id   path  string  true  "Project ID"
// @Success      200
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /projects/{id}/stream [get]
func (h *StreamHandler) Project(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "id", "project")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if _, err := h.engine.Project(ctx, principal, projectID); err != nil {
		respondError(c, err)
		return
	}

	projectSub, err := h.engine.Subscribe(ctx, realtime.ProjectDoc(projectID))
	if err != nil {
		respondError(c, err)
		return
	}
	defer projectSub.Close()

	tasksSub, err := h.engine.Subscribe(ctx, realtime.ProjectTasks(projectID))
	if err != nil {
		respondError(c, err)
		return
	}
	defer tasksSub.Close()

	w, ok := startStream(c)
	if !ok {
		return
	}

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		var err error
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err = w.keepAlive()
		case snap, ok := <-projectSub.Snapshots():
			if !ok {
				w.ended(projectSub)
				return
			}
			if !snap.Exists {
				_ = w.event("gone", gin.H{"project_id": projectID, "message": "This project is no longer available."})
				return
			}
			err = w.event("project", snap.Project)
		case snap, ok := <-tasksSub.Snapshots():
			if !ok {
				w.ended(tasksSub)
				return
			}
			err = w.event("tasks", snap.Tasks)
		}
		if err != nil {
			zerolog.Ctx(ctx).Debug().Err(err).Msg("Stream write failed")
			return
		}
	}
}

// MemberProjects транслирует список проектов пользователя
// @Summary      Live project list stream
// @Description  Server-sent "projects" events carrying every project the caller is a member of
// @Tags         Streams
// @Security     BearerAuth
// @Produce      text/event-stream
// @Success      200
// @Router       /me/projects/stream [get]
func (h *StreamHandler) MemberProjects(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	sub, err := h.engine.Subscribe(ctx, realtime.MemberProjects(principal))
	if err != nil {
		respondError(c, err)
		return
	}
	defer sub.Close()

	w, ok := startStream(c)
	if !ok {
		return
	}

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		var err error
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err = w.keepAlive()
		case snap, ok := <-sub.Snapshots():
			if !ok {
				w.ended(sub)
				return
			}
			err = w.event("projects", snap.Projects)
		}
		if err != nil {
			zerolog.Ctx(ctx).Debug().Err(err).Msg("Stream write failed")
			return
		}
	}
}
