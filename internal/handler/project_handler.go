package handler

import (
	"net/http"

	"taskboard/internal/model"
	"taskboard/internal/realtime"

	"github.com/gin-gonic/gin"
)

type ProjectHandler struct {
	engine *realtime.Engine
}

func NewProjectHandler(engine *realtime.Engine) *ProjectHandler {
	return &ProjectHandler{engine: engine}
}

// CreateProjectRequest представляет запрос на создание проекта
type CreateProjectRequest struct {
	Name string `json:"name" example:"Launch"`
}

// JoinProjectRequest представляет запрос на вступление в проект
type JoinProjectRequest struct {
	Code string `json:"code" example:"K7Q2ZD"`
}

type JoinProjectResponse struct {
	Project       model.Project `json:"project"`
	AlreadyMember bool          `json:"already_member"`
	Message       string        `json:"message,omitempty"`
}

// List возвращает проекты, в которых состоит пользователь
// @Summary      List my projects
// @Tags         Projects
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   model.Project
// @Failure      503  {object}  ErrorResponse
// @Router       /projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}

	projects, err := h.engine.Projects(c.Request.Context(), principal)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

// Create создает проект с новым кодом приглашения
// @Summary      Create a project
// @Description  Creates a project owned by the caller with a fresh share code
// @Tags         Projects
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        project  body      CreateProjectRequest  true  "Project"
// @Success      201      {object}  model.Project
// @Failure      400      {object}  ErrorResponse
// @Failure      503      {object}  ErrorResponse
// @Router       /projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}

	// Парсим запрос
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request"})
		return
	}

	project, err := h.engine.CreateProject(c.Request.Context(), principal, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

// Join добавляет пользователя в проект по коду приглашения
// @Summary      Join a project by share code
// @Description  Adds the caller to the project with the given code. Joining twice is not an error.
// @Tags         Projects
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        join  body      JoinProjectRequest  true  "Share code"
// @Success      200   {object}  JoinProjectResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      429   {object}  ErrorResponse
// @Failure      503   {object}  ErrorResponse
// @Router       /projects/join [post]
func (h *ProjectHandler) Join(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}

	// Парсим запрос
	var req JoinProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request"})
		return
	}

	res, err := h.engine.JoinProject(c.Request.Context(), principal, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}

	// Повторное вступление не ошибка, только сообщение
	resp := JoinProjectResponse{Project: res.Project, AlreadyMember: res.AlreadyMember}
	if res.AlreadyMember {
		resp.Message = "You are already a member of this project."
	}
	c.JSON(http.StatusOK, resp)
}

// Get возвращает проект по ID
// @Summary      Get a project
// @Tags         Projects
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Project ID"
// @Success      200  {object}  model.Project
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /projects/{id} [get]
func (h *ProjectHandler) Get(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "id", "project")
	if !ok {
		return
	}

	project, err := h.engine.Project(c.Request.Context(), principal, projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}
